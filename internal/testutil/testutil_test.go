package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synaptic-study/synaptic/internal/config"
)

func TestSetupTestConfig(t *testing.T) {
	tmpDir := t.TempDir()
	got := SetupTestConfig(t, tmpDir)

	want := filepath.Join(tmpDir, "config.yml")
	assert.Equal(t, want, got)

	// Verify config file exists and is readable.
	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Contains(t, string(content), "backend: yaml")

	// Verify the directories it points at were created.
	for _, d := range []string{"learners", "reports"} {
		info, err := os.Stat(filepath.Join(tmpDir, d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// The generated file must load cleanly.
	cfg, err := config.Load(got)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "learners"), cfg.Store.Directory)
	assert.Equal(t, filepath.Join(tmpDir, "reports"), cfg.Reports.OutputDirectory)
}
