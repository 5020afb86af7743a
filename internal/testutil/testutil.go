// Package testutil provides shared test helpers for creating config
// files and store directories.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestConfig creates a minimal config file and the directories it
// points at. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	learnersDir := filepath.Join(tmpDir, "learners")
	reportsDir := filepath.Join(tmpDir, "reports")
	for _, d := range []string{learnersDir, reportsDir} {
		require.NoError(t, os.MkdirAll(d, 0755))
	}

	configContent := fmt.Sprintf(`store:
  backend: yaml
  directory: %s
reports:
  output_directory: %s
`, learnersDir, reportsDir)

	configPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	return configPath
}
