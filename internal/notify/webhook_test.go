package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookDispatcher_Unconfigured(t *testing.T) {
	dispatcher := NewWebhookDispatcher("", "", true, 1)
	defer func() {
		_ = dispatcher.Close()
	}()

	assert.False(t, dispatcher.IsSupported())

	permission, err := dispatcher.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionDefault, permission)

	err = dispatcher.Show(context.Background(), Notification{Kind: KindDueCardsReady})
	assert.Error(t, err)
}

func TestWebhookDispatcher_Permission(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		want    Permission
	}{
		{name: "enabled gateway grants", enabled: true, want: PermissionGranted},
		{name: "disabled gateway denies", enabled: false, want: PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := NewWebhookDispatcher("http://localhost:1", "", tt.enabled, 1)
			defer func() {
				_ = dispatcher.Close()
			}()

			permission, err := dispatcher.RequestPermission(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, permission)
			assert.Equal(t, tt.enabled, dispatcher.IsEnabled())
		})
	}
}

func TestWebhookDispatcher_Show(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher := NewWebhookDispatcher(server.URL, "secret", true, 1)
	defer func() {
		_ = dispatcher.Close()
	}()

	err := dispatcher.Show(context.Background(), Notification{
		FireAt:   time.Now(),
		Kind:     KindStreakAtRisk,
		DedupKey: "2025-04-02",
		Payload:  map[string]string{"current_streak": "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestWebhookDispatcher_ShowDoesNotRetryClientErrors(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	dispatcher := NewWebhookDispatcher(server.URL, "", true, 3)
	defer func() {
		_ = dispatcher.Close()
	}()

	err := dispatcher.Show(context.Background(), Notification{Kind: KindDueCardsReady})
	assert.Error(t, err)
	assert.Equal(t, int32(1), requests.Load(), "4xx responses must not be retried")
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "timeout", err: errors.New("read tcp: i/o timeout"), want: true},
		{name: "server error", err: errors.New("gateway response error 503: unavailable"), want: true},
		{name: "rate limited", err: errors.New("gateway response error 429: slow down"), want: true},
		{name: "client error", err: errors.New("gateway response error 400: bad payload"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}
