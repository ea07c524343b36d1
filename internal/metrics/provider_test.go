package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("test_keyguard")
	require.NoError(t, err)
	assert.NotNil(t, provider.MeterProvider())

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})
}

func TestProvider_Handler(t *testing.T) {
	provider, err := NewProvider("test_keyguard")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_keyguard")
	require.NoError(t, err)
	bm.RecordOperation(context.Background(), "acl", "evaluate", StatusAllow)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_keyguard_operations_total")
}

func TestProvider_Shutdown(t *testing.T) {
	provider, err := NewProvider("test_keyguard")
	require.NoError(t, err)

	assert.NoError(t, provider.Shutdown(context.Background()))
}
