package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	aclService "github.com/allisson/keyguard/internal/acl/service"
	aclUseCase "github.com/allisson/keyguard/internal/acl/usecase"
	sharedHTTP "github.com/allisson/keyguard/internal/http"
	keysDomain "github.com/allisson/keyguard/internal/keys/domain"
	keysUseCase "github.com/allisson/keyguard/internal/keys/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// memoryKeyRepository is an in-memory KeyRepository for handler tests.
type memoryKeyRepository struct {
	mu   sync.Mutex
	keys map[string]keysDomain.Key
}

func newMemoryKeyRepository() *memoryKeyRepository {
	return &memoryKeyRepository{keys: make(map[string]keysDomain.Key)}
}

func (m *memoryKeyRepository) Create(_ context.Context, key *keysDomain.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.keys[key.Name]; exists {
		return keysDomain.ErrDuplicateKey
	}
	m.keys[key.Name] = *key
	return nil
}

func (m *memoryKeyRepository) GetByName(_ context.Context, name string) (*keysDomain.Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, exists := m.keys[name]
	if !exists {
		return nil, keysDomain.ErrKeyNotFound
	}
	return &key, nil
}

func (m *memoryKeyRepository) ListNames(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.keys))
	for name := range m.keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *memoryKeyRepository) IncrementVersion(_ context.Context, name string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, exists := m.keys[name]
	if !exists {
		return keysDomain.ErrKeyNotFound
	}
	key.Version++
	key.UpdatedAt = updatedAt
	m.keys[name] = key
	return nil
}

func (m *memoryKeyRepository) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.keys[name]; !exists {
		return keysDomain.ErrKeyNotFound
	}
	delete(m.keys, name)
	return nil
}

type stubPolicyRepository struct{}

func (s *stubPolicyRepository) ListAll(_ context.Context) ([]aclDomain.Rule, error) {
	return nil, nil
}

func (s *stubPolicyRepository) ReplaceAll(_ context.Context, _ []aclDomain.Rule) error {
	return nil
}

type passthroughTxManager struct{}

func (p passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()

	store := aclService.NewPolicyStore()
	require.NoError(t, store.Replace([]aclDomain.Rule{
		{Subject: "bob", Operations: aclDomain.Operations()},
		{Subject: "IT", Operations: []aclDomain.Operation{
			aclDomain.OperationGetKeys,
			aclDomain.OperationGetMetadata,
		}},
	}))

	policies := aclUseCase.NewPolicyUseCase(passthroughTxManager{}, &stubPolicyRepository{}, store, testLogger())
	useCase := keysUseCase.NewKeyUseCase(newMemoryKeyRepository(), policies, testLogger())
	handler := NewKeyHandler(useCase, testLogger())

	router := gin.New()
	handler.RegisterRoutes(router.Group("/v1/keys"))
	return router
}

func doRequest(
	t *testing.T,
	router *gin.Engine,
	method, path, user, groups string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(sharedHTTP.RemoteUserHeader, user)
	}
	if groups != "" {
		req.Header.Set(sharedHTTP.RemoteGroupsHeader, groups)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createKey(t *testing.T, router *gin.Engine, name string) {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/v1/keys", "bob", "", gin.H{
		"name":   name,
		"cipher": "AES/CTR/NoPadding",
		"length": 128,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateKeyHandler(t *testing.T) {
	t.Run("granted principal creates key", func(t *testing.T) {
		router := newRouter(t)
		w := doRequest(t, router, http.MethodPost, "/v1/keys", "bob", "", gin.H{
			"name":   "payments-key",
			"cipher": "AES/CTR/NoPadding",
			"length": 128,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "payments-key", resp["name"])
		assert.Equal(t, float64(1), resp["version"])
		assert.NotEmpty(t, resp["id"])
	})

	t.Run("denied principal is 403", func(t *testing.T) {
		router := newRouter(t)
		w := doRequest(t, router, http.MethodPost, "/v1/keys", "eve", "", gin.H{
			"name":   "payments-key",
			"cipher": "AES/CTR/NoPadding",
			"length": 128,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing identity is 401", func(t *testing.T) {
		router := newRouter(t)
		w := doRequest(t, router, http.MethodPost, "/v1/keys", "", "", gin.H{"name": "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid payload is 422", func(t *testing.T) {
		router := newRouter(t)
		w := doRequest(t, router, http.MethodPost, "/v1/keys", "bob", "", gin.H{
			"name":   " ",
			"cipher": "AES/CTR/NoPadding",
			"length": 128,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("duplicate name is 409", func(t *testing.T) {
		router := newRouter(t)
		createKey(t, router, "payments-key")
		w := doRequest(t, router, http.MethodPost, "/v1/keys", "bob", "", gin.H{
			"name":   "payments-key",
			"cipher": "AES/CTR/NoPadding",
			"length": 128,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestListKeyNamesHandler(t *testing.T) {
	router := newRouter(t)
	createKey(t, router, "billing-key")
	createKey(t, router, "payments-key")

	t.Run("granted via group", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/v1/keys", "alice", "IT", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string][]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"billing-key", "payments-key"}, resp["names"])
	})

	t.Run("unknown principal is 403", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/v1/keys", "eve", "guests", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetKeyMetadataHandler(t *testing.T) {
	router := newRouter(t)
	createKey(t, router, "payments-key")

	t.Run("granted via group", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/v1/keys/payments-key/metadata", "alice", "IT", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "AES/CTR/NoPadding", resp["cipher"])
		assert.Equal(t, float64(128), resp["length"])
	})

	t.Run("missing key is 404", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/v1/keys/missing/metadata", "bob", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRolloverKeyHandler(t *testing.T) {
	router := newRouter(t)
	createKey(t, router, "payments-key")

	t.Run("bumps version", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/v1/keys/payments-key/rollover", "bob", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(2), resp["version"])
	})

	t.Run("read-only group is 403", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/v1/keys/payments-key/rollover", "alice", "IT", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGenerateEEKHandler(t *testing.T) {
	router := newRouter(t)
	createKey(t, router, "payments-key")

	t.Run("granted", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/v1/keys/payments-key/eek", "bob", "", gin.H{"count": 10})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "payments-key", resp["key_name"])
		assert.Equal(t, float64(10), resp["count"])
	})

	t.Run("zero count is 422", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/v1/keys/payments-key/eek", "bob", "", gin.H{"count": 0})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("read-only group is 403", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/v1/keys/payments-key/eek", "alice", "IT", gin.H{"count": 10})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDecryptEEKHandler(t *testing.T) {
	router := newRouter(t)
	createKey(t, router, "payments-key")

	t.Run("granted", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/v1/keys/payments-key/eek/decrypt", "bob", "", gin.H{"version": 1})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(1), resp["key_version"])
	})

	t.Run("denied", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/v1/keys/payments-key/eek/decrypt", "eve", "", gin.H{"version": 1})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDeleteKeyHandler(t *testing.T) {
	router := newRouter(t)
	createKey(t, router, "payments-key")

	t.Run("read-only group is 403", func(t *testing.T) {
		w := doRequest(t, router, http.MethodDelete, "/v1/keys/payments-key", "alice", "IT", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("granted", func(t *testing.T) {
		w := doRequest(t, router, http.MethodDelete, "/v1/keys/payments-key", "bob", "", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("missing key is 404", func(t *testing.T) {
		w := doRequest(t, router, http.MethodDelete, "/v1/keys/payments-key", "bob", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
