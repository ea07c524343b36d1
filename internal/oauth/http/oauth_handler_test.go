package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedHTTP "github.com/allisson/keyguard/internal/http"
	oauthRepository "github.com/allisson/keyguard/internal/oauth/repository"
	oauthService "github.com/allisson/keyguard/internal/oauth/service"
	oauthUseCase "github.com/allisson/keyguard/internal/oauth/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fixture struct {
	router       *gin.Engine
	grantUseCase oauthUseCase.GrantUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := oauthRepository.NewMemoryStore()
	clientUseCase := oauthUseCase.NewClientUseCase(store, oauthService.NewSecretService())

	_, err := clientUseCase.Register(context.Background(), oauthUseCase.RegisterClientInput{
		ID:            "consumer-id",
		Secret:        "this-value-should-never-be-revealed",
		Name:          "Balance Service Consumer",
		RedirectURIs:  []string{"https://consumer.example.com/callback"},
		AllowedScopes: []string{"get_balance"},
	})
	require.NoError(t, err)

	grantUseCase := oauthUseCase.NewGrantUseCase(
		clientUseCase,
		store,
		oauthService.NewCredentialService(),
		10*time.Minute,
		time.Hour,
		testLogger(),
	)

	handler := NewOAuthHandler(grantUseCase, testLogger())

	router := gin.New()
	oauth := router.Group("/v1/oauth")
	oauth.POST("/authorize", sharedHTTP.PrincipalMiddleware(), handler.AuthorizeHandler)
	oauth.POST("/token", handler.TokenHandler)
	oauth.POST("/revoke", handler.RevokeHandler)

	protected := router.Group("/v1/protected")
	protected.Use(BearerTokenMiddleware(grantUseCase, testLogger()))
	protected.GET("/balance", func(c *gin.Context) {
		info, _ := GetTokenInfo(c)
		c.JSON(http.StatusOK, gin.H{"subject": info.Subject, "scope": info.Scope})
	})

	return &fixture{router: router, grantUseCase: grantUseCase}
}

func (f *fixture) postJSON(t *testing.T, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) authorize(t *testing.T) string {
	t.Helper()
	w := f.postJSON(t, "/v1/oauth/authorize", gin.H{
		"client_id":    "consumer-id",
		"scope":        "get_balance",
		"redirect_uri": "https://consumer.example.com/callback",
	}, map[string]string{sharedHTTP.RemoteUserHeader: "alice"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["code"].(string)
	require.NotEmpty(t, code)
	return code
}

func TestAuthorizeEndpoint(t *testing.T) {
	t.Run("issues code for authenticated subject", func(t *testing.T) {
		fixture := newFixture(t)
		code := fixture.authorize(t)
		assert.NotEmpty(t, code)
	})

	t.Run("missing remote user rejected", func(t *testing.T) {
		fixture := newFixture(t)
		w := fixture.postJSON(t, "/v1/oauth/authorize", gin.H{
			"client_id": "consumer-id",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("blank client_id rejected", func(t *testing.T) {
		fixture := newFixture(t)
		w := fixture.postJSON(t, "/v1/oauth/authorize", gin.H{
			"client_id": "",
		}, map[string]string{sharedHTTP.RemoteUserHeader: "alice"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown client is 404", func(t *testing.T) {
		fixture := newFixture(t)
		w := fixture.postJSON(t, "/v1/oauth/authorize", gin.H{
			"client_id": "nobody",
		}, map[string]string{sharedHTTP.RemoteUserHeader: "alice"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTokenEndpoint(t *testing.T) {
	tokenBody := func(code string) gin.H {
		return gin.H{
			"grant_type":    "authorization_code",
			"client_id":     "consumer-id",
			"client_secret": "this-value-should-never-be-revealed",
			"code":          code,
			"redirect_uri":  "https://consumer.example.com/callback",
		}
	}

	t.Run("exchanges code for bearer token", func(t *testing.T) {
		fixture := newFixture(t)
		code := fixture.authorize(t)

		w := fixture.postJSON(t, "/v1/oauth/token", tokenBody(code), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["access_token"])
		assert.Equal(t, "Bearer", resp["token_type"])
		assert.Equal(t, float64(3600), resp["expires_in"])
	})

	t.Run("replayed code is invalid_grant", func(t *testing.T) {
		fixture := newFixture(t)
		code := fixture.authorize(t)

		w := fixture.postJSON(t, "/v1/oauth/token", tokenBody(code), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = fixture.postJSON(t, "/v1/oauth/token", tokenBody(code), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_grant", resp["error"])
	})

	t.Run("unknown code is the same invalid_grant", func(t *testing.T) {
		fixture := newFixture(t)
		w := fixture.postJSON(t, "/v1/oauth/token", tokenBody("never-issued"), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_grant", resp["error"])
	})

	t.Run("wrong secret is invalid_client", func(t *testing.T) {
		fixture := newFixture(t)
		code := fixture.authorize(t)

		body := tokenBody(code)
		body["client_secret"] = "wrong"
		w := fixture.postJSON(t, "/v1/oauth/token", body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_client", resp["error"])
	})

	t.Run("unsupported grant type is invalid_request", func(t *testing.T) {
		fixture := newFixture(t)
		body := tokenBody("whatever")
		body["grant_type"] = "client_credentials"
		w := fixture.postJSON(t, "/v1/oauth/token", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_request", resp["error"])
	})
}

func TestRevokeEndpoint(t *testing.T) {
	fixture := newFixture(t)
	code := fixture.authorize(t)

	w := fixture.postJSON(t, "/v1/oauth/token", gin.H{
		"grant_type":    "authorization_code",
		"client_id":     "consumer-id",
		"client_secret": "this-value-should-never-be-revealed",
		"code":          code,
		"redirect_uri":  "https://consumer.example.com/callback",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tokenResp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	token := tokenResp["access_token"].(string)

	// First revoke, then repeat: both are 200 with different results
	w = fixture.postJSON(t, "/v1/oauth/revoke", gin.H{"token": token}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "revoked", resp["result"])

	w = fixture.postJSON(t, "/v1/oauth/revoke", gin.H{"token": token}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "already_revoked", resp["result"])

	w = fixture.postJSON(t, "/v1/oauth/revoke", gin.H{"token": "never-issued"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp["result"])
}

func TestBearerTokenMiddleware(t *testing.T) {
	fixture := newFixture(t)
	code := fixture.authorize(t)

	w := fixture.postJSON(t, "/v1/oauth/token", gin.H{
		"grant_type":    "authorization_code",
		"client_id":     "consumer-id",
		"client_secret": "this-value-should-never-be-revealed",
		"code":          code,
		"redirect_uri":  "https://consumer.example.com/callback",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tokenResp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	token := tokenResp["access_token"].(string)

	get := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/protected/balance", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		w := httptest.NewRecorder()
		fixture.router.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token passes with token info", func(t *testing.T) {
		w := get("Bearer " + token)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp["subject"])
		assert.Equal(t, "get_balance", resp["scope"])
	})

	t.Run("missing header rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get("").Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get("Basic abc").Code)
	})

	t.Run("unknown token rejected identically to revoked", func(t *testing.T) {
		unknown := get("Bearer never-issued")
		require.Equal(t, http.StatusUnauthorized, unknown.Code)

		_, err := fixture.grantUseCase.Revoke(context.Background(), token)
		require.NoError(t, err)
		revoked := get("Bearer " + token)
		require.Equal(t, http.StatusUnauthorized, revoked.Code)

		// Same status and body for both failure causes
		assert.Equal(t, unknown.Body.String(), revoked.Body.String())
	})
}
