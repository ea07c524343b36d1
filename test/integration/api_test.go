// Package integration provides end-to-end integration tests for the keyguard API.
// Tests the health, key-management, and OAuth2 endpoints against both
// PostgreSQL and MySQL databases.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
	"github.com/allisson/keyguard/internal/app"
	"github.com/allisson/keyguard/internal/config"
	keysDTO "github.com/allisson/keyguard/internal/keys/http/dto"
	oauthDTO "github.com/allisson/keyguard/internal/oauth/http/dto"
	oauthUseCase "github.com/allisson/keyguard/internal/oauth/usecase"
	"github.com/allisson/keyguard/internal/testutil"
)

const (
	testClientID     = "integration-client"
	testClientSecret = "integration-client-secret"
	testRedirectURI  = "https://consumer.example.com/callback"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	dbDriver  string
}

// identity carries the trusted headers the fronting authenticator would set.
type identity struct {
	user   string
	groups string
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	id *identity,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if id != nil {
		req.Header.Set("X-Remote-User", id.user)
		if id.groups != "" {
			req.Header.Set("X-Remote-Groups", id.groups)
		}
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		db = testutil.SetupPostgresDB(t)
		dsn = os.Getenv("TEST_POSTGRES_DSN")
	} else {
		db = testutil.SetupMySQLDB(t)
		dsn = os.Getenv("TEST_MYSQL_DSN")
	}

	cfg := &config.Config{
		DBDriver:              dbDriver,
		DBConnectionString:    dsn,
		DBMaxOpenConnections:  10,
		DBMaxIdleConnections:  5,
		DBConnMaxLifetime:     time.Hour,
		ServerHost:            "localhost",
		ServerPort:            8080,
		LogLevel:              "error",
		AuthCodeTTL:           10 * time.Minute,
		AccessTokenExpiration: time.Hour,
	}

	container := app.NewContainer(cfg)

	// Load the rule set before any authorized call: evaluation fails closed
	// on an empty snapshot.
	policyUseCase, err := container.PolicyUseCase()
	require.NoError(t, err, "failed to get policy use case")

	now := time.Now().UTC()
	err = policyUseCase.Replace(context.Background(), []aclDomain.Rule{
		{Subject: "bob", Operations: aclDomain.Operations(), CreatedAt: now},
		{
			Subject: "IT",
			Operations: []aclDomain.Operation{
				aclDomain.OperationGetKeys,
				aclDomain.OperationGetMetadata,
			},
			CreatedAt: now,
		},
	})
	require.NoError(t, err, "failed to load rule set")

	clientUseCase, err := container.ClientUseCase()
	require.NoError(t, err, "failed to get client use case")

	_, err = clientUseCase.Register(context.Background(), oauthUseCase.RegisterClientInput{
		ID:            testClientID,
		Secret:        testClientSecret,
		Name:          "Integration Test Client",
		RedirectURIs:  []string{testRedirectURI},
		AllowedScopes: []string{"get_balance", "get_statement"},
	})
	require.NoError(t, err, "failed to register oauth client")

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	handler := httpSrv.GetHandler()
	require.NotNil(t, handler, "handler should not be nil")

	testServer := httptest.NewServer(handler)

	t.Logf("Integration test setup complete for %s", dbDriver)

	return &integrationTestContext{
		container: container,
		db:        db,
		server:    testServer,
		dbDriver:  dbDriver,
	}
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}

	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}

	if ctx.db != nil {
		testutil.TeardownDB(t, ctx.db)
	}
}

// drivers returns the database drivers to run each integration test against.
func drivers() []struct {
	name     string
	dbDriver string
} {
	return []struct {
		name     string
		dbDriver string
	}{
		{"PostgreSQL", "postgres"},
		{"MySQL", "mysql"},
	}
}

// TestIntegration_Health_BasicChecks validates the liveness and readiness endpoints.
func TestIntegration_Health_BasicChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range drivers() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			t.Run("01_HealthCheck", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, nil)
				assert.Equal(t, http.StatusOK, resp.StatusCode)

				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "healthy", response["status"])
			})

			t.Run("02_ReadinessCheck", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/ready", nil, nil)
				assert.Equal(t, http.StatusOK, resp.StatusCode)

				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "ready", response["status"])
			})
		})
	}
}

// TestIntegration_Keys_CompleteFlow exercises the key lifecycle under access
// control: an admin with every grant, a group-granted reader, and a subject
// with no rule at all.
func TestIntegration_Keys_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	admin := &identity{user: "bob"}
	reader := &identity{user: "alice", groups: "HR,IT"}
	outsider := &identity{user: "eve"}

	for _, tc := range drivers() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			createBody := keysDTO.CreateKeyRequest{
				Name:   "payments-key",
				Cipher: "AES/CTR/NoPadding",
				Length: 128,
			}

			t.Run("01_CreateKey", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/keys", createBody, admin)
				require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

				var key keysDTO.KeyResponse
				require.NoError(t, json.Unmarshal(body, &key))
				assert.Equal(t, "payments-key", key.Name)
				assert.Equal(t, 1, key.Version)
			})

			t.Run("02_CreateKeyDeniedWithoutRule", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/keys", keysDTO.CreateKeyRequest{
					Name:   "eve-key",
					Cipher: "AES/CTR/NoPadding",
					Length: 128,
				}, outsider)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("03_CreateKeyRequiresIdentity", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/keys", createBody, nil)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("04_DuplicateKeyConflicts", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/keys", createBody, admin)
				assert.Equal(t, http.StatusConflict, resp.StatusCode)
			})

			t.Run("05_ListKeysViaGroupGrant", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/keys", nil, reader)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var names keysDTO.KeyNamesResponse
				require.NoError(t, json.Unmarshal(body, &names))
				assert.Equal(t, []string{"payments-key"}, names.Names)
			})

			t.Run("06_GetMetadataViaGroupGrant", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/keys/payments-key/metadata", nil, reader)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var key keysDTO.KeyResponse
				require.NoError(t, json.Unmarshal(body, &key))
				assert.Equal(t, "AES/CTR/NoPadding", key.Cipher)
				assert.Equal(t, 128, key.Length)
			})

			t.Run("07_RolloverDeniedForReader", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/keys/payments-key/rollover", nil, reader)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("08_RolloverBumpsVersion", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/keys/payments-key/rollover", nil, admin)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var key keysDTO.KeyResponse
				require.NoError(t, json.Unmarshal(body, &key))
				assert.Equal(t, 2, key.Version)
			})

			t.Run("09_GenerateEEK", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/keys/payments-key/eek",
					keysDTO.GenerateEEKRequest{Count: 5}, admin)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var grant keysDTO.EEKGrantResponse
				require.NoError(t, json.Unmarshal(body, &grant))
				assert.Equal(t, "payments-key", grant.KeyName)
				assert.Equal(t, 2, grant.KeyVersion)
				assert.Equal(t, 5, grant.Count)
			})

			t.Run("10_DecryptEEKDeniedForReader", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/keys/payments-key/eek/decrypt",
					keysDTO.DecryptEEKRequest{Version: 1}, reader)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("11_DecryptEEK", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/keys/payments-key/eek/decrypt",
					keysDTO.DecryptEEKRequest{Version: 1}, admin)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var grant keysDTO.EEKGrantResponse
				require.NoError(t, json.Unmarshal(body, &grant))
				assert.Equal(t, 1, grant.KeyVersion)
			})

			t.Run("12_DeleteKey", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodDelete, "/v1/keys/payments-key", nil, admin)
				assert.Equal(t, http.StatusNoContent, resp.StatusCode)

				resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/keys/payments-key/metadata", nil, reader)
				assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			})
		})
	}
}

// TestIntegration_OAuth_CompleteFlow exercises the authorization-code grant:
// code issuance, the single-use exchange, and idempotent revocation.
func TestIntegration_OAuth_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	owner := &identity{user: "bob"}

	for _, tc := range drivers() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			var code string
			var accessToken string

			t.Run("01_AuthorizeIssuesCode", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/oauth/authorize",
					oauthDTO.AuthorizeRequest{
						ClientID:    testClientID,
						Scope:       "get_balance",
						RedirectURI: testRedirectURI,
					}, owner)
				require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

				var authorize oauthDTO.AuthorizeResponse
				require.NoError(t, json.Unmarshal(body, &authorize))
				require.NotEmpty(t, authorize.Code)
				assert.True(t, authorize.ExpiresAt.After(time.Now()))
				code = authorize.Code
			})

			t.Run("02_AuthorizeRequiresIdentity", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/oauth/authorize",
					oauthDTO.AuthorizeRequest{ClientID: testClientID}, nil)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("03_ExchangeIssuesToken", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/oauth/token",
					oauthDTO.TokenRequest{
						GrantType:    "authorization_code",
						ClientID:     testClientID,
						ClientSecret: testClientSecret,
						Code:         code,
						RedirectURI:  testRedirectURI,
					}, nil)
				require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

				var token oauthDTO.TokenResponse
				require.NoError(t, json.Unmarshal(body, &token))
				require.NotEmpty(t, token.AccessToken)
				assert.Equal(t, "Bearer", token.TokenType)
				assert.Equal(t, "get_balance", token.Scope)
				accessToken = token.AccessToken
			})

			t.Run("04_CodeIsSingleUse", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/oauth/token",
					oauthDTO.TokenRequest{
						GrantType:    "authorization_code",
						ClientID:     testClientID,
						ClientSecret: testClientSecret,
						Code:         code,
						RedirectURI:  testRedirectURI,
					}, nil)
				require.Equal(t, http.StatusBadRequest, resp.StatusCode)

				var oauthError oauthDTO.OAuthErrorResponse
				require.NoError(t, json.Unmarshal(body, &oauthError))
				assert.Equal(t, "invalid_grant", oauthError.Error)
			})

			t.Run("05_WrongSecretIsInvalidClient", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/oauth/token",
					oauthDTO.TokenRequest{
						GrantType:    "authorization_code",
						ClientID:     testClientID,
						ClientSecret: "wrong-secret",
						Code:         "whatever",
						RedirectURI:  testRedirectURI,
					}, nil)
				require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

				var oauthError oauthDTO.OAuthErrorResponse
				require.NoError(t, json.Unmarshal(body, &oauthError))
				assert.Equal(t, "invalid_client", oauthError.Error)
			})

			t.Run("06_RevokeIsIdempotent", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/oauth/revoke",
					oauthDTO.RevokeRequest{Token: accessToken}, nil)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var revoke oauthDTO.RevokeResponse
				require.NoError(t, json.Unmarshal(body, &revoke))
				assert.Equal(t, "revoked", revoke.Result)

				resp, body = ctx.makeRequest(t, http.MethodPost, "/v1/oauth/revoke",
					oauthDTO.RevokeRequest{Token: accessToken}, nil)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				require.NoError(t, json.Unmarshal(body, &revoke))
				assert.Equal(t, "already_revoked", revoke.Result)
			})
		})
	}
}
