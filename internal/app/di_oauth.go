package app

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"

	sharedHTTP "github.com/allisson/keyguard/internal/http"
	oauthHTTP "github.com/allisson/keyguard/internal/oauth/http"
	oauthRepository "github.com/allisson/keyguard/internal/oauth/repository"
	oauthService "github.com/allisson/keyguard/internal/oauth/service"
	oauthUseCase "github.com/allisson/keyguard/internal/oauth/usecase"
)

// oauthComponents holds the OAuth2 module dependencies.
type oauthComponents struct {
	clientRepo    oauthUseCase.ClientRepository
	tokenStore    oauthUseCase.TokenStore
	clientUseCase oauthUseCase.ClientUseCase
	grantUseCase  oauthUseCase.GrantUseCase

	clientRepoInit    sync.Once
	tokenStoreInit    sync.Once
	clientUseCaseInit sync.Once
	grantUseCaseInit  sync.Once
}

// ClientRepository returns the OAuth client repository instance.
func (c *Container) ClientRepository() (oauthUseCase.ClientRepository, error) {
	var err error
	c.oauth.clientRepoInit.Do(func() {
		c.oauth.clientRepo, err = c.initClientRepository()
		if err != nil {
			c.initErrors["clientRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientRepo"]; exists {
		return nil, storedErr
	}
	return c.oauth.clientRepo, nil
}

// TokenStore returns the authorization code and access token store instance.
func (c *Container) TokenStore() (oauthUseCase.TokenStore, error) {
	var err error
	c.oauth.tokenStoreInit.Do(func() {
		c.oauth.tokenStore, err = c.initTokenStore()
		if err != nil {
			c.initErrors["tokenStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenStore"]; exists {
		return nil, storedErr
	}
	return c.oauth.tokenStore, nil
}

// ClientUseCase returns the OAuth client use case instance.
func (c *Container) ClientUseCase() (oauthUseCase.ClientUseCase, error) {
	var err error
	c.oauth.clientUseCaseInit.Do(func() {
		c.oauth.clientUseCase, err = c.initClientUseCase()
		if err != nil {
			c.initErrors["clientUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientUseCase"]; exists {
		return nil, storedErr
	}
	return c.oauth.clientUseCase, nil
}

// GrantUseCase returns the grant use case instance.
func (c *Container) GrantUseCase() (oauthUseCase.GrantUseCase, error) {
	var err error
	c.oauth.grantUseCaseInit.Do(func() {
		c.oauth.grantUseCase, err = c.initGrantUseCase()
		if err != nil {
			c.initErrors["grantUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["grantUseCase"]; exists {
		return nil, storedErr
	}
	return c.oauth.grantUseCase, nil
}

// initClientRepository creates the OAuth client repository instance.
func (c *Container) initClientRepository() (oauthUseCase.ClientRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for client repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return oauthRepository.NewMySQLClientRepository(db), nil
	case "postgres":
		return oauthRepository.NewPostgreSQLClientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenStore creates the token store instance.
func (c *Container) initTokenStore() (oauthUseCase.TokenStore, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token store: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return oauthRepository.NewMySQLTokenStore(db), nil
	case "postgres":
		return oauthRepository.NewPostgreSQLTokenStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initClientUseCase creates the client use case with all its dependencies.
func (c *Container) initClientUseCase() (oauthUseCase.ClientUseCase, error) {
	clientRepo, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for client use case: %w", err)
	}

	return oauthUseCase.NewClientUseCase(clientRepo, oauthService.NewSecretService()), nil
}

// initGrantUseCase creates the grant use case with all its dependencies.
func (c *Container) initGrantUseCase() (oauthUseCase.GrantUseCase, error) {
	clientUseCase, err := c.ClientUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get client use case for grant use case: %w", err)
	}

	tokenStore, err := c.TokenStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get token store for grant use case: %w", err)
	}

	useCase := oauthUseCase.NewGrantUseCase(
		clientUseCase,
		tokenStore,
		oauthService.NewCredentialService(),
		c.config.AuthCodeTTL,
		c.config.AccessTokenExpiration,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for grant use case: %w", err)
		}
		useCase = oauthUseCase.NewGrantUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// registerOAuthRoutes mounts the OAuth2 endpoints on the router.
// The token endpoint is unauthenticated and gets its own IP-based rate limit.
func (c *Container) registerOAuthRoutes(router *gin.Engine) error {
	logger := c.Logger()

	grantUseCase, err := c.GrantUseCase()
	if err != nil {
		return fmt.Errorf("failed to get grant use case for oauth routes: %w", err)
	}

	handler := oauthHTTP.NewOAuthHandler(grantUseCase, logger)

	group := router.Group("/v1/oauth")

	authorize := group.Group("/authorize")
	authorize.Use(sharedHTTP.PrincipalMiddleware())
	if c.config.RateLimitEnabled {
		authorize.Use(sharedHTTP.IPRateLimitMiddleware(
			c.config.RateLimitRequestsPerSec,
			c.config.RateLimitBurst,
			logger,
		))
	}
	authorize.POST("", handler.AuthorizeHandler)

	token := group.Group("/token")
	if c.config.RateLimitTokenEnabled {
		token.Use(sharedHTTP.IPRateLimitMiddleware(
			c.config.RateLimitTokenRequestsPerSec,
			c.config.RateLimitTokenBurst,
			logger,
		))
	}
	token.POST("", handler.TokenHandler)

	group.POST("/revoke", handler.RevokeHandler)

	return nil
}
