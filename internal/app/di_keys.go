package app

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"

	keysHTTP "github.com/allisson/keyguard/internal/keys/http"
	keysRepository "github.com/allisson/keyguard/internal/keys/repository"
	keysUseCase "github.com/allisson/keyguard/internal/keys/usecase"
)

// keyComponents holds the key management module dependencies.
type keyComponents struct {
	repo    keysUseCase.KeyRepository
	useCase keysUseCase.KeyUseCase

	repoInit    sync.Once
	useCaseInit sync.Once
}

// KeyRepository returns the key metadata repository instance.
func (c *Container) KeyRepository() (keysUseCase.KeyRepository, error) {
	var err error
	c.keys.repoInit.Do(func() {
		c.keys.repo, err = c.initKeyRepository()
		if err != nil {
			c.initErrors["keyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRepo"]; exists {
		return nil, storedErr
	}
	return c.keys.repo, nil
}

// KeyUseCase returns the key use case instance.
func (c *Container) KeyUseCase() (keysUseCase.KeyUseCase, error) {
	var err error
	c.keys.useCaseInit.Do(func() {
		c.keys.useCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keys.useCase, nil
}

// initKeyRepository creates the key repository instance.
func (c *Container) initKeyRepository() (keysUseCase.KeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return keysRepository.NewMySQLKeyRepository(db), nil
	case "postgres":
		return keysRepository.NewPostgreSQLKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyUseCase creates the key use case with all its dependencies.
func (c *Container) initKeyUseCase() (keysUseCase.KeyUseCase, error) {
	repo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key use case: %w", err)
	}

	policies, err := c.PolicyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy use case for key use case: %w", err)
	}

	useCase := keysUseCase.NewKeyUseCase(repo, policies, c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key use case: %w", err)
		}
		useCase = keysUseCase.NewKeyUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// registerKeyRoutes mounts the key management endpoints on the router.
func (c *Container) registerKeyRoutes(router *gin.Engine) error {
	keyUseCase, err := c.KeyUseCase()
	if err != nil {
		return fmt.Errorf("failed to get key use case for key routes: %w", err)
	}

	handler := keysHTTP.NewKeyHandler(keyUseCase, c.Logger())
	handler.RegisterRoutes(router.Group("/v1/keys"))

	return nil
}
