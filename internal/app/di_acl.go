package app

import (
	"fmt"
	"sync"

	aclRepository "github.com/allisson/keyguard/internal/acl/repository"
	aclService "github.com/allisson/keyguard/internal/acl/service"
	aclUseCase "github.com/allisson/keyguard/internal/acl/usecase"
)

// aclComponents holds the access-control module dependencies.
type aclComponents struct {
	repo    aclUseCase.PolicyRepository
	store   *aclService.PolicyStore
	useCase aclUseCase.PolicyUseCase

	repoInit    sync.Once
	storeInit   sync.Once
	useCaseInit sync.Once
}

// PolicyRepository returns the policy repository instance.
func (c *Container) PolicyRepository() (aclUseCase.PolicyRepository, error) {
	var err error
	c.acl.repoInit.Do(func() {
		c.acl.repo, err = c.initPolicyRepository()
		if err != nil {
			c.initErrors["policyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["policyRepo"]; exists {
		return nil, storedErr
	}
	return c.acl.repo, nil
}

// PolicyStore returns the in-memory policy snapshot store.
func (c *Container) PolicyStore() *aclService.PolicyStore {
	c.acl.storeInit.Do(func() {
		c.acl.store = aclService.NewPolicyStore()
	})
	return c.acl.store
}

// PolicyUseCase returns the policy use case instance.
func (c *Container) PolicyUseCase() (aclUseCase.PolicyUseCase, error) {
	var err error
	c.acl.useCaseInit.Do(func() {
		c.acl.useCase, err = c.initPolicyUseCase()
		if err != nil {
			c.initErrors["policyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["policyUseCase"]; exists {
		return nil, storedErr
	}
	return c.acl.useCase, nil
}

// initPolicyRepository creates the policy repository instance.
func (c *Container) initPolicyRepository() (aclUseCase.PolicyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for policy repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return aclRepository.NewMySQLPolicyRepository(db), nil
	case "postgres":
		return aclRepository.NewPostgreSQLPolicyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPolicyUseCase creates the policy use case with all its dependencies.
func (c *Container) initPolicyUseCase() (aclUseCase.PolicyUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for policy use case: %w", err)
	}

	repo, err := c.PolicyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy repository for policy use case: %w", err)
	}

	useCase := aclUseCase.NewPolicyUseCase(txManager, repo, c.PolicyStore(), c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for policy use case: %w", err)
		}
		useCase = aclUseCase.NewPolicyUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}
