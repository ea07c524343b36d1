package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/keyguard/internal/metrics"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectRecord(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "keys", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "keys", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestKeyMetricsDecorator(t *testing.T) {
	ctx := context.Background()

	t.Run("records success", func(t *testing.T) {
		repo := &mockKeyRepository{}
		repo.On("ListNames", mock.Anything).Return([]string{"payments-key"}, nil)

		mockMetrics := &mockBusinessMetrics{}
		expectRecord(mockMetrics, ctx, "list_names", "success")

		useCase := NewKeyUseCaseWithMetrics(NewKeyUseCase(repo, testPolicies(t), testLogger()), mockMetrics)
		_, err := useCase.ListNames(ctx, bob)
		require.NoError(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("records deny for access denials", func(t *testing.T) {
		repo := &mockKeyRepository{}

		mockMetrics := &mockBusinessMetrics{}
		expectRecord(mockMetrics, ctx, "create", metrics.StatusDeny)

		useCase := NewKeyUseCaseWithMetrics(NewKeyUseCase(repo, testPolicies(t), testLogger()), mockMetrics)
		_, err := useCase.Create(ctx, eve, CreateKeyInput{Name: "payments-key"})
		require.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("records error for repository failures", func(t *testing.T) {
		repo := &mockKeyRepository{}
		repo.On("Delete", mock.Anything, "payments-key").Return(assert.AnError)

		mockMetrics := &mockBusinessMetrics{}
		expectRecord(mockMetrics, ctx, "delete", metrics.StatusError)

		useCase := NewKeyUseCaseWithMetrics(NewKeyUseCase(repo, testPolicies(t), testLogger()), mockMetrics)
		err := useCase.Delete(ctx, bob, "payments-key")
		require.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})
}
