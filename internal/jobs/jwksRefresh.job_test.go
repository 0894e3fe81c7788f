package jobs

import (
	"context"
	"errors"
	"testing"

	"cropadvisor/config"
	"cropadvisor/internal/services"
	"cropadvisor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockKeyRefresher struct {
	mock.Mock
}

func (m *MockKeyRefresher) RefreshKeys(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockKeyRefresher) Resolve(ctx context.Context, token string) (*types.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Identity), args.Error(1)
}

type plainIdentity struct{}

func (plainIdentity) Resolve(ctx context.Context, token string) (*types.Identity, error) {
	return nil, services.ErrInvalidToken
}

func TestJWKSRefreshJob_Execute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		refresher := new(MockKeyRefresher)
		refresher.On("RefreshKeys", mock.Anything).Return(nil).Once()

		job := NewJWKSRefreshJob(refresher, Hourly)
		assert.Equal(t, "JWKSRefresh", job.Name())
		assert.Equal(t, Hourly, job.Schedule())
		assert.NoError(t, job.Execute(context.Background()))
		refresher.AssertExpectations(t)
	})

	t.Run("refresh failure", func(t *testing.T) {
		refresher := new(MockKeyRefresher)
		refresher.On("RefreshKeys", mock.Anything).Return(errors.New("issuer down")).Once()

		job := NewJWKSRefreshJob(refresher, Hourly)
		assert.EqualError(t, job.Execute(context.Background()), "issuer down")
		refresher.AssertExpectations(t)
	})
}

func TestRegisterAllJobs(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		identity services.IdentityService
		expected int
	}{
		{name: "disabled", enabled: false, identity: new(MockKeyRefresher), expected: 0},
		{name: "key based identity", enabled: true, identity: new(MockKeyRefresher), expected: 1},
		{name: "remote identity", enabled: true, identity: plainIdentity{}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := services.NewSchedulerService()
			defer scheduler.Stop()

			err := RegisterAllJobs(
				scheduler,
				config.Config{SchedulerEnabled: tt.enabled},
				services.Service{Identity: tt.identity},
			)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, scheduler.JobCount())
		})
	}
}
