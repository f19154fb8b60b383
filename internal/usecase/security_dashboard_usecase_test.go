package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/internal/usecase"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSecurityDashboardRepo struct {
	mock.Mock
}

func (m *MockSecurityDashboardRepo) GetStats(ctx context.Context) (*domain.SecurityDashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SecurityDashboardStats), args.Error(1)
}

func (m *MockSecurityDashboardRepo) ListEvents(ctx context.Context, filter domain.SecurityEventFilter) ([]domain.SecurityEventView, int64, error) {
	args := m.Called(ctx, filter)
	var events []domain.SecurityEventView
	if args.Get(0) != nil {
		events = args.Get(0).([]domain.SecurityEventView)
	}
	return events, args.Get(1).(int64), args.Error(2)
}

func TestSecurityDashboardStats(t *testing.T) {
	t.Run("recruiter gets stats and the second call is served from cache", func(t *testing.T) {
		repo := new(MockSecurityDashboardRepo)
		stats := &domain.SecurityDashboardStats{TotalEvents: 7, MalwareDetected24h: 1}
		repo.On("GetStats", mock.Anything).Return(stats, nil).Once()

		uc := usecase.NewSecurityDashboardUsecase(repo)
		ctx := actorCtx(domain.RoleRecruiter)

		first, err := uc.Stats(ctx)
		require.NoError(t, err)
		second, err := uc.Stats(ctx)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int64(7), second.TotalEvents)
		repo.AssertNumberOfCalls(t, "GetStats", 1)
	})

	t.Run("repository failure is internal and not cached", func(t *testing.T) {
		repo := new(MockSecurityDashboardRepo)
		repo.On("GetStats", mock.Anything).Return(nil, errors.New("relation does not exist")).Once()
		repo.On("GetStats", mock.Anything).Return(&domain.SecurityDashboardStats{}, nil).Once()

		uc := usecase.NewSecurityDashboardUsecase(repo)
		ctx := actorCtx(domain.RoleRecruiter)

		_, err := uc.Stats(ctx)
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, apperror.CodeOf(err))
		assert.NotContains(t, err.Error(), "relation")

		_, err = uc.Stats(ctx)
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "GetStats", 2)
	})

	t.Run("other roles are forbidden", func(t *testing.T) {
		repo := new(MockSecurityDashboardRepo)
		uc := usecase.NewSecurityDashboardUsecase(repo)

		for _, role := range []domain.Role{domain.RoleHiringManager, domain.RoleInterviewer, domain.RoleViewer} {
			_, err := uc.Stats(actorCtx(role))
			require.Error(t, err, role)
			assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err), role)
		}
		repo.AssertNotCalled(t, "GetStats", mock.Anything)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		uc := usecase.NewSecurityDashboardUsecase(new(MockSecurityDashboardRepo))
		_, err := uc.Stats(context.Background())
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	})
}

func TestSecurityDashboardListEvents(t *testing.T) {
	t.Run("page defaults are applied before querying", func(t *testing.T) {
		repo := new(MockSecurityDashboardRepo)
		events := []domain.SecurityEventView{
			{ID: 2, EventType: "malware_detected", Severity: "CRITICAL"},
			{ID: 1, EventType: "upload_rejected", Severity: "WARN"},
		}
		repo.On("ListEvents", mock.Anything, domain.SecurityEventFilter{
			Severity: "CRITICAL",
			Page:     1,
			Limit:    domain.DefaultPageSize,
		}).Return(events, int64(45), nil)

		uc := usecase.NewSecurityDashboardUsecase(repo)
		result, err := uc.ListEvents(actorCtx(domain.RoleRecruiter), domain.SecurityEventFilter{Severity: "CRITICAL"})
		require.NoError(t, err)

		assert.Len(t, result.Data, 2)
		assert.Equal(t, int64(45), result.Total)
		assert.Equal(t, 3, result.TotalPages)
		repo.AssertExpectations(t)
	})

	t.Run("oversized limit is clamped", func(t *testing.T) {
		repo := new(MockSecurityDashboardRepo)
		repo.On("ListEvents", mock.Anything, domain.SecurityEventFilter{Page: 2, Limit: domain.MaxPageSize}).
			Return(nil, int64(0), nil)

		uc := usecase.NewSecurityDashboardUsecase(repo)
		result, err := uc.ListEvents(actorCtx(domain.RoleRecruiter), domain.SecurityEventFilter{Page: 2, Limit: 5000})
		require.NoError(t, err)
		assert.NotNil(t, result.Data)
		assert.Empty(t, result.Data)
	})

	t.Run("unknown severity", func(t *testing.T) {
		repo := new(MockSecurityDashboardRepo)
		uc := usecase.NewSecurityDashboardUsecase(repo)

		_, err := uc.ListEvents(actorCtx(domain.RoleRecruiter), domain.SecurityEventFilter{Severity: "critical"})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		repo.AssertNotCalled(t, "ListEvents", mock.Anything, mock.Anything)
	})

	t.Run("hiring manager forbidden", func(t *testing.T) {
		uc := usecase.NewSecurityDashboardUsecase(new(MockSecurityDashboardRepo))
		_, err := uc.ListEvents(actorCtx(domain.RoleHiringManager), domain.SecurityEventFilter{})
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}
