package usecase_test

import (
	"errors"
	"testing"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBuildReportSummary(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty pipeline", func(t *testing.T) {
		s := usecase.BuildReportSummary(nil, at)
		assert.Zero(t, s.TotalCandidates)
		assert.Equal(t, domain.ConversionRates{}, s.ConversionRates)
		assert.Equal(t, at, s.GeneratedAt)
	})

	t.Run("funnel numbers", func(t *testing.T) {
		s := usecase.BuildReportSummary(map[domain.CandidateStatus]int64{
			domain.StatusApplied:   4,
			domain.StatusScreening: 2,
			domain.StatusInterview: 2,
			domain.StatusPassed:    1,
			domain.StatusOffer:     1,
			domain.StatusRejected:  2,
		}, at)

		assert.Equal(t, int64(12), s.TotalCandidates)
		assert.Equal(t, domain.PipelineCounts{InProgress: 8, Completed: 4, Pending: 6}, s.Pipeline)
		assert.Equal(t, 66.67, s.ConversionRates.ApplicationToScreening)
		assert.Equal(t, 66.67, s.ConversionRates.ScreeningToInterview)
		assert.Equal(t, 20.0, s.ConversionRates.InterviewToPass)
		assert.Equal(t, 16.67, s.ConversionRates.OverallPassRate)
	})
}

func TestReportSummaryCache(t *testing.T) {
	t.Run("cache hit skips the store", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		cache := new(MockReportCache)
		cached := &domain.ReportSummary{TotalCandidates: 3}
		cache.On("Get", mock.Anything).Return(cached, nil)

		got, err := usecase.NewReportUsecase(repo, cache).Summary(actorCtx(domain.RoleViewer))

		require.NoError(t, err)
		assert.Same(t, cached, got)
		repo.AssertNotCalled(t, "CountByStatus", mock.Anything)
	})

	t.Run("miss computes and stores", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		cache := new(MockReportCache)
		cache.On("Get", mock.Anything).Return(nil, nil)
		cache.On("Set", mock.Anything, mock.Anything).Return(nil)
		repo.On("CountByStatus", mock.Anything).Return(map[domain.CandidateStatus]int64{domain.StatusApplied: 2}, nil)

		got, err := usecase.NewReportUsecase(repo, cache).Summary(actorCtx(domain.RoleViewer))

		require.NoError(t, err)
		assert.Equal(t, int64(2), got.TotalCandidates)
		cache.AssertCalled(t, "Set", mock.Anything, got)
	})

	t.Run("cache errors fall through", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		cache := new(MockReportCache)
		cache.On("Get", mock.Anything).Return(nil, errors.New("redis down"))
		cache.On("Set", mock.Anything, mock.Anything).Return(errors.New("redis down"))
		repo.On("CountByStatus", mock.Anything).Return(map[domain.CandidateStatus]int64{}, nil)

		_, err := usecase.NewReportUsecase(repo, cache).Summary(actorCtx(domain.RoleRecruiter))
		assert.NoError(t, err)
	})

	t.Run("nil cache", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		repo.On("CountByStatus", mock.Anything).Return(map[domain.CandidateStatus]int64{domain.StatusOffer: 1}, nil)

		got, err := usecase.NewReportUsecase(repo, nil).Summary(actorCtx(domain.RoleRecruiter))
		require.NoError(t, err)
		assert.Equal(t, 100.0, got.ConversionRates.OverallPassRate)
	})
}
