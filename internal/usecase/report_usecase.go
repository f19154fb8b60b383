package usecase

import (
	"context"
	"math"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/logger"
)

type reportUsecase struct {
	repo  domain.CandidateRepository
	cache domain.ReportCache
	now   func() time.Time
}

// NewReportUsecase builds the pipeline report. cache may be nil.
func NewReportUsecase(repo domain.CandidateRepository, cache domain.ReportCache) domain.ReportUsecase {
	return &reportUsecase{repo: repo, cache: cache, now: time.Now}
}

func (u *reportUsecase) Summary(ctx context.Context) (*domain.ReportSummary, error) {
	if err := requirePermission(ctx, domain.ResourceReports, domain.ActionRead); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)

	if u.cache != nil {
		cached, err := u.cache.Get(ctx)
		if err != nil {
			log.Warn("Report cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	counts, err := u.repo.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	summary := BuildReportSummary(counts, u.now().UTC())

	if u.cache != nil {
		if err := u.cache.Set(ctx, summary); err != nil {
			log.Warn("Report cache write failed", "error", err)
		}
	}
	return summary, nil
}

// BuildReportSummary derives the funnel numbers from per-status counts of
// live candidates.
func BuildReportSummary(counts map[domain.CandidateStatus]int64, at time.Time) *domain.ReportSummary {
	b := domain.StatusBreakdown{
		Applied:   counts[domain.StatusApplied],
		Screening: counts[domain.StatusScreening],
		Interview: counts[domain.StatusInterview],
		Passed:    counts[domain.StatusPassed],
		Offer:     counts[domain.StatusOffer],
		Rejected:  counts[domain.StatusRejected],
	}
	total := b.Applied + b.Screening + b.Interview + b.Passed + b.Offer + b.Rejected

	var rates domain.ConversionRates
	if b.Applied > 0 {
		rates.ApplicationToScreening = percent(total-b.Applied, total)
	}
	if b.Screening > 0 {
		beyond := b.Interview + b.Passed + b.Offer
		rates.ScreeningToInterview = percent(beyond, b.Screening+beyond)
	}
	if b.Interview > 0 {
		rates.InterviewToPass = percent(b.Passed, b.Interview+b.Passed+b.Rejected)
	}
	if total > 0 {
		rates.OverallPassRate = percent(b.Passed+b.Offer, total)
	}

	return &domain.ReportSummary{
		TotalCandidates: total,
		StatusBreakdown: b,
		ConversionRates: rates,
		Pipeline: domain.PipelineCounts{
			InProgress: b.Applied + b.Screening + b.Interview,
			Completed:  b.Passed + b.Offer + b.Rejected,
			Pending:    b.Applied + b.Screening,
		},
		GeneratedAt: at,
	}
}

// percent rounds to two decimals.
func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
