package domain

import (
	"context"
	"time"
)

type StatusBreakdown struct {
	Applied   int64 `json:"applied"`
	Screening int64 `json:"screening"`
	Interview int64 `json:"interview"`
	Passed    int64 `json:"passed"`
	Offer     int64 `json:"offer"`
	Rejected  int64 `json:"rejected"`
}

// ConversionRates are percentages in the range 0..100.
type ConversionRates struct {
	ApplicationToScreening float64 `json:"applicationToScreening"`
	ScreeningToInterview   float64 `json:"screeningToInterview"`
	InterviewToPass        float64 `json:"interviewToPass"`
	OverallPassRate        float64 `json:"overallPassRate"`
}

type PipelineCounts struct {
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Pending    int64 `json:"pending"`
}

type ReportSummary struct {
	TotalCandidates int64           `json:"totalCandidates"`
	StatusBreakdown StatusBreakdown `json:"statusBreakdown"`
	ConversionRates ConversionRates `json:"conversionRates"`
	Pipeline        PipelineCounts  `json:"pipeline"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

// ReportCache stores computed summaries. A nil cache disables caching.
type ReportCache interface {
	Get(ctx context.Context) (*ReportSummary, error)
	Set(ctx context.Context, summary *ReportSummary) error
}

type ReportUsecase interface {
	Summary(ctx context.Context) (*ReportSummary, error)
}
