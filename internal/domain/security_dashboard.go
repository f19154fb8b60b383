package domain

import (
	"context"
	"time"
)

// SecurityDashboardStats summarises recent security events for recruiters.
type SecurityDashboardStats struct {
	TotalEvents         int64            `json:"totalEvents"`
	EventsBySeverity    map[string]int64 `json:"eventsBySeverity"` // last 7 days
	EventsByType        map[string]int64 `json:"eventsByType"`     // last 7 days
	TopIPs              []IPSummary      `json:"topIps"`
	UploadsRejected24h  int64            `json:"uploadsRejected24h"`
	MalwareDetected24h  int64            `json:"malwareDetected24h"`
	RateLimited24h      int64            `json:"rateLimited24h"`
	PermissionDenied24h int64            `json:"permissionDenied24h"`
}

type IPSummary struct {
	IP              string    `json:"ip"`
	EventCount      int64     `json:"eventCount"`
	LastSeen        time.Time `json:"lastSeen"`
	HighestSeverity string    `json:"highestSeverity"`
}

type SecurityEventFilter struct {
	EventType string     `form:"eventType"`
	Severity  string     `form:"severity"`
	IP        string     `form:"ip"`
	Since     *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Page      int        `form:"page"`
	Limit     int        `form:"limit"`
}

type SecurityEventView struct {
	ID           int64                  `json:"id"`
	Timestamp    time.Time              `json:"timestamp"`
	EventType    string                 `json:"eventType"`
	Severity     string                 `json:"severity"`
	SubjectType  string                 `json:"subjectType,omitempty"`
	SubjectValue string                 `json:"subjectValue,omitempty"`
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"userAgent,omitempty"`
	RequestID    string                 `json:"requestId,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

type SecurityDashboardRepository interface {
	GetStats(ctx context.Context) (*SecurityDashboardStats, error)
	// ListEvents returns one page of events, newest first, and the total match count.
	ListEvents(ctx context.Context, filter SecurityEventFilter) ([]SecurityEventView, int64, error)
}

type SecurityDashboardUsecase interface {
	Stats(ctx context.Context) (*SecurityDashboardStats, error)
	ListEvents(ctx context.Context, filter SecurityEventFilter) (*PaginatedResult[SecurityEventView], error)
}
