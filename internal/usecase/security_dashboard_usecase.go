package usecase

import (
	"context"
	"sync"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/security"
)

var severities = map[string]bool{
	string(security.SeverityINFO):     true,
	string(security.SeverityMEDIUM):   true,
	string(security.SeverityWARN):     true,
	string(security.SeverityHIGH):     true,
	string(security.SeverityCRITICAL): true,
}

type securityDashboardUsecase struct {
	repo domain.SecurityDashboardRepository

	statsMu       sync.RWMutex
	statsCache    *domain.SecurityDashboardStats
	statsCachedAt time.Time
	statsTTL      time.Duration
	now           func() time.Time
}

// NewSecurityDashboardUsecase exposes persisted security events to recruiters.
// Stats are cached in process for a minute.
func NewSecurityDashboardUsecase(repo domain.SecurityDashboardRepository) domain.SecurityDashboardUsecase {
	return &securityDashboardUsecase{repo: repo, statsTTL: time.Minute, now: time.Now}
}

func (u *securityDashboardUsecase) Stats(ctx context.Context) (*domain.SecurityDashboardStats, error) {
	if err := requireRole(ctx, domain.RoleRecruiter); err != nil {
		return nil, err
	}

	u.statsMu.RLock()
	if u.statsCache != nil && u.now().Sub(u.statsCachedAt) < u.statsTTL {
		cached := u.statsCache
		u.statsMu.RUnlock()
		return cached, nil
	}
	u.statsMu.RUnlock()

	stats, err := u.repo.GetStats(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u.statsMu.Lock()
	u.statsCache = stats
	u.statsCachedAt = u.now()
	u.statsMu.Unlock()
	return stats, nil
}

func (u *securityDashboardUsecase) ListEvents(ctx context.Context, filter domain.SecurityEventFilter) (*domain.PaginatedResult[domain.SecurityEventView], error) {
	if err := requireRole(ctx, domain.RoleRecruiter); err != nil {
		return nil, err
	}
	if filter.Severity != "" && !severities[filter.Severity] {
		return nil, apperror.BadRequest("Unsupported severity filter")
	}
	filter.Page, filter.Limit = domain.NormalizePage(filter.Page, filter.Limit)

	events, total, err := u.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPaginatedResult(events, total, filter.Page, filter.Limit), nil
}
