package usecase

import (
	"context"
	"sort"
	"time"

	"go-hiring-pipeline/pkg/logger"
)

// HealthCheck probes one dependency. A nil error means it is reachable.
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	// Check runs every probe and reports per-component status. healthy is
	// false when any probe failed.
	Check(ctx context.Context) (status map[string]string, healthy bool)
}

type healthUsecase struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks, timeout: 3 * time.Second}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	names := make([]string, 0, len(u.checks))
	for name := range u.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := map[string]string{"status": "ok"}
	healthy := true
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, u.timeout)
		err := u.checks[name](checkCtx)
		cancel()

		if err != nil {
			logger.FromContext(ctx).Warn("Health check failed", "component", name, "error", err)
			status[name] = "unavailable"
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}
