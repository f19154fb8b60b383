package usecase

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/logger"

	"github.com/google/uuid"
)

type auditUsecase struct {
	repo domain.AuditRepository
	now  func() time.Time
}

func NewAuditUsecase(repo domain.AuditRepository) domain.AuditUsecase {
	return &auditUsecase{repo: repo, now: time.Now}
}

// ComputeDiff returns the fields whose values differ between before and after.
// Keys from both records are considered; unchanged keys are omitted. Values
// are compared by value, nested structures are not diffed.
func ComputeDiff(before, after map[string]any) domain.AuditDiff {
	diff := domain.AuditDiff{}
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}
	for k := range keys {
		b, a := before[k], after[k]
		if !reflect.DeepEqual(b, a) {
			diff[k] = domain.FieldChange{Before: b, After: a}
		}
	}
	return diff
}

// Record appends an audit entry attributed to the acting user. Without an
// actor in ctx nothing is written and nil is returned.
func (u *auditUsecase) Record(ctx context.Context, entityType, entityID, action string, diff domain.AuditDiff) error {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return nil
	}
	entry := &domain.AuditEntry{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Diff:       diff,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		CreatedAt:  u.now().UTC(),
	}
	if err := u.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// RecordEvent is the best-effort form of Record used after a mutation has
// already succeeded. Failures are logged and dropped.
func (u *auditUsecase) RecordEvent(ctx context.Context, entityType, entityID, action string, diff domain.AuditDiff) {
	if err := u.Record(ctx, entityType, entityID, action, diff); err != nil {
		logger.FromContext(ctx).Warn("Audit logging failed",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
	}
}

func (u *auditUsecase) ListByEntity(ctx context.Context, entityID, entityType string) ([]domain.AuditEntry, error) {
	if err := requirePermission(ctx, domain.ResourceReports, domain.ActionRead); err != nil {
		return nil, err
	}
	if entityID == "" || entityType == "" {
		return nil, apperror.BadRequest("entityId and entityType are required")
	}
	entries, err := u.repo.ListByEntity(ctx, entityID, entityType)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	sortNewestFirst(entries)
	return entries, nil
}

func (u *auditUsecase) ListByActor(ctx context.Context, actorID string) ([]domain.AuditEntry, error) {
	if err := requirePermission(ctx, domain.ResourceReports, domain.ActionRead); err != nil {
		return nil, err
	}
	if actorID == "" {
		return nil, apperror.BadRequest("actorId is required")
	}
	entries, err := u.repo.ListByActor(ctx, actorID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	sortNewestFirst(entries)
	return entries, nil
}

func sortNewestFirst(entries []domain.AuditEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}
