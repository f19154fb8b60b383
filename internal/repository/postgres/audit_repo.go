package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"go-hiring-pipeline/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type auditRepo struct {
	db *pgxpool.Pool
}

// NewAuditRepository stores entries in the append-only audit_log table.
func NewAuditRepository(db *pgxpool.Pool) domain.AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	diffJSON, err := json.Marshal(entry.Diff)
	if err != nil {
		return fmt.Errorf("marshal audit diff: %w", err)
	}

	query := `
		INSERT INTO audit_log (id, entity_type, entity_id, action, diff, actor_id, actor_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.db.Exec(ctx, query,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action, diffJSON,
		entry.ActorID, entry.ActorName, entry.CreatedAt,
	)
	return err
}

func (r *auditRepo) ListByEntity(ctx context.Context, entityID, entityType string) ([]domain.AuditEntry, error) {
	query := `
		SELECT id, entity_type, entity_id, action, diff, actor_id, actor_name, created_at
		FROM audit_log
		WHERE entity_id = $1 AND entity_type = $2
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, entityID, entityType)
	if err != nil {
		return nil, fmt.Errorf("query audit by entity: %w", err)
	}
	return scanAuditEntries(rows)
}

func (r *auditRepo) ListByActor(ctx context.Context, actorID string) ([]domain.AuditEntry, error) {
	query := `
		SELECT id, entity_type, entity_id, action, diff, actor_id, actor_name, created_at
		FROM audit_log
		WHERE actor_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("query audit by actor: %w", err)
	}
	return scanAuditEntries(rows)
}

func scanAuditEntries(rows pgx.Rows) ([]domain.AuditEntry, error) {
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var e domain.AuditEntry
		var diffJSON []byte
		if err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &e.Action, &diffJSON,
			&e.ActorID, &e.ActorName, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(diffJSON) > 0 {
			if err := json.Unmarshal(diffJSON, &e.Diff); err != nil {
				return nil, fmt.Errorf("decode audit diff %s: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
