package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userSelect = `
	SELECT id, COALESCE(external_id, ''), name, email, role, deactivated_at, last_login_at,
		invited_by, invited_at, created_at, updated_at
	FROM users`

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, external_id, name, email, role, deactivated_at, last_login_at,
			invited_by, invited_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		user.ID, nullIfEmpty(user.ExternalID), user.Name, user.Email, string(user.Role),
		user.DeactivatedAt, user.LastLoginAt, user.InvitedBy, user.InvitedAt,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User with this email already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, userSelect+" WHERE id = $1", id)
}

func (r *userRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return r.getOne(ctx, userSelect+" WHERE external_id = $1", externalID)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, userSelect+" WHERE lower(email) = lower($1)", email)
}

func (r *userRepo) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error) {
	conditions := []string{"1=1"}
	args := []any{}
	argIndex := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}
	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIndex))
		args = append(args, filter.Role)
		argIndex++
	}
	switch filter.Status {
	case domain.UserStatusActive:
		conditions = append(conditions, "deactivated_at IS NULL")
	case domain.UserStatusInactive:
		conditions = append(conditions, "deactivated_at IS NOT NULL")
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page, limit := domain.NormalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		userSelect, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (r *userRepo) Stats(ctx context.Context) (*domain.UserStats, error) {
	stats := &domain.UserStats{RoleDistribution: map[domain.Role]int64{}}

	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE deactivated_at IS NULL),
			COUNT(*) FILTER (WHERE deactivated_at IS NOT NULL)
		FROM users`
	if err := r.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Inactive); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM users WHERE deactivated_at IS NULL GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("role distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		stats.RoleDistribution[domain.Role(role)] = n
	}
	return stats, rows.Err()
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET external_id = $2, name = $3, email = $4, role = $5,
			last_login_at = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		user.ID, nullIfEmpty(user.ExternalID), user.Name, user.Email, string(user.Role),
		user.LastLoginAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User with this email already exists")
		}
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

func (r *userRepo) SetDeactivated(ctx context.Context, id string, at *time.Time) (bool, error) {
	query := `UPDATE users SET deactivated_at = $2, updated_at = NOW() WHERE id = $1 AND deactivated_at IS NULL`
	if at == nil {
		query = `UPDATE users SET deactivated_at = NULL, updated_at = NOW() WHERE id = $1 AND deactivated_at IS NOT NULL`
		tag, err := r.db.Exec(ctx, query, id)
		if err != nil {
			return false, err
		}
		return tag.RowsAffected() > 0, nil
	}

	tag, err := r.db.Exec(ctx, query, id, *at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var role string
	err := row.Scan(
		&user.ID, &user.ExternalID, &user.Name, &user.Email, &role,
		&user.DeactivatedAt, &user.LastLoginAt, &user.InvitedBy, &user.InvitedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}

// nullIfEmpty stores pending identities as NULL so the unique index on
// external_id ignores them.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
