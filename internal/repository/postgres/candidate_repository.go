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
	"github.com/lib/pq"
)

var candidateColumns = []string{
	"id", "name", "email", "role", "project", "interviewer_id", "interview_schedule",
	"professional_experience", "main_language", "database_skill", "cloud", "another_tech",
	"live_code_result", "live_code_verdict", "status", "level", "mirror",
	"created_at", "updated_at", "deleted_at",
}

var candidateSelect = "SELECT " + strings.Join(candidateColumns, ", ") + " FROM candidates"

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	placeholders := make([]string, len(candidateColumns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO candidates (%s) VALUES (%s)",
		strings.Join(candidateColumns, ", "), strings.Join(placeholders, ", "))

	_, err := r.db.Exec(ctx, query, candidateValues(c)...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Candidate with this email already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

// BulkCreate copies all candidates inside one transaction so a failure
// leaves nothing behind.
func (r *candidateRepository) BulkCreate(ctx context.Context, candidates []*domain.Candidate) (int64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	rows := make([][]any, len(candidates))
	for i, c := range candidates {
		rows[i] = candidateValues(c)
	}

	inserted, err := tx.CopyFrom(ctx, pgx.Identifier{"candidates"}, candidateColumns, pgx.CopyFromRows(rows))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperror.Conflict("One or more candidates already exist")
		}
		return 0, fmt.Errorf("copy candidates: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit candidate import: %w", err)
	}
	return inserted, nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	query := candidateSelect + " WHERE id = $1 AND deleted_at IS NULL"
	return r.getOne(ctx, query, id)
}

func (r *candidateRepository) GetByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	query := candidateSelect + " WHERE email = $1 AND deleted_at IS NULL"
	return r.getOne(ctx, query, email)
}

func (r *candidateRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Candidate, error) {
	c, err := scanCandidate(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *candidateRepository) List(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := []any{}
	argIndex := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", argIndex))
		args = append(args, filter.Level)
		argIndex++
	}
	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role ILIKE $%d", argIndex))
		args = append(args, "%"+filter.Role+"%")
		argIndex++
	}
	if filter.InterviewerID != "" {
		conditions = append(conditions, fmt.Sprintf("interviewer_id = $%d", argIndex))
		args = append(args, filter.InterviewerID)
		argIndex++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%[1]d OR email ILIKE $%[1]d OR role ILIKE $%[1]d OR professional_experience ILIKE $%[1]d)", argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM candidates WHERE " + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = domain.DefaultPageSize
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		candidateSelect, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []domain.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		candidates = append(candidates, *c)
	}
	return candidates, total, rows.Err()
}

// Update rewrites every mutable column of an active candidate.
func (r *candidateRepository) Update(ctx context.Context, c *domain.Candidate) error {
	values := candidateValues(c)
	sets := []string{}
	args := []any{c.ID}
	for i, col := range candidateColumns {
		switch col {
		case "id", "created_at", "deleted_at":
			continue
		}
		args = append(args, values[i])
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	query := fmt.Sprintf("UPDATE candidates SET %s WHERE id = $1 AND deleted_at IS NULL", strings.Join(sets, ", "))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Candidate with this email already exists")
		}
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Candidate not found")
	}
	return nil
}

func (r *candidateRepository) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE candidates SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *candidateRepository) CountByStatus(ctx context.Context) (map[domain.CandidateStatus]int64, error) {
	query := `SELECT status, COUNT(*) FROM candidates WHERE deleted_at IS NULL GROUP BY status`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count candidates by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.CandidateStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.CandidateStatus(status)] = n
	}
	return counts, rows.Err()
}

// candidateValues follows the order of candidateColumns.
func candidateValues(c *domain.Candidate) []any {
	var verdict, level *string
	if c.LiveCodeVerdict != nil {
		v := string(*c.LiveCodeVerdict)
		verdict = &v
	}
	if c.Level != nil {
		l := string(*c.Level)
		level = &l
	}
	return []any{
		c.ID, c.Name, c.Email, c.Role, c.Project, c.InterviewerID, c.InterviewSchedule,
		c.ProfessionalExperience, c.MainLanguage, c.Database, c.Cloud, techOrEmpty(c.AnotherTech),
		c.LiveCodeResult, verdict, string(c.Status), level, c.Mirror,
		c.CreatedAt, c.UpdatedAt, c.DeletedAt,
	}
}

func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var c domain.Candidate
	var verdict, level *string
	var status string
	var tech []string

	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Role, &c.Project, &c.InterviewerID, &c.InterviewSchedule,
		&c.ProfessionalExperience, &c.MainLanguage, &c.Database, &c.Cloud, pq.Array(&tech),
		&c.LiveCodeResult, &verdict, &status, &level, &c.Mirror,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = domain.CandidateStatus(status)
	c.AnotherTech = techOrEmpty(tech)
	if verdict != nil {
		v := domain.LiveCodeVerdict(*verdict)
		c.LiveCodeVerdict = &v
	}
	if level != nil {
		l := domain.CandidateLevel(*level)
		c.Level = &l
	}
	return &c, nil
}

func techOrEmpty(tech []string) []string {
	if tech == nil {
		return []string{}
	}
	return tech
}
