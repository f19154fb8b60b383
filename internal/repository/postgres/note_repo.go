package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type noteRepo struct {
	db *pgxpool.Pool
}

func NewNoteRepository(db *pgxpool.Pool) domain.NoteRepository {
	return &noteRepo{db: db}
}

func (r *noteRepo) Create(ctx context.Context, note *domain.Note) error {
	query := `
		INSERT INTO candidate_notes (id, candidate_id, author_id, author_name, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query,
		note.ID, note.CandidateID, note.AuthorID, note.AuthorName, note.Body, note.CreatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *noteRepo) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	query := `SELECT id, candidate_id, author_id, author_name, body, created_at FROM candidate_notes WHERE id = $1`
	var n domain.Note
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.CandidateID, &n.AuthorID, &n.AuthorName, &n.Body, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *noteRepo) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Note, error) {
	query := `
		SELECT id, candidate_id, author_id, author_name, body, created_at
		FROM candidate_notes
		WHERE candidate_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.CandidateID, &n.AuthorID, &n.AuthorName, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *noteRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM candidate_notes WHERE id = $1`, id)
	return err
}
