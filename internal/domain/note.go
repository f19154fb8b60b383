package domain

import (
	"context"
	"time"
)

// Note is immutable once written; it can only be deleted.
type Note struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NoteInput struct {
	Body string `json:"body" validate:"required"`
}

type NoteRepository interface {
	Create(ctx context.Context, note *Note) error
	GetByID(ctx context.Context, id string) (*Note, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]Note, error)
	Delete(ctx context.Context, id string) error
}

type NoteUsecase interface {
	ListByCandidate(ctx context.Context, candidateID string) ([]Note, error)
	Add(ctx context.Context, candidateID string, input NoteInput) (*Note, error)
	Delete(ctx context.Context, id string) error
}
