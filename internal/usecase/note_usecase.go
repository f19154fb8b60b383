package usecase

import (
	"context"
	"strings"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type noteUsecase struct {
	notes      domain.NoteRepository
	candidates domain.CandidateRepository
	audit      domain.AuditRecorder
	validate   *validator.Validate
	now        func() time.Time
}

func NewNoteUsecase(notes domain.NoteRepository, candidates domain.CandidateRepository, audit domain.AuditRecorder, validate *validator.Validate) domain.NoteUsecase {
	return &noteUsecase{
		notes:      notes,
		candidates: candidates,
		audit:      audit,
		validate:   validate,
		now:        time.Now,
	}
}

func (u *noteUsecase) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Note, error) {
	if err := requirePermission(ctx, domain.ResourceNotes, domain.ActionRead); err != nil {
		return nil, err
	}
	notes, err := u.notes.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

func (u *noteUsecase) Add(ctx context.Context, candidateID string, input domain.NoteInput) (*domain.Note, error) {
	if err := requirePermission(ctx, domain.ResourceNotes, domain.ActionCreate); err != nil {
		return nil, err
	}
	actor, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}

	input.Body = strings.TrimSpace(input.Body)
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	candidate, err := u.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if candidate == nil {
		return nil, apperror.NotFound("Candidate not found")
	}

	note := &domain.Note{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		AuthorID:    actor.ID,
		AuthorName:  actor.Name,
		Body:        input.Body,
		CreatedAt:   u.now().UTC(),
	}
	if err := u.notes.Create(ctx, note); err != nil {
		return nil, apperror.Internal(err)
	}

	u.audit.RecordEvent(ctx, domain.EntityCandidate, candidateID, domain.AuditNoteAdded, domain.AuditDiff{"note": note})
	return note, nil
}

func (u *noteUsecase) Delete(ctx context.Context, id string) error {
	if err := requirePermission(ctx, domain.ResourceNotes, domain.ActionDelete); err != nil {
		return err
	}

	note, err := u.notes.GetByID(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if note == nil {
		return apperror.NotFound("Note not found")
	}

	if err := u.notes.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}

	u.audit.RecordEvent(ctx, domain.EntityCandidate, note.CandidateID, domain.AuditNoteDeleted, domain.AuditDiff{"note": note})
	return nil
}
