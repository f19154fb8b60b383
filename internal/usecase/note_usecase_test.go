package usecase_test

import (
	"net/http"
	"testing"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/internal/usecase"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNoteAdd(t *testing.T) {
	t.Run("author comes from the actor", func(t *testing.T) {
		notes := new(MockNoteRepo)
		candidates := new(MockCandidateRepo)
		audit := new(MockAuditRecorder)
		candidates.On("GetByID", mock.Anything, "c-1").Return(&domain.Candidate{ID: "c-1"}, nil)
		notes.On("Create", mock.Anything, mock.Anything).Return(nil)
		audit.On("RecordEvent", mock.Anything, domain.EntityCandidate, "c-1", domain.AuditNoteAdded, mock.Anything)

		uc := usecase.NewNoteUsecase(notes, candidates, audit, usecase.NewValidator())
		note, err := uc.Add(actorCtx(domain.RoleInterviewer), "c-1", domain.NoteInput{Body: "  strong system design  "})

		require.NoError(t, err)
		assert.Equal(t, "strong system design", note.Body)
		assert.Equal(t, "user-1", note.AuthorID)
		assert.Equal(t, "Rita Recruiter", note.AuthorName)
		audit.AssertExpectations(t)
	})

	t.Run("blank body", func(t *testing.T) {
		uc := usecase.NewNoteUsecase(new(MockNoteRepo), new(MockCandidateRepo), new(MockAuditRecorder), usecase.NewValidator())
		_, err := uc.Add(actorCtx(domain.RoleRecruiter), "c-1", domain.NoteInput{Body: "   "})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("unknown candidate", func(t *testing.T) {
		candidates := new(MockCandidateRepo)
		candidates.On("GetByID", mock.Anything, "gone").Return(nil, nil)

		uc := usecase.NewNoteUsecase(new(MockNoteRepo), candidates, new(MockAuditRecorder), usecase.NewValidator())
		_, err := uc.Add(actorCtx(domain.RoleRecruiter), "gone", domain.NoteInput{Body: "hi"})
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("viewers cannot write notes", func(t *testing.T) {
		uc := usecase.NewNoteUsecase(new(MockNoteRepo), new(MockCandidateRepo), new(MockAuditRecorder), usecase.NewValidator())
		_, err := uc.Add(actorCtx(domain.RoleViewer), "c-1", domain.NoteInput{Body: "hi"})
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}

func TestNoteListAndDelete(t *testing.T) {
	t.Run("empty list is not nil", func(t *testing.T) {
		notes := new(MockNoteRepo)
		notes.On("ListByCandidate", mock.Anything, "c-1").Return(nil, nil)

		uc := usecase.NewNoteUsecase(notes, new(MockCandidateRepo), new(MockAuditRecorder), usecase.NewValidator())
		list, err := uc.ListByCandidate(actorCtx(domain.RoleViewer), "c-1")

		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("delete is audited against the candidate", func(t *testing.T) {
		notes := new(MockNoteRepo)
		audit := new(MockAuditRecorder)
		notes.On("GetByID", mock.Anything, "n-1").Return(&domain.Note{ID: "n-1", CandidateID: "c-7"}, nil)
		notes.On("Delete", mock.Anything, "n-1").Return(nil)
		audit.On("RecordEvent", mock.Anything, domain.EntityCandidate, "c-7", domain.AuditNoteDeleted, mock.Anything)

		uc := usecase.NewNoteUsecase(notes, new(MockCandidateRepo), audit, usecase.NewValidator())
		require.NoError(t, uc.Delete(actorCtx(domain.RoleRecruiter), "n-1"))
		audit.AssertExpectations(t)
	})

	t.Run("only recruiters delete notes", func(t *testing.T) {
		uc := usecase.NewNoteUsecase(new(MockNoteRepo), new(MockCandidateRepo), new(MockAuditRecorder), usecase.NewValidator())
		err := uc.Delete(actorCtx(domain.RoleHiringManager), "n-1")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}
