package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/internal/usecase"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserUsecase(repo *MockUserRepo, audits *MockAuditRepo, audit *MockAuditRecorder, mailer domain.InvitationMailer) domain.UserUsecase {
	return usecase.NewUserUsecase(repo, audits, audit, mailer, usecase.NewValidator(), "https://hiring.example.com/")
}

func TestSyncUser(t *testing.T) {
	identity := domain.ExternalIdentity{Subject: "sub-1", Email: " Ada@Example.com ", Name: ""}

	t.Run("first sign-in creates a user", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByExternalID", mock.Anything, "sub-1").Return(nil, nil)
		repo.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		user, created, err := newUserUsecase(repo, nil, nil, nil).SyncUser(context.Background(), identity)

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, "Unknown User", user.Name)
		assert.Equal(t, domain.DefaultRole, user.Role)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("pending invitation is claimed", func(t *testing.T) {
		repo := new(MockUserRepo)
		invited := &domain.User{ID: "u-1", Email: "ada@example.com", Role: domain.RoleInterviewer}
		repo.On("GetByExternalID", mock.Anything, "sub-1").Return(nil, nil)
		repo.On("GetByEmail", mock.Anything, "ada@example.com").Return(invited, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		user, created, err := newUserUsecase(repo, nil, nil, nil).SyncUser(context.Background(), identity)

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "sub-1", user.ExternalID)
		assert.Equal(t, domain.RoleInterviewer, user.Role)
	})

	t.Run("email linked to another subject", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByExternalID", mock.Anything, "sub-1").Return(nil, nil)
		repo.On("GetByEmail", mock.Anything, "ada@example.com").Return(&domain.User{ID: "u-1", ExternalID: "sub-2"}, nil)

		_, _, err := newUserUsecase(repo, nil, nil, nil).SyncUser(context.Background(), identity)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("deactivated accounts cannot sign in", func(t *testing.T) {
		repo := new(MockUserRepo)
		at := time.Now()
		repo.On("GetByExternalID", mock.Anything, "sub-1").Return(&domain.User{ID: "u-1", ExternalID: "sub-1", DeactivatedAt: &at}, nil)

		_, _, err := newUserUsecase(repo, nil, nil, nil).SyncUser(context.Background(), identity)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("missing subject", func(t *testing.T) {
		_, _, err := newUserUsecase(new(MockUserRepo), nil, nil, nil).SyncUser(context.Background(), domain.ExternalIdentity{Email: "a@b.c"})
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	})
}

func TestUserDeactivation(t *testing.T) {
	t.Run("cannot deactivate yourself", func(t *testing.T) {
		_, err := newUserUsecase(new(MockUserRepo), nil, new(MockAuditRecorder), nil).Deactivate(actorCtx(domain.RoleRecruiter), "user-1")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("already deactivated", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("SetDeactivated", mock.Anything, "u-2", mock.Anything).Return(false, nil)

		_, err := newUserUsecase(repo, nil, new(MockAuditRecorder), nil).Deactivate(actorCtx(domain.RoleRecruiter), "u-2")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("deactivate then reactivate", func(t *testing.T) {
		repo := new(MockUserRepo)
		audit := new(MockAuditRecorder)
		at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		repo.On("SetDeactivated", mock.Anything, "u-2", mock.AnythingOfType("*time.Time")).Return(true, nil)
		repo.On("GetByID", mock.Anything, "u-2").Return(&domain.User{ID: "u-2", DeactivatedAt: &at}, nil)
		audit.On("RecordEvent", mock.Anything, domain.EntityUser, "u-2", mock.Anything, mock.Anything)
		uc := newUserUsecase(repo, nil, audit, nil)

		_, err := uc.Deactivate(actorCtx(domain.RoleRecruiter), "u-2")
		require.NoError(t, err)

		user, err := uc.Reactivate(actorCtx(domain.RoleRecruiter), "u-2")
		require.NoError(t, err)
		assert.True(t, user.IsActive())
		audit.AssertCalled(t, "RecordEvent", mock.Anything, domain.EntityUser, "u-2", domain.AuditReactivated,
			domain.AuditDiff{"deactivatedAt": domain.FieldChange{Before: "2024-01-01T00:00:00Z", After: nil}})
	})

	t.Run("hiring managers cannot manage users", func(t *testing.T) {
		_, err := newUserUsecase(new(MockUserRepo), nil, nil, nil).Deactivate(actorCtx(domain.RoleHiringManager), "u-2")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}

func TestUserInvite(t *testing.T) {
	req := domain.InviteRequest{Email: "New.Hire@Example.com", Role: domain.RoleInterviewer}

	t.Run("creates a pending user and sends the email", func(t *testing.T) {
		repo := new(MockUserRepo)
		audit := new(MockAuditRecorder)
		mailer := new(MockMailer)
		repo.On("GetByEmail", mock.Anything, "new.hire@example.com").Return(nil, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ExternalID == "" && u.Name == "new.hire" && *u.InvitedBy == "user-1"
		})).Return(nil)
		mailer.On("IsConfigured").Return(true)
		mailer.On("SendInvitation", "new.hire@example.com", "new.hire", "INTERVIEWER", mock.Anything, "Rita Recruiter").Return(nil)
		audit.On("RecordEvent", mock.Anything, domain.EntityUser, mock.Anything, domain.AuditInvited, mock.Anything)

		inv, err := newUserUsecase(repo, nil, audit, mailer).Invite(actorCtx(domain.RoleRecruiter), req)

		require.NoError(t, err)
		assert.True(t, inv.EmailSent)
		assert.True(t, strings.HasPrefix(inv.Link, "https://hiring.example.com/auth/accept-invitation?token="))
		repo.AssertExpectations(t)
	})

	t.Run("mail failure still creates the invitation", func(t *testing.T) {
		repo := new(MockUserRepo)
		audit := new(MockAuditRecorder)
		mailer := new(MockMailer)
		repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		mailer.On("IsConfigured").Return(true)
		mailer.On("SendInvitation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
		audit.On("RecordEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

		inv, err := newUserUsecase(repo, nil, audit, mailer).Invite(actorCtx(domain.RoleRecruiter), req)

		require.NoError(t, err)
		assert.False(t, inv.EmailSent)
	})

	t.Run("existing email", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, "new.hire@example.com").Return(&domain.User{ID: "u-9"}, nil)

		_, err := newUserUsecase(repo, nil, nil, nil).Invite(actorCtx(domain.RoleRecruiter), req)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("only recruiters invite", func(t *testing.T) {
		_, err := newUserUsecase(new(MockUserRepo), nil, nil, nil).Invite(actorCtx(domain.RoleHiringManager), req)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}

func TestUserActivity(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	shared := domain.AuditEntry{ID: "a-1", CreatedAt: t1}
	about := []domain.AuditEntry{shared, {ID: "a-2", CreatedAt: t1.Add(2 * time.Hour)}}
	by := []domain.AuditEntry{shared, {ID: "a-3", CreatedAt: t1.Add(time.Hour)}}

	audits := new(MockAuditRepo)
	audits.On("ListByEntity", mock.Anything, "u-2", domain.EntityUser).Return(about, nil)
	audits.On("ListByActor", mock.Anything, "u-2").Return(by, nil)
	uc := newUserUsecase(new(MockUserRepo), audits, nil, nil)

	result, err := uc.Activity(actorCtx(domain.RoleHiringManager), "u-2", 1, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, 2, result.TotalPages)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "a-2", result.Data[0].ID)
	assert.Equal(t, "a-3", result.Data[1].ID)

	_, err = uc.Activity(actorCtx(domain.RoleInterviewer), "u-2", 1, 20)
	assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
}
