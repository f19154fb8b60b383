package usecase

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/logger"
	"go-hiring-pipeline/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const unknownUserName = "Unknown User"

type userUsecase struct {
	repo     domain.UserRepository
	audits   domain.AuditRepository
	audit    domain.AuditRecorder
	mailer   domain.InvitationMailer
	validate *validator.Validate
	appURL   string
	now      func() time.Time
}

// NewUserUsecase builds the user management usecase. mailer may be nil, in
// which case invitations are created without sending an email.
func NewUserUsecase(
	repo domain.UserRepository,
	audits domain.AuditRepository,
	audit domain.AuditRecorder,
	mailer domain.InvitationMailer,
	validate *validator.Validate,
	appURL string,
) domain.UserUsecase {
	return &userUsecase{
		repo:     repo,
		audits:   audits,
		audit:    audit,
		mailer:   mailer,
		validate: validate,
		appURL:   strings.TrimRight(appURL, "/"),
		now:      time.Now,
	}
}

func (u *userUsecase) SyncUser(ctx context.Context, identity domain.ExternalIdentity) (*domain.User, bool, error) {
	if identity.Subject == "" {
		return nil, false, apperror.Unauthorized("User not authenticated")
	}
	identity.Email = strings.ToLower(strings.TrimSpace(identity.Email))
	if err := u.validate.Struct(identity); err != nil {
		return nil, false, apperror.BadRequest(validation.Message(err))
	}
	now := u.now().UTC()

	user, err := u.repo.GetByExternalID(ctx, identity.Subject)
	if err != nil {
		return nil, false, apperror.Internal(err)
	}
	if user == nil {
		user, err = u.repo.GetByEmail(ctx, identity.Email)
		if err != nil {
			return nil, false, apperror.Internal(err)
		}
		if user != nil && user.ExternalID != "" {
			return nil, false, apperror.Conflict("Email is already linked to another account")
		}
	}

	if user == nil {
		name := strings.TrimSpace(identity.Name)
		if name == "" {
			name = unknownUserName
		}
		user = &domain.User{
			ID:          uuid.NewString(),
			ExternalID:  identity.Subject,
			Name:        name,
			Email:       identity.Email,
			Role:        domain.DefaultRole,
			LastLoginAt: &now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := u.repo.Create(ctx, user); err != nil {
			return nil, false, wrapStoreError(err)
		}
		logger.FromContext(ctx).Info("User created on first sign-in", "user_id", user.ID, "role", user.Role)
		return user, true, nil
	}

	if !user.IsActive() {
		return nil, false, apperror.Forbidden("Account is deactivated")
	}

	if user.ExternalID == "" {
		// pending invitation claimed by its first sign-in
		user.ExternalID = identity.Subject
		if name := strings.TrimSpace(identity.Name); name != "" && user.Name == "" {
			user.Name = name
		}
		logger.FromContext(ctx).Info("Invitation accepted", "user_id", user.ID)
	}
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := u.repo.Update(ctx, user); err != nil {
		return nil, false, wrapStoreError(err)
	}
	return user, false, nil
}

func (u *userUsecase) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	user, err := u.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

func (u *userUsecase) List(ctx context.Context, filter domain.UserFilter) (*domain.PaginatedResult[domain.User], error) {
	if err := requirePermission(ctx, domain.ResourceUsers, domain.ActionRead); err != nil {
		return nil, err
	}
	switch filter.Status {
	case "", domain.UserStatusAll, domain.UserStatusActive, domain.UserStatusInactive:
	default:
		return nil, apperror.BadRequest("status must be one of active, inactive, all")
	}
	if filter.Role != "" && !domain.Role(filter.Role).Valid() {
		return nil, apperror.BadRequest("Unsupported role filter")
	}
	filter.Page, filter.Limit = domain.NormalizePage(filter.Page, filter.Limit)

	users, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPaginatedResult(users, total, filter.Page, filter.Limit), nil
}

func (u *userUsecase) Stats(ctx context.Context) (*domain.UserStats, error) {
	if err := requirePermission(ctx, domain.ResourceUsers, domain.ActionRead); err != nil {
		return nil, err
	}
	stats, err := u.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if stats.RoleDistribution == nil {
		stats.RoleDistribution = map[domain.Role]int64{}
	}
	return stats, nil
}

func (u *userUsecase) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if err := requirePermission(ctx, domain.ResourceUsers, domain.ActionUpdate); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := u.validate.Struct(patch); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	user, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	before := user.AuditFields()

	updated := *user
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Role != nil {
		updated.Role = *patch.Role
	}
	updated.UpdatedAt = u.now().UTC()

	if err := u.repo.Update(ctx, &updated); err != nil {
		return nil, wrapStoreError(err)
	}

	if diff := ComputeDiff(before, updated.AuditFields()); len(diff) > 0 {
		u.audit.RecordEvent(ctx, domain.EntityUser, updated.ID, domain.AuditUpdated, diff)
	}
	return &updated, nil
}

func (u *userUsecase) Deactivate(ctx context.Context, id string) (*domain.User, error) {
	if err := requirePermission(ctx, domain.ResourceUsers, domain.ActionUpdate); err != nil {
		return nil, err
	}
	actor, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}
	if actor.ID == id {
		return nil, apperror.BadRequest("You cannot deactivate your own account")
	}

	at := u.now().UTC()
	changed, err := u.repo.SetDeactivated(ctx, id, &at)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !changed {
		return nil, apperror.NotFound("User not found or already deactivated")
	}

	user, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	u.audit.RecordEvent(ctx, domain.EntityUser, id, domain.AuditDeactivated, domain.AuditDiff{
		"deactivatedAt": domain.FieldChange{Before: nil, After: at.Format(time.RFC3339)},
	})
	return user, nil
}

func (u *userUsecase) Reactivate(ctx context.Context, id string) (*domain.User, error) {
	if err := requirePermission(ctx, domain.ResourceUsers, domain.ActionUpdate); err != nil {
		return nil, err
	}

	existing, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsActive() {
		return nil, apperror.BadRequest("User is already active")
	}
	previous := existing.DeactivatedAt.UTC().Format(time.RFC3339)

	changed, err := u.repo.SetDeactivated(ctx, id, nil)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !changed {
		return nil, apperror.NotFound("User not found or already active")
	}

	existing.DeactivatedAt = nil
	u.audit.RecordEvent(ctx, domain.EntityUser, id, domain.AuditReactivated, domain.AuditDiff{
		"deactivatedAt": domain.FieldChange{Before: previous, After: nil},
	})
	return existing, nil
}

func (u *userUsecase) Invite(ctx context.Context, req domain.InviteRequest) (*domain.Invitation, error) {
	if err := requireRole(ctx, domain.RoleRecruiter); err != nil {
		return nil, err
	}
	actor, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	existing, err := u.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("A user with this email already exists")
	}

	now := u.now().UTC()
	name := req.Name
	if name == "" {
		name = strings.SplitN(req.Email, "@", 2)[0]
	}
	user := &domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     req.Email,
		Role:      req.Role,
		InvitedBy: &actor.ID,
		InvitedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.repo.Create(ctx, user); err != nil {
		return nil, wrapStoreError(err)
	}

	invitation := &domain.Invitation{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	invitation.Link = u.appURL + "/auth/accept-invitation?token=" + url.QueryEscape(invitation.ID)

	if u.mailer != nil && u.mailer.IsConfigured() {
		if err := u.mailer.SendInvitation(user.Email, user.Name, string(user.Role), invitation.Link, actor.Name); err != nil {
			logger.FromContext(ctx).Warn("Invitation email failed", "email", user.Email, "error", err)
		} else {
			invitation.EmailSent = true
		}
	}

	u.audit.RecordEvent(ctx, domain.EntityUser, user.ID, domain.AuditInvited, domain.AuditDiff{
		"email":        user.Email,
		"role":         string(user.Role),
		"name":         user.Name,
		"invitedBy":    actor.ID,
		"invitationId": invitation.ID,
	})
	return invitation, nil
}

// Activity merges the entries recorded against the user with the entries the
// user performed, newest first.
func (u *userUsecase) Activity(ctx context.Context, userID string, page, limit int) (*domain.PaginatedResult[domain.AuditEntry], error) {
	if err := requireRole(ctx, domain.RoleRecruiter, domain.RoleHiringManager); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperror.BadRequest("userId is required")
	}

	about, err := u.audits.ListByEntity(ctx, userID, domain.EntityUser)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	by, err := u.audits.ListByActor(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	seen := make(map[string]bool, len(about)+len(by))
	merged := make([]domain.AuditEntry, 0, len(about)+len(by))
	for _, entry := range append(about, by...) {
		if seen[entry.ID] {
			continue
		}
		seen[entry.ID] = true
		merged = append(merged, entry)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	page, limit = domain.NormalizePage(page, limit)
	start := (page - 1) * limit
	if start > len(merged) {
		start = len(merged)
	}
	end := start + limit
	if end > len(merged) {
		end = len(merged)
	}
	return domain.NewPaginatedResult(merged[start:end], int64(len(merged)), page, limit), nil
}

func (u *userUsecase) find(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// wrapStoreError passes AppErrors raised by the repository (unique
// violations) through and hides everything else behind a 500.
func wrapStoreError(err error) error {
	if apperror.CodeOf(err) != http.StatusInternalServerError {
		return err
	}
	return apperror.Internal(err)
}
