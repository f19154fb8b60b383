package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleRecruiter     Role = "RECRUITER"
	RoleHiringManager Role = "HIRING_MANAGER"
	RoleInterviewer   Role = "INTERVIEWER"
	RoleViewer        Role = "VIEWER"
)

// DefaultRole is assigned to users created on first sign-in.
const DefaultRole = RoleHiringManager

var Roles = []Role{RoleRecruiter, RoleHiringManager, RoleInterviewer, RoleViewer}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

type User struct {
	ID            string     `json:"id"`
	ExternalID    string     `json:"externalId"` // auth provider subject, empty while an invitation is pending
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	InvitedBy     *string    `json:"invitedBy,omitempty"`
	InvitedAt     *time.Time `json:"invitedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (u *User) IsActive() bool {
	return u.DeactivatedAt == nil
}

func (u *User) AuditFields() map[string]any {
	return map[string]any{
		"name":          u.Name,
		"email":         u.Email,
		"role":          string(u.Role),
		"deactivatedAt": timeOrNil(u.DeactivatedAt),
	}
}

// ExternalIdentity is what the auth provider tells us about the caller.
type ExternalIdentity struct {
	Subject string `json:"subject"`
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name"`
}

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusAll      = "all"
)

type UserFilter struct {
	Search string `form:"search"`
	Role   string `form:"role"`
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type UserStats struct {
	Total            int64          `json:"total"`
	Active           int64          `json:"active"`
	Inactive         int64          `json:"inactive"`
	RoleDistribution map[Role]int64 `json:"roleDistribution"`
}

type UserPatch struct {
	Name *string `json:"name" validate:"omitempty,min=1"`
	Role *Role   `json:"role" validate:"omitempty,user_role"`
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
	Role  Role   `json:"role" validate:"required,user_role"`
}

type Invitation struct {
	ID        string `json:"invitationId"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Link      string `json:"invitationLink"`
	EmailSent bool   `json:"emailSent"`
}

// InvitationMailer delivers invitation emails.
type InvitationMailer interface {
	IsConfigured() bool
	SendInvitation(to, name, role, link, invitedBy string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	// Lookups return nil, nil when no user matches.
	GetByID(ctx context.Context, id string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	Stats(ctx context.Context) (*UserStats, error)
	Update(ctx context.Context, user *User) error
	// SetDeactivated flips the active state. It reports false when the user
	// does not exist or is already in the requested state.
	SetDeactivated(ctx context.Context, id string, at *time.Time) (bool, error)
}

type UserUsecase interface {
	// SyncUser returns the local user for identity, creating it on first
	// sign-in. The bool reports whether a new record was created.
	SyncUser(ctx context.Context, identity ExternalIdentity) (*User, bool, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	List(ctx context.Context, filter UserFilter) (*PaginatedResult[User], error)
	Stats(ctx context.Context) (*UserStats, error)
	Update(ctx context.Context, id string, patch UserPatch) (*User, error)
	Deactivate(ctx context.Context, id string) (*User, error)
	Reactivate(ctx context.Context, id string) (*User, error)
	Invite(ctx context.Context, req InviteRequest) (*Invitation, error)
	Activity(ctx context.Context, userID string, page, limit int) (*PaginatedResult[AuditEntry], error)
}
