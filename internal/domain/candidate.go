package domain

import (
	"context"
	"time"
)

type CandidateStatus string

const (
	StatusApplied   CandidateStatus = "APPLIED"
	StatusScreening CandidateStatus = "SCREENING"
	StatusInterview CandidateStatus = "INTERVIEW"
	StatusPassed    CandidateStatus = "PASSED"
	StatusRejected  CandidateStatus = "REJECTED"
	StatusOffer     CandidateStatus = "OFFER"
)

// CandidateStatuses lists the pipeline stages in board order.
var CandidateStatuses = []CandidateStatus{
	StatusApplied, StatusScreening, StatusInterview, StatusPassed, StatusRejected, StatusOffer,
}

// Valid reports whether s is one of the pipeline stages. Matching is case-sensitive.
func (s CandidateStatus) Valid() bool {
	for _, v := range CandidateStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type CandidateLevel string

const (
	LevelJunior CandidateLevel = "Junior"
	LevelMid    CandidateLevel = "Mid"
	LevelSenior CandidateLevel = "Senior"
)

func (l CandidateLevel) Valid() bool {
	switch l {
	case LevelJunior, LevelMid, LevelSenior:
		return true
	}
	return false
}

type LiveCodeVerdict string

const (
	VerdictPass   LiveCodeVerdict = "PASS"
	VerdictFail   LiveCodeVerdict = "FAIL"
	VerdictOnHold LiveCodeVerdict = "ON_HOLD"
)

func (v LiveCodeVerdict) Valid() bool {
	switch v {
	case VerdictPass, VerdictFail, VerdictOnHold:
		return true
	}
	return false
}

// Candidate is a person moving through the hiring pipeline. Optional
// attributes are nil when absent; AnotherTech is never nil.
type Candidate struct {
	ID                     string           `json:"id"`
	Name                   string           `json:"name"`
	Email                  string           `json:"email"`
	Role                   string           `json:"role"`
	Project                *string          `json:"project,omitempty"`
	InterviewerID          *string          `json:"interviewerId,omitempty"`
	InterviewSchedule      *time.Time       `json:"interviewSchedule,omitempty"`
	ProfessionalExperience *string          `json:"professionalExperience,omitempty"`
	MainLanguage           *string          `json:"mainLanguage,omitempty"`
	Database               *string          `json:"database,omitempty"`
	Cloud                  *string          `json:"cloud,omitempty"`
	AnotherTech            []string         `json:"anotherTech"`
	LiveCodeResult         *string          `json:"liveCodeResult,omitempty"`
	LiveCodeVerdict        *LiveCodeVerdict `json:"liveCodeVerdict,omitempty"`
	Status                 CandidateStatus  `json:"status"`
	Level                  *CandidateLevel  `json:"level,omitempty"`
	Mirror                 *string          `json:"mirror,omitempty"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              time.Time        `json:"updatedAt"`
	DeletedAt              *time.Time       `json:"deletedAt,omitempty"`
}

// AuditFields flattens the candidate into the record shape used for audit diffs.
// Absent optionals are untyped nil and timestamps are RFC 3339 strings, so
// equal candidates always produce equal maps.
func (c *Candidate) AuditFields() map[string]any {
	tech := c.AnotherTech
	if tech == nil {
		tech = []string{}
	}
	fields := map[string]any{
		"name":                   c.Name,
		"email":                  c.Email,
		"role":                   c.Role,
		"project":                strOrNil(c.Project),
		"interviewerId":          strOrNil(c.InterviewerID),
		"interviewSchedule":      timeOrNil(c.InterviewSchedule),
		"professionalExperience": strOrNil(c.ProfessionalExperience),
		"mainLanguage":           strOrNil(c.MainLanguage),
		"database":               strOrNil(c.Database),
		"cloud":                  strOrNil(c.Cloud),
		"anotherTech":            tech,
		"liveCodeResult":         strOrNil(c.LiveCodeResult),
		"liveCodeVerdict":        nil,
		"status":                 string(c.Status),
		"level":                  nil,
		"mirror":                 strOrNil(c.Mirror),
		"deletedAt":              timeOrNil(c.DeletedAt),
	}
	if c.LiveCodeVerdict != nil {
		fields["liveCodeVerdict"] = string(*c.LiveCodeVerdict)
	}
	if c.Level != nil {
		fields["level"] = string(*c.Level)
	}
	return fields
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// CandidateInput is the payload for creating a candidate.
type CandidateInput struct {
	Name                   string           `json:"name" validate:"required"`
	Email                  string           `json:"email" validate:"required,email"`
	Role                   string           `json:"role" validate:"required"`
	Project                *string          `json:"project"`
	InterviewerID          *string          `json:"interviewerId"`
	InterviewSchedule      *time.Time       `json:"interviewSchedule"`
	ProfessionalExperience *string          `json:"professionalExperience"`
	MainLanguage           *string          `json:"mainLanguage"`
	Database               *string          `json:"database"`
	Cloud                  *string          `json:"cloud"`
	AnotherTech            []string         `json:"anotherTech"`
	LiveCodeResult         *string          `json:"liveCodeResult"`
	LiveCodeVerdict        *LiveCodeVerdict `json:"liveCodeVerdict" validate:"omitempty,live_code_verdict"`
	Status                 CandidateStatus  `json:"status" validate:"omitempty,candidate_status"`
	Level                  *CandidateLevel  `json:"level" validate:"omitempty,candidate_level"`
	Mirror                 *string          `json:"mirror"`
}

// CandidatePatch carries a partial update; nil fields are left untouched.
type CandidatePatch struct {
	Name                   *string          `json:"name" validate:"omitempty,min=1"`
	Email                  *string          `json:"email" validate:"omitempty,email"`
	Role                   *string          `json:"role" validate:"omitempty,min=1"`
	Project                *string          `json:"project"`
	InterviewerID          *string          `json:"interviewerId"`
	InterviewSchedule      *time.Time       `json:"interviewSchedule"`
	ProfessionalExperience *string          `json:"professionalExperience"`
	MainLanguage           *string          `json:"mainLanguage"`
	Database               *string          `json:"database"`
	Cloud                  *string          `json:"cloud"`
	AnotherTech            *[]string        `json:"anotherTech"`
	LiveCodeResult         *string          `json:"liveCodeResult"`
	LiveCodeVerdict        *LiveCodeVerdict `json:"liveCodeVerdict" validate:"omitempty,live_code_verdict"`
	Status                 *CandidateStatus `json:"status" validate:"omitempty,candidate_status"`
	Level                  *CandidateLevel  `json:"level" validate:"omitempty,candidate_level"`
	Mirror                 *string          `json:"mirror"`
}

// ScheduleRequest assigns an interviewer and an interview time.
type ScheduleRequest struct {
	InterviewerID string    `json:"interviewerId" validate:"required"`
	At            time.Time `json:"at" validate:"required"`
}

type CandidateFilter struct {
	Status        string `form:"status"`
	Level         string `form:"level"`
	Role          string `form:"role"`
	InterviewerID string `form:"interviewerId"`
	Search        string `form:"search"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
}

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// MaxExportRows caps a single export.
const MaxExportRows = 10000

type ExportRequest struct {
	Filter CandidateFilter
	Format ExportFormat
}

type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

type CandidateRepository interface {
	Create(ctx context.Context, c *Candidate) error
	// BulkCreate inserts all candidates atomically.
	BulkCreate(ctx context.Context, candidates []*Candidate) (int64, error)
	// GetByID and GetByEmail return nil, nil when no active candidate matches.
	GetByID(ctx context.Context, id string) (*Candidate, error)
	GetByEmail(ctx context.Context, email string) (*Candidate, error)
	List(ctx context.Context, filter CandidateFilter) ([]Candidate, int64, error)
	Update(ctx context.Context, c *Candidate) error
	SoftDelete(ctx context.Context, id string, at time.Time) (bool, error)
	CountByStatus(ctx context.Context) (map[CandidateStatus]int64, error)
}

type CandidateUsecase interface {
	List(ctx context.Context, filter CandidateFilter) (*PaginatedResult[Candidate], error)
	Get(ctx context.Context, id string) (*Candidate, error)
	Create(ctx context.Context, input CandidateInput) (*Candidate, error)
	Update(ctx context.Context, id string, patch CandidatePatch) (*Candidate, error)
	Delete(ctx context.Context, id string) error
	Schedule(ctx context.Context, id string, req ScheduleRequest) (*Candidate, error)
	Export(ctx context.Context, req ExportRequest) (*ExportFile, error)
}
