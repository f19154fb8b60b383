package domain

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrInvalidFileKind = errors.New("file must be a CSV")
	ErrEmptyInput      = errors.New("empty CSV file")
	ErrMaliciousFile   = errors.New("file rejected by malware scan")
)

// ImportColumns is the recognised header vocabulary. Unknown columns are ignored.
var ImportColumns = []string{
	"name", "email", "role", "project", "interviewer", "interview_schedule",
	"professional_experience", "main_language", "database", "cloud",
	"another_tech", "live_code_result", "status", "level", "mirror",
}

// ImportFile is an uploaded document as received from the client.
type ImportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// CandidateCSVRow is one data row keyed by header name, before transformation.
type CandidateCSVRow struct {
	Name                   string `validate:"required"`
	Email                  string `validate:"required,email"`
	Role                   string `validate:"required"`
	Project                string
	Interviewer            string
	InterviewSchedule      string
	ProfessionalExperience string
	MainLanguage           string
	Database               string
	Cloud                  string
	AnotherTech            string
	LiveCodeResult         string
	Status                 string
	Level                  string
	Mirror                 string
}

type ImportSuccess struct {
	Row  int        `json:"row"`
	Data *Candidate `json:"data"`
}

type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportDuplicate struct {
	Row   int    `json:"row"`
	Email string `json:"email"`
	Error string `json:"error"`
}

type ImportResults struct {
	Success    []ImportSuccess   `json:"success"`
	Errors     []ImportRowError  `json:"errors"`
	Duplicates []ImportDuplicate `json:"duplicates"`
}

type ImportSummary struct {
	Total      int `json:"total"`
	Success    int `json:"success"`
	Errors     int `json:"errors"`
	Duplicates int `json:"duplicates"`
}

type ImportOutcome int

const (
	ImportAllSucceeded ImportOutcome = iota
	ImportPartial
	ImportFailed
)

func (o ImportOutcome) String() string {
	switch o {
	case ImportPartial:
		return "partial"
	case ImportFailed:
		return "failed"
	default:
		return "succeeded"
	}
}

// HTTPStatus maps the outcome to the status the API reports.
func (o ImportOutcome) HTTPStatus() int {
	switch o {
	case ImportPartial:
		return http.StatusMultiStatus
	case ImportFailed:
		return http.StatusBadRequest
	default:
		return http.StatusOK
	}
}

type ImportReport struct {
	Message string        `json:"message"`
	Results ImportResults `json:"results"`
	Summary ImportSummary `json:"summary"`
	Outcome ImportOutcome `json:"-"`
}

// ImportArchiver keeps a copy of uploaded files. Implementations are best-effort.
type ImportArchiver interface {
	Archive(ctx context.Context, file ImportFile) (string, error)
}

type ImportUsecase interface {
	ImportCandidates(ctx context.Context, file ImportFile) (*ImportReport, error)
}
