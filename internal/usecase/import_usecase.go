package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/csvutil"
	"go-hiring-pipeline/pkg/logger"
	"go-hiring-pipeline/pkg/security"
	"go-hiring-pipeline/pkg/security/antivirus"
	"go-hiring-pipeline/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const rowPreviewLength = 100

// scheduleLayouts are tried in order; the zone-less ones are read in the
// configured import location.
var scheduleLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type ImportConfig struct {
	Location *time.Location
	MaxBytes int64
	// Scanner, when set, must clear every upload before it is parsed.
	Scanner antivirus.Scanner
}

type importUsecase struct {
	repo     domain.CandidateRepository
	audit    domain.AuditRecorder
	archiver domain.ImportArchiver
	scanner  antivirus.Scanner
	validate *validator.Validate
	loc      *time.Location
	maxBytes int64
	now      func() time.Time
}

// NewImportUsecase wires the CSV import pipeline. archiver may be nil.
func NewImportUsecase(
	repo domain.CandidateRepository,
	audit domain.AuditRecorder,
	archiver domain.ImportArchiver,
	validate *validator.Validate,
	cfg ImportConfig,
) domain.ImportUsecase {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &importUsecase{
		repo:     repo,
		audit:    audit,
		archiver: archiver,
		scanner:  cfg.Scanner,
		validate: validate,
		loc:      loc,
		maxBytes: cfg.MaxBytes,
		now:      time.Now,
	}
}

// ImportCandidates parses, validates and persists the candidates in file.
// Only a wrong file kind, an empty document or a failed bulk insert fail the
// call; every per-row problem is reported in the returned report.
func (u *importUsecase) ImportCandidates(ctx context.Context, file domain.ImportFile) (*domain.ImportReport, error) {
	if err := requirePermission(ctx, domain.ResourceCandidates, domain.ActionImport); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)

	if u.maxBytes > 0 && int64(len(file.Data)) > u.maxBytes {
		return nil, apperror.New(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d byte import limit", u.maxBytes), nil)
	}

	if check := security.ValidateCSVUpload(file.Name, file.ContentType, file.Data); !check.Valid {
		log.Info("Import rejected", "file", file.Name, "content_type", file.ContentType, "reason", check.Error)
		return nil, apperror.New(http.StatusBadRequest, "File must be a CSV", domain.ErrInvalidFileKind)
	}

	if err := u.scan(ctx, file); err != nil {
		return nil, err
	}

	lines := csvutil.Lines(file.Data)
	if len(lines) == 0 {
		return nil, apperror.New(http.StatusBadRequest, "Empty CSV file", domain.ErrEmptyInput)
	}

	header := csvutil.SplitLine(lines[0])
	for i, col := range header {
		header[i] = strings.ToLower(col)
	}
	dataLines := lines[1:]

	results := domain.ImportResults{
		Success:    []domain.ImportSuccess{},
		Errors:     []domain.ImportRowError{},
		Duplicates: []domain.ImportDuplicate{},
	}
	seen := make(map[string]int)
	now := u.now().UTC()

	for i, line := range dataLines {
		rowNumber := i + 2

		values := csvutil.SplitLine(line)
		if len(values) != len(header) {
			msg := fmt.Sprintf("Column count mismatch. Expected %d, got %d. Row data: \"%s...\"",
				len(header), len(values), csvutil.Preview(line, rowPreviewLength))
			results.Errors = append(results.Errors, domain.ImportRowError{Row: rowNumber, Error: msg})
			continue
		}

		row, err := u.validateRow(header, values)
		if err != nil {
			results.Errors = append(results.Errors, domain.ImportRowError{Row: rowNumber, Error: err.Error()})
			continue
		}

		if firstRow, ok := seen[row.Email]; ok {
			results.Duplicates = append(results.Duplicates, domain.ImportDuplicate{
				Row:   rowNumber,
				Email: row.Email,
				Error: fmt.Sprintf("Email appears earlier in this file (row %d)", firstRow),
			})
			continue
		}

		existing, err := u.repo.GetByEmail(ctx, row.Email)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Error("Duplicate check failed", "row", rowNumber, "error", err)
			results.Errors = append(results.Errors, domain.ImportRowError{
				Row:   rowNumber,
				Error: "Could not check for an existing candidate with this email",
			})
			continue
		}
		if existing != nil {
			results.Duplicates = append(results.Duplicates, domain.ImportDuplicate{
				Row:   rowNumber,
				Email: row.Email,
				Error: "Email already exists",
			})
			continue
		}

		seen[row.Email] = rowNumber
		results.Success = append(results.Success, domain.ImportSuccess{
			Row:  rowNumber,
			Data: u.transform(row, now),
		})
	}

	if len(results.Success) > 0 {
		candidates := make([]*domain.Candidate, len(results.Success))
		for i, s := range results.Success {
			candidates[i] = s.Data
		}

		inserted, err := u.repo.BulkCreate(ctx, candidates)
		if err != nil {
			log.Error("Bulk insert failed",
				"file", file.Name,
				"validated_rows", len(candidates),
				"error", err,
			)
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				return nil, appErr
			}
			return nil, apperror.Internal(fmt.Errorf("bulk insert %d candidates: %w", len(candidates), err))
		}

		u.audit.RecordEvent(ctx, domain.EntityCandidate, domain.BulkEntityID, domain.AuditImported, domain.AuditDiff{
			"count":    inserted,
			"fileName": file.Name,
		})
	}

	u.archive(ctx, file)

	report := buildReport(results, len(dataLines))
	log.Info("Import finished",
		"file", file.Name,
		"outcome", report.Outcome.String(),
		"total", report.Summary.Total,
		"success", report.Summary.Success,
		"errors", report.Summary.Errors,
		"duplicates", report.Summary.Duplicates,
	)
	return report, nil
}

// validateRow maps a split line onto the typed row and checks required fields.
func (u *importUsecase) validateRow(header, values []string) (domain.CandidateCSVRow, error) {
	record := make(map[string]string, len(header))
	for i, col := range header {
		record[col] = values[i]
	}

	row := domain.CandidateCSVRow{
		Name:                   record["name"],
		Email:                  record["email"],
		Role:                   record["role"],
		Project:                record["project"],
		Interviewer:            record["interviewer"],
		InterviewSchedule:      record["interview_schedule"],
		ProfessionalExperience: record["professional_experience"],
		MainLanguage:           record["main_language"],
		Database:               record["database"],
		Cloud:                  record["cloud"],
		AnotherTech:            record["another_tech"],
		LiveCodeResult:         record["live_code_result"],
		Status:                 record["status"],
		Level:                  record["level"],
		Mirror:                 record["mirror"],
	}

	if err := u.validate.Struct(row); err != nil {
		return row, errors.New(validation.Message(err))
	}
	return row, nil
}

// transform converts a validated row into a candidate. Unknown status falls
// back to APPLIED; unknown level and unparseable schedules are dropped.
func (u *importUsecase) transform(row domain.CandidateCSVRow, now time.Time) *domain.Candidate {
	c := &domain.Candidate{
		ID:                     uuid.NewString(),
		Name:                   row.Name,
		Email:                  row.Email,
		Role:                   row.Role,
		Project:                optional(row.Project),
		InterviewerID:          optional(row.Interviewer),
		InterviewSchedule:      parseSchedule(row.InterviewSchedule, u.loc),
		ProfessionalExperience: optional(row.ProfessionalExperience),
		MainLanguage:           optional(row.MainLanguage),
		Database:               optional(row.Database),
		Cloud:                  optional(row.Cloud),
		AnotherTech:            splitTech(row.AnotherTech),
		LiveCodeResult:         optional(row.LiveCodeResult),
		Status:                 domain.StatusApplied,
		Mirror:                 optional(row.Mirror),
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if status := domain.CandidateStatus(row.Status); status.Valid() {
		c.Status = status
	}
	if level := domain.CandidateLevel(row.Level); level.Valid() {
		c.Level = &level
	}
	return c
}

func (u *importUsecase) scan(ctx context.Context, file domain.ImportFile) error {
	if u.scanner == nil {
		return nil
	}
	result := antivirus.ScanBytes(ctx, u.scanner, file.Name, file.Data)
	if !result.Infected {
		return nil
	}
	if result.ThreatName == "" {
		logger.FromContext(ctx).Error("Malware scan failed", "file", file.Name, "scanner", result.ScannerName, "error", result.Error)
		return apperror.New(http.StatusServiceUnavailable, "File scanning is unavailable, try again later", result.Error)
	}
	logger.FromContext(ctx).Warn("Malware detected in import", "file", file.Name, "threat", result.ThreatName)
	return apperror.New(http.StatusBadRequest, "File rejected by malware scan",
		fmt.Errorf("%w: %s", domain.ErrMaliciousFile, result.ThreatName))
}

func (u *importUsecase) archive(ctx context.Context, file domain.ImportFile) {
	if u.archiver == nil {
		return
	}
	key, err := u.archiver.Archive(ctx, file)
	if err != nil {
		logger.FromContext(ctx).Warn("Import archive failed", "file", file.Name, "error", err)
		return
	}
	logger.FromContext(ctx).Debug("Import archived", "file", file.Name, "key", key)
}

func buildReport(results domain.ImportResults, total int) *domain.ImportReport {
	successCount := len(results.Success)
	hasProblems := len(results.Errors) > 0 || len(results.Duplicates) > 0

	report := &domain.ImportReport{
		Message: "Import completed successfully",
		Results: results,
		Summary: domain.ImportSummary{
			Total:      total,
			Success:    successCount,
			Errors:     len(results.Errors),
			Duplicates: len(results.Duplicates),
		},
		Outcome: domain.ImportAllSucceeded,
	}

	switch {
	case hasProblems && successCount > 0:
		report.Outcome = domain.ImportPartial
		report.Message = fmt.Sprintf("Partial import completed: %d candidates imported with %d errors and %d duplicates",
			successCount, len(results.Errors), len(results.Duplicates))
	case hasProblems:
		report.Outcome = domain.ImportFailed
		report.Message = "Import failed: No candidates imported due to validation errors"
	case successCount > 0:
		report.Message = fmt.Sprintf("Import completed successfully: %d candidates imported", successCount)
	}
	return report
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func splitTech(s string) []string {
	tech := []string{}
	for _, part := range strings.Split(s, ";") {
		if t := strings.TrimSpace(part); t != "" {
			tech = append(tech, t)
		}
	}
	return tech
}

func parseSchedule(s string, loc *time.Location) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
