package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/csvutil"
	"go-hiring-pipeline/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ExportColumns is the fixed column order of candidate exports.
var ExportColumns = []string{
	"name", "email", "role", "project", "interviewer", "interview_schedule",
	"professional_experience", "main_language", "database", "cloud",
	"another_tech", "live_code_result", "status", "level", "mirror", "created_at",
}

type candidateUsecase struct {
	repo     domain.CandidateRepository
	audit    domain.AuditRecorder
	validate *validator.Validate
	now      func() time.Time
}

func NewCandidateUsecase(repo domain.CandidateRepository, audit domain.AuditRecorder, validate *validator.Validate) domain.CandidateUsecase {
	return &candidateUsecase{
		repo:     repo,
		audit:    audit,
		validate: validate,
		now:      time.Now,
	}
}

func (u *candidateUsecase) List(ctx context.Context, filter domain.CandidateFilter) (*domain.PaginatedResult[domain.Candidate], error) {
	if err := requirePermission(ctx, domain.ResourceCandidates, domain.ActionRead); err != nil {
		return nil, err
	}
	filter.Page, filter.Limit = domain.NormalizePage(filter.Page, filter.Limit)

	candidates, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list candidates: %w", err))
	}
	return domain.NewPaginatedResult(candidates, total, filter.Page, filter.Limit), nil
}

func (u *candidateUsecase) Get(ctx context.Context, id string) (*domain.Candidate, error) {
	if err := requirePermission(ctx, domain.ResourceCandidates, domain.ActionRead); err != nil {
		return nil, err
	}
	return u.find(ctx, id)
}

func (u *candidateUsecase) find(ctx context.Context, id string) (*domain.Candidate, error) {
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if c == nil {
		return nil, apperror.NotFound("Candidate not found")
	}
	return c, nil
}

func (u *candidateUsecase) Create(ctx context.Context, input domain.CandidateInput) (*domain.Candidate, error) {
	if err := requirePermission(ctx, domain.ResourceCandidates, domain.ActionCreate); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	existing, err := u.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Candidate with this email already exists")
	}

	now := u.now().UTC()
	c := &domain.Candidate{
		ID:                     uuid.NewString(),
		Name:                   input.Name,
		Email:                  input.Email,
		Role:                   input.Role,
		Project:                input.Project,
		InterviewerID:          input.InterviewerID,
		InterviewSchedule:      utcPtr(input.InterviewSchedule),
		ProfessionalExperience: input.ProfessionalExperience,
		MainLanguage:           input.MainLanguage,
		Database:               input.Database,
		Cloud:                  input.Cloud,
		AnotherTech:            input.AnotherTech,
		LiveCodeResult:         input.LiveCodeResult,
		LiveCodeVerdict:        input.LiveCodeVerdict,
		Status:                 input.Status,
		Level:                  input.Level,
		Mirror:                 input.Mirror,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if c.AnotherTech == nil {
		c.AnotherTech = []string{}
	}
	if c.Status == "" {
		c.Status = domain.StatusApplied
	}

	if err := u.repo.Create(ctx, c); err != nil {
		return nil, wrapStoreError(err)
	}

	u.audit.RecordEvent(ctx, domain.EntityCandidate, c.ID, domain.AuditCreated, domain.AuditDiff{"candidate": c})
	return c, nil
}

func (u *candidateUsecase) Update(ctx context.Context, id string, patch domain.CandidatePatch) (*domain.Candidate, error) {
	if err := requirePermission(ctx, domain.ResourceCandidates, domain.ActionUpdate); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(patch); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	before, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != before.Email {
		other, err := u.repo.GetByEmail(ctx, *patch.Email)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if other != nil && other.ID != id {
			return nil, apperror.Conflict("Candidate with this email already exists")
		}
	}

	after := *before
	applyPatch(&after, patch)
	return u.save(ctx, before, &after)
}

// Schedule assigns an interviewer and time, moving early-stage candidates to INTERVIEW.
func (u *candidateUsecase) Schedule(ctx context.Context, id string, req domain.ScheduleRequest) (*domain.Candidate, error) {
	if err := requirePermission(ctx, domain.ResourceInterviews, domain.ActionUpdate); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	before, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}

	after := *before
	interviewer := req.InterviewerID
	at := req.At.UTC()
	after.InterviewerID = &interviewer
	after.InterviewSchedule = &at
	if before.Status == domain.StatusApplied || before.Status == domain.StatusScreening {
		after.Status = domain.StatusInterview
	}
	return u.save(ctx, before, &after)
}

func (u *candidateUsecase) save(ctx context.Context, before, after *domain.Candidate) (*domain.Candidate, error) {
	after.UpdatedAt = u.now().UTC()
	if err := u.repo.Update(ctx, after); err != nil {
		return nil, wrapStoreError(err)
	}

	diff := ComputeDiff(before.AuditFields(), after.AuditFields())
	if len(diff) > 0 {
		u.audit.RecordEvent(ctx, domain.EntityCandidate, after.ID, domain.AuditUpdated, diff)
	}
	return after, nil
}

func (u *candidateUsecase) Delete(ctx context.Context, id string) error {
	if err := requirePermission(ctx, domain.ResourceCandidates, domain.ActionDelete); err != nil {
		return err
	}

	c, err := u.find(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := u.repo.SoftDelete(ctx, id, u.now().UTC())
	if err != nil {
		return apperror.Internal(err)
	}
	if !deleted {
		return apperror.NotFound("Candidate not found")
	}

	u.audit.RecordEvent(ctx, domain.EntityCandidate, id, domain.AuditDeleted, domain.AuditDiff{"candidate": c})
	return nil
}

func (u *candidateUsecase) Export(ctx context.Context, req domain.ExportRequest) (*domain.ExportFile, error) {
	if err := requirePermission(ctx, domain.ResourceCandidates, domain.ActionExport); err != nil {
		return nil, err
	}

	filter := req.Filter
	filter.Search = ""
	filter.Page = 1
	filter.Limit = domain.MaxExportRows

	candidates, _, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load candidates for export: %w", err))
	}

	date := u.now().UTC().Format("2006-01-02")
	switch req.Format {
	case domain.ExportCSV, "":
		return &domain.ExportFile{
			FileName:    fmt.Sprintf("candidates_export_%s.csv", date),
			ContentType: "text/csv",
			Data:        ExportCSV(candidates),
		}, nil
	case domain.ExportXLSX:
		data, err := exportExcel(candidates)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		return &domain.ExportFile{
			FileName:    fmt.Sprintf("candidates_export_%s.xlsx", date),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return nil, apperror.BadRequest(fmt.Sprintf("unsupported export format: %s", req.Format))
	}
}

// ExportCSV renders candidates in the import-compatible CSV layout. Every
// field is quoted so the file round-trips through the importer.
func ExportCSV(candidates []domain.Candidate) []byte {
	lines := make([]string, 0, len(candidates)+1)
	lines = append(lines, strings.Join(ExportColumns, ","))
	for i := range candidates {
		lines = append(lines, csvutil.JoinQuoted(exportRow(&candidates[i])))
	}
	return []byte(strings.Join(lines, "\n"))
}

func exportRow(c *domain.Candidate) []string {
	row := make([]string, len(ExportColumns))
	for i, col := range ExportColumns {
		row[i] = exportValue(c, col)
	}
	return row
}

func exportValue(c *domain.Candidate, col string) string {
	switch col {
	case "name":
		return c.Name
	case "email":
		return c.Email
	case "role":
		return c.Role
	case "project":
		return deref(c.Project)
	case "interviewer":
		return deref(c.InterviewerID)
	case "interview_schedule":
		if c.InterviewSchedule == nil {
			return ""
		}
		return c.InterviewSchedule.UTC().Format(time.RFC3339)
	case "professional_experience":
		return deref(c.ProfessionalExperience)
	case "main_language":
		return deref(c.MainLanguage)
	case "database":
		return deref(c.Database)
	case "cloud":
		return deref(c.Cloud)
	case "another_tech":
		return strings.Join(c.AnotherTech, ";")
	case "live_code_result":
		return deref(c.LiveCodeResult)
	case "status":
		return string(c.Status)
	case "level":
		if c.Level == nil {
			return ""
		}
		return string(*c.Level)
	case "mirror":
		return deref(c.Mirror)
	case "created_at":
		return c.CreatedAt.UTC().Format(time.RFC3339)
	}
	return ""
}

// exportExcel generates an Excel workbook with the same columns as the CSV export
func exportExcel(candidates []domain.Candidate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Candidates"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, col := range ExportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, strings.ToUpper(strings.ReplaceAll(col, "_", " ")))
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(ExportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx := range candidates {
		for colIdx, value := range exportRow(&candidates[rowIdx]) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range ExportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func applyPatch(c *domain.Candidate, p domain.CandidatePatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Role != nil {
		c.Role = *p.Role
	}
	if p.Project != nil {
		c.Project = p.Project
	}
	if p.InterviewerID != nil {
		c.InterviewerID = p.InterviewerID
	}
	if p.InterviewSchedule != nil {
		c.InterviewSchedule = utcPtr(p.InterviewSchedule)
	}
	if p.ProfessionalExperience != nil {
		c.ProfessionalExperience = p.ProfessionalExperience
	}
	if p.MainLanguage != nil {
		c.MainLanguage = p.MainLanguage
	}
	if p.Database != nil {
		c.Database = p.Database
	}
	if p.Cloud != nil {
		c.Cloud = p.Cloud
	}
	if p.AnotherTech != nil {
		c.AnotherTech = append([]string{}, (*p.AnotherTech)...)
	}
	if p.LiveCodeResult != nil {
		c.LiveCodeResult = p.LiveCodeResult
	}
	if p.LiveCodeVerdict != nil {
		c.LiveCodeVerdict = p.LiveCodeVerdict
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Level != nil {
		c.Level = p.Level
	}
	if p.Mirror != nil {
		c.Mirror = p.Mirror
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
