// Command importer loads a candidate CSV straight into the database, running
// the same pipeline as POST /v1/candidates/import. It is meant for bulk
// backfills by an operator.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-hiring-pipeline/config"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/internal/repository/postgres"
	"go-hiring-pipeline/internal/usecase"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/database"
	"go-hiring-pipeline/pkg/logger"
)

// dryRunRepo validates against the real table but never inserts.
type dryRunRepo struct {
	domain.CandidateRepository
}

func (r dryRunRepo) BulkCreate(_ context.Context, candidates []*domain.Candidate) (int64, error) {
	return int64(len(candidates)), nil
}

type discardAudit struct{}

func (discardAudit) RecordEvent(context.Context, string, string, string, domain.AuditDiff) {}

func main() {
	var (
		file    string
		asEmail string
		dryRun  bool
	)
	flag.StringVar(&file, "file", "", "CSV file to import")
	flag.StringVar(&asEmail, "as", "", "Email of the active user the import is recorded under")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate and report without inserting")
	flag.Parse()

	if file == "" || asEmail == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatalf("read %s: %v", file, err)
	}

	ctx := context.Background()
	db, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	user, err := postgres.NewUserRepository(db).GetByEmail(ctx, strings.ToLower(asEmail))
	if err != nil {
		log.Fatalf("look up %s: %v", asEmail, err)
	}
	if user == nil || !user.IsActive() {
		log.Fatalf("no active user with email %s", asEmail)
	}
	ctx = domain.WithActor(ctx, domain.Actor{
		ID:         user.ID,
		ExternalID: user.ExternalID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
	})

	loc, err := time.LoadLocation(cfg.ImportTimezone)
	if err != nil {
		log.Fatalf("invalid IMPORT_TIMEZONE %q: %v", cfg.ImportTimezone, err)
	}

	var (
		repo  domain.CandidateRepository = postgres.NewCandidateRepository(db)
		audit domain.AuditRecorder       = usecase.NewAuditUsecase(postgres.NewAuditRepository(db))
	)
	if dryRun {
		repo = dryRunRepo{repo}
		audit = discardAudit{}
	}

	importUC := usecase.NewImportUsecase(repo, audit, nil, usecase.NewValidator(), usecase.ImportConfig{
		Location: loc,
		MaxBytes: cfg.ImportMaxBytes,
	})

	report, err := importUC.ImportCandidates(ctx, domain.ImportFile{
		Name:        filepath.Base(file),
		ContentType: "text/csv",
		Data:        data,
	})
	if err != nil {
		log.Printf("import failed (%d): %v", apperror.CodeOf(err), err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("write report: %v", err)
	}

	log.Printf("%s: %d inserted, %d errors, %d duplicates (dry run: %t)",
		report.Outcome, report.Summary.Success, report.Summary.Errors, report.Summary.Duplicates, dryRun)
	if report.Outcome == domain.ImportFailed {
		os.Exit(1)
	}
}
