package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-hiring-pipeline/config"
	_ "go-hiring-pipeline/docs" // swagger document
	v1 "go-hiring-pipeline/internal/delivery/http/v1"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/internal/repository/cache"
	"go-hiring-pipeline/internal/repository/postgres"
	"go-hiring-pipeline/internal/repository/storage"
	"go-hiring-pipeline/internal/usecase"
	"go-hiring-pipeline/pkg/auth"
	"go-hiring-pipeline/pkg/database"
	"go-hiring-pipeline/pkg/email"
	"go-hiring-pipeline/pkg/logger"
	"go-hiring-pipeline/pkg/redis"
	"go-hiring-pipeline/pkg/security"
	"go-hiring-pipeline/pkg/security/antivirus"
	objectstore "go-hiring-pipeline/pkg/storage"

	"github.com/gin-gonic/gin"
)

// @title           Hiring Pipeline API
// @version         1.0
// @description     Candidate tracking, CSV import and audit trail for the hiring team.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting hiring pipeline", "port", cfg.Port)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	secLogger := security.InitSecurityLogger("hiring-pipeline", cfg.GinMode)
	defer secLogger.Sync()
	if cfg.SecurityLogToDB {
		secLogger.SetPersistFunc(security.NewSecurityEventRepository(dbPool).PersistEvent)
	}

	// Redis is optional; without it the upload quota fails open and reports are not cached
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable", "error", err)
	}
	defer redis.Close()

	userRepo := postgres.NewUserRepository(dbPool)
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	noteRepo := postgres.NewNoteRepository(dbPool)
	auditRepo := postgres.NewAuditRepository(dbPool)

	healthChecks := map[string]usecase.HealthCheck{
		"database": func(ctx context.Context) error { return dbPool.Ping(ctx) },
	}
	if redis.Client() != nil {
		healthChecks["redis"] = redis.HealthCheck
	}

	var archiver domain.ImportArchiver
	if cfg.ArchiveEnabled() {
		s3Client, err := objectstore.NewS3Client(ctx, objectstore.Config{
			Provider:        objectstore.Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.ImportArchiveBucket,
			WasabiEndpoint:  cfg.WasabiEndpoint,
		})
		if err != nil {
			logger.Log.Warn("Import archive disabled", "error", err)
		} else {
			bucket := objectstore.NewBucket(s3Client, cfg.ImportArchiveBucket)
			archiver = storage.NewImportArchiver(bucket)
			healthChecks["archive"] = bucket.Check
		}
	}

	var scanner antivirus.Scanner
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAVScanner(cfg.ClamAVAddress, 30*time.Second)
		scanner = clam
		healthChecks["antivirus"] = func(ctx context.Context) error {
			if !clam.Available(ctx) {
				return errors.New("clamd did not answer PING")
			}
			return nil
		}
	}

	loc, err := time.LoadLocation(cfg.ImportTimezone)
	if err != nil {
		logger.Log.Warn("Invalid IMPORT_TIMEZONE, using UTC", "timezone", cfg.ImportTimezone, "error", err)
		loc = time.UTC
	}

	var reportCache domain.ReportCache
	if client := redis.Client(); client != nil {
		reportCache = cache.NewReportCache(client, time.Duration(cfg.ReportCacheSeconds)*time.Second)
	}

	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("SMTP not configured - invitations will not be emailed")
	}

	validate := usecase.NewValidator()
	auditUC := usecase.NewAuditUsecase(auditRepo)
	userUC := usecase.NewUserUsecase(userRepo, auditRepo, auditUC, emailService, validate, cfg.AppURL)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, auditUC, validate)
	importUC := usecase.NewImportUsecase(candidateRepo, auditUC, archiver, validate, usecase.ImportConfig{
		Location: loc,
		MaxBytes: cfg.ImportMaxBytes,
		Scanner:  scanner,
	})
	noteUC := usecase.NewNoteUsecase(noteRepo, candidateRepo, auditUC, validate)
	reportUC := usecase.NewReportUsecase(candidateRepo, reportCache)
	securityUC := usecase.NewSecurityDashboardUsecase(postgres.NewSecurityDashboardRepository(dbPool))
	healthUC := usecase.NewHealthUsecase(healthChecks)

	var jwks *auth.Provider
	if cfg.AuthJWKSURL != "" {
		jwks = auth.NewProvider(cfg.AuthJWKSURL)
	}
	verifier := auth.NewVerifier(cfg.AuthJWTSecret, jwks, cfg.AuthIssuer)

	router := v1.NewRouter(v1.RouterDeps{
		Verifier:      verifier,
		UserUC:        userUC,
		CandidateUC:   candidateUC,
		ImportUC:      importUC,
		NoteUC:        noteUC,
		AuditUC:       auditUC,
		ReportUC:      reportUC,
		SecurityUC:    securityUC,
		HealthUC:      healthUC,
		UploadLimiter: security.NewUploadLimiter(redis.Client(), cfg.UploadMaxPerMinute, cfg.UploadMaxPerDay),
		Config:        cfg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
