package v1

import (
	"go-hiring-pipeline/config"
	"go-hiring-pipeline/internal/delivery/http/middleware"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Verifier      middleware.TokenVerifier
	UserUC        domain.UserUsecase
	CandidateUC   domain.CandidateUsecase
	ImportUC      domain.ImportUsecase
	NoteUC        domain.NoteUsecase
	AuditUC       domain.AuditUsecase
	ReportUC      domain.ReportUsecase
	SecurityUC    domain.SecurityDashboardUsecase
	HealthUC      usecase.HealthUsecase
	UploadLimiter middleware.UploadLimiter // nil disables the upload quota
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.CORSMiddleware([]string{deps.Config.FrontendURL}, deps.Config.GinMode == gin.ReleaseMode)) // CORS must be first
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig()))

	v1 := r.Group("/v1")

	NewHealthHandler(v1, deps.HealthUC)
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	tokenOnly := v1.Group("")
	tokenOnly.Use(middleware.RateLimitMiddleware(middleware.SyncRateLimitConfig()))
	tokenOnly.Use(middleware.TokenAuth(deps.Verifier))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Verifier, deps.UserUC))
	{
		NewAuthHandler(tokenOnly, protected, deps.UserUC)
		NewCandidateHandler(protected, deps.CandidateUC)
		NewImportHandler(protected, deps.ImportUC, deps.UploadLimiter, deps.Config.ImportMaxBytes)
		NewNoteHandler(protected, deps.NoteUC)
		NewReportHandler(protected, deps.ReportUC, deps.AuditUC)
		NewUserHandler(protected, deps.UserUC)
		NewSecurityHandler(protected, deps.SecurityUC)
	}

	return r
}
