package v1

import (
	"net/http"

	"go-hiring-pipeline/internal/delivery/http/middleware"
	"go-hiring-pipeline/internal/delivery/http/response"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportUC domain.ReportUsecase
	auditUC  domain.AuditUsecase
}

func NewReportHandler(r *gin.RouterGroup, reportUC domain.ReportUsecase, auditUC domain.AuditUsecase) {
	handler := &ReportHandler{reportUC: reportUC, auditUC: auditUC}

	readReports := middleware.RequirePermission(domain.ResourceReports, domain.ActionRead)
	r.GET("/reports/summary", readReports, handler.Summary)
	r.GET("/audit", readReports, handler.Audit)
}

// Summary godoc
// @Summary      Pipeline summary
// @Description  Status breakdown, conversion rates and pipeline counts of active candidates
// @Tags         reports
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ReportSummary}
// @Failure      403  {object}  response.Response
// @Router       /reports/summary [get]
// @Security     BearerAuth
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reportUC.Summary(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Report summary", summary)
}

// Audit godoc
// @Summary      Audit trail
// @Description  Entries for one entity, or every entry written by actorId, newest first
// @Tags         reports
// @Produce      json
// @Param        entityId    query     string  false  "Entity ID"
// @Param        entityType  query     string  false  "candidate, user or note"
// @Param        actorId     query     string  false  "Acting user ID"
// @Success      200  {object}  response.Response{data=[]domain.AuditEntry}
// @Failure      400  {object}  response.Response
// @Router       /audit [get]
// @Security     BearerAuth
func (h *ReportHandler) Audit(c *gin.Context) {
	entityID := c.Query("entityId")
	entityType := c.Query("entityType")
	actorID := c.Query("actorId")

	var (
		entries []domain.AuditEntry
		err     error
	)
	switch {
	case actorID != "" && entityID == "" && entityType == "":
		entries, err = h.auditUC.ListByActor(c.Request.Context(), actorID)
	case entityID != "" && entityType != "":
		entries, err = h.auditUC.ListByEntity(c.Request.Context(), entityID, entityType)
	default:
		err = apperror.BadRequest("entityId and entityType are required")
	}
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Audit entries", entries)
}
