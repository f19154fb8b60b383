package v1

import (
	"net/http"

	"go-hiring-pipeline/internal/delivery/http/middleware"
	"go-hiring-pipeline/internal/delivery/http/response"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SecurityHandler struct {
	uc domain.SecurityDashboardUsecase
}

// NewSecurityHandler registers the read-only security event views.
func NewSecurityHandler(r *gin.RouterGroup, uc domain.SecurityDashboardUsecase) {
	handler := &SecurityHandler{uc: uc}

	group := r.Group("/security", middleware.RequireRole(domain.RoleRecruiter))
	group.GET("/stats", handler.Stats)
	group.GET("/events", handler.ListEvents)
}

// Stats godoc
// @Summary      Security event statistics
// @Description  Counts by severity and type over 7 days, and 24 hour upload, malware and rate limit counts
// @Tags         security
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.SecurityDashboardStats}
// @Failure      403  {object}  response.Response
// @Router       /security/stats [get]
// @Security     BearerAuth
func (h *SecurityHandler) Stats(c *gin.Context) {
	stats, err := h.uc.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Security statistics", stats)
}

// ListEvents godoc
// @Summary      List security events
// @Tags         security
// @Produce      json
// @Param        eventType  query  string  false  "e.g. upload_rejected, malware_detected"
// @Param        severity   query  string  false  "INFO, MEDIUM, WARN, HIGH or CRITICAL"
// @Param        ip         query  string  false  "IP prefix"
// @Param        since      query  string  false  "RFC3339 lower bound"
// @Param        page       query  int     false  "Page"
// @Param        limit      query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.SecurityEventView]}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /security/events [get]
// @Security     BearerAuth
func (h *SecurityHandler) ListEvents(c *gin.Context) {
	var filter domain.SecurityEventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}

	result, err := h.uc.ListEvents(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Security events", result)
}
