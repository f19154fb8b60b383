package v1

import (
	"net/http"

	"go-hiring-pipeline/internal/delivery/http/middleware"
	"go-hiring-pipeline/internal/delivery/http/response"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/security"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

func NewCandidateHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	candidates := r.Group("/candidates")
	{
		candidates.GET("", middleware.RequirePermission(domain.ResourceCandidates, domain.ActionRead), handler.List)
		candidates.POST("", middleware.RequirePermission(domain.ResourceCandidates, domain.ActionCreate), handler.Create)
		candidates.GET("/export", middleware.RequirePermission(domain.ResourceCandidates, domain.ActionExport), handler.Export)
		candidates.GET("/:id", middleware.RequirePermission(domain.ResourceCandidates, domain.ActionRead), handler.Get)
		candidates.PATCH("/:id", middleware.RequirePermission(domain.ResourceCandidates, domain.ActionUpdate), handler.Update)
		candidates.DELETE("/:id", middleware.RequirePermission(domain.ResourceCandidates, domain.ActionDelete), handler.Delete)
		candidates.PUT("/:id/interview", middleware.RequirePermission(domain.ResourceInterviews, domain.ActionUpdate), handler.Schedule)
	}
}

// List godoc
// @Summary      List candidates
// @Description  Paginated list, newest first. search matches name, email, role and experience.
// @Tags         candidates
// @Produce      json
// @Param        status         query     string  false  "Pipeline status"
// @Param        level          query     string  false  "Junior, Mid or Senior"
// @Param        role           query     string  false  "Role (partial match)"
// @Param        interviewerId  query     string  false  "Assigned interviewer"
// @Param        search         query     string  false  "Free text search"
// @Param        page           query     int     false  "Page number"
// @Param        limit          query     int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.Candidate]}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /candidates [get]
// @Security     BearerAuth
func (h *CandidateHandler) List(c *gin.Context) {
	var filter domain.CandidateFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}

	result, err := h.candidateUC.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidates", result)
}

// Get godoc
// @Summary      Get a candidate
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.Candidate}
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [get]
// @Security     BearerAuth
func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, err := h.candidateUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate", candidate)
}

// Create godoc
// @Summary      Create a candidate
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        candidate  body      domain.CandidateInput  true  "Candidate"
// @Success      201  {object}  response.Response{data=domain.Candidate}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /candidates [post]
// @Security     BearerAuth
func (h *CandidateHandler) Create(c *gin.Context) {
	var input domain.CandidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	candidate, err := h.candidateUC.Create(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Candidate created", candidate)
}

// Update godoc
// @Summary      Update a candidate
// @Description  Partial update; omitted fields are left unchanged
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        id         path      string                 true  "Candidate ID"
// @Param        candidate  body      domain.CandidatePatch  true  "Fields to change"
// @Success      200  {object}  response.Response{data=domain.Candidate}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /candidates/{id} [patch]
// @Security     BearerAuth
func (h *CandidateHandler) Update(c *gin.Context) {
	var patch domain.CandidatePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	candidate, err := h.candidateUC.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate updated", candidate)
}

// Delete godoc
// @Summary      Delete a candidate
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [delete]
// @Security     BearerAuth
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.candidateUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate deleted", nil)
}

// Schedule godoc
// @Summary      Schedule an interview
// @Description  Assigns the interviewer and time. APPLIED and SCREENING candidates move to INTERVIEW.
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        id        path      string                  true  "Candidate ID"
// @Param        schedule  body      domain.ScheduleRequest  true  "Interview"
// @Success      200  {object}  response.Response{data=domain.Candidate}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id}/interview [put]
// @Security     BearerAuth
func (h *CandidateHandler) Schedule(c *gin.Context) {
	var req domain.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	candidate, err := h.candidateUC.Schedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview scheduled", candidate)
}

// Export godoc
// @Summary      Export candidates
// @Description  Downloads the filtered candidates as CSV (importable) or XLSX
// @Tags         candidates
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format         query     string  false  "csv (default) or xlsx"
// @Param        status         query     string  false  "Pipeline status"
// @Param        level          query     string  false  "Level"
// @Param        role           query     string  false  "Role"
// @Param        interviewerId  query     string  false  "Assigned interviewer"
// @Success      200  {file}    file
// @Failure      400  {object}  response.Response
// @Router       /candidates/export [get]
// @Security     BearerAuth
func (h *CandidateHandler) Export(c *gin.Context) {
	var filter domain.CandidateFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}
	format := domain.ExportFormat(c.DefaultQuery("format", string(domain.ExportCSV)))

	file, err := h.candidateUC.Export(c.Request.Context(), domain.ExportRequest{Filter: filter, Format: format})
	if err != nil {
		c.Error(err)
		return
	}

	actor, _ := domain.ActorFromContext(c.Request.Context())
	security.DefaultLogger().LogDataExport(c.Request.Context(), middleware.RequestMeta(c), actor.ID, string(format))

	response.File(c, file.FileName, file.ContentType, file.Data)
}
