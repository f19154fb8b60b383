package v1

import (
	"errors"
	"io"
	"net/http"

	"go-hiring-pipeline/internal/delivery/http/middleware"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/logger"
	"go-hiring-pipeline/pkg/security"

	"github.com/gin-gonic/gin"
)

type ImportHandler struct {
	importUC domain.ImportUsecase
	maxBytes int64
}

// NewImportHandler registers the CSV import endpoint. limiter may be nil.
func NewImportHandler(r *gin.RouterGroup, importUC domain.ImportUsecase, limiter middleware.UploadLimiter, maxBytes int64) {
	handler := &ImportHandler{importUC: importUC, maxBytes: maxBytes}

	chain := []gin.HandlerFunc{middleware.RequirePermission(domain.ResourceCandidates, domain.ActionImport)}
	if limiter != nil {
		chain = append(chain, middleware.UploadRateLimit(limiter))
	}
	chain = append(chain, handler.Import)
	r.POST("/candidates/import", chain...)
}

// Import godoc
// @Summary      Import candidates from CSV
// @Description  Rows are validated independently. The body is the import report itself, not the usual envelope.
// @Description  200 when every row was inserted, 207 when some were, 400 when none were.
// @Tags         candidates
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV file"
// @Success      200  {object}  domain.ImportReport
// @Success      207  {object}  domain.ImportReport
// @Failure      400  {object}  domain.ImportReport
// @Failure      409  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /candidates/import [post]
// @Security     BearerAuth
func (h *ImportHandler) Import(c *gin.Context) {
	if h.maxBytes > 0 {
		// multipart overhead on top of the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+64<<10)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(apperror.New(http.StatusRequestEntityTooLarge, "File is too large", err))
			return
		}
		c.Error(apperror.BadRequest("No file uploaded"))
		return
	}

	src, err := header.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	file := domain.ImportFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	report, err := h.importUC.ImportCandidates(c.Request.Context(), file)
	if err != nil {
		h.logRejection(c, file.Name, err)
		c.Error(err)
		return
	}

	logger.FromContext(c.Request.Context()).Info("Candidates imported",
		"file", file.Name,
		"outcome", report.Outcome.String(),
		"total", report.Summary.Total,
		"inserted", report.Summary.Success,
		"errors", report.Summary.Errors,
		"duplicates", report.Summary.Duplicates,
	)
	c.JSON(report.Outcome.HTTPStatus(), report)
}

func (h *ImportHandler) logRejection(c *gin.Context, fileName string, err error) {
	meta := middleware.RequestMeta(c)
	switch {
	case errors.Is(err, domain.ErrMaliciousFile):
		var appErr *apperror.AppError
		threat := err.Error()
		if errors.As(err, &appErr) && appErr.Err != nil {
			threat = appErr.Err.Error()
		}
		security.DefaultLogger().LogMalwareDetected(c.Request.Context(), meta, fileName, threat)
	case errors.Is(err, domain.ErrInvalidFileKind):
		security.DefaultLogger().LogUploadRejected(c.Request.Context(), meta, fileName, "invalid_file_kind")
	case apperror.CodeOf(err) == http.StatusRequestEntityTooLarge:
		security.DefaultLogger().LogUploadRejected(c.Request.Context(), meta, fileName, "too_large")
	}
}
