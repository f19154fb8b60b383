package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-hiring-pipeline/internal/delivery/http/middleware"
	v1 "go-hiring-pipeline/internal/delivery/http/v1"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImporter struct {
	report *domain.ImportReport
	err    error
	got    domain.ImportFile
}

func (s *stubImporter) ImportCandidates(_ context.Context, file domain.ImportFile) (*domain.ImportReport, error) {
	s.got = file
	return s.report, s.err
}

func newImportRouter(uc domain.ImportUsecase, role domain.Role, maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	g := r.Group("/v1")
	g.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(domain.WithActor(c.Request.Context(), domain.Actor{ID: "user-1", Role: role}))
		c.Next()
	})
	v1.NewImportHandler(g, uc, nil, maxBytes)
	return r
}

func uploadRequest(t *testing.T, field, name string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/candidates/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportHandlerStatusFollowsOutcome(t *testing.T) {
	tests := []struct {
		outcome domain.ImportOutcome
		want    int
	}{
		{domain.ImportAllSucceeded, http.StatusOK},
		{domain.ImportPartial, http.StatusMultiStatus},
		{domain.ImportFailed, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			uc := &stubImporter{report: &domain.ImportReport{
				Message: "done",
				Outcome: tt.outcome,
				Summary: domain.ImportSummary{Total: 1},
				Results: domain.ImportResults{
					Success:    []domain.ImportSuccess{},
					Errors:     []domain.ImportRowError{},
					Duplicates: []domain.ImportDuplicate{},
				},
			}}
			r := newImportRouter(uc, domain.RoleRecruiter, 1<<20)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, uploadRequest(t, "file", "candidates.csv", []byte("name,email,role\n")))

			assert.Equal(t, tt.want, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "done", body["message"])
			assert.Contains(t, body, "results")
			assert.Contains(t, body, "summary")
			assert.NotContains(t, body, "success", "the report is the body, not wrapped in the envelope")

			assert.Equal(t, "candidates.csv", uc.got.Name)
			assert.Equal(t, []byte("name,email,role\n"), uc.got.Data)
		})
	}
}

func TestImportHandlerRejections(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		r := newImportRouter(&stubImporter{}, domain.RoleRecruiter, 1<<20)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "attachment", "candidates.csv", []byte("x")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No file uploaded")
	})

	t.Run("usecase errors use the envelope", func(t *testing.T) {
		uc := &stubImporter{err: apperror.New(http.StatusBadRequest, "File must be a CSV", domain.ErrInvalidFileKind)}
		r := newImportRouter(uc, domain.RoleRecruiter, 1<<20)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "file", "cv.pdf", []byte("%PDF")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
		assert.Contains(t, w.Body.String(), "File must be a CSV")
	})

	t.Run("malware detection", func(t *testing.T) {
		uc := &stubImporter{err: apperror.New(http.StatusBadRequest, "File rejected by malware scan",
			fmt.Errorf("%w: %s", domain.ErrMaliciousFile, "Eicar-Test-Signature"))}
		r := newImportRouter(uc, domain.RoleRecruiter, 1<<20)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "file", "candidates.csv", []byte("x")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotContains(t, w.Body.String(), "Eicar")
	})

	t.Run("body over the limit", func(t *testing.T) {
		r := newImportRouter(&stubImporter{}, domain.RoleRecruiter, 16)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "file", "candidates.csv", bytes.Repeat([]byte("a"), 128<<10)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		uc := &stubImporter{}
		r := newImportRouter(uc, domain.RoleViewer, 1<<20)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "file", "candidates.csv", []byte("x")))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, uc.got.Name)
	})
}
