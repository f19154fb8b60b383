package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-hiring-pipeline/internal/delivery/http/middleware"
	"go-hiring-pipeline/internal/delivery/http/response"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/auth"
	"go-hiring-pipeline/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withActor(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(domain.WithActor(c.Request.Context(), domain.Actor{ID: "user-1", Role: role}))
		c.Next()
	}
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middleware.RequestIDKey)) })

	t.Run("generated when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), w.Body.String())
	})

	t.Run("caller id is reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Body.String())
	})

	t.Run("oversized id is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 65))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Len(t, w.Body.String(), 36)
	})
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		want int
	}{
		{"recruiter may import", domain.RoleRecruiter, http.StatusOK},
		{"hiring manager may import", domain.RoleHiringManager, http.StatusOK},
		{"interviewer may not import", domain.RoleInterviewer, http.StatusForbidden},
		{"viewer may not import", domain.RoleViewer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/", withActor(tt.role), middleware.RequirePermission(domain.ResourceCandidates, domain.ActionImport), ok)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("no actor", func(t *testing.T) {
		r := gin.New()
		r.POST("/", middleware.RequirePermission(domain.ResourceCandidates, domain.ActionRead), ok)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User not authenticated", decode(t, w).Message)
	})
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/", withActor(domain.RoleInterviewer), middleware.RequireRole(domain.RoleRecruiter, domain.RoleHiringManager), ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestErrorHandler(t *testing.T) {
	route := func(err error) *httptest.ResponseRecorder {
		r := gin.New()
		r.Use(middleware.ErrorHandler())
		r.GET("/", func(c *gin.Context) { c.Error(err) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	t.Run("client errors keep their message", func(t *testing.T) {
		w := route(apperror.Conflict("Candidate with this email already exists"))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Candidate with this email already exists", decode(t, w).Message)
	})

	t.Run("unavailable keeps its message", func(t *testing.T) {
		w := route(apperror.New(http.StatusServiceUnavailable, "File scanning is unavailable, try again later", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "File scanning is unavailable, try again later", decode(t, w).Message)
	})

	t.Run("internal causes are hidden", func(t *testing.T) {
		w := route(apperror.Internal(errors.New("pq: relation does not exist")))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "relation")
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORSMiddleware([]string{"https://hiring.example.com/"}, true))
	r.GET("/", ok)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://hiring.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://hiring.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")

	assert.Equal(t, http.StatusForbidden, preflight("http://localhost:3000").Code, "dev origins are off in release mode")
}

func TestRateLimitInMemory(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		KeyPrefix: "test:" + t.Name() + ":",
		KeyFunc:   func(c *gin.Context) string { return c.ClientIP() },
	}))
	r.GET("/", ok)

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = w.Code
		if i == 2 {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type stubLimiter struct {
	allowed    bool
	retryAfter int
	err        error
	gotUser    string
}

func (s *stubLimiter) AllowUpload(_ context.Context, _ string, userID string) (bool, int, error) {
	s.gotUser = userID
	return s.allowed, s.retryAfter, s.err
}

func TestUploadRateLimit(t *testing.T) {
	t.Run("over quota", func(t *testing.T) {
		limiter := &stubLimiter{retryAfter: 3600}
		r := gin.New()
		r.POST("/", withActor(domain.RoleRecruiter), middleware.UploadRateLimit(limiter), ok)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "3600", w.Header().Get("Retry-After"))
		assert.Equal(t, "user-1", limiter.gotUser)
	})

	t.Run("limiter without redis fails open", func(t *testing.T) {
		limiter := &stubLimiter{allowed: true, err: security.ErrLimiterUnavailable}
		r := gin.New()
		r.POST("/", middleware.UploadRateLimit(limiter), ok)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeadersMiddleware())
	r.GET("/", ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*auth.Identity, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Identity{Subject: "sub-1", Email: "rita@example.com"}, nil
}

type stubUsers struct {
	domain.UserUsecase
	user *domain.User
	err  error
}

func (s stubUsers) GetByExternalID(context.Context, string) (*domain.User, error) {
	return s.user, s.err
}

func TestAuthMiddleware(t *testing.T) {
	serve := func(users domain.UserUsecase, header string) (*httptest.ResponseRecorder, *domain.Actor) {
		var seen *domain.Actor
		r := gin.New()
		r.Use(middleware.AuthMiddleware(stubVerifier{}, users))
		r.GET("/x", func(c *gin.Context) {
			if actor, ok := domain.ActorFromContext(c.Request.Context()); ok {
				seen = &actor
			}
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		return w, seen
	}

	t.Run("actor comes from the stored user", func(t *testing.T) {
		users := stubUsers{user: &domain.User{
			ID: "user-9", ExternalID: "sub-1", Name: "Rita", Email: "rita@example.com", Role: domain.RoleInterviewer,
		}}
		w, actor := serve(users, "Bearer good")
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, actor)
		assert.Equal(t, "user-9", actor.ID)
		assert.Equal(t, "sub-1", actor.ExternalID)
		assert.Equal(t, domain.RoleInterviewer, actor.Role)
	})

	t.Run("missing and invalid tokens", func(t *testing.T) {
		users := stubUsers{user: &domain.User{ID: "user-9"}}
		w, actor := serve(users, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, actor)

		w, actor = serve(users, "Bearer bad")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, actor)
	})

	t.Run("user not synced", func(t *testing.T) {
		w, _ := serve(stubUsers{err: apperror.NotFound("User not found")}, "Bearer good")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User not found", decode(t, w).Message)
	})

	t.Run("deactivated account", func(t *testing.T) {
		at := time.Now()
		w, actor := serve(stubUsers{user: &domain.User{ID: "user-9", DeactivatedAt: &at}}, "Bearer good")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Nil(t, actor)
	})
}
