package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-hiring-pipeline/internal/delivery/http/response"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
	"go-hiring-pipeline/pkg/auth"
	"go-hiring-pipeline/pkg/security"

	"github.com/gin-gonic/gin"
)

// TokenVerifier turns a bearer token into the caller's external identity.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

type identityKey struct{}

// IdentityFromContext returns the verified token identity set by TokenAuth.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*auth.Identity)
	return id, ok && id != nil
}

// RequestMeta collects the request fields attached to security events.
func RequestMeta(c *gin.Context) security.RequestMeta {
	return security.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString(RequestIDKey),
		Path:      c.FullPath(),
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// TokenAuth only verifies the bearer token. It is used by the first-login
// sync endpoint, before a local user exists.
func TokenAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := verifyToken(c, verifier)
		if !ok {
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), identityKey{}, identity))
		c.Next()
	}
}

// AuthMiddleware verifies the token and resolves the local user. The role
// always comes from the database, never from token claims.
func AuthMiddleware(verifier TokenVerifier, users domain.UserUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := verifyToken(c, verifier)
		if !ok {
			return
		}

		user, err := users.GetByExternalID(c.Request.Context(), identity.Subject)
		if err != nil {
			if apperror.CodeOf(err) == http.StatusNotFound {
				security.DefaultLogger().LogUnauthorized(c.Request.Context(), RequestMeta(c), "user_not_synced")
				response.Error(c, http.StatusUnauthorized, "User not found", nil)
				c.Abort()
				return
			}
			c.Error(err)
			c.Abort()
			return
		}
		if !user.IsActive() {
			security.DefaultLogger().LogDeactivatedAccess(c.Request.Context(), RequestMeta(c), user.Email)
			response.Error(c, http.StatusForbidden, "Account is deactivated", nil)
			c.Abort()
			return
		}

		actor := domain.Actor{
			ID:         user.ID,
			ExternalID: user.ExternalID,
			Name:       user.Name,
			Email:      user.Email,
			Role:       user.Role,
		}
		ctx := context.WithValue(c.Request.Context(), identityKey{}, identity)
		c.Request = c.Request.WithContext(domain.WithActor(ctx, actor))
		c.Next()
	}
}

func verifyToken(c *gin.Context, verifier TokenVerifier) (*auth.Identity, bool) {
	token := bearerToken(c)
	if token == "" {
		security.DefaultLogger().LogUnauthorized(c.Request.Context(), RequestMeta(c), "missing_token")
		response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
		c.Abort()
		return nil, false
	}

	identity, err := verifier.Verify(token)
	if err != nil {
		reason := "invalid_token"
		if !errors.Is(err, auth.ErrInvalidToken) {
			reason = err.Error()
		}
		security.DefaultLogger().LogInvalidToken(c.Request.Context(), RequestMeta(c), reason)
		response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
		c.Abort()
		return nil, false
	}
	return identity, true
}

// RequirePermission rejects callers whose role lacks action on resource.
func RequirePermission(resource domain.Resource, action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := domain.ActorFromContext(c.Request.Context())
		if !ok {
			response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
			c.Abort()
			return
		}
		if !actor.Can(action, resource) {
			security.DefaultLogger().LogPermissionDenied(c.Request.Context(), RequestMeta(c), actor.ID, string(actor.Role))
			response.Error(c, http.StatusForbidden, "Insufficient permissions", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers holding none of roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := domain.ActorFromContext(c.Request.Context())
		if !ok {
			response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
			c.Abort()
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		security.DefaultLogger().LogPermissionDenied(c.Request.Context(), RequestMeta(c), actor.ID, string(actor.Role))
		response.Error(c, http.StatusForbidden, "Insufficient permissions", nil)
		c.Abort()
	}
}
