package v1

import (
	"net/http"

	"go-hiring-pipeline/internal/delivery/http/middleware"
	"go-hiring-pipeline/internal/delivery/http/response"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userUC domain.UserUsecase
}

// NewAuthHandler registers /auth routes. Sync only needs a valid token since
// it is what creates the local user.
func NewAuthHandler(tokenOnly *gin.RouterGroup, protected *gin.RouterGroup, userUC domain.UserUsecase) {
	handler := &AuthHandler{userUC: userUC}

	tokenOnly.POST("/auth/sync", handler.Sync)
	protected.GET("/auth/me", handler.Me)
}

// Sync godoc
// @Summary      Sync the signed-in user
// @Description  Creates the local user on first sign-in, otherwise refreshes the last login time
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Success      201  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /auth/sync [post]
// @Security     BearerAuth
func (h *AuthHandler) Sync(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	user, created, err := h.userUC.SyncUser(c.Request.Context(), domain.ExternalIdentity{
		Subject: identity.Subject,
		Email:   identity.Email,
		Name:    identity.Name,
	})
	if err != nil {
		c.Error(err)
		return
	}

	if created {
		response.Success(c, http.StatusCreated, "User created", user)
		return
	}
	response.Success(c, http.StatusOK, "User synced", user)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := domain.ActorFromContext(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	user, err := h.userUC.GetByExternalID(c.Request.Context(), actor.ExternalID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Current user", user)
}
