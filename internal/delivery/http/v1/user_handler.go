package v1

import (
	"net/http"
	"strconv"

	"go-hiring-pipeline/internal/delivery/http/middleware"
	"go-hiring-pipeline/internal/delivery/http/response"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(r *gin.RouterGroup, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	readUsers := middleware.RequirePermission(domain.ResourceUsers, domain.ActionRead)
	updateUsers := middleware.RequirePermission(domain.ResourceUsers, domain.ActionUpdate)

	users := r.Group("/users")
	{
		users.GET("", readUsers, handler.List)
		users.GET("/stats", readUsers, handler.Stats)
		users.GET("/activity", middleware.RequireRole(domain.RoleRecruiter, domain.RoleHiringManager), handler.Activity)
		users.POST("/invite", middleware.RequireRole(domain.RoleRecruiter), handler.Invite)
		users.PATCH("/:id", updateUsers, handler.Update)
		users.POST("/:id/deactivate", updateUsers, handler.Deactivate)
		users.POST("/:id/reactivate", updateUsers, handler.Reactivate)
	}
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        search  query     string  false  "Name or email"
// @Param        role    query     string  false  "Role"
// @Param        status  query     string  false  "active, inactive or all"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.User]}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /users [get]
// @Security     BearerAuth
func (h *UserHandler) List(c *gin.Context) {
	var filter domain.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}

	result, err := h.userUC.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Users", result)
}

// Stats godoc
// @Summary      User statistics
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.UserStats}
// @Router       /users/stats [get]
// @Security     BearerAuth
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.userUC.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User statistics", stats)
}

// Activity godoc
// @Summary      User activity
// @Description  Audit entries about the user and entries written by the user, newest first
// @Tags         users
// @Produce      json
// @Param        userId  query     string  true   "User ID"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.AuditEntry]}
// @Failure      400  {object}  response.Response
// @Router       /users/activity [get]
// @Security     BearerAuth
func (h *UserHandler) Activity(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(domain.DefaultPageSize)))

	result, err := h.userUC.Activity(c.Request.Context(), c.Query("userId"), page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User activity", result)
}

// Invite godoc
// @Summary      Invite a user
// @Description  Creates a pending user and emails the invitation link when SMTP is configured
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        invite  body      domain.InviteRequest  true  "Invitation"
// @Success      201  {object}  response.Response{data=domain.Invitation}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /users/invite [post]
// @Security     BearerAuth
func (h *UserHandler) Invite(c *gin.Context) {
	var req domain.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	invitation, err := h.userUC.Invite(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Invitation created", invitation)
}

// Update godoc
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id     path      string            true  "User ID"
// @Param        patch  body      domain.UserPatch  true  "Name and role"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [patch]
// @Security     BearerAuth
func (h *UserHandler) Update(c *gin.Context) {
	var patch domain.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	user, err := h.userUC.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User updated", user)
}

// Deactivate godoc
// @Summary      Deactivate a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/deactivate [post]
// @Security     BearerAuth
func (h *UserHandler) Deactivate(c *gin.Context) {
	user, err := h.userUC.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User deactivated", user)
}

// Reactivate godoc
// @Summary      Reactivate a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/reactivate [post]
// @Security     BearerAuth
func (h *UserHandler) Reactivate(c *gin.Context) {
	user, err := h.userUC.Reactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User reactivated", user)
}
