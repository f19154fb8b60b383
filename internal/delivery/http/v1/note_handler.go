package v1

import (
	"net/http"

	"go-hiring-pipeline/internal/delivery/http/middleware"
	"go-hiring-pipeline/internal/delivery/http/response"
	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	noteUC domain.NoteUsecase
}

func NewNoteHandler(r *gin.RouterGroup, noteUC domain.NoteUsecase) {
	handler := &NoteHandler{noteUC: noteUC}

	r.GET("/candidates/:id/notes", middleware.RequirePermission(domain.ResourceNotes, domain.ActionRead), handler.List)
	r.POST("/candidates/:id/notes", middleware.RequirePermission(domain.ResourceNotes, domain.ActionCreate), handler.Add)
	r.DELETE("/notes/:id", middleware.RequirePermission(domain.ResourceNotes, domain.ActionDelete), handler.Delete)
}

// List godoc
// @Summary      List notes of a candidate
// @Tags         notes
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=[]domain.Note}
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id}/notes [get]
// @Security     BearerAuth
func (h *NoteHandler) List(c *gin.Context) {
	notes, err := h.noteUC.ListByCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notes", notes)
}

// Add godoc
// @Summary      Add a note to a candidate
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "Candidate ID"
// @Param        note  body      domain.NoteInput  true  "Note"
// @Success      201  {object}  response.Response{data=domain.Note}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id}/notes [post]
// @Security     BearerAuth
func (h *NoteHandler) Add(c *gin.Context) {
	var input domain.NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	note, err := h.noteUC.Add(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Note added", note)
}

// Delete godoc
// @Summary      Delete a note
// @Tags         notes
// @Produce      json
// @Param        id   path      string  true  "Note ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notes/{id} [delete]
// @Security     BearerAuth
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.noteUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Note deleted", nil)
}
