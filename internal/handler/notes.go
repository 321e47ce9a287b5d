package handler

import (
	"net/http"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/apierror"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/middleware"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotesHandler struct{ svc service.NoteService }

func NewNotesHandler(svc service.NoteService) *NotesHandler { return &NotesHandler{svc: svc} }

func (h *NotesHandler) Create(c *gin.Context) {
	var req dto.CreateNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	uid := middleware.GetClaims(c).UserUUID()
	if uid == uuid.Nil {
		c.JSON(http.StatusForbidden, apierror.New("Solo disponible para usuarios"))
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *NotesHandler) List(c *gin.Context) {
	var filter dto.NoteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotesHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotesHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotesHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
