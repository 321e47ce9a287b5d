package handler

import (
	"net/http"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type BoxListsHandler struct{ svc service.BoxListService }

func NewBoxListsHandler(svc service.BoxListService) *BoxListsHandler {
	return &BoxListsHandler{svc: svc}
}

func (h *BoxListsHandler) List(c *gin.Context) {
	var filter dto.BoxListFilter
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

func (h *BoxListsHandler) Get(c *gin.Context) {
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

// GetByDate serves /box-lists/date/:date; "today" is accepted.
func (h *BoxListsHandler) GetByDate(c *gin.Context) {
	date := c.Param("date")
	if date == "today" {
		date = ""
	}
	resp, err := h.svc.GetByDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reconcile godoc
// @Summary Recalcula el total de la caja a partir de sus movimientos
// @Tags box-lists
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de caja"
// @Param fix query bool false "Corrige el total si no coincide"
// @Success 200 {object} dto.ReconcileResponse
// @Router /box-lists/{id}/reconcile [post]
func (h *BoxListsHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Reconcile(c.Request.Context(), id, c.Query("fix") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoxListsHandler) AddOtherPayment(c *gin.Context) {
	var req dto.CreateOtherPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddOtherPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BoxListsHandler) ListOtherPayments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListOtherPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoxListsHandler) DeleteOtherPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteOtherPayment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
