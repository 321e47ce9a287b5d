package handler

import (
	"net/http"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type TicketsHandler struct{ svc service.TicketService }

func NewTicketsHandler(svc service.TicketService) *TicketsHandler { return &TicketsHandler{svc: svc} }

func (h *TicketsHandler) Create(c *gin.Context) {
	var req dto.CreateTicketRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TicketsHandler) List(c *gin.Context) {
	var filter dto.TicketFilter
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

func (h *TicketsHandler) Get(c *gin.Context) {
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

func (h *TicketsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTicketRequest
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

func (h *TicketsHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// OpenRegistration godoc
// @Summary Registra la entrada de un vehiculo sin escaner
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del ticket"
// @Param body body dto.ManualEntryRequest false "Hora de entrada"
// @Success 201 {object} dto.TicketRegistrationResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /tickets/{id}/registrations [post]
func (h *TicketsHandler) OpenRegistration(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ManualEntryRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.OpenRegistration(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TicketsHandler) CloseRegistration(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ManualCloseRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CloseRegistration(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TicketsHandler) ListRegistrations(c *gin.Context) {
	var filter dto.RegistrationFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListRegistrations(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TicketsHandler) CreateForDay(c *gin.Context) {
	var req dto.CreateRegistrationForDayRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateForDay(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TicketsHandler) UpdateForDay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRegistrationForDayRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateForDay(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TicketsHandler) ListForDay(c *gin.Context) {
	var filter dto.RegistrationFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListForDay(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Scanner ──────────────────────────────────────────────────────────────────

// Scan godoc
// @Summary Procesa la lectura de un codigo de barras (entrada o salida)
// @Tags scanner
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ScanRequest true "Codigo leido"
// @Success 200 {object} dto.ScanResponse
// @Failure 404 {object} apierror.APIError
// @Router /scanner/scan [post]
func (h *TicketsHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Scan(c.Request.Context(), req.Barcode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
