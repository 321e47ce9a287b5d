package handler

import (
	"fmt"
	"net/http"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/apierror"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// PrinterHandler renders printable PDFs for the booth printer.
type PrinterHandler struct {
	tickets service.TicketService
	boxes   service.BoxListService
}

func NewPrinterHandler(tickets service.TicketService, boxes service.BoxListService) *PrinterHandler {
	return &PrinterHandler{tickets: tickets, boxes: boxes}
}

func (h *PrinterHandler) Registration(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	reg, err := h.tickets.GetRegistration(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if reg.Open() {
		c.JSON(http.StatusBadRequest, apierror.New("La estadia sigue abierta"))
		return
	}
	data, err := infra.RegistrationPDF(reg)
	if err != nil {
		respondError(c, errors.Wrap(err, "imprimir registro"))
		return
	}
	sendPDF(c, fmt.Sprintf("registro_%s.pdf", reg.ID.String()[:8]), data)
}

func (h *PrinterHandler) BoxList(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	bl, err := h.boxes.Report(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := infra.BoxListPDF(bl)
	if err != nil {
		respondError(c, errors.Wrap(err, "imprimir caja"))
		return
	}
	sendPDF(c, "caja_"+bl.Date.Format("2006-01-02")+".pdf", data)
}
