package handler

import (
	"net/http"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/apierror"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// CustomersHandler serves /customers and, with a fixed type, the /owners and
// /renters views of the same registry.
type CustomersHandler struct {
	svc          service.CustomerService
	customerType string
}

func NewCustomersHandler(svc service.CustomerService) *CustomersHandler {
	return &CustomersHandler{svc: svc}
}

// Typed returns a handler restricted to one customer type.
func (h *CustomersHandler) Typed(customerType string) *CustomersHandler {
	return &CustomersHandler{svc: h.svc, customerType: customerType}
}

// Create godoc
// @Summary Alta de cliente con sus vehiculos
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateCustomerRequest true "Cliente"
// @Success 201 {object} dto.CustomerResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /customers [post]
func (h *CustomersHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if h.customerType != "" {
		req.CustomerType = h.customerType
	}
	if !bindAndValidate(c, &req) {
		return
	}
	if h.customerType != "" {
		req.CustomerType = h.customerType
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CustomersHandler) List(c *gin.Context) {
	var filter dto.CustomerFilter
	if !bindQuery(c, &filter) {
		return
	}
	if h.customerType != "" {
		filter.Type = h.customerType
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id, h.customerType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if h.customerType != "" {
		if _, err := h.svc.Get(c.Request.Context(), id, h.customerType); err != nil {
			respondError(c, err)
			return
		}
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if h.customerType != "" {
		if _, err := h.svc.Get(c.Request.Context(), id, h.customerType); err != nil {
			respondError(c, err)
			return
		}
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CustomersHandler) Restore(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Restore(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) AddVehicle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.VehicleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddVehicle(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CustomersHandler) RemoveVehicle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	vehicleID, ok := pathID(c, "vehicleId")
	if !ok {
		return
	}
	if err := h.svc.RemoveVehicle(c.Request.Context(), id, vehicleID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Interests ────────────────────────────────────────────────────────────────

// InterestsHandler exposes the interest settings and the manual run trigger.
type InterestsHandler struct {
	customers service.CustomerService
	interests service.InterestService
	clock     service.Clock
}

func NewInterestsHandler(customers service.CustomerService, interests service.InterestService, clock service.Clock) *InterestsHandler {
	return &InterestsHandler{customers: customers, interests: interests, clock: clock}
}

func (h *InterestsHandler) GetSettings(c *gin.Context) {
	resp, err := h.customers.GetInterestSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InterestsHandler) UpdateSettings(c *gin.Context) {
	var req dto.InterestSettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.customers.UpdateInterestSettings(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InterestsHandler) GetCustomerInterest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.customers.GetCustomerInterest(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Run godoc
// @Summary Aplica los intereses del dia a los clientes con deuda
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param date query string false "Fecha (YYYY-MM-DD), por defecto hoy"
// @Success 200 {object} dto.AccrualSummary
// @Router /customers/interests/run [post]
func (h *InterestsHandler) Run(c *gin.Context) {
	day := h.clock.Today()
	if q := c.Query("date"); q != "" {
		t, err := time.Parse(dto.DateLayout, q)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Fecha invalida"))
			return
		}
		day = t
	}
	resp, err := h.interests.Run(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
