package service

import (
	"context"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/billing"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/notify"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Scan actions.
const (
	ActionEntry = "ENTRY"
	ActionExit  = "EXIT"
)

type TicketService interface {
	Create(ctx context.Context, req dto.CreateTicketRequest) (*dto.TicketResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.TicketResponse, error)
	List(ctx context.Context, filter dto.TicketFilter) (*dto.ListResponse[dto.TicketResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateTicketRequest) (*dto.TicketResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Scan opens a registration for a ticket without one and closes the open
	// one otherwise.
	Scan(ctx context.Context, barcode string) (*dto.ScanResponse, error)
	OpenRegistration(ctx context.Context, ticketID uuid.UUID, req dto.ManualEntryRequest) (*dto.TicketRegistrationResponse, error)
	CloseRegistration(ctx context.Context, id uuid.UUID, req dto.ManualCloseRequest) (*dto.TicketRegistrationResponse, error)
	GetRegistration(ctx context.Context, id uuid.UUID) (*model.TicketRegistration, error)
	ListRegistrations(ctx context.Context, filter dto.RegistrationFilter) (*dto.ListResponse[dto.TicketRegistrationResponse], error)

	CreateForDay(ctx context.Context, req dto.CreateRegistrationForDayRequest) (*dto.TicketRegistrationForDayResponse, error)
	UpdateForDay(ctx context.Context, id uuid.UUID, req dto.UpdateRegistrationForDayRequest) (*dto.TicketRegistrationForDayResponse, error)
	ListForDay(ctx context.Context, filter dto.RegistrationFilter) (*dto.ListResponse[dto.TicketRegistrationForDayResponse], error)
}

// TicketConfig carries the pricing rules used by the ticket service.
type TicketConfig struct {
	Shift billing.Shift
	Table billing.Table
}

type ticketService struct {
	repo      repository.TicketRepository
	boxes     repository.BoxListRepository
	publisher EventPublisher
	clock     Clock
	cfg       TicketConfig
}

func NewTicketService(
	repo repository.TicketRepository,
	boxes repository.BoxListRepository,
	publisher EventPublisher,
	clock Clock,
	cfg TicketConfig,
) TicketService {
	if cfg.Table == nil {
		cfg.Table = billing.DefaultTable
	}
	if cfg.Shift == (billing.Shift{}) {
		cfg.Shift = billing.DefaultShift
	}
	return &ticketService{repo: repo, boxes: boxes, publisher: publisher, clock: clock, cfg: cfg}
}

// ── Tickets ──────────────────────────────────────────────────────────────────

func (s *ticketService) Create(ctx context.Context, req dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	t := &model.Ticket{
		Barcode:     req.Barcode,
		VehicleType: req.VehicleType,
		DayPrice:    req.DayPrice,
		NightPrice:  req.NightPrice,
		Active:      true,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("el codigo de barras ya esta registrado")
		}
		return nil, errors.Wrap(err, "crear ticket")
	}
	resp := toTicketResponse(t)
	return &resp, nil
}

func (s *ticketService) Get(ctx context.Context, id uuid.UUID) (*dto.TicketResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "ticket")
	}
	resp := toTicketResponse(t)
	return &resp, nil
}

func (s *ticketService) List(ctx context.Context, filter dto.TicketFilter) (*dto.ListResponse[dto.TicketResponse], error) {
	filter.Normalize()
	tickets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "listar tickets")
	}
	data := make([]dto.TicketResponse, len(tickets))
	for i := range tickets {
		data[i] = toTicketResponse(&tickets[i])
	}
	resp := dto.NewListResponse(data, total, filter.PageQuery)
	return &resp, nil
}

func (s *ticketService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTicketRequest) (*dto.TicketResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "ticket")
	}
	if req.VehicleType != "" {
		t.VehicleType = req.VehicleType
	}
	if req.DayPrice != nil {
		t.DayPrice = *req.DayPrice
	}
	if req.NightPrice != nil {
		t.NightPrice = *req.NightPrice
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, errors.Wrap(err, "actualizar ticket")
	}
	resp := toTicketResponse(t)
	return &resp, nil
}

func (s *ticketService) Deactivate(ctx context.Context, id uuid.UUID) error {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return repoErr(err, "ticket")
	}
	if _, err := s.repo.FindOpenRegistration(ctx, nil, t.ID); err == nil {
		return invalidState("el ticket tiene una estadia abierta")
	}
	t.Active = false
	return errors.Wrap(s.repo.Update(ctx, t), "desactivar ticket")
}

// ── Registrations ────────────────────────────────────────────────────────────

func (s *ticketService) Scan(ctx context.Context, barcode string) (*dto.ScanResponse, error) {
	t, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, repoErr(err, "ticket")
	}
	if !t.Active {
		return nil, invalidState("el ticket esta desactivado")
	}

	now := s.clock.Local()
	var (
		reg    *model.TicketRegistration
		action string
	)
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		open, err := s.repo.FindOpenRegistration(ctx, tx, t.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			action = ActionEntry
			reg, err = s.open(ctx, tx, t, now, nil)
			return err
		case err != nil:
			return err
		}
		action = ActionExit
		reg = open
		return s.close(ctx, tx, t, reg, now)
	})
	if err != nil {
		return nil, s.registrationErr(err)
	}

	infra.ScansTotal.WithLabelValues(action).Inc()
	resp := toRegistrationResponse(reg)
	s.publishRegistration(ctx, action, resp)
	return &dto.ScanResponse{Action: action, Registration: resp}, nil
}

func (s *ticketService) OpenRegistration(ctx context.Context, ticketID uuid.UUID, req dto.ManualEntryRequest) (*dto.TicketRegistrationResponse, error) {
	t, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, repoErr(err, "ticket")
	}
	if !t.Active {
		return nil, invalidState("el ticket esta desactivado")
	}
	at, err := s.instant(req.At)
	if err != nil {
		return nil, err
	}

	var reg *model.TicketRegistration
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.repo.FindOpenRegistration(ctx, tx, t.ID); err == nil {
			return invalidState("el ticket ya tiene una estadia abierta")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		reg, err = s.open(ctx, tx, t, at, req.Description)
		return err
	})
	if err != nil {
		return nil, s.registrationErr(err)
	}
	resp := toRegistrationResponse(reg)
	s.publishRegistration(ctx, ActionEntry, resp)
	return &resp, nil
}

func (s *ticketService) CloseRegistration(ctx context.Context, id uuid.UUID, req dto.ManualCloseRequest) (*dto.TicketRegistrationResponse, error) {
	at, err := s.instant(req.At)
	if err != nil {
		return nil, err
	}

	var reg *model.TicketRegistration
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		reg, err = s.repo.FindRegistration(ctx, tx, id)
		if err != nil {
			return err
		}
		if !reg.Open() || reg.TicketID == nil {
			return invalidState("la estadia ya esta cerrada")
		}
		t, err := s.repo.FindByID(ctx, *reg.TicketID)
		if err != nil {
			return err
		}
		return s.close(ctx, tx, t, reg, at)
	})
	if err != nil {
		return nil, s.registrationErr(err)
	}
	resp := toRegistrationResponse(reg)
	s.publishRegistration(ctx, ActionExit, resp)
	return &resp, nil
}

func (s *ticketService) GetRegistration(ctx context.Context, id uuid.UUID) (*model.TicketRegistration, error) {
	reg, err := s.repo.FindRegistration(ctx, nil, id)
	if err != nil {
		return nil, repoErr(err, "registro")
	}
	return reg, nil
}

func (s *ticketService) ListRegistrations(ctx context.Context, filter dto.RegistrationFilter) (*dto.ListResponse[dto.TicketRegistrationResponse], error) {
	filter.Normalize()
	day, err := parseDay(filter.Date)
	if err != nil {
		return nil, err
	}
	regs, total, err := s.repo.ListRegistrations(ctx, day, parseBool(filter.Open), filter.PageQuery)
	if err != nil {
		return nil, errors.Wrap(err, "listar registros")
	}
	data := make([]dto.TicketRegistrationResponse, len(regs))
	for i := range regs {
		data[i] = toRegistrationResponse(&regs[i])
	}
	resp := dto.NewListResponse(data, total, filter.PageQuery)
	return &resp, nil
}

// open inserts a zero-priced registration. A concurrent open of the same
// ticket fails on the one-open-registration index.
func (s *ticketService) open(ctx context.Context, tx *gorm.DB, t *model.Ticket, at time.Time, desc *string) (*model.TicketRegistration, error) {
	reg := &model.TicketRegistration{
		TicketID:    &t.ID,
		EntryDay:    DayOf(at),
		EntryTime:   billing.Clock(at),
		Price:       decimal.Zero,
		Description: desc,
		VehicleType: t.VehicleType,
	}
	if err := s.repo.CreateRegistration(ctx, tx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// close prices the stay, books it in the box list of the departure day and
// detaches the ticket. Must run inside the caller's transaction.
func (s *ticketService) close(ctx context.Context, tx *gorm.DB, t *model.Ticket, reg *model.TicketRegistration, at time.Time) error {
	entry, err := billing.Combine(reg.EntryDay, reg.EntryTime, s.clock.Loc)
	if err != nil {
		return err
	}
	if at.Before(entry) {
		return invalidState("la salida es anterior a la entrada")
	}
	rate := s.cfg.Shift.Rate(entry, t.DayPrice, t.NightPrice)
	price, err := billing.Price(entry, at, rate)
	if err != nil {
		return err
	}

	bl, err := s.boxes.FindOrCreate(ctx, tx, DayOf(at))
	if err != nil {
		return err
	}
	day := DayOf(at)
	clock := billing.Clock(at)
	reg.DepartureDay = &day
	reg.DepartureTime = &clock
	reg.Price = price
	reg.BoxListID = &bl.ID
	if err := s.repo.CloseRegistration(ctx, tx, reg); err != nil {
		return err
	}
	reg.TicketID = nil
	if err := s.boxes.Increment(ctx, tx, bl.ID, price); err != nil {
		return err
	}
	infra.BoxListIncrementsTotal.WithLabelValues("registration").Inc()
	return nil
}

// instant parses an optional explicit timestamp, defaulting to now.
func (s *ticketService) instant(at string) (time.Time, error) {
	if at == "" {
		return s.clock.Local(), nil
	}
	t, err := s.clock.Parse(at)
	if err != nil {
		return time.Time{}, invalidState("fecha y hora invalidas")
	}
	return t, nil
}

func (s *ticketService) registrationErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict("el ticket ya tiene una estadia abierta")
	}
	return repoErr(err, "registro")
}

func (s *ticketService) publishRegistration(ctx context.Context, action string, reg dto.TicketRegistrationResponse) {
	eventType := "registration.opened"
	if action == ActionExit {
		eventType = "registration.closed"
	}
	publish(ctx, s.publisher, notify.ChannelRegistrations, eventType, reg)
}

// ── Flat-rate registrations ──────────────────────────────────────────────────

func (s *ticketService) CreateForDay(ctx context.Context, req dto.CreateRegistrationForDayRequest) (*dto.TicketRegistrationForDayResponse, error) {
	var price decimal.Decimal
	if req.Price != nil {
		price = *req.Price
	} else {
		p, err := s.cfg.Table.FlatRate(req.VehicleType, req.Days, req.Weeks)
		if err != nil {
			return nil, invalidState(err.Error())
		}
		price = p
	}
	if !price.IsPositive() {
		return nil, invalidState("el precio debe ser mayor a cero")
	}

	today := s.clock.Today()
	reg := &model.TicketRegistrationForDay{
		Description: req.Description,
		VehicleType: req.VehicleType,
		Price:       price,
		Days:        req.Days,
		Weeks:       req.Weeks,
		Paid:        req.Paid,
		DateNow:     today,
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		bl, err := s.boxes.FindOrCreate(ctx, tx, today)
		if err != nil {
			return err
		}
		reg.BoxListID = bl.ID
		if err := s.repo.CreateForDay(ctx, tx, reg); err != nil {
			return err
		}
		return s.boxes.Increment(ctx, tx, bl.ID, price)
	})
	if err != nil {
		return nil, repoErr(err, "registro por dia")
	}
	infra.BoxListIncrementsTotal.WithLabelValues("registration_for_day").Inc()

	resp := toForDayResponse(reg)
	publish(ctx, s.publisher, notify.ChannelRegistrations, "registration-for-day.created", resp)
	return &resp, nil
}

func (s *ticketService) UpdateForDay(ctx context.Context, id uuid.UUID, req dto.UpdateRegistrationForDayRequest) (*dto.TicketRegistrationForDayResponse, error) {
	fields := map[string]interface{}{}
	if req.Paid != nil {
		fields["paid"] = *req.Paid
	}
	if req.Retired != nil {
		fields["retired"] = *req.Retired
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateForDayFlags(ctx, id, fields); err != nil {
			return nil, repoErr(err, "registro por dia")
		}
	}
	reg, err := s.repo.FindForDay(ctx, id)
	if err != nil {
		return nil, repoErr(err, "registro por dia")
	}
	resp := toForDayResponse(reg)
	return &resp, nil
}

func (s *ticketService) ListForDay(ctx context.Context, filter dto.RegistrationFilter) (*dto.ListResponse[dto.TicketRegistrationForDayResponse], error) {
	filter.Normalize()
	day, err := parseDay(filter.Date)
	if err != nil {
		return nil, err
	}
	regs, total, err := s.repo.ListForDay(ctx, day, filter.PageQuery)
	if err != nil {
		return nil, errors.Wrap(err, "listar registros por dia")
	}
	data := make([]dto.TicketRegistrationForDayResponse, len(regs))
	for i := range regs {
		data[i] = toForDayResponse(&regs[i])
	}
	resp := dto.NewListResponse(data, total, filter.PageQuery)
	return &resp, nil
}
