package service

import (
	"context"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BoxListService interface {
	// FindOrCreate returns the box list of the business day containing at.
	FindOrCreate(ctx context.Context, at time.Time) (*dto.BoxListResponse, error)
	// Increment adds delta to the box list total without reading it first.
	Increment(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
	Get(ctx context.Context, id uuid.UUID) (*dto.BoxListDetailResponse, error)
	GetByDate(ctx context.Context, date string) (*dto.BoxListDetailResponse, error)
	List(ctx context.Context, filter dto.BoxListFilter) (*dto.ListResponse[dto.BoxListResponse], error)
	Reconcile(ctx context.Context, id uuid.UUID, fix bool) (*dto.ReconcileResponse, error)

	AddOtherPayment(ctx context.Context, req dto.CreateOtherPaymentRequest) (*dto.OtherPaymentResponse, error)
	ListOtherPayments(ctx context.Context, boxListID uuid.UUID) ([]dto.OtherPaymentResponse, error)
	DeleteOtherPayment(ctx context.Context, id uuid.UUID) error

	// Report returns the box list with every linked record, for printing.
	Report(ctx context.Context, id uuid.UUID) (*model.BoxList, error)
}

type boxListService struct {
	repo  repository.BoxListRepository
	clock Clock
}

func NewBoxListService(repo repository.BoxListRepository, clock Clock) BoxListService {
	return &boxListService{repo: repo, clock: clock}
}

func (s *boxListService) FindOrCreate(ctx context.Context, at time.Time) (*dto.BoxListResponse, error) {
	bl, err := s.repo.FindOrCreate(ctx, nil, DayOf(at.In(s.clock.Loc)))
	if err != nil {
		return nil, repoErr(err, "caja")
	}
	resp := toBoxListResponse(bl)
	return &resp, nil
}

func (s *boxListService) Increment(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	if err := s.repo.Increment(ctx, nil, id, delta); err != nil {
		return repoErr(err, "caja")
	}
	infra.BoxListIncrementsTotal.WithLabelValues("manual").Inc()
	return nil
}

func (s *boxListService) Get(ctx context.Context, id uuid.UUID) (*dto.BoxListDetailResponse, error) {
	bl, err := s.repo.FindByIDWithChildren(ctx, id)
	if err != nil {
		return nil, repoErr(err, "caja")
	}
	return toBoxListDetail(bl), nil
}

func (s *boxListService) GetByDate(ctx context.Context, date string) (*dto.BoxListDetailResponse, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	if day == nil {
		t := s.clock.Today()
		day = &t
	}
	bl, err := s.repo.FindByDate(ctx, *day)
	if err != nil {
		return nil, repoErr(err, "caja")
	}
	return s.Get(ctx, bl.ID)
}

func (s *boxListService) List(ctx context.Context, filter dto.BoxListFilter) (*dto.ListResponse[dto.BoxListResponse], error) {
	filter.Normalize()
	from, err := parseDay(filter.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDay(filter.To)
	if err != nil {
		return nil, err
	}
	lists, total, err := s.repo.List(ctx, from, to, filter.PageQuery)
	if err != nil {
		return nil, errors.Wrap(err, "listar cajas")
	}
	data := make([]dto.BoxListResponse, len(lists))
	for i := range lists {
		data[i] = toBoxListResponse(&lists[i])
	}
	resp := dto.NewListResponse(data, total, filter.PageQuery)
	return &resp, nil
}

// Reconcile compares the running total with the sum of the linked records.
// When fix is set and they differ, the stored total is overwritten. The box
// list row stays locked from the read to the write, so Increments issued
// meanwhile land on top of the corrected total.
func (s *boxListService) Reconcile(ctx context.Context, id uuid.UUID, fix bool) (*dto.ReconcileResponse, error) {
	var resp *dto.ReconcileResponse
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		bl, err := s.repo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		t, err := s.repo.Totals(ctx, tx, id)
		if err != nil {
			return errors.Wrap(err, "sumar caja")
		}
		computed := t.Sum()
		resp = &dto.ReconcileResponse{
			BoxListID:     id.String(),
			Stored:        bl.TotalPrice,
			Computed:      computed,
			Registrations: t.Registrations,
			ForDay:        t.ForDay,
			Receipts:      t.Receipts,
			Ingresos:      t.Ingresos,
			Egresos:       t.Egresos,
			Balanced:      bl.TotalPrice.Equal(computed),
		}
		if resp.Balanced {
			return nil
		}
		log.Warn().
			Str("box_list_id", id.String()).
			Str("stored", bl.TotalPrice.String()).
			Str("computed", computed.String()).
			Msg("box list out of balance")
		if !fix {
			return nil
		}
		if err := s.repo.SetTotal(ctx, tx, id, computed); err != nil {
			return errors.Wrap(err, "corregir caja")
		}
		resp.Fixed = true
		return nil
	})
	if err != nil {
		return nil, repoErr(err, "caja")
	}
	return resp, nil
}

func (s *boxListService) AddOtherPayment(ctx context.Context, req dto.CreateOtherPaymentRequest) (*dto.OtherPaymentResponse, error) {
	today := s.clock.Today()
	p := &model.OtherPayment{
		Description: req.Description,
		Price:       req.Price,
		Type:        req.Type,
		DateNow:     today,
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		bl, err := s.repo.FindOrCreate(ctx, tx, today)
		if err != nil {
			return err
		}
		p.BoxListID = bl.ID
		if err := s.repo.CreateOtherPayment(ctx, tx, p); err != nil {
			return err
		}
		return s.repo.Increment(ctx, tx, bl.ID, p.Signed())
	})
	if err != nil {
		return nil, repoErr(err, "registrar pago")
	}
	infra.BoxListIncrementsTotal.WithLabelValues("other_payment").Inc()
	resp := toOtherPaymentResponse(p)
	return &resp, nil
}

func (s *boxListService) ListOtherPayments(ctx context.Context, boxListID uuid.UUID) ([]dto.OtherPaymentResponse, error) {
	ps, err := s.repo.ListOtherPayments(ctx, boxListID)
	if err != nil {
		return nil, errors.Wrap(err, "listar pagos")
	}
	out := make([]dto.OtherPaymentResponse, len(ps))
	for i := range ps {
		out[i] = toOtherPaymentResponse(&ps[i])
	}
	return out, nil
}

// DeleteOtherPayment removes the payment and reverts its contribution.
func (s *boxListService) DeleteOtherPayment(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindOtherPayment(ctx, id)
	if err != nil {
		return repoErr(err, "pago")
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteOtherPayment(ctx, tx, p.ID); err != nil {
			return err
		}
		return s.repo.Increment(ctx, tx, p.BoxListID, p.Signed().Neg())
	})
	return repoErr(err, "pago")
}

func (s *boxListService) Report(ctx context.Context, id uuid.UUID) (*model.BoxList, error) {
	bl, err := s.repo.FindByIDWithChildren(ctx, id)
	if err != nil {
		return nil, repoErr(err, "caja")
	}
	return bl, nil
}

func toBoxListDetail(bl *model.BoxList) *dto.BoxListDetailResponse {
	resp := &dto.BoxListDetailResponse{
		BoxListResponse:     toBoxListResponse(bl),
		Registrations:       make([]dto.TicketRegistrationResponse, len(bl.Registrations)),
		RegistrationsForDay: make([]dto.TicketRegistrationForDayResponse, len(bl.RegistrationsForDay)),
		OtherPayments:       make([]dto.OtherPaymentResponse, len(bl.OtherPayments)),
		Receipts:            make([]dto.ReceiptResponse, len(bl.Receipts)),
	}
	for i := range bl.Registrations {
		resp.Registrations[i] = toRegistrationResponse(&bl.Registrations[i])
	}
	for i := range bl.RegistrationsForDay {
		resp.RegistrationsForDay[i] = toForDayResponse(&bl.RegistrationsForDay[i])
	}
	for i := range bl.OtherPayments {
		resp.OtherPayments[i] = toOtherPaymentResponse(&bl.OtherPayments[i])
	}
	for i := range bl.Receipts {
		resp.Receipts[i] = toReceiptResponse(&bl.Receipts[i])
	}
	return resp
}
