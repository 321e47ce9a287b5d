package service

import (
	"context"
	"fmt"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptEmailJob is the payload queued for the email worker.
type ReceiptEmailJob struct {
	ReceiptID string `json:"receipt_id"`
	ToEmail   string `json:"to_email"`
}

type ReceiptService interface {
	List(ctx context.Context, filter dto.ReceiptFilter) (*dto.ListResponse[dto.ReceiptResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ReceiptResponse, error)
	// Pay settles a PENDING receipt into today's box list and opens the
	// customer's next PENDING receipt.
	Pay(ctx context.Context, id uuid.UUID) (*dto.ReceiptResponse, error)
	// PDF renders the receipt and returns the file name to serve it under.
	PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	SendByEmail(ctx context.Context, id uuid.UUID) error
}

type receiptService struct {
	repo      repository.ReceiptRepository
	customers repository.CustomerRepository
	boxes     repository.BoxListRepository
	emails    EmailEnqueuer
	clock     Clock
}

func NewReceiptService(
	repo repository.ReceiptRepository,
	customers repository.CustomerRepository,
	boxes repository.BoxListRepository,
	emails EmailEnqueuer,
	clock Clock,
) ReceiptService {
	return &receiptService{repo: repo, customers: customers, boxes: boxes, emails: emails, clock: clock}
}

func (s *receiptService) List(ctx context.Context, filter dto.ReceiptFilter) (*dto.ListResponse[dto.ReceiptResponse], error) {
	filter.Normalize()
	receipts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "listar recibos")
	}
	data := make([]dto.ReceiptResponse, len(receipts))
	for i := range receipts {
		data[i] = toReceiptResponse(&receipts[i])
	}
	resp := dto.NewListResponse(data, total, filter.PageQuery)
	return &resp, nil
}

func (s *receiptService) Get(ctx context.Context, id uuid.UUID) (*dto.ReceiptResponse, error) {
	rc, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, repoErr(err, "recibo")
	}
	resp := toReceiptResponse(rc)
	return &resp, nil
}

func (s *receiptService) Pay(ctx context.Context, id uuid.UUID) (*dto.ReceiptResponse, error) {
	today := s.clock.Today()
	var paid *model.Receipt

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rc, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if rc.Status != model.ReceiptPending {
			return invalidState("el recibo ya fue pagado")
		}

		bl, err := s.boxes.FindOrCreate(ctx, tx, today)
		if err != nil {
			return err
		}
		rc.Status = model.ReceiptPaid
		rc.PaymentDate = &today
		rc.BoxListID = &bl.ID
		if err := s.repo.Save(ctx, tx, rc); err != nil {
			return err
		}
		if err := s.boxes.Increment(ctx, tx, bl.ID, rc.Price); err != nil {
			return err
		}
		if err := s.customers.SetHasDebt(ctx, tx, rc.CustomerID, false); err != nil {
			return err
		}
		paid = rc

		// A deleted customer is not billed again.
		c, err := s.customers.FindByID(ctx, rc.CustomerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !billable(c.CustomerType) {
			return nil
		}
		fee := monthlyFee(c.Vehicles)
		return s.repo.Create(ctx, tx, &model.Receipt{
			CustomerID:         c.ID,
			Status:             model.ReceiptPending,
			StartAmount:        fee,
			Price:              fee,
			InterestPercentage: decimal.Zero,
			DateNow:            today,
		})
	})
	if err != nil {
		return nil, repoErr(err, "recibo")
	}
	infra.BoxListIncrementsTotal.WithLabelValues("receipt").Inc()
	resp := toReceiptResponse(paid)
	return &resp, nil
}

func (s *receiptService) PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	rc, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, "", repoErr(err, "recibo")
	}
	c, err := s.customers.FindByID(ctx, rc.CustomerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", errors.Wrap(err, "cliente del recibo")
	}
	if err != nil {
		c = rc.Customer
	}
	data, err := infra.ReceiptPDF(rc, c)
	if err != nil {
		return nil, "", errors.Wrap(err, "generar PDF")
	}
	return data, fmt.Sprintf("recibo_%d.pdf", rc.ReceiptNumber), nil
}

func (s *receiptService) SendByEmail(ctx context.Context, id uuid.UUID) error {
	rc, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return repoErr(err, "recibo")
	}
	c, err := s.customers.FindByID(ctx, rc.CustomerID)
	if err != nil {
		return repoErr(err, "cliente")
	}
	if c.Email == nil || *c.Email == "" {
		return invalidState("el cliente no tiene email")
	}
	if s.emails == nil {
		return invalidState("el envio de emails no esta habilitado")
	}
	job := ReceiptEmailJob{ReceiptID: rc.ID.String(), ToEmail: *c.Email}
	return errors.Wrap(s.emails.EnqueueEmail(ctx, job), "encolar email")
}
