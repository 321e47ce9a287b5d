package service

import (
	"context"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/repository"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Accrual outcomes.
const (
	AccrualApplied = "applied"
	AccrualSkipped = "skipped"
	AccrualFailed  = "failed"
)

// GraceDays is how long after its start date a customer is exempt.
const GraceDays = 10

// ErrNoInterestSettings aborts a run: there is nothing to apply.
var ErrNoInterestSettings = errors.New("no hay configuracion de intereses")

var hundred = decimal.NewFromInt(100)

type InterestService interface {
	// Run charges the configured percentage to every eligible customer for
	// day. Customers are processed independently; one failure never stops
	// the rest.
	Run(ctx context.Context, day time.Time) (*dto.AccrualSummary, error)
}

type interestService struct {
	repo      repository.InterestRepository
	customers repository.CustomerRepository
	receipts  repository.ReceiptRepository
}

func NewInterestService(
	repo repository.InterestRepository,
	customers repository.CustomerRepository,
	receipts repository.ReceiptRepository,
) InterestService {
	return &interestService{repo: repo, customers: customers, receipts: receipts}
}

// skip is returned from inside the per-customer transaction to roll it back
// and report the customer as skipped.
type skip string

func (s skip) Error() string { return string(s) }

func (s *interestService) Run(ctx context.Context, day time.Time) (*dto.AccrualSummary, error) {
	day = DayOf(day)
	settings, err := s.repo.LatestSettings(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoInterestSettings
	}
	if err != nil {
		return nil, errors.Wrap(err, "leer configuracion de intereses")
	}

	customers, err := s.customers.ListForInterest(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listar clientes")
	}

	summary := &dto.AccrualSummary{Date: day.Format(dto.DateLayout), Items: make([]dto.AccrualItem, 0, len(customers))}
	for i := range customers {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		item := s.accrue(ctx, &customers[i], settings, day)
		switch item.Status {
		case AccrualApplied:
			summary.Applied++
		case AccrualSkipped:
			summary.Skipped++
		case AccrualFailed:
			summary.Failed++
			log.Error().Str("customer_id", item.CustomerID).Str("reason", item.Reason).Msg("interest accrual failed")
		}
		infra.InterestResultsTotal.WithLabelValues(item.Status).Inc()
		summary.Items = append(summary.Items, item)
	}

	log.Info().
		Str("date", summary.Date).
		Int("applied", summary.Applied).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("interest run finished")
	return summary, nil
}

func (s *interestService) accrue(ctx context.Context, c *model.Customer, settings *model.InterestSettings, day time.Time) dto.AccrualItem {
	item := dto.AccrualItem{CustomerID: c.ID.String(), Amount: decimal.Zero}

	var pct decimal.Decimal
	switch c.CustomerType {
	case model.CustomerOwner:
		pct = settings.InterestOwner
	case model.CustomerRenter:
		pct = settings.InterestRenter
	default:
		item.Status, item.Reason = AccrualSkipped, "tipo de cliente sin intereses"
		return item
	}
	if !pct.IsPositive() {
		item.Status, item.Reason = AccrualSkipped, "porcentaje en cero"
		return item
	}
	if DayOf(c.StartDate).AddDate(0, 0, GraceDays).After(day) {
		item.Status, item.Reason = AccrualSkipped, "dentro del periodo de gracia"
		return item
	}

	err := runTx(ctx, s.receipts.DB(), func(tx *gorm.DB) error {
		rc, err := s.receipts.FindPendingByCustomer(ctx, tx, c.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return skip("sin recibo pendiente")
		}
		if err != nil {
			return err
		}
		ic, err := s.repo.FindOrCreateCustomer(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if ic.LastAppliedOn != nil && DayOf(*ic.LastAppliedOn).Equal(day) {
			return skip("ya aplicado hoy")
		}

		amount := rc.StartAmount.Mul(pct).Div(hundred).Round(2)
		rc.Price = rc.Price.Add(amount)
		rc.InterestPercentage = rc.InterestPercentage.Add(pct)
		if err := s.receipts.Save(ctx, tx, rc); err != nil {
			return err
		}
		ic.Interest = ic.Interest.Add(amount)
		ic.LastAppliedOn = &day
		if err := s.repo.SaveCustomer(ctx, tx, ic); err != nil {
			return err
		}
		item.Amount = amount
		return s.customers.SetHasDebt(ctx, tx, c.ID, true)
	})

	var reason skip
	switch {
	case err == nil:
		item.Status = AccrualApplied
	case errors.As(err, &reason):
		item.Status, item.Reason, item.Amount = AccrualSkipped, string(reason), decimal.Zero
	default:
		item.Status, item.Reason, item.Amount = AccrualFailed, err.Error(), decimal.Zero
	}
	return item
}
