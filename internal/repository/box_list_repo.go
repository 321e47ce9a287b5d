package repository

import (
	"context"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BoxListTotals are the per-source sums of the records linked to a box list.
type BoxListTotals struct {
	Registrations decimal.Decimal
	ForDay        decimal.Decimal
	Receipts      decimal.Decimal
	Ingresos      decimal.Decimal
	Egresos       decimal.Decimal
}

// Sum is the signed total the box list should carry.
func (t BoxListTotals) Sum() decimal.Decimal {
	return t.Registrations.Add(t.ForDay).Add(t.Receipts).Add(t.Ingresos).Sub(t.Egresos)
}

type BoxListRepository interface {
	// FindOrCreate returns the box list of date, inserting it when missing.
	// Concurrent callers for the same date observe the same row.
	FindOrCreate(ctx context.Context, tx *gorm.DB, date time.Time) (*model.BoxList, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.BoxList, error)
	FindByIDWithChildren(ctx context.Context, id uuid.UUID) (*model.BoxList, error)
	FindByDate(ctx context.Context, date time.Time) (*model.BoxList, error)
	List(ctx context.Context, from, to *time.Time, page dto.PageQuery) ([]model.BoxList, int64, error)
	// Increment adds delta to total_price in a single UPDATE.
	Increment(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
	// FindForUpdate loads the box list and, inside tx, locks its row so
	// concurrent Increments wait until tx ends.
	FindForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.BoxList, error)
	SetTotal(ctx context.Context, tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error
	Totals(ctx context.Context, tx *gorm.DB, id uuid.UUID) (BoxListTotals, error)

	CreateOtherPayment(ctx context.Context, tx *gorm.DB, p *model.OtherPayment) error
	FindOtherPayment(ctx context.Context, id uuid.UUID) (*model.OtherPayment, error)
	DeleteOtherPayment(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListOtherPayments(ctx context.Context, boxListID uuid.UUID) ([]model.OtherPayment, error)

	DB() *gorm.DB
}

type boxListRepo struct{ db *gorm.DB }

func NewBoxListRepository(db *gorm.DB) BoxListRepository { return &boxListRepo{db: db} }

func (r *boxListRepo) DB() *gorm.DB { return r.db }

func (r *boxListRepo) FindOrCreate(ctx context.Context, tx *gorm.DB, date time.Time) (*model.BoxList, error) {
	q := conn(ctx, r.db, tx)
	fresh := model.BoxList{Date: date, TotalPrice: decimal.Zero}
	err := q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return nil, err
	}
	var bl model.BoxList
	err = q.Where("date = ?", date.Format(dto.DateLayout)).First(&bl).Error
	return &bl, err
}

func (r *boxListRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.BoxList, error) {
	var bl model.BoxList
	err := r.db.WithContext(ctx).First(&bl, "id = ?", id).Error
	return &bl, err
}

func (r *boxListRepo) FindByIDWithChildren(ctx context.Context, id uuid.UUID) (*model.BoxList, error) {
	var bl model.BoxList
	err := r.db.WithContext(ctx).
		Preload("Registrations", func(db *gorm.DB) *gorm.DB { return db.Order("departure_day ASC, departure_time ASC") }).
		Preload("RegistrationsForDay").
		Preload("OtherPayments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Receipts").
		First(&bl, "id = ?", id).Error
	return &bl, err
}

func (r *boxListRepo) FindByDate(ctx context.Context, date time.Time) (*model.BoxList, error) {
	var bl model.BoxList
	err := r.db.WithContext(ctx).Where("date = ?", date.Format(dto.DateLayout)).First(&bl).Error
	return &bl, err
}

func (r *boxListRepo) List(ctx context.Context, from, to *time.Time, page dto.PageQuery) ([]model.BoxList, int64, error) {
	var lists []model.BoxList
	var total int64

	q := r.db.WithContext(ctx).Model(&model.BoxList{})
	if from != nil {
		q = q.Where("date >= ?", from.Format(dto.DateLayout))
	}
	if to != nil {
		q = q.Where("date <= ?", to.Format(dto.DateLayout))
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("date DESC").Limit(page.Limit).Offset(page.Offset()).Find(&lists).Error
	return lists, total, err
}

func (r *boxListRepo) Increment(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	res := conn(ctx, r.db, tx).Model(&model.BoxList{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_price": gorm.Expr("total_price + ?", delta),
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *boxListRepo) FindForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.BoxList, error) {
	var bl model.BoxList
	q := conn(ctx, r.db, tx)
	if tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&bl, "id = ?", id).Error
	return &bl, err
}

func (r *boxListRepo) SetTotal(ctx context.Context, tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	return conn(ctx, r.db, tx).Model(&model.BoxList{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_price": total,
			"updated_at":  time.Now(),
		}).Error
}

func (r *boxListRepo) Totals(ctx context.Context, tx *gorm.DB, id uuid.UUID) (BoxListTotals, error) {
	var t BoxListTotals
	db := conn(ctx, r.db, tx)

	sum := func(dest *decimal.Decimal, table, where string, args ...interface{}) error {
		return db.Table(table).Where(where, args...).Select("COALESCE(SUM(price), 0)").Scan(dest).Error
	}
	if err := sum(&t.Registrations, "ticket_registrations", "box_list_id = ? AND departure_day IS NOT NULL", id); err != nil {
		return t, err
	}
	if err := sum(&t.ForDay, "ticket_registrations_for_day", "box_list_id = ?", id); err != nil {
		return t, err
	}
	if err := sum(&t.Receipts, "receipts", "box_list_id = ? AND status = ?", id, model.ReceiptPaid); err != nil {
		return t, err
	}
	if err := sum(&t.Ingresos, "other_payments", "box_list_id = ? AND type = ?", id, model.PaymentIngresos); err != nil {
		return t, err
	}
	if err := sum(&t.Egresos, "other_payments", "box_list_id = ? AND type = ?", id, model.PaymentEgresos); err != nil {
		return t, err
	}
	return t, nil
}

func (r *boxListRepo) CreateOtherPayment(ctx context.Context, tx *gorm.DB, p *model.OtherPayment) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *boxListRepo) FindOtherPayment(ctx context.Context, id uuid.UUID) (*model.OtherPayment, error) {
	var p model.OtherPayment
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *boxListRepo) DeleteOtherPayment(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := conn(ctx, r.db, tx).Delete(&model.OtherPayment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *boxListRepo) ListOtherPayments(ctx context.Context, boxListID uuid.UUID) ([]model.OtherPayment, error) {
	var ps []model.OtherPayment
	err := r.db.WithContext(ctx).Where("box_list_id = ?", boxListID).Order("created_at ASC").Find(&ps).Error
	return ps, err
}
