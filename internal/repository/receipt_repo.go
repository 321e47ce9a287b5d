package repository

import (
	"context"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReceiptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, rc *model.Receipt) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Receipt, error)
	// FindPendingByCustomer locks the customer's PENDING receipt when tx is set.
	FindPendingByCustomer(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*model.Receipt, error)
	List(ctx context.Context, filter dto.ReceiptFilter) ([]model.Receipt, int64, error)
	Save(ctx context.Context, tx *gorm.DB, rc *model.Receipt) error

	DB() *gorm.DB
}

type receiptRepo struct{ db *gorm.DB }

func NewReceiptRepository(db *gorm.DB) ReceiptRepository { return &receiptRepo{db: db} }

func (r *receiptRepo) DB() *gorm.DB { return r.db }

func (r *receiptRepo) Create(ctx context.Context, tx *gorm.DB, rc *model.Receipt) error {
	return conn(ctx, r.db, tx).Omit("Customer").Create(rc).Error
}

func (r *receiptRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Receipt, error) {
	var rc model.Receipt
	q := conn(ctx, r.db, tx)
	if tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	} else {
		q = q.Preload("Customer")
	}
	err := q.First(&rc, "id = ?", id).Error
	return &rc, err
}

func (r *receiptRepo) FindPendingByCustomer(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*model.Receipt, error) {
	var rc model.Receipt
	q := conn(ctx, r.db, tx)
	if tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("customer_id = ? AND status = ?", customerID, model.ReceiptPending).First(&rc).Error
	return &rc, err
}

func (r *receiptRepo) List(ctx context.Context, filter dto.ReceiptFilter) ([]model.Receipt, int64, error) {
	var receipts []model.Receipt
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Receipt{})
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("receipt_number DESC").Limit(filter.Limit).Offset(filter.Offset()).Find(&receipts).Error
	return receipts, total, err
}

func (r *receiptRepo) Save(ctx context.Context, tx *gorm.DB, rc *model.Receipt) error {
	return conn(ctx, r.db, tx).Omit("Customer").Save(rc).Error
}
