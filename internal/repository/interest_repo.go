package repository

import (
	"context"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InterestRepository interface {
	// LatestSettings returns the most recently updated settings row.
	LatestSettings(ctx context.Context) (*model.InterestSettings, error)
	CreateSettings(ctx context.Context, s *model.InterestSettings) error
	// FindOrCreateCustomer returns the customer's accumulator, creating it at
	// zero. Inside a transaction the row is locked.
	FindOrCreateCustomer(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*model.InterestCustomer, error)
	FindCustomer(ctx context.Context, customerID uuid.UUID) (*model.InterestCustomer, error)
	SaveCustomer(ctx context.Context, tx *gorm.DB, ic *model.InterestCustomer) error
}

type interestRepo struct{ db *gorm.DB }

func NewInterestRepository(db *gorm.DB) InterestRepository { return &interestRepo{db: db} }

func (r *interestRepo) LatestSettings(ctx context.Context) (*model.InterestSettings, error) {
	var s model.InterestSettings
	err := r.db.WithContext(ctx).Order("updated_at DESC").First(&s).Error
	return &s, err
}

func (r *interestRepo) CreateSettings(ctx context.Context, s *model.InterestSettings) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *interestRepo) FindOrCreateCustomer(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*model.InterestCustomer, error) {
	q := conn(ctx, r.db, tx)
	seed := model.InterestCustomer{CustomerID: customerID}
	if err := q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return nil, err
	}
	var ic model.InterestCustomer
	if tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("customer_id = ?", customerID).First(&ic).Error
	return &ic, err
}

func (r *interestRepo) FindCustomer(ctx context.Context, customerID uuid.UUID) (*model.InterestCustomer, error) {
	var ic model.InterestCustomer
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&ic).Error
	return &ic, err
}

func (r *interestRepo) SaveCustomer(ctx context.Context, tx *gorm.DB, ic *model.InterestCustomer) error {
	return conn(ctx, r.db, tx).Save(ic).Error
}
