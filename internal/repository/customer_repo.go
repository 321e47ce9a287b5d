package repository

import (
	"context"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindDeletedByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error)
	// ListForInterest returns live OWNER and RENTER customers.
	ListForInterest(ctx context.Context) ([]model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
	SetHasDebt(ctx context.Context, tx *gorm.DB, id uuid.UUID, hasDebt bool) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error

	AddVehicle(ctx context.Context, v *model.Vehicle) error
	DeleteVehicle(ctx context.Context, customerID, vehicleID uuid.UUID) error
	PlateExists(ctx context.Context, plate string) (bool, error)

	DB() *gorm.DB
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) DB() *gorm.DB { return r.db }

func (r *customerRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Customer) error {
	// Vehicles are inserted through the association.
	return conn(ctx, r.db, tx).Omit("Receipts").Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Preload("Vehicles").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *customerRepo) FindDeletedByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Unscoped().Where("deleted_at IS NOT NULL").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *customerRepo) List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Customer{})
	if filter.Type != "" {
		q = q.Where("customer_type = ?", filter.Type)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("first_name ILIKE ? OR last_name ILIKE ? OR document_number ILIKE ?", like, like, like)
	}
	if filter.HasDebt != "" {
		q = q.Where("has_debt = ?", filter.HasDebt == "true")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Vehicles").
		Order("last_name ASC, first_name ASC").
		Limit(filter.Limit).Offset(filter.Offset()).
		Find(&customers).Error
	return customers, total, err
}

func (r *customerRepo) ListForInterest(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).
		Where("customer_type IN ?", []string{model.CustomerOwner, model.CustomerRenter}).
		Order("created_at ASC").
		Find(&customers).Error
	return customers, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Omit("Vehicles", "Receipts").Save(c).Error
}

func (r *customerRepo) SetHasDebt(ctx context.Context, tx *gorm.DB, id uuid.UUID, hasDebt bool) error {
	return conn(ctx, r.db, tx).Model(&model.Customer{}).Where("id = ?", id).Update("has_debt", hasDebt).Error
}

func (r *customerRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Customer{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *customerRepo) Restore(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().Model(&model.Customer{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *customerRepo) AddVehicle(ctx context.Context, v *model.Vehicle) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *customerRepo) DeleteVehicle(ctx context.Context, customerID, vehicleID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND customer_id = ?", vehicleID, customerID).Delete(&model.Vehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *customerRepo) PlateExists(ctx context.Context, plate string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Vehicle{}).Where("plate = ?", plate).Count(&n).Error
	return n > 0, err
}
