package repository

import (
	"context"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketRepository interface {
	Create(ctx context.Context, t *model.Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Ticket, error)
	List(ctx context.Context, filter dto.TicketFilter) ([]model.Ticket, int64, error)
	Update(ctx context.Context, t *model.Ticket) error

	// FindOpenRegistration returns the open stay of a ticket, locking the row
	// when called inside a transaction.
	FindOpenRegistration(ctx context.Context, tx *gorm.DB, ticketID uuid.UUID) (*model.TicketRegistration, error)
	FindRegistration(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.TicketRegistration, error)
	CreateRegistration(ctx context.Context, tx *gorm.DB, reg *model.TicketRegistration) error
	// CloseRegistration writes the departure, price and box list of reg and
	// detaches it from its ticket.
	CloseRegistration(ctx context.Context, tx *gorm.DB, reg *model.TicketRegistration) error
	ListRegistrations(ctx context.Context, day *time.Time, open *bool, page dto.PageQuery) ([]model.TicketRegistration, int64, error)

	CreateForDay(ctx context.Context, tx *gorm.DB, reg *model.TicketRegistrationForDay) error
	FindForDay(ctx context.Context, id uuid.UUID) (*model.TicketRegistrationForDay, error)
	UpdateForDayFlags(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	ListForDay(ctx context.Context, day *time.Time, page dto.PageQuery) ([]model.TicketRegistrationForDay, int64, error)

	DB() *gorm.DB
}

type ticketRepo struct{ db *gorm.DB }

func NewTicketRepository(db *gorm.DB) TicketRepository { return &ticketRepo{db: db} }

func (r *ticketRepo) DB() *gorm.DB { return r.db }

func (r *ticketRepo) Create(ctx context.Context, t *model.Ticket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ticketRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	var t model.Ticket
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *ticketRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Ticket, error) {
	var t model.Ticket
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&t).Error
	return &t, err
}

func (r *ticketRepo) List(ctx context.Context, filter dto.TicketFilter) ([]model.Ticket, int64, error) {
	var tickets []model.Ticket
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Ticket{})
	if filter.Barcode != "" {
		q = q.Where("barcode ILIKE ?", "%"+filter.Barcode+"%")
	}
	if filter.VehicleType != "" {
		q = q.Where("vehicle_type = ?", filter.VehicleType)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("barcode ASC").Limit(filter.Limit).Offset(filter.Offset()).Find(&tickets).Error
	return tickets, total, err
}

func (r *ticketRepo) Update(ctx context.Context, t *model.Ticket) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *ticketRepo) FindOpenRegistration(ctx context.Context, tx *gorm.DB, ticketID uuid.UUID) (*model.TicketRegistration, error) {
	var reg model.TicketRegistration
	q := conn(ctx, r.db, tx)
	if tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("ticket_id = ? AND departure_day IS NULL", ticketID).First(&reg).Error
	return &reg, err
}

func (r *ticketRepo) FindRegistration(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.TicketRegistration, error) {
	var reg model.TicketRegistration
	q := conn(ctx, r.db, tx)
	if tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&reg, "id = ?", id).Error
	return &reg, err
}

func (r *ticketRepo) CreateRegistration(ctx context.Context, tx *gorm.DB, reg *model.TicketRegistration) error {
	return conn(ctx, r.db, tx).Create(reg).Error
}

func (r *ticketRepo) CloseRegistration(ctx context.Context, tx *gorm.DB, reg *model.TicketRegistration) error {
	res := conn(ctx, r.db, tx).Model(&model.TicketRegistration{}).
		Where("id = ? AND departure_day IS NULL", reg.ID).
		Updates(map[string]interface{}{
			"ticket_id":      nil,
			"departure_day":  reg.DepartureDay,
			"departure_time": reg.DepartureTime,
			"price":          reg.Price,
			"box_list_id":    reg.BoxListID,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ticketRepo) ListRegistrations(ctx context.Context, day *time.Time, open *bool, page dto.PageQuery) ([]model.TicketRegistration, int64, error) {
	var regs []model.TicketRegistration
	var total int64

	q := r.db.WithContext(ctx).Model(&model.TicketRegistration{})
	if day != nil {
		q = q.Where("entry_day = ? OR departure_day = ?", day.Format(dto.DateLayout), day.Format(dto.DateLayout))
	}
	if open != nil {
		if *open {
			q = q.Where("departure_day IS NULL")
		} else {
			q = q.Where("departure_day IS NOT NULL")
		}
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("entry_day DESC, entry_time DESC").Limit(page.Limit).Offset(page.Offset()).Find(&regs).Error
	return regs, total, err
}

func (r *ticketRepo) CreateForDay(ctx context.Context, tx *gorm.DB, reg *model.TicketRegistrationForDay) error {
	return conn(ctx, r.db, tx).Create(reg).Error
}

func (r *ticketRepo) FindForDay(ctx context.Context, id uuid.UUID) (*model.TicketRegistrationForDay, error) {
	var reg model.TicketRegistrationForDay
	err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error
	return &reg, err
}

func (r *ticketRepo) UpdateForDayFlags(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.TicketRegistrationForDay{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ticketRepo) ListForDay(ctx context.Context, day *time.Time, page dto.PageQuery) ([]model.TicketRegistrationForDay, int64, error) {
	var regs []model.TicketRegistrationForDay
	var total int64

	q := r.db.WithContext(ctx).Model(&model.TicketRegistrationForDay{})
	if day != nil {
		q = q.Where("date_now = ?", day.Format(dto.DateLayout))
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).Find(&regs).Error
	return regs, total, err
}
