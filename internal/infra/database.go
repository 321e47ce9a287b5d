package infra

import (
	"fmt"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection, migrates every model and then applies
// the idempotent SQL patches GORM cannot express (partial unique indexes).
// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates all tables. Integration tests call it on a
// fresh container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.BoxList{},
		&model.OtherPayment{},
		&model.Ticket{},
		&model.TicketRegistration{},
		&model.TicketRegistrationForDay{},
		&model.Customer{},
		&model.Vehicle{},
		&model.Receipt{},
		&model.InterestSettings{},
		&model.InterestCustomer{},
		&model.Note{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one open stay per ticket. Closing clears ticket_id, so the
		// index only ever holds open registrations.
		{"ticket_registrations_one_open", `
CREATE UNIQUE INDEX IF NOT EXISTS ticket_registrations_one_open
    ON ticket_registrations (ticket_id)
    WHERE departure_day IS NULL AND ticket_id IS NOT NULL`},
		// At most one PENDING receipt per customer.
		{"receipts_one_pending", `
CREATE UNIQUE INDEX IF NOT EXISTS receipts_one_pending
    ON receipts (customer_id)
    WHERE status = 'PENDING'`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
