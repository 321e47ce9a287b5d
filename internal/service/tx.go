package service

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Clock is the garage's notion of "now". Dates written to date columns are
// the calendar day in Loc, stored as midnight UTC.
type Clock struct {
	Now func() time.Time
	Loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Loc: loc}
}

// Local returns the current instant in the business timezone.
func (c Clock) Local() time.Time { return c.Now().In(c.Loc) }

// Today is the current business day.
func (c Clock) Today() time.Time { return DayOf(c.Local()) }

// Parse reads a "2006-01-02T15:04:05" timestamp in the business timezone.
func (c Clock) Parse(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04:05", s, c.Loc)
}

// DayOf truncates t to its calendar day, as midnight UTC.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, invalidState("fecha invalida: " + s)
	}
	return &t, nil
}

func parseBool(s string) *bool {
	if s == "" {
		return nil
	}
	b := s == "true"
	return &b
}
