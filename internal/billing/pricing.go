package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Rates are the prices of one vehicle type.
type Rates struct {
	Hour decimal.Decimal
	Day  decimal.Decimal
	Week decimal.Decimal
}

// Table is the static price list keyed by vehicle type.
type Table map[string]Rates

// DefaultTable is the garage's published price list.
var DefaultTable = Table{
	"AUTO":      {Hour: decimal.NewFromInt(2000), Day: decimal.NewFromInt(12000), Week: decimal.NewFromInt(60000)},
	"CAMIONETA": {Hour: decimal.NewFromInt(2500), Day: decimal.NewFromInt(15000), Week: decimal.NewFromInt(75000)},
	"MOTO":      {Hour: decimal.NewFromInt(1000), Day: decimal.NewFromInt(6000), Week: decimal.NewFromInt(30000)},
}

// Lookup returns the rates for vehicleType.
func (t Table) Lookup(vehicleType string) (Rates, error) {
	r, ok := t[vehicleType]
	if !ok {
		return Rates{}, fmt.Errorf("billing: unknown vehicle type %q", vehicleType)
	}
	return r, nil
}

// FlatRate prices a pre-paid stay of the given days and weeks.
func (t Table) FlatRate(vehicleType string, days, weeks int) (decimal.Decimal, error) {
	if days < 0 || weeks < 0 {
		return decimal.Zero, fmt.Errorf("billing: negative days/weeks")
	}
	r, err := t.Lookup(vehicleType)
	if err != nil {
		return decimal.Zero, err
	}
	return r.Day.Mul(decimal.NewFromInt(int64(days))).
		Add(r.Week.Mul(decimal.NewFromInt(int64(weeks)))), nil
}

// Shift decides whether an entry is billed at the day or night rate.
type Shift struct {
	DayStartHour   int // inclusive
	NightStartHour int // exclusive end of the day shift
}

// DefaultShift bills 06:00 to 21:59 at the day rate.
var DefaultShift = Shift{DayStartHour: 6, NightStartHour: 22}

// IsDay reports whether t falls in the day shift.
func (s Shift) IsDay(t time.Time) bool {
	h := t.Hour()
	return h >= s.DayStartHour && h < s.NightStartHour
}

// Rate picks between a ticket's day and night price for an entry at t.
func (s Shift) Rate(entry time.Time, dayPrice, nightPrice decimal.Decimal) decimal.Decimal {
	if s.IsDay(entry) {
		return dayPrice
	}
	return nightPrice
}
