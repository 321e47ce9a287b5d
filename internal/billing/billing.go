// Package billing turns parking stays into prices.
//
// Hourly stays are billed as max(ceil((elapsed-5)/60), 1) hours once the
// stay reaches the 5 minute grace period; shorter stays are free.
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GraceMinutes is both the free window and the allowance subtracted before
// rounding up to whole hours.
const GraceMinutes = 5

const clockLayout = "15:04:05"

var ErrDepartureBeforeEntry = errors.New("billing: departure precedes entry")

// ElapsedMinutes returns the minute-of-clock difference between entry and
// exit. Seconds are dropped from each reading before subtracting, so
// 10:00:59 to 10:05:00 counts as five minutes.
func ElapsedMinutes(entry, exit time.Time) (int64, error) {
	if exit.Before(entry) {
		return 0, ErrDepartureBeforeEntry
	}
	in, out := entry.Truncate(time.Minute), exit.Truncate(time.Minute)
	return int64(out.Sub(in) / time.Minute), nil
}

// BillableHours applies the grace period and hour rounding to a stay length.
func BillableHours(elapsed int64) int64 {
	if elapsed < GraceMinutes {
		return 0
	}
	billable := elapsed - GraceMinutes
	hours := billable / 60
	if billable%60 != 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}
	return hours
}

// Price bills the stay between entry and exit at the given hourly rate.
func Price(entry, exit time.Time, rate decimal.Decimal) (decimal.Decimal, error) {
	elapsed, err := ElapsedMinutes(entry, exit)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Mul(decimal.NewFromInt(BillableHours(elapsed))), nil
}

// PriceForClock bills two HH:MM:SS readings taken on the same calendar day.
// An exit clock earlier than the entry clock is read as the next day.
func PriceForClock(entry, exit string, rate decimal.Decimal) (decimal.Decimal, error) {
	in, err := time.Parse(clockLayout, entry)
	if err != nil {
		return decimal.Zero, fmt.Errorf("billing: entry time %q: %w", entry, err)
	}
	out, err := time.Parse(clockLayout, exit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("billing: exit time %q: %w", exit, err)
	}
	if out.Before(in) {
		out = out.Add(24 * time.Hour)
	}
	return Price(in, out, rate)
}

// Clock formats t as the HH:MM:SS string stored on registrations.
func Clock(t time.Time) string { return t.Format(clockLayout) }

// Combine joins a stored day and HH:MM:SS clock into an instant in loc.
func Combine(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("billing: clock %q: %w", clock, err)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, loc), nil
}
