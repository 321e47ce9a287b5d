package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceForClock(t *testing.T) {
	cases := []struct {
		name        string
		entry, exit string
		rate        int64
		want        int64
	}{
		{"under grace is free", "10:00:00", "10:04:59", 100, 0},
		{"exactly grace bills one hour", "10:00:00", "10:05:00", 100, 100},
		{"fifty minutes", "10:00:00", "10:50:00", 100, 100},
		{"sixty five minutes is one hour", "10:00:00", "11:05:00", 100, 100},
		{"sixty six minutes is two hours", "10:00:00", "11:06:00", 100, 200},
		{"three hours ten", "09:00:00", "12:10:00", 200, 800},
		{"overnight wraps to next day", "23:30:00", "00:40:00", 100, 200},
		{"seconds on entry do not eat into grace", "10:00:59", "10:05:00", 100, 100},
		{"seconds on entry do not shorten the hour", "10:00:59", "11:06:00", 100, 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PriceForClock(tc.entry, tc.exit, decimal.NewFromInt(tc.rate))
			require.NoError(t, err)
			assert.Equal(t, decimal.NewFromInt(tc.want).String(), got.String())
		})
	}
}

func TestPriceForClock_Malformed(t *testing.T) {
	_, err := PriceForClock("25:00", "10:00:00", decimal.NewFromInt(100))
	assert.Error(t, err)
}

func TestPrice_AcrossDays(t *testing.T) {
	entry := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	exit := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)

	got, err := Price(entry, exit, decimal.NewFromInt(150))
	require.NoError(t, err)
	// 180 min → ceil(175/60) = 3
	assert.Equal(t, "450", got.String())
}

func TestElapsedMinutes_ClockMinutes(t *testing.T) {
	entry := time.Date(2026, 3, 1, 10, 0, 59, 0, time.UTC)
	got, err := ElapsedMinutes(entry, time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 5, got)
}

func TestPrice_DepartureBeforeEntry(t *testing.T) {
	entry := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := Price(entry, entry.Add(-time.Minute), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrDepartureBeforeEntry)
}

func TestBillableHours_Property(t *testing.T) {
	for elapsed := int64(0); elapsed < 24*60; elapsed++ {
		h := BillableHours(elapsed)
		if elapsed < GraceMinutes {
			assert.Zero(t, h, "elapsed=%d", elapsed)
			continue
		}
		want := (elapsed - GraceMinutes + 59) / 60
		if want < 1 {
			want = 1
		}
		assert.Equal(t, want, h, "elapsed=%d", elapsed)
	}
}

func TestCombine(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	got, err := Combine(day, "08:15:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 4, 8, 15, 30, 0, loc), got)
}

func TestFlatRate(t *testing.T) {
	got, err := DefaultTable.FlatRate("AUTO", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "84000", got.String())

	_, err = DefaultTable.FlatRate("TRACTOR", 1, 0)
	assert.Error(t, err)
}

func TestShiftRate(t *testing.T) {
	day, night := decimal.NewFromInt(100), decimal.NewFromInt(150)

	assert.Equal(t, day, DefaultShift.Rate(time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC), day, night))
	assert.Equal(t, day, DefaultShift.Rate(time.Date(2026, 1, 1, 21, 59, 0, 0, time.UTC), day, night))
	assert.Equal(t, night, DefaultShift.Rate(time.Date(2026, 1, 1, 22, 0, 0, 0, time.UTC), day, night))
	assert.Equal(t, night, DefaultShift.Rate(time.Date(2026, 1, 1, 5, 59, 0, 0, time.UTC), day, night))
}
