package worker

// interest_cron.go
// Background goroutine that runs the interest accrual on the configured days
// of the month at the configured hour. A Redis SETNX key per date makes sure
// only one replica runs it.

import (
	"context"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	interestTickInterval = time.Minute
	interestLockTTL      = 26 * time.Hour
	interestLockPrefix   = "interest:run:"
)

// InterestRunner is implemented by service.InterestService.
type InterestRunner interface {
	Run(ctx context.Context, day time.Time) (*dto.AccrualSummary, error)
}

// Locker grants a key to a single holder until ttl expires.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisLocker implements Locker with SETNX.
type RedisLocker struct{ rdb *redis.Client }

func NewRedisLocker(rdb *redis.Client) *RedisLocker { return &RedisLocker{rdb: rdb} }

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

// InterestCronConfig holds all dependencies for the interest goroutine.
type InterestCronConfig struct {
	Runner InterestRunner
	Locker Locker
	Clock  service.Clock
	Days   []int // days of the month, 1..31
	Hour   int   // local hour at which the run starts
}

// InterestCron decides when the accrual is due and runs it.
type InterestCron struct {
	cfg     InterestCronConfig
	lastDay time.Time
}

func NewInterestCron(cfg InterestCronConfig) *InterestCron {
	return &InterestCron{cfg: cfg}
}

// Run ticks every minute until ctx is cancelled.
func (c *InterestCron) Run(ctx context.Context) error {
	ticker := time.NewTicker(interestTickInterval)
	defer ticker.Stop()

	log.Info().Ints("days", c.cfg.Days).Int("hour", c.cfg.Hour).Msg("interest_cron: started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("interest_cron: shutting down")
			return nil
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// Tick evaluates the schedule once. A business day is settled on the first
// tick at or after the configured hour, unless the lock cannot be queried,
// in which case the next tick tries again.
func (c *InterestCron) Tick(ctx context.Context) {
	now := c.cfg.Clock.Local()
	today := service.DayOf(now)
	if now.Hour() < c.cfg.Hour || today.Equal(c.lastDay) {
		return
	}

	due, skipped := DueOn(now, c.cfg.Days)
	if due && !c.runOnce(ctx, today) {
		return
	}
	c.lastDay = today
	for _, d := range skipped {
		log.Warn().Int("day", d).Str("month", now.Month().String()).Msg("interest_cron: configured day does not exist this month, skipped")
	}
}

// runOnce reports false when the lock state is unknown.
func (c *InterestCron) runOnce(ctx context.Context, day time.Time) bool {
	key := interestLockPrefix + day.Format(dto.DateLayout)
	ok, err := c.cfg.Locker.TryLock(ctx, key, interestLockTTL)
	if err != nil {
		log.Error().Err(err).Msg("interest_cron: lock unavailable, will retry")
		return false
	}
	if !ok {
		log.Info().Str("date", day.Format(dto.DateLayout)).Msg("interest_cron: already run by another instance")
		return true
	}

	summary, err := c.cfg.Runner.Run(ctx, day)
	if err != nil {
		log.Error().Stack().Err(err).Msg("interest_cron: run aborted")
		return true
	}
	log.Info().
		Int("applied", summary.Applied).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("interest_cron: run complete")
	return true
}

// DueOn reports whether now falls on one of days. On the last day of a month
// it also returns the configured days the month does not have, so the
// caller can report them.
func DueOn(now time.Time, days []int) (due bool, skipped []int) {
	y, m, d := now.Date()
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, now.Location()).Day()
	for _, day := range days {
		if day == d {
			due = true
		}
		if day > last && d == last {
			skipped = append(skipped, day)
		}
	}
	return due, skipped
}
