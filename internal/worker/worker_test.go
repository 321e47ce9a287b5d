package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noBackoff(int) time.Duration { return 0 }

func TestWithRetry(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, noBackoff, func(attempt int) error {
		calls++
		if attempt < 2 {
			return errors.New("smtp timeout")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = withRetry(context.Background(), 3, noBackoff, func(int) error {
		calls++
		return errors.New("still down")
	})
	assert.EqualError(t, err, "still down")
	assert.Equal(t, 3, calls)
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, 5, func(int) time.Duration { return time.Hour }, func(int) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

// ── Email worker ─────────────────────────────────────────────────────────────

type stubRenderer struct {
	err error
}

func (r stubRenderer) PDF(_ context.Context, id uuid.UUID) ([]byte, string, error) {
	if r.err != nil {
		return nil, "", r.err
	}
	return []byte("%PDF-1.3 test"), "recibo_7.pdf", nil
}

type stubMailer struct {
	err  error
	sent []string
	path string
}

func (m *stubMailer) SendReceipt(to, _, _, pdfPath string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	m.path = pdfPath
	return nil
}

func emailPayload(t *testing.T, receiptID, to string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(service.ReceiptEmailJob{ReceiptID: receiptID, ToEmail: to})
	require.NoError(t, err)
	return raw
}

func TestEmailWorker_SendsArchivedPDF(t *testing.T) {
	dir := t.TempDir()
	mailer := &stubMailer{}
	w := NewEmailWorker(stubRenderer{}, mailer, dir)

	err := w.Process(context.Background(), emailPayload(t, uuid.NewString(), "cliente@example.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"cliente@example.com"}, mailer.sent)
	assert.Equal(t, filepath.Join(dir, "recibo_7.pdf"), mailer.path)

	data, err := os.ReadFile(mailer.path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 test", string(data))
}

func TestEmailWorker_PermanentFailuresAreNotRetried(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		renderer stubRenderer
		mailer   *stubMailer
		payload  json.RawMessage
	}{
		{"malformed payload", stubRenderer{}, &stubMailer{}, json.RawMessage(`{"receipt_id":`)},
		{"empty address", stubRenderer{}, &stubMailer{}, emailPayload(t, uuid.NewString(), "")},
		{"bad receipt id", stubRenderer{}, &stubMailer{}, emailPayload(t, "nope", "a@b.com")},
		{"receipt gone", stubRenderer{err: service.ErrNotFound}, &stubMailer{}, emailPayload(t, uuid.NewString(), "a@b.com")},
		{"smtp disabled", stubRenderer{}, &stubMailer{err: infra.ErrMailerDisabled}, emailPayload(t, uuid.NewString(), "a@b.com")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := NewEmailWorker(tc.renderer, tc.mailer, dir)
			assert.NoError(t, w.Process(context.Background(), tc.payload))
			assert.Empty(t, tc.mailer.sent)
		})
	}
}

func TestEmailWorker_DeliveryErrorIsRetried(t *testing.T) {
	w := NewEmailWorker(stubRenderer{}, &stubMailer{err: errors.New("421 try later")}, t.TempDir())
	err := w.Process(context.Background(), emailPayload(t, uuid.NewString(), "a@b.com"))
	assert.Error(t, err)

	w = NewEmailWorker(stubRenderer{err: errors.New("db down")}, &stubMailer{}, t.TempDir())
	err = w.Process(context.Background(), emailPayload(t, uuid.NewString(), "a@b.com"))
	assert.Error(t, err)
}

// ── Interest schedule ────────────────────────────────────────────────────────

var art = time.FixedZone("ART", -3*3600)

func TestDueOn(t *testing.T) {
	days := []int{10, 20, 30}

	due, skipped := DueOn(time.Date(2026, 10, 20, 9, 0, 0, 0, art), days)
	assert.True(t, due)
	assert.Empty(t, skipped)

	due, skipped = DueOn(time.Date(2026, 10, 21, 9, 0, 0, 0, art), days)
	assert.False(t, due)
	assert.Empty(t, skipped)

	due, skipped = DueOn(time.Date(2026, 2, 28, 9, 0, 0, 0, art), days)
	assert.False(t, due)
	assert.Equal(t, []int{30}, skipped)

	// Earlier February days do not report the missing ones yet.
	_, skipped = DueOn(time.Date(2026, 2, 27, 9, 0, 0, 0, art), days)
	assert.Empty(t, skipped)

	_, skipped = DueOn(time.Date(2028, 2, 29, 9, 0, 0, 0, art), []int{29, 30, 31})
	assert.Equal(t, []int{30, 31}, skipped)
}

type stubLocker struct {
	held map[string]bool
	err  error
}

func (l *stubLocker) TryLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

type stubRunner struct {
	days []time.Time
}

func (r *stubRunner) Run(_ context.Context, day time.Time) (*dto.AccrualSummary, error) {
	r.days = append(r.days, day)
	return &dto.AccrualSummary{Date: day.Format(dto.DateLayout)}, nil
}

func TestInterestCron_Tick(t *testing.T) {
	now := time.Date(2026, 10, 20, 7, 59, 0, 0, art)
	clock := service.Clock{Now: func() time.Time { return now }, Loc: art}
	locker := &stubLocker{held: map[string]bool{}}
	runner := &stubRunner{}
	cron := NewInterestCron(InterestCronConfig{
		Runner: runner, Locker: locker, Clock: clock,
		Days: []int{10, 20, 30}, Hour: 8,
	})
	ctx := context.Background()

	cron.Tick(ctx)
	assert.Empty(t, runner.days, "before the configured hour")

	now = now.Add(time.Minute)
	cron.Tick(ctx)
	cron.Tick(ctx)
	require.Len(t, runner.days, 1, "once per day")
	assert.Equal(t, "2026-10-20", runner.days[0].Format(dto.DateLayout))
	assert.True(t, locker.held["interest:run:2026-10-20"])

	now = time.Date(2026, 10, 21, 8, 0, 0, 0, art)
	cron.Tick(ctx)
	assert.Len(t, runner.days, 1, "not a configured day")
}

func TestInterestCron_LockHeldElsewhere(t *testing.T) {
	now := time.Date(2026, 10, 10, 9, 0, 0, 0, art)
	clock := service.Clock{Now: func() time.Time { return now }, Loc: art}
	runner := &stubRunner{}

	held := &stubLocker{held: map[string]bool{"interest:run:2026-10-10": true}}
	NewInterestCron(InterestCronConfig{Runner: runner, Locker: held, Clock: clock, Days: []int{10}, Hour: 8}).Tick(context.Background())
	assert.Empty(t, runner.days)

	broken := &stubLocker{err: errors.New("redis down")}
	NewInterestCron(InterestCronConfig{Runner: runner, Locker: broken, Clock: clock, Days: []int{10}, Hour: 8}).Tick(context.Background())
	assert.Empty(t, runner.days)
}

func TestInterestCron_RetriesAfterLockError(t *testing.T) {
	now := time.Date(2026, 10, 10, 8, 0, 0, 0, art)
	clock := service.Clock{Now: func() time.Time { return now }, Loc: art}
	runner := &stubRunner{}
	locker := &stubLocker{held: map[string]bool{}, err: errors.New("redis down")}
	cron := NewInterestCron(InterestCronConfig{Runner: runner, Locker: locker, Clock: clock, Days: []int{10}, Hour: 8})

	cron.Tick(context.Background())
	assert.Empty(t, runner.days)

	// Redis is back a minute later, same day.
	locker.err = nil
	now = now.Add(time.Minute)
	cron.Tick(context.Background())
	require.Len(t, runner.days, 1)
	assert.Equal(t, "2026-10-10", runner.days[0].Format(dto.DateLayout))

	now = now.Add(time.Minute)
	cron.Tick(context.Background())
	assert.Len(t, runner.days, 1, "settled day is not retried")
}
