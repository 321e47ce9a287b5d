package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RelayState tracks whether receipt mail is currently handed to the SMTP relay.
type RelayState int

const (
	RelayUp    RelayState = iota // mail goes out
	RelayDown                    // sends are refused until the cool-down ends
	RelayTrial                   // one send at a time tests the relay again
)

var relayStateNames = [...]string{RelayUp: "closed", RelayDown: "open", RelayTrial: "half-open"}

// String uses the usual breaker vocabulary, which is what /health reports.
func (s RelayState) String() string {
	if s < 0 || int(s) >= len(relayStateNames) {
		return "unknown"
	}
	return relayStateNames[s]
}

// ErrRelayDown is returned without dialing while the relay is considered down.
// Email jobs that hit it go back to the queue.
var ErrRelayDown = errors.New("smtp relay marked down, send refused")

type RelayBreakerConfig struct {
	Relay        string        // label used in logs and metrics
	TripAfter    int           // failed sends in a row before the relay is marked down
	RecoverAfter int           // good trial sends needed to mark it up again
	CoolDown     time.Duration // how long sends are refused once down
}

// RelayBreaker stops the email workers from dialing an SMTP relay that keeps
// failing. Receipts queued meanwhile are retried by the pool.
type RelayBreaker struct {
	mu       sync.Mutex
	cfg      RelayBreakerConfig
	state    RelayState
	misses   int
	trials   int
	downedAt time.Time
	now      func() time.Time
}

func NewRelayBreaker(cfg RelayBreakerConfig) *RelayBreaker {
	if cfg.Relay == "" {
		cfg.Relay = "smtp"
	}
	if cfg.TripAfter < 1 {
		cfg.TripAfter = 3
	}
	if cfg.RecoverAfter < 1 {
		cfg.RecoverAfter = 1
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 2 * time.Minute
	}
	b := &RelayBreaker{cfg: cfg, now: time.Now}
	SMTPRelayState.WithLabelValues(cfg.Relay).Set(float64(RelayUp))
	return b
}

func (b *RelayBreaker) State() RelayState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.coolDownElapsed()
	return b.state
}

// Do hands one send to the relay, or refuses it with ErrRelayDown.
func (b *RelayBreaker) Do(send func() error) error {
	b.mu.Lock()
	b.coolDownElapsed()
	refused := b.state == RelayDown
	b.mu.Unlock()
	if refused {
		return ErrRelayDown
	}

	err := send()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.recordMiss()
	} else {
		b.recordDelivery()
	}
	return err
}

// coolDownElapsed lets trial sends through once CoolDown has passed. Caller holds mu.
func (b *RelayBreaker) coolDownElapsed() {
	if b.state == RelayDown && b.now().Sub(b.downedAt) >= b.cfg.CoolDown {
		b.moveTo(RelayTrial)
	}
}

func (b *RelayBreaker) recordMiss() {
	b.misses++
	if b.state == RelayTrial || b.misses >= b.cfg.TripAfter {
		b.downedAt = b.now()
		b.moveTo(RelayDown)
	}
}

func (b *RelayBreaker) recordDelivery() {
	if b.state == RelayUp {
		b.misses = 0
		return
	}
	if b.state == RelayTrial {
		b.trials++
		if b.trials >= b.cfg.RecoverAfter {
			b.moveTo(RelayUp)
		}
	}
}

func (b *RelayBreaker) moveTo(next RelayState) {
	if b.state == next {
		return
	}
	log.Warn().
		Str("relay", b.cfg.Relay).
		Stringer("from", b.state).
		Stringer("to", next).
		Msg("smtp relay state change")
	b.state, b.misses, b.trials = next, 0, 0
	SMTPRelayState.WithLabelValues(b.cfg.Relay).Set(float64(next))
}
