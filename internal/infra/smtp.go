package infra

import (
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailerDisabled is returned when SMTP_HOST is not configured.
var ErrMailerDisabled = errors.New("mailer: SMTP not configured")

// Mailer sends receipts over SMTP behind a circuit breaker so an unreachable
// relay fails fast instead of tying up workers.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	breaker  *RelayBreaker
	send     func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker: NewRelayBreaker(RelayBreakerConfig{
			Relay:        "smtp",
			TripAfter:    3,
			RecoverAfter: 1,
			CoolDown:     2 * time.Minute,
		}),
		send: func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// BreakerState is exposed on /health.
func (m *Mailer) BreakerState() RelayState { return m.breaker.State() }

// SendReceipt emails a receipt with the PDF at pdfPath attached.
func (m *Mailer) SendReceipt(to, subject, body, pdfPath string) error {
	if !m.Enabled() {
		return ErrMailerDisabled
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return m.breaker.Do(func() error {
		return m.send(e, m.addr, auth)
	})
}
