package digest

import (
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/config"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

// Mailer delivers the rendered digest over authenticated SMTP.
type Mailer struct {
	cfg    config.MailConfig
	send   func(m *gomail.Message) error
	sleep  func(time.Duration)
	logger *slog.Logger
	now    func() time.Time
}

// NewMailer creates a mailer backed by an SMTPS dialer.
func NewMailer(cfg config.MailConfig, logger *slog.Logger) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.Port == 465
	return &Mailer{
		cfg:    cfg,
		send:   func(m *gomail.Message) error { return dialer.DialAndSend(m) },
		sleep:  time.Sleep,
		logger: logger.With("component", "mailer"),
		now:    time.Now,
	}
}

// SendSingle delivers the digest to one recipient, retrying up to the
// configured attempt count with a fixed delay between failures.
func (m *Mailer) SendSingle(recipient, html string) error {
	msg := gomail.NewMessage()
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}
	msg.SetHeader("From", from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", Subject(m.now()))
	msg.SetBody("text/html", html)

	var lastErr error
	for attempt := 1; attempt <= m.cfg.RetryCount; attempt++ {
		if err := m.send(msg); err == nil {
			m.logger.Info("email sent", "recipient", recipient, "attempt", attempt)
			return nil
		} else {
			lastErr = err
			m.logger.Warn("send attempt failed", "recipient", recipient, "attempt", attempt, "error", err)
			if attempt < m.cfg.RetryCount {
				m.sleep(m.cfg.RetryDelay)
			}
		}
	}
	return &types.DeliveryError{Recipient: recipient, Attempts: m.cfg.RetryCount, Err: lastErr}
}

// Send delivers the digest to every recipient with a fixed delay between
// sends to avoid bursts. It returns the success count and the recipients
// that failed; partial delivery is tolerated by the caller.
func (m *Mailer) Send(recipients []string, html string) (int, []string) {
	var success int
	var failed []string
	for _, recipient := range recipients {
		m.sleep(m.cfg.SendDelay)
		if err := m.SendSingle(recipient, html); err != nil {
			m.logger.Error("delivery failed", "recipient", recipient, "error", err)
			failed = append(failed, recipient)
			continue
		}
		success++
	}
	m.logger.Info("delivery complete", "success", success, "failed", len(failed))
	return success, failed
}
