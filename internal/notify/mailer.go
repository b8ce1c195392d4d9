package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-abc/internal/config"
	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/wneessen/go-mail"
)

// Alert is a single low stock message
type Alert struct {
	Item      domain.CriticalItem
	Recipient string
}

// Subject returns the mail subject line for the alert.
func (a Alert) Subject() string {
	return fmt.Sprintf("Low Stock Alert: %s", a.Item.Name)
}

// Body returns the plain text mail body for the alert.
func (a Alert) Body() string {
	return fmt.Sprintf(`INVENTORY ALERT - Action Required!

Item: %s
Current Quantity: %g
Reorder Point: %g
Status: BELOW REORDER POINT

Please reorder immediately to avoid stockout.
`, a.Item.Name, a.Item.Quantity, a.Item.ReorderPoint)
}

// Mailer delivers one alert message.
type Mailer interface {
	Send(ctx context.Context, alert Alert) error
}

// SMTPMailer sends alerts through an authenticated SMTP account.
type SMTPMailer struct {
	cfg config.MailConfig
}

// NewMailer returns an SMTP mailer, or a mailer that rejects every message
// when mail is disabled.
func NewMailer(cfg config.MailConfig) Mailer {
	if !cfg.Enabled {
		return &noopMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, alert Alert) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := msg.To(alert.Recipient); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", alert.Recipient, err)
	}
	msg.Subject(alert.Subject())
	msg.SetBodyString(mail.TypeTextPlain, alert.Body())

	client, err := m.newClient()
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func (m *SMTPMailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.TimeoutSeconds > 0 {
		opts = append(opts, mail.WithTimeout(time.Duration(m.cfg.TimeoutSeconds)*time.Second))
	}
	// 465 is implicit TLS; anything else negotiates STARTTLS
	if m.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return client, nil
}

type noopMailer struct{}

func (n *noopMailer) Send(ctx context.Context, alert Alert) error {
	return domain.ErrMailDisabled
}
