package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"digital-storefront/internal/config"
	"digital-storefront/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*SMTPMailer)(nil)

type SMTPMailer struct {
	client    *mail.Client
	from      string
	storeName string
	logger    *zerolog.Logger
}

func NewSMTPMailer(cfg config.EmailConfig, logger *zerolog.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	l := logger.With().Str("component", "smtp_mailer").Logger()
	return &SMTPMailer{client: client, from: cfg.From, storeName: cfg.StoreName, logger: &l}, nil
}

func (m *SMTPMailer) SendPurchaseEmail(ctx context.Context, msg adapter.PurchaseEmail) error {
	subject, text, html, err := renderPurchase(m.storeName, msg)
	if err != nil {
		return fmt.Errorf("render purchase email: %w", err)
	}
	return m.send(ctx, msg.To, subject, text, html)
}

func (m *SMTPMailer) SendInvoiceEmail(ctx context.Context, msg adapter.InvoiceEmail) error {
	subject, text, html, err := renderInvoice(m.storeName, msg)
	if err != nil {
		return fmt.Errorf("render invoice email: %w", err)
	}
	return m.send(ctx, msg.To, subject, text, html)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, text, html string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.storeName, m.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.logger.Debug().Str("subject", subject).Msg("email sent")
	return nil
}
