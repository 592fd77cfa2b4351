package email

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"digital-storefront/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*NoopMailer)(nil)

// NoopMailer renders messages and logs them instead of delivering. Used when SMTP is not configured.
type NoopMailer struct {
	mu        sync.Mutex
	storeName string
	logger    *zerolog.Logger
	Subjects  []string
}

func NewNoopMailer(storeName string, logger *zerolog.Logger) *NoopMailer {
	return &NoopMailer{storeName: storeName, logger: logger}
}

func (m *NoopMailer) SendPurchaseEmail(ctx context.Context, msg adapter.PurchaseEmail) error {
	subject, _, _, err := renderPurchase(m.storeName, msg)
	if err != nil {
		return err
	}
	m.record(subject)
	return nil
}

func (m *NoopMailer) SendInvoiceEmail(ctx context.Context, msg adapter.InvoiceEmail) error {
	subject, _, _, err := renderInvoice(m.storeName, msg)
	if err != nil {
		return err
	}
	m.record(subject)
	return nil
}

func (m *NoopMailer) record(subject string) {
	m.mu.Lock()
	m.Subjects = append(m.Subjects, subject)
	m.mu.Unlock()
	m.logger.Info().Str("subject", subject).Msg("[noop-mailer] email suppressed")
}
