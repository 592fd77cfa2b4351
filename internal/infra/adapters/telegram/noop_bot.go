package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"digital-storefront/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev testing.
// It logs messages instead of sending real Telegram messages.
type NoopBotAdapter struct {
	mu     sync.Mutex
	seq    int
	logger *zerolog.Logger
	Sent   []string
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	return &NoopBotAdapter{logger: logger}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	b.Sent = append(b.Sent, text)
	b.mu.Unlock()
	b.logger.Info().Int64("chat_id", chatID).Str("text", text).Msg("[noop-telegram] message")
	return nil
}

// CreateInviteLink returns a deterministic fake link.
func (b *NoopBotAdapter) CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	b.seq++
	n := b.seq
	b.mu.Unlock()
	return fmt.Sprintf("https://t.me/+noop%d_%d", chatID, n), nil
}
