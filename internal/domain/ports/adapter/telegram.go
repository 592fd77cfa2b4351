package adapter

import "context"

type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	// CreateInviteLink mints a single-use invite link to chatID.
	CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error)
}
