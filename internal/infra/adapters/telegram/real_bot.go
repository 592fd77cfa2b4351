package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"digital-storefront/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter mints invite links and sends operator alerts. The bot
// must be an admin of every chat it issues invites for.
type RealTelegramBotAdapter struct {
	bot       *tgbotapi.BotAPI
	inviteTTL time.Duration
	logger    *zerolog.Logger
}

func NewRealTelegramBotAdapter(token string, inviteTTL time.Duration, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	if inviteTTL <= 0 {
		inviteTTL = 7 * 24 * time.Hour
	}
	l := logger.With().Str("component", "telegram").Str("bot", bot.Self.UserName).Logger()
	return &RealTelegramBotAdapter{bot: bot, inviteTTL: inviteTTL, logger: &l}, nil
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := r.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// CreateInviteLink returns a link that admits exactly one member and expires after inviteTTL.
func (r *RealTelegramBotAdapter) CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(name) > 32 {
		name = name[:32]
	}
	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: chatID},
		Name:        name,
		ExpireDate:  int(time.Now().Add(r.inviteTTL).Unix()),
		MemberLimit: 1,
	}
	resp, err := r.bot.Request(cfg)
	if err != nil {
		return "", fmt.Errorf("telegram invite: %w", err)
	}
	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("telegram invite decode: %w", err)
	}
	if link.InviteLink == "" {
		return "", errors.New("telegram invite: empty link")
	}
	r.logger.Debug().Int64("chat_id", chatID).Msg("invite link created")
	return link.InviteLink, nil
}
