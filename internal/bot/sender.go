package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/spec-kit/helpdesk-bot/internal/service"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util"
)

// Sender delivers messages through the Telegram API. It implements
// service.Sender, translating the core's (label, token) keyboard grid into
// inline keyboards.
type Sender struct {
	api *tgbotapi.BotAPI
}

// NewSender wraps the Telegram API client.
func NewSender(api *tgbotapi.BotAPI) *Sender {
	return &Sender{api: api}
}

// Send delivers an HTML-formatted message to one participant.
func (s *Sender) Send(_ context.Context, participantID int64, text string, keyboard service.Keyboard) error {
	msg := tgbotapi.NewMessage(participantID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup, ok := toMarkup(keyboard); ok {
		msg.ReplyMarkup = markup
	}
	if _, err := s.api.Send(msg); err != nil {
		return apperrors.NewTransportFailure(err)
	}
	return nil
}

// toMarkup converts the core's keyboard grid to a Telegram inline keyboard.
func toMarkup(keyboard service.Keyboard) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(keyboard) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Token))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}
