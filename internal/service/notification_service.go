package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/events"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
)

// NotificationService delivers chat notices for domain events: the admin
// chat hears about new tickets, the submitter and the closing admin hear
// about closures. A failed delivery is logged and counted, never propagated.
type NotificationService struct {
	dispatcher  events.Dispatcher
	sender      Sender
	logger      *zap.Logger
	metrics     *observability.Metrics
	adminChatID int64
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender Sender, logger *zap.Logger, metrics *observability.Metrics, adminChatID int64) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		sender:      sender,
		logger:      logger,
		metrics:     metrics,
		adminChatID: adminChatID,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	if n.adminChatID == 0 {
		return nil
	}

	text := fmt.Sprintf(
		"📬❗️\nПользователь @%s создал новую заявку с номером <code>#%d</code>.\n\n"+
			"<b>Сообщение от пользователя:</b>\n - <em>%s</em>\n\n"+
			"<b>Телефон:</b> %s\n"+
			"<b>Компания:</b> %s\n"+
			"<b>Адрес:</b> %s\n",
		payload.SubmitterName, payload.TicketID, payload.Message,
		payload.Phone, payload.Organization, payload.Address,
	)
	keyboard := Keyboard{{{Label: "🤘 Тикет меню 🫰", Token: TokenAdminPanel}}}

	n.deliver(ctx, n.adminChatID, text, keyboard)
	return nil
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	text := fmt.Sprintf(
		"🎉 Задача <code>#%d</code> выполнена!\n"+
			"<b>Время выполнения:</b> %d часа(ов).\n\n"+
			"<b>Ответ исполнителя:</b> - <em>%s</em>\n\n"+
			"<em>⚠️ Пожалуйста, проверьте корректность исполнения задачи.</em>",
		payload.TicketID, payload.ElapsedHours, payload.Comment,
	)

	submitterKeyboard := Keyboard{{
		{Label: "☑️ История заявок", Token: TokenMyTicketHistory},
		{Label: "🧑‍💻 Главное меню", Token: TokenMainMenu},
	}}
	n.deliver(ctx, payload.SubmitterID, text, submitterKeyboard)

	if payload.ClosedBy != 0 && payload.ClosedBy != payload.SubmitterID {
		adminKeyboard := Keyboard{{{Label: "🤘 Тикет меню", Token: TokenAdminPanel}}}
		n.deliver(ctx, payload.ClosedBy, text, adminKeyboard)
	}
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, participantID int64, text string, keyboard Keyboard) {
	if err := n.sender.Send(ctx, participantID, text, keyboard); err != nil {
		n.metrics.RecordTransportFailure()
		n.logger.Warn("notification delivery failed",
			zap.Int64("participant_id", participantID),
			zap.Error(err))
	}
}
