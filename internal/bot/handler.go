package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/auth"
	"github.com/spec-kit/helpdesk-bot/internal/conversation"
	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
	"github.com/spec-kit/helpdesk-bot/internal/service"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util"
)

// Handler routes inbound Telegram updates: commands open menus, callback
// tokens drive the menu state machine, free text feeds whichever collecting
// mode is active for the sender.
type Handler struct {
	api      *tgbotapi.BotAPI
	sender   service.Sender
	tickets  *service.TicketService
	profiles *service.ProfileService
	conv     conversation.Store
	allow    *auth.AllowList
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// Dependencies bundles collaborators for the handler.
type Dependencies struct {
	API      *tgbotapi.BotAPI
	Sender   service.Sender
	Tickets  *service.TicketService
	Profiles *service.ProfileService
	Conv     conversation.Store
	Allow    *auth.AllowList
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// NewHandler constructs the update handler.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		api:      deps.API,
		sender:   deps.Sender,
		tickets:  deps.Tickets,
		profiles: deps.Profiles,
		conv:     deps.Conv,
		allow:    deps.Allow,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
}

// Run polls Telegram for updates until the context is cancelled. Each update
// is handled on its own goroutine; participants' states are disjoint, and
// same-participant races resolve last-write-wins.
func (h *Handler) Run(ctx context.Context, pollTimeoutSeconds int) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := h.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			h.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go h.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes one inbound update. Every failure resolves into a
// participant-visible reply or a log line; nothing aborts the poll loop.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	h.metrics.RecordUpdate()

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic while handling update", zap.Any("panic", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		h.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		h.handleText(ctx, update.Message)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	participantID := msg.From.ID

	if msg.Command() != "start" {
		text, keyboard := renderUseMenuHint()
		h.send(ctx, participantID, text, keyboard)
		return
	}

	user, created, err := h.profiles.EnsureUser(ctx, participantID, msg.Time())
	if err != nil {
		h.reportError(ctx, participantID, err)
		return
	}
	if err := h.conv.Clear(ctx, participantID); err != nil {
		h.logger.Warn("clear conversation failed", zap.Int64("participant_id", participantID), zap.Error(err))
	}

	if created {
		text, keyboard := renderWelcome()
		h.send(ctx, participantID, text, keyboard)
		return
	}

	text, keyboard, err := h.mainMenuView(ctx, user)
	if err != nil {
		h.reportError(ctx, participantID, err)
		return
	}
	h.send(ctx, participantID, text, keyboard)
}

func (h *Handler) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	participantID := query.From.ID
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		h.logger.Debug("callback ack failed", zap.Error(err))
	}

	act := parseAction(query.Data)

	switch act.Kind {
	case actionMainMenu:
		h.resetMode(ctx, participantID)
		user, err := h.profiles.Get(ctx, participantID)
		if err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		text, keyboard, err := h.mainMenuView(ctx, user)
		if err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		h.edit(query, text, keyboard)

	case actionMyCompany:
		h.resetMode(ctx, participantID)
		user, err := h.profiles.Get(ctx, participantID)
		if err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		text, keyboard := renderMyCompany(user)
		h.edit(query, text, keyboard)

	case actionEditField:
		h.setMode(ctx, participantID, conversation.State{Mode: modeForField(act.Field)})
		text, keyboard := renderEditPrompt(act.Field)
		h.edit(query, text, keyboard)

	case actionNewTicket:
		h.setMode(ctx, participantID, conversation.State{Mode: conversation.ModeTicketMessage})
		text, keyboard := renderNewTicketPrompt()
		h.edit(query, text, keyboard)

	case actionMyTickets:
		h.resetMode(ctx, participantID)
		user, err := h.profiles.Get(ctx, participantID)
		if err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		open, err := h.tickets.ListOpen(ctx, &participantID)
		if err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		text, keyboard := renderMyTickets(user, open)
		h.edit(query, text, keyboard)

	case actionHistory:
		h.resetMode(ctx, participantID)
		h.showHistory(ctx, query, participantID, 1)

	case actionHistoryPage:
		h.showHistory(ctx, query, participantID, act.Page)

	case actionAdminPanel:
		if !h.allow.IsAdmin(participantID) {
			h.hintUseMenu(ctx, participantID)
			return
		}
		h.resetMode(ctx, participantID)
		text, keyboard, err := h.adminPanelView(ctx)
		if err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		h.edit(query, text, keyboard)

	case actionTicketDetails:
		if !h.allow.IsAdmin(participantID) {
			h.hintUseMenu(ctx, participantID)
			return
		}
		ticket, err := h.tickets.Get(ctx, act.TicketID)
		if err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		h.setMode(ctx, participantID, conversation.State{
			Mode:     conversation.ModeTicketComment,
			TicketID: ticket.ID,
		})
		text, keyboard := renderTicketDetails(ticket)
		h.edit(query, text, keyboard)

	case actionComplete:
		if !h.allow.IsAdmin(participantID) {
			h.hintUseMenu(ctx, participantID)
			return
		}
		// Closure notices to submitter and admin go through the
		// notification service.
		if _, _, err := h.tickets.Close(ctx, act.TicketID, participantID); err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		h.resetMode(ctx, participantID)

	default:
		h.hintUseMenu(ctx, participantID)
	}
}

func (h *Handler) handleText(ctx context.Context, msg *tgbotapi.Message) {
	participantID := msg.From.ID

	state, err := h.conv.Get(ctx, participantID)
	if err != nil {
		h.logger.Warn("conversation lookup failed", zap.Int64("participant_id", participantID), zap.Error(err))
		state = conversation.State{}
	}

	if field, ok := fieldForMode(state.Mode); ok {
		user, err := h.profiles.SetField(ctx, participantID, field, msg.Text)
		if err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		h.resetMode(ctx, participantID)
		text, keyboard := renderMyCompany(user)
		h.send(ctx, participantID, text, keyboard)
		return
	}

	switch state.Mode {
	case conversation.ModeTicketMessage:
		ticket, err := h.tickets.Create(ctx, participantID, msg.From.UserName, msg.Text, msg.Time())
		if err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		h.resetMode(ctx, participantID)
		text, keyboard := renderTicketDone(ticket.ID)
		h.send(ctx, participantID, text, keyboard)

	case conversation.ModeTicketComment:
		if state.TicketID == 0 {
			h.hintUseMenu(ctx, participantID)
			return
		}
		if err := h.tickets.RecordComment(ctx, state.TicketID, msg.Text); err != nil {
			h.reportError(ctx, participantID, err)
			return
		}
		// The mode stays active: the admin may resubmit a corrected
		// comment without re-selecting the ticket.
		text, keyboard := renderCommentSaved(state.TicketID, msg.Text)
		h.send(ctx, participantID, text, keyboard)

	default:
		h.hintUseMenu(ctx, participantID)
	}
}

func (h *Handler) showHistory(ctx context.Context, query *tgbotapi.CallbackQuery, participantID int64, page int) {
	closed, err := h.tickets.ListClosed(ctx, &participantID)
	if err != nil {
		h.reportError(ctx, participantID, err)
		return
	}
	view, err := service.PaginateHistory(closed, page)
	if err != nil {
		h.reportError(ctx, participantID, err)
		return
	}
	text, keyboard := renderHistory(view)
	h.edit(query, text, keyboard)
}

func (h *Handler) mainMenuView(ctx context.Context, user *domain.User) (string, service.Keyboard, error) {
	id := user.TelegramID
	openCount, err := h.tickets.CountByStatus(ctx, &id, domain.TicketStatusOpen)
	if err != nil {
		return "", nil, err
	}
	closedCount, err := h.tickets.CountByStatus(ctx, &id, domain.TicketStatusClosed)
	if err != nil {
		return "", nil, err
	}
	text, keyboard := renderMainMenu(user, openCount, closedCount, h.allow.IsAdmin(id))
	return text, keyboard, nil
}

func (h *Handler) adminPanelView(ctx context.Context) (string, service.Keyboard, error) {
	openCount, err := h.tickets.CountByStatus(ctx, nil, domain.TicketStatusOpen)
	if err != nil {
		return "", nil, err
	}
	closedCount, err := h.tickets.CountByStatus(ctx, nil, domain.TicketStatusClosed)
	if err != nil {
		return "", nil, err
	}
	open, err := h.tickets.ListOpen(ctx, nil)
	if err != nil {
		return "", nil, err
	}
	text, keyboard := renderAdminPanel(openCount, closedCount, open)
	return text, keyboard, nil
}

func (h *Handler) setMode(ctx context.Context, participantID int64, state conversation.State) {
	if err := h.conv.Set(ctx, participantID, state); err != nil {
		h.logger.Warn("set conversation mode failed", zap.Int64("participant_id", participantID), zap.Error(err))
	}
}

func (h *Handler) resetMode(ctx context.Context, participantID int64) {
	if err := h.conv.Clear(ctx, participantID); err != nil {
		h.logger.Warn("clear conversation mode failed", zap.Int64("participant_id", participantID), zap.Error(err))
	}
}

func (h *Handler) hintUseMenu(ctx context.Context, participantID int64) {
	h.metrics.RecordError(apperrors.CodeStateMismatch)
	text, keyboard := renderUseMenuHint()
	h.send(ctx, participantID, text, keyboard)
}

// reportError turns a failed operation into a participant-visible reply.
func (h *Handler) reportError(ctx context.Context, participantID int64, err error) {
	domainErr := apperrors.ToDomainError(err)
	h.metrics.RecordError(domainErr.Code)

	switch domainErr.Code {
	case apperrors.CodeNotFound, apperrors.CodeStateMismatch:
		text, keyboard := renderUseMenuHint()
		h.send(ctx, participantID, text, keyboard)
	case apperrors.CodeConflict:
		h.send(ctx, participantID, "⚠️ Задача уже завершена или к ней еще не добавлен комментарий.", nil)
	case apperrors.CodeMalformedInput:
		h.send(ctx, participantID, "⚠️ Не удалось сохранить значение, попробуйте еще раз.", nil)
	default:
		h.logger.Error("update handling failed", zap.Int64("participant_id", participantID), zap.Error(err))
		h.send(ctx, participantID, "⚠️ Произошла ошибка, попробуйте позже.", nil)
	}
}

func (h *Handler) send(ctx context.Context, participantID int64, text string, keyboard service.Keyboard) {
	if err := h.sender.Send(ctx, participantID, text, keyboard); err != nil {
		h.metrics.RecordTransportFailure()
		h.logger.Warn("send failed", zap.Int64("participant_id", participantID), zap.Error(err))
	}
}

func (h *Handler) edit(query *tgbotapi.CallbackQuery, text string, keyboard service.Keyboard) {
	if query.Message == nil {
		return
	}
	markup, ok := toMarkup(keyboard)
	var msg tgbotapi.Chattable
	if ok {
		edit := tgbotapi.NewEditMessageTextAndMarkup(query.Message.Chat.ID, query.Message.MessageID, text, markup)
		edit.ParseMode = tgbotapi.ModeHTML
		msg = edit
	} else {
		edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		msg = edit
	}
	if _, err := h.api.Send(msg); err != nil {
		h.metrics.RecordTransportFailure()
		h.logger.Warn("edit failed", zap.Int64("chat_id", query.Message.Chat.ID), zap.Error(err))
	}
}
