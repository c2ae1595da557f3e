package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/conversation"
	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
	"github.com/spec-kit/helpdesk-bot/internal/repository"
	"github.com/spec-kit/helpdesk-bot/internal/service"
)

// commentTicketRepo holds one ticket, enough to drive the comment flow.
type commentTicketRepo struct {
	ticket domain.Ticket
}

var _ repository.TicketRepository = (*commentTicketRepo)(nil)

func (r *commentTicketRepo) Create(_ context.Context, _ *domain.Ticket) error { return nil }

func (r *commentTicketRepo) LastInsertedID(_ context.Context) (int64, error) {
	return r.ticket.ID, nil
}

func (r *commentTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	if id != r.ticket.ID {
		return nil, pgx.ErrNoRows
	}
	copied := r.ticket
	return &copied, nil
}

func (r *commentTicketRepo) CountByStatus(_ context.Context, _ domain.TicketStatus, _ *int64) (int, error) {
	return 0, nil
}

func (r *commentTicketRepo) ListByStatus(_ context.Context, _ domain.TicketStatus, _ *int64) ([]domain.Ticket, error) {
	return nil, nil
}

func (r *commentTicketRepo) UpdateStatus(_ context.Context, id int64, status domain.TicketStatus) error {
	if id != r.ticket.ID {
		return pgx.ErrNoRows
	}
	r.ticket.Status = status
	return nil
}

func (r *commentTicketRepo) UpdateComment(_ context.Context, id int64, comment string) error {
	if id != r.ticket.ID {
		return pgx.ErrNoRows
	}
	r.ticket.Comment = comment
	return nil
}

func (r *commentTicketRepo) GetComment(_ context.Context, id int64) (string, error) {
	if id != r.ticket.ID {
		return "", pgx.ErrNoRows
	}
	return r.ticket.Comment, nil
}

type capturingSender struct {
	texts []string
}

var _ service.Sender = (*capturingSender)(nil)

func (s *capturingSender) Send(_ context.Context, _ int64, text string, _ service.Keyboard) error {
	s.texts = append(s.texts, text)
	return nil
}

func textMessage(participantID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: participantID},
		Text: text,
	}
}

func TestCommentModeSurvivesSubmission(t *testing.T) {
	ctx := context.Background()
	repo := &commentTicketRepo{ticket: domain.Ticket{ID: 7, Status: domain.TicketStatusOpen}}
	store := conversation.NewMemoryStore()
	sender := &capturingSender{}

	handler := NewHandler(Dependencies{
		Sender: sender,
		Tickets: service.NewTicketService(service.TicketDependencies{
			TicketRepo: repo,
		}),
		Conv:    store,
		Logger:  zap.NewNop(),
		Metrics: observability.NewMetrics(),
	})

	require.NoError(t, store.Set(ctx, 100, conversation.State{
		Mode:     conversation.ModeTicketComment,
		TicketID: 7,
	}))

	handler.handleText(ctx, textMessage(100, "first draft"))
	handler.handleText(ctx, textMessage(100, "replaced cartridge"))

	// The second submission overwrote the first.
	assert.Equal(t, "replaced cartridge", repo.ticket.Comment)
	require.Len(t, sender.texts, 2)
	assert.Contains(t, sender.texts[1], "replaced cartridge")

	// The mode stays armed for the same ticket after each submission.
	state, err := store.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, conversation.ModeTicketComment, state.Mode)
	assert.Equal(t, int64(7), state.TicketID)
}

func TestFreeTextWithoutModeGetsMenuHint(t *testing.T) {
	ctx := context.Background()
	store := conversation.NewMemoryStore()
	sender := &capturingSender{}

	handler := NewHandler(Dependencies{
		Sender:  sender,
		Conv:    store,
		Logger:  zap.NewNop(),
		Metrics: observability.NewMetrics(),
	})

	// No mode armed: free text only earns the menu hint.
	handler.handleText(ctx, textMessage(100, "hello?"))
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "воспользуйтесь меню")

	state, err := store.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, conversation.ModeNone, state.Mode)
}
