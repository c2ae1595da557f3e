package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/events"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
	"github.com/spec-kit/helpdesk-bot/internal/timeutil"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util"
)

func testClock(t *testing.T) *timeutil.Normalizer {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	// Fixed now: 2024-03-15 15:00:00 Moscow.
	now := func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return timeutil.NewWithClock(loc, now, nil)
}

func newTicketService(t *testing.T, tickets *ticketRepoMock, users *userRepoMock, dispatcher events.Dispatcher) *TicketService {
	t.Helper()
	return NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Clock:      testClock(t),
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
	})
}

func TestCreateSnapshotsProfile(t *testing.T) {
	tickets := &ticketRepoMock{}
	users := &userRepoMock{}
	svc := newTicketService(t, tickets, users, nil)
	ctx := context.Background()

	users.On("GetByID", ctx, int64(42)).Return(&domain.User{
		TelegramID:   42,
		Organization: "Acme",
		Address:      "ул. Ленина, 1",
		Phone:        "+79100000000",
	}, nil)
	tickets.On("Create", ctx, mock.AnythingOfType("*domain.Ticket")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Ticket).ID = 5
	}).Return(nil)
	users.On("UpdateLastTicket", ctx, int64(42), "5", "2024-03-15 15:00:00", "ivan").Return(nil)

	ticket, err := svc.Create(ctx, 42, "ivan", "printer broken", time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, int64(5), ticket.ID)
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.Equal(t, "printer broken", ticket.Message)
	require.Equal(t, "Acme", ticket.Organization)
	require.Equal(t, "ул. Ленина, 1", ticket.Address)
	require.Equal(t, "2024-03-15 15:00:00", ticket.CreatedAt)
	require.Empty(t, ticket.Comment)

	users.AssertExpectations(t)
	tickets.AssertExpectations(t)
}

func TestCreateUnknownSubmitter(t *testing.T) {
	tickets := &ticketRepoMock{}
	users := &userRepoMock{}
	svc := newTicketService(t, tickets, users, nil)
	ctx := context.Background()

	users.On("GetByID", ctx, int64(99)).Return(nil, pgx.ErrNoRows)

	_, err := svc.Create(ctx, 99, "ghost", "help", time.Time{})
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateIDMatchesLastInserted(t *testing.T) {
	tickets := &ticketRepoMock{}
	users := &userRepoMock{}
	svc := newTicketService(t, tickets, users, nil)
	ctx := context.Background()

	users.On("GetByID", ctx, int64(42)).Return(&domain.User{TelegramID: 42, Organization: domain.NoData, Address: domain.NoData}, nil)
	tickets.On("Create", ctx, mock.AnythingOfType("*domain.Ticket")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Ticket).ID = 7
	}).Return(nil)
	users.On("UpdateLastTicket", ctx, int64(42), "7", mock.Anything, mock.Anything).Return(nil)
	tickets.On("LastInsertedID", ctx).Return(int64(7), nil)

	ticket, err := svc.Create(ctx, 42, "ivan", "help", time.Time{})
	require.NoError(t, err)

	last, err := svc.LastInsertedID(ctx)
	require.NoError(t, err)
	require.Equal(t, ticket.ID, last)
}

func TestRecordCommentOverwrites(t *testing.T) {
	tickets := &ticketRepoMock{}
	users := &userRepoMock{}
	svc := newTicketService(t, tickets, users, nil)
	ctx := context.Background()

	tickets.On("UpdateComment", ctx, int64(5), "first draft").Return(nil).Once()
	tickets.On("UpdateComment", ctx, int64(5), "fixed cable").Return(nil).Once()

	require.NoError(t, svc.RecordComment(ctx, 5, "first draft"))
	require.NoError(t, svc.RecordComment(ctx, 5, "  fixed cable  "))
	tickets.AssertExpectations(t)
}

func TestRecordCommentUnknownTicket(t *testing.T) {
	tickets := &ticketRepoMock{}
	users := &userRepoMock{}
	svc := newTicketService(t, tickets, users, nil)
	ctx := context.Background()

	tickets.On("UpdateComment", ctx, int64(404), "text").Return(pgx.ErrNoRows)

	err := svc.RecordComment(ctx, 404, "text")
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCloseComputesElapsedHours(t *testing.T) {
	tickets := &ticketRepoMock{}
	users := &userRepoMock{}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc := newTicketService(t, tickets, users, dispatcher)
	ctx := context.Background()

	var closed *events.TicketClosedPayload
	dispatcher.Subscribe(events.EventTicketClosed, func(_ context.Context, event events.Event) error {
		payload := event.Payload.(events.TicketClosedPayload)
		closed = &payload
		return nil
	})

	// The snapshot carries no comment; the close gate reads the current
	// comment column instead.
	tickets.On("GetByID", ctx, int64(5)).Return(&domain.Ticket{
		ID:          5,
		SubmitterID: 42,
		CreatedAt:   "2024-03-15 11:01:00",
		Status:      domain.TicketStatusOpen,
	}, nil)
	tickets.On("GetComment", ctx, int64(5)).Return("fixed cable", nil)
	tickets.On("UpdateStatus", ctx, int64(5), domain.TicketStatusClosed).Return(nil)

	ticket, hours, err := svc.Close(ctx, 5, 100)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusClosed, ticket.Status)
	require.Equal(t, "fixed cable", ticket.Comment)
	// now is 15:00 local; 3h59m elapsed floors to 3.
	require.Equal(t, 3, hours)

	require.NotNil(t, closed)
	require.Equal(t, int64(5), closed.TicketID)
	require.Equal(t, int64(42), closed.SubmitterID)
	require.Equal(t, int64(100), closed.ClosedBy)
	require.Equal(t, 3, closed.ElapsedHours)
}

func TestCloseRequiresComment(t *testing.T) {
	tickets := &ticketRepoMock{}
	users := &userRepoMock{}
	svc := newTicketService(t, tickets, users, nil)
	ctx := context.Background()

	tickets.On("GetByID", ctx, int64(5)).Return(&domain.Ticket{
		ID:     5,
		Status: domain.TicketStatusOpen,
	}, nil)
	tickets.On("GetComment", ctx, int64(5)).Return("  ", nil)

	_, _, err := svc.Close(ctx, 5, 100)
	require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	tickets.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCloseAlreadyClosedDoesNotMutate(t *testing.T) {
	tickets := &ticketRepoMock{}
	users := &userRepoMock{}
	svc := newTicketService(t, tickets, users, nil)
	ctx := context.Background()

	tickets.On("GetByID", ctx, int64(5)).Return(&domain.Ticket{
		ID:      5,
		Status:  domain.TicketStatusClosed,
		Comment: "done",
	}, nil)

	_, _, err := svc.Close(ctx, 5, 100)
	require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	tickets.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatusCountsSumToAllCreated(t *testing.T) {
	repo := &memoryTicketRepo{}
	users := &memoryUserRepo{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		UserRepo:   users,
		Clock:      testClock(t),
		Metrics:    observability.NewMetrics(),
	})
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, domain.NewUser(42, "2024-03-15 15:00:00")))
	require.NoError(t, users.Create(ctx, domain.NewUser(77, "2024-03-15 15:00:00")))

	submitters := []int64{42, 42, 77, 42, 77, 77}
	for i, id := range submitters {
		_, err := svc.Create(ctx, id, "user", "problem", time.Time{})
		require.NoError(t, err, "ticket %d", i+1)
	}

	// Close a couple across both submitters.
	for _, id := range []int64{2, 5} {
		require.NoError(t, svc.RecordComment(ctx, id, "done"))
		_, _, err := svc.Close(ctx, id, 100)
		require.NoError(t, err)
	}

	open, err := svc.CountByStatus(ctx, nil, domain.TicketStatusOpen)
	require.NoError(t, err)
	closed, err := svc.CountByStatus(ctx, nil, domain.TicketStatusClosed)
	require.NoError(t, err)
	require.Equal(t, len(submitters), open+closed)
	require.Equal(t, 2, closed)

	// Per-submitter counts partition the aggregate.
	var perUser int
	for _, id := range []int64{42, 77} {
		o, err := svc.CountByStatus(ctx, &id, domain.TicketStatusOpen)
		require.NoError(t, err)
		c, err := svc.CountByStatus(ctx, &id, domain.TicketStatusClosed)
		require.NoError(t, err)
		perUser += o + c
	}
	require.Equal(t, open+closed, perUser)
}

func TestCountByStatusAggregatesAllUsers(t *testing.T) {
	tickets := &ticketRepoMock{}
	users := &userRepoMock{}
	svc := newTicketService(t, tickets, users, nil)
	ctx := context.Background()

	tickets.On("CountByStatus", ctx, domain.TicketStatusOpen, (*int64)(nil)).Return(3, nil)

	count, err := svc.CountByStatus(ctx, nil, domain.TicketStatusOpen)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
