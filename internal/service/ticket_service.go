package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/events"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
	"github.com/spec-kit/helpdesk-bot/internal/repository"
	"github.com/spec-kit/helpdesk-bot/internal/timeutil"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util"
)

// TicketService is the ticket lifecycle engine: creation, counting, listing,
// comment recording and the single irreversible open → closed transition.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	clock      *timeutil.Normalizer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Clock      *timeutil.Normalizer
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// Create registers an open ticket for the submitter, snapshotting the
// organization and address from the current profile. Id assignment is atomic
// with the insert; the assigned id also becomes the submitter's most-recent
// ticket.
func (s *TicketService) Create(ctx context.Context, submitterID int64, submitterName, message string, at time.Time) (*domain.Ticket, error) {
	user, err := s.users.GetByID(ctx, submitterID)
	if err != nil {
		return nil, notFoundOr("user", err)
	}

	ticket := &domain.Ticket{
		SubmitterID:  submitterID,
		Organization: user.Organization,
		Address:      user.Address,
		Message:      strings.TrimSpace(message),
		CreatedAt:    s.clock.FromTime(at),
		Status:       domain.TicketStatusOpen,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.users.UpdateLastTicket(ctx, submitterID,
		strconv.FormatInt(ticket.ID, 10), ticket.CreatedAt, submitterName); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			TicketID:      ticket.ID,
			SubmitterID:   submitterID,
			SubmitterName: submitterName,
			Organization:  ticket.Organization,
			Address:       ticket.Address,
			Phone:         user.Phone,
			Message:       ticket.Message,
		},
	})
	return ticket, nil
}

// LastInsertedID exposes the store's highest assigned ticket id.
func (s *TicketService) LastInsertedID(ctx context.Context) (int64, error) {
	return s.tickets.LastInsertedID(ctx)
}

// CountByStatus counts tickets in the given status. A nil submitterID
// aggregates across all participants.
func (s *TicketService) CountByStatus(ctx context.Context, submitterID *int64, status domain.TicketStatus) (int, error) {
	return s.tickets.CountByStatus(ctx, status, submitterID)
}

// ListOpen returns open tickets, in insertion order.
func (s *TicketService) ListOpen(ctx context.Context, submitterID *int64) ([]domain.Ticket, error) {
	return s.tickets.ListByStatus(ctx, domain.TicketStatusOpen, submitterID)
}

// ListClosed returns closed tickets for history pagination.
func (s *TicketService) ListClosed(ctx context.Context, submitterID *int64) ([]domain.Ticket, error) {
	return s.tickets.ListByStatus(ctx, domain.TicketStatusClosed, submitterID)
}

// Get fetches one ticket.
func (s *TicketService) Get(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr("ticket", err)
	}
	return ticket, nil
}

// RecordComment overwrites the ticket's completion comment without touching
// its status. Re-invoking with new text always succeeds, so the admin can
// correct a comment by sending it again.
func (s *TicketService) RecordComment(ctx context.Context, ticketID int64, text string) error {
	if err := s.tickets.UpdateComment(ctx, ticketID, strings.TrimSpace(text)); err != nil {
		return notFoundOr("ticket", err)
	}
	s.publish(ctx, events.Event{
		Type: events.EventTicketCommentRecorded,
		Payload: events.TicketCommentRecordedPayload{
			TicketID: ticketID,
			Comment:  strings.TrimSpace(text),
		},
	})
	return nil
}

// Close moves the ticket to its terminal state and reports elapsed whole
// hours since creation, both ends normalized to canonical local time.
// Closing requires a recorded comment; closing an already-closed ticket is
// rejected without mutating anything.
func (s *TicketService) Close(ctx context.Context, ticketID, closedBy int64) (*domain.Ticket, int, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, 0, notFoundOr("ticket", err)
	}
	if ticket.Closed() {
		return nil, 0, apperrors.NewConflict("ticket already closed", map[string]any{"ticket_id": ticketID})
	}

	// Re-read the comment column so a comment recorded after the ticket
	// snapshot still satisfies the gate.
	comment, err := s.tickets.GetComment(ctx, ticketID)
	if err != nil {
		return nil, 0, notFoundOr("ticket", err)
	}
	if strings.TrimSpace(comment) == "" {
		return nil, 0, apperrors.NewConflict("completion comment required before close", map[string]any{"ticket_id": ticketID})
	}
	ticket.Comment = comment

	if err := s.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusClosed); err != nil {
		return nil, 0, notFoundOr("ticket", err)
	}
	ticket.Status = domain.TicketStatusClosed

	hours := s.clock.ElapsedHours(ticket.CreatedAt)

	s.publish(ctx, events.Event{
		Type: events.EventTicketClosed,
		Payload: events.TicketClosedPayload{
			TicketID:     ticket.ID,
			SubmitterID:  ticket.SubmitterID,
			ClosedBy:     closedBy,
			Comment:      ticket.Comment,
			ElapsedHours: hours,
		},
	})
	return ticket, hours, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.metrics.RecordEvent(string(event.Type))
	_ = s.dispatcher.Publish(ctx, event)
}

func notFoundOr(resource string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(err)
}
