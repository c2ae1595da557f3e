package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/repository"
)

type ticketRepoMock struct{ mock.Mock }

var _ repository.TicketRepository = (*ticketRepoMock)(nil)

func (m *ticketRepoMock) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *ticketRepoMock) LastInsertedID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ticketRepoMock) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *ticketRepoMock) CountByStatus(ctx context.Context, status domain.TicketStatus, submitterID *int64) (int, error) {
	args := m.Called(ctx, status, submitterID)
	return args.Int(0), args.Error(1)
}

func (m *ticketRepoMock) ListByStatus(ctx context.Context, status domain.TicketStatus, submitterID *int64) ([]domain.Ticket, error) {
	args := m.Called(ctx, status, submitterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *ticketRepoMock) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *ticketRepoMock) UpdateComment(ctx context.Context, id int64, comment string) error {
	args := m.Called(ctx, id, comment)
	return args.Error(0)
}

func (m *ticketRepoMock) GetComment(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type userRepoMock struct{ mock.Mock }

var _ repository.UserRepository = (*userRepoMock)(nil)

func (m *userRepoMock) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) GetByID(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *userRepoMock) UpdateField(ctx context.Context, telegramID int64, field domain.ProfileField, value string) error {
	args := m.Called(ctx, telegramID, field, value)
	return args.Error(0)
}

func (m *userRepoMock) UpdateLastTicket(ctx context.Context, telegramID int64, ticketID, ticketAt, submitterName string) error {
	args := m.Called(ctx, telegramID, ticketID, ticketAt, submitterName)
	return args.Error(0)
}

// memoryTicketRepo is a slice-backed fake for tests that need real counting
// and status transitions rather than per-call expectations.
type memoryTicketRepo struct {
	tickets []domain.Ticket
}

var _ repository.TicketRepository = (*memoryTicketRepo)(nil)

func (r *memoryTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = int64(len(r.tickets) + 1)
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *memoryTicketRepo) LastInsertedID(_ context.Context) (int64, error) {
	return int64(len(r.tickets)), nil
}

func (r *memoryTicketRepo) find(id int64) *domain.Ticket {
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			return &r.tickets[i]
		}
	}
	return nil
}

func (r *memoryTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	if ticket := r.find(id); ticket != nil {
		copied := *ticket
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryTicketRepo) CountByStatus(_ context.Context, status domain.TicketStatus, submitterID *int64) (int, error) {
	count := 0
	for _, ticket := range r.tickets {
		if ticket.Status == status && (submitterID == nil || ticket.SubmitterID == *submitterID) {
			count++
		}
	}
	return count, nil
}

func (r *memoryTicketRepo) ListByStatus(_ context.Context, status domain.TicketStatus, submitterID *int64) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.Status == status && (submitterID == nil || ticket.SubmitterID == *submitterID) {
			out = append(out, ticket)
		}
	}
	return out, nil
}

func (r *memoryTicketRepo) UpdateStatus(_ context.Context, id int64, status domain.TicketStatus) error {
	ticket := r.find(id)
	if ticket == nil {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	return nil
}

func (r *memoryTicketRepo) UpdateComment(_ context.Context, id int64, comment string) error {
	ticket := r.find(id)
	if ticket == nil {
		return pgx.ErrNoRows
	}
	ticket.Comment = comment
	return nil
}

func (r *memoryTicketRepo) GetComment(_ context.Context, id int64) (string, error) {
	ticket := r.find(id)
	if ticket == nil {
		return "", pgx.ErrNoRows
	}
	return ticket.Comment, nil
}

// memoryUserRepo holds participants in a map, enough for profile snapshots.
type memoryUserRepo struct {
	users map[int64]*domain.User
}

var _ repository.UserRepository = (*memoryUserRepo)(nil)

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	if r.users == nil {
		r.users = make(map[int64]*domain.User)
	}
	r.users[user.TelegramID] = user
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, telegramID int64) (*domain.User, error) {
	if user, ok := r.users[telegramID]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) UpdateField(_ context.Context, telegramID int64, field domain.ProfileField, value string) error {
	user, ok := r.users[telegramID]
	if !ok {
		return pgx.ErrNoRows
	}
	switch field {
	case domain.FieldOrganization:
		user.Organization = value
	case domain.FieldAddress:
		user.Address = value
	case domain.FieldTaxID:
		user.TaxID = value
	case domain.FieldPhone:
		user.Phone = value
	}
	return nil
}

func (r *memoryUserRepo) UpdateLastTicket(_ context.Context, telegramID int64, ticketID, ticketAt, submitterName string) error {
	user, ok := r.users[telegramID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.LastTicketID = ticketID
	user.LastTicketAt = ticketAt
	user.LastSubmitterName = submitterName
	return nil
}

type senderMock struct {
	mock.Mock
}

var _ Sender = (*senderMock)(nil)

func (m *senderMock) Send(ctx context.Context, participantID int64, text string, keyboard Keyboard) error {
	args := m.Called(ctx, participantID, text, keyboard)
	return args.Error(0)
}
