package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
)

// TicketRepository encapsulates ticket persistence. A nil submitterID on the
// count/list operations aggregates across all participants.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	LastInsertedID(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	CountByStatus(ctx context.Context, status domain.TicketStatus, submitterID *int64) (int, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus, submitterID *int64) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error
	UpdateComment(ctx context.Context, id int64, comment string) error
	GetComment(ctx context.Context, id int64) (string, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// Create inserts the ticket and assigns its id atomically. The generated id
// is written back into the ticket.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (submitter_id, organization, address, message, created_at, status, comment)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`

	return r.pool.QueryRow(ctx, query,
		ticket.SubmitterID,
		ticket.Organization,
		ticket.Address,
		ticket.Message,
		ticket.CreatedAt,
		ticket.Status,
		ticket.Comment,
	).Scan(&ticket.ID)
}

// LastInsertedID returns the highest assigned ticket id, zero when the store
// holds no tickets yet.
func (r *ticketRepository) LastInsertedID(ctx context.Context) (int64, error) {
	const query = `SELECT COALESCE(MAX(id), 0) FROM tickets`

	var id int64
	if err := r.pool.QueryRow(ctx, query).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, submitter_id, organization, address, message, created_at, status, comment
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.SubmitterID,
		&ticket.Organization,
		&ticket.Address,
		&ticket.Message,
		&ticket.CreatedAt,
		&ticket.Status,
		&ticket.Comment,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) CountByStatus(ctx context.Context, status domain.TicketStatus, submitterID *int64) (int, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE status=$1`
	args := []any{status}
	if submitterID != nil {
		query += ` AND submitter_id=$2`
		args = append(args, *submitterID)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) ListByStatus(ctx context.Context, status domain.TicketStatus, submitterID *int64) ([]domain.Ticket, error) {
	query := `
        SELECT id, submitter_id, organization, address, message, created_at, status, comment
        FROM tickets WHERE status=$1`
	args := []any{status}
	if submitterID != nil {
		query += ` AND submitter_id=$2`
		args = append(args, *submitterID)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateComment(ctx context.Context, id int64, comment string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET comment=$1 WHERE id=$2`, comment, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetComment(ctx context.Context, id int64) (string, error) {
	var comment string
	if err := r.pool.QueryRow(ctx, `SELECT comment FROM tickets WHERE id=$1`, id).Scan(&comment); err != nil {
		return "", err
	}
	return comment, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.SubmitterID,
			&ticket.Organization,
			&ticket.Address,
			&ticket.Message,
			&ticket.CreatedAt,
			&ticket.Status,
			&ticket.Comment,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
