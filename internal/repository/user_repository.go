package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
)

// UserRepository defines persistence access for participants.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, telegramID int64) (*domain.User, error)
	UpdateField(ctx context.Context, telegramID int64, field domain.ProfileField, value string) error
	UpdateLastTicket(ctx context.Context, telegramID int64, ticketID, ticketAt, submitterName string) error
}

// profileColumns maps each editable field to its fixed column. Updates
// dispatch through this table only; field names never reach SQL as data.
var profileColumns = map[domain.ProfileField]string{
	domain.FieldOrganization: "organization",
	domain.FieldAddress:      "address",
	domain.FieldTaxID:        "tax_id",
	domain.FieldPhone:        "phone",
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (telegram_id, registered_at, organization, address, tax_id, phone,
                           last_ticket_id, last_ticket_at, last_submitter_name)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		user.TelegramID,
		user.RegisteredAt,
		user.Organization,
		user.Address,
		user.TaxID,
		user.Phone,
		user.LastTicketID,
		user.LastTicketAt,
		user.LastSubmitterName,
	)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, telegramID int64) (*domain.User, error) {
	const query = `
        SELECT telegram_id, registered_at, organization, address, tax_id, phone,
               last_ticket_id, last_ticket_at, last_submitter_name
        FROM users WHERE telegram_id=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&user.TelegramID,
		&user.RegisteredAt,
		&user.Organization,
		&user.Address,
		&user.TaxID,
		&user.Phone,
		&user.LastTicketID,
		&user.LastTicketAt,
		&user.LastSubmitterName,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateField(ctx context.Context, telegramID int64, field domain.ProfileField, value string) error {
	column, ok := profileColumns[field]
	if !ok {
		return fmt.Errorf("unknown profile field %q", field)
	}

	query := fmt.Sprintf(`UPDATE users SET %s=$1 WHERE telegram_id=$2`, column)
	cmd, err := r.pool.Exec(ctx, query, value, telegramID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdateLastTicket(ctx context.Context, telegramID int64, ticketID, ticketAt, submitterName string) error {
	const query = `
        UPDATE users SET last_ticket_id=$1, last_ticket_at=$2, last_submitter_name=$3
        WHERE telegram_id=$4`

	cmd, err := r.pool.Exec(ctx, query, ticketID, ticketAt, submitterName, telegramID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
