package service

import (
	"github.com/spec-kit/helpdesk-bot/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util"
)

// HistoryPageSize is the fixed page size for closed-ticket history.
const HistoryPageSize = 4

// Page is one window over the closed-ticket history. When the whole history
// fits in a single page, Paged is false and no navigation controls apply.
type Page struct {
	Items   []domain.Ticket
	Number  int
	Paged   bool
	HasPrev bool
	HasNext bool
}

// PaginateHistory slices tickets into 1-indexed pages of HistoryPageSize.
// Requesting a page whose window is empty is a caller error.
func PaginateHistory(tickets []domain.Ticket, page int) (Page, error) {
	if page < 1 {
		return Page{}, apperrors.NewStateMismatch("page number must be positive")
	}

	total := len(tickets)
	if total <= HistoryPageSize {
		if page != 1 {
			return Page{}, apperrors.NewStateMismatch("page out of range")
		}
		return Page{Items: tickets, Number: 1}, nil
	}

	start := (page - 1) * HistoryPageSize
	if start >= total {
		return Page{}, apperrors.NewStateMismatch("page out of range")
	}
	end := start + HistoryPageSize
	if end > total {
		end = total
	}

	return Page{
		Items:   tickets[start:end],
		Number:  page,
		Paged:   true,
		HasPrev: page > 1,
		HasNext: end < total,
	}, nil
}
