package domain

// TicketStatus enumerates lifecycle states for tickets. Exactly two states
// exist; a ticket moves open → closed once and never back.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "В работе"
	TicketStatusClosed TicketStatus = "Завершена"
)

// Ticket is the aggregate for support requests. Organization and Address are
// snapshots of the submitter's profile at creation time and are deliberately
// not kept in sync with later profile edits.
type Ticket struct {
	ID           int64
	SubmitterID  int64
	Organization string
	Address      string
	Message      string
	CreatedAt    string
	Status       TicketStatus
	Comment      string
}

// Closed reports whether the ticket has reached its terminal state.
func (t *Ticket) Closed() bool {
	return t.Status == TicketStatusClosed
}
