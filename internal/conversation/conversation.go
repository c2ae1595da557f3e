// Package conversation tracks which input, if any, is expected next from
// each participant. The state is transient by design: losing it across a
// restart leaves participants in the neutral mode.
package conversation

import (
	"context"
	"time"
)

// Mode is the pending-input state governing how a participant's next
// free-text message is interpreted.
type Mode string

const (
	ModeNone           Mode = ""
	ModeCompanyName    Mode = "company_name"
	ModeCompanyAddress Mode = "company_address"
	ModeCompanyTaxID   Mode = "company_tax_id"
	ModeCompanyPhone   Mode = "company_phone"
	ModeTicketMessage  Mode = "ticket_message"
	ModeTicketComment  Mode = "ticket_comment"
)

// State is the per-participant conversation state. TicketID is set only for
// ModeTicketComment. Setting a new state always overwrites the previous one;
// no two pending modes coexist for one participant.
type State struct {
	Mode      Mode      `json:"mode"`
	TicketID  int64     `json:"ticket_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the participant is in a collecting mode.
func (s State) Active() bool {
	return s.Mode != ModeNone
}

// Store holds conversation state keyed by participant id. Implementations
// must be safe for concurrent use; events for different participants touch
// disjoint keys.
type Store interface {
	Get(ctx context.Context, participantID int64) (State, error)
	Set(ctx context.Context, participantID int64, state State) error
	Clear(ctx context.Context, participantID int64) error
	// Snapshot returns a copy of all active conversations, for the idle sweep.
	Snapshot(ctx context.Context) (map[int64]State, error)
}
