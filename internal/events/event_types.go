package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketCommentRecorded EventType = "ticket_comment_recorded"
	EventTicketClosed          EventType = "ticket_closed"
	EventProfileUpdated        EventType = "profile_updated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries everything the admin notice needs.
type TicketCreatedPayload struct {
	TicketID      int64  `json:"ticket_id"`
	SubmitterID   int64  `json:"submitter_id"`
	SubmitterName string `json:"submitter_name"`
	Organization  string `json:"organization"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Message       string `json:"message"`
}

// TicketCommentRecordedPayload payload.
type TicketCommentRecordedPayload struct {
	TicketID int64  `json:"ticket_id"`
	Comment  string `json:"comment"`
}

// TicketClosedPayload carries the closure notice inputs, including elapsed
// whole hours between creation and close.
type TicketClosedPayload struct {
	TicketID     int64  `json:"ticket_id"`
	SubmitterID  int64  `json:"submitter_id"`
	ClosedBy     int64  `json:"closed_by"`
	Comment      string `json:"comment"`
	ElapsedHours int    `json:"elapsed_hours"`
}

// ProfileUpdatedPayload payload.
type ProfileUpdatedPayload struct {
	TelegramID int64  `json:"telegram_id"`
	Field      string `json:"field"`
}
