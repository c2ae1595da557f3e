package service

import "context"

// Button is one cell of an inline keyboard: a label and the action token the
// transport sends back when it is pressed.
type Button struct {
	Label string
	Token string
}

// Keyboard is an ordered grid of buttons. The core only emits tokens; how
// the grid is rendered belongs to the transport adapter.
type Keyboard [][]Button

// Sender delivers a message to a participant. Implementations must treat
// delivery failures as recoverable: the caller logs and moves on.
type Sender interface {
	Send(ctx context.Context, participantID int64, text string, keyboard Keyboard) error
}

// Action tokens understood by the menu-navigation state machine.
const (
	TokenMainMenu           = "main_menu"
	TokenMyCompany          = "my_company"
	TokenEditCompanyName    = "edit_company_name"
	TokenEditCompanyAddress = "edit_company_adress"
	TokenEditCompanyTaxID   = "edit_company_inn"
	TokenEditCompanyPhone   = "edit_company_phone"
	TokenNewTicket          = "new_ticket"
	TokenMyTickets          = "my_ticket"
	TokenMyTicketHistory    = "my_ticket_history"
	TokenAdminPanel         = "admin_panel"

	TokenTicketPrefix      = "ticket_"
	TokenCompletePrefix    = "complete_"
	TokenHistoryPagePrefix = "my_ticket_page_"
)
