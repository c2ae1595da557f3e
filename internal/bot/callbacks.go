package bot

import (
	"strconv"
	"strings"

	"github.com/spec-kit/helpdesk-bot/internal/conversation"
	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/service"
)

// actionKind classifies a pressed inline button.
type actionKind int

const (
	actionUnknown actionKind = iota
	actionMainMenu
	actionMyCompany
	actionEditField
	actionNewTicket
	actionMyTickets
	actionHistory
	actionHistoryPage
	actionAdminPanel
	actionTicketDetails
	actionComplete
)

// action is a parsed callback token. Field is set for actionEditField,
// TicketID for actionTicketDetails/actionComplete, Page for actionHistoryPage.
type action struct {
	Kind     actionKind
	Field    domain.ProfileField
	TicketID int64
	Page     int
}

// parseAction decodes a callback token. Stale or garbled tokens come back as
// actionUnknown and are answered with a "use the menu" hint.
func parseAction(token string) action {
	switch token {
	case service.TokenMainMenu:
		return action{Kind: actionMainMenu}
	case service.TokenMyCompany:
		return action{Kind: actionMyCompany}
	case service.TokenEditCompanyName:
		return action{Kind: actionEditField, Field: domain.FieldOrganization}
	case service.TokenEditCompanyAddress:
		return action{Kind: actionEditField, Field: domain.FieldAddress}
	case service.TokenEditCompanyTaxID:
		return action{Kind: actionEditField, Field: domain.FieldTaxID}
	case service.TokenEditCompanyPhone:
		return action{Kind: actionEditField, Field: domain.FieldPhone}
	case service.TokenNewTicket:
		return action{Kind: actionNewTicket}
	case service.TokenMyTickets:
		return action{Kind: actionMyTickets}
	case service.TokenMyTicketHistory:
		return action{Kind: actionHistory}
	case service.TokenAdminPanel:
		return action{Kind: actionAdminPanel}
	}

	if raw, ok := strings.CutPrefix(token, service.TokenHistoryPagePrefix); ok {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return action{Kind: actionUnknown}
		}
		return action{Kind: actionHistoryPage, Page: page}
	}
	if raw, ok := strings.CutPrefix(token, service.TokenCompletePrefix); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return action{Kind: actionUnknown}
		}
		return action{Kind: actionComplete, TicketID: id}
	}
	if raw, ok := strings.CutPrefix(token, service.TokenTicketPrefix); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return action{Kind: actionUnknown}
		}
		return action{Kind: actionTicketDetails, TicketID: id}
	}

	return action{Kind: actionUnknown}
}

// modeForField maps an edit action to the collecting mode it arms.
func modeForField(field domain.ProfileField) conversation.Mode {
	switch field {
	case domain.FieldOrganization:
		return conversation.ModeCompanyName
	case domain.FieldAddress:
		return conversation.ModeCompanyAddress
	case domain.FieldTaxID:
		return conversation.ModeCompanyTaxID
	case domain.FieldPhone:
		return conversation.ModeCompanyPhone
	}
	return conversation.ModeNone
}

// fieldForMode is the inverse mapping used when routing free text.
func fieldForMode(mode conversation.Mode) (domain.ProfileField, bool) {
	switch mode {
	case conversation.ModeCompanyName:
		return domain.FieldOrganization, true
	case conversation.ModeCompanyAddress:
		return domain.FieldAddress, true
	case conversation.ModeCompanyTaxID:
		return domain.FieldTaxID, true
	case conversation.ModeCompanyPhone:
		return domain.FieldPhone, true
	}
	return "", false
}
