package domain

// NoData is the sentinel stored for profile fields the participant has not
// filled in yet. Reads never observe null ambiguity, only this value.
const NoData = "Нет данных"

// ProfileField enumerates the editable company profile fields. Updates go
// through this closed set only; there is no dynamic field targeting.
type ProfileField string

const (
	FieldOrganization ProfileField = "organization"
	FieldAddress      ProfileField = "address"
	FieldTaxID        ProfileField = "tax_id"
	FieldPhone        ProfileField = "phone"
)

// Valid reports whether the field belongs to the editable set.
func (f ProfileField) Valid() bool {
	switch f {
	case FieldOrganization, FieldAddress, FieldTaxID, FieldPhone:
		return true
	}
	return false
}

// User is the domain model for participants who submit tickets. One record
// per telegram id, created on first /start, never deleted.
type User struct {
	TelegramID        int64
	RegisteredAt      string
	Organization      string
	Address           string
	TaxID             string
	Phone             string
	LastTicketID      string
	LastTicketAt      string
	LastSubmitterName string
}

// NewUser returns a fresh profile with every company field at the sentinel.
func NewUser(telegramID int64, registeredAt string) *User {
	return &User{
		TelegramID:   telegramID,
		RegisteredAt: registeredAt,
		Organization: NoData,
		Address:      NoData,
		TaxID:        NoData,
		Phone:        NoData,
	}
}

// FieldFilled reports whether the given profile field holds real data.
func (u *User) FieldFilled(field ProfileField) bool {
	switch field {
	case FieldOrganization:
		return u.Organization != NoData
	case FieldAddress:
		return u.Address != NoData
	case FieldTaxID:
		return u.TaxID != NoData
	case FieldPhone:
		return u.Phone != NoData
	}
	return false
}
