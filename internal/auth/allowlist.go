// Package auth holds the static admin allow-list. There is no further
// authentication: anyone on the list gets the admin panel, nobody else does.
package auth

// AllowList answers whether a participant may use admin actions.
type AllowList struct {
	admins map[int64]struct{}
}

// NewAllowList builds the list from configured admin ids.
func NewAllowList(adminIDs []int64) *AllowList {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &AllowList{admins: admins}
}

// IsAdmin reports whether the participant is on the allow-list.
func (a *AllowList) IsAdmin(participantID int64) bool {
	_, ok := a.admins[participantID]
	return ok
}
