package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// Identity is the authenticated caller of a core operation. It is always passed
// in explicitly; services never look it up from ambient request state.
type Identity struct {
	UserID string
	System bool // scheduled jobs and provider webhooks act as the system
}

// UserIdentity returns the identity of an authenticated end user.
func UserIdentity(userID string) Identity {
	return Identity{UserID: userID}
}

// SystemIdentity returns the identity used by schedulers and webhooks.
func SystemIdentity() Identity {
	return Identity{System: true}
}

// CanAccess reports whether the identity may act on data owned by ownerUserID.
func (i Identity) CanAccess(ownerUserID string) bool {
	if i.System {
		return true
	}
	return i.UserID != "" && i.UserID == ownerUserID
}

// CalendarDay drops the time of day, keeping the date as written in t's own
// location, and returns it as midnight UTC. Transaction dates and budget
// windows are whole days, matching the DATE columns in Postgres.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
