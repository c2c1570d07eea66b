package stock

import "time"

// ExpiryState classifies a restock against its expiration window.
type ExpiryState string

const (
	ExpiryNone    ExpiryState = "none"
	ExpiryNear    ExpiryState = "near_expiry"
	ExpiryExpired ExpiryState = "expired"
)

// DefaultExpirationAlertLead is how long before expiration the alert window opens.
const DefaultExpirationAlertLead = 5 * 24 * time.Hour

// ClassifyExpiry returns NearExpiry when alert <= now < expiration and Expired when
// expiration <= now, so a restock is expired from the instant its expiration date arrives.
// Missing dates never classify.
func ClassifyExpiry(alertDate, expirationDate *time.Time, now time.Time) ExpiryState {
	if expirationDate == nil {
		return ExpiryNone
	}
	if !expirationDate.After(now) {
		return ExpiryExpired
	}
	if alertDate != nil && !alertDate.After(now) && now.Before(*expirationDate) {
		return ExpiryNear
	}
	return ExpiryNone
}
