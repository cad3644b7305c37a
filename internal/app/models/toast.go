package models

import "time"

// Toast is a short-lived notification shown to one session
type Toast struct {
	ID        int64         `json:"id"`
	Message   string        `json:"message"`
	Severity  ToastSeverity `json:"type"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Expired reports whether the toast outlived ttl at now
func (t Toast) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(t.CreatedAt.Add(ttl))
}
