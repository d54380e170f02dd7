package models

// Counter kinds tracked by the application.
const (
	CounterLogin         = "login"
	CounterPasswordReset = "password_reset"
)

// Counter is a singleton monotonic counter row (PostgreSQL), one per kind.
// The row is created lazily by the first increment.
type Counter struct {
	Kind  string `json:"kind" gorm:"primaryKey;size:30"`
	Value int64  `json:"value"`
}
