package domain

import "time"

// SessionMode is the per-phone-number routing state of the WhatsApp bot.
// AI answers through the pipeline; HUMAN silences the bot until an admin
// closes the session or the idle timeout resets it.
type SessionMode string

const (
	ModeAI    SessionMode = "AI"
	ModeHuman SessionMode = "HUMAN"
)

type TicketStatus string

const (
	TicketOpen   TicketStatus = "OPEN"
	TicketClosed TicketStatus = "CLOSED"
)

// Ticket is a live-chat queue entry created when a user escalates to a
// human operator.
type Ticket struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Subject   string       `json:"subject"`
	Status    TicketStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// IsOfficeHours reports whether a human operator is expected to be
// available: Monday through Friday, 08:00-16:00 local time.
func IsOfficeHours(now time.Time) bool {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return now.Hour() >= 8 && now.Hour() < 16
}
