package domain

import "time"

const (
	EventTeamRegistration        = "TEAM_REGISTRATION"
	EventTeamApproved            = "TEAM_APPROVED"
	EventTeamRejected            = "TEAM_REJECTED"
	EventCompetitionStatusChange = "COMPETITION_STATUS_CHANGED"
)

type Notification struct {
	ID             uint      `json:"id"`
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	RecipientEmail string    `json:"recipient_email"`
	CompetitionID  uint      `json:"competition_id,omitempty"`
	TeamID         uint      `json:"team_id,omitempty"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}
