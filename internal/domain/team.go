package domain

import "time"

type TeamStatus string

const (
	TeamPending  TeamStatus = "pending"
	TeamApproved TeamStatus = "approved"
	TeamRejected TeamStatus = "rejected"
)

// Team registration state machine: pending -> approved, pending -> rejected.
// Approved and rejected are terminal; rejected teams never become approved,
// which is what keeps the capacity count monotone.
type Team struct {
	ID            uint       `json:"id"`
	CompetitionID uint       `json:"competition_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Leader        string     `json:"leader"`
	Members       []string   `json:"members"`
	Status        TeamStatus `json:"status"`
	Code          string     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (t Team) HasMember(email string) bool {
	if t.Leader == email {
		return true
	}
	for _, m := range t.Members {
		if m == email {
			return true
		}
	}
	return false
}
