package domain

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleOrganizer   Role = "organizer"
	RoleJudge       Role = "judge"
	RoleParticipant Role = "participant"
	RoleSpectator   Role = "spectator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleJudge, RoleParticipant, RoleSpectator:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	StatusApproved ApprovalStatus = "approved"
	StatusPending  ApprovalStatus = "pending"
	StatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusApproved, StatusPending, StatusRejected:
		return true
	}
	return false
}

// User is a registered account. Password holds the bcrypt hash and is empty
// for federated accounts that never set one. Status is only meaningful for
// organizers; everyone else is created approved.
type User struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Password  string         `json:"-"`
	Role      Role           `json:"role"`
	Status    ApprovalStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CanManageCompetition reports whether the user may mutate the given
// competition (owning organizer or admin).
func (u User) CanManageCompetition(c Competition) bool {
	return u.Role == RoleAdmin || (u.Role == RoleOrganizer && c.OrganizerID == u.Email)
}
