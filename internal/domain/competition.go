package domain

import "time"

type CompetitionStatus string

const (
	CompetitionDraft     CompetitionStatus = "draft"
	CompetitionPublished CompetitionStatus = "published"
	CompetitionOngoing   CompetitionStatus = "ongoing"
	CompetitionCompleted CompetitionStatus = "completed"
)

func (s CompetitionStatus) Valid() bool {
	switch s {
	case CompetitionDraft, CompetitionPublished, CompetitionOngoing, CompetitionCompleted:
		return true
	}
	return false
}

// competitionTransitions is the forward-only lifecycle. Same-state and
// backward writes are rejected.
var competitionTransitions = map[CompetitionStatus]CompetitionStatus{
	CompetitionDraft:     CompetitionPublished,
	CompetitionPublished: CompetitionOngoing,
	CompetitionOngoing:   CompetitionCompleted,
}

func (s CompetitionStatus) CanTransitionTo(next CompetitionStatus) bool {
	return competitionTransitions[s] == next
}

type EvaluationCriterion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
	MaxScore    int    `json:"max_score"`
}

type Award struct {
	Name        string `json:"name"`
	Prize       string `json:"prize,omitempty"`
	Description string `json:"description,omitempty"`
}

// Competition dates are RFC3339 strings as persisted; callers that need real
// times must parse them and handle malformed values.
type Competition struct {
	ID                   uint                  `json:"id"`
	Title                string                `json:"title"`
	Description          string                `json:"description"`
	StartDate            string                `json:"start_date"`
	EndDate              string                `json:"end_date"`
	RegistrationDeadline string                `json:"registration_deadline"`
	Location             string                `json:"location"`
	MaxTeams             int                   `json:"max_teams"`
	MaxTeamSize          int                   `json:"max_team_size"`
	Status               CompetitionStatus     `json:"status"`
	OrganizerID          string                `json:"organizer_id"`
	OrganizerName        string                `json:"organizer_name"`
	EvaluationCriteria   []EvaluationCriterion `json:"evaluation_criteria,omitempty"`
	Awards               []Award               `json:"awards,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}
