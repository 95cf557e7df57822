package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type EvaluationCriterionPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
	MaxScore    int    `json:"max_score"`
}

type AwardPayload struct {
	Name        string `json:"name"`
	Prize       string `json:"prize,omitempty"`
	Description string `json:"description,omitempty"`
}

type CreateCompetitionRequest struct {
	Title                string                       `json:"title" binding:"required"`
	Description          string                       `json:"description" binding:"required"`
	StartDate            string                       `json:"start_date" binding:"required"`
	EndDate              string                       `json:"end_date" binding:"required"`
	RegistrationDeadline string                       `json:"registration_deadline" binding:"required"`
	Location             string                       `json:"location" binding:"required"`
	MaxTeams             int                          `json:"max_teams" binding:"required,min=1"`
	MaxTeamSize          int                          `json:"max_team_size"`
	EvaluationCriteria   []EvaluationCriterionPayload `json:"evaluation_criteria"`
	Awards               []AwardPayload               `json:"awards"`
}

func (req *CreateCompetitionRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Description, validation.Required),
		validation.Field(&req.StartDate, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&req.EndDate, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&req.RegistrationDeadline, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&req.Location, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.MaxTeams, validation.Required, validation.Min(1)),
		validation.Field(&req.MaxTeamSize, validation.Min(0)),
	)
	if err != nil {
		return err
	}

	for _, criterion := range req.EvaluationCriteria {
		err = validation.ValidateStruct(&criterion,
			validation.Field(&criterion.Name, validation.Required, validation.Length(1, 50)),
			validation.Field(&criterion.Weight, validation.Required, validation.Min(1), validation.Max(100)),
			validation.Field(&criterion.MaxScore, validation.Required, validation.Min(1)),
		)
		if err != nil {
			return err
		}
	}

	for _, award := range req.Awards {
		err = validation.ValidateStruct(&award,
			validation.Field(&award.Name, validation.Required, validation.Length(1, 100)),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

type UpdateCompetitionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (req *UpdateCompetitionStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required,
			validation.In("draft", "published", "ongoing", "completed")),
	)
}
