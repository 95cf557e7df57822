package response

import "github.com/arenahq/competition-api/internal/domain"

type TeamResponse struct {
	domain.Team

	// Code is only populated for the team leader once the team is approved.
	Code string `json:"code,omitempty"`
}

// NewTeamResponse renders a team for the given viewer. The join code stays
// hidden until approval and is only ever shown to the leader.
func NewTeamResponse(team domain.Team, viewerEmail string) TeamResponse {
	resp := TeamResponse{Team: team}
	if team.Status == domain.TeamApproved && team.Leader == viewerEmail {
		resp.Code = team.Code
	}

	return resp
}
