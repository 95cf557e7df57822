package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arenahq/competition-api/internal/api/handler/v1/request"
	"github.com/arenahq/competition-api/internal/api/handler/v1/response"
	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/service"
)

type TeamService interface {
	Register(ctx context.Context, competitionID uint, name, description string, actor domain.User) (domain.Team, error)
	Approve(ctx context.Context, teamID uint, actor domain.User) (domain.Team, error)
	Reject(ctx context.Context, teamID uint, actor domain.User) (domain.Team, error)
	JoinByCode(ctx context.Context, competitionID uint, code string, actor domain.User) (domain.Team, error)
	GetTeam(ctx context.Context, teamID uint, actor domain.User) (domain.Team, error)
	GetMyTeam(ctx context.Context, competitionID uint, actor domain.User) (domain.Team, error)
	GetTeamsByCompetition(ctx context.Context, competitionID uint, actor domain.User) ([]domain.Team, error)
	RemoveMember(ctx context.Context, teamID uint, memberEmail string, actor domain.User) error
	DeleteTeam(ctx context.Context, teamID uint, actor domain.User) error
}

type TeamHandler struct {
	svc TeamService
}

func NewTeamHandler(svc TeamService) *TeamHandler {
	return &TeamHandler{
		svc: svc,
	}
}

// HandleRegisterTeam godoc
// @Summary      Register a team for a competition
// @Description  The caller becomes the team leader and the team starts pending review.
// @Tags         teams
// @Produce      json
// @Param        competitionID   path      int true "competition ID"
// @Param        request         body      request.RegisterTeamRequest true "request body"
// @Success      201      {object}   response.TeamResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /competitions/{competitionID}/teams [post]
// @Security BearerAuth
func (h *TeamHandler) HandleRegisterTeam(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	competitionID, err := parseIDParam(ctx, "competitionID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.RegisterTeamRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	team, err := h.svc.Register(ctx.Request.Context(), competitionID, req.Name, req.Description, actor)
	if err != nil {
		h.renderTeamErr(ctx, "HandleRegisterTeam", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.NewTeamResponse(team, actor.Email))
}

// HandleJoinTeam godoc
// @Summary      Join a team by its code
// @Tags         teams
// @Produce      json
// @Param        competitionID   path      int true "competition ID"
// @Param        request         body      request.JoinTeamRequest true "request body"
// @Success      200      {object}   response.TeamResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /competitions/{competitionID}/teams/join [post]
// @Security BearerAuth
func (h *TeamHandler) HandleJoinTeam(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	competitionID, err := parseIDParam(ctx, "competitionID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.JoinTeamRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	team, err := h.svc.JoinByCode(ctx.Request.Context(), competitionID, req.Code, actor)
	if err != nil {
		h.renderTeamErr(ctx, "HandleJoinTeam", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewTeamResponse(team, actor.Email))
}

// HandleGetTeams godoc
// @Summary      List a competition's teams
// @Description  Restricted to the competition's organizer and admins.
// @Tags         teams
// @Produce      json
// @Param        competitionID   path      int true "competition ID"
// @Success      200      {array}    response.TeamResponse
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /competitions/{competitionID}/teams [get]
// @Security BearerAuth
func (h *TeamHandler) HandleGetTeams(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	competitionID, err := parseIDParam(ctx, "competitionID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	teams, err := h.svc.GetTeamsByCompetition(ctx.Request.Context(), competitionID, actor)
	if err != nil {
		h.renderTeamErr(ctx, "HandleGetTeams", err)
		return
	}

	resp := make([]response.TeamResponse, 0, len(teams))
	for _, team := range teams {
		resp = append(resp, response.NewTeamResponse(team, actor.Email))
	}

	ctx.JSON(http.StatusOK, resp)
}

// HandleGetMyTeam godoc
// @Summary      Get the caller's team in a competition
// @Description  Returns the pending or approved team the caller leads or belongs to.
// @Tags         teams
// @Produce      json
// @Param        competitionID   path      int true "competition ID"
// @Success      200      {object}   response.TeamResponse
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /competitions/{competitionID}/teams/mine [get]
// @Security BearerAuth
func (h *TeamHandler) HandleGetMyTeam(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	competitionID, err := parseIDParam(ctx, "competitionID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	team, err := h.svc.GetMyTeam(ctx.Request.Context(), competitionID, actor)
	if err != nil {
		h.renderTeamErr(ctx, "HandleGetMyTeam", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewTeamResponse(team, actor.Email))
}

// HandleGetTeam godoc
// @Summary      Get a team by ID
// @Description  Visible to team members, the competition's organizer and admins.
// @Tags         teams
// @Produce      json
// @Param        teamID   path      int true "team ID"
// @Success      200      {object}   response.TeamResponse
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /teams/{teamID} [get]
// @Security BearerAuth
func (h *TeamHandler) HandleGetTeam(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	teamID, err := parseIDParam(ctx, "teamID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	team, err := h.svc.GetTeam(ctx.Request.Context(), teamID, actor)
	if err != nil {
		h.renderTeamErr(ctx, "HandleGetTeam", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewTeamResponse(team, actor.Email))
}

// HandleApproveTeam godoc
// @Summary      Approve a pending team
// @Description  Approving an already-approved team is a no-op; a rejected team cannot be approved.
// @Tags         teams
// @Produce      json
// @Param        teamID   path      int true "team ID"
// @Success      200      {object}   response.TeamResponse
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /teams/{teamID}/approve [post]
// @Security BearerAuth
func (h *TeamHandler) HandleApproveTeam(ctx *gin.Context) {
	h.handleReview(ctx, "HandleApproveTeam", h.svc.Approve)
}

// HandleRejectTeam godoc
// @Summary      Reject a pending team
// @Description  Rejecting an already-rejected team is a no-op; an approved team cannot be rejected.
// @Tags         teams
// @Produce      json
// @Param        teamID   path      int true "team ID"
// @Success      200      {object}   response.TeamResponse
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /teams/{teamID}/reject [post]
// @Security BearerAuth
func (h *TeamHandler) HandleRejectTeam(ctx *gin.Context) {
	h.handleReview(ctx, "HandleRejectTeam", h.svc.Reject)
}

func (h *TeamHandler) handleReview(
	ctx *gin.Context,
	op string,
	review func(ctx context.Context, teamID uint, actor domain.User) (domain.Team, error),
) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	teamID, err := parseIDParam(ctx, "teamID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	team, err := review(ctx.Request.Context(), teamID, actor)
	if err != nil {
		h.renderTeamErr(ctx, op, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewTeamResponse(team, actor.Email))
}

// HandleRemoveMember godoc
// @Summary      Remove a member from a team
// @Description  The leader cannot be removed; delete the team instead.
// @Tags         teams
// @Produce      json
// @Param        teamID   path      int true "team ID"
// @Param        email    path      string true "member email"
// @Success      204
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /teams/{teamID}/members/{email} [delete]
// @Security BearerAuth
func (h *TeamHandler) HandleRemoveMember(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	teamID, err := parseIDParam(ctx, "teamID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	email := ctx.Param("email")

	if err = h.svc.RemoveMember(ctx.Request.Context(), teamID, email, actor); err != nil {
		h.renderTeamErr(ctx, "HandleRemoveMember", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleDeleteTeam godoc
// @Summary      Delete a team
// @Description  Allowed for the team leader, the competition's organizer and admins.
// @Tags         teams
// @Produce      json
// @Param        teamID   path      int true "team ID"
// @Success      204
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /teams/{teamID} [delete]
// @Security BearerAuth
func (h *TeamHandler) HandleDeleteTeam(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	teamID, err := parseIDParam(ctx, "teamID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.svc.DeleteTeam(ctx.Request.Context(), teamID, actor); err != nil {
		h.renderTeamErr(ctx, "HandleDeleteTeam", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *TeamHandler) renderTeamErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		response.RenderErr(ctx, response.ErrNotFound("team", "ID", ctx.Param("teamID")))
	case errors.Is(err, service.ErrCompetitionNotFound):
		response.RenderErr(ctx, response.ErrNotFound("competition", "ID", ctx.Param("competitionID")))
	case errors.Is(err, service.ErrMemberNotFound):
		response.RenderErr(ctx, response.ErrNotFound("member", "email", ctx.Param("email")))
	case errors.Is(err, service.ErrPermissionDenied):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrPermissionDenied))
	case errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrDuplicateRegistration),
		errors.Is(err, service.ErrAlreadyInTeam),
		errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrTeamFull),
		errors.Is(err, service.ErrInvalidTeamTransition),
		errors.Is(err, service.ErrCannotRemoveLeader):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrTeamCodeInvalid),
		errors.Is(err, service.ErrInvalidCompetitionDates):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("v1.%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
