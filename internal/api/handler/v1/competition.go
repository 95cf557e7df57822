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

type CompetitionService interface {
	Create(ctx context.Context, competition domain.Competition, actor domain.User) (domain.Competition, error)
	GetCompetition(ctx context.Context, id uint) (domain.Competition, error)
	GetCompetitions(ctx context.Context) ([]domain.Competition, error)
	GetCompetitionsByOrganizer(ctx context.Context, organizerID string) ([]domain.Competition, error)
	Update(ctx context.Context, competition domain.Competition, actor domain.User) (domain.Competition, error)
	UpdateStatus(ctx context.Context, id uint, newStatus domain.CompetitionStatus, actor domain.User) (domain.Competition, error)
	Delete(ctx context.Context, id uint, actor domain.User) error
}

type CompetitionHandler struct {
	svc CompetitionService
}

func NewCompetitionHandler(svc CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{
		svc: svc,
	}
}

// HandleCreateCompetition godoc
// @Summary      Create a competition
// @Description  Admins and approved organizers only. The competition starts in draft.
// @Tags         competitions
// @Produce      json
// @Param        request  body      request.CreateCompetitionRequest true "request body"
// @Success      201      {object}   domain.Competition
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /competitions [post]
// @Security BearerAuth
func (h *CompetitionHandler) HandleCreateCompetition(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateCompetitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.Create(ctx.Request.Context(), competitionFromRequest(req), actor)
	if err != nil {
		h.renderCompetitionErr(ctx, "HandleCreateCompetition", 0, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetCompetitions godoc
// @Summary      List competitions
// @Description  Public. With ?organizer=<email>, only that organizer's competitions are returned.
// @Tags         competitions
// @Produce      json
// @Param        organizer   query      string false "filter by organizer email"
// @Success      200    {array}    domain.Competition
// @Failure      500    {object}   response.Err
// @Router       /competitions [get]
func (h *CompetitionHandler) HandleGetCompetitions(ctx *gin.Context) {
	var (
		competitions []domain.Competition
		err          error
	)
	if organizer := ctx.Query("organizer"); organizer != "" {
		competitions, err = h.svc.GetCompetitionsByOrganizer(ctx.Request.Context(), organizer)
	} else {
		competitions, err = h.svc.GetCompetitions(ctx.Request.Context())
	}
	if err != nil {
		err = fmt.Errorf("v1.HandleGetCompetitions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, competitions)
}

// HandleGetCompetition godoc
// @Summary      Get a competition by ID
// @Description  Public.
// @Tags         competitions
// @Produce      json
// @Param        competitionID   path      int true "competition ID"
// @Success      200      {object}   domain.Competition
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /competitions/{competitionID} [get]
func (h *CompetitionHandler) HandleGetCompetition(ctx *gin.Context) {
	competitionID, err := parseIDParam(ctx, "competitionID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	competition, err := h.svc.GetCompetition(ctx.Request.Context(), competitionID)
	if err != nil {
		h.renderCompetitionErr(ctx, "HandleGetCompetition", competitionID, err)
		return
	}

	ctx.JSON(http.StatusOK, competition)
}

// HandleUpdateCompetition godoc
// @Summary      Update a competition's structural fields
// @Description  Status is not writable here; use the status endpoint.
// @Tags         competitions
// @Produce      json
// @Param        competitionID   path      int true "competition ID"
// @Param        request         body      request.CreateCompetitionRequest true "request body"
// @Success      200      {object}   domain.Competition
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /competitions/{competitionID} [put]
// @Security BearerAuth
func (h *CompetitionHandler) HandleUpdateCompetition(ctx *gin.Context) {
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

	var req request.CreateCompetitionRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	competition := competitionFromRequest(req)
	competition.ID = competitionID

	updated, err := h.svc.Update(ctx.Request.Context(), competition, actor)
	if err != nil {
		h.renderCompetitionErr(ctx, "HandleUpdateCompetition", competitionID, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleUpdateCompetitionStatus godoc
// @Summary      Advance a competition's lifecycle status
// @Description  The lifecycle only moves forward: draft, published, ongoing, completed.
// @Tags         competitions
// @Produce      json
// @Param        competitionID   path      int true "competition ID"
// @Param        request         body      request.UpdateCompetitionStatusRequest true "request body"
// @Success      200      {object}   domain.Competition
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /competitions/{competitionID}/status [patch]
// @Security BearerAuth
func (h *CompetitionHandler) HandleUpdateCompetitionStatus(ctx *gin.Context) {
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

	var req request.UpdateCompetitionStatusRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateStatus(
		ctx.Request.Context(), competitionID, domain.CompetitionStatus(req.Status), actor)
	if err != nil {
		h.renderCompetitionErr(ctx, "HandleUpdateCompetitionStatus", competitionID, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteCompetition godoc
// @Summary      Delete a competition
// @Description  Refused while any pending or approved team exists.
// @Tags         competitions
// @Produce      json
// @Param        competitionID   path      int true "competition ID"
// @Success      204
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /competitions/{competitionID} [delete]
// @Security BearerAuth
func (h *CompetitionHandler) HandleDeleteCompetition(ctx *gin.Context) {
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

	if err = h.svc.Delete(ctx.Request.Context(), competitionID, actor); err != nil {
		h.renderCompetitionErr(ctx, "HandleDeleteCompetition", competitionID, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *CompetitionHandler) renderCompetitionErr(ctx *gin.Context, op string, competitionID uint, err error) {
	switch {
	case errors.Is(err, service.ErrCompetitionNotFound):
		response.RenderErr(ctx, response.ErrNotFound("competition", "ID", competitionID))
	case errors.Is(err, service.ErrPermissionDenied):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrPermissionDenied))
	case errors.Is(err, service.ErrOrganizerNotApproved):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrOrganizerNotApproved))
	case errors.Is(err, service.ErrInvalidCompetitionTransition):
		response.RenderErr(ctx, response.ErrConflict(service.ErrInvalidCompetitionTransition))
	case errors.Is(err, service.ErrCompetitionHasTeams):
		response.RenderErr(ctx, response.ErrConflict(service.ErrCompetitionHasTeams))
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrDeadlineAfterStart),
		errors.Is(err, service.ErrStartAfterEnd),
		errors.Is(err, service.ErrInvalidMaxTeams),
		errors.Is(err, service.ErrCriteriaWeights):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("v1.%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

func competitionFromRequest(req request.CreateCompetitionRequest) domain.Competition {
	criteria := make([]domain.EvaluationCriterion, 0, len(req.EvaluationCriteria))
	for _, c := range req.EvaluationCriteria {
		criteria = append(criteria, domain.EvaluationCriterion{
			Name:        c.Name,
			Description: c.Description,
			Weight:      c.Weight,
			MaxScore:    c.MaxScore,
		})
	}

	awards := make([]domain.Award, 0, len(req.Awards))
	for _, a := range req.Awards {
		awards = append(awards, domain.Award{
			Name:        a.Name,
			Prize:       a.Prize,
			Description: a.Description,
		})
	}

	return domain.Competition{
		Title:                req.Title,
		Description:          req.Description,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		RegistrationDeadline: req.RegistrationDeadline,
		Location:             req.Location,
		MaxTeams:             req.MaxTeams,
		MaxTeamSize:          req.MaxTeamSize,
		EvaluationCriteria:   criteria,
		Awards:               awards,
	}
}
