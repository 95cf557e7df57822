package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arenahq/competition-api/internal/api/handler/v1/request"
	"github.com/arenahq/competition-api/internal/api/handler/v1/response"
	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	UpdateRole(ctx context.Context, id uint, role domain.Role, actor domain.User) error
	UpdateStatus(ctx context.Context, id uint, status domain.ApprovalStatus, actor domain.User) error
	DeleteUser(ctx context.Context, id uint, actor domain.User) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetUser godoc
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        userID   path      int true "user ID"
// @Success      200      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID} [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	userID, err := parseIDParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
			return
		}

		err = fmt.Errorf("v1.HandleGetUser -> h.svc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleUpdateUserRole godoc
// @Summary      Update a user's role (admin only)
// @Description  The change lands on the durable record; live sessions keep their old claims until refresh.
// @Tags         users
// @Produce      json
// @Param        userID   path      int true "user ID"
// @Param        request  body      request.UpdateUserRoleRequest true "request body"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID}/role [patch]
// @Security BearerAuth
func (h *UserHandler) HandleUpdateUserRole(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	userID, err := parseIDParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.UpdateUserRoleRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err = h.svc.UpdateRole(ctx.Request.Context(), userID, domain.Role(req.Role), actor)
	if err != nil {
		h.renderUserMutationErr(ctx, "HandleUpdateUserRole", userID, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleUpdateUserStatus godoc
// @Summary      Update a user's approval status (admin only)
// @Tags         users
// @Produce      json
// @Param        userID   path      int true "user ID"
// @Param        request  body      request.UpdateUserStatusRequest true "request body"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID}/status [patch]
// @Security BearerAuth
func (h *UserHandler) HandleUpdateUserStatus(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	userID, err := parseIDParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.UpdateUserStatusRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err = h.svc.UpdateStatus(ctx.Request.Context(), userID, domain.ApprovalStatus(req.Status), actor)
	if err != nil {
		h.renderUserMutationErr(ctx, "HandleUpdateUserStatus", userID, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleDeleteUser godoc
// @Summary      Delete a user (admin only)
// @Tags         users
// @Produce      json
// @Param        userID   path      int true "user ID"
// @Success      204
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID} [delete]
// @Security BearerAuth
func (h *UserHandler) HandleDeleteUser(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	userID, err := parseIDParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.svc.DeleteUser(ctx.Request.Context(), userID, actor); err != nil {
		h.renderUserMutationErr(ctx, "HandleDeleteUser", userID, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UserHandler) renderUserMutationErr(ctx *gin.Context, op string, userID uint, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrPermissionDenied))
	case errors.Is(err, service.ErrUserNotFound):
		response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
	case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrInvalidStatus):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("v1.%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %v: %v", name, raw)
	}

	return uint(id), nil
}
