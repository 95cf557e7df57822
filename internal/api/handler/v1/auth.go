package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arenahq/competition-api/internal/api/handler/v1/request"
	"github.com/arenahq/competition-api/internal/api/handler/v1/response"
	"github.com/arenahq/competition-api/internal/config"
	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/pkg/jwthelper"
	"github.com/arenahq/competition-api/internal/service"
)

type AuthService interface {
	Signup(ctx context.Context, user domain.User) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	LoginFederated(ctx context.Context, email string) (domain.User, error)
	Refresh(ctx context.Context, userID uint) (domain.User, error)
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AuthService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleSignup godoc
// @Summary      Signup a new user
// @Tags         auth
// @Produce      json
// @Param        request   body      request.SignupRequest true "request body"
// @Success      201      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/signup [post]
func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req request.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Signup(ctx.Request.Context(), domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		if errors.Is(err, service.ErrUserEmailExists) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrUserEmailExists))
			return
		}

		err = fmt.Errorf("v1.HandleSignup -> h.svc.Signup -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// HandleLogin godoc
// @Summary      Login a user
// @Tags         auth
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.renderSignInErr(ctx, "HandleLogin", err)
		return
	}

	h.renderSession(ctx, user)
}

// HandleFederatedLogin godoc
// @Summary      Login with a federated identity
// @Description  The identity is pre-verified by the external provider; the email must already be provisioned.
// @Tags         auth
// @Produce      json
// @Param        request   body      request.FederatedLoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/federated [post]
func (h *AuthHandler) HandleFederatedLogin(ctx *gin.Context) {
	req := request.FederatedLoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.LoginFederated(ctx.Request.Context(), req.Email)
	if err != nil {
		h.renderSignInErr(ctx, "HandleFederatedLogin", err)
		return
	}

	h.renderSession(ctx, user)
}

// HandleRefresh godoc
// @Summary      Refresh the session token
// @Description  Re-reads the durable user record and reissues the token with current role/status claims.
// @Tags         auth
// @Produce      json
// @Success      200      {object}   response.LoginResponse
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/refresh [post]
// @Security BearerAuth
func (h *AuthHandler) HandleRefresh(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.Refresh(ctx.Request.Context(), actor.ID)
	if err != nil {
		h.renderSignInErr(ctx, "HandleRefresh", err)
		return
	}

	h.renderSession(ctx, user)
}

func (h *AuthHandler) renderSession(ctx *gin.Context, user domain.User) {
	token, err := jwthelper.GenerateToken(
		[]byte(h.conf.JWTSigningKey), user.ID, user.Email, string(user.Role), string(user.Status))
	if err != nil {
		err = fmt.Errorf("v1.renderSession -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}

func (h *AuthHandler) renderSignInErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrWrongPassword), errors.Is(err, service.ErrUserNotFound):
		response.RenderErr(ctx, response.ErrWrongCredentials(err))
	case errors.Is(err, service.ErrOrganizerNotApproved):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrOrganizerNotApproved))
	default:
		err = fmt.Errorf("v1.%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
