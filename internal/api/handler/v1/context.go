package v1

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/arenahq/competition-api/internal/api/handler/v1/response"
	"github.com/arenahq/competition-api/internal/api/middleware"
	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/pkg/jwthelper"
)

var errNotAuthenticated = errors.New("not authenticated")

// getActorFromContext rebuilds the acting user from the session claims. This
// is deliberately a snapshot: role/status read here are whatever was embedded
// at issuance or last refresh, not a live database read.
func getActorFromContext(ctx *gin.Context) (domain.User, *response.Err) {
	value, exists := ctx.Get(middleware.ClaimsContextKey)
	if !exists {
		return domain.User{}, response.ErrUnauthorized(errNotAuthenticated)
	}

	claims, ok := value.(*jwthelper.Claims)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errNotAuthenticated)
	}

	return domain.User{
		ID:     claims.UserID,
		Email:  claims.Email,
		Role:   domain.Role(claims.Role),
		Status: domain.ApprovalStatus(claims.Status),
	}, nil
}
