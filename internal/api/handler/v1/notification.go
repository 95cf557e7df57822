package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arenahq/competition-api/internal/api/handler/v1/response"
	"github.com/arenahq/competition-api/internal/domain"
)

type NotificationService interface {
	GetForRecipient(ctx context.Context, email string) ([]domain.Notification, error)
}

type NotificationHandler struct {
	svc NotificationService
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{
		svc: svc,
	}
}

// HandleGetNotifications godoc
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Success      200      {array}    domain.Notification
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /notifications [get]
// @Security BearerAuth
func (h *NotificationHandler) HandleGetNotifications(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	notifications, err := h.svc.GetForRecipient(ctx.Request.Context(), actor.Email)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetNotifications -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}
