package handlers

import (
	"net/http"

	"github.com/dom/videotube/internal/api/middleware"
	"github.com/dom/videotube/internal/api/response"
	"github.com/dom/videotube/internal/domain"
	"github.com/dom/videotube/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errInvalidChannelID = domain.BadRequest("Invalid channel id")

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
	log                 *zap.Logger
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService, log *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, log: log}
}

func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, h.log, "subscription.Toggle", service.ErrRefreshTokenRequired)
		return
	}

	channelID, err := uuid.Parse(chi.URLParam(r, "channelId"))
	if err != nil {
		response.Error(w, h.log, "subscription.Toggle", errInvalidChannelID.Wrap(err))
		return
	}

	state, err := h.subscriptionService.Toggle(r.Context(), userID, channelID)
	if err != nil {
		response.Error(w, h.log, "subscription.Toggle", err)
		return
	}

	message := "Unsubscribed successfully"
	if state.Subscribed {
		message = "Subscribed successfully"
	}
	response.Success(w, http.StatusOK, state, message)
}
