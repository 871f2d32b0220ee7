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

var errInvalidVideoID = domain.BadRequest("Invalid video id")

type ProfileHandler struct {
	profileService *service.ProfileService
	log            *zap.Logger
}

func NewProfileHandler(profileService *service.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, log: log}
}

// GetUserChannelProfile is reachable anonymously; isSubscribed is only ever
// true for an authenticated viewer.
func (h *ProfileHandler) GetUserChannelProfile(w http.ResponseWriter, r *http.Request) {
	var viewerID *uuid.UUID
	if id, ok := middleware.GetUserID(r.Context()); ok {
		viewerID = &id
	}

	profile, err := h.profileService.GetChannelProfile(r.Context(), viewerID, chi.URLParam(r, "username"))
	if err != nil {
		response.Error(w, h.log, "profile.GetUserChannelProfile", err)
		return
	}

	response.Success(w, http.StatusOK, profile, "User channel fetched successfully")
}

func (h *ProfileHandler) GetWatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, h.log, "profile.GetWatchHistory", service.ErrRefreshTokenRequired)
		return
	}

	history, err := h.profileService.GetWatchHistory(r.Context(), userID)
	if err != nil {
		response.Error(w, h.log, "profile.GetWatchHistory", err)
		return
	}

	response.Success(w, http.StatusOK, history, "Watch history fetched successfully")
}

func (h *ProfileHandler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, h.log, "profile.RecordWatch", service.ErrRefreshTokenRequired)
		return
	}

	videoID, err := uuid.Parse(chi.URLParam(r, "videoId"))
	if err != nil {
		response.Error(w, h.log, "profile.RecordWatch", errInvalidVideoID.Wrap(err))
		return
	}

	if err := h.profileService.RecordWatch(r.Context(), userID, videoID); err != nil {
		response.Error(w, h.log, "profile.RecordWatch", err)
		return
	}

	response.Success(w, http.StatusOK, struct{}{}, "Watch recorded")
}
