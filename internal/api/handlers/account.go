package handlers

import (
	"context"
	"net/http"

	"github.com/dom/videotube/internal/api/middleware"
	"github.com/dom/videotube/internal/api/response"
	"github.com/dom/videotube/internal/domain"
	"github.com/dom/videotube/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AccountHandler struct {
	accountService *service.AccountService
	uploads        Uploads
	log            *zap.Logger
}

func NewAccountHandler(accountService *service.AccountService, uploads Uploads, log *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		uploads:        uploads,
		log:            log,
	}
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, h.log, "account.ChangePassword", service.ErrRefreshTokenRequired)
		return
	}

	var req ChangePasswordRequest
	if err := decodeRequest(r, &req); err != nil {
		response.Error(w, h.log, "account.ChangePassword", err)
		return
	}

	if err := h.accountService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		response.Error(w, h.log, "account.ChangePassword", err)
		return
	}

	response.Success(w, http.StatusOK, struct{}{}, "Password changed successfully")
}

// GetCurrentUser echoes the user the auth middleware resolved.
func (h *AccountHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, h.log, "account.GetCurrentUser", service.ErrRefreshTokenRequired)
		return
	}
	response.Success(w, http.StatusOK, user, "User fetched successfully")
}

func (h *AccountHandler) UpdateAccountDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, h.log, "account.UpdateAccountDetails", service.ErrRefreshTokenRequired)
		return
	}

	var req UpdateAccountRequest
	if err := decodeRequest(r, &req); err != nil {
		response.Error(w, h.log, "account.UpdateAccountDetails", err)
		return
	}

	user, err := h.accountService.UpdateAccountDetails(r.Context(), userID, req.FullName, req.Email)
	if err != nil {
		response.Error(w, h.log, "account.UpdateAccountDetails", err)
		return
	}

	response.Success(w, http.StatusOK, user, "Account details updated successfully")
}

func (h *AccountHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "account.UpdateAvatar", h.accountService.UpdateAvatar, "Avatar image updated successfully")
}

func (h *AccountHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", "account.UpdateCoverImage", h.accountService.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdater func(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error)

func (h *AccountHandler) updateImage(w http.ResponseWriter, r *http.Request, field, op string, update imageUpdater, message string) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, h.log, op, service.ErrRefreshTokenRequired)
		return
	}

	if err := h.uploads.parseForm(w, r); err != nil {
		response.Error(w, h.log, op, err)
		return
	}

	path, err := h.uploads.stage(r, field)
	if err != nil {
		response.Error(w, h.log, op, err)
		return
	}
	defer discard(path)

	user, err := update(r.Context(), userID, path)
	if err != nil {
		response.Error(w, h.log, op, err)
		return
	}

	response.Success(w, http.StatusOK, user, message)
}
