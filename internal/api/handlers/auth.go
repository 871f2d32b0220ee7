package handlers

import (
	"net/http"
	"time"

	"github.com/dom/videotube/internal/api/middleware"
	"github.com/dom/videotube/internal/api/response"
	"github.com/dom/videotube/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService    *service.AuthService
	accountService *service.AccountService
	uploads        Uploads
	accessTTL      time.Duration
	refreshTTL     time.Duration
	log            *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, accountService *service.AccountService, uploads Uploads, keys service.TokenKeys, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accountService: accountService,
		uploads:        uploads,
		accessTTL:      keys.AccessExpiry,
		refreshTTL:     keys.RefreshExpiry,
		log:            log,
	}
}

// Register expects multipart/form-data with the account fields plus the
// avatar and optional coverImage files.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.parseForm(w, r); err != nil {
		response.Error(w, h.log, "auth.Register", err)
		return
	}

	avatarPath, err := h.uploads.stage(r, "avatar")
	if err != nil {
		response.Error(w, h.log, "auth.Register", err)
		return
	}
	coverPath, err := h.uploads.stage(r, "coverImage")
	if err != nil {
		discard(avatarPath)
		response.Error(w, h.log, "auth.Register", err)
		return
	}
	defer discard(avatarPath, coverPath)

	user, err := h.accountService.Register(r.Context(), service.RegisterInput{
		FullName:       r.FormValue("fullname"),
		Email:          r.FormValue("email"),
		Username:       r.FormValue("username"),
		Password:       r.FormValue("password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		response.Error(w, h.log, "auth.Register", err)
		return
	}

	h.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	response.Success(w, http.StatusCreated, user, "User registered successfully")
}

// Login accepts a JSON or form body with username or email and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeRequest(r, &req); err != nil {
		response.Error(w, h.log, "auth.Login", err)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(w, h.log, "auth.Login", err)
		return
	}

	h.setSessionCookies(w, result.TokenPair)
	response.Success(w, http.StatusOK, result, "User logged In Successfully")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, h.log, "auth.Logout", service.ErrRefreshTokenRequired)
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		response.Error(w, h.log, "auth.Logout", err)
		return
	}

	clearCookie(w, middleware.AccessTokenCookie)
	clearCookie(w, middleware.RefreshTokenCookie)
	response.Success(w, http.StatusOK, struct{}{}, "User logged Out")
}

// RefreshAccessToken reads the refresh token from its cookie, falling back
// to a refreshToken field in the body.
func (h *AuthHandler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	var presented string
	if cookie, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req RefreshTokenRequest
		if err := decodeRequest(r, &req); err != nil {
			response.Error(w, h.log, "auth.RefreshAccessToken", err)
			return
		}
		presented = req.RefreshToken
	}

	pair, err := h.authService.Refresh(r.Context(), presented)
	if err != nil {
		response.Error(w, h.log, "auth.RefreshAccessToken", err)
		return
	}

	h.setSessionCookies(w, *pair)
	response.Success(w, http.StatusOK, pair, "Access token refreshed")
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair service.TokenPair) {
	setCookie(w, middleware.AccessTokenCookie, pair.AccessToken, h.accessTTL)
	setCookie(w, middleware.RefreshTokenCookie, pair.RefreshToken, h.refreshTTL)
}

func setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
