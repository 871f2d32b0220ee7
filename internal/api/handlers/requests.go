package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
)

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) bindForm(form url.Values) {
	req.Username = form.Get("username")
	req.Email = form.Get("email")
	req.Password = form.Get("password")
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (req *RefreshTokenRequest) bindForm(form url.Values) {
	req.RefreshToken = form.Get("refreshToken")
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (req *ChangePasswordRequest) bindForm(form url.Values) {
	req.OldPassword = form.Get("oldPassword")
	req.NewPassword = form.Get("newPassword")
}

type UpdateAccountRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

func (req *UpdateAccountRequest) bindForm(form url.Values) {
	req.FullName = form.Get("fullname")
	req.Email = form.Get("email")
}

type formBinder interface {
	bindForm(form url.Values)
}

// decodeRequest fills req from a JSON body or from form values, depending on
// the request content type. An empty JSON body leaves req zeroed.
func decodeRequest(r *http.Request, req formBinder) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
			return errInvalidBody.Wrap(err)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return errInvalidBody.Wrap(err)
	}
	req.bindForm(r.Form)
	return nil
}
