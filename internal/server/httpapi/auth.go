package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/go-chi/render"
)

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// login takes form fields username and password. The token is returned in
// the body and also set as an HttpOnly cookie.
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: malformed form", common.ErrValidation))
		return
	}
	username := r.PostForm.Get("username")
	password := []byte(r.PostForm.Get("password"))
	defer common.WipeByteArray(password)

	if username == "" || len(password) == 0 {
		h.writeError(w, r, fmt.Errorf("%w: username and password are required", common.ErrValidation))
		return
	}

	token, err := h.users.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			h.metrics.loginFailures.Inc()
		}
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.AccessTokenValidityDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	render.JSON(w, r, loginResponse{AccessToken: token, TokenType: "bearer"})
}

// logout expires the session cookie. It succeeds without a session too.
func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	render.JSON(w, r, map[string]string{"message": "Logged out"})
}

// protected returns the signed-in user.
func (h *handler) protected(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, userFromContext(r.Context()))
}
