package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/go-chi/render"
)

// ErrorResponse is the {"detail": "..."} body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{common.ErrValidation, http.StatusUnprocessableEntity},
	{common.ErrNotFound, http.StatusNotFound},
	{common.ErrInvalidCredentials, http.StatusUnauthorized},
	{common.ErrUnauthorized, http.StatusUnauthorized},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
	{common.ErrForbidden, http.StatusForbidden},
	{common.ErrAlreadyExists, http.StatusConflict},
}

// writeError maps err to a status code and a detail message. Unknown errors
// become 500 and are logged; their text is not sent.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			writeDetail(w, r, s.status, detailFor(err, s.err))
			return
		}
	}

	h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeDetail(w, r, http.StatusInternalServerError, "Internal server error")
}

func writeDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Detail: detail})
}

// detailFor drops a leading "<sentinel>: " and capitalizes the rest.
func detailFor(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
