package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// putUser saves the dietary preferences of the user in the path.
func (h *handler) putUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body models.PreferencesUpdate
	if err := decode(r, &body, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	if body.UserID != "" && body.UserID != id {
		h.writeError(w, r, fmt.Errorf("%w: body user_id %q does not match %q", common.ErrValidation, body.UserID, id))
		return
	}

	u, err := h.users.UpdatePreferences(r.Context(), userFromContext(r.Context()).UserID, id, body.Preferences)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, u)
}
