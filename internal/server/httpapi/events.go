package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// decode reads a JSON body into v. An empty body leaves v untouched when
// allowEmpty is set.
func decode(r *http.Request, v any, allowEmpty bool) error {
	err := render.DecodeJSON(r.Body, v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}
	return nil
}

func (h *handler) createEvents(w http.ResponseWriter, r *http.Request) {
	var drafts []models.Event
	if err := decode(r, &drafts, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.events.Create(r.Context(), userFromContext(r.Context()).UserID, drafts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, created)
}

func (h *handler) listEvents(w http.ResponseWriter, r *http.Request) {
	var req models.ListRequest
	if err := decode(r, &req, true); err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.events.List(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

func (h *handler) getEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, e)
}

func (h *handler) putEvent(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if err := decode(r, &e, false); err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.events.Put(r.Context(), userFromContext(r.Context()).UserID, chi.URLParam(r, "id"), e)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, updated)
}

func (h *handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.events.Delete(r.Context(), userFromContext(r.Context()).UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, deleted)
}
