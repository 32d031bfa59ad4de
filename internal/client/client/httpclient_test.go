package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPClient("localhost", time.Second)
	require.Error(t, err)
}

func TestLogin_ThenCheckSession_SendsCredential(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") != "student" || r.PostForm.Get("password") != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok", "token_type": "bearer"})
	})
	mux.HandleFunc("GET /protected", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("access_token")
		if err != nil || ck.Value != "tok" || r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, models.User{UserID: "student", Preferences: models.Preferences{IsVegan: true}})
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.CheckSession(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	err = c.Login(ctx, "student", []byte("wrong"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Incorrect username or password", apiErr.Detail)

	require.NoError(t, c.Login(ctx, "student", []byte("secret")))

	u, err := c.CheckSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "student", u.UserID)
	assert.True(t, u.IsVegan)
}

func TestCheckSession_MalformedPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /protected", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Hello, student!"})
	})
	c, _ := newTestClient(t, mux)

	_, err := c.CheckSession(context.Background())
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestLogout_ForgetsCredentialEvenOnFailure(t *testing.T) {
	var sawAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok"})
	})
	mux.HandleFunc("GET /logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "student", []byte("secret")))
	require.Error(t, c.Logout(ctx))

	require.NoError(t, c.Ping(ctx))
	assert.Empty(t, sawAuth)
}

func TestListEvents_SendsQueryAndNormalizesNull(t *testing.T) {
	var got models.ListQuery
	mux := http.NewServeMux()
	mux.HandleFunc("POST /database/events/list", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	})
	c, _ := newTestClient(t, mux)

	events, err := c.ListEvents(context.Background(), models.ListQuery{Limit: 100, Order: "desc", OrderBy: "created_at", UserID: "u1"})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
	assert.Equal(t, models.ListQuery{Limit: 100, Order: "desc", OrderBy: "created_at", UserID: "u1"}, got)
}

func TestCreateEvents_SendsBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /database/events", func(w http.ResponseWriter, r *http.Request) {
		var batch []models.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		require.Len(t, batch, 1)
		batch[0].ID = "srv-1"
		writeJSON(w, http.StatusOK, batch)
	})
	c, _ := newTestClient(t, mux)

	created, err := c.CreateEvents(context.Background(), []models.Event{{Name: "Free Pizza"}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "srv-1", created[0].ID)
	assert.Equal(t, "Free Pizza", created[0].Name)
}

func TestUpdateAndDelete_ErrorDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /database/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"loc": "name", "msg": "field required"}},
		})
	})
	mux.HandleFunc("DELETE /database/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Event " + r.PathValue("id") + " not found"})
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.UpdateEvent(ctx, models.Event{ID: "e1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.JSONEq(t, `[{"loc":"name","msg":"field required"}]`, apiErr.Detail)

	err = c.DeleteEvent(ctx, "missing")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Event missing not found", apiErr.ErrorDetail())
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestUpdatePreferences_SendsUserID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /database/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body models.PreferencesUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, r.PathValue("id"), body.UserID)
		writeJSON(w, http.StatusOK, models.User{UserID: body.UserID, CreatedAt: 42, Preferences: body.Preferences})
	})
	c, _ := newTestClient(t, mux)

	u, err := c.UpdatePreferences(context.Background(), "student", models.Preferences{IsHalal: true})
	require.NoError(t, err)
	assert.Equal(t, models.User{UserID: "student", CreatedAt: 42, Preferences: models.Preferences{IsHalal: true}}, u)
}

func TestTransportFailure_IsUnavailable(t *testing.T) {
	c, srv := newTestClient(t, http.NewServeMux())
	srv.Close()

	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsUnavailable(err))
}

func TestCancelledContext_ReturnsContextError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c, _ := newTestClient(t, mux)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Ping(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
