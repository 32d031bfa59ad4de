package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
)

const maxErrorBody = 64 << 10

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the backend at baseURL, e.g.
// "http://localhost:8000".
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &HTTPClient{
		baseURL: u,
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", string(password))

	req, err := c.newRequest(ctx, http.MethodPost, "/login", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.send(req, &token); err != nil {
		return err
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%w: no access token", ErrMalformedResponse)
	}

	c.mu.Lock()
	c.accessToken = token.AccessToken
	c.mu.Unlock()
	return nil
}

func (c *HTTPClient) CheckSession(ctx context.Context) (models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/protected", nil, &u); err != nil {
		return models.User{}, err
	}
	if u.UserID == "" {
		return models.User{}, fmt.Errorf("%w: user without user_id", ErrMalformedResponse)
	}
	return u, nil
}

// Logout forgets the local credential even when the request fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	defer c.forgetCredentials()
	return c.do(ctx, http.MethodGet, "/logout", nil, nil)
}

func (c *HTTPClient) ListEvents(ctx context.Context, q models.ListQuery) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodPost, "/database/events/list", q, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

func (c *HTTPClient) CreateEvents(ctx context.Context, drafts []models.Event) ([]models.Event, error) {
	var created []models.Event
	if err := c.do(ctx, http.MethodPost, "/database/events", drafts, &created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *HTTPClient) UpdateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	var updated models.Event
	if err := c.do(ctx, http.MethodPut, "/database/events/"+url.PathEscape(e.ID), e, &updated); err != nil {
		return models.Event{}, err
	}
	return updated, nil
}

func (c *HTTPClient) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/database/events/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) (models.User, error) {
	body := models.PreferencesUpdate{Preferences: prefs, UserID: userID}

	var u models.User
	if err := c.do(ctx, http.MethodPut, "/database/users/"+url.PathEscape(userID), body, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (c *HTTPClient) forgetCredentials() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()

	jar := c.http.Jar
	expired := make([]*http.Cookie, 0)
	for _, ck := range jar.Cookies(c.baseURL) {
		expired = append(expired, &http.Cookie{Name: ck.Name, Path: "/", MaxAge: -1})
	}
	if len(expired) > 0 {
		jar.SetCookies(c.baseURL, expired)
	}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// readAPIError extracts "detail", which is either a string or, for
// request validation failures, a structured value that is kept verbatim.
func readAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		apiErr.Detail = strings.TrimSpace(string(raw))
		return apiErr
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		apiErr.Detail = s
	} else {
		apiErr.Detail = string(payload.Detail)
	}
	return apiErr
}

// IsUnavailable reports whether err means the backend could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
