// Package session holds the client's single source of truth for "who is
// signed in".
//
// The Store is an explicit state machine:
//
//	Unknown ──Mount──▶ Loading ──ok──▶ Authenticated
//	                      │
//	                      └──fail──▶ Anonymous
//
// Loading is re-entered only by an explicit CheckSession (for example after
// Login). UpdateUser and Logout move between Authenticated and Anonymous
// synchronously. The user is never persisted; every process start derives it
// from the backend again.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sparkbytes/internal/client/errs"
	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/logging"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusLoading
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// State is a snapshot of the store. User is non-nil iff Status is
// StatusAuthenticated.
type State struct {
	Status Status
	User   *models.User
}

// Resolved reports whether a session check has settled.
func (s State) Resolved() bool {
	return s.Status == StatusAuthenticated || s.Status == StatusAnonymous
}

// Client is the part of the backend contract the store needs.
type Client interface {
	Login(ctx context.Context, username string, password []byte) error
	CheckSession(ctx context.Context) (models.User, error)
	Logout(ctx context.Context) error
}

type Store struct {
	client Client
	log    logging.Logger

	mountOnce sync.Once

	mu      sync.RWMutex
	state   State
	settled chan struct{}
	subs    map[int]chan State
	nextSub int
}

func NewStore(c Client, log logging.Logger) *Store {
	return &Store{
		client:  c,
		log:     log.With("component", "session"),
		state:   State{Status: StatusUnknown},
		settled: make(chan struct{}),
		subs:    make(map[int]chan State),
	}
}

// Mount starts the automatic session check. Only the first call has any
// effect: the store enters Loading before Mount returns and the check runs in
// the background. Use Settled to wait for it.
func (s *Store) Mount(ctx context.Context) {
	s.mountOnce.Do(func() {
		done := s.beginCheck()
		go func() {
			_, _ = s.runCheck(ctx, done)
		}()
	})
}

// CheckSession asks the backend who the current credential belongs to.
// Success moves the store to Authenticated; any failure (unreachable
// backend, 401, malformed payload) moves it to Anonymous and returns a
// *errs.SessionError. The store never stays in Loading once this returns.
func (s *Store) CheckSession(ctx context.Context) (*models.User, error) {
	done := s.beginCheck()
	return s.runCheck(ctx, done)
}

// Login posts credentials and then re-checks the session.
func (s *Store) Login(ctx context.Context, username string, password []byte) (*models.User, error) {
	if err := s.client.Login(ctx, username, password); err != nil {
		s.log.Warn(ctx, "login failed", "username", username, "error", err)
		return nil, errs.NewSessionError("login", err)
	}
	return s.CheckSession(ctx)
}

// Settled blocks until the session check in flight (or the first one, if
// Mount has not run yet) resolves.
func (s *Store) Settled(ctx context.Context) error {
	s.mu.RLock()
	ch := s.settled
	s.mu.RUnlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateUser replaces the cached user with u as given. nil signs the user out
// locally.
func (s *Store) UpdateUser(u *models.User) {
	if u == nil {
		s.resolve(State{Status: StatusAnonymous}, nil)
		return
	}
	cp := *u
	s.resolve(State{Status: StatusAuthenticated, User: &cp}, nil)
}

// Logout asks the backend to end the session and signs out locally no matter
// what the backend says. A remote failure is logged and returned, but the
// store is already Anonymous by then.
func (s *Store) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	s.UpdateUser(nil)
	if err != nil {
		s.log.Warn(ctx, "remote logout failed, signed out locally", "error", err)
		return errs.NewSessionError("logout", err)
	}
	return nil
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// User returns a copy of the signed-in user.
func (s *Store) User() (models.User, bool) {
	st := s.State()
	if st.User == nil {
		return models.User{}, false
	}
	return *st.User, true
}

// Subscribe delivers every state change. Slow subscribers miss intermediate
// states but always get the latest one. Call the returned func to stop.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	}
}

// beginCheck enters Loading and returns the channel to close on resolution.
func (s *Store) beginCheck() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.settled:
		s.settled = make(chan struct{})
	default:
	}
	s.setLocked(State{Status: StatusLoading})
	return s.settled
}

func (s *Store) runCheck(ctx context.Context, done chan struct{}) (user *models.User, err error) {
	resolved := false
	defer func() {
		if p := recover(); p != nil {
			s.resolve(State{Status: StatusAnonymous}, done)
			panic(p)
		}
		if !resolved {
			s.resolve(State{Status: StatusAnonymous}, done)
		}
	}()

	u, err := s.client.CheckSession(ctx)
	if err == nil && u.UserID == "" {
		err = errors.New("session payload without user_id")
	}
	if err != nil {
		s.log.Warn(ctx, "session check failed, continuing as anonymous", "error", err)
		s.resolve(State{Status: StatusAnonymous}, done)
		resolved = true
		return nil, errs.NewSessionError("check", err)
	}

	if !s.resolve(State{Status: StatusAuthenticated, User: &u}, done) {
		s.log.Debug(ctx, "stale session check discarded", "user_id", u.UserID)
	}
	resolved = true

	cp := u
	return &cp, nil
}

// resolve sets the state and reports whether it was applied. A check
// resolves only its own cycle (done); once superseded by UpdateUser or a
// newer check its result is dropped.
func (s *Store) resolve(st State, done chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case done != nil && done != s.settled:
		return false
	case done != nil:
		closeOnce(done)
	case s.state.Status == StatusLoading:
		// UpdateUser settles the check in flight and detaches it.
		closeOnce(s.settled)
		s.settled = make(chan struct{})
		close(s.settled)
	}
	s.setLocked(st)
	return true
}

func (s *Store) setLocked(st State) {
	s.state = st
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- copyState(st)
	}
}

func closeOnce(ch chan struct{}) {
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func copyState(st State) State {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s State) String() string {
	if s.User != nil {
		return fmt.Sprintf("%s(%s)", s.Status, s.User.UserID)
	}
	return s.Status.String()
}
