// Package errs is the client's error taxonomy.
//
// Every failure of the client core degrades to a well-defined state and is
// reported as one of three kinds:
//
//   - SessionError: the session check, login or logout failed. The session
//     store has already fallen back to anonymous.
//   - FetchError: listing events failed. The caller got an empty list and the
//     cache is unchanged.
//   - PersistenceError: create, update, delete or a preference save failed.
//     Nothing local changed; the user may retry.
//
// Detail carries the backend's human-readable "detail" message when there is
// one. All three unwrap to the underlying cause, so errors.Is works against
// transport sentinels such as client.ErrUnavailable.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotDraft         = errors.New("event already has an id")
	ErrMissingID        = errors.New("event has no id")
	ErrCancelled        = errors.New("cancelled by user")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyResponse    = errors.New("empty response")
)

// DetailCarrier is implemented by transport errors that hold a server message.
type DetailCarrier interface {
	error
	ErrorDetail() string
}

func detailOf(err error) string {
	var dc DetailCarrier
	if errors.As(err, &dc) {
		return dc.ErrorDetail()
	}
	return ""
}

func format(kind, op, detail string, err error) string {
	switch {
	case detail != "":
		return fmt.Sprintf("%s %s: %s", kind, op, detail)
	case err != nil:
		return fmt.Sprintf("%s %s: %v", kind, op, err)
	default:
		return fmt.Sprintf("%s %s", kind, op)
	}
}

type SessionError struct {
	Op     string
	Detail string
	Err    error
}

func NewSessionError(op string, err error) *SessionError {
	return &SessionError{Op: op, Detail: detailOf(err), Err: err}
}

func (e *SessionError) Error() string { return format("session", e.Op, e.Detail, e.Err) }
func (e *SessionError) Unwrap() error { return e.Err }

type FetchError struct {
	Op     string
	Detail string
	Err    error
}

func NewFetchError(op string, err error) *FetchError {
	return &FetchError{Op: op, Detail: detailOf(err), Err: err}
}

func (e *FetchError) Error() string { return format("fetch", e.Op, e.Detail, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

type PersistenceError struct {
	Op     string
	Detail string
	Err    error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Detail: detailOf(err), Err: err}
}

func (e *PersistenceError) Error() string { return format("persistence", e.Op, e.Detail, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// UserMessage renders err the way the CLI shows it to the user: the server's
// detail when available, otherwise the error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if d := detailOf(err); d != "" {
		return d
	}
	var pe *PersistenceError
	if errors.As(err, &pe) && pe.Detail != "" {
		return pe.Detail
	}
	return err.Error()
}
