package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/logging"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
	"github.com/dmitrijs2005/sparkbytes/internal/server/repositories/repomanager"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
)

// EventService owns the event catalogue. Anyone signed in may read; only
// the organizer may change or remove an event.
type EventService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	validate    *validator.Validate
	now         func() time.Time
	newID       func() string
}

func NewEventService(m repomanager.RepositoryManager, log logging.Logger) *EventService {
	return &EventService{
		repomanager: m,
		log:         log.With("service", "events"),
		validate:    newValidator(),
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

// Create stores every draft with a fresh id, callerID as organizer and the
// current time. The batch is all-or-nothing.
func (s *EventService) Create(ctx context.Context, callerID string, drafts []models.Event) ([]models.Event, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no events given", common.ErrValidation)
	}

	now := s.now().Unix()
	out := make([]models.Event, len(drafts))
	for i, d := range drafts {
		if err := s.validate.Struct(d); err != nil {
			return nil, validationError(err)
		}
		d.ID = s.newID()
		d.UserID = callerID
		d.CreatedAt = now
		out[i] = d
	}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		return m.Events().Create(ctx, out)
	})
	if err != nil {
		return nil, fmt.Errorf("create events: %w", err)
	}

	s.log.Info(ctx, "events created", "user_id", callerID, "count", len(out))
	return out, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	e, err := s.repomanager.Events().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", id, err)
	}
	return e, nil
}

// Put replaces the editable fields of event id. A body id, if present, must
// match the path id.
func (s *EventService) Put(ctx context.Context, callerID, id string, e models.Event) (*models.Event, error) {
	if e.ID != "" && e.ID != id {
		return nil, fmt.Errorf("%w: body id %q does not match %q", common.ErrValidation, e.ID, id)
	}
	if err := s.validate.Struct(e); err != nil {
		return nil, validationError(err)
	}
	e.ID = id

	var updated *models.Event
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		if err := s.checkOwner(ctx, m, callerID, id); err != nil {
			return err
		}
		var err error
		updated, err = m.Events().Update(ctx, e)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", id, err)
	}
	return updated, nil
}

// Delete removes event id and returns it as it was.
func (s *EventService) Delete(ctx context.Context, callerID, id string) (*models.Event, error) {
	var deleted *models.Event
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		e, err := m.Events().Get(ctx, id)
		if err != nil {
			return err
		}
		if e.UserID != callerID {
			return fmt.Errorf("%w: not the organizer", common.ErrForbidden)
		}
		if err := m.Events().Delete(ctx, id); err != nil {
			return err
		}
		deleted = e
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", id, err)
	}

	s.log.Info(ctx, "event deleted", "user_id", callerID, "id", id)
	return deleted, nil
}

// List applies defaults, validates the request and checks that cursor ids
// exist.
func (s *EventService) List(ctx context.Context, req models.ListRequest) ([]models.Event, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	for _, cursor := range []string{req.AfterID, req.BeforeID} {
		if cursor == "" {
			continue
		}
		if _, err := s.repomanager.Events().Get(ctx, cursor); err != nil {
			return nil, fmt.Errorf("event %q: %w", cursor, err)
		}
	}

	return s.repomanager.Events().List(ctx, req)
}

func (s *EventService) checkOwner(ctx context.Context, m repomanager.RepositoryManager, callerID, id string) error {
	cur, err := m.Events().Get(ctx, id)
	if err != nil {
		return err
	}
	if cur.UserID != callerID {
		return fmt.Errorf("%w: not the organizer", common.ErrForbidden)
	}
	return nil
}
