package snapshot

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/logging"
)

type stubRemote struct {
	events []models.Event
	nextID int
}

func (s *stubRemote) ListEvents(ctx context.Context, q models.ListQuery) ([]models.Event, error) {
	var out []models.Event
	for _, e := range s.events {
		if q.UserID == "" || e.UserID == q.UserID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubRemote) CreateEvents(ctx context.Context, drafts []models.Event) ([]models.Event, error) {
	out := make([]models.Event, len(drafts))
	for i, d := range drafts {
		s.nextID++
		d.ID = fmt.Sprintf("new-%d", s.nextID)
		s.events = append(s.events, d)
		out[i] = d
	}
	return out, nil
}

func (s *stubRemote) UpdateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	return e, nil
}

func (s *stubRemote) DeleteEvent(ctx context.Context, id string) error {
	return nil
}

func discard() logging.Logger { return logging.NewDiscard() }
