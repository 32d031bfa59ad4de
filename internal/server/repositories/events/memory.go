package events

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
)

// MemoryRepository is the in-process store used without a database.
type MemoryRepository struct {
	mu     sync.RWMutex
	events map[string]models.Event
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{events: make(map[string]models.Event)}
}

func (r *MemoryRepository) Create(ctx context.Context, events []models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range events {
		if _, ok := r.events[e.ID]; ok {
			return common.ErrAlreadyExists
		}
	}
	for _, e := range events {
		r.events[e.ID] = e
	}
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &e, nil
}

func (r *MemoryRepository) Update(ctx context.Context, e models.Event) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.events[e.ID]
	if !ok {
		return nil, common.ErrNotFound
	}
	e.UserID = cur.UserID
	e.CreatedAt = cur.CreatedAt
	r.events[e.ID] = e
	return &e, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context, req models.ListRequest) ([]models.Event, error) {
	if _, err := orderColumn(req.OrderBy); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	compare := func(a, b models.Event) int {
		switch req.OrderBy {
		case models.OrderByStartTime:
			return cmp.Compare(a.StartTime, b.StartTime)
		case models.OrderByName:
			return cmp.Compare(a.Name, b.Name)
		}
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	}

	var after, before *models.Event
	if req.AfterID != "" {
		e, ok := r.events[req.AfterID]
		if !ok {
			return []models.Event{}, nil
		}
		after = &e
	}
	if req.BeforeID != "" {
		e, ok := r.events[req.BeforeID]
		if !ok {
			return []models.Event{}, nil
		}
		before = &e
	}

	out := []models.Event{}
	for _, e := range r.events {
		if req.UserID != nil && e.UserID != *req.UserID {
			continue
		}
		if after != nil && compare(e, *after) <= 0 {
			continue
		}
		if before != nil && compare(e, *before) >= 0 {
			continue
		}
		out = append(out, e)
	}

	slices.SortFunc(out, func(a, b models.Event) int {
		c := cmp.Or(compare(a, b), cmp.Compare(a.ID, b.ID))
		if req.Order == models.OrderAsc {
			return c
		}
		return -c
	})

	if len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}
