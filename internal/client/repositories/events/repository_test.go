package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/sparkbytes/internal/client/client"
	"github.com/dmitrijs2005/sparkbytes/internal/client/errs"
	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote is a tiny in-memory backend.
type fakeRemote struct {
	mu     sync.Mutex
	events []models.Event
	nextID int
	owner  string

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// listHook runs before ListEvents answers; it may block.
	listHook func(q models.ListQuery)

	queries     []models.ListQuery
	createCalls int
	deleteCalls int
}

// ListEvents answers from the state at the time of the call; listHook runs
// after that, so a blocked list returns what the backend held when it began.
func (f *fakeRemote) ListEvents(ctx context.Context, q models.ListQuery) ([]models.Event, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	err := f.listErr
	var out []models.Event
	for _, e := range f.events {
		if q.UserID == "" || e.UserID == q.UserID {
			out = append(out, e)
		}
	}
	hook := f.listHook
	f.mu.Unlock()

	if hook != nil {
		hook(q)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeRemote) CreateEvents(ctx context.Context, drafts []models.Event) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	var out []models.Event
	for _, d := range drafts {
		f.nextID++
		d.ID = fmt.Sprintf("ev-%d", f.nextID)
		d.UserID = f.owner
		f.events = append(f.events, d)
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeRemote) UpdateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return models.Event{}, f.updateErr
	}
	for i := range f.events {
		if f.events[i].ID == e.ID {
			f.events[i] = e
			return e, nil
		}
	}
	return models.Event{}, &client.APIError{StatusCode: 404, Detail: "Event not found"}
}

func (f *fakeRemote) DeleteEvent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.events {
		if f.events[i].ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return &client.APIError{StatusCode: 404, Detail: "Event not found"}
}

type recordingMirror struct {
	replaced  []string
	upserts   []string
	refreshes []string
	deletes   []string
	err       error
}

func (m *recordingMirror) Replace(ctx context.Context, scope string, events []models.Event) error {
	m.replaced = append(m.replaced, fmt.Sprintf("%s:%d", scope, len(events)))
	return m.err
}

func (m *recordingMirror) Upsert(ctx context.Context, scope string, e models.Event) error {
	m.upserts = append(m.upserts, scope+":"+e.ID)
	return m.err
}

func (m *recordingMirror) Refresh(ctx context.Context, e models.Event) error {
	m.refreshes = append(m.refreshes, e.ID)
	return m.err
}

func (m *recordingMirror) Delete(ctx context.Context, id string) error {
	m.deletes = append(m.deletes, id)
	return m.err
}

func confirm(answer bool) ConfirmFunc {
	return func(ctx context.Context, prompt string) (bool, error) { return answer, nil }
}

func seeded() *fakeRemote {
	return &fakeRemote{
		owner: "alice",
		events: []models.Event{
			{ID: "e1", UserID: "alice", Name: "Pizza"},
			{ID: "e2", UserID: "bob", Name: "Bagels"},
		},
	}
}

func newRepo(r Remote, opts ...Option) *Repository {
	return New(r, logging.NewDiscard(), opts...)
}

func TestList_SendsQueryAndFillsCache(t *testing.T) {
	fr := seeded()
	repo := newRepo(fr, WithListLimit(25))

	got, err := repo.List(context.Background(), "alice")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, got, repo.Events())
	assert.Equal(t, "alice", repo.Scope())
	assert.Equal(t, models.ListQuery{Limit: 25, Order: "desc", OrderBy: "created_at", UserID: "alice"}, fr.queries[0])
}

func TestList_FailureReturnsEmptyAndKeepsCache(t *testing.T) {
	fr := seeded()
	repo := newRepo(fr)
	_, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	before := repo.Events()

	fr.listErr = fmt.Errorf("post: %w", client.ErrUnavailable)
	got, err := repo.List(context.Background(), "bob")

	var fe *errs.FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, before, repo.Events())
	assert.Equal(t, "", repo.Scope())
}

func TestList_DropsDuplicateIDs(t *testing.T) {
	fr := &fakeRemote{events: []models.Event{{ID: "a"}, {ID: "a", Name: "dup"}, {ID: "b"}}}
	got, err := newRepo(fr).List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "", got[0].Name)
}

func TestList_SupersededResponseIsDiscarded(t *testing.T) {
	fr := seeded()
	release := make(chan struct{})
	entered := make(chan struct{})
	fr.listHook = func(q models.ListQuery) {
		if q.UserID == "bob" {
			close(entered)
			<-release
		}
	}
	repo := newRepo(fr)

	slowErr := make(chan error, 1)
	go func() {
		_, err := repo.List(context.Background(), "bob")
		slowErr <- err
	}()
	<-entered

	_, err := repo.List(context.Background(), "alice")
	require.NoError(t, err)

	close(release)
	assert.ErrorIs(t, <-slowErr, ErrStale)
	assert.Equal(t, "alice", repo.Scope())
	require.Len(t, repo.Events(), 1)
	assert.Equal(t, "e1", repo.Events()[0].ID)
}

func TestList_ResponsePredatingMutationIsDiscarded(t *testing.T) {
	fr := seeded()
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	fr.listHook = func(models.ListQuery) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}
	m := &recordingMirror{}
	repo := newRepo(fr, WithMirror(m))

	slowErr := make(chan error, 1)
	go func() {
		_, err := repo.List(context.Background(), "")
		slowErr <- err
	}()
	<-entered

	require.NoError(t, repo.Delete(context.Background(), "e1", nil))
	created, err := repo.Create(context.Background(), models.Event{Name: "Free Pizza"})
	require.NoError(t, err)

	close(release)
	assert.ErrorIs(t, <-slowErr, ErrStale)
	assert.Empty(t, m.replaced, "a discarded list must not reach the mirror")
	assert.Equal(t, []string{created.ID}, ids(repo.Events()))

	fresh, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e2", created.ID}, ids(fresh))
	assert.Equal(t, fresh, repo.Events())
}

func TestList_ResponseAfterCloseIsDiscarded(t *testing.T) {
	fr := seeded()
	release := make(chan struct{})
	entered := make(chan struct{})
	fr.listHook = func(models.ListQuery) {
		close(entered)
		<-release
	}
	repo := newRepo(fr)

	done := make(chan error, 1)
	go func() {
		_, err := repo.List(context.Background(), "")
		done <- err
	}()
	<-entered
	repo.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Empty(t, repo.Events())

	_, err := repo.List(context.Background(), "")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCreate_ServerIDAppearsInNextList(t *testing.T) {
	fr := seeded()
	repo := newRepo(fr)
	_, err := repo.List(context.Background(), "alice")
	require.NoError(t, err)

	created, err := repo.Create(context.Background(), models.Event{Name: "Tacos", Preferences: models.Preferences{IsHalal: true}})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 1, fr.createCalls)

	_, ok := repo.Find(created.ID)
	assert.True(t, ok, "created event must be cached")

	listed, err := repo.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Contains(t, ids(listed), created.ID)
}

func TestCreate_OutOfScopeNotCached(t *testing.T) {
	fr := seeded()
	repo := newRepo(fr)
	_, err := repo.List(context.Background(), "bob")
	require.NoError(t, err)

	created, err := repo.Create(context.Background(), models.Event{Name: "Soup"})
	require.NoError(t, err)

	_, ok := repo.Find(created.ID)
	assert.False(t, ok)
}

func TestCreate_RejectsNonDraft(t *testing.T) {
	fr := seeded()
	_, err := newRepo(fr).Create(context.Background(), models.Event{ID: "e1"})

	var pe *errs.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, errs.ErrNotDraft)
	assert.Zero(t, fr.createCalls)
}

func TestCreate_FailureLeavesCache(t *testing.T) {
	fr := seeded()
	repo := newRepo(fr)
	_, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	before := repo.Events()

	fr.createErr = &client.APIError{StatusCode: 422, Detail: "name required"}
	_, err = repo.Create(context.Background(), models.Event{})

	var pe *errs.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "name required", pe.Detail)
	assert.Equal(t, before, repo.Events())
}

type emptyCreateRemote struct{ *fakeRemote }

func (emptyCreateRemote) CreateEvents(ctx context.Context, drafts []models.Event) ([]models.Event, error) {
	return []models.Event{}, nil
}

func TestCreate_EmptyResponse(t *testing.T) {
	_, err := newRepo(emptyCreateRemote{seeded()}).Create(context.Background(), models.Event{Name: "x"})
	assert.ErrorIs(t, err, errs.ErrEmptyResponse)
}

func TestUpdate_ReplacesWholeRecord(t *testing.T) {
	fr := seeded()
	repo := newRepo(fr)
	_, err := repo.List(context.Background(), "")
	require.NoError(t, err)

	next := models.Event{ID: "e1", UserID: "alice", Name: "Pizza v2", Latitude: 42.35}
	got, err := repo.Update(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, next, got)

	cached, ok := repo.Find("e1")
	require.True(t, ok)
	assert.Equal(t, next, cached)
	assert.Len(t, repo.Events(), 2)
}

func TestUpdate_Failures(t *testing.T) {
	fr := seeded()
	repo := newRepo(fr)
	_, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	before := repo.Events()

	_, err = repo.Update(context.Background(), models.Event{Name: "draft"})
	assert.ErrorIs(t, err, errs.ErrMissingID)

	_, err = repo.Update(context.Background(), models.Event{ID: "missing"})
	var pe *errs.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Event not found", pe.Detail)

	assert.Equal(t, before, repo.Events())
}

func TestDelete_ConfirmedRemovesEntry(t *testing.T) {
	fr := seeded()
	m := &recordingMirror{}
	repo := newRepo(fr, WithMirror(m))
	_, err := repo.List(context.Background(), "")
	require.NoError(t, err)

	var prompt string
	err = repo.Delete(context.Background(), "e2", ConfirmFunc(func(ctx context.Context, p string) (bool, error) {
		prompt = p
		return true, nil
	}))
	require.NoError(t, err)

	assert.Equal(t, DeletePrompt, prompt)
	_, ok := repo.Find("e2")
	assert.False(t, ok)
	assert.Equal(t, []string{"e2"}, m.deletes)
}

func TestDelete_DeclinedMakesNoCall(t *testing.T) {
	fr := seeded()
	repo := newRepo(fr)
	_, err := repo.List(context.Background(), "")
	require.NoError(t, err)

	err = repo.Delete(context.Background(), "e1", confirm(false))

	assert.ErrorIs(t, err, errs.ErrCancelled)
	assert.Zero(t, fr.deleteCalls)
	assert.Len(t, repo.Events(), 2)
}

func TestDelete_UnknownIDLeavesCache(t *testing.T) {
	fr := seeded()
	repo := newRepo(fr)
	_, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	before := repo.Events()

	err = repo.Delete(context.Background(), "nope", confirm(true))

	var pe *errs.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, before, repo.Events())
}

func TestDelete_ConfirmerError(t *testing.T) {
	fr := seeded()
	err := newRepo(fr).Delete(context.Background(), "e1", ConfirmFunc(func(context.Context, string) (bool, error) {
		return false, errors.New("stdin closed")
	}))
	var pe *errs.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Zero(t, fr.deleteCalls)
}

func TestMirror_FollowsConfirmedChanges(t *testing.T) {
	fr := seeded()
	m := &recordingMirror{}
	repo := newRepo(fr, WithMirror(m))

	_, err := repo.List(context.Background(), "alice")
	require.NoError(t, err)
	created, err := repo.Create(context.Background(), models.Event{Name: "Cake"})
	require.NoError(t, err)
	_, err = repo.Update(context.Background(), models.Event{ID: "e1", UserID: "alice", Name: "Pizza!"})
	require.NoError(t, err)

	fr.updateErr = errors.New("boom")
	_, _ = repo.Update(context.Background(), models.Event{ID: "e1"})

	assert.Equal(t, []string{"alice:1"}, m.replaced)
	assert.Equal(t, []string{"alice:" + created.ID, ":" + created.ID, "alice:e1"}, m.upserts)
	assert.Empty(t, m.refreshes)
}

func TestMirror_ConfirmedChangesOutsideScope(t *testing.T) {
	fr := seeded()
	m := &recordingMirror{}
	repo := newRepo(fr, WithMirror(m))

	_, err := repo.List(context.Background(), "bob")
	require.NoError(t, err)

	created, err := repo.Create(context.Background(), models.Event{Name: "Soup"})
	require.NoError(t, err)
	_, err = repo.Update(context.Background(), models.Event{ID: "e1", UserID: "alice", Name: "Pizza, cold"})
	require.NoError(t, err)

	assert.Equal(t, []string{":" + created.ID}, m.upserts, "new events go to the all-events scope")
	assert.Equal(t, []string{"e1"}, m.refreshes, "uncached edits still refresh stored copies")
}

func TestMirror_FailureDoesNotFailOperation(t *testing.T) {
	repo := newRepo(seeded(), WithMirror(&recordingMirror{err: errors.New("disk full")}))
	_, err := repo.List(context.Background(), "")
	assert.NoError(t, err)
}

func TestEvents_ReturnsCopy(t *testing.T) {
	repo := newRepo(seeded())
	_, err := repo.List(context.Background(), "")
	require.NoError(t, err)

	evs := repo.Events()
	evs[0].Name = "mutated"
	assert.NotEqual(t, "mutated", repo.Events()[0].Name)
}

func ids(events []models.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
