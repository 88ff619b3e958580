package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"notesheet/internal/dto"
	"notesheet/internal/entity"
	"notesheet/internal/pkg/logger"
	"notesheet/internal/repository/memory"
	"notesheet/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "notebookAppData"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, event.EventType())
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

type failingRepository struct {
	*memory.SnapshotRepository
	failPut bool
}

func (r *failingRepository) Put(ctx context.Context, key string, value []byte) error {
	if r.failPut {
		return errors.New("disk full")
	}
	return r.SnapshotRepository.Put(ctx, key, value)
}

type notebookFixture struct {
	svc   *notebookService
	repo  *failingRepository
	clock *fakeClock
	pub   *recordingPublisher
}

func newNotebookFixture(t *testing.T, stored string) *notebookFixture {
	t.Helper()

	repo := &failingRepository{SnapshotRepository: memory.NewSnapshotRepository()}
	if stored != "" {
		require.NoError(t, repo.Put(context.Background(), testKey, []byte(stored)))
	}
	clock := newFakeClock()
	pub := &recordingPublisher{}

	svc := NewNotebookService(repo, testKey, pub, logger.NewNopLogger()).(*notebookService)
	svc.now = clock.Now

	return &notebookFixture{svc: svc, repo: repo, clock: clock, pub: pub}
}

func (f *notebookFixture) load(t *testing.T) *dto.StoreState {
	t.Helper()
	state, err := f.svc.Load(context.Background())
	require.NoError(t, err)
	return state
}

func (f *notebookFixture) stored(t *testing.T) map[string]interface{} {
	t.Helper()
	raw, err := f.repo.Get(context.Background(), testKey)
	require.NoError(t, err)
	require.NotNil(t, raw)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func strPtr(s string) *string { return &s }

const twoSheetSnapshot = `{
	"notebooks": [
		{
			"id": "nb-1",
			"name": "Work",
			"cover": "green",
			"created": "2024-01-01T10:00:00Z",
			"updated": "2024-01-02T10:00:00Z",
			"sheets": [
				{"id": "s-1", "title": "Plan", "content": "<p>quarterly plan</p>", "created": "2024-01-01T10:00:00Z", "updated": "2024-01-01T10:00:00Z"},
				{"id": "s-2", "title": "Ideas", "content": "<p>ship the offline mode</p>", "created": "2024-01-02T10:00:00Z", "updated": "2024-01-02T10:00:00Z"}
			]
		},
		{
			"id": "nb-2",
			"name": "Home",
			"cover": "custom",
			"customCoverData": "data:image/png;base64,AAAA",
			"created": "2024-01-03T10:00:00Z",
			"updated": "2024-01-03T10:00:00Z",
			"sheets": [
				{"id": "s-3", "title": "Groceries", "content": "<ul><li>milk</li><li>bread</li></ul>", "created": "2024-01-03T10:00:00Z", "updated": "2024-01-03T10:00:00Z"}
			]
		}
	],
	"lastSave": "2024-01-03T10:00:00Z"
}`

func TestNotebookService_LoadSeedsWhenEmpty(t *testing.T) {
	f := newNotebookFixture(t, "")
	state := f.load(t)

	require.Len(t, state.Notebooks, 1)
	assert.Equal(t, "My Notebook", state.Notebooks[0].Name)
	assert.Equal(t, "blue", state.Notebooks[0].Cover.Key)
	require.NotNil(t, state.CurrentSheet)
	assert.Equal(t, "Welcome", state.CurrentSheet.Title)
	assert.Nil(t, state.LastSave)
	assert.Equal(t, "never", state.LastSaveLabel)
	assert.False(t, f.svc.Dirty())
	assert.Contains(t, f.pub.Types(), events.StoreLoaded)

	// Seeding alone does not write anything.
	raw, err := f.repo.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestNotebookService_LoadSeedsWhenNotebookListEmpty(t *testing.T) {
	f := newNotebookFixture(t, `{"notebooks": []}`)
	state := f.load(t)

	require.Len(t, state.Notebooks, 1)
	assert.Equal(t, "My Notebook", state.Notebooks[0].Name)
}

func TestNotebookService_LoadSelectsFirstNotebookAndSheet(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	state := f.load(t)

	assert.Equal(t, "nb-1", state.CurrentNotebookId)
	assert.Equal(t, "s-1", state.CurrentSheetId)
	require.NotNil(t, state.LastSave)
	assert.Equal(t, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), state.LastSave.UTC())
	require.Len(t, state.Notebooks, 2)
	assert.Equal(t, "custom", state.Notebooks[1].Cover.Key)
	assert.Equal(t, "data:image/png;base64,AAAA", state.Notebooks[1].Cover.CustomCoverData)
	require.NotNil(t, state.CurrentNotebook)
	assert.Len(t, state.CurrentNotebook.Sheets, 2)
}

func TestNotebookService_LoadMigratesLegacyNotebook(t *testing.T) {
	f := newNotebookFixture(t, `{"notebooks":[{"id":"old","name":"Legacy","cover":"red","content":"<p>hello</p>","created":"2023-05-01T00:00:00Z","updated":"2023-05-02T00:00:00Z"}]}`)
	state := f.load(t)

	require.NotNil(t, state.CurrentSheet)
	assert.Equal(t, "Sheet 1", state.CurrentSheet.Title)
	assert.Equal(t, "<p>hello</p>", state.CurrentSheet.Content)
	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), state.CurrentSheet.Created.UTC())
}

func TestNotebookService_LoadRejectsMalformedSnapshot(t *testing.T) {
	f := newNotebookFixture(t, `{"notebooks": [`)
	_, err := f.svc.Load(context.Background())
	assert.Error(t, err)
}

func TestNotebookService_SaveWritesSnapshotAndLastSave(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)
	f.clock.Advance(time.Minute)

	state, err := f.svc.Save(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state.LastSave)
	assert.Equal(t, f.clock.Now(), *state.LastSave)
	assert.Equal(t, "just now", state.LastSaveLabel)

	doc := f.stored(t)
	assert.Len(t, doc["notebooks"], 2)
	assert.NotEmpty(t, doc["lastSave"])
	assert.Contains(t, f.pub.Types(), events.StoreSaved)
}

func TestNotebookService_SaveFailureKeepsMemoryState(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)

	assert.True(t, f.svc.FlushContent("<p>unsaved</p>"))
	f.repo.failPut = true

	_, err := f.svc.Save(context.Background())
	require.Error(t, err)
	assert.True(t, f.svc.Dirty())

	_, content, ok := f.svc.CurrentContent()
	require.True(t, ok)
	assert.Equal(t, "<p>unsaved</p>", content)
}

func TestNotebookService_FailedStructuralSaveLeavesStoreDirty(t *testing.T) {
	ops := map[string]func(f *notebookFixture) error{
		"create": func(f *notebookFixture) error {
			_, err := f.svc.CreateNotebook(context.Background(), &dto.CreateNotebookRequest{Name: "Trips"}, nil)
			return err
		},
		"rename sheet": func(f *notebookFixture) error {
			_, err := f.svc.RenameSheet(context.Background(), &dto.UpdateSheetRequest{Id: "s-2", Title: "Later"})
			return err
		},
		"delete sheet": func(f *notebookFixture) error {
			_, err := f.svc.DeleteSheet(context.Background(), "s-2", nil)
			return err
		},
		"update notebook": func(f *notebookFixture) error {
			_, err := f.svc.UpdateNotebook(context.Background(), &dto.UpdateNotebookRequest{Id: "nb-1", Name: "Office"})
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			f := newNotebookFixture(t, twoSheetSnapshot)
			f.load(t)
			require.False(t, f.svc.Dirty())

			f.repo.failPut = true
			require.Error(t, op(f))
			assert.True(t, f.svc.Dirty())

			f.repo.failPut = false
			_, err := f.svc.Save(context.Background())
			require.NoError(t, err)
			assert.False(t, f.svc.Dirty())
		})
	}
}

func TestNotebookService_PersistedStateRoundTrips(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)
	_, err := f.svc.SaveContent(context.Background(), "<p>edited plan</p>")
	require.NoError(t, err)

	reloaded := NewNotebookService(f.repo, testKey, nil, logger.NewNopLogger())
	state, err := reloaded.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "<p>edited plan</p>", state.CurrentSheet.Content)
	require.Len(t, state.Notebooks, 2)
	assert.Equal(t, "Home", state.Notebooks[1].Name)
}

func TestNotebookService_SelectNotebook(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)
	f.clock.Advance(time.Hour)

	state, ok := f.svc.SelectNotebook(context.Background(), "nb-2", strPtr("<p>draft plan</p>"))
	require.True(t, ok)
	assert.Equal(t, "nb-2", state.CurrentNotebookId)
	assert.Equal(t, "s-3", state.CurrentSheetId)

	// The draft landed in the sheet that was active before the switch.
	state, ok = f.svc.SelectNotebook(context.Background(), "nb-1", nil)
	require.True(t, ok)
	assert.Equal(t, "<p>draft plan</p>", state.CurrentSheet.Content)
	assert.Equal(t, f.clock.Now(), state.CurrentSheet.Updated)
	assert.True(t, f.svc.Dirty())
}

func TestNotebookService_SelectUnknownIdsAreNoOps(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)

	state, ok := f.svc.SelectNotebook(context.Background(), "missing", strPtr("<p>lost?</p>"))
	assert.False(t, ok)
	assert.Equal(t, "nb-1", state.CurrentNotebookId)

	state, ok = f.svc.SelectSheet(context.Background(), "s-3", nil) // belongs to another notebook
	assert.False(t, ok)
	assert.Equal(t, "s-1", state.CurrentSheetId)

	assert.Equal(t, "<p>quarterly plan</p>", state.CurrentSheet.Content)
	assert.False(t, f.svc.Dirty())
}

func TestNotebookService_SelectSheetFlushesLiveContent(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)

	state, ok := f.svc.SelectSheet(context.Background(), "s-2", strPtr("<p>new plan</p>"))
	require.True(t, ok)
	assert.Equal(t, "s-2", state.CurrentSheetId)
	assert.Equal(t, "<p>ship the offline mode</p>", state.CurrentSheet.Content)

	state, _ = f.svc.SelectSheet(context.Background(), "s-1", nil)
	assert.Equal(t, "<p>new plan</p>", state.CurrentSheet.Content)
	assert.Contains(t, f.pub.Types(), events.SheetSelected)
}

func TestNotebookService_FlushUnchangedContentKeepsTimestamps(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	before := f.load(t)
	f.clock.Advance(time.Hour)

	assert.False(t, f.svc.FlushContent("<p>quarterly plan</p>"))
	state := f.svc.State()
	assert.Equal(t, before.CurrentSheet.Updated, state.CurrentSheet.Updated)
	assert.Equal(t, before.Notebooks[0].Updated, state.Notebooks[0].Updated)
	assert.False(t, f.svc.Dirty())
}

func TestNotebookService_CreateNotebook(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)

	state, err := f.svc.CreateNotebook(context.Background(), &dto.CreateNotebookRequest{
		Name:  "  Travel  ",
		Cover: "teal",
	}, strPtr("<p>plan before leaving</p>"))
	require.NoError(t, err)

	require.Len(t, state.Notebooks, 3)
	created := state.Notebooks[2]
	assert.Equal(t, "Travel", created.Name)
	assert.Equal(t, "teal", created.Cover.Key)
	assert.Equal(t, created.Id, state.CurrentNotebookId)
	require.NotNil(t, state.CurrentSheet)
	assert.Equal(t, "Sheet 1", state.CurrentSheet.Title)
	assert.Empty(t, state.CurrentSheet.Content)
	assert.False(t, f.svc.Dirty())

	doc := f.stored(t)
	notebooks := doc["notebooks"].([]interface{})
	require.Len(t, notebooks, 3)
	first := notebooks[0].(map[string]interface{})
	sheet := first["sheets"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "<p>plan before leaving</p>", sheet["content"])
	assert.Contains(t, f.pub.Types(), events.NotebookCreated)
}

func TestNotebookService_CreateNotebookWithCustomCover(t *testing.T) {
	f := newNotebookFixture(t, "")
	f.load(t)

	state, err := f.svc.CreateNotebook(context.Background(), &dto.CreateNotebookRequest{
		Name:            "Photos",
		Cover:           "custom",
		CustomCoverData: "data:image/jpeg;base64,/9j/",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom", state.CurrentNotebook.Cover.Key)
	assert.Contains(t, state.CurrentNotebook.Cover.Background, "data:image/jpeg")
}

func TestNotebookService_CreateNotebookRejectsInvalidCover(t *testing.T) {
	f := newNotebookFixture(t, "")
	f.load(t)

	_, err := f.svc.CreateNotebook(context.Background(), &dto.CreateNotebookRequest{
		Name:            "Broken",
		Cover:           "custom",
		CustomCoverData: "https://example.com/cat.png",
	}, strPtr("<p>should not flush</p>"))
	require.ErrorIs(t, err, entity.ErrInvalidCover)

	state := f.svc.State()
	assert.Len(t, state.Notebooks, 1)
	assert.NotEqual(t, "<p>should not flush</p>", state.CurrentSheet.Content)
}

func TestNotebookService_UpdateNotebook(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)
	f.clock.Advance(time.Minute)

	state, err := f.svc.UpdateNotebook(context.Background(), &dto.UpdateNotebookRequest{Id: "nb-2", Name: "House", Cover: "pink"})
	require.NoError(t, err)
	assert.Equal(t, "House", state.Notebooks[1].Name)
	assert.Equal(t, "pink", state.Notebooks[1].Cover.Key)
	assert.Equal(t, f.clock.Now(), state.Notebooks[1].Updated)

	_, err = f.svc.UpdateNotebook(context.Background(), &dto.UpdateNotebookRequest{Id: "nope", Name: "x"})
	assert.ErrorIs(t, err, entity.ErrNotebookNotFound)
}

func TestNotebookService_AddSheet(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)

	state, err := f.svc.AddSheet(context.Background(), "  ", strPtr("<p>flushed</p>"))
	require.NoError(t, err)
	require.Len(t, state.CurrentNotebook.Sheets, 3)
	assert.Equal(t, "Sheet 3", state.CurrentSheet.Title)
	assert.Equal(t, state.CurrentNotebook.Sheets[2].Id, state.CurrentSheetId)

	state, err = f.svc.AddSheet(context.Background(), "Retro", nil)
	require.NoError(t, err)
	assert.Equal(t, "Retro", state.CurrentSheet.Title)

	state, _ = f.svc.SelectSheet(context.Background(), "s-1", nil)
	assert.Equal(t, "<p>flushed</p>", state.CurrentSheet.Content)
}

func TestNotebookService_RenameSheet(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)

	state, err := f.svc.RenameSheet(context.Background(), &dto.UpdateSheetRequest{Id: "s-3", Title: "Shopping"})
	require.NoError(t, err)
	// Renaming a sheet in another notebook leaves the selection alone.
	assert.Equal(t, "s-1", state.CurrentSheetId)

	state, _ = f.svc.SelectNotebook(context.Background(), "nb-2", nil)
	assert.Equal(t, "Shopping", state.CurrentSheet.Title)

	_, err = f.svc.RenameSheet(context.Background(), &dto.UpdateSheetRequest{Id: "missing", Title: "x"})
	assert.ErrorIs(t, err, entity.ErrSheetNotFound)
}

func TestNotebookService_DeleteLastSheetIsRefused(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)
	f.svc.SelectNotebook(context.Background(), "nb-2", nil)

	_, err := f.svc.DeleteSheet(context.Background(), "s-3", nil)
	require.ErrorIs(t, err, entity.ErrLastSheet)

	state := f.svc.State()
	assert.Len(t, state.CurrentNotebook.Sheets, 1)
	assert.Equal(t, "s-3", state.CurrentSheetId)
}

func TestNotebookService_DeleteCurrentSheetSelectsFirst(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)
	f.svc.SelectSheet(context.Background(), "s-2", nil)

	state, err := f.svc.DeleteSheet(context.Background(), "s-2", strPtr("<p>discarded</p>"))
	require.NoError(t, err)
	require.Len(t, state.CurrentNotebook.Sheets, 1)
	assert.Equal(t, "s-1", state.CurrentSheetId)
	assert.Equal(t, "<p>quarterly plan</p>", state.CurrentSheet.Content)
	assert.Contains(t, f.pub.Types(), events.SheetDeleted)

	doc := f.stored(t)
	first := doc["notebooks"].([]interface{})[0].(map[string]interface{})
	assert.Len(t, first["sheets"], 1)
}

func TestNotebookService_DeleteUnknownSheetIsNoOp(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)

	state, err := f.svc.DeleteSheet(context.Background(), "missing", nil)
	require.NoError(t, err)
	assert.Len(t, state.CurrentNotebook.Sheets, 2)
}

func TestNotebookService_SearchHonoursFilters(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)

	hits := f.svc.Search("offline")
	require.Len(t, hits, 1)
	assert.Equal(t, "s-2", hits[0].SheetId)
	assert.Equal(t, "content", hits[0].Field)
	assert.Contains(t, hits[0].Snippet, "offline")

	hits = f.svc.Search("/nb:home milk")
	require.Len(t, hits, 1)
	assert.Equal(t, "s-3", hits[0].SheetId)

	hits = f.svc.Search("/in:work /sheet:idea")
	require.Len(t, hits, 1)
	assert.Equal(t, "Ideas", hits[0].SheetTitle)

	hits = f.svc.Search("work")
	require.NotEmpty(t, hits)
	assert.Equal(t, "notebook", hits[0].Field)

	assert.Empty(t, f.svc.Search("   "))
	assert.Empty(t, f.svc.Search("nothing-matches-this"))
}

func TestNotebookService_Stats(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)

	stats := f.svc.Stats()
	assert.Equal(t, 2, stats.NotebookCount)
	assert.Equal(t, 3, stats.SheetCount)
	// "quarterly plan" + "ship the offline mode" + "milk bread"
	assert.Equal(t, 2+4+2, stats.WordCount)
	require.NotNil(t, stats.CurrentSheet)
	assert.Equal(t, "s-1", stats.CurrentSheet.Id)
}

func TestNotebookService_ExportImport(t *testing.T) {
	f := newNotebookFixture(t, twoSheetSnapshot)
	f.load(t)

	exported, err := f.svc.Export()
	require.NoError(t, err)

	other := newNotebookFixture(t, "")
	other.load(t)
	state, err := other.svc.Import(context.Background(), exported)
	require.NoError(t, err)

	require.Len(t, state.Notebooks, 2)
	assert.Equal(t, "nb-1", state.CurrentNotebookId)
	assert.Equal(t, "s-1", state.CurrentSheetId)
	assert.Contains(t, other.pub.Types(), events.StoreImported)
	assert.Len(t, other.stored(t)["notebooks"], 2)

	_, err = other.svc.Import(context.Background(), []byte(`{"notebooks":[]}`))
	assert.Error(t, err)
	_, err = other.svc.Import(context.Background(), []byte(`not json`))
	assert.Error(t, err)
}
