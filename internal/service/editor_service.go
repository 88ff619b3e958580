package service

import (
	"context"
	"sync"
	"time"

	"notesheet/internal/config"
	"notesheet/internal/dto"
	"notesheet/internal/pkg/logger"
	"notesheet/internal/scheduler"
	"notesheet/pkg/events"
)

const (
	autosaveTaskName  = "autosave"
	stalenessTaskName = "staleness-check"
)

// IEditorService holds the live editor buffer for the selected sheet and owns
// the autosave and staleness timers. Selection changes go through it so the
// buffer is flushed into the store before the store switches sheets.
type IEditorService interface {
	PushDraft(ctx context.Context, content string) *dto.EditorStatusResponse
	Save(ctx context.Context, content *string) (*dto.StoreState, error)
	Status() *dto.EditorStatusResponse

	SelectNotebook(ctx context.Context, id string, content *string) (*dto.StoreState, bool)
	SelectSheet(ctx context.Context, id string, content *string) (*dto.StoreState, bool)
	CreateNotebook(ctx context.Context, req *dto.CreateNotebookRequest) (*dto.StoreState, error)
	AddSheet(ctx context.Context, title string) (*dto.StoreState, error)
	DeleteSheet(ctx context.Context, id string) (*dto.StoreState, error)
	Import(ctx context.Context, raw []byte) (*dto.StoreState, error)

	Autosave(ctx context.Context) error
	CheckStaleness(ctx context.Context) error

	Start(ctx context.Context)
	Stop()
}

type draft struct {
	sheetId string
	content string
}

type editorService struct {
	mu        sync.Mutex
	notebooks INotebookService
	publisher IPublisherService
	logger    logger.ILogger
	scheduler *scheduler.Scheduler

	draft   *draft
	unsaved bool
}

func NewEditorService(
	notebooks INotebookService,
	publisher IPublisherService,
	cfg config.EditorConfig,
	log logger.ILogger,
) IEditorService {
	e := &editorService{
		notebooks: notebooks,
		publisher: publisher,
		logger:    log,
		scheduler: scheduler.NewScheduler(2, log),
	}

	e.scheduler.Add(scheduler.Task{Name: autosaveTaskName, Interval: cfg.AutosaveInterval, Execute: e.Autosave})
	e.scheduler.Add(scheduler.Task{Name: stalenessTaskName, Interval: cfg.StalenessInterval, Execute: e.CheckStaleness})

	return e
}

func (e *editorService) PushDraft(ctx context.Context, content string) *dto.EditorStatusResponse {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheetId, _, ok := e.notebooks.CurrentContent()
	if !ok {
		e.draft = nil
		return e.statusLocked()
	}
	e.draft = &draft{sheetId: sheetId, content: content}
	return e.statusLocked()
}

// Save is the manual save: flush whatever the editor holds, then persist.
func (e *editorService) Save(ctx context.Context, content *string) (*dto.StoreState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if content != nil {
		if sheetId, _, ok := e.notebooks.CurrentContent(); ok {
			e.draft = &draft{sheetId: sheetId, content: *content}
		}
	}

	var (
		state *dto.StoreState
		err   error
	)
	if live := e.liveLocked(); live != nil {
		state, err = e.notebooks.SaveContent(ctx, *live)
	} else {
		state, err = e.notebooks.Save(ctx)
	}
	if err != nil {
		return nil, err
	}

	e.setUnsavedLocked(ctx, false)
	return state, nil
}

func (e *editorService) Status() *dto.EditorStatusResponse {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.statusLocked()
}

func (e *editorService) SelectNotebook(ctx context.Context, id string, content *string) (*dto.StoreState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.notebooks.SelectNotebook(ctx, id, e.pickLocked(content))
	if ok {
		e.resetLocked(ctx)
	}
	return state, ok
}

func (e *editorService) SelectSheet(ctx context.Context, id string, content *string) (*dto.StoreState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.notebooks.SelectSheet(ctx, id, e.pickLocked(content))
	if ok {
		e.resetLocked(ctx)
	}
	return state, ok
}

func (e *editorService) CreateNotebook(ctx context.Context, req *dto.CreateNotebookRequest) (*dto.StoreState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.notebooks.CreateNotebook(ctx, req, e.liveLocked())
	if err != nil {
		return nil, err
	}
	e.resetLocked(ctx)
	return state, nil
}

func (e *editorService) AddSheet(ctx context.Context, title string) (*dto.StoreState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.notebooks.AddSheet(ctx, title, e.liveLocked())
	if err != nil {
		return nil, err
	}
	e.resetLocked(ctx)
	return state, nil
}

func (e *editorService) DeleteSheet(ctx context.Context, id string) (*dto.StoreState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	before, _, _ := e.notebooks.CurrentContent()
	state, err := e.notebooks.DeleteSheet(ctx, id, e.liveLocked())
	if err != nil {
		return nil, err
	}
	if state.CurrentSheetId != before {
		e.resetLocked(ctx)
	}
	return state, nil
}

func (e *editorService) Import(ctx context.Context, raw []byte) (*dto.StoreState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.notebooks.Import(ctx, raw)
	if err != nil {
		return nil, err
	}
	e.resetLocked(ctx)
	return state, nil
}

// Autosave persists when the live buffer differs from the stored sheet, or
// when earlier flushes have not reached storage yet.
func (e *editorService) Autosave(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	live, differs := e.compareLocked()
	switch {
	case differs:
		if _, err := e.notebooks.SaveContent(ctx, *live); err != nil {
			return err
		}
	case e.notebooks.Dirty():
		if _, err := e.notebooks.Save(ctx); err != nil {
			return err
		}
	default:
		return nil
	}

	e.logger.Debug("EditorService", "Autosaved", map[string]interface{}{"flushed_draft": differs})
	e.setUnsavedLocked(ctx, false)
	return nil
}

// CheckStaleness only toggles the unsaved indicator. It never saves.
func (e *editorService) CheckStaleness(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, differs := e.compareLocked()
	e.setUnsavedLocked(ctx, differs)
	return nil
}

func (e *editorService) Start(ctx context.Context) {
	e.scheduler.Start(ctx)
}

func (e *editorService) Stop() {
	e.scheduler.Stop()
}

// liveLocked returns the buffered content when it belongs to the selected sheet.
func (e *editorService) liveLocked() *string {
	if e.draft == nil {
		return nil
	}
	sheetId, _, ok := e.notebooks.CurrentContent()
	if !ok || sheetId != e.draft.sheetId {
		return nil
	}
	content := e.draft.content
	return &content
}

func (e *editorService) pickLocked(content *string) *string {
	if content != nil {
		return content
	}
	return e.liveLocked()
}

func (e *editorService) compareLocked() (*string, bool) {
	live := e.liveLocked()
	if live == nil {
		return nil, false
	}
	_, stored, _ := e.notebooks.CurrentContent()
	return live, *live != stored
}

// resetLocked drops the buffer after the selection moved to another sheet.
func (e *editorService) resetLocked(ctx context.Context) {
	e.draft = nil
	e.setUnsavedLocked(ctx, false)
}

func (e *editorService) setUnsavedLocked(ctx context.Context, unsaved bool) {
	if e.unsaved == unsaved {
		return
	}
	e.unsaved = unsaved

	sheetId, _, _ := e.notebooks.CurrentContent()
	if e.publisher == nil {
		return
	}
	event := events.New(events.EditorUnsaved, map[string]interface{}{"unsaved": unsaved, "sheet_id": sheetId})
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("EditorService", "Failed to publish indicator change", map[string]interface{}{"error": err.Error()})
	}
}

func (e *editorService) statusLocked() *dto.EditorStatusResponse {
	sheetId, _, _ := e.notebooks.CurrentContent()
	res := &dto.EditorStatusResponse{
		CurrentSheetId: sheetId,
		Unsaved:        e.unsaved,
	}
	lastSave := e.notebooks.LastSave()
	res.LastSaveLabel = dto.FormatRelative(lastSave, time.Now())
	if !lastSave.IsZero() {
		res.LastSave = &lastSave
	}
	return res
}
