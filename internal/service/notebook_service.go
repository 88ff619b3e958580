package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"notesheet/internal/dto"
	"notesheet/internal/entity"
	"notesheet/internal/mapper"
	"notesheet/internal/pkg/logger"
	"notesheet/internal/repository/contract"
	"notesheet/pkg/events"
	"notesheet/pkg/richtext"
	"notesheet/pkg/search"
	"notesheet/pkg/utils"
)

const (
	seedNotebookName = "My Notebook"
	seedSheetTitle   = "Welcome"
	seedSheetContent = "<h1>Welcome to your notebook</h1>" +
		"<p>Each notebook holds sheets. Use the sidebar to add a sheet or start a new notebook.</p>" +
		"<p>Your work is saved automatically every 30 seconds, or right away when you press save.</p>"

	snippetRadius = 40
)

// INotebookService is the notebook store: the in-memory notebook/sheet tree,
// the current selection and the whole-snapshot persistence around it.
//
// Operations that change the selection take the live editor content; when it
// is non-nil it is flushed into the active sheet before anything else changes.
type INotebookService interface {
	Load(ctx context.Context) (*dto.StoreState, error)
	Save(ctx context.Context) (*dto.StoreState, error)
	State() *dto.StoreState

	SelectNotebook(ctx context.Context, id string, live *string) (*dto.StoreState, bool)
	SelectSheet(ctx context.Context, id string, live *string) (*dto.StoreState, bool)
	CreateNotebook(ctx context.Context, req *dto.CreateNotebookRequest, live *string) (*dto.StoreState, error)
	UpdateNotebook(ctx context.Context, req *dto.UpdateNotebookRequest) (*dto.StoreState, error)
	AddSheet(ctx context.Context, title string, live *string) (*dto.StoreState, error)
	RenameSheet(ctx context.Context, req *dto.UpdateSheetRequest) (*dto.StoreState, error)
	DeleteSheet(ctx context.Context, id string, live *string) (*dto.StoreState, error)

	FlushContent(text string) bool
	SaveContent(ctx context.Context, text string) (*dto.StoreState, error)
	CurrentContent() (sheetId string, content string, ok bool)
	Dirty() bool
	LastSave() time.Time

	Search(query string) []dto.SearchHit
	Stats() *dto.StatsResponse
	Export() ([]byte, error)
	Import(ctx context.Context, raw []byte) (*dto.StoreState, error)
}

type notebookService struct {
	mu        sync.Mutex
	repo      contract.SnapshotRepository
	key       string
	mapper    *mapper.SnapshotMapper
	publisher IPublisherService
	logger    logger.ILogger
	now       func() time.Time

	notebooks         []*entity.Notebook
	lastSave          time.Time
	currentNotebookId string
	currentSheetId    string
	dirty             bool // flushed in memory but not yet persisted
}

func NewNotebookService(
	repo contract.SnapshotRepository,
	key string,
	publisher IPublisherService,
	log logger.ILogger,
) INotebookService {
	return &notebookService{
		repo:      repo,
		key:       key,
		mapper:    mapper.NewSnapshotMapper(),
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (s *notebookService) Load(ctx context.Context) (*dto.StoreState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", s.key, err)
	}

	seeded := false
	if raw == nil {
		s.notebooks = []*entity.Notebook{s.seedNotebook()}
		s.lastSave = time.Time{}
		seeded = true
	} else {
		snapshot, migrated, err := s.mapper.Decode(raw)
		if err != nil {
			return nil, err
		}
		if migrated > 0 {
			s.logger.Info("NotebookService", "Migrated legacy notebooks", map[string]interface{}{"count": migrated})
		}
		s.notebooks = snapshot.Notebooks
		s.lastSave = snapshot.LastSave
		if len(s.notebooks) == 0 {
			s.notebooks = []*entity.Notebook{s.seedNotebook()}
			seeded = true
		}
	}

	s.selectFirstLocked()
	s.dirty = false

	s.logger.Info("NotebookService", "Store loaded", map[string]interface{}{
		"notebooks": len(s.notebooks),
		"seeded":    seeded,
	})
	s.emit(ctx, events.StoreLoaded, map[string]interface{}{"notebooks": len(s.notebooks), "seeded": seeded})

	return s.stateLocked(), nil
}

func (s *notebookService) Save(ctx context.Context) (*dto.StoreState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	return s.stateLocked(), nil
}

func (s *notebookService) State() *dto.StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

func (s *notebookService) SelectNotebook(ctx context.Context, id string, live *string) (*dto.StoreState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nb := s.findNotebookLocked(id)
	if nb == nil {
		return s.stateLocked(), false
	}

	s.flushLocked(live)
	s.currentNotebookId = nb.Id

	if len(nb.Sheets) == 0 {
		now := s.now()
		nb.Sheets = append(nb.Sheets, newSheet(entity.DefaultSheetTitle, "", now))
		nb.Touch(now)
		s.dirty = true
	}
	s.currentSheetId = nb.FirstSheet().Id

	s.emit(ctx, events.NotebookSelected, map[string]interface{}{"notebook_id": nb.Id, "sheet_id": s.currentSheetId})
	return s.stateLocked(), true
}

func (s *notebookService) SelectSheet(ctx context.Context, id string, live *string) (*dto.StoreState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nb := s.currentNotebookLocked()
	if nb == nil {
		return s.stateLocked(), false
	}
	sheet, _ := nb.FindSheet(id)
	if sheet == nil {
		return s.stateLocked(), false
	}

	s.flushLocked(live)
	s.currentSheetId = sheet.Id

	s.emit(ctx, events.SheetSelected, map[string]interface{}{"notebook_id": nb.Id, "sheet_id": sheet.Id})
	return s.stateLocked(), true
}

func (s *notebookService) CreateNotebook(ctx context.Context, req *dto.CreateNotebookRequest, live *string) (*dto.StoreState, error) {
	cover, err := entity.ParseCover(req.Cover, req.CustomCoverData)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked(live)

	now := s.now()
	nb := &entity.Notebook{
		Id:      entity.NewID(),
		Name:    strings.TrimSpace(req.Name),
		Cover:   cover,
		Created: now,
		Updated: now,
		Sheets:  []*entity.Sheet{newSheet(entity.DefaultSheetTitle, "", now)},
	}
	s.notebooks = append(s.notebooks, nb)
	s.currentNotebookId = nb.Id
	s.currentSheetId = nb.Sheets[0].Id

	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}

	s.emit(ctx, events.NotebookCreated, map[string]interface{}{"notebook_id": nb.Id, "name": nb.Name})
	return s.stateLocked(), nil
}

func (s *notebookService) UpdateNotebook(ctx context.Context, req *dto.UpdateNotebookRequest) (*dto.StoreState, error) {
	var cover *entity.Cover
	if req.Cover != "" {
		c, err := entity.ParseCover(req.Cover, req.CustomCoverData)
		if err != nil {
			return nil, err
		}
		cover = &c
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nb := s.findNotebookLocked(req.Id)
	if nb == nil {
		return nil, entity.ErrNotebookNotFound
	}

	changed := false
	if name := strings.TrimSpace(req.Name); name != "" && name != nb.Name {
		nb.Name = name
		changed = true
	}
	if cover != nil && *cover != nb.Cover {
		nb.Cover = *cover
		changed = true
	}
	if !changed {
		return s.stateLocked(), nil
	}

	nb.Touch(s.now())
	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}

	s.emit(ctx, events.NotebookUpdated, map[string]interface{}{"notebook_id": nb.Id})
	return s.stateLocked(), nil
}

func (s *notebookService) AddSheet(ctx context.Context, title string, live *string) (*dto.StoreState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nb := s.currentNotebookLocked()
	if nb == nil {
		s.logger.Debug("NotebookService", "AddSheet ignored, no notebook selected", nil)
		return s.stateLocked(), nil
	}

	s.flushLocked(live)

	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Sheet %d", len(nb.Sheets)+1)
	}

	now := s.now()
	sheet := newSheet(title, "", now)
	nb.Sheets = append(nb.Sheets, sheet)
	nb.Touch(now)
	s.currentSheetId = sheet.Id

	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}

	s.emit(ctx, events.SheetAdded, map[string]interface{}{"notebook_id": nb.Id, "sheet_id": sheet.Id})
	return s.stateLocked(), nil
}

func (s *notebookService) RenameSheet(ctx context.Context, req *dto.UpdateSheetRequest) (*dto.StoreState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nb, sheet := s.findSheetLocked(req.Id)
	if sheet == nil {
		return nil, entity.ErrSheetNotFound
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || title == sheet.Title {
		return s.stateLocked(), nil
	}

	now := s.now()
	sheet.Title = title
	sheet.Touch(now)
	nb.Touch(now)

	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}

	s.emit(ctx, events.SheetUpdated, map[string]interface{}{"notebook_id": nb.Id, "sheet_id": sheet.Id})
	return s.stateLocked(), nil
}

func (s *notebookService) DeleteSheet(ctx context.Context, id string, live *string) (*dto.StoreState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nb := s.currentNotebookLocked()
	if nb == nil {
		return s.stateLocked(), nil
	}
	if len(nb.Sheets) <= 1 {
		s.logger.Warn("NotebookService", "Refused to delete last sheet", map[string]interface{}{"notebook_id": nb.Id, "sheet_id": id})
		return nil, entity.ErrLastSheet
	}
	_, idx := nb.FindSheet(id)
	if idx < 0 {
		return s.stateLocked(), nil
	}

	if id != s.currentSheetId {
		s.flushLocked(live)
	}

	nb.Sheets = append(nb.Sheets[:idx], nb.Sheets[idx+1:]...)
	nb.Touch(s.now())
	s.currentSheetId = nb.FirstSheet().Id

	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}

	s.emit(ctx, events.SheetDeleted, map[string]interface{}{"notebook_id": nb.Id, "sheet_id": id})
	return s.stateLocked(), nil
}

func (s *notebookService) FlushContent(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flushLocked(&text)
}

func (s *notebookService) SaveContent(ctx context.Context, text string) (*dto.StoreState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked(&text)
	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	return s.stateLocked(), nil
}

func (s *notebookService) CurrentContent() (string, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet := s.currentSheetLocked()
	if sheet == nil {
		return "", "", false
	}
	return sheet.Id, sheet.Content, true
}

func (s *notebookService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dirty
}

func (s *notebookService) LastSave() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSave
}

func (s *notebookService) Search(query string) []dto.SearchHit {
	filters := search.ParseQuery(query)
	hits := make([]dto.SearchHit, 0)
	if filters.IsEmpty() {
		return hits
	}
	needle := strings.ToLower(strings.TrimSpace(filters.SearchQuery))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, nb := range s.notebooks {
		if filters.NotebookName != "" && !strings.Contains(strings.ToLower(nb.Name), filters.NotebookName) {
			continue
		}
		if needle != "" && filters.SheetTitle == "" && strings.Contains(strings.ToLower(nb.Name), needle) {
			hits = append(hits, dto.SearchHit{
				NotebookId:   nb.Id,
				NotebookName: nb.Name,
				Field:        "notebook",
				Snippet:      nb.Name,
			})
		}

		for _, sheet := range nb.Sheets {
			if filters.SheetTitle != "" && !strings.Contains(strings.ToLower(sheet.Title), filters.SheetTitle) {
				continue
			}

			hit := dto.SearchHit{
				NotebookId:   nb.Id,
				NotebookName: nb.Name,
				SheetId:      sheet.Id,
				SheetTitle:   sheet.Title,
			}
			plain := richtext.PlainText(sheet.Content)

			switch {
			case needle == "":
				hit.Field = "title"
				hit.Snippet = utils.Truncate(plain, snippetRadius*2)
			case strings.Contains(strings.ToLower(sheet.Title), needle):
				hit.Field = "title"
				hit.Snippet = utils.Snippet(plain, needle, snippetRadius)
			case strings.Contains(strings.ToLower(plain), needle):
				hit.Field = "content"
				hit.Snippet = utils.Snippet(plain, needle, snippetRadius)
			default:
				continue
			}
			hits = append(hits, hit)
		}
	}

	return hits
}

func (s *notebookService) Stats() *dto.StatsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &dto.StatsResponse{
		NotebookCount: len(s.notebooks),
		Notebooks:     make([]dto.NotebookStat, 0, len(s.notebooks)),
	}
	for _, nb := range s.notebooks {
		stat := dto.NotebookStat{Id: nb.Id, Name: nb.Name, SheetCount: len(nb.Sheets)}
		for _, sheet := range nb.Sheets {
			stat.WordCount += richtext.WordCount(sheet.Content)
		}
		res.SheetCount += stat.SheetCount
		res.WordCount += stat.WordCount
		res.Notebooks = append(res.Notebooks, stat)
	}
	if sheet := s.currentSheetLocked(); sheet != nil {
		res.CurrentSheet = sheetDetail(sheet)
	}
	return res
}

// Export returns the in-memory tree in the persisted snapshot shape.
func (s *notebookService) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mapper.Encode(&entity.Snapshot{Notebooks: s.notebooks, LastSave: s.lastSave})
}

// Import replaces the whole tree with a snapshot in the storage shape
// (legacy records included) and persists it.
func (s *notebookService) Import(ctx context.Context, raw []byte) (*dto.StoreState, error) {
	snapshot, migrated, err := s.mapper.Decode(raw)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Notebooks) == 0 {
		return nil, fmt.Errorf("import snapshot: no notebooks")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notebooks = snapshot.Notebooks
	s.selectFirstLocked()
	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}

	s.emit(ctx, events.StoreImported, map[string]interface{}{"notebooks": len(s.notebooks), "migrated": migrated})
	return s.stateLocked(), nil
}

// --- internals; callers hold s.mu ---

func (s *notebookService) saveLocked(ctx context.Context) error {
	saveAt := s.now()
	raw, err := s.mapper.Encode(&entity.Snapshot{Notebooks: s.notebooks, LastSave: saveAt})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.repo.Put(ctx, s.key, raw); err != nil {
		// the tree already changed in memory; autosave retries the write
		s.dirty = true
		s.logger.Error("NotebookService", "Failed to persist snapshot", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("write snapshot %q: %w", s.key, err)
	}

	s.lastSave = saveAt
	s.dirty = false
	s.emit(ctx, events.StoreSaved, map[string]interface{}{"last_save": saveAt, "bytes": len(raw)})
	return nil
}

// flushLocked writes live content into the active sheet. Unchanged content
// leaves the timestamps alone.
func (s *notebookService) flushLocked(live *string) bool {
	if live == nil {
		return false
	}
	nb := s.currentNotebookLocked()
	sheet := s.currentSheetLocked()
	if nb == nil || sheet == nil || sheet.Content == *live {
		return false
	}

	now := s.now()
	sheet.Content = *live
	sheet.Touch(now)
	nb.Touch(now)
	s.dirty = true
	return true
}

func (s *notebookService) selectFirstLocked() {
	s.currentNotebookId = ""
	s.currentSheetId = ""
	if len(s.notebooks) == 0 {
		return
	}
	nb := s.notebooks[0]
	s.currentNotebookId = nb.Id
	if first := nb.FirstSheet(); first != nil {
		s.currentSheetId = first.Id
	}
}

func (s *notebookService) findNotebookLocked(id string) *entity.Notebook {
	for _, nb := range s.notebooks {
		if nb.Id == id {
			return nb
		}
	}
	return nil
}

func (s *notebookService) findSheetLocked(id string) (*entity.Notebook, *entity.Sheet) {
	if nb := s.currentNotebookLocked(); nb != nil {
		if sheet, _ := nb.FindSheet(id); sheet != nil {
			return nb, sheet
		}
	}
	for _, nb := range s.notebooks {
		if sheet, _ := nb.FindSheet(id); sheet != nil {
			return nb, sheet
		}
	}
	return nil, nil
}

func (s *notebookService) currentNotebookLocked() *entity.Notebook {
	if s.currentNotebookId == "" {
		return nil
	}
	return s.findNotebookLocked(s.currentNotebookId)
}

func (s *notebookService) currentSheetLocked() *entity.Sheet {
	nb := s.currentNotebookLocked()
	if nb == nil || s.currentSheetId == "" {
		return nil
	}
	sheet, _ := nb.FindSheet(s.currentSheetId)
	return sheet
}

func (s *notebookService) seedNotebook() *entity.Notebook {
	now := s.now()
	return &entity.Notebook{
		Id:      entity.NewID(),
		Name:    seedNotebookName,
		Cover:   entity.PaletteCover(entity.DefaultPalette),
		Created: now,
		Updated: now,
		Sheets:  []*entity.Sheet{newSheet(seedSheetTitle, seedSheetContent, now)},
	}
}

func (s *notebookService) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("NotebookService", "Failed to publish store event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func newSheet(title, content string, now time.Time) *entity.Sheet {
	return &entity.Sheet{
		Id:      entity.NewID(),
		Title:   title,
		Content: content,
		Created: now,
		Updated: now,
	}
}
