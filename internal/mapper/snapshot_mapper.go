package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"notesheet/internal/entity"
	"notesheet/internal/model"
)

type SnapshotMapper struct {
	now   func() time.Time
	newID func() string
}

func NewSnapshotMapper() *SnapshotMapper {
	return &SnapshotMapper{
		now:   time.Now,
		newID: entity.NewID,
	}
}

// NewSnapshotMapperWith lets callers pin the clock and id source.
func NewSnapshotMapperWith(now func() time.Time, newID func() string) *SnapshotMapper {
	return &SnapshotMapper{now: now, newID: newID}
}

// Decode parses a stored snapshot. Malformed JSON is returned as an error;
// there is no repair beyond the legacy single-content shape.
func (m *SnapshotMapper) Decode(raw []byte) (*entity.Snapshot, int, error) {
	var doc model.SnapshotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}
	snapshot, migrated := m.ToEntity(&doc)
	return snapshot, migrated, nil
}

func (m *SnapshotMapper) Encode(snapshot *entity.Snapshot) ([]byte, error) {
	return json.Marshal(m.ToDocument(snapshot))
}

// ToEntity converts a document, upgrading legacy notebooks in place. It
// returns the number of notebooks that were migrated.
func (m *SnapshotMapper) ToEntity(doc *model.SnapshotDocument) (*entity.Snapshot, int) {
	now := m.now()
	snapshot := &entity.Snapshot{
		Notebooks: make([]*entity.Notebook, 0, len(doc.Notebooks)),
	}
	if doc.LastSave != nil {
		snapshot.LastSave = *doc.LastSave
	}

	migrated := 0
	for i := range doc.Notebooks {
		nd := &doc.Notebooks[i]
		cover, err := entity.ParseCover(nd.Cover, nd.CustomCoverData)
		if err != nil {
			cover = entity.PaletteCover(entity.DefaultPalette)
		}

		nb := &entity.Notebook{
			Id:      nd.Id,
			Name:    nd.Name,
			Cover:   cover,
			Created: timeOr(nd.Created, now),
			Updated: timeOr(nd.Updated, now),
		}
		if nb.Id == "" {
			nb.Id = m.newID()
		}

		switch {
		case nd.Sheets == nil:
			nb.Sheets = []*entity.Sheet{{
				Id:      m.newID(),
				Title:   entity.DefaultSheetTitle,
				Content: nd.Content,
				Created: nb.Created,
				Updated: nb.Updated,
			}}
			migrated++
		case len(nd.Sheets) == 0:
			nb.Sheets = []*entity.Sheet{m.blankSheet(entity.DefaultSheetTitle, now)}
		default:
			nb.Sheets = make([]*entity.Sheet, 0, len(nd.Sheets))
			for _, sd := range nd.Sheets {
				sheet := &entity.Sheet{
					Id:      sd.Id,
					Title:   sd.Title,
					Content: sd.Content,
					Created: timeOr(sd.Created, nb.Created),
					Updated: timeOr(sd.Updated, nb.Updated),
				}
				if sheet.Id == "" {
					sheet.Id = m.newID()
				}
				nb.Sheets = append(nb.Sheets, sheet)
			}
		}

		snapshot.Notebooks = append(snapshot.Notebooks, nb)
	}

	return snapshot, migrated
}

func (m *SnapshotMapper) ToDocument(snapshot *entity.Snapshot) *model.SnapshotDocument {
	doc := &model.SnapshotDocument{
		Notebooks: make([]model.NotebookDocument, 0, len(snapshot.Notebooks)),
	}
	if !snapshot.LastSave.IsZero() {
		t := snapshot.LastSave
		doc.LastSave = &t
	}

	for _, nb := range snapshot.Notebooks {
		nd := model.NotebookDocument{
			Id:      nb.Id,
			Name:    nb.Name,
			Cover:   nb.Cover.Key(),
			Created: timePtr(nb.Created),
			Updated: timePtr(nb.Updated),
			Sheets:  make([]model.SheetDocument, 0, len(nb.Sheets)),
		}
		if img, ok := nb.Cover.Image(); ok {
			nd.CustomCoverData = img
		}
		for _, s := range nb.Sheets {
			nd.Sheets = append(nd.Sheets, model.SheetDocument{
				Id:      s.Id,
				Title:   s.Title,
				Content: s.Content,
				Created: timePtr(s.Created),
				Updated: timePtr(s.Updated),
			})
		}
		doc.Notebooks = append(doc.Notebooks, nd)
	}

	return doc
}

func (m *SnapshotMapper) blankSheet(title string, now time.Time) *entity.Sheet {
	return &entity.Sheet{
		Id:      m.newID(),
		Title:   title,
		Created: now,
		Updated: now,
	}
}

func timeOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}
	return *t
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
