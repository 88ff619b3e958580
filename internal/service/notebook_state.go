package service

import (
	"time"

	"notesheet/internal/dto"
	"notesheet/internal/entity"
	"notesheet/pkg/richtext"
)

func (s *notebookService) stateLocked() *dto.StoreState {
	now := s.now()
	state := &dto.StoreState{
		CurrentNotebookId: s.currentNotebookId,
		CurrentSheetId:    s.currentSheetId,
		LastSaveLabel:     dto.FormatRelative(s.lastSave, now),
		Notebooks:         make([]dto.NotebookSummary, 0, len(s.notebooks)),
	}
	if !s.lastSave.IsZero() {
		lastSave := s.lastSave
		state.LastSave = &lastSave
	}

	for _, nb := range s.notebooks {
		state.Notebooks = append(state.Notebooks, notebookSummary(nb, now))
	}

	if nb := s.currentNotebookLocked(); nb != nil {
		detail := &dto.NotebookDetail{
			NotebookSummary: notebookSummary(nb, now),
			Sheets:          make([]dto.SheetSummary, 0, len(nb.Sheets)),
		}
		for _, sheet := range nb.Sheets {
			detail.Sheets = append(detail.Sheets, dto.SheetSummary{
				Id:           sheet.Id,
				Title:        sheet.Title,
				Created:      sheet.Created,
				Updated:      sheet.Updated,
				UpdatedLabel: dto.FormatRelative(sheet.Updated, now),
			})
		}
		state.CurrentNotebook = detail
	}

	if sheet := s.currentSheetLocked(); sheet != nil {
		state.CurrentSheet = sheetDetail(sheet)
	}

	return state
}

func notebookSummary(nb *entity.Notebook, now time.Time) dto.NotebookSummary {
	cover := dto.CoverResponse{
		Key:        nb.Cover.Key(),
		Background: nb.Cover.Background(),
	}
	if img, ok := nb.Cover.Image(); ok {
		cover.CustomCoverData = img
	}
	return dto.NotebookSummary{
		Id:           nb.Id,
		Name:         nb.Name,
		Cover:        cover,
		SheetCount:   len(nb.Sheets),
		Created:      nb.Created,
		Updated:      nb.Updated,
		UpdatedLabel: dto.FormatRelative(nb.Updated, now),
	}
}

func sheetDetail(sheet *entity.Sheet) *dto.SheetDetail {
	return &dto.SheetDetail{
		Id:        sheet.Id,
		Title:     sheet.Title,
		Content:   sheet.Content,
		Created:   sheet.Created,
		Updated:   sheet.Updated,
		WordCount: richtext.WordCount(sheet.Content),
		CharCount: richtext.CharCount(sheet.Content),
	}
}
