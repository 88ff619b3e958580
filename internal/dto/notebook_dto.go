package dto

import (
	"time"
)

type CoverResponse struct {
	Key             string `json:"key"`
	CustomCoverData string `json:"custom_cover_data,omitempty"`
	Background      string `json:"background"`
}

type NotebookSummary struct {
	Id           string        `json:"id"`
	Name         string        `json:"name"`
	Cover        CoverResponse `json:"cover"`
	SheetCount   int           `json:"sheet_count"`
	Created      time.Time     `json:"created"`
	Updated      time.Time     `json:"updated"`
	UpdatedLabel string        `json:"updated_label"`
}

type SheetSummary struct {
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
	UpdatedLabel string    `json:"updated_label"`
}

type SheetDetail struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
	WordCount int       `json:"word_count"`
	CharCount int       `json:"char_count"`
}

type NotebookDetail struct {
	NotebookSummary
	Sheets []SheetSummary `json:"sheets"`
}

// StoreState is the pull model the UI renders after every mutating call.
type StoreState struct {
	CurrentNotebookId string            `json:"current_notebook_id,omitempty"`
	CurrentSheetId    string            `json:"current_sheet_id,omitempty"`
	LastSave          *time.Time        `json:"last_save,omitempty"`
	LastSaveLabel     string            `json:"last_save_label,omitempty"`
	Notebooks         []NotebookSummary `json:"notebooks"`
	CurrentNotebook   *NotebookDetail   `json:"current_notebook,omitempty"`
	CurrentSheet      *SheetDetail      `json:"current_sheet,omitempty"`
}

type CreateNotebookRequest struct {
	Name            string `json:"name" validate:"required,max=120"`
	Cover           string `json:"cover" validate:"omitempty,oneof=blue green red purple orange teal pink gray custom"`
	CustomCoverData string `json:"custom_cover_data" validate:"required_if=Cover custom"`
}

type UpdateNotebookRequest struct {
	Id              string
	Name            string `json:"name" validate:"omitempty,max=120"`
	Cover           string `json:"cover" validate:"omitempty,oneof=blue green red purple orange teal pink gray custom"`
	CustomCoverData string `json:"custom_cover_data" validate:"required_if=Cover custom"`
}

type AddSheetRequest struct {
	Title string `json:"title" validate:"max=120"`
}

type UpdateSheetRequest struct {
	Id    string
	Title string `json:"title" validate:"required,max=120"`
}

// SelectRequest optionally carries the live editor content to flush before
// switching. Without it the last pushed draft is used.
type SelectRequest struct {
	Content *string `json:"content"`
}

type SearchHit struct {
	NotebookId   string `json:"notebook_id"`
	NotebookName string `json:"notebook_name"`
	SheetId      string `json:"sheet_id,omitempty"`
	SheetTitle   string `json:"sheet_title,omitempty"`
	Field        string `json:"field"` // "notebook" | "title" | "content"
	Snippet      string `json:"snippet"`
}

type NotebookStat struct {
	Id         string `json:"id"`
	Name       string `json:"name"`
	SheetCount int    `json:"sheet_count"`
	WordCount  int    `json:"word_count"`
}

type StatsResponse struct {
	NotebookCount int            `json:"notebook_count"`
	SheetCount    int            `json:"sheet_count"`
	WordCount     int            `json:"word_count"`
	CurrentSheet  *SheetDetail   `json:"current_sheet,omitempty"`
	Notebooks     []NotebookStat `json:"notebooks"`
}
