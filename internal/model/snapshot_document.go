package model

import "time"

// SnapshotDocument is the JSON stored under the storage key. Any external
// tool reading or writing notes must keep to this shape.
type SnapshotDocument struct {
	Notebooks []NotebookDocument `json:"notebooks"`
	LastSave  *time.Time         `json:"lastSave,omitempty"`
}

type NotebookDocument struct {
	Id              string     `json:"id"`
	Name            string     `json:"name"`
	Cover           string     `json:"cover,omitempty"`
	CustomCoverData string     `json:"customCoverData,omitempty"`
	Created         *time.Time `json:"created,omitempty"`
	Updated         *time.Time `json:"updated,omitempty"`

	// Sheets is nil for legacy single-content records.
	Sheets []SheetDocument `json:"sheets"`

	// Content only appears in legacy records.
	Content string `json:"content,omitempty"`
}

type SheetDocument struct {
	Id      string     `json:"id"`
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Created *time.Time `json:"created,omitempty"`
	Updated *time.Time `json:"updated,omitempty"`
}
