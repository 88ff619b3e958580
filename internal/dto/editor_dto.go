package dto

import "time"

type DraftRequest struct {
	Content string `json:"content"`
}

type SaveRequest struct {
	Content *string `json:"content"`
}

type EditorStatusResponse struct {
	CurrentSheetId string     `json:"current_sheet_id,omitempty"`
	Unsaved        bool       `json:"unsaved"`
	LastSave       *time.Time `json:"last_save,omitempty"`
	LastSaveLabel  string     `json:"last_save_label,omitempty"`
}
