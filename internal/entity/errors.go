package entity

import "errors"

var (
	ErrLastSheet          = errors.New("cannot delete last sheet")
	ErrNoNotebookSelected = errors.New("no notebook selected")
	ErrNotebookNotFound   = errors.New("notebook not found")
	ErrSheetNotFound      = errors.New("sheet not found")
	ErrInvalidCover       = errors.New("invalid cover")
)
