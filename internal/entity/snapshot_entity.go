package entity

import "time"

// Snapshot is the whole persisted unit. It is always written in full.
type Snapshot struct {
	Notebooks []*Notebook
	LastSave  time.Time
}
