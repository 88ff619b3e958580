package entity

import (
	"time"
)

const DefaultSheetTitle = "Sheet 1"

type Notebook struct {
	Id      string
	Name    string
	Cover   Cover
	Created time.Time
	Updated time.Time
	Sheets  []*Sheet
}

// FindSheet returns the sheet and its index, or nil and -1.
func (n *Notebook) FindSheet(id string) (*Sheet, int) {
	for i, s := range n.Sheets {
		if s.Id == id {
			return s, i
		}
	}
	return nil, -1
}

func (n *Notebook) FirstSheet() *Sheet {
	if len(n.Sheets) == 0 {
		return nil
	}
	return n.Sheets[0]
}

// Touch refreshes Updated, never moving it backwards.
func (n *Notebook) Touch(now time.Time) {
	if now.After(n.Updated) {
		n.Updated = now
	}
}

func (n *Notebook) Clone() *Notebook {
	if n == nil {
		return nil
	}
	c := *n
	c.Sheets = make([]*Sheet, len(n.Sheets))
	for i, s := range n.Sheets {
		sc := *s
		c.Sheets[i] = &sc
	}
	return &c
}
