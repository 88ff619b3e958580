package entity

import "time"

type Sheet struct {
	Id      string
	Title   string
	Content string // rich-text markup
	Created time.Time
	Updated time.Time
}

func (s *Sheet) Touch(now time.Time) {
	if now.After(s.Updated) {
		s.Updated = now
	}
}
