package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRelative(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "zero", t: time.Time{}, want: "never"},
		{name: "seconds", t: now.Add(-20 * time.Second), want: "just now"},
		{name: "one minute", t: now.Add(-time.Minute), want: "1 minute ago"},
		{name: "minutes", t: now.Add(-42 * time.Minute), want: "42 minutes ago"},
		{name: "hours", t: now.Add(-5 * time.Hour), want: "5 hours ago"},
		{name: "days", t: now.Add(-3 * 24 * time.Hour), want: "3 days ago"},
		{name: "same year", t: time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC), want: "Jan 9"},
		{name: "older", t: time.Date(2023, 11, 30, 8, 0, 0, 0, time.UTC), want: "Nov 30, 2023"},
		{name: "future", t: now.Add(time.Hour), want: "Jun 15, 2025 13:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRelative(tt.t, now))
		})
	}
}
