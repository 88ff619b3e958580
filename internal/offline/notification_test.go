package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPush(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Notification
	}{
		{"empty payload uses defaults", "", Notification{Title: "Notebook", Body: "You have a new update", Icon: "/icons/icon-192.png"}},
		{"plain text becomes the body", "Sync finished", Notification{Title: "Notebook", Body: "Sync finished", Icon: "/icons/icon-192.png"}},
		{"json payload", `{"title":"Reminder","body":"Review notes","icon":"/i.png"}`, Notification{Title: "Reminder", Body: "Review notes", Icon: "/i.png"}},
		{"partial json", `{"title":"Reminder"}`, Notification{Title: "Reminder", Body: "You have a new update", Icon: "/icons/icon-192.png"}},
		{"broken json is text", `{"title":`, Notification{Title: "Notebook", Body: `{"title":`, Icon: "/icons/icon-192.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Push(tt.payload))
		})
	}
}
