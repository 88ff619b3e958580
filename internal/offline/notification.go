package offline

import (
	"encoding/json"
	"strings"
)

const (
	defaultNotificationTitle = "Notebook"
	defaultNotificationBody  = "You have a new update"
	defaultNotificationIcon  = "/icons/icon-192.png"
)

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
}

// Push renders the host payload as a notification. A JSON payload may carry
// title, body and icon; any other text becomes the body.
func Push(payload string) Notification {
	n := Notification{}

	trimmed := strings.TrimSpace(payload)
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), &n); err != nil {
			n = Notification{Body: trimmed}
		}
	} else {
		n.Body = trimmed
	}

	if n.Title == "" {
		n.Title = defaultNotificationTitle
	}
	if n.Body == "" {
		n.Body = defaultNotificationBody
	}
	if n.Icon == "" {
		n.Icon = defaultNotificationIcon
	}
	return n
}
