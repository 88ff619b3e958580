package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "sheet.added").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	StoreLoaded      = "store.loaded"
	StoreSaved       = "store.saved"
	StoreImported    = "store.imported"
	NotebookCreated  = "notebook.created"
	NotebookSelected = "notebook.selected"
	NotebookUpdated  = "notebook.updated"
	SheetAdded       = "sheet.added"
	SheetSelected    = "sheet.selected"
	SheetUpdated     = "sheet.updated"
	SheetDeleted     = "sheet.deleted"
	EditorUnsaved    = "editor.unsaved"
	OfflinePush      = "offline.push"
	OfflineDeployed  = "offline.deployed"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Envelope is the wire form shared by the event bus, websocket clients and NATS.
type Envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func ToEnvelope(e Event) Envelope {
	return Envelope{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()}
}

func (e Envelope) EventType() string {
	return e.Type
}

func (e Envelope) Payload() map[string]interface{} {
	return e.Data
}

func (e Envelope) Timestamp() time.Time {
	return e.OccurredAt
}
