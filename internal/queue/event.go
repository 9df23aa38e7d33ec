// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into the catalog audit log.
package queue

import "fmt"

// Catalog change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// CatalogChangedEvent is published after every successful admin mutation.
// Label is the display label of the row at the time of the change, so a
// consumer can log deletions without querying the database.
type CatalogChangedEvent struct {
	EventID string `json:"event_id"`
	Entity  string `json:"entity"` // table name, e.g. "films"
	Action  string `json:"action"`
	ID      uint64 `json:"id"`
	Label   string `json:"label"`
	At      string `json:"at"` // RFC 3339, UTC
}

// Line renders the event as one audit log line.
func (ev CatalogChangedEvent) Line() string {
	return fmt.Sprintf("[%s] %s %s | id=%d | label=%q | event_id=%s\n",
		ev.At, ev.Entity, ev.Action, ev.ID, ev.Label, ev.EventID)
}
