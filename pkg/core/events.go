package core

import (
	"fmt"
	"time"
)

// EventType represents the kind of change applied to the local board.
type EventType string

const (
	EventLoaded     EventType = "LOADED"
	EventMoved      EventType = "MOVED"
	EventCommitted  EventType = "COMMITTED"
	EventRolledBack EventType = "ROLLED_BACK"
	EventCreated    EventType = "CREATED"
	EventReplaced   EventType = "REPLACED"
	EventRemoved    EventType = "REMOVED"
	EventCleared    EventType = "CLEARED"
)

// Event represents a change in the local board.
type Event struct {
	Type      EventType
	ID        int64 // zero for board-wide events
	From      Stage
	To        Stage
	Timestamp int64 // Unix timestamp
}

func newEvent(t EventType, id int64) Event {
	return Event{Type: t, ID: id, Timestamp: time.Now().Unix()}
}

func moveEvent(t EventType, id int64, from, to Stage) Event {
	e := newEvent(t, id)
	e.From, e.To = from, to
	return e
}

// String implements fmt.Stringer; it is what the lifecycle bridge reports.
func (e Event) String() string {
	switch {
	case e.ID == 0:
		return string(e.Type)
	case e.From != "" || e.To != "":
		return fmt.Sprintf("%s job=%d %s->%s", e.Type, e.ID, e.From, e.To)
	default:
		return fmt.Sprintf("%s job=%d", e.Type, e.ID)
	}
}
