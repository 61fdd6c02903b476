package ecs

// EventKind names a world event.
type EventKind string

const (
	EventStateChanged EventKind = "state_changed"
	EventAttack       EventKind = "attack"
	EventDamaged      EventKind = "damaged"
	EventDied         EventKind = "died"
	EventNoise        EventKind = "noise"
	EventThreat       EventKind = "threat_shift"
	EventScript       EventKind = "script"
)

// Event is emitted by systems for tooling and scripts to observe.
type Event struct {
	Kind   EventKind
	Entity Entity
	Tick   uint64
	Data   map[string]any
}

// EventQueue is a FIFO queue drained by the host once per frame.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Emit pushes an event stamped with the current tick.
func Emit(w *World, kind EventKind, e Entity, data map[string]any) {
	if w == nil {
		return
	}
	w.events.Push(Event{Kind: kind, Entity: e, Tick: w.tick, Data: data})
}
