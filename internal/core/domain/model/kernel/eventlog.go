package kernel

import "time"

// Event is the capability shared by every record appended to an aggregate's
// event log. Events are immutable once appended. The event identifier doubles
// as the idempotency key: field and mobile clients retry under uncertain
// network conditions, so the same event may arrive more than once.
type Event interface {
	// EventID returns the unique, caller-supplied identifier of the event.
	EventID() UUID

	// OccurredAt returns the wall-clock occurrence time declared by the
	// producer. Ordering within an aggregate is by sequence number, never by
	// this timestamp, to tolerate clock skew from field devices.
	OccurredAt() time.Time
}

// EventLog is the in-memory, per-aggregate ordered event sequence shared by
// every custody-bearing aggregate (Residue, Certificate, Request line item).
// Events are totally ordered by position; Append is idempotent on event id.
//
// The log is not safe for concurrent use; aggregates are mutated under
// per-aggregate mutual exclusion (see the keylock package).
type EventLog[E Event] struct {
	events []E
	seen   map[UUID]struct{}
}

// NewEventLog creates an empty event log.
func NewEventLog[E Event]() *EventLog[E] {
	return &EventLog[E]{seen: make(map[UUID]struct{})}
}

// RestoreEventLog reconstructs a log from events previously persisted in
// sequence order.
func RestoreEventLog[E Event](events []E) *EventLog[E] {
	log := NewEventLog[E]()
	for _, e := range events {
		log.Append(e)
	}
	return log
}

// Append adds the event to the end of the log. Re-appending an event id
// already present is a no-op returning false; the first append returns true.
func (l *EventLog[E]) Append(event E) bool {
	if l.seen == nil {
		l.seen = make(map[UUID]struct{})
	}
	if _, ok := l.seen[event.EventID()]; ok {
		return false
	}
	l.seen[event.EventID()] = struct{}{}
	l.events = append(l.events, event)
	return true
}

// Contains reports whether an event with the given id has been appended.
func (l *EventLog[E]) Contains(id UUID) bool {
	_, ok := l.seen[id]
	return ok
}

// Events returns the events in append order. The returned slice is a copy;
// mutating it does not affect the log.
func (l *EventLog[E]) Events() []E {
	out := make([]E, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of events appended so far.
func (l *EventLog[E]) Len() int {
	return len(l.events)
}

// Last returns the most recently appended event. The second return value is
// false for an empty log.
func (l *EventLog[E]) Last() (E, bool) {
	var zero E
	if len(l.events) == 0 {
		return zero, false
	}
	return l.events[len(l.events)-1], true
}
