package events

import "fmt"

// EventCollector buffers the events an aggregate raises. Repositories stage
// them in the outbox with OutboxEntries; the caller drains them with
// ClearEvents once they are durable. The zero value is ready to use.
type EventCollector struct {
	pending []DomainEvent
}

// Record queues e.
func (c *EventCollector) Record(e DomainEvent) {
	c.pending = append(c.pending, e)
}

// Events returns the queued events. The slice is a copy.
func (c *EventCollector) Events() []DomainEvent {
	return append([]DomainEvent(nil), c.pending...)
}

// OutboxEntries encodes the queued events for the outbox without draining
// them. It fails on the first event whose payload is not JSON.
func (c *EventCollector) OutboxEntries() ([]OutboxEntry, error) {
	entries := make([]OutboxEntry, 0, len(c.pending))
	for _, e := range c.pending {
		entry, err := NewOutboxEntry(e)
		if err != nil {
			return nil, fmt.Errorf("stage event %s for aggregate %s: %w", e.EventType(), e.AggregateID(), err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ClearEvents drains the queue and returns what was in it.
func (c *EventCollector) ClearEvents() []DomainEvent {
	drained := c.pending
	c.pending = nil
	return drained
}
