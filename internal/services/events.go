package services

import (
	"sync"
	"time"
)

type EventKind string

const (
	EventAchievementUnlocked EventKind = "achievement_unlocked"
	EventReminderDue         EventKind = "reminder_due"
	EventDailySummary        EventKind = "daily_summary"
)

// Event is a domain event waiting in the outbox for a host to deliver it.
type Event struct {
	Kind          EventKind
	Title         string
	Body          string
	EntryID       string
	AchievementID string
	At            time.Time
}

// Outbox collects events emitted by the core. Reminder timers publish from
// their own goroutines, so it is the one locked structure of the core.
type Outbox struct {
	mu     sync.Mutex
	events []Event
	ready  chan struct{}
}

func NewOutbox() *Outbox {
	return &Outbox{ready: make(chan struct{}, 1)}
}

func (o *Outbox) Publish(e Event) {
	o.mu.Lock()
	o.events = append(o.events, e)
	o.mu.Unlock()

	select {
	case o.ready <- struct{}{}:
	default:
	}
}

// Drain removes and returns every pending event in publish order.
func (o *Outbox) Drain() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	events := o.events
	o.events = nil
	return events
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.events)
}

// Ready is signalled after Publish; one signal may cover several events.
func (o *Outbox) Ready() <-chan struct{} {
	return o.ready
}
