package services

import (
	"time"

	"go.uber.org/zap"

	"reality-archive/internal/database"
	"reality-archive/internal/utils"
)

// MaxReminderDelay is the longest delay the timer facility accepts
// (2^31-1 ms, about 24.8 days). Longer reminders fire at the cap.
const MaxReminderDelay = 2147483647 * time.Millisecond

const ReminderTitle = "🧪 Archivo de Realidad"

// PermissionHost grants or denies delivery of notifications.
type PermissionHost interface {
	RequestPermission() bool
}

// StaticPermission is a host whose answer is fixed up front.
type StaticPermission bool

func (p StaticPermission) RequestPermission() bool {
	return bool(p)
}

// TimerFacility runs f once after d.
type TimerFacility interface {
	AfterFunc(d time.Duration, f func())
}

// SystemTimers arms runtime timers.
type SystemTimers struct{}

func (SystemTimers) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// ReminderScheduler arms fire-and-forget reminders for committed entries.
// There is no cancellation: a reminder fires even if the entry has been
// completed in the meantime.
type ReminderScheduler struct {
	host      PermissionHost
	timers    TimerFacility
	clock     utils.Clock
	outbox    *Outbox
	log       *zap.Logger
	asked     bool
	permitted bool
}

func NewReminderScheduler(host PermissionHost, timers TimerFacility, clock utils.Clock, outbox *Outbox, log *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		host:   host,
		timers: timers,
		clock:  clock,
		outbox: outbox,
		log:    log,
	}
}

// Permitted asks the host once and remembers the answer.
func (rs *ReminderScheduler) Permitted() bool {
	if !rs.asked {
		rs.asked = true
		rs.permitted = rs.host != nil && rs.host.RequestPermission()
		if !rs.permitted {
			rs.log.Info("🔕 Notifications not permitted, reminders disabled")
		}
	}
	return rs.permitted
}

// Schedule arms a reminder for the entry's experiment time and reports when
// it will fire. Without permission, or for a time already past, it does
// nothing and returns false.
func (rs *ReminderScheduler) Schedule(entry database.Entry) (time.Time, bool) {
	if !rs.Permitted() {
		return time.Time{}, false
	}

	now := rs.clock.Now()
	delay := entry.ExperimentTime.Sub(now)
	if delay <= 0 {
		return time.Time{}, false
	}
	if delay > MaxReminderDelay {
		rs.log.Warn("⚠️ Reminder beyond timer range, it will fire early",
			zap.String("id", entry.ID),
			zap.Duration("delay", delay),
			zap.Duration("cap", MaxReminderDelay))
		delay = MaxReminderDelay
	}

	event := Event{
		Kind:    EventReminderDue,
		Title:   ReminderTitle,
		Body:    "Es hora de realizar tu experimento: " + entry.Experiment,
		EntryID: entry.ID,
	}
	rs.timers.AfterFunc(delay, func() {
		event.At = rs.clock.Now()
		rs.outbox.Publish(event)
	})

	fireAt := now.Add(delay)
	rs.log.Info("⏰ Reminder armed",
		zap.String("id", entry.ID),
		zap.String("in", utils.FormatDelay(delay)))
	return fireAt, true
}

// Rearm schedules every open entry again, e.g. after a restart. Entries whose
// time has passed stay silent.
func (rs *ReminderScheduler) Rearm(entries []database.Entry) int {
	armed := 0
	for _, e := range entries {
		if e.Completed {
			continue
		}
		if _, ok := rs.Schedule(e); ok {
			armed++
		}
	}
	return armed
}
