package services

import (
	"fmt"

	"go.uber.org/zap"

	"reality-archive/internal/database"
	"reality-archive/internal/utils"
)

// NotificationSender delivers a notification to the user.
type NotificationSender interface {
	SendNotification(title, body string) error
}

// SummarySource provides what the daily summary reports.
type SummarySource interface {
	Stats() database.Stats
	OverdueExperiments() []database.Entry
}

// NotificationService moves events from the outbox to the sender. Delivery
// failures are logged and dropped; nothing is retried.
type NotificationService struct {
	sender  NotificationSender
	outbox  *Outbox
	summary SummarySource
	clock   utils.Clock
	log     *zap.Logger
}

func NewNotificationService(sender NotificationSender, outbox *Outbox, summary SummarySource, clock utils.Clock, log *zap.Logger) *NotificationService {
	return &NotificationService{
		sender:  sender,
		outbox:  outbox,
		summary: summary,
		clock:   clock,
		log:     log,
	}
}

// Flush delivers every pending event and returns how many were sent.
func (ns *NotificationService) Flush() int {
	sent := 0
	for _, event := range ns.outbox.Drain() {
		if err := ns.sender.SendNotification(event.Title, event.Body); err != nil {
			ns.log.Warn("⚠️ Notification failed", zap.String("kind", string(event.Kind)), zap.Error(err))
			continue
		}
		sent++
		ns.log.Debug("📨 Notification sent", zap.String("kind", string(event.Kind)), zap.String("entry", event.EntryID))
	}
	return sent
}

// SendDailySummary publishes today's summary and flushes the outbox.
func (ns *NotificationService) SendDailySummary() {
	now := ns.clock.Now()
	stats := ns.summary.Stats()
	overdue := ns.summary.OverdueExperiments()

	body := fmt.Sprintf(
		"🧪 Experimentos: %d (completados: %d)\n"+
			"🎯 Predicciones erróneas: %d%%\n"+
			"🔥 Racha: %d días\n"+
			"📈 Intensidad media: %d/10",
		stats.TotalExperiments,
		stats.CompletedExperiments,
		stats.PredictionAccuracy,
		stats.Streak,
		stats.AvgIntensity,
	)
	if len(overdue) > 0 {
		body += fmt.Sprintf("\n\n⏰ Pendientes de registrar resultado: %d", len(overdue))
	}

	ns.outbox.Publish(Event{
		Kind:  EventDailySummary,
		Title: fmt.Sprintf("📊 Resumen del día %s", utils.DayKey(now, now.Location())),
		Body:  body,
		At:    now,
	})
	ns.Flush()
}
