package services

import (
	"go.uber.org/zap"

	"reality-archive/internal/database"
	"reality-archive/internal/utils"
)

// Store is the persisted slot storage the manager hydrates from and writes to.
type Store interface {
	GetEntries() ([]database.Entry, error)
	SaveEntries(entries []database.Entry) error
	GetAchievements() ([]string, error)
	SaveAchievements(ids []string) error
	GetDarkMode() (bool, error)
	SaveDarkMode(dark bool) error
}

type Options struct {
	Clock      utils.Clock
	Permission PermissionHost
	Timers     TimerFacility
	Logger     *zap.Logger
}

// ServiceManager is the single application-state aggregate. It is hydrated
// once from the store and lives as long as the process. Not safe for
// concurrent use; hosts serialize calls.
type ServiceManager struct {
	Workflow     *WorkflowService
	Archive      *ArchiveService
	Analytics    *AnalyticsService
	Achievements *AchievementService
	Reminders    *ReminderScheduler
	Preferences  *PreferenceService
	Notification *NotificationService
	Outbox       *Outbox

	clock utils.Clock
	log   *zap.Logger
	stats database.Stats
}

// NewServiceManager hydrates state from store. Unreadable slots fall back to
// empty defaults with a warning; startup never fails on bad data.
func NewServiceManager(store Store, opts Options) *ServiceManager {
	if opts.Clock == nil {
		opts.Clock = utils.SystemClock{}
	}
	if opts.Timers == nil {
		opts.Timers = SystemTimers{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	log := opts.Logger

	entries, err := store.GetEntries()
	if err != nil {
		log.Warn("⚠️ Stored entries unreadable, starting empty", zap.Error(err))
		entries = nil
	}
	unlocked, err := store.GetAchievements()
	if err != nil {
		log.Warn("⚠️ Stored achievements unreadable, starting empty", zap.Error(err))
		unlocked = nil
	}
	dark, err := store.GetDarkMode()
	if err != nil {
		log.Warn("⚠️ Stored theme unreadable, using light", zap.Error(err))
		dark = false
	}

	outbox := NewOutbox()
	sm := &ServiceManager{
		Archive:      NewArchiveService(store),
		Analytics:    NewAnalyticsService(opts.Clock),
		Achievements: NewAchievementService(store, outbox, opts.Clock, log),
		Reminders:    NewReminderScheduler(opts.Permission, opts.Timers, opts.Clock, outbox, log),
		Preferences:  NewPreferenceService(store, dark),
		Outbox:       outbox,
		clock:        opts.Clock,
		log:          log,
	}
	sm.Workflow = NewWorkflowService(sm.Archive, sm.Reminders, opts.Clock, log)

	for _, err := range sm.Archive.Restore(entries) {
		log.Warn("⚠️ Stored entry dropped", zap.Error(err))
	}
	sm.Achievements.Restore(unlocked)
	sm.Archive.OnChange(sm.recompute)
	sm.recompute(sm.Archive.Entries())

	log.Info("✅ State hydrated",
		zap.Int("entries", sm.Archive.Len()),
		zap.Int("achievements", len(unlocked)),
		zap.Bool("dark_mode", dark))
	return sm
}

// SetNotificationSender wires the host that delivers outbox events.
func (sm *ServiceManager) SetNotificationSender(sender NotificationSender) {
	sm.Notification = NewNotificationService(sender, sm.Outbox, sm, sm.clock, sm.log)
}

// recompute rebuilds stats from scratch and re-evaluates achievements.
func (sm *ServiceManager) recompute(entries []database.Entry) {
	sm.stats = sm.Analytics.Compute(entries)
	if _, err := sm.Achievements.Evaluate(sm.stats, entries); err != nil {
		sm.log.Warn("⚠️ Achievements not persisted", zap.Error(err))
	}
}

func (sm *ServiceManager) Stats() database.Stats {
	return sm.stats
}

func (sm *ServiceManager) Entries() []database.Entry {
	return sm.Archive.Entries()
}

// CompleteExperiment records the result of the entry referenced by a full id
// or unique id prefix.
func (sm *ServiceManager) CompleteExperiment(ref, result string) (database.Entry, error) {
	entry, err := sm.Archive.Resolve(ref)
	if err != nil {
		return database.Entry{}, err
	}
	updated, err := sm.Archive.Complete(entry.ID, result)
	if err != nil {
		return database.Entry{}, err
	}
	sm.log.Info("🧾 Experiment completed", zap.String("id", updated.ID), zap.Bool("prediction_wrong", updated.ResultText() != updated.Prediction))
	return updated, nil
}

// SimilarToDraft lists earlier entries resembling the current draft.
func (sm *ServiceManager) SimilarToDraft() []database.Entry {
	d := sm.Workflow.Draft()
	return sm.Archive.Similar(d.Symptom, d.BodyPart, SimilarLimit)
}

func (sm *ServiceManager) OverdueExperiments() []database.Entry {
	return sm.Archive.Overdue(sm.clock.Now())
}

// UnlockedAchievements returns catalog entries for the unlocked ids, in
// unlock order. Ids missing from the catalog are skipped.
func (sm *ServiceManager) UnlockedAchievements() []database.Achievement {
	var out []database.Achievement
	for _, id := range sm.Achievements.Unlocked() {
		if a, ok := FindAchievement(id); ok {
			out = append(out, a)
		}
	}
	return out
}

func (sm *ServiceManager) Export() ExportDocument {
	entries := sm.Archive.Entries()
	if entries == nil {
		entries = []database.Entry{}
	}
	return ExportDocument{
		Entries:      entries,
		Stats:        sm.stats,
		Achievements: sm.Achievements.Unlocked(),
		ExportDate:   sm.clock.Now(),
	}
}
