package services

import (
	"fmt"

	"go.uber.org/zap"

	"reality-archive/internal/database"
	"reality-archive/internal/utils"
)

// AchievementCatalog is the fixed list of achievements, in evaluation order.
// IDs are persisted; keep them stable.
var AchievementCatalog = []database.Achievement{
	{ID: "first_experiment", Title: "Primer Experimento", Description: "Has registrado tu primer experimento", Icon: "🔬", Requirement: 1},
	{ID: "streak_week", Title: "Semana Activa", Description: "7 días consecutivos registrando", Icon: "🔥", Requirement: 7},
	{ID: "catastrophic_hunter", Title: "Cazador de Catástrofes", Description: "Has detectado 10 pensamientos catastróficos", Icon: "🎯", Requirement: 10},
	{ID: "reality_master", Title: "Maestro de la Realidad", Description: "80% de tus predicciones fueron erróneas", Icon: "🏆", Requirement: 80},
	{ID: "experiment_veteran", Title: "Veterano Experimental", Description: "50 experimentos completados", Icon: "🎖️", Requirement: 50},
}

// achievementMetrics maps each achievement to the value compared against its
// requirement.
var achievementMetrics = map[string]func(database.Stats, []database.Entry) int{
	"first_experiment":    func(_ database.Stats, entries []database.Entry) int { return len(entries) },
	"streak_week":         func(s database.Stats, _ []database.Entry) int { return s.Streak },
	"catastrophic_hunter": func(s database.Stats, _ []database.Entry) int { return s.CatastrophicReductions },
	"reality_master":      func(s database.Stats, _ []database.Entry) int { return s.PredictionAccuracy },
	"experiment_veteran":  func(s database.Stats, _ []database.Entry) int { return s.CompletedExperiments },
}

// AchievementStore persists the unlocked set.
type AchievementStore interface {
	SaveAchievements(ids []string) error
}

// AchievementService owns the unlocked set. Ids are only ever added.
type AchievementService struct {
	store    AchievementStore
	outbox   *Outbox
	clock    utils.Clock
	log      *zap.Logger
	unlocked []string
	set      map[string]struct{}
}

func NewAchievementService(store AchievementStore, outbox *Outbox, clock utils.Clock, log *zap.Logger) *AchievementService {
	return &AchievementService{
		store:  store,
		outbox: outbox,
		clock:  clock,
		log:    log,
		set:    make(map[string]struct{}),
	}
}

// Restore seeds the unlocked set from storage. Unknown or duplicate ids are
// kept once, so a newer catalog never loses what an older one stored.
func (s *AchievementService) Restore(ids []string) {
	for _, id := range ids {
		s.add(id)
	}
}

// Evaluate checks every locked achievement against fresh stats, unlocks the
// satisfied ones, persists the set and publishes one event per unlock.
func (s *AchievementService) Evaluate(stats database.Stats, entries []database.Entry) ([]database.Achievement, error) {
	var newly []database.Achievement
	for _, a := range AchievementCatalog {
		if s.IsUnlocked(a.ID) {
			continue
		}
		metric, ok := achievementMetrics[a.ID]
		if !ok || metric(stats, entries) < a.Requirement {
			continue
		}
		s.add(a.ID)
		newly = append(newly, a)
	}

	if len(newly) == 0 {
		return nil, nil
	}

	for _, a := range newly {
		s.log.Info("🏆 Achievement unlocked", zap.String("id", a.ID))
		s.outbox.Publish(Event{
			Kind:          EventAchievementUnlocked,
			Title:         "🎉 ¡Logro desbloqueado!",
			Body:          fmt.Sprintf("%s %s\n%s", a.Icon, a.Title, a.Description),
			AchievementID: a.ID,
			At:            s.clock.Now(),
		})
	}

	if err := s.store.SaveAchievements(s.Unlocked()); err != nil {
		return newly, fmt.Errorf("save achievements: %w", err)
	}
	return newly, nil
}

func (s *AchievementService) IsUnlocked(id string) bool {
	_, ok := s.set[id]
	return ok
}

// Unlocked returns the unlocked ids in unlock order.
func (s *AchievementService) Unlocked() []string {
	out := make([]string, len(s.unlocked))
	copy(out, s.unlocked)
	return out
}

func (s *AchievementService) add(id string) {
	if _, ok := s.set[id]; ok {
		return
	}
	s.set[id] = struct{}{}
	s.unlocked = append(s.unlocked, id)
}

// FindAchievement looks up a catalog entry by id.
func FindAchievement(id string) (database.Achievement, bool) {
	for _, a := range AchievementCatalog {
		if a.ID == id {
			return a, true
		}
	}
	return database.Achievement{}, false
}
