package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reality-archive/internal/database"
	"reality-archive/internal/utils"
)

type memAchievementStore struct {
	saved [][]string
	err   error
}

func (m *memAchievementStore) SaveAchievements(ids []string) error {
	m.saved = append(m.saved, ids)
	return m.err
}

func newTestAchievements(store AchievementStore) (*AchievementService, *Outbox) {
	outbox := NewOutbox()
	return NewAchievementService(store, outbox, utils.FixedClock{T: testNow}, zap.NewNop()), outbox
}

func TestEvaluate_FirstExperiment(t *testing.T) {
	store := &memAchievementStore{}
	svc, outbox := newTestAchievements(store)

	newly, err := svc.Evaluate(database.Stats{TotalExperiments: 1, Streak: 1}, []database.Entry{entryOn(0)})
	require.NoError(t, err)
	require.Len(t, newly, 1)
	assert.Equal(t, "first_experiment", newly[0].ID)
	assert.Equal(t, [][]string{{"first_experiment"}}, store.saved)

	events := outbox.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventAchievementUnlocked, events[0].Kind)
	assert.Equal(t, "first_experiment", events[0].AchievementID)
	assert.Contains(t, events[0].Body, "Primer Experimento")
}

func TestEvaluate_NeverRefires(t *testing.T) {
	store := &memAchievementStore{}
	svc, outbox := newTestAchievements(store)
	entries := []database.Entry{entryOn(0)}

	_, err := svc.Evaluate(database.Stats{TotalExperiments: 1}, entries)
	require.NoError(t, err)
	outbox.Drain()

	newly, err := svc.Evaluate(database.Stats{TotalExperiments: 1}, entries)
	require.NoError(t, err)
	assert.Empty(t, newly)
	assert.Zero(t, outbox.Len())
	assert.Len(t, store.saved, 1, "nothing new, nothing saved")
}

func TestEvaluate_MonotonicWhenConditionLapses(t *testing.T) {
	svc, _ := newTestAchievements(&memAchievementStore{})

	_, err := svc.Evaluate(database.Stats{Streak: 7, PredictionAccuracy: 100}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"streak_week", "reality_master"}, svc.Unlocked())

	sizes := []int{len(svc.Unlocked())}
	for _, stats := range []database.Stats{{}, {Streak: 1}, {PredictionAccuracy: 10}, {CompletedExperiments: 50}} {
		_, err := svc.Evaluate(stats, nil)
		require.NoError(t, err)
		sizes = append(sizes, len(svc.Unlocked()))
	}

	for i := 1; i < len(sizes); i++ {
		assert.GreaterOrEqual(t, sizes[i], sizes[i-1])
	}
	assert.True(t, svc.IsUnlocked("streak_week"))
	assert.True(t, svc.IsUnlocked("experiment_veteran"))
}

func TestEvaluate_Thresholds(t *testing.T) {
	tests := []struct {
		id    string
		below database.Stats
		at    database.Stats
	}{
		{"streak_week", database.Stats{Streak: 6}, database.Stats{Streak: 7}},
		{"catastrophic_hunter", database.Stats{CatastrophicReductions: 9}, database.Stats{CatastrophicReductions: 10}},
		{"reality_master", database.Stats{PredictionAccuracy: 79}, database.Stats{PredictionAccuracy: 80}},
		{"experiment_veteran", database.Stats{CompletedExperiments: 49}, database.Stats{CompletedExperiments: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			svc, _ := newTestAchievements(&memAchievementStore{})

			_, err := svc.Evaluate(tt.below, nil)
			require.NoError(t, err)
			assert.False(t, svc.IsUnlocked(tt.id))

			_, err = svc.Evaluate(tt.at, nil)
			require.NoError(t, err)
			assert.True(t, svc.IsUnlocked(tt.id))
		})
	}
}

func TestEvaluate_CatalogOrderWhenSeveralUnlock(t *testing.T) {
	svc, outbox := newTestAchievements(&memAchievementStore{})
	stats := database.Stats{TotalExperiments: 60, CompletedExperiments: 55, PredictionAccuracy: 90, CatastrophicReductions: 12, Streak: 8}
	entries := make([]database.Entry, 60)

	newly, err := svc.Evaluate(stats, entries)
	require.NoError(t, err)
	require.Len(t, newly, len(AchievementCatalog))

	events := outbox.Drain()
	require.Len(t, events, len(AchievementCatalog))
	for i, a := range AchievementCatalog {
		assert.Equal(t, a.ID, newly[i].ID)
		assert.Equal(t, a.ID, events[i].AchievementID)
	}
}

func TestEvaluate_RestoredIdsAreNotReported(t *testing.T) {
	svc, outbox := newTestAchievements(&memAchievementStore{})
	svc.Restore([]string{"first_experiment", "first_experiment", "legacy_badge"})

	newly, err := svc.Evaluate(database.Stats{TotalExperiments: 3}, make([]database.Entry, 3))
	require.NoError(t, err)
	assert.Empty(t, newly)
	assert.Zero(t, outbox.Len())
	assert.Equal(t, []string{"first_experiment", "legacy_badge"}, svc.Unlocked())
}

func TestEvaluate_SaveFailureKeepsUnlock(t *testing.T) {
	svc, _ := newTestAchievements(&memAchievementStore{err: errors.New("disk full")})

	newly, err := svc.Evaluate(database.Stats{TotalExperiments: 1}, []database.Entry{entryOn(0)})
	assert.Error(t, err)
	assert.Len(t, newly, 1)
	assert.True(t, svc.IsUnlocked("first_experiment"))
}
