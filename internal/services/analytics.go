package services

import (
	"math"
	"time"

	"reality-archive/internal/database"
	"reality-archive/internal/utils"
)

// MaxStreakDays bounds the backward walk of the streak computation.
const MaxStreakDays = 365

type AnalyticsService struct {
	clock utils.Clock
}

func NewAnalyticsService(clock utils.Clock) *AnalyticsService {
	return &AnalyticsService{
		clock: clock,
	}
}

// Compute derives Stats from scratch. It never looks at previous results.
func (as *AnalyticsService) Compute(entries []database.Entry) database.Stats {
	var completed, wrongPredictions, withAlarm, totalIntensity int

	for _, e := range entries {
		if e.Completed {
			completed++
			if e.ResultText() != e.Prediction {
				wrongPredictions++
			}
		}
		if len(e.CatastrophicWords) > 0 {
			withAlarm++
		}
		totalIntensity += e.Intensity
	}

	stats := database.Stats{
		TotalExperiments:       len(entries),
		CompletedExperiments:   completed,
		CatastrophicReductions: withAlarm,
		Streak:                 Streak(entries, as.clock.Now()),
	}
	if completed > 0 {
		stats.PredictionAccuracy = roundPercent(wrongPredictions, completed)
	}
	if len(entries) > 0 {
		stats.AvgIntensity = int(math.Round(float64(totalIntensity) / float64(len(entries))))
	}
	return stats
}

// Streak counts consecutive local calendar days, ending today, that hold at
// least one entry. Days are taken in now's location.
func Streak(entries []database.Entry, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}

	loc := now.Location()
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[utils.DayKey(e.Timestamp, loc)] = struct{}{}
	}

	today := utils.StartOfDay(now, loc)
	streak := 0
	for i := 0; i < MaxStreakDays; i++ {
		day := today.AddDate(0, 0, -i)
		if _, ok := days[utils.DayKey(day, loc)]; !ok {
			break
		}
		streak++
	}
	return streak
}

func roundPercent(part, total int) int {
	return int(math.Round(float64(part) * 100 / float64(total)))
}
