// Package score computes the daily score and the day streak.
package score

import (
	"math"

	"sprintcoach/internal/model"
)

const (
	ContentPoints  = 30
	DeepWorkPoints = 30
	RepsPoints     = 20
	WorkoutPoints  = 10
	SleepPoints    = 10

	// DeepWorkGoalMinutes earns the full deep work points.
	DeepWorkGoalMinutes = 120
	// RepsGoal earns the full social reps points.
	RepsGoal = 10

	DefaultStreakThreshold = 70
)

// Compute returns the 0-100 score for a day's stats. Missing or negative counts score zero.
func Compute(s model.DayStats) int {
	total := 0.0
	if s.ContentCount > 0 {
		total += ContentPoints
	}
	if s.DeepWorkMin > 0 {
		total += math.Min(DeepWorkPoints, float64(s.DeepWorkMin)*DeepWorkPoints/DeepWorkGoalMinutes)
	}
	if s.SocialReps > 0 {
		total += math.Min(RepsPoints, float64(s.SocialReps)*RepsPoints/RepsGoal)
	}
	if s.WorkoutCount > 0 {
		total += WorkoutPoints
	}
	if s.SleepLogged {
		total += SleepPoints
	}

	rounded := int(math.Floor(total + 0.5))
	return max(0, min(100, rounded))
}

// Apply fills in Score on each stats row.
func Apply(stats []model.DayStats) {
	for i := range stats {
		stats[i].Score = Compute(stats[i])
	}
}

// Streak counts consecutive days with a score of at least threshold ending at today.
// When today has not reached the threshold the run ending yesterday is counted instead.
func Streak(scores map[model.Date]int, today model.Date, threshold int) int {
	if threshold <= 0 {
		threshold = DefaultStreakThreshold
	}

	day := today
	if scores[today] < threshold {
		day = today.AddDays(-1)
	}

	streak := 0
	for scores[day] >= threshold {
		streak++
		day = day.AddDays(-1)
	}
	return streak
}

// ScoreMap indexes computed scores by date.
func ScoreMap(stats []model.DayStats) map[model.Date]int {
	m := make(map[model.Date]int, len(stats))
	for _, s := range stats {
		m[s.Date] = Compute(s)
	}
	return m
}
