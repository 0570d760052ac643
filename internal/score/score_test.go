package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sprintcoach/internal/model"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		stats model.DayStats
		want  int
	}{
		{"empty day", model.DayStats{}, 0},
		{"content only", model.DayStats{ContentCount: 3}, 30},
		{"half deep work", model.DayStats{DeepWorkMin: 60}, 15},
		{"deep work capped", model.DayStats{DeepWorkMin: 500}, 30},
		{"reps partial", model.DayStats{SocialReps: 4}, 8},
		{"reps capped", model.DayStats{SocialReps: 25}, 20},
		{"workout and sleep", model.DayStats{WorkoutCount: 2, SleepLogged: true}, 20},
		{"perfect day", model.DayStats{ContentCount: 1, DeepWorkMin: 120, SocialReps: 10, WorkoutCount: 1, SleepLogged: true}, 100},
		{"rounds down below half", model.DayStats{DeepWorkMin: 1}, 0},
		{"rounds half up", model.DayStats{DeepWorkMin: 2}, 1},
		{"negative inputs ignored", model.DayStats{DeepWorkMin: -30, SocialReps: -2, ContentCount: -1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.stats))
		})
	}
}

func TestComputeBounds(t *testing.T) {
	for minutes := 0; minutes <= 300; minutes += 7 {
		for reps := 0; reps <= 15; reps++ {
			s := Compute(model.DayStats{ContentCount: 1, DeepWorkMin: minutes, SocialReps: reps, WorkoutCount: 1, SleepLogged: true})
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
		}
	}
}

func TestStreak(t *testing.T) {
	today := model.NewDate(2024, time.June, 10)
	scores := map[model.Date]int{
		today.AddDays(-1): 80,
		today.AddDays(-2): 70,
		today.AddDays(-3): 69,
		today.AddDays(-4): 100,
	}

	assert.Equal(t, 2, Streak(scores, today, 70), "today below threshold counts from yesterday")

	scores[today] = 90
	assert.Equal(t, 3, Streak(scores, today, 70))

	assert.Equal(t, 1, Streak(scores, today, 85))
	assert.Equal(t, 0, Streak(map[model.Date]int{}, today, 70))
	assert.Equal(t, 3, Streak(scores, today, 0), "non-positive threshold falls back to default")
}

func TestApplyAndScoreMap(t *testing.T) {
	d := model.NewDate(2024, 1, 1)
	stats := []model.DayStats{{Date: d, ContentCount: 1}, {Date: d.AddDays(1), SleepLogged: true}}
	Apply(stats)
	assert.Equal(t, 30, stats[0].Score)
	assert.Equal(t, 10, stats[1].Score)

	m := ScoreMap(stats)
	assert.Equal(t, 30, m[d])
}
