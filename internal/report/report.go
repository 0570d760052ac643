// Package report holds the in-memory aggregates behind reports, revenue stats and the sales funnel.
package report

import (
	"math"
	"sort"

	"sprintcoach/internal/model"
	"sprintcoach/internal/score"
	"sprintcoach/internal/util"
)

const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

type ScorePoint struct {
	Date  model.Date `json:"date"`
	Score int        `json:"score"`
	Mood  *int       `json:"mood,omitempty"`
}

type HabitCompletion struct {
	HabitID       int64   `json:"habit_id"`
	Name          string  `json:"name"`
	DaysLogged    int     `json:"days_logged"`
	DaysCompleted int     `json:"days_completed"`
	Rate          float64 `json:"completion_rate"`
}

type RevenuePoint struct {
	Date    model.Date `json:"date"`
	Revenue float64    `json:"revenue"`
}

type Report struct {
	Range         util.DateRange    `json:"range"`
	Series        []ScorePoint      `json:"series"`
	AverageScore  float64           `json:"average_score"`
	Trend         string            `json:"trend"`
	Habits        []HabitCompletion `json:"habits"`
	ContentByKind map[string]int    `json:"content_by_kind"`
	RevenueByDay  []RevenuePoint    `json:"revenue_by_day"`
	LeadsByStatus map[string]int    `json:"leads_by_status"`
}

// Inputs are the rows a report is built from, already limited to the report range.
type Inputs struct {
	Stats     []model.DayStats
	Habits    []model.Habit
	HabitLogs []model.HabitLog
	Content   []model.ContentLog
	Deals     []model.Deal
	Leads     []model.Lead
}

func Build(r util.DateRange, in Inputs) Report {
	series := Series(r, in.Stats)
	return Report{
		Range:         r,
		Series:        series,
		AverageScore:  Average(series),
		Trend:         Trend(series),
		Habits:        HabitCompletionRates(in.Habits, in.HabitLogs),
		ContentByKind: ContentByKind(in.Content),
		RevenueByDay:  RevenueByDay(r, in.Deals),
		LeadsByStatus: LeadsByStatus(in.Leads),
	}
}

// Series returns one point per day in r; days without stats score zero.
func Series(r util.DateRange, stats []model.DayStats) []ScorePoint {
	byDate := make(map[model.Date]model.DayStats, len(stats))
	for _, s := range stats {
		byDate[s.Date] = s
	}

	days := r.Days()
	out := make([]ScorePoint, 0, len(days))
	for _, d := range days {
		s := byDate[d]
		out = append(out, ScorePoint{Date: d, Score: score.Compute(s), Mood: s.Mood})
	}
	return out
}

// Average returns the mean score rounded to one decimal place.
func Average(series []ScorePoint) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0
	for _, p := range series {
		sum += p.Score
	}
	return round1(float64(sum) / float64(len(series)))
}

// Trend compares the last day of the series with the first.
func Trend(series []ScorePoint) string {
	if len(series) < 2 {
		return TrendStable
	}
	first, last := series[0].Score, series[len(series)-1].Score
	switch {
	case last > first:
		return TrendUp
	case last < first:
		return TrendDown
	default:
		return TrendStable
	}
}

// HabitCompletionRates counts, per habit, logged days and days whose value met the target.
func HabitCompletionRates(habits []model.Habit, logs []model.HabitLog) []HabitCompletion {
	byHabit := make(map[int64]*HabitCompletion, len(habits))
	targets := make(map[int64]float64, len(habits))
	out := make([]HabitCompletion, len(habits))
	for i, h := range habits {
		out[i] = HabitCompletion{HabitID: h.ID, Name: h.Name}
		byHabit[h.ID] = &out[i]
		targets[h.ID] = h.Target
	}

	for _, l := range logs {
		hc, ok := byHabit[l.HabitID]
		if !ok {
			continue
		}
		hc.DaysLogged++
		if l.Value >= targets[l.HabitID] {
			hc.DaysCompleted++
		}
	}

	for i := range out {
		if out[i].DaysLogged > 0 {
			out[i].Rate = round1(float64(out[i].DaysCompleted) / float64(out[i].DaysLogged) * 100)
		}
	}
	return out
}

func ContentByKind(logs []model.ContentLog) map[string]int {
	out := make(map[string]int)
	for _, l := range logs {
		out[l.Kind]++
	}
	return out
}

// RevenueByDay sums won deal amounts per day of r.
func RevenueByDay(r util.DateRange, deals []model.Deal) []RevenuePoint {
	totals := make(map[model.Date]float64)
	for _, d := range deals {
		if d.Status == model.DealStatusWon && r.Contains(d.Date) {
			totals[d.Date] += d.Amount
		}
	}

	days := r.Days()
	out := make([]RevenuePoint, 0, len(days))
	for _, d := range days {
		out = append(out, RevenuePoint{Date: d, Revenue: round2(totals[d])})
	}
	return out
}

// LeadsByStatus counts leads per status, listing every known status.
func LeadsByStatus(leads []model.Lead) map[string]int {
	out := make(map[string]int, len(model.LeadStatuses))
	for _, s := range model.LeadStatuses {
		out[s] = 0
	}
	for _, l := range leads {
		out[l.Status]++
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
