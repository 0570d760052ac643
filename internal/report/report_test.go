package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintcoach/internal/model"
	"sprintcoach/internal/util"
)

func ptr[T any](v T) *T { return &v }

var day0 = model.NewDate(2024, time.May, 13) // Monday

func TestSeriesFillsMissingDays(t *testing.T) {
	r := util.DateRange{From: day0, To: day0.AddDays(2)}
	stats := []model.DayStats{
		{Date: day0, ContentCount: 1, Mood: ptr(4)},
		{Date: day0.AddDays(2), ContentCount: 1, DeepWorkMin: 120, SocialReps: 10, WorkoutCount: 1, SleepLogged: true},
	}

	series := Series(r, stats)
	require.Len(t, series, 3)
	assert.Equal(t, 30, series[0].Score)
	assert.Equal(t, 4, *series[0].Mood)
	assert.Equal(t, 0, series[1].Score)
	assert.Equal(t, 100, series[2].Score)

	assert.InDelta(t, 43.3, Average(series), 0.001)
	assert.Equal(t, TrendUp, Trend(series))
}

func TestTrend(t *testing.T) {
	assert.Equal(t, TrendStable, Trend(nil))
	assert.Equal(t, TrendStable, Trend([]ScorePoint{{Score: 50}}))
	assert.Equal(t, TrendDown, Trend([]ScorePoint{{Score: 50}, {Score: 90}, {Score: 40}}))
	assert.Equal(t, TrendStable, Trend([]ScorePoint{{Score: 50}, {Score: 10}, {Score: 50}}))
	assert.Zero(t, Average(nil))
}

func TestHabitCompletionRates(t *testing.T) {
	habits := []model.Habit{{ID: 1, Name: "Read", Target: 20}, {ID: 2, Name: "Walk", Target: 1}}
	logs := []model.HabitLog{
		{HabitID: 1, Date: day0, Value: 25},
		{HabitID: 1, Date: day0.AddDays(1), Value: 20},
		{HabitID: 1, Date: day0.AddDays(2), Value: 5},
		{HabitID: 99, Date: day0, Value: 1},
	}

	got := HabitCompletionRates(habits, logs)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].DaysLogged)
	assert.Equal(t, 2, got[0].DaysCompleted)
	assert.InDelta(t, 66.7, got[0].Rate, 0.001)
	assert.Zero(t, got[1].Rate)
}

func TestBuild(t *testing.T) {
	r := util.DateRange{From: day0, To: day0.AddDays(1)}
	rep := Build(r, Inputs{
		Content: []model.ContentLog{{Kind: "reel"}, {Kind: "reel"}, {Kind: "post"}},
		Deals: []model.Deal{
			{Amount: 100, Date: day0, Status: model.DealStatusWon},
			{Amount: 50.5, Date: day0, Status: model.DealStatusWon},
			{Amount: 999, Date: day0, Status: model.DealStatusPending},
			{Amount: 10, Date: day0.AddDays(5), Status: model.DealStatusWon},
		},
		Leads: []model.Lead{{Status: model.LeadStatusNew}, {Status: model.LeadStatusWon}, {Status: model.LeadStatusNew}},
	})

	assert.Equal(t, map[string]int{"reel": 2, "post": 1}, rep.ContentByKind)
	require.Len(t, rep.RevenueByDay, 2)
	assert.InDelta(t, 150.5, rep.RevenueByDay[0].Revenue, 0.001)
	assert.Zero(t, rep.RevenueByDay[1].Revenue)
	assert.Equal(t, 2, rep.LeadsByStatus[model.LeadStatusNew])
	assert.Equal(t, 0, rep.LeadsByStatus[model.LeadStatusBooked])
	assert.Equal(t, TrendStable, rep.Trend)
}

func TestRevenue(t *testing.T) {
	today := model.NewDate(2024, time.May, 20)
	deals := []model.Deal{
		{Amount: 1000, COGS: ptr(200.0), Date: model.NewDate(2024, 5, 2), Status: model.DealStatusWon},
		{Amount: 500, Date: model.NewDate(2024, 4, 28), Status: model.DealStatusWon},
		{Amount: 300, Date: model.NewDate(2024, 5, 3), Status: model.DealStatusLost},
		{Amount: 2000, Date: model.NewDate(2024, 5, 4), Status: model.DealStatusPending, Probability: 25},
	}

	s := Revenue(deals, today)
	assert.Equal(t, 1500.0, s.TotalRevenue)
	assert.Equal(t, 1000.0, s.RevenueThisMonth)
	assert.Equal(t, 750.0, s.AverageDealSize)
	assert.InDelta(t, 66.7, s.WinRate, 0.001)
	assert.Equal(t, 500.0, s.WeightedPipeline)
	assert.Equal(t, 1300.0, s.GrossProfit)
	assert.Equal(t, []MonthlyRevenue{{Month: "2024-04", Revenue: 500, Deals: 1}, {Month: "2024-05", Revenue: 1000, Deals: 1}}, s.Monthly)
	assert.Equal(t, map[string]int{"won": 2, "lost": 1, "pending": 1}, s.StatusBreakdown)
}

func TestRevenueEmpty(t *testing.T) {
	s := Revenue(nil, day0)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.AverageDealSize)
	assert.Empty(t, s.Monthly)
}

func TestTimeFilterRange(t *testing.T) {
	today := model.NewDate(2024, time.May, 20)

	_, ok, err := TimeFilterRange("all", today)
	require.NoError(t, err)
	assert.False(t, ok)

	r, ok, err := TimeFilterRange(TimeFilterThisMonth, today)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-05-01", r.From.String())

	r, _, err = TimeFilterRange(TimeFilterLast30Days, today)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-21", r.From.String())

	_, _, err = TimeFilterRange("last_year", today)
	assert.Error(t, err)
}

func TestFunnel(t *testing.T) {
	today := model.NewDate(2024, time.May, 15) // week of Sunday 2024-05-12
	thisWeek := model.NewDate(2024, time.May, 12)
	lastWeek := thisWeek.AddDays(-7)

	outreach := []model.OutreachLog{
		{Date: thisWeek, Channel: "dm"},
		{Date: thisWeek.AddDays(1), Channel: "dm", Outcome: ptr("replied")},
		{Date: thisWeek.AddDays(2), Channel: "email", Outcome: ptr(" Booked ")},
		{Date: lastWeek.AddDays(3), Channel: "call", Outcome: ptr("")},
		{Date: lastWeek.AddDays(-30), Channel: "call"},
	}
	bookings := []LeadBooking{{LeadID: 1, Date: lastWeek.AddDays(1)}}
	deals := []model.Deal{{Date: thisWeek.AddDays(3)}, {Date: lastWeek}}

	weeks := Funnel(today, 2, outreach, bookings, deals)
	require.Len(t, weeks, 2)

	assert.Equal(t, lastWeek, weeks[0].Week)
	assert.Equal(t, FunnelWeek{Week: lastWeek, OutreachCount: 1, Responses: 0, Bookings: 1, Deals: 1}, weeks[0])
	assert.Equal(t, FunnelWeek{Week: thisWeek, OutreachCount: 3, Responses: 2, Bookings: 1, Deals: 1}, weeks[1])

	assert.Len(t, Funnel(today, 0, nil, nil, nil), 8)
}

func TestFunnelCountsBookedLeadOncePerWeek(t *testing.T) {
	today := model.NewDate(2024, time.May, 15)
	thisWeek := model.NewDate(2024, time.May, 12)
	lead := int64(7)

	outreach := []model.OutreachLog{
		{Date: thisWeek.AddDays(1), Channel: "dm", LeadID: &lead, Outcome: ptr("booked")},
		{Date: thisWeek.AddDays(2), Channel: "dm", LeadID: &lead, Outcome: ptr("booked")},
	}
	bookings := []LeadBooking{
		{LeadID: lead, Date: thisWeek.AddDays(1)},
		{LeadID: lead, Date: thisWeek.AddDays(-3)},
		{LeadID: 8, Date: thisWeek.AddDays(4)},
	}

	weeks := Funnel(today, 2, outreach, bookings, nil)
	require.Len(t, weeks, 2)

	assert.Equal(t, 1, weeks[0].Bookings)
	assert.Equal(t, FunnelWeek{Week: thisWeek, OutreachCount: 2, Responses: 2, Bookings: 2}, weeks[1])
}
