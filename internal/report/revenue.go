package report

import (
	"fmt"

	"sprintcoach/internal/model"
	"sprintcoach/internal/util"
)

const (
	TimeFilterAll        = "all"
	TimeFilterThisMonth  = "this_month"
	TimeFilterLast30Days = "last_30_days"
)

type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Deals   int     `json:"deals"`
}

type RevenueStats struct {
	TotalRevenue     float64          `json:"total_revenue"`
	RevenueThisMonth float64          `json:"revenue_this_month"`
	AverageDealSize  float64          `json:"average_deal_size"`
	WinRate          float64          `json:"win_rate"`
	WeightedPipeline float64          `json:"weighted_pipeline"`
	GrossProfit      float64          `json:"gross_profit"`
	Monthly          []MonthlyRevenue `json:"monthly"`
	StatusBreakdown  map[string]int   `json:"status_breakdown"`
}

// TimeFilterRange resolves a deal time filter; ok is false for "all".
func TimeFilterRange(filter string, today model.Date) (r util.DateRange, ok bool, err error) {
	switch filter {
	case "", TimeFilterAll:
		return util.DateRange{}, false, nil
	case TimeFilterThisMonth:
		return util.DateRange{From: util.MonthStart(today), To: today}, true, nil
	case TimeFilterLast30Days:
		return util.DateRange{From: today.AddDays(-29), To: today}, true, nil
	default:
		return util.DateRange{}, false, fmt.Errorf("unknown time filter %q", filter)
	}
}

// Revenue computes revenue statistics over every deal of a user.
func Revenue(deals []model.Deal, today model.Date) RevenueStats {
	stats := RevenueStats{StatusBreakdown: make(map[string]int, len(model.DealStatuses))}
	for _, s := range model.DealStatuses {
		stats.StatusBreakdown[s] = 0
	}

	monthStart := util.MonthStart(today)
	monthly := make(map[string]*MonthlyRevenue)
	won, closed := 0, 0
	for _, d := range deals {
		stats.StatusBreakdown[d.Status]++

		switch d.Status {
		case model.DealStatusWon:
			won++
			closed++
			stats.TotalRevenue += d.Amount
			cogs := 0.0
			if d.COGS != nil {
				cogs = *d.COGS
			}
			stats.GrossProfit += d.Amount - cogs
			if !d.Date.Before(monthStart) && !d.Date.After(today) {
				stats.RevenueThisMonth += d.Amount
			}

			key := fmt.Sprintf("%04d-%02d", d.Date.Year(), int(d.Date.Month()))
			m, ok := monthly[key]
			if !ok {
				m = &MonthlyRevenue{Month: key}
				monthly[key] = m
			}
			m.Revenue += d.Amount
			m.Deals++
		case model.DealStatusLost:
			closed++
		case model.DealStatusPending:
			stats.WeightedPipeline += d.Amount * float64(d.Probability) / 100
		}
	}

	if won > 0 {
		stats.AverageDealSize = round2(stats.TotalRevenue / float64(won))
	}
	if closed > 0 {
		stats.WinRate = round1(float64(won) / float64(closed) * 100)
	}
	stats.TotalRevenue = round2(stats.TotalRevenue)
	stats.RevenueThisMonth = round2(stats.RevenueThisMonth)
	stats.WeightedPipeline = round2(stats.WeightedPipeline)
	stats.GrossProfit = round2(stats.GrossProfit)

	stats.Monthly = make([]MonthlyRevenue, 0, len(monthly))
	for _, k := range sortedKeys(monthly) {
		m := monthly[k]
		m.Revenue = round2(m.Revenue)
		stats.Monthly = append(stats.Monthly, *m)
	}
	return stats
}
