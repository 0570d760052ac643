package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mqcontracts "sprintcoach/contracts/mq"
	"sprintcoach/internal/model"
	"sprintcoach/internal/repository"
)

func TestSetLeadStatusEmitsOnlyOnChange(t *testing.T) {
	w := newWorld()
	w.leads = newFakeLeads(model.Lead{ID: 5, UserID: w.userID, Name: "Acme", Status: model.LeadStatusNew})
	w.tx.stores = w.stores()
	svc := NewSalesService(w.stores(), w.tx, w.cal, w.logger)
	ctx := context.Background()

	l, err := svc.SetLeadStatus(ctx, w.userID, 5, model.LeadStatusBooked)
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusBooked, l.Status)
	require.Len(t, w.sink.events, 1)
	assert.Equal(t, mqcontracts.RoutingLeadStatusChanged, w.sink.events[0].routingKey)
	assert.Equal(t, mqcontracts.LeadStatusChangedPayload{LeadID: 5, From: model.LeadStatusNew, To: model.LeadStatusBooked}, w.sink.events[0].payload)

	_, err = svc.SetLeadStatus(ctx, w.userID, 5, model.LeadStatusBooked)
	require.NoError(t, err)
	assert.Len(t, w.sink.events, 1)

	_, err = svc.SetLeadStatus(ctx, uuid.New(), 5, model.LeadStatusWon)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogOutreachStampsLead(t *testing.T) {
	w := newWorld()
	w.leads = newFakeLeads(model.Lead{ID: 9, UserID: w.userID, Name: "Acme", Status: model.LeadStatusContacted})
	w.tx.stores = w.stores()
	svc := NewSalesService(w.stores(), w.tx, w.cal, w.logger)

	leadID := int64(9)
	o, err := svc.LogOutreach(context.Background(), w.userID, model.OutreachInput{LeadID: &leadID, Channel: "dm"})
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2024, 6, 6), o.Date)
	assert.Equal(t, []int64{9}, w.leads.touched)
	assert.Equal(t, fixedNow, *w.leads.leads[9].LastContactAt)

	missing := int64(10)
	_, err = svc.LogOutreach(context.Background(), w.userID, model.OutreachInput{LeadID: &missing, Channel: "dm"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, w.leads.outreach, 1)
}

func TestCreateDealDefaults(t *testing.T) {
	w := newWorld()
	svc := NewSalesService(w.stores(), w.tx, w.cal, w.logger)

	d, err := svc.CreateDeal(context.Background(), w.userID, model.DealInput{Amount: 500})
	require.NoError(t, err)
	assert.Equal(t, model.DealStatusWon, d.Status)
	assert.Equal(t, 50, d.Probability)
	assert.Equal(t, model.NewDate(2024, 6, 6), d.Date)
	assert.Equal(t, []string{mqcontracts.RoutingDealRecorded}, w.sink.keys())
}

func TestListDealsTimeFilter(t *testing.T) {
	w := newWorld()
	svc := NewSalesService(w.stores(), w.tx, w.cal, w.logger)
	ctx := context.Background()

	_, err := svc.ListDeals(ctx, w.userID, "", "this_month")
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2024, 6, 1), w.deals.lastFrom)
	assert.Equal(t, model.NewDate(2024, 6, 6), w.deals.lastTo)

	_, err = svc.ListDeals(ctx, w.userID, "", "all")
	require.NoError(t, err)
	assert.True(t, w.deals.lastFrom.IsZero())

	_, err = svc.ListDeals(ctx, w.userID, "", "last_year")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFunnelCombinesOutreachBookingsAndDeals(t *testing.T) {
	w := newWorld()
	booked := "Booked"
	thisWeek := model.NewDate(2024, 6, 3) // Monday; the week starts Sunday 2024-06-02
	w.leads.outreach = []model.OutreachLog{
		{Date: thisWeek, Channel: "dm", Outcome: &booked},
		{Date: thisWeek, Channel: "dm"},
	}
	w.events.bookings = []repository.LeadBookingRow{{LeadID: 1, Date: thisWeek.AddDays(1)}}
	w.deals.deals = []model.Deal{{Date: thisWeek, Status: model.DealStatusWon, Amount: 100}}
	svc := NewSalesService(w.stores(), w.tx, w.cal, w.logger)

	weeks, err := svc.Funnel(context.Background(), w.userID, 0)
	require.NoError(t, err)
	require.Len(t, weeks, 8)
	last := weeks[7]
	assert.Equal(t, model.NewDate(2024, 6, 2), last.Week)
	assert.Equal(t, 2, last.OutreachCount)
	assert.Equal(t, 1, last.Responses)
	assert.Equal(t, 2, last.Bookings)
	assert.Equal(t, 1, last.Deals)
	assert.Equal(t, model.NewDate(2024, 4, 14), w.deals.lastFrom)

	_, err = svc.Funnel(context.Background(), w.userID, 53)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
