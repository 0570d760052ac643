package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "sprintcoach/contracts/mq"
	"sprintcoach/internal/model"
	"sprintcoach/internal/report"
	"sprintcoach/internal/util"
)

const (
	defaultLeadPriority    = 3
	defaultDealProbability = 50
	defaultFunnelWeeks     = 8
	maxFunnelWeeks         = 52
)

// SalesService covers leads, outreach, deals and the funnel and revenue aggregates over them.
type SalesService struct {
	stores Stores
	tx     Transactor
	cal    *Calendar
	logger *zap.Logger
}

func NewSalesService(stores Stores, tx Transactor, cal *Calendar, logger *zap.Logger) *SalesService {
	return &SalesService{stores: stores, tx: tx, cal: cal, logger: logger}
}

// Leads

func (s *SalesService) ListLeads(ctx context.Context, userID uuid.UUID, status string) ([]model.Lead, error) {
	ls, err := s.stores.Leads.List(ctx, userID, status)
	return ls, translate(err)
}

func (s *SalesService) GetLead(ctx context.Context, userID uuid.UUID, id int64) (*model.Lead, error) {
	l, err := s.stores.Leads.Get(ctx, userID, id)
	return l, translate(err)
}

func (s *SalesService) CreateLead(ctx context.Context, userID uuid.UUID, in model.LeadInput) (*model.Lead, error) {
	l := &model.Lead{
		UserID:         userID,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		Business:       in.Business,
		Niche:          in.Niche,
		Source:         in.Source,
		Status:         model.LeadStatusNew,
		Priority:       defaultLeadPriority,
		NextActionDate: in.NextActionDate,
		Notes:          in.Notes,
	}
	if in.Priority != nil {
		l.Priority = *in.Priority
	}
	if err := s.stores.Leads.Create(ctx, l); err != nil {
		return nil, translate(err)
	}
	return l, nil
}

func (s *SalesService) UpdateLead(ctx context.Context, userID uuid.UUID, id int64, p model.LeadPatch) (*model.Lead, error) {
	l, err := s.stores.Leads.Update(ctx, userID, id, p)
	return l, translate(err)
}

// SetLeadStatus changes the status and emits lead.status_changed when it actually changed.
func (s *SalesService) SetLeadStatus(ctx context.Context, userID uuid.UUID, id int64, status string) (*model.Lead, error) {
	var lead *model.Lead
	err := s.tx.InTx(ctx, func(st Stores) error {
		l, prev, err := st.Leads.SetStatus(ctx, userID, id, status)
		if err != nil {
			return err
		}
		lead = l
		if prev == status {
			return nil
		}
		return st.Outbox.Emit(ctx, "lead", strconv.FormatInt(id, 10), mqcontracts.RoutingLeadStatusChanged, userID,
			mqcontracts.LeadStatusChangedPayload{LeadID: id, From: prev, To: status})
	})
	if err != nil {
		return nil, translate(err)
	}
	return lead, nil
}

func (s *SalesService) DeleteLead(ctx context.Context, userID uuid.UUID, id int64) error {
	return translate(s.stores.Leads.Delete(ctx, userID, id))
}

// Outreach

func (s *SalesService) ListOutreach(ctx context.Context, userID uuid.UUID, leadID *int64, r util.DateRange) ([]model.OutreachLog, error) {
	logs, err := s.stores.Leads.ListOutreach(ctx, userID, leadID, r.From, r.To)
	return logs, translate(err)
}

// LogOutreach records an outreach attempt and stamps the lead's last contact time.
func (s *SalesService) LogOutreach(ctx context.Context, userID uuid.UUID, in model.OutreachInput) (*model.OutreachLog, error) {
	date, err := s.cal.OrToday(ctx, userID, in.Date)
	if err != nil {
		return nil, err
	}
	o := &model.OutreachLog{UserID: userID, LeadID: in.LeadID, Date: date, Channel: in.Channel, Notes: in.Notes, Outcome: in.Outcome}
	err = s.tx.InTx(ctx, func(st Stores) error {
		if o.LeadID != nil {
			if err := st.Leads.TouchLastContact(ctx, userID, *o.LeadID, s.cal.Now()); err != nil {
				return err
			}
		}
		return st.Leads.CreateOutreach(ctx, o)
	})
	if err != nil {
		return nil, translate(err)
	}
	return o, nil
}

func (s *SalesService) DeleteOutreach(ctx context.Context, userID uuid.UUID, id int64) error {
	return translate(s.stores.Leads.DeleteOutreach(ctx, userID, id))
}

// Funnel returns weekly outreach, responses, bookings and deals for the last weeks (default 8).
func (s *SalesService) Funnel(ctx context.Context, userID uuid.UUID, weeks int) ([]report.FunnelWeek, error) {
	if weeks <= 0 {
		weeks = defaultFunnelWeeks
	}
	if weeks > maxFunnelWeeks {
		return nil, invalid("weeks must be at most 52")
	}
	today, loc, err := s.cal.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	from := util.WeekStart(today).AddDays(-7 * (weeks - 1))

	outreach, err := s.stores.Leads.ListOutreach(ctx, userID, nil, from, today)
	if err != nil {
		return nil, err
	}
	rows, err := s.stores.Events.ListLeadBookings(ctx, userID, from, loc.String())
	if err != nil {
		return nil, err
	}
	bookings := make([]report.LeadBooking, 0, len(rows))
	for _, r := range rows {
		bookings = append(bookings, report.LeadBooking{LeadID: r.LeadID, Date: r.Date})
	}
	deals, err := s.stores.Deals.List(ctx, userID, "", from, today)
	if err != nil {
		return nil, err
	}
	return report.Funnel(today, weeks, outreach, bookings, deals), nil
}

// Deals

// ListDeals filters by status and a time filter (all, this_month, last_30_days).
func (s *SalesService) ListDeals(ctx context.Context, userID uuid.UUID, status, timeFilter string) ([]model.Deal, error) {
	today, _, err := s.cal.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	r, ok, err := report.TimeFilterRange(timeFilter, today)
	if err != nil {
		return nil, invalid(err.Error())
	}
	if !ok {
		r = util.DateRange{}
	}
	ds, err := s.stores.Deals.List(ctx, userID, status, r.From, r.To)
	return ds, translate(err)
}

func (s *SalesService) GetDeal(ctx context.Context, userID uuid.UUID, id int64) (*model.Deal, error) {
	d, err := s.stores.Deals.Get(ctx, userID, id)
	return d, translate(err)
}

// CreateDeal records the deal and emits deal.recorded. A lead id the user does not own is dropped.
func (s *SalesService) CreateDeal(ctx context.Context, userID uuid.UUID, in model.DealInput) (*model.Deal, error) {
	date, err := s.cal.OrToday(ctx, userID, in.Date)
	if err != nil {
		return nil, err
	}
	d := &model.Deal{
		UserID:      userID,
		LeadID:      in.LeadID,
		Title:       in.Title,
		Amount:      in.Amount,
		COGS:        in.COGS,
		Date:        date,
		Source:      in.Source,
		Notes:       in.Notes,
		Status:      in.Status,
		Probability: defaultDealProbability,
	}
	if d.Status == "" {
		d.Status = model.DealStatusWon
	}
	if in.Probability != nil {
		d.Probability = *in.Probability
	}
	err = s.tx.InTx(ctx, func(st Stores) error {
		if err := st.Deals.Create(ctx, d); err != nil {
			return err
		}
		return st.Outbox.Emit(ctx, "deal", strconv.FormatInt(d.ID, 10), mqcontracts.RoutingDealRecorded, userID,
			mqcontracts.DealRecordedPayload{DealID: d.ID, LeadID: d.LeadID, Amount: d.Amount, Status: d.Status, Date: d.Date.String()})
	})
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func (s *SalesService) UpdateDeal(ctx context.Context, userID uuid.UUID, id int64, p model.DealPatch) (*model.Deal, error) {
	d, err := s.stores.Deals.Update(ctx, userID, id, p)
	return d, translate(err)
}

func (s *SalesService) DeleteDeal(ctx context.Context, userID uuid.UUID, id int64) error {
	return translate(s.stores.Deals.Delete(ctx, userID, id))
}

// Revenue computes revenue statistics over every deal of the user.
func (s *SalesService) Revenue(ctx context.Context, userID uuid.UUID) (report.RevenueStats, error) {
	today, _, err := s.cal.Today(ctx, userID)
	if err != nil {
		return report.RevenueStats{}, err
	}
	deals, err := s.stores.Deals.List(ctx, userID, "", model.Date{}, model.Date{})
	if err != nil {
		return report.RevenueStats{}, translate(err)
	}
	return report.Revenue(deals, today), nil
}
