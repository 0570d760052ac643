package service

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	mqcontracts "sprintcoach/contracts/mq"
	"sprintcoach/pkg/otel"
)

// FollowupScheduler emits lead.followup_due once per lead and next action date.
type FollowupScheduler struct {
	tx        Transactor
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

func NewFollowupScheduler(tx Transactor, interval time.Duration, batchSize int, logger *zap.Logger) *FollowupScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &FollowupScheduler{tx: tx, interval: interval, batchSize: batchSize, logger: logger}
}

// Start runs RunOnce immediately and then every interval until ctx is done.
func (s *FollowupScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Followup scheduler started", zap.Duration("interval", s.interval))
	for {
		if n, err := s.RunOnce(ctx); err != nil {
			if ctx.Err() == nil {
				s.logger.Error("Followup scan failed", zap.Error(err))
			}
		} else if n > 0 {
			s.logger.Info("Followups emitted", zap.Int("count", n))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Followup scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce claims due leads, emits one event per lead and marks each as announced.
func (s *FollowupScheduler) RunOnce(ctx context.Context) (int, error) {
	ctx, span := otel.StartSpan(ctx, "followup.scan")
	defer span.End()

	emitted := 0
	err := s.tx.InTx(ctx, func(st Stores) error {
		due, err := st.Leads.ListDueFollowups(ctx, s.batchSize)
		if err != nil {
			return err
		}
		for _, d := range due {
			l := d.Lead
			if l.NextActionDate == nil {
				continue
			}
			payload := mqcontracts.LeadFollowupDuePayload{LeadID: l.ID, Name: l.Name, NextActionDate: l.NextActionDate.String()}
			if err := st.Outbox.Emit(ctx, "lead", strconv.FormatInt(l.ID, 10), mqcontracts.RoutingLeadFollowupDue, l.UserID, payload); err != nil {
				return err
			}
			if err := st.Leads.MarkFollowupSent(ctx, l.ID, *l.NextActionDate); err != nil {
				return err
			}
			emitted++
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int("followup.emitted", emitted))
	return emitted, nil
}
