package mqhandler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "sprintcoach/contracts/mq"
	"sprintcoach/pkg/logger"
	"sprintcoach/pkg/mq"
	"sprintcoach/pkg/util"
)

type HabitSeeder interface {
	SeedDefaultHabits(ctx context.Context, userID uuid.UUID) (int, error)
}

// UserRegisteredHandler seeds the default habits for new users.
type UserRegisteredHandler struct {
	seeder HabitSeeder
	logger *zap.Logger
}

func NewUserRegisteredHandler(seeder HabitSeeder, logger *zap.Logger) *UserRegisteredHandler {
	return &UserRegisteredHandler{seeder: seeder, logger: logger}
}

func (h *UserRegisteredHandler) Handle(ctx context.Context, msg mq.Message) error {
	var p mqcontracts.UserRegisteredPayload
	if err := msg.Decode(&p); err != nil {
		return util.Permanent(fmt.Errorf("decode user.registered: %w", err))
	}
	if p.UserID == uuid.Nil {
		return util.Permanent(errors.New("user.registered without user_id"))
	}

	n, err := h.seeder.SeedDefaultHabits(ctx, p.UserID)
	if err != nil {
		logger.WithTrace(ctx, h.logger).Error("Failed to seed default habits",
			zap.String("user_id", p.UserID.String()),
			zap.Error(err),
		)
		return err
	}
	logger.WithTrace(ctx, h.logger).Info("New user onboarded",
		zap.String("user_id", p.UserID.String()),
		zap.Int("habits_created", n),
	)
	return nil
}
