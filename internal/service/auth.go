package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "sprintcoach/contracts/mq"
	"sprintcoach/internal/model"
	"sprintcoach/internal/util"
	"sprintcoach/pkg/rbac"
)

// AttemptCounter counts failed logins per key inside a sliding expiry window.
type AttemptCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type AuthService struct {
	users       UserStore
	tx          Transactor
	cache       DashboardCache
	attempts    AttemptCounter
	maxAttempts int64
	jwtSecret   string
	tokenTTL    time.Duration
	logger      *zap.Logger
}

func NewAuthService(users UserStore, tx Transactor, cache DashboardCache, attempts AttemptCounter, maxAttempts int, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	if cache == nil {
		cache = noopCache{}
	}
	return &AuthService{
		users:       users,
		tx:          tx,
		cache:       cache,
		attempts:    attempts,
		maxAttempts: int64(maxAttempts),
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates the user and profile and emits user.registered in one transaction.
func (s *AuthService) Register(ctx context.Context, in model.RegisterInput) (*model.User, error) {
	hash, err := util.HashPassword(in.Password)
	if errors.Is(err, util.ErrPasswordTooLong) {
		return nil, invalid(err.Error())
	}
	if err != nil {
		return nil, err
	}
	tz := in.TZ
	if tz == "" {
		tz = model.DefaultTimezone
	}

	u := &model.User{
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         rbac.RoleUser,
	}
	err = s.tx.InTx(ctx, func(st Stores) error {
		if err := st.Users.CreateUser(ctx, u); err != nil {
			if errors.Is(translate(err), ErrConflict) {
				return ErrEmailTaken
			}
			return err
		}
		if err := st.Users.CreateProfile(ctx, &model.Profile{ID: u.ID, TZ: tz, DisplayName: in.DisplayName}); err != nil {
			return err
		}
		return st.Outbox.Emit(ctx, "user", u.ID.String(), mqcontracts.RoutingUserRegistered, u.ID,
			mqcontracts.UserRegisteredPayload{UserID: u.ID, Email: u.Email, TZ: tz})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID.String()))
	return u, nil
}

// Login checks credentials and returns a signed token. Failed attempts are counted per email.
func (s *AuthService) Login(ctx context.Context, in model.LoginInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	key := "login:" + email

	if s.attempts != nil && s.maxAttempts > 0 {
		n, err := s.attempts.Get(ctx, key)
		if err != nil {
			s.logger.Warn("login attempt lookup failed", zap.Error(err))
		} else if n >= s.maxAttempts {
			return nil, ErrTooManyAttempts
		}
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(translate(err), ErrNotFound) {
		return nil, err
	}
	if u == nil || !util.CheckPassword(in.Password, u.PasswordHash) {
		s.recordFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, key); err != nil {
			s.logger.Warn("login attempt reset failed", zap.Error(err))
		}
	}
	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if s.attempts == nil {
		return
	}
	if _, err := s.attempts.IncrementAndGet(ctx, key); err != nil {
		s.logger.Warn("login attempt increment failed", zap.Error(err))
	}
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	return u, translate(err)
}

// Promote grants the admin role to the user with the given email.
func (s *AuthService) Promote(ctx context.Context, email string) error {
	return translate(s.users.SetRole(ctx, normalizeEmail(email), rbac.RoleAdmin))
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	p, err := s.users.GetProfile(ctx, userID)
	return p, translate(err)
}

// UpdateProfile saves the profile and drops cached dashboards, since a zone change moves sessions between days.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in model.ProfileInput) (*model.Profile, error) {
	p, err := s.users.UpsertProfile(ctx, userID, in)
	if err != nil {
		return nil, translate(err)
	}
	s.cache.Invalidate(ctx, userID)
	return p, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
