package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sprintcoach/internal/model"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (email, password_hash, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, u.Email, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt)
	return mapErr(err, "create user")
}

// FindByEmail returns user by email, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, `
        SELECT id, email, password_hash, role, created_at
        FROM users `+where, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "find user")
	}
	return &u, nil
}

// SetRole changes the role of the user with the given email.
func (r *UserRepository) SetRole(ctx context.Context, email, role string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $2 WHERE lower(email) = lower($1)`, email, role)
	return expectRows(tag, err, "set role")
}

func (r *UserRepository) CreateProfile(ctx context.Context, p *model.Profile) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO profiles (id, tz, display_name, goal_desc)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `, p.ID, p.TZ, p.DisplayName, p.GoalDesc).Scan(&p.CreatedAt)
	return mapErr(err, "create profile")
}

func (r *UserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	err := r.db.QueryRow(ctx, `
        SELECT id, tz, display_name, goal_desc, created_at
        FROM profiles WHERE id = $1
    `, userID).Scan(&p.ID, &p.TZ, &p.DisplayName, &p.GoalDesc, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "get profile")
	}
	return &p, nil
}

// UpsertProfile creates the profile or updates the provided fields.
func (r *UserRepository) UpsertProfile(ctx context.Context, userID uuid.UUID, in model.ProfileInput) (*model.Profile, error) {
	var tz *string
	if in.TZ != "" {
		tz = &in.TZ
	}

	var p model.Profile
	err := r.db.QueryRow(ctx, `
        INSERT INTO profiles (id, tz, display_name, goal_desc)
        VALUES ($1, COALESCE($2, 'Australia/Brisbane'), $3, $4)
        ON CONFLICT (id) DO UPDATE SET
            tz = COALESCE($2, profiles.tz),
            display_name = COALESCE($3, profiles.display_name),
            goal_desc = COALESCE($4, profiles.goal_desc)
        RETURNING id, tz, display_name, goal_desc, created_at
    `, userID, tz, in.DisplayName, in.GoalDesc).Scan(&p.ID, &p.TZ, &p.DisplayName, &p.GoalDesc, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "upsert profile")
	}
	return &p, nil
}
