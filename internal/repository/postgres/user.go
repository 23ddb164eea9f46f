package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"zhukbot/internal/domain"

	"github.com/jmoiron/sqlx"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

type userRow struct {
	UserID      int64          `db:"user_id"`
	Phone       string         `db:"phone"`
	DisplayName sql.NullString `db:"display_name"`
	CreatedAt   time.Time      `db:"created_at"`
}

// GetUser loads a registration record
func (r *UserRepo) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var row userRow
	query := `SELECT user_id, phone, display_name, created_at FROM users WHERE user_id = $1`
	err := r.db.GetContext(ctx, &row, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &domain.User{
		UserID:      row.UserID,
		Phone:       row.Phone,
		DisplayName: row.DisplayName.String,
		CreatedAt:   row.CreatedAt,
	}, nil
}

// UpsertPhone creates the user or overwrites the phone of an existing one
func (r *UserRepo) UpsertPhone(ctx context.Context, userID int64, phone string) error {
	query := `
		INSERT INTO users (user_id, phone)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET phone = EXCLUDED.phone, updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, userID, phone)
	return err
}

// SetDisplayName completes registration of an existing user
func (r *UserRepo) SetDisplayName(ctx context.Context, userID int64, name string) error {
	query := `UPDATE users SET display_name = $1, updated_at = NOW() WHERE user_id = $2`
	res, err := r.db.ExecContext(ctx, query, name, userID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
