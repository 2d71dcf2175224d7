package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mstephano/authgate/internal/apperrors"
	"github.com/mstephano/authgate/internal/core/domain"
	portsrepo "github.com/mstephano/authgate/internal/core/ports/repositories"
	"github.com/mstephano/authgate/internal/models"
)

// PgxUserRepository is the pgx-backed credential store.
type PgxUserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(db *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{db: db}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const userColumns = `user_id, username, email, password_hash, reset_password_token, reset_password_expires, created_at, last_updated_at`

func toDomainUser(m models.User) domain.User {
	d := domain.User{
		UserID:        m.UserID,
		Username:      m.Username,
		Email:         m.Email,
		PasswordHash:  m.PasswordHash,
		CreatedAt:     m.CreatedAt,
		LastUpdatedAt: m.LastUpdatedAt,
	}
	if m.ResetPasswordToken.Valid {
		token := m.ResetPasswordToken.String
		d.ResetPasswordToken = &token
	}
	if m.ResetPasswordExpires.Valid {
		expires := m.ResetPasswordExpires.Time
		d.ResetPasswordExpires = &expires
	}
	return d
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
        INSERT INTO users (user_id, username, email, password_hash, created_at, last_updated_at)
        VALUES ($1, $2, $3, $4, $5, $6);
    `
	_, err := r.db.Exec(ctx, query,
		user.UserID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("username or email already in use: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1;`, userID)
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1;`, username)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
}

func (r *PgxUserRepository) FindUserByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE reset_password_token = $1;`, token)
}

func (r *PgxUserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m models.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&m.UserID,
		&m.Username,
		&m.Email,
		&m.PasswordHash,
		&m.ResetPasswordToken,
		&m.ResetPasswordExpires,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	d := toDomainUser(m)
	return &d, nil
}

func (r *PgxUserRepository) SetResetToken(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	query := `
        UPDATE users
        SET reset_password_token = $1, reset_password_expires = $2, last_updated_at = now()
        WHERE user_id = $3;
    `
	cmdTag, err := r.db.Exec(ctx, query, token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces the password hash and clears the reset token fields
// in one statement, so a successful reset atomically consumes the challenge.
func (r *PgxUserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	query := `
        UPDATE users
        SET password_hash = $1, reset_password_token = NULL, reset_password_expires = NULL, last_updated_at = now()
        WHERE user_id = $2;
    `
	cmdTag, err := r.db.Exec(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
