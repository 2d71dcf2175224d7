package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mstephano/authgate/internal/apperrors"
	"github.com/mstephano/authgate/internal/core/domain"
	portsrepo "github.com/mstephano/authgate/internal/core/ports/repositories"
	"github.com/mstephano/authgate/internal/models"
)

// PgxRefreshTokenRepository is the pgx-backed session token store.
type PgxRefreshTokenRepository struct {
	db *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new PgxRefreshTokenRepository.
func NewRefreshTokenRepository(db *pgxpool.Pool) *PgxRefreshTokenRepository {
	return &PgxRefreshTokenRepository{db: db}
}

// Ensure PgxRefreshTokenRepository implements portsrepo.RefreshTokenRepositoryFacade
var _ portsrepo.RefreshTokenRepositoryFacade = (*PgxRefreshTokenRepository)(nil)

func (r *PgxRefreshTokenRepository) SaveRefreshToken(ctx context.Context, token domain.RefreshToken) error {
	query := `
        INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at)
        VALUES ($1, $2, $3, $4);
    `
	_, err := r.db.Exec(ctx, query, token.TokenHash, token.UserID, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (r *PgxRefreshTokenRepository) FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
        SELECT id, token_hash, user_id, expires_at, created_at
        FROM refresh_tokens
        WHERE token_hash = $1;
    `
	var m models.RefreshToken
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&m.ID,
		&m.TokenHash,
		&m.UserID,
		&m.ExpiresAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	return &domain.RefreshToken{
		ID:        m.ID,
		TokenHash: m.TokenHash,
		UserID:    m.UserID,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

// DeleteRefreshTokensForUser revokes every session for the user in a single
// bulk delete, so an interrupted logout cannot leave a partial set alive.
func (r *PgxRefreshTokenRepository) DeleteRefreshTokensForUser(ctx context.Context, userID string) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1;`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh tokens for user: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
