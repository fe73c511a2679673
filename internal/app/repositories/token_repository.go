package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/dberrors"
	"github.com/alnet/mentorbridge/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgTokenRepository handles refresh token database operations
type PgTokenRepository struct {
	db *pgxpool.Pool
}

// NewTokenRepository creates a new PgTokenRepository
func NewTokenRepository(db *pgxpool.Pool) *PgTokenRepository {
	return &PgTokenRepository{db: db}
}

func insertTokenQuery(token string, userID uuid.UUID, expiryDate time.Time) (string, []interface{}, error) {
	return psql.Insert("refresh_tokens").
		Columns("token", "user_id", "expiry_date", "is_revoked", "created_at").
		Values(token, userID, expiryDate, false, time.Now().UTC()).
		ToSql()
}

// CreateToken creates a new refresh token
func (r *PgTokenRepository) CreateToken(ctx context.Context, token string, userID uuid.UUID, expiryDate time.Time) error {
	sql, args, err := insertTokenQuery(token, userID, expiryDate)
	if err != nil {
		logger.Error().Err(err).Msg("Error building create token SQL")
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			logger.Warn().Str("userID", userID.String()).Msg("Attempted to create duplicate token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error executing create token query")
		return fmt.Errorf("error creating token: %w", err)
	}
	return nil
}

// GetToken retrieves a stored refresh token
func (r *PgTokenRepository) GetToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	sql, args, err := psql.Select("token", "user_id", "expiry_date", "is_revoked", "created_at").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get token query: %w", err)
	}

	var t models.RefreshToken
	err = r.db.QueryRow(ctx, sql, args...).Scan(&t.Token, &t.UserID, &t.ExpiryDate, &t.IsRevoked, &t.CreatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error scanning token row")
		return nil, fmt.Errorf("error retrieving token: %w", err)
	}
	return &t, nil
}

// RotateToken revokes the old token and stores its replacement in one transaction
func (r *PgTokenRepository) RotateToken(ctx context.Context, oldToken, newToken string, userID uuid.UUID, expiryDate time.Time) error {
	revokeSQL, revokeArgs, err := psql.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"token": oldToken, "is_revoked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}
	insertSQL, insertArgs, err := insertTokenQuery(newToken, userID, expiryDate)
	if err != nil {
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, revokeSQL, revokeArgs...)
		if err != nil {
			return fmt.Errorf("error revoking token: %w", err)
		}
		// A concurrent refresh with the same token already won the rotation.
		if tag.RowsAffected() == 0 {
			return apperrors.ErrTokenRevoked
		}
		if _, err := tx.Exec(ctx, insertSQL, insertArgs...); err != nil {
			return fmt.Errorf("error creating token: %w", err)
		}
		return nil
	})
}

// RevokeToken revokes a token
func (r *PgTokenRepository) RevokeToken(ctx context.Context, token string) error {
	sql, args, err := psql.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke token SQL")
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing revoke token query")
		return fmt.Errorf("error revoking token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}
	return nil
}

// RevokeAllUserTokens revokes all tokens for a specific user
func (r *PgTokenRepository) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	sql, args, err := psql.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"user_id": userID, "is_revoked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke all user tokens query: %w", err)
	}

	// Having no active tokens is not an error.
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error executing revoke all user tokens query")
		return fmt.Errorf("error revoking user tokens: %w", err)
	}
	return nil
}
