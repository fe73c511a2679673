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

const constraintUsersEmail = "users_email_key"

var userColumns = []string{"id", "email", "password_hash", "role", "is_active", "last_login_at", "created_at", "updated_at"}

// PgUserRepository handles user database operations
type PgUserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new PgUserRepository
func NewUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateWithProfile inserts the user and the profile in one transaction
func (r *PgUserRepository) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	userSQL, userArgs, err := psql.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Email, user.PasswordHash, user.Role, user.IsActive, user.LastLoginAt, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	profileSQL, profileArgs, err := insertProfileQuery(profile)
	if err != nil {
		return fmt.Errorf("failed to build create profile query: %w", err)
	}

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, userSQL, userArgs...); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, profileSQL, profileArgs...)
		return err
	})
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintUsersEmail) {
			return apperrors.ErrEmailAlreadyExists
		}
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user with profile")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *PgUserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email (stored lower-cased)
func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// EmailExists checks if an email already exists
func (r *PgUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	sql, args, err := psql.Select("1").From("users").Where(squirrel.Eq{"email": email}).Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build email exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin updates the last login time
func (r *PgUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{"last_login_at": at})
}

// SetActive enables or disables an account
func (r *PgUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.update(ctx, id, map[string]interface{}{"is_active": active, "updated_at": time.Now().UTC()})
}

func (r *PgUserRepository) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	sql, args, err := psql.Update("users").SetMap(fields).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", id.String()).Msg("Error updating user")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// CountByRole counts users per role
func (r *PgUserRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	sql, args, err := psql.Select("role", "count(*)").From("users").GroupBy("role").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count by role query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting users by role: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Role]int64)
	for rows.Next() {
		var role models.Role
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("error scanning role count: %w", err)
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

// CountByActive counts active and inactive accounts
func (r *PgUserRepository) CountByActive(ctx context.Context) (active, inactive int64, err error) {
	sql, args, err := psql.Select(
		"count(*) FILTER (WHERE is_active)",
		"count(*) FILTER (WHERE NOT is_active)",
	).From("users").ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build count by active query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&active, &inactive); err != nil {
		return 0, 0, fmt.Errorf("error counting users by activity: %w", err)
	}
	return active, inactive, nil
}

// CountCreatedBetween counts users registered within [from, to]
func (r *PgUserRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	sql, args, err := psql.Select("count(*)").From("users").
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.LtOrEq{"created_at": to}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count created query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting new users: %w", err)
	}
	return n, nil
}
