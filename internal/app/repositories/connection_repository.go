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

// constraintConnectionsActivePair is the partial unique index over the unordered pair
const constraintConnectionsActivePair = "connections_active_pair_idx"

var connectionColumns = []string{"id", "requester_id", "receiver_id", "status", "message", "created_at", "updated_at"}

var activeConnectionStatuses = []models.ConnectionStatus{
	models.ConnectionPending, models.ConnectionAccepted, models.ConnectionBlocked,
}

// PgConnectionRepository handles connection database operations
type PgConnectionRepository struct {
	db *pgxpool.Pool
}

// NewConnectionRepository creates a new PgConnectionRepository
func NewConnectionRepository(db *pgxpool.Pool) *PgConnectionRepository {
	return &PgConnectionRepository{db: db}
}

func scanConnection(row pgx.Row) (*models.Connection, error) {
	var c models.Connection
	if err := row.Scan(&c.ID, &c.RequesterID, &c.ReceiverID, &c.Status, &c.Message, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func pairPredicate(a, b uuid.UUID) squirrel.Or {
	return squirrel.Or{
		squirrel.Eq{"requester_id": a, "receiver_id": b},
		squirrel.Eq{"requester_id": b, "receiver_id": a},
	}
}

// Create inserts a new connection request
func (r *PgConnectionRepository) Create(ctx context.Context, c *models.Connection) error {
	sql, args, err := psql.Insert("connections").
		Columns(connectionColumns...).
		Values(c.ID, c.RequesterID, c.ReceiverID, c.Status, c.Message, c.CreatedAt, c.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create connection query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintConnectionsActivePair) {
			return apperrors.ErrConnectionExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Msg("Error creating connection")
		return fmt.Errorf("error creating connection: %w", err)
	}
	return nil
}

func (r *PgConnectionRepository) getOne(ctx context.Context, b squirrel.SelectBuilder) (*models.Connection, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get connection query: %w", err)
	}

	conn, err := scanConnection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrConnectionNotFound
		}
		logger.Error().Err(err).Msg("Error scanning connection")
		return nil, fmt.Errorf("error retrieving connection: %w", err)
	}
	return conn, nil
}

// GetByID retrieves a connection by ID
func (r *PgConnectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Connection, error) {
	return r.getOne(ctx, psql.Select(connectionColumns...).From("connections").Where(squirrel.Eq{"id": id}))
}

// FindActiveBetween returns the active connection of the pair
func (r *PgConnectionRepository) FindActiveBetween(ctx context.Context, a, b uuid.UUID) (*models.Connection, error) {
	return r.getOne(ctx, psql.Select(connectionColumns...).From("connections").
		Where(pairPredicate(a, b)).
		Where(squirrel.Eq{"status": activeConnectionStatuses}).
		Limit(1))
}

// FindLatestBetween returns the most recently updated connection of the pair
func (r *PgConnectionRepository) FindLatestBetween(ctx context.Context, a, b uuid.UUID) (*models.Connection, error) {
	return r.getOne(ctx, psql.Select(connectionColumns...).From("connections").
		Where(pairPredicate(a, b)).
		OrderBy("updated_at DESC", "id DESC").
		Limit(1))
}

// TransitionStatus performs a conditional status update
func (r *PgConnectionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []models.ConnectionStatus, to models.ConnectionStatus) (*models.Connection, error) {
	sql, args, err := psql.Update("connections").
		Set("status", to).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix("RETURNING " + joinColumns(connectionColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build transition query: %w", err)
	}

	conn, err := scanConnection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperrors.ErrConnectionStatusChanged
		}
		if dberrors.IsDuplicateConstraintError(err, constraintConnectionsActivePair) {
			return nil, apperrors.ErrConnectionExists
		}
		logger.Error().Err(err).Str("connectionID", id.String()).Msg("Error transitioning connection")
		return nil, fmt.Errorf("error updating connection: %w", err)
	}
	return conn, nil
}

func listForUserPredicate(userID uuid.UUID, status models.ConnectionStatus, direction models.ConnectionDirection) squirrel.And {
	where := squirrel.And{squirrel.Eq{"status": status}}
	switch direction {
	case models.DirectionIncoming:
		where = append(where, squirrel.Eq{"receiver_id": userID})
	case models.DirectionOutgoing:
		where = append(where, squirrel.Eq{"requester_id": userID})
	default:
		where = append(where, squirrel.Or{squirrel.Eq{"requester_id": userID}, squirrel.Eq{"receiver_id": userID}})
	}
	return where
}

// ListForUser pages through a user's connections in one status, newest first
func (r *PgConnectionRepository) ListForUser(ctx context.Context, userID uuid.UUID, status models.ConnectionStatus, direction models.ConnectionDirection, offset, limit int) ([]*models.Connection, int64, error) {
	where := listForUserPredicate(userID, status, direction)

	countSQL, countArgs, err := psql.Select("count(*)").From("connections").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count connections query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting connections: %w", err)
	}

	sql, args, err := psql.Select(connectionColumns...).From("connections").
		Where(where).
		OrderBy("updated_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list connections query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error listing connections")
		return nil, 0, fmt.Errorf("error listing connections: %w", err)
	}
	conns, err := collectRows(rows, scanConnection)
	if err != nil {
		return nil, 0, fmt.Errorf("error scanning connections: %w", err)
	}
	return conns, total, nil
}

// CountByStatus counts connections created within [from, to] per status
func (r *PgConnectionRepository) CountByStatus(ctx context.Context, from, to time.Time) (map[models.ConnectionStatus]int64, error) {
	sql, args, err := psql.Select("status", "count(*)").From("connections").
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.LtOrEq{"created_at": to}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count connections query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting connections: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ConnectionStatus]int64)
	for rows.Next() {
		var status models.ConnectionStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning connection count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
