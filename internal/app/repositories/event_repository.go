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

const registeredCountColumn = "(SELECT count(*) FROM event_registrations er WHERE er.event_id = e.id) AS registered_count"

var eventColumns = []string{
	"e.id", "e.organizer_id", "e.title", "e.description", "e.location",
	"e.starts_at", "e.ends_at", "e.capacity", registeredCountColumn, "e.created_at", "e.updated_at",
}

// PgEventRepository handles event and registration database operations
type PgEventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new PgEventRepository
func NewEventRepository(db *pgxpool.Pool) *PgEventRepository {
	return &PgEventRepository{db: db}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Location,
		&e.StartsAt, &e.EndsAt, &e.Capacity, &e.RegisteredCount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event
func (r *PgEventRepository) Create(ctx context.Context, e *models.Event) error {
	sql, args, err := psql.Insert("events").
		Columns("id", "organizer_id", "title", "description", "location", "starts_at", "ends_at", "capacity", "created_at", "updated_at").
		Values(e.ID, e.OrganizerID, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.Capacity, e.CreatedAt, e.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create event query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Msg("Error creating event")
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

// GetByID retrieves an event with its registration count
func (r *PgEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	sql, args, err := psql.Select(eventColumns...).From("events e").Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event query: %w", err)
	}
	e, err := scanEvent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}
	return e, nil
}

// Update writes the editable event fields
func (r *PgEventRepository) Update(ctx context.Context, e *models.Event) error {
	sql, args, err := psql.Update("events").
		SetMap(map[string]interface{}{
			"title":       e.Title,
			"description": e.Description,
			"location":    e.Location,
			"starts_at":   e.StartsAt,
			"ends_at":     e.EndsAt,
			"capacity":    e.Capacity,
			"updated_at":  e.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update event query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

// Delete removes an event and its registrations
func (r *PgEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := psql.Delete("events").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete event query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

func (r *PgEventRepository) execOne(ctx context.Context, sql string, args []interface{}) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Msg("Error writing event")
		return fmt.Errorf("error writing event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

func endsAfterPredicate(b squirrel.SelectBuilder, endsAfter *time.Time) squirrel.SelectBuilder {
	if endsAfter != nil {
		b = b.Where(squirrel.Gt{"e.ends_at": *endsAfter})
	}
	return b
}

// Count counts events, optionally only those ending after endsAfter
func (r *PgEventRepository) Count(ctx context.Context, endsAfter *time.Time) (int64, error) {
	sql, args, err := endsAfterPredicate(psql.Select("count(*)").From("events e"), endsAfter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count events query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting events: %w", err)
	}
	return total, nil
}

// List pages through events by start time
func (r *PgEventRepository) List(ctx context.Context, endsAfter *time.Time, offset, limit int) ([]*models.Event, int64, error) {
	total, err := r.Count(ctx, endsAfter)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := endsAfterPredicate(psql.Select(eventColumns...).From("events e"), endsAfter).
		OrderBy("e.starts_at ASC", "e.id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list events query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing events: %w", err)
	}
	events, err := collectRows(rows, scanEvent)
	if err != nil {
		return nil, 0, fmt.Errorf("error scanning events: %w", err)
	}
	return events, total, nil
}

// Register adds a registration while holding the event row lock so that
// concurrent registrations cannot overshoot the capacity.
func (r *PgEventRepository) Register(ctx context.Context, eventID, userID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var capacity *int
		err := tx.QueryRow(ctx, `SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&capacity)
		if err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.ErrEventNotFound
			}
			return fmt.Errorf("error locking event: %w", err)
		}

		var registered bool
		var count int
		err = tx.QueryRow(ctx,
			`SELECT coalesce(bool_or(user_id = $2), false), count(*) FROM event_registrations WHERE event_id = $1`,
			eventID, userID).Scan(&registered, &count)
		if err != nil {
			return fmt.Errorf("error counting registrations: %w", err)
		}
		if registered {
			return apperrors.ErrAlreadyRegistered
		}
		if capacity != nil && count >= *capacity {
			return apperrors.ErrEventFull
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO event_registrations (event_id, user_id, created_at) VALUES ($1, $2, $3)`,
			eventID, userID, time.Now().UTC())
		if err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.ErrAlreadyRegistered
			}
			logger.Error().Err(err).Str("eventID", eventID.String()).Msg("Error registering for event")
			return fmt.Errorf("error registering for event: %w", err)
		}
		return nil
	})
}

// Unregister removes a registration
func (r *PgEventRepository) Unregister(ctx context.Context, eventID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM event_registrations WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("error unregistering from event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotRegistered
	}
	return nil
}

// RegisteredAmong reports which of eventIDs userID is registered for
func (r *PgEventRepository) RegisteredAmong(ctx context.Context, userID uuid.UUID, eventIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}

	sql, args, err := psql.Select("event_id").From("event_registrations").
		Where(squirrel.Eq{"user_id": userID, "event_id": eventIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build registrations query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error reading registrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = true
	}
	return result, rows.Err()
}
