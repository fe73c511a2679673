package repositories

import (
	"context"
	"errors"
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

const constraintStartupsOwner = "startups_owner_id_key"

var startupColumns = []string{
	"id", "owner_id", "name", "tagline", "description", "industry", "stage", "website",
	"funding_goal", "status", "review_note", "created_at", "updated_at",
}

// PgStartupRepository handles startup database operations
type PgStartupRepository struct {
	db *pgxpool.Pool
}

// NewStartupRepository creates a new PgStartupRepository
func NewStartupRepository(db *pgxpool.Pool) *PgStartupRepository {
	return &PgStartupRepository{db: db}
}

func scanStartup(row pgx.Row) (*models.Startup, error) {
	var s models.Startup
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Tagline, &s.Description, &s.Industry, &s.Stage,
		&s.Website, &s.FundingGoal, &s.Status, &s.ReviewNote, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a startup
func (r *PgStartupRepository) Create(ctx context.Context, s *models.Startup) error {
	sql, args, err := psql.Insert("startups").
		Columns(startupColumns...).
		Values(s.ID, s.OwnerID, s.Name, s.Tagline, s.Description, s.Industry, s.Stage,
			s.Website, s.FundingGoal, s.Status, s.ReviewNote, s.CreatedAt, s.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create startup query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintStartupsOwner) {
			return apperrors.ErrStartupAlreadyExists
		}
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Msg("Error creating startup")
		return fmt.Errorf("error creating startup: %w", err)
	}
	return nil
}

func (r *PgStartupRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Startup, error) {
	sql, args, err := psql.Select(startupColumns...).From("startups").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get startup query: %w", err)
	}
	s, err := scanStartup(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrStartupNotFound
		}
		return nil, fmt.Errorf("error retrieving startup: %w", err)
	}
	return s, nil
}

// GetByID retrieves a startup
func (r *PgStartupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Startup, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByOwner retrieves the startup founded by ownerID
func (r *PgStartupRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Startup, error) {
	return r.getOne(ctx, squirrel.Eq{"owner_id": ownerID})
}

// Update writes the editable startup fields
func (r *PgStartupRepository) Update(ctx context.Context, s *models.Startup) error {
	sql, args, err := psql.Update("startups").
		SetMap(map[string]interface{}{
			"name":         s.Name,
			"tagline":      s.Tagline,
			"description":  s.Description,
			"industry":     s.Industry,
			"stage":        s.Stage,
			"website":      s.Website,
			"funding_goal": s.FundingGoal,
			"status":       s.Status,
			"updated_at":   s.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update startup query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

// Delete removes a startup
func (r *PgStartupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := psql.Delete("startups").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete startup query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

// Review records a decision on a startup that is still pending
func (r *PgStartupRepository) Review(ctx context.Context, id uuid.UUID, status models.StartupStatus, note string) error {
	sql, args, err := psql.Update("startups").
		Set("status", status).
		Set("review_note", note).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": models.StartupPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build startup review query: %w", err)
	}

	err = r.execOne(ctx, sql, args)
	if errors.Is(err, apperrors.ErrStartupNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return apperrors.ErrStartupNotPending
	}
	return err
}

func (r *PgStartupRepository) execOne(ctx context.Context, sql string, args []interface{}) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Msg("Error writing startup")
		return fmt.Errorf("error writing startup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStartupNotFound
	}
	return nil
}

func applyStartupFilter(b squirrel.SelectBuilder, f models.StartupFilter) squirrel.SelectBuilder {
	if f.Status != "" {
		b = b.Where(squirrel.Eq{"status": f.Status})
	}
	if f.Industry != "" {
		b = b.Where(squirrel.ILike{"industry": likePattern(f.Industry)})
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		b = b.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"tagline": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	return b
}

// List pages through startups, newest first
func (r *PgStartupRepository) List(ctx context.Context, f models.StartupFilter, offset, limit int) ([]*models.Startup, int64, error) {
	countSQL, countArgs, err := applyStartupFilter(psql.Select("count(*)").From("startups"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count startups query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting startups: %w", err)
	}

	sql, args, err := applyStartupFilter(psql.Select(startupColumns...).From("startups"), f).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list startups query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing startups: %w", err)
	}
	startups, err := collectRows(rows, scanStartup)
	if err != nil {
		return nil, 0, fmt.Errorf("error scanning startups: %w", err)
	}
	return startups, total, nil
}

// CountByStatus counts startups per review status
func (r *PgStartupRepository) CountByStatus(ctx context.Context) (map[models.StartupStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, count(*) FROM startups GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("error counting startups: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.StartupStatus]int64)
	for rows.Next() {
		var status models.StartupStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning startup count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
