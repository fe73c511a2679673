package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var donationColumns = []string{"id", "donor_id", "amount", "currency", "purpose", "message", "anonymous", "created_at"}

// PgDonationRepository handles donation database operations
type PgDonationRepository struct {
	db *pgxpool.Pool
}

// NewDonationRepository creates a new PgDonationRepository
func NewDonationRepository(db *pgxpool.Pool) *PgDonationRepository {
	return &PgDonationRepository{db: db}
}

func scanDonation(row pgx.Row) (*models.Donation, error) {
	var d models.Donation
	if err := row.Scan(&d.ID, &d.DonorID, &d.Amount, &d.Currency, &d.Purpose, &d.Message, &d.Anonymous, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create records a donation
func (r *PgDonationRepository) Create(ctx context.Context, d *models.Donation) error {
	sql, args, err := psql.Insert("donations").
		Columns(donationColumns...).
		Values(d.ID, d.DonorID, d.Amount, d.Currency, d.Purpose, d.Message, d.Anonymous, d.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create donation query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Msg("Error creating donation")
		return fmt.Errorf("error creating donation: %w", err)
	}
	return nil
}

// List pages through donations, newest first
func (r *PgDonationRepository) List(ctx context.Context, donorID *uuid.UUID, offset, limit int) ([]*models.Donation, int64, error) {
	countQ := psql.Select("count(*)").From("donations")
	listQ := psql.Select(donationColumns...).From("donations")
	if donorID != nil {
		countQ = countQ.Where(squirrel.Eq{"donor_id": *donorID})
		listQ = listQ.Where(squirrel.Eq{"donor_id": *donorID})
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count donations query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting donations: %w", err)
	}

	sql, args, err := listQ.OrderBy("created_at DESC", "id DESC").Limit(uint64(limit)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list donations query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing donations: %w", err)
	}
	donations, err := collectRows(rows, scanDonation)
	if err != nil {
		return nil, 0, fmt.Errorf("error scanning donations: %w", err)
	}
	return donations, total, nil
}

// Summary totals donations per currency
func (r *PgDonationRepository) Summary(ctx context.Context) (*models.DonationSummary, error) {
	summary := &models.DonationSummary{TotalsByCurrency: make(map[string]int64)}

	rows, err := r.db.Query(ctx, `SELECT currency, sum(amount) FROM donations GROUP BY currency`)
	if err != nil {
		return nil, fmt.Errorf("error summing donations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var currency string
		var total int64
		if err := rows.Scan(&currency, &total); err != nil {
			return nil, fmt.Errorf("error scanning donation totals: %w", err)
		}
		summary.TotalsByCurrency[currency] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `SELECT count(*), count(DISTINCT donor_id) FROM donations`).
		Scan(&summary.DonationCount, &summary.DonorCount)
	if err != nil {
		return nil, fmt.Errorf("error counting donations: %w", err)
	}
	return summary, nil
}
