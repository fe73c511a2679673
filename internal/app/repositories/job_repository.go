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

const constraintApplicationsJobApplicant = "job_applications_job_applicant_key"

var jobColumns = []string{
	"id", "owner_id", "title", "company", "description", "location", "job_type",
	"remote", "salary_range", "application_url", "status", "created_at", "updated_at",
}

var applicationColumns = []string{"id", "job_id", "applicant_id", "cover_letter", "resume_url", "created_at"}

// PgJobRepository handles job and application database operations
type PgJobRepository struct {
	db *pgxpool.Pool
}

// NewJobRepository creates a new PgJobRepository
func NewJobRepository(db *pgxpool.Pool) *PgJobRepository {
	return &PgJobRepository{db: db}
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.OwnerID, &j.Title, &j.Company, &j.Description, &j.Location, &j.JobType,
		&j.Remote, &j.SalaryRange, &j.ApplicationURL, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func scanApplication(row pgx.Row) (*models.JobApplication, error) {
	var a models.JobApplication
	if err := row.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CoverLetter, &a.ResumeURL, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a job posting
func (r *PgJobRepository) Create(ctx context.Context, j *models.Job) error {
	sql, args, err := psql.Insert("jobs").
		Columns(jobColumns...).
		Values(j.ID, j.OwnerID, j.Title, j.Company, j.Description, j.Location, j.JobType,
			j.Remote, j.SalaryRange, j.ApplicationURL, j.Status, j.CreatedAt, j.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create job query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Msg("Error creating job")
		return fmt.Errorf("error creating job: %w", err)
	}
	return nil
}

// GetByID retrieves a job posting
func (r *PgJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	sql, args, err := psql.Select(jobColumns...).From("jobs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get job query: %w", err)
	}
	job, err := scanJob(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, fmt.Errorf("error retrieving job: %w", err)
	}
	return job, nil
}

// Update writes the editable job fields
func (r *PgJobRepository) Update(ctx context.Context, j *models.Job) error {
	sql, args, err := psql.Update("jobs").
		SetMap(map[string]interface{}{
			"title":           j.Title,
			"company":         j.Company,
			"description":     j.Description,
			"location":        j.Location,
			"job_type":        j.JobType,
			"remote":          j.Remote,
			"salary_range":    j.SalaryRange,
			"application_url": j.ApplicationURL,
			"updated_at":      j.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": j.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update job query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

// Delete removes a job posting and, by cascade, its applications
func (r *PgJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := psql.Delete("jobs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete job query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

// SetStatus opens or closes a job posting
func (r *PgJobRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	sql, args, err := psql.Update("jobs").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build job status query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

func (r *PgJobRepository) execOne(ctx context.Context, sql string, args []interface{}) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Msg("Error writing job")
		return fmt.Errorf("error writing job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

func applyJobFilter(b squirrel.SelectBuilder, f models.JobFilter) squirrel.SelectBuilder {
	if f.Search != "" {
		pattern := likePattern(f.Search)
		b = b.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"company": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	if f.JobType != "" {
		b = b.Where(squirrel.Eq{"job_type": f.JobType})
	}
	if f.Location != "" {
		b = b.Where(squirrel.ILike{"location": likePattern(f.Location)})
	}
	if f.Remote != nil {
		b = b.Where(squirrel.Eq{"remote": *f.Remote})
	}
	if f.Status != "" {
		b = b.Where(squirrel.Eq{"status": f.Status})
	}
	if f.OwnerID != nil {
		b = b.Where(squirrel.Eq{"owner_id": *f.OwnerID})
	}
	return b
}

// List pages through job postings, newest first
func (r *PgJobRepository) List(ctx context.Context, f models.JobFilter, offset, limit int) ([]*models.Job, int64, error) {
	countSQL, countArgs, err := applyJobFilter(psql.Select("count(*)").From("jobs"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count jobs query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting jobs: %w", err)
	}

	sql, args, err := applyJobFilter(psql.Select(jobColumns...).From("jobs"), f).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list jobs query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing jobs: %w", err)
	}
	jobs, err := collectRows(rows, scanJob)
	if err != nil {
		return nil, 0, fmt.Errorf("error scanning jobs: %w", err)
	}
	return jobs, total, nil
}

// CreateApplication records an application
func (r *PgJobRepository) CreateApplication(ctx context.Context, a *models.JobApplication) error {
	sql, args, err := psql.Insert("job_applications").
		Columns(applicationColumns...).
		Values(a.ID, a.JobID, a.ApplicantID, a.CoverLetter, a.ResumeURL, a.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create application query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintApplicationsJobApplicant) {
			return apperrors.ErrAlreadyApplied
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrJobNotFound
		}
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Msg("Error creating job application")
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

// ListApplications pages through a job's applications, oldest first
func (r *PgJobRepository) ListApplications(ctx context.Context, jobID uuid.UUID, offset, limit int) ([]*models.JobApplication, int64, error) {
	where := squirrel.Eq{"job_id": jobID}

	countSQL, countArgs, err := psql.Select("count(*)").From("job_applications").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	sql, args, err := psql.Select(applicationColumns...).From("job_applications").
		Where(where).
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing applications: %w", err)
	}
	apps, err := collectRows(rows, scanApplication)
	if err != nil {
		return nil, 0, fmt.Errorf("error scanning applications: %w", err)
	}
	return apps, total, nil
}

// Statistics aggregates postings by status and type
func (r *PgJobRepository) Statistics(ctx context.Context) (*models.JobStatistics, error) {
	stats := &models.JobStatistics{
		ByStatus: make(map[models.JobStatus]int64),
		ByType:   make(map[models.JobType]int64),
	}

	rows, err := r.db.Query(ctx, `SELECT status, job_type, count(*) FROM jobs GROUP BY status, job_type`)
	if err != nil {
		return nil, fmt.Errorf("error aggregating jobs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status models.JobStatus
		var jobType models.JobType
		var n int64
		if err := rows.Scan(&status, &jobType, &n); err != nil {
			return nil, fmt.Errorf("error scanning job statistics: %w", err)
		}
		stats.ByStatus[status] += n
		stats.ByType[jobType] += n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM job_applications`).Scan(&stats.TotalApplications); err != nil {
		return nil, fmt.Errorf("error counting applications: %w", err)
	}
	return stats, nil
}
