package memory

import (
	"context"
	"sort"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// JobRepository keeps job postings and applications in memory
type JobRepository struct {
	s *store
}

// Create stores a job posting
func (r *JobRepository) Create(_ context.Context, job *models.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.jobs[job.ID] = cloneOf(job)
	return nil
}

// GetByID retrieves a job posting
func (r *JobRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	j, ok := r.s.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	return cloneOf(j), nil
}

// Update replaces the editable job fields
func (r *JobRepository) Update(_ context.Context, job *models.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.jobs[job.ID]
	if !ok {
		return apperrors.ErrJobNotFound
	}
	c := cloneOf(job)
	c.OwnerID = existing.OwnerID
	c.Status = existing.Status
	c.CreatedAt = existing.CreatedAt
	r.s.jobs[job.ID] = c
	return nil
}

// Delete removes a job posting and its applications
func (r *JobRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.jobs[id]; !ok {
		return apperrors.ErrJobNotFound
	}
	delete(r.s.jobs, id)
	for appID, a := range r.s.applications {
		if a.JobID == id {
			delete(r.s.applications, appID)
		}
	}
	return nil
}

func matchesJob(j *models.Job, f models.JobFilter) bool {
	if f.Search != "" && !containsFold(j.Title, f.Search) && !containsFold(j.Company, f.Search) && !containsFold(j.Description, f.Search) {
		return false
	}
	if f.JobType != "" && j.JobType != f.JobType {
		return false
	}
	if f.Location != "" && !containsFold(j.Location, f.Location) {
		return false
	}
	if f.Remote != nil && j.Remote != *f.Remote {
		return false
	}
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if f.OwnerID != nil && j.OwnerID != *f.OwnerID {
		return false
	}
	return true
}

// List pages through job postings, newest first
func (r *JobRepository) List(_ context.Context, f models.JobFilter, offset, limit int) ([]*models.Job, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := []*models.Job{}
	for _, j := range r.s.jobs {
		if matchesJob(j, f) {
			matches = append(matches, cloneOf(j))
		}
	}
	newestFirst(matches,
		func(j *models.Job) time.Time { return j.CreatedAt },
		func(j *models.Job) uuid.UUID { return j.ID })
	return page(matches, offset, limit), int64(len(matches)), nil
}

// SetStatus opens or closes a job posting
func (r *JobRepository) SetStatus(_ context.Context, id uuid.UUID, status models.JobStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	j, ok := r.s.jobs[id]
	if !ok {
		return apperrors.ErrJobNotFound
	}
	j.Status = status
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// CreateApplication records an application once per (job, applicant)
func (r *JobRepository) CreateApplication(_ context.Context, app *models.JobApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.jobs[app.JobID]; !ok {
		return apperrors.ErrJobNotFound
	}
	for _, a := range r.s.applications {
		if a.JobID == app.JobID && a.ApplicantID == app.ApplicantID {
			return apperrors.ErrAlreadyApplied
		}
	}
	r.s.applications[app.ID] = cloneOf(app)
	return nil
}

// ListApplications pages through a job's applications, oldest first
func (r *JobRepository) ListApplications(_ context.Context, jobID uuid.UUID, offset, limit int) ([]*models.JobApplication, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := []*models.JobApplication{}
	for _, a := range r.s.applications {
		if a.JobID == jobID {
			matches = append(matches, cloneOf(a))
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID.String() < matches[j].ID.String()
	})
	return page(matches, offset, limit), int64(len(matches)), nil
}

// Statistics aggregates postings by status and type
func (r *JobRepository) Statistics(_ context.Context) (*models.JobStatistics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &models.JobStatistics{
		ByStatus:          make(map[models.JobStatus]int64),
		ByType:            make(map[models.JobType]int64),
		TotalApplications: int64(len(r.s.applications)),
	}
	for _, j := range r.s.jobs {
		stats.Total++
		stats.ByStatus[j.Status]++
		stats.ByType[j.JobType]++
	}
	return stats, nil
}
