package services

import (
	"context"

	appAuth "github.com/alnet/mentorbridge/internal/app/auth"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JobService manages job postings and applications
type JobService interface {
	Create(ctx context.Context, session appAuth.Session, req *dto.JobRequest) (*dto.JobResponse, error)
	List(ctx context.Context, query *dto.JobListQuery, page helpers.PageRequest) (*dto.Page[dto.JobResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*dto.JobResponse, error)
	Update(ctx context.Context, session appAuth.Session, id uuid.UUID, req *dto.JobRequest) (*dto.JobResponse, error)
	Delete(ctx context.Context, session appAuth.Session, id uuid.UUID) error
	MyPostings(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.JobResponse], error)
	Close(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.JobResponse, error)
	Apply(ctx context.Context, session appAuth.Session, id uuid.UUID, req *dto.ApplyJobRequest) (*models.JobApplication, error)
	Applications(ctx context.Context, session appAuth.Session, id uuid.UUID, page helpers.PageRequest) (*dto.Page[dto.ApplicationResponse], error)
	Statistics(ctx context.Context) (*models.JobStatistics, error)
}

type jobServiceImpl struct {
	jobRepo     repositories.JobRepository
	profileRepo repositories.ProfileRepository
	publisher   events.Publisher
	logger      zerolog.Logger
	now         clock
}

// NewJobService creates a new JobService
func NewJobService(repos *repositories.Repositories, publisher events.Publisher, logger zerolog.Logger) JobService {
	return &jobServiceImpl{
		jobRepo:     repos.Jobs,
		profileRepo: repos.Profiles,
		publisher:   publisher,
		logger:      logger,
		now:         utcNow,
	}
}

func (s *jobServiceImpl) Create(ctx context.Context, session appAuth.Session, req *dto.JobRequest) (*dto.JobResponse, error) {
	if err := appAuth.RequireRole(session, apperrors.ErrJobPostingDenied, models.RoleAlumni, models.RoleAdmin); err != nil {
		return nil, err
	}

	now := s.now()
	job := &models.Job{
		ID:        uuid.New(),
		OwnerID:   session.UserID,
		Status:    models.JobOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.Apply(job)

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Info().Str("jobID", job.ID.String()).Str("ownerID", job.OwnerID.String()).Msg("Job posted")
	return s.withPoster(ctx, job)
}

func (s *jobServiceImpl) List(ctx context.Context, query *dto.JobListQuery, page helpers.PageRequest) (*dto.Page[dto.JobResponse], error) {
	filter := models.JobFilter{}
	if query != nil {
		filter = models.JobFilter{
			Search:   query.Search,
			JobType:  models.JobType(query.JobType),
			Location: query.Location,
			Remote:   query.Remote,
			Status:   models.JobStatus(query.Status),
		}
	}
	return s.list(ctx, filter, page)
}

func (s *jobServiceImpl) Get(ctx context.Context, id uuid.UUID) (*dto.JobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withPoster(ctx, job)
}

// Update replaces the posting's fields; the status is left untouched
func (s *jobServiceImpl) Update(ctx context.Context, session appAuth.Session, id uuid.UUID, req *dto.JobRequest) (*dto.JobResponse, error) {
	job, err := s.ownedJob(ctx, session, id)
	if err != nil {
		return nil, err
	}

	req.Apply(job)
	job.UpdatedAt = s.now()
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return s.withPoster(ctx, job)
}

func (s *jobServiceImpl) Delete(ctx context.Context, session appAuth.Session, id uuid.UUID) error {
	if _, err := s.ownedJob(ctx, session, id); err != nil {
		return err
	}
	return s.jobRepo.Delete(ctx, id)
}

func (s *jobServiceImpl) MyPostings(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.JobResponse], error) {
	owner := session.UserID
	return s.list(ctx, models.JobFilter{OwnerID: &owner}, page)
}

// Close marks the posting closed. Closing a closed posting is a no-op.
func (s *jobServiceImpl) Close(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.JobResponse, error) {
	job, err := s.ownedJob(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if job.Status != models.JobClosed {
		if err := s.jobRepo.SetStatus(ctx, id, models.JobClosed); err != nil {
			return nil, err
		}
		job.Status = models.JobClosed
		job.UpdatedAt = s.now()
	}
	return s.withPoster(ctx, job)
}

func (s *jobServiceImpl) Apply(ctx context.Context, session appAuth.Session, id uuid.UUID, req *dto.ApplyJobRequest) (*models.JobApplication, error) {
	if session.IsAdmin() {
		return nil, apperrors.ErrApplicationDenied
	}

	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == models.JobClosed {
		return nil, apperrors.ErrJobClosed
	}
	if job.OwnerID == session.UserID {
		return nil, apperrors.ErrApplyOwnJob
	}

	application := &models.JobApplication{
		ID:          uuid.New(),
		JobID:       job.ID,
		ApplicantID: session.UserID,
		CreatedAt:   s.now(),
	}
	if req != nil {
		application.CoverLetter = req.CoverLetter
		application.ResumeURL = req.ResumeURL
	}
	if err := s.jobRepo.CreateApplication(ctx, application); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, events.JobApplied, map[string]interface{}{
		"jobId":       job.ID,
		"applicantId": session.UserID,
		"ownerId":     job.OwnerID,
	})
	return application, nil
}

func (s *jobServiceImpl) Applications(ctx context.Context, session appAuth.Session, id uuid.UUID, page helpers.PageRequest) (*dto.Page[dto.ApplicationResponse], error) {
	if _, err := s.ownedJob(ctx, session, id); err != nil {
		return nil, err
	}

	apps, total, err := s.jobRepo.ListApplications(ctx, id, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ApplicantID)
	}
	summaries, err := summariesFor(ctx, s.profileRepo, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		items = append(items, dto.ApplicationResponse{JobApplication: *a, Applicant: summaryRef(summaries, a.ApplicantID)})
	}
	return newPage(items, total, page), nil
}

func (s *jobServiceImpl) Statistics(ctx context.Context) (*models.JobStatistics, error) {
	return s.jobRepo.Statistics(ctx)
}

// ownedJob loads the job and checks the caller may manage it
func (s *jobServiceImpl) ownedJob(ctx context.Context, session appAuth.Session, id uuid.UUID) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appAuth.RequireOwnerOrAdmin(session, job.OwnerID, apperrors.ErrNotJobOwner); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobServiceImpl) list(ctx context.Context, filter models.JobFilter, page helpers.PageRequest) (*dto.Page[dto.JobResponse], error) {
	jobs, total, err := s.jobRepo.List(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.OwnerID)
	}
	summaries, err := summariesFor(ctx, s.profileRepo, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, dto.JobResponse{Job: *j, Poster: summaryRef(summaries, j.OwnerID)})
	}
	return newPage(items, total, page), nil
}

func (s *jobServiceImpl) withPoster(ctx context.Context, job *models.Job) (*dto.JobResponse, error) {
	summaries, err := summariesFor(ctx, s.profileRepo, []uuid.UUID{job.OwnerID})
	if err != nil {
		return nil, err
	}
	return &dto.JobResponse{Job: *job, Poster: summaryRef(summaries, job.OwnerID)}, nil
}
