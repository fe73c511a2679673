package services

import (
	"testing"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobRequest(title string) *dto.JobRequest {
	return &dto.JobRequest{
		Title:       title,
		Company:     "Acme",
		Description: "Build things",
		Location:    "Berlin",
		JobType:     models.JobFullTime,
	}
}

func TestCreateJobRequiresAlumniOrAdmin(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.repos, f.publisher, f.logger)
	student := f.user(t, models.RoleStudent, "Sam")
	alum := f.user(t, models.RoleAlumni, "Alex")

	_, err := svc.Create(f.ctx, student, jobRequest("Intern"))
	assert.ErrorIs(t, err, apperrors.ErrJobPostingDenied)

	job, err := svc.Create(f.ctx, alum, jobRequest("Engineer"))
	require.NoError(t, err)
	assert.Equal(t, models.JobOpen, job.Status)
	assert.Equal(t, alum.UserID, job.OwnerID)
	require.NotNil(t, job.Poster)
	assert.Equal(t, "Alex", job.Poster.FirstName)
}

func TestJobOwnership(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.repos, f.publisher, f.logger)
	owner := f.user(t, models.RoleAlumni, "Owner")
	other := f.user(t, models.RoleAlumni, "Other")
	admin := f.user(t, models.RoleAdmin, "Admin")

	job, err := svc.Create(f.ctx, owner, jobRequest("Engineer"))
	require.NoError(t, err)

	_, err = svc.Update(f.ctx, other, job.ID, jobRequest("Hijacked"))
	assert.ErrorIs(t, err, apperrors.ErrNotJobOwner)

	updated, err := svc.Update(f.ctx, admin, job.ID, jobRequest("Senior Engineer"))
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", updated.Title)
	assert.Equal(t, owner.UserID, updated.OwnerID)

	closed, err := svc.Close(f.ctx, owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobClosed, closed.Status)

	closed, err = svc.Close(f.ctx, owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobClosed, closed.Status)

	assert.ErrorIs(t, svc.Delete(f.ctx, other, job.ID), apperrors.ErrNotJobOwner)
	require.NoError(t, svc.Delete(f.ctx, owner, job.ID))

	_, err = svc.Get(f.ctx, job.ID)
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestApplyToJob(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.repos, f.publisher, f.logger)
	owner := f.user(t, models.RoleAlumni, "Owner")
	student := f.user(t, models.RoleStudent, "Sam")
	admin := f.user(t, models.RoleAdmin, "Admin")

	job, err := svc.Create(f.ctx, owner, jobRequest("Engineer"))
	require.NoError(t, err)

	_, err = svc.Apply(f.ctx, owner, job.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrApplyOwnJob)

	_, err = svc.Apply(f.ctx, admin, job.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrApplicationDenied)

	app, err := svc.Apply(f.ctx, student, job.ID, &dto.ApplyJobRequest{CoverLetter: "Hire me"})
	require.NoError(t, err)
	assert.Equal(t, "Hire me", app.CoverLetter)

	_, err = svc.Apply(f.ctx, student, job.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)

	_, err = svc.Applications(f.ctx, student, job.ID, firstPage())
	assert.ErrorIs(t, err, apperrors.ErrNotJobOwner)

	apps, err := svc.Applications(f.ctx, owner, job.ID, firstPage())
	require.NoError(t, err)
	require.Len(t, apps.Items, 1)
	require.NotNil(t, apps.Items[0].Applicant)
	assert.Equal(t, "Sam", apps.Items[0].Applicant.FirstName)

	_, err = svc.Close(f.ctx, owner, job.ID)
	require.NoError(t, err)
	late := f.user(t, models.RoleStudent, "Late")
	_, err = svc.Apply(f.ctx, late, job.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrJobClosed)

	_, err = svc.Apply(f.ctx, student, uuid.New(), nil)
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)

	assert.Equal(t, []string{events.JobApplied}, f.publisher.Types())
}

func TestListJobsAndStatistics(t *testing.T) {
	f := newFixture(t)
	svc := NewJobService(f.repos, f.publisher, f.logger)
	owner := f.user(t, models.RoleAlumni, "Owner")
	other := f.user(t, models.RoleAlumni, "Other")

	_, err := svc.Create(f.ctx, owner, jobRequest("Backend Engineer"))
	require.NoError(t, err)
	intern := jobRequest("Summer Intern")
	intern.JobType = models.JobInternship
	intern.Remote = true
	internJob, err := svc.Create(f.ctx, other, intern)
	require.NoError(t, err)
	_, err = svc.Close(f.ctx, other, internJob.ID)
	require.NoError(t, err)

	all, err := svc.List(f.ctx, nil, firstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)

	remote := true
	filtered, err := svc.List(f.ctx, &dto.JobListQuery{Remote: &remote}, firstPage())
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, "Summer Intern", filtered.Items[0].Title)

	searched, err := svc.List(f.ctx, &dto.JobListQuery{Search: "backend"}, firstPage())
	require.NoError(t, err)
	require.Len(t, searched.Items, 1)

	mine, err := svc.MyPostings(f.ctx, owner, firstPage())
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, owner.UserID, mine.Items[0].OwnerID)

	stats, err := svc.Statistics(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[models.JobOpen])
	assert.Equal(t, int64(1), stats.ByStatus[models.JobClosed])
	assert.Equal(t, int64(1), stats.ByType[models.JobInternship])
}
