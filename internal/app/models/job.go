package models

import (
	"time"

	"github.com/google/uuid"
)

// Job defines a job posting in 'jobs'
type Job struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OwnerID        uuid.UUID `json:"ownerId" db:"owner_id"`
	Title          string    `json:"title" db:"title"`
	Company        string    `json:"company" db:"company"`
	Description    string    `json:"description" db:"description"`
	Location       string    `json:"location" db:"location"`
	JobType        JobType   `json:"jobType" db:"job_type"`
	Remote         bool      `json:"remote" db:"remote"`
	SalaryRange    string    `json:"salaryRange" db:"salary_range"`
	ApplicationURL string    `json:"applicationUrl" db:"application_url"`
	Status         JobStatus `json:"status" db:"status"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// JobApplication is a user's application to a job, unique per (job, applicant)
type JobApplication struct {
	ID          uuid.UUID `json:"id" db:"id"`
	JobID       uuid.UUID `json:"jobId" db:"job_id"`
	ApplicantID uuid.UUID `json:"applicantId" db:"applicant_id"`
	CoverLetter string    `json:"coverLetter" db:"cover_letter"`
	ResumeURL   string    `json:"resumeUrl" db:"resume_url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// JobFilter narrows job listings
type JobFilter struct {
	Search   string
	JobType  JobType
	Location string
	Remote   *bool
	Status   JobStatus
	OwnerID  *uuid.UUID
}

// JobStatistics aggregates postings and applications
type JobStatistics struct {
	Total             int64               `json:"total"`
	ByStatus          map[JobStatus]int64 `json:"byStatus"`
	ByType            map[JobType]int64   `json:"byType"`
	TotalApplications int64               `json:"totalApplications"`
}
