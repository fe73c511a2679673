package dto

import "github.com/alnet/mentorbridge/internal/app/models"

// JobRequest creates or replaces a job posting
type JobRequest struct {
	Title          string         `json:"title" binding:"required,max=200"`
	Company        string         `json:"company" binding:"required,max=200"`
	Description    string         `json:"description" binding:"required,max=10000"`
	Location       string         `json:"location" binding:"max=200"`
	JobType        models.JobType `json:"jobType" binding:"required,jobtype"`
	Remote         bool           `json:"remote"`
	SalaryRange    string         `json:"salaryRange" binding:"max=100"`
	ApplicationURL string         `json:"applicationUrl" binding:"omitempty,url"`
}

// Apply copies the request onto job
func (r *JobRequest) Apply(job *models.Job) {
	job.Title = r.Title
	job.Company = r.Company
	job.Description = r.Description
	job.Location = r.Location
	job.JobType = r.JobType
	job.Remote = r.Remote
	job.SalaryRange = r.SalaryRange
	job.ApplicationURL = r.ApplicationURL
}

// JobListQuery binds job listing filters
type JobListQuery struct {
	Search   string `form:"search"`
	JobType  string `form:"jobType" binding:"omitempty,jobtype"`
	Location string `form:"location"`
	Remote   *bool  `form:"remote"`
	Status   string `form:"status" binding:"omitempty,oneof=open closed"`
}

// ApplyJobRequest is a job application
type ApplyJobRequest struct {
	CoverLetter string `json:"coverLetter" binding:"max=5000"`
	ResumeURL   string `json:"resumeUrl" binding:"omitempty,url"`
}

// JobResponse is a job with its poster summary
type JobResponse struct {
	models.Job
	Poster *models.UserSummary `json:"poster,omitempty"`
}

// ApplicationResponse is an application with its applicant summary
type ApplicationResponse struct {
	models.JobApplication
	Applicant *models.UserSummary `json:"applicant,omitempty"`
}
