package dto

import "github.com/alnet/mentorbridge/internal/app/models"

// UpdateProfileRequest carries a partial profile update; nil fields are left unchanged
type UpdateProfileRequest struct {
	FirstName          *string   `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName           *string   `json:"lastName" binding:"omitempty,min=1,max=100"`
	Bio                *string   `json:"bio" binding:"omitempty,max=2000"`
	Headline           *string   `json:"headline" binding:"omitempty,max=200"`
	Location           *string   `json:"location" binding:"omitempty,max=200"`
	City               *string   `json:"city" binding:"omitempty,max=100"`
	Country            *string   `json:"country" binding:"omitempty,max=100"`
	CurrentCompany     *string   `json:"currentCompany" binding:"omitempty,max=200"`
	CurrentPosition    *string   `json:"currentPosition" binding:"omitempty,max=200"`
	Industry           *string   `json:"industry" binding:"omitempty,max=100"`
	Skills             *[]string `json:"skills" binding:"omitempty,skills"`
	GraduationYear     *int      `json:"graduationYear" binding:"omitempty,min=1950,max=2100"`
	DegreeType         *string   `json:"degreeType" binding:"omitempty,max=100"`
	DepartmentOrCourse *string   `json:"departmentOrCourse" binding:"omitempty,max=200"`
	YearsOfExperience  *int      `json:"yearsOfExperience" binding:"omitempty,min=0,max=80"`
	LinkedinURL        *string   `json:"linkedinUrl" binding:"omitempty,url"`
	GithubURL          *string   `json:"githubUrl" binding:"omitempty,url"`
	PortfolioURL       *string   `json:"portfolioUrl" binding:"omitempty,url"`
	SeekingMentorship  *bool     `json:"seekingMentorship"`
	OfferingMentorship *bool     `json:"offeringMentorship"`
}

// Apply copies every provided field onto p
func (r *UpdateProfileRequest) Apply(p *models.Profile) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&p.FirstName, r.FirstName)
	setString(&p.LastName, r.LastName)
	setString(&p.Bio, r.Bio)
	setString(&p.Headline, r.Headline)
	setString(&p.Location, r.Location)
	setString(&p.City, r.City)
	setString(&p.Country, r.Country)
	setString(&p.CurrentCompany, r.CurrentCompany)
	setString(&p.CurrentPosition, r.CurrentPosition)
	setString(&p.Industry, r.Industry)
	setString(&p.DegreeType, r.DegreeType)
	setString(&p.DepartmentOrCourse, r.DepartmentOrCourse)
	setString(&p.LinkedinURL, r.LinkedinURL)
	setString(&p.GithubURL, r.GithubURL)
	setString(&p.PortfolioURL, r.PortfolioURL)

	if r.Skills != nil {
		p.Skills = append([]string(nil), (*r.Skills)...)
	}
	if r.GraduationYear != nil {
		year := *r.GraduationYear
		p.GraduationYear = &year
	}
	if r.YearsOfExperience != nil {
		years := *r.YearsOfExperience
		p.YearsOfExperience = &years
	}
	if r.SeekingMentorship != nil {
		p.SeekingMentorship = *r.SeekingMentorship
	}
	if r.OfferingMentorship != nil {
		p.OfferingMentorship = *r.OfferingMentorship
	}
}

// AlumniSearchQuery binds the directory query string
type AlumniSearchQuery struct {
	Company           string `form:"company"`
	Position          string `form:"position"`
	Location          string `form:"location"`
	Skills            string `form:"skills"`
	Industry          string `form:"industry"`
	YearsOfExperience *int   `form:"yearsOfExperience" binding:"omitempty,min=0"`
	GraduationYear    *int   `form:"graduationYear" binding:"omitempty,min=1950,max=2100"`
	SortBy            string `form:"sortBy" binding:"omitempty,oneof=firstName lastName graduationYear yearsOfExperience currentCompany createdAt"`
	Order             string `form:"order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// BulkUploadError reports one rejected CSV row (1-based, header excluded)
type BulkUploadError struct {
	Row     int    `json:"row"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

// BulkUploadResult summarizes a CSV import
type BulkUploadResult struct {
	Created int               `json:"created"`
	Failed  int               `json:"failed"`
	Errors  []BulkUploadError `json:"errors"`
}

// PhotoUploadResponse returns the stored photo location
type PhotoUploadResponse struct {
	ProfilePhotoURL string `json:"profilePhotoUrl"`
}
