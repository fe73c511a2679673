package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// Profile defines the public profile of a user, one row per user in 'profiles'
type Profile struct {
	UserID             uuid.UUID `json:"userId" db:"user_id"`
	Role               Role      `json:"role" db:"role"` // joined from users
	FirstName          string    `json:"firstName" db:"first_name"`
	LastName           string    `json:"lastName" db:"last_name"`
	Bio                string    `json:"bio" db:"bio"`
	Headline           string    `json:"headline" db:"headline"`
	Location           string    `json:"location" db:"location"`
	City               string    `json:"city" db:"city"`
	Country            string    `json:"country" db:"country"`
	CurrentCompany     string    `json:"currentCompany" db:"current_company"`
	CurrentPosition    string    `json:"currentPosition" db:"current_position"`
	Industry           string    `json:"industry" db:"industry"`
	Skills             []string  `json:"skills" db:"skills"`
	GraduationYear     *int      `json:"graduationYear,omitempty" db:"graduation_year"`
	DegreeType         string    `json:"degreeType" db:"degree_type"`
	DepartmentOrCourse string    `json:"departmentOrCourse" db:"department_or_course"`
	YearsOfExperience  *int      `json:"yearsOfExperience,omitempty" db:"years_of_experience"`
	LinkedinURL        string    `json:"linkedinUrl" db:"linkedin_url"`
	GithubURL          string    `json:"githubUrl" db:"github_url"`
	PortfolioURL       string    `json:"portfolioUrl" db:"portfolio_url"`
	ProfilePhotoURL    string    `json:"profilePhotoUrl" db:"profile_photo_url"`
	SeekingMentorship  bool      `json:"seekingMentorship" db:"seeking_mentorship"`
	OfferingMentorship bool      `json:"offeringMentorship" db:"offering_mentorship"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName returns "First Last"
func (p *Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// UserSummary is the compact user view embedded in connections, messages and listings
type UserSummary struct {
	ID              uuid.UUID `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Role            Role      `json:"role"`
	Headline        string    `json:"headline,omitempty"`
	CurrentCompany  string    `json:"currentCompany,omitempty"`
	ProfilePhotoURL string    `json:"profilePhotoUrl,omitempty"`
}

// Summary derives a UserSummary from the profile
func (p *Profile) Summary() UserSummary {
	return UserSummary{
		ID:              p.UserID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Role:            p.Role,
		Headline:        p.Headline,
		CurrentCompany:  p.CurrentCompany,
		ProfilePhotoURL: p.ProfilePhotoURL,
	}
}

// RefreshToken is an opaque, revocable refresh token stored in 'refresh_tokens'
type RefreshToken struct {
	Token      string    `db:"token"`
	UserID     uuid.UUID `db:"user_id"`
	ExpiryDate time.Time `db:"expiry_date"`
	IsRevoked  bool      `db:"is_revoked"`
	CreatedAt  time.Time `db:"created_at"`
}

// Usable reports whether the token can still be exchanged at now
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiryDate)
}
