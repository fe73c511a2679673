package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// ProfileRepository keeps profiles in memory
type ProfileRepository struct {
	s *store
}

// joined returns a copy of the profile with the owner's role filled in
func (r *ProfileRepository) joined(p *models.Profile) *models.Profile {
	c := cloneOf(p)
	c.Skills = append([]string{}, p.Skills...)
	if u, ok := r.s.users[p.UserID]; ok {
		c.Role = u.Role
	}
	return c
}

// GetByUserID retrieves the profile of a user
func (r *ProfileRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	return r.joined(p), nil
}

// Update replaces the editable profile fields
func (r *ProfileRepository) Update(_ context.Context, p *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.profiles[p.UserID]
	if !ok {
		return apperrors.ErrProfileNotFound
	}
	c := cloneOf(p)
	c.Skills = append([]string{}, p.Skills...)
	c.ProfilePhotoURL = existing.ProfilePhotoURL
	c.CreatedAt = existing.CreatedAt
	r.s.profiles[p.UserID] = c
	return nil
}

// UpdatePhotoURL records the stored photo location
func (r *ProfileRepository) UpdatePhotoURL(_ context.Context, userID uuid.UUID, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return apperrors.ErrProfileNotFound
	}
	p.ProfilePhotoURL = url
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func matchesAlumni(p *models.Profile, f models.AlumniFilter) bool {
	if f.Company != "" && !containsFold(p.CurrentCompany, f.Company) {
		return false
	}
	if f.Position != "" && !containsFold(p.CurrentPosition, f.Position) {
		return false
	}
	if f.Industry != "" && !containsFold(p.Industry, f.Industry) {
		return false
	}
	if f.Location != "" &&
		!containsFold(p.Location, f.Location) && !containsFold(p.City, f.Location) && !containsFold(p.Country, f.Location) {
		return false
	}
	if len(f.Skills) > 0 && !anySkillMatches(p.Skills, f.Skills) {
		return false
	}
	if f.MinYearsOfExperience != nil && (p.YearsOfExperience == nil || *p.YearsOfExperience < *f.MinYearsOfExperience) {
		return false
	}
	if f.GraduationYear != nil && (p.GraduationYear == nil || *p.GraduationYear != *f.GraduationYear) {
		return false
	}
	return true
}

func anySkillMatches(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if containsFold(h, w) {
				return true
			}
		}
	}
	return false
}

// compareNullableInt orders nil after every value regardless of direction
func compareNullableInt(a, b *int, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	d := *a - *b
	if desc {
		d = -d
	}
	return d
}

func compareAlumni(a, b *models.Profile, f models.AlumniFilter) int {
	var c int
	switch f.SortBy {
	case models.SortFirstName:
		c = strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName))
	case models.SortLastName:
		c = strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName))
	case models.SortCurrentCompany:
		c = strings.Compare(strings.ToLower(a.CurrentCompany), strings.ToLower(b.CurrentCompany))
	case models.SortCreatedAt:
		c = a.CreatedAt.Compare(b.CreatedAt)
	case models.SortGraduationYear:
		if d := compareNullableInt(a.GraduationYear, b.GraduationYear, f.Descending); d != 0 {
			return d
		}
	case models.SortYearsOfExperience:
		if d := compareNullableInt(a.YearsOfExperience, b.YearsOfExperience, f.Descending); d != 0 {
			return d
		}
	}
	if c != 0 {
		if f.Descending {
			return -c
		}
		return c
	}
	if d := a.CreatedAt.Compare(b.CreatedAt); d != 0 {
		return d
	}
	return strings.Compare(a.UserID.String(), b.UserID.String())
}

// SearchAlumni filters, sorts and pages active alumni
func (r *ProfileRepository) SearchAlumni(_ context.Context, f models.AlumniFilter, offset, limit int) ([]*models.Profile, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := []*models.Profile{}
	for id, p := range r.s.profiles {
		u, ok := r.s.users[id]
		if !ok || u.Role != models.RoleAlumni || !u.IsActive {
			continue
		}
		if matchesAlumni(p, f) {
			matches = append(matches, r.joined(p))
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return compareAlumni(matches[i], matches[j], f) < 0
	})
	return page(matches, offset, limit), int64(len(matches)), nil
}

// GetSummaries resolves user summaries for ids that have a profile
func (r *ProfileRepository) GetSummaries(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.UserSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[uuid.UUID]models.UserSummary, len(ids))
	for _, id := range ids {
		if p, ok := r.s.profiles[id]; ok {
			out[id] = r.joined(p).Summary()
		}
	}
	return out, nil
}
