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

var profileColumns = []string{
	"p.user_id", "u.role", "p.first_name", "p.last_name", "p.bio", "p.headline",
	"p.location", "p.city", "p.country", "p.current_company", "p.current_position",
	"p.industry", "p.skills", "p.graduation_year", "p.degree_type", "p.department_or_course",
	"p.years_of_experience", "p.linkedin_url", "p.github_url", "p.portfolio_url",
	"p.profile_photo_url", "p.seeking_mentorship", "p.offering_mentorship",
	"p.created_at", "p.updated_at",
}

// alumniSortColumns maps directory sort keys to SQL expressions
var alumniSortColumns = map[string]string{
	models.SortFirstName:         "LOWER(p.first_name)",
	models.SortLastName:          "LOWER(p.last_name)",
	models.SortGraduationYear:    "p.graduation_year",
	models.SortYearsOfExperience: "p.years_of_experience",
	models.SortCurrentCompany:    "LOWER(p.current_company)",
	models.SortCreatedAt:         "p.created_at",
}

// PgProfileRepository handles profile database operations
type PgProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new PgProfileRepository
func NewProfileRepository(db *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{db: db}
}

func selectProfiles() squirrel.SelectBuilder {
	return psql.Select(profileColumns...).From("profiles p").Join("users u ON u.id = p.user_id")
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.UserID, &p.Role, &p.FirstName, &p.LastName, &p.Bio, &p.Headline,
		&p.Location, &p.City, &p.Country, &p.CurrentCompany, &p.CurrentPosition,
		&p.Industry, &p.Skills, &p.GraduationYear, &p.DegreeType, &p.DepartmentOrCourse,
		&p.YearsOfExperience, &p.LinkedinURL, &p.GithubURL, &p.PortfolioURL,
		&p.ProfilePhotoURL, &p.SeekingMentorship, &p.OfferingMentorship,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}

func insertProfileQuery(p *models.Profile) (string, []interface{}, error) {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return psql.Insert("profiles").
		Columns(
			"user_id", "first_name", "last_name", "bio", "headline", "location", "city", "country",
			"current_company", "current_position", "industry", "skills", "graduation_year",
			"degree_type", "department_or_course", "years_of_experience", "linkedin_url",
			"github_url", "portfolio_url", "profile_photo_url", "seeking_mentorship",
			"offering_mentorship", "created_at", "updated_at",
		).
		Values(
			p.UserID, p.FirstName, p.LastName, p.Bio, p.Headline, p.Location, p.City, p.Country,
			p.CurrentCompany, p.CurrentPosition, p.Industry, skills, p.GraduationYear,
			p.DegreeType, p.DepartmentOrCourse, p.YearsOfExperience, p.LinkedinURL,
			p.GithubURL, p.PortfolioURL, p.ProfilePhotoURL, p.SeekingMentorship,
			p.OfferingMentorship, p.CreatedAt, p.UpdatedAt,
		).
		ToSql()
}

// GetByUserID retrieves the profile of a user
func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	sql, args, err := selectProfiles().Where(squirrel.Eq{"p.user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	profile, err := scanProfile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrProfileNotFound
		}
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error scanning profile")
		return nil, fmt.Errorf("error retrieving profile: %w", err)
	}
	return profile, nil
}

// Update writes every editable profile field
func (r *PgProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	sql, args, err := psql.Update("profiles").
		SetMap(map[string]interface{}{
			"first_name":           p.FirstName,
			"last_name":            p.LastName,
			"bio":                  p.Bio,
			"headline":             p.Headline,
			"location":             p.Location,
			"city":                 p.City,
			"country":              p.Country,
			"current_company":      p.CurrentCompany,
			"current_position":     p.CurrentPosition,
			"industry":             p.Industry,
			"skills":               skills,
			"graduation_year":      p.GraduationYear,
			"degree_type":          p.DegreeType,
			"department_or_course": p.DepartmentOrCourse,
			"years_of_experience":  p.YearsOfExperience,
			"linkedin_url":         p.LinkedinURL,
			"github_url":           p.GithubURL,
			"portfolio_url":        p.PortfolioURL,
			"seeking_mentorship":   p.SeekingMentorship,
			"offering_mentorship":  p.OfferingMentorship,
			"updated_at":           p.UpdatedAt,
		}).
		Where(squirrel.Eq{"user_id": p.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Str("userID", p.UserID.String()).Msg("Error updating profile")
		return fmt.Errorf("error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

// UpdatePhotoURL records the stored profile photo location
func (r *PgProfileRepository) UpdatePhotoURL(ctx context.Context, userID uuid.UUID, url string) error {
	sql, args, err := psql.Update("profiles").
		Set("profile_photo_url", url).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update photo query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating profile photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

// applyAlumniFilter adds the directory predicates shared by the page and count queries
func applyAlumniFilter(b squirrel.SelectBuilder, f models.AlumniFilter) squirrel.SelectBuilder {
	b = b.Where(squirrel.Eq{"u.role": models.RoleAlumni, "u.is_active": true})

	if f.Company != "" {
		b = b.Where(squirrel.ILike{"p.current_company": likePattern(f.Company)})
	}
	if f.Position != "" {
		b = b.Where(squirrel.ILike{"p.current_position": likePattern(f.Position)})
	}
	if f.Industry != "" {
		b = b.Where(squirrel.ILike{"p.industry": likePattern(f.Industry)})
	}
	if f.Location != "" {
		pattern := likePattern(f.Location)
		b = b.Where(squirrel.Or{
			squirrel.ILike{"p.location": pattern},
			squirrel.ILike{"p.city": pattern},
			squirrel.ILike{"p.country": pattern},
		})
	}
	if len(f.Skills) > 0 {
		patterns := make([]string, 0, len(f.Skills))
		for _, s := range f.Skills {
			patterns = append(patterns, likePattern(s))
		}
		b = b.Where("EXISTS (SELECT 1 FROM unnest(p.skills) AS s WHERE s ILIKE ANY(?))", patterns)
	}
	if f.MinYearsOfExperience != nil {
		b = b.Where(squirrel.GtOrEq{"p.years_of_experience": *f.MinYearsOfExperience})
	}
	if f.GraduationYear != nil {
		b = b.Where(squirrel.Eq{"p.graduation_year": *f.GraduationYear})
	}
	return b
}

// alumniSearchQueries builds the page query and the matching count query
func alumniSearchQueries(f models.AlumniFilter, offset, limit int) (squirrel.SelectBuilder, squirrel.SelectBuilder) {
	page := applyAlumniFilter(selectProfiles(), f)

	if col, ok := alumniSortColumns[f.SortBy]; ok {
		page = page.OrderBy(fmt.Sprintf("%s %s NULLS LAST", col, orderDir(f.Descending)))
	}
	page = page.OrderBy("p.created_at ASC", "p.user_id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	count := applyAlumniFilter(psql.Select("count(*)").From("profiles p").Join("users u ON u.id = p.user_id"), f)
	return page, count
}

// SearchAlumni runs the directory search
func (r *PgProfileRepository) SearchAlumni(ctx context.Context, f models.AlumniFilter, offset, limit int) ([]*models.Profile, int64, error) {
	pageQ, countQ := alumniSearchQueries(f, offset, limit)

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build alumni count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting alumni")
		return nil, 0, fmt.Errorf("error counting alumni: %w", err)
	}
	if total == 0 {
		return []*models.Profile{}, 0, nil
	}

	sql, args, err := pageQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build alumni search query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error searching alumni")
		return nil, 0, fmt.Errorf("error searching alumni: %w", err)
	}
	profiles, err := collectRows(rows, scanProfile)
	if err != nil {
		return nil, 0, fmt.Errorf("error scanning alumni: %w", err)
	}
	return profiles, total, nil
}

// GetSummaries resolves compact user views for ids
func (r *PgProfileRepository) GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.UserSummary, error) {
	result := make(map[uuid.UUID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	sql, args, err := psql.Select("p.user_id", "p.first_name", "p.last_name", "u.role", "p.headline", "p.current_company", "p.profile_photo_url").
		From("profiles p").
		Join("users u ON u.id = p.user_id").
		Where(squirrel.Eq{"p.user_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build summaries query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading user summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Role, &s.Headline, &s.CurrentCompany, &s.ProfilePhotoURL); err != nil {
			return nil, fmt.Errorf("error scanning user summary: %w", err)
		}
		result[s.ID] = s
	}
	return result, rows.Err()
}
