package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	appAuth "github.com/alnet/mentorbridge/internal/app/auth"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/auth"
	"github.com/alnet/mentorbridge/internal/pkg/email"
	"github.com/alnet/mentorbridge/internal/pkg/filestorage"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/alnet/mentorbridge/internal/pkg/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxBulkUploadRows caps the rows accepted by one CSV import
const MaxBulkUploadRows = 5000

// Bulk upload CSV columns; the header row may list them in any order
var bulkUploadColumns = []string{
	"email", "firstName", "lastName", "role", "graduationYear", "departmentOrCourse",
	"currentCompany", "currentPosition", "location", "industry", "skills",
}

var bulkRequiredColumns = []string{"email", "firstName", "lastName", "role"}

// ProfileService manages profiles and the alumni directory
type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, session appAuth.Session, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.Profile, error)
	UploadPhoto(ctx context.Context, session appAuth.Session, userID uuid.UUID, file *multipart.FileHeader) (*dto.PhotoUploadResponse, error)
	SearchAlumni(ctx context.Context, query *dto.AlumniSearchQuery, page helpers.PageRequest) (*dto.Page[*models.Profile], error)
	Directory(ctx context.Context, page helpers.PageRequest) (*dto.Page[*models.Profile], error)
	BulkUpload(ctx context.Context, r io.Reader) (*dto.BulkUploadResult, error)
	SetUserStatus(ctx context.Context, session appAuth.Session, userID uuid.UUID, active bool) error
}

type profileServiceImpl struct {
	userRepo     repositories.UserRepository
	profileRepo  repositories.ProfileRepository
	tokenRepo    repositories.TokenRepository
	fileStorage  filestorage.FileStorage
	emailService email.EmailService
	validate     *validator.Validate
	logger       zerolog.Logger
	now          clock
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	repos *repositories.Repositories,
	fileStorage filestorage.FileStorage,
	emailService email.EmailService,
	logger zerolog.Logger,
) ProfileService {
	return &profileServiceImpl{
		userRepo:     repos.Users,
		profileRepo:  repos.Profiles,
		tokenRepo:    repos.Tokens,
		fileStorage:  fileStorage,
		emailService: emailService,
		validate:     validator.New(),
		logger:       logger,
		now:          utcNow,
	}
}

// GetProfile returns the profile of userID
func (s *profileServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

// UpdateProfile applies a partial update; only the owner or an admin may edit
func (s *profileServiceImpl) UpdateProfile(ctx context.Context, session appAuth.Session, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.Profile, error) {
	if err := appAuth.RequireOwnerOrAdmin(session, userID, apperrors.ErrNotProfileOwner); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.Apply(profile)
	profile.Skills = validation.NormalizeSkills(profile.Skills)
	profile.UpdatedAt = s.now()

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUserID(ctx, userID)
}

// UploadPhoto stores a new profile photo and removes the previous file
func (s *profileServiceImpl) UploadPhoto(ctx context.Context, session appAuth.Session, userID uuid.UUID, file *multipart.FileHeader) (*dto.PhotoUploadResponse, error) {
	if err := appAuth.RequireOwnerOrAdmin(session, userID, apperrors.ErrNotProfileOwner); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.fileStorage.SaveImage(file, "profiles/"+userID.String())
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.UpdatePhotoURL(ctx, userID, url); err != nil {
		if delErr := s.fileStorage.DeleteFile(url); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", url).Msg("Failed to clean up stored photo")
		}
		return nil, err
	}

	if profile.ProfilePhotoURL != "" {
		if err := s.fileStorage.DeleteFile(profile.ProfilePhotoURL); err != nil {
			s.logger.Warn().Err(err).Str("url", profile.ProfilePhotoURL).Msg("Failed to delete previous profile photo")
		}
	}

	return &dto.PhotoUploadResponse{ProfilePhotoURL: url}, nil
}

// SearchAlumni runs the directory search; filters are AND-ed
func (s *profileServiceImpl) SearchAlumni(ctx context.Context, query *dto.AlumniSearchQuery, page helpers.PageRequest) (*dto.Page[*models.Profile], error) {
	filter, err := alumniFilterFrom(query)
	if err != nil {
		return nil, err
	}

	profiles, total, err := s.profileRepo.SearchAlumni(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	return newPage(profiles, total, page), nil
}

// Directory lists every active alumnus in natural order
func (s *profileServiceImpl) Directory(ctx context.Context, page helpers.PageRequest) (*dto.Page[*models.Profile], error) {
	return s.SearchAlumni(ctx, &dto.AlumniSearchQuery{}, page)
}

func alumniFilterFrom(query *dto.AlumniSearchQuery) (models.AlumniFilter, error) {
	if query == nil {
		query = &dto.AlumniSearchQuery{}
	}
	filter := models.AlumniFilter{
		Company:              strings.TrimSpace(query.Company),
		Position:             strings.TrimSpace(query.Position),
		Location:             strings.TrimSpace(query.Location),
		Industry:             strings.TrimSpace(query.Industry),
		MinYearsOfExperience: query.YearsOfExperience,
		GraduationYear:       query.GraduationYear,
		Descending:           strings.EqualFold(query.Order, "desc"),
	}

	if query.SortBy != "" {
		if !models.IsAlumniSortKey(query.SortBy) {
			return filter, apperrors.NewValidationError("sortBy must be one of: " + strings.Join(models.AlumniSortKeys, ", "))
		}
		filter.SortBy = query.SortBy
	}
	if query.Order != "" && !strings.EqualFold(query.Order, "asc") && !strings.EqualFold(query.Order, "desc") {
		return filter, apperrors.NewValidationError("order must be asc or desc")
	}

	for _, skill := range strings.Split(query.Skills, ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			filter.Skills = append(filter.Skills, skill)
		}
	}
	return filter, nil
}

// BulkUpload imports users from CSV. Each row gets a temporary password that is
// mailed to the user; rejected rows are reported without aborting the import.
func (s *profileServiceImpl) BulkUpload(ctx context.Context, r io.Reader) (*dto.BulkUploadResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.ErrInvalidCSV.WithDetails(map[string]interface{}{"reason": "missing header row"})
	}
	columns, err := bulkColumnIndex(header)
	if err != nil {
		return nil, err
	}

	// Rows are buffered so an oversized file is rejected before any account exists.
	type csvRow struct {
		record []string
		err    error
	}
	var rows []csvRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return nil, apperrors.ErrInvalidCSV.WithDetails(map[string]interface{}{"reason": err.Error()})
		}
		if len(rows) == MaxBulkUploadRows {
			return nil, apperrors.ErrInvalidCSV.WithDetails(map[string]interface{}{
				"reason": fmt.Sprintf("at most %d rows are accepted", MaxBulkUploadRows),
			})
		}
		rows = append(rows, csvRow{record: record, err: err})
	}

	result := &dto.BulkUploadResult{Errors: []dto.BulkUploadError{}}
	type credentials struct{ email, name, password string }
	var created []credentials

	for n, line := range rows {
		row, record := n+1, line.record
		if line.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, dto.BulkUploadError{Row: row, Message: line.err.Error()})
			continue
		}

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		user, profile, password, err := s.bulkRow(field)
		if err == nil {
			err = s.userRepo.CreateWithProfile(ctx, user, profile)
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, dto.BulkUploadError{Row: row, Email: field("email"), Message: err.Error()})
			continue
		}

		result.Created++
		created = append(created, credentials{email: user.Email, name: profile.FullName(), password: password})
	}

	s.logger.Info().Int("created", result.Created).Int("failed", result.Failed).Msg("Bulk user upload processed")

	if len(created) > 0 {
		go func() {
			for _, c := range created {
				if err := s.emailService.SendTemporaryPasswordEmail(c.email, c.name, c.password); err != nil {
					s.logger.Warn().Err(err).Str("email", c.email).Msg("Failed to send temporary password email")
				}
			}
		}()
	}

	return result, nil
}

func bulkColumnIndex(header []string) (map[string]int, error) {
	known := make(map[string]string, len(bulkUploadColumns))
	for _, c := range bulkUploadColumns {
		known[strings.ToLower(c)] = c
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		name, ok := known[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))]
		if ok {
			columns[name] = i
		}
	}

	for _, required := range bulkRequiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, apperrors.ErrInvalidCSV.WithDetails(map[string]interface{}{
				"reason": "missing required column " + required,
			})
		}
	}
	return columns, nil
}

// bulkRow validates one CSV row and builds the account it describes
func (s *profileServiceImpl) bulkRow(field func(string) string) (*models.User, *models.Profile, string, error) {
	emailAddr := validation.NormalizeEmail(field("email"))
	if err := s.validate.Var(emailAddr, "required,email"); err != nil {
		return nil, nil, "", apperrors.ErrInvalidEmail
	}

	role := models.Role(strings.ToLower(field("role")))
	if !role.SelfRegistrable() {
		return nil, nil, "", apperrors.ErrRoleNotAllowed
	}

	firstName, lastName := field("firstName"), field("lastName")
	if firstName == "" || lastName == "" {
		return nil, nil, "", apperrors.NewValidationError("firstName and lastName are required")
	}

	var graduationYear *int
	if raw := field("graduationYear"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < validation.MinGraduationYear || year > validation.MaxGraduationYear {
			return nil, nil, "", apperrors.NewValidationError("graduationYear must be a year between 1950 and 2100")
		}
		graduationYear = &year
	}

	password, err := auth.GenerateTemporaryPassword()
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to generate password: %w", err)
	}
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        emailAddr,
		PasswordHash: hashedPassword,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &models.Profile{
		UserID:             user.ID,
		Role:               role,
		FirstName:          firstName,
		LastName:           lastName,
		GraduationYear:     graduationYear,
		DepartmentOrCourse: field("departmentOrCourse"),
		CurrentCompany:     field("currentCompany"),
		CurrentPosition:    field("currentPosition"),
		Location:           field("location"),
		Industry:           field("industry"),
		Skills:             validation.NormalizeSkills(strings.Split(field("skills"), ";")),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return user, profile, password, nil
}

// SetUserStatus enables or disables an account; disabling revokes its refresh tokens
func (s *profileServiceImpl) SetUserStatus(ctx context.Context, session appAuth.Session, userID uuid.UUID, active bool) error {
	if !session.IsAdmin() {
		return apperrors.ErrAdminRequired
	}
	if session.UserID == userID {
		return apperrors.ErrSelfDeactivation
	}

	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return err
	}

	if !active {
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
			return err
		}
	}

	s.logger.Info().Str("userID", userID.String()).Bool("active", active).Str("by", session.UserID.String()).Msg("User status changed")
	return nil
}
