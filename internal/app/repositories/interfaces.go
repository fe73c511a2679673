package repositories

import (
	"context"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/google/uuid"
)

// UserRepository persists accounts. Lookups of unknown users return apperrors.ErrUserNotFound.
type UserRepository interface {
	// CreateWithProfile inserts the user and its profile atomically.
	// A taken email yields apperrors.ErrEmailAlreadyExists.
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
	CountByActive(ctx context.Context) (active, inactive int64, err error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// TokenRepository persists opaque refresh tokens
type TokenRepository interface {
	CreateToken(ctx context.Context, token string, userID uuid.UUID, expiryDate time.Time) error
	// GetToken returns the stored token regardless of its state, or apperrors.ErrTokenNotFound
	GetToken(ctx context.Context, token string) (*models.RefreshToken, error)
	// RotateToken revokes oldToken and stores newToken in one step. It fails with
	// apperrors.ErrTokenRevoked when oldToken was already revoked.
	RotateToken(ctx context.Context, oldToken, newToken string, userID uuid.UUID, expiryDate time.Time) error
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// ProfileRepository persists profiles and serves the alumni directory
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdatePhotoURL(ctx context.Context, userID uuid.UUID, url string) error
	// SearchAlumni returns active alumni matching every set filter field and the total match count
	SearchAlumni(ctx context.Context, filter models.AlumniFilter, offset, limit int) ([]*models.Profile, int64, error)
	// GetSummaries resolves user summaries; unknown ids are absent from the map
	GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.UserSummary, error)
}

// ConnectionRepository persists connections. At most one active connection exists per unordered pair.
type ConnectionRepository interface {
	// Create fails with apperrors.ErrConnectionExists when the pair already has an active connection
	Create(ctx context.Context, conn *models.Connection) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Connection, error)
	// FindActiveBetween returns the pair's active connection or apperrors.ErrConnectionNotFound
	FindActiveBetween(ctx context.Context, a, b uuid.UUID) (*models.Connection, error)
	// FindLatestBetween returns the pair's most recent connection in any status
	FindLatestBetween(ctx context.Context, a, b uuid.UUID) (*models.Connection, error)
	// TransitionStatus moves the connection to `to` only if its current status is one of from.
	// Otherwise it returns apperrors.ErrConnectionStatusChanged.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []models.ConnectionStatus, to models.ConnectionStatus) (*models.Connection, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status models.ConnectionStatus, direction models.ConnectionDirection, offset, limit int) ([]*models.Connection, int64, error)
	CountByStatus(ctx context.Context, from, to time.Time) (map[models.ConnectionStatus]int64, error)
}

// MessageRepository persists direct messages
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// ListConversation returns the pair's messages ordered by created_at then id, ascending
	ListConversation(ctx context.Context, a, b uuid.UUID, offset, limit int) ([]*models.Message, int64, error)
	// ListSince returns the user's messages created after since, ascending, optionally scoped to one counterpart
	ListSince(ctx context.Context, userID uuid.UUID, with *uuid.UUID, since time.Time, limit int) ([]*models.Message, error)
	// ListConversations returns one summary per counterpart, most recent activity first
	ListConversations(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.ConversationSummary, int64, error)
	// AdvanceStatus moves messages from sender to receiver that are behind `to` up to `to`
	AdvanceStatus(ctx context.Context, receiverID, senderID uuid.UUID, to models.MessageStatus) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	// DailyVolume returns per-UTC-day counts for days that have messages
	DailyVolume(ctx context.Context, from, to time.Time) ([]models.DailyCount, error)
}

// JobRepository persists job postings and applications
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.JobFilter, offset, limit int) ([]*models.Job, int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error
	// CreateApplication fails with apperrors.ErrAlreadyApplied on a repeated (job, applicant)
	CreateApplication(ctx context.Context, app *models.JobApplication) error
	ListApplications(ctx context.Context, jobID uuid.UUID, offset, limit int) ([]*models.JobApplication, int64, error)
	Statistics(ctx context.Context) (*models.JobStatistics, error)
}

// StartupRepository persists startup listings
type StartupRepository interface {
	// Create fails with apperrors.ErrStartupAlreadyExists when the owner already has one
	Create(ctx context.Context, startup *models.Startup) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Startup, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Startup, error)
	Update(ctx context.Context, startup *models.Startup) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.StartupFilter, offset, limit int) ([]*models.Startup, int64, error)
	// Review moves a pending startup to status. It fails with apperrors.ErrStartupNotPending
	// when the startup has already been reviewed, so concurrent decisions cannot both win.
	Review(ctx context.Context, id uuid.UUID, status models.StartupStatus, note string) error
	CountByStatus(ctx context.Context) (map[models.StartupStatus]int64, error)
}

// DonationRepository persists donations
type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	// List returns donations newest first; a nil donorID lists everyone's
	List(ctx context.Context, donorID *uuid.UUID, offset, limit int) ([]*models.Donation, int64, error)
	Summary(ctx context.Context) (*models.DonationSummary, error)
}

// EventRepository persists events and registrations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns events by start time; a non-nil endsAfter keeps only events ending after it
	List(ctx context.Context, endsAfter *time.Time, offset, limit int) ([]*models.Event, int64, error)
	// Register enforces capacity and uniqueness atomically
	Register(ctx context.Context, eventID, userID uuid.UUID) error
	Unregister(ctx context.Context, eventID, userID uuid.UUID) error
	RegisteredAmong(ctx context.Context, userID uuid.UUID, eventIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	Count(ctx context.Context, endsAfter *time.Time) (int64, error)
}
