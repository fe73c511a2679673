package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	Users       UserRepository
	Tokens      TokenRepository
	Profiles    ProfileRepository
	Connections ConnectionRepository
	Messages    MessageRepository
	Jobs        JobRepository
	Startups    StartupRepository
	Donations   DonationRepository
	Events      EventRepository
}

// NewRepositories initializes the PostgreSQL-backed repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Tokens:      NewTokenRepository(db),
		Profiles:    NewProfileRepository(db),
		Connections: NewConnectionRepository(db),
		Messages:    NewMessageRepository(db),
		Jobs:        NewJobRepository(db),
		Startups:    NewStartupRepository(db),
		Donations:   NewDonationRepository(db),
		Events:      NewEventRepository(db),
	}
}

// psql is the statement builder shared by the PostgreSQL repositories
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
