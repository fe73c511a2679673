// Package memory implements the repository interfaces on in-process maps.
// It backs the "memory" database driver and the service tests.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/google/uuid"
)

// store is the state shared by every memory repository
type store struct {
	mu sync.RWMutex

	users         map[uuid.UUID]*models.User
	emails        map[string]uuid.UUID
	profiles      map[uuid.UUID]*models.Profile
	tokens        map[string]*models.RefreshToken
	connections   map[uuid.UUID]*models.Connection
	messages      []*models.Message
	jobs          map[uuid.UUID]*models.Job
	applications  map[uuid.UUID]*models.JobApplication
	startups      map[uuid.UUID]*models.Startup
	donations     []*models.Donation
	events        map[uuid.UUID]*models.Event
	registrations map[uuid.UUID]map[uuid.UUID]time.Time
}

func newStore() *store {
	return &store{
		users:         make(map[uuid.UUID]*models.User),
		emails:        make(map[string]uuid.UUID),
		profiles:      make(map[uuid.UUID]*models.Profile),
		tokens:        make(map[string]*models.RefreshToken),
		connections:   make(map[uuid.UUID]*models.Connection),
		jobs:          make(map[uuid.UUID]*models.Job),
		applications:  make(map[uuid.UUID]*models.JobApplication),
		startups:      make(map[uuid.UUID]*models.Startup),
		events:        make(map[uuid.UUID]*models.Event),
		registrations: make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

// NewRepositories builds a full repository set over one shared in-memory store
func NewRepositories() *repositories.Repositories {
	s := newStore()
	return &repositories.Repositories{
		Users:       &UserRepository{s: s},
		Tokens:      &TokenRepository{s: s},
		Profiles:    &ProfileRepository{s: s},
		Connections: &ConnectionRepository{s: s},
		Messages:    &MessageRepository{s: s},
		Jobs:        &JobRepository{s: s},
		Startups:    &StartupRepository{s: s},
		Donations:   &DonationRepository{s: s},
		Events:      &EventRepository{s: s},
	}
}

// containsFold reports a case-insensitive substring match
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// page slices items to the [offset, offset+limit) window
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) || limit <= 0 {
		end = len(items)
	}
	return items[offset:end]
}

// newestFirst orders by created time descending, then id descending
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) uuid.UUID) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]).String() > id(items[j]).String()
	})
}

func cloneOf[T any](v *T) *T {
	c := *v
	return &c
}
