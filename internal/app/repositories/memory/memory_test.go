package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func addUser(t *testing.T, repos *repositories.Repositories, role models.Role, p models.Profile) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	id := uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now
	err := repos.Users.CreateWithProfile(context.Background(), &models.User{
		ID:        id,
		Email:     id.String() + "@example.com",
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, &p)
	require.NoError(t, err)
	return id
}

func TestCreateWithProfileRejectsDuplicateEmail(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "a@example.com", Role: models.RoleStudent}

	require.NoError(t, repos.Users.CreateWithProfile(ctx, user, &models.Profile{FirstName: "A"}))

	dup := &models.User{ID: uuid.New(), Email: "a@example.com", Role: models.RoleStudent}
	assert.ErrorIs(t, repos.Users.CreateWithProfile(ctx, dup, &models.Profile{}), apperrors.ErrEmailAlreadyExists)

	profile, err := repos.Profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, profile.Role)
	assert.Equal(t, []string{}, profile.Skills)
}

func TestSearchAlumniFiltersAndSorts(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	a := addUser(t, repos, models.RoleAlumni, models.Profile{FirstName: "Ada", CurrentCompany: "Acme Corp", City: "Berlin", Skills: []string{"Golang"}, GraduationYear: intPtr(2012)})
	b := addUser(t, repos, models.RoleAlumni, models.Profile{FirstName: "Bo", CurrentCompany: "ACME", Country: "Germany", Skills: []string{"SQL"}, GraduationYear: intPtr(2018)})
	c := addUser(t, repos, models.RoleAlumni, models.Profile{FirstName: "Cy", CurrentCompany: "acme labs"})
	addUser(t, repos, models.RoleStudent, models.Profile{FirstName: "Stu", CurrentCompany: "Acme"})
	inactive := addUser(t, repos, models.RoleAlumni, models.Profile{FirstName: "Gone", CurrentCompany: "Acme"})
	require.NoError(t, repos.Users.SetActive(ctx, inactive, false))

	results, total, err := repos.Profiles.SearchAlumni(ctx, models.AlumniFilter{
		Company:    "acme",
		SortBy:     models.SortGraduationYear,
		Descending: true,
	}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, results, 3)
	assert.Equal(t, []uuid.UUID{b, a, c}, []uuid.UUID{results[0].UserID, results[1].UserID, results[2].UserID})

	results, total, err = repos.Profiles.SearchAlumni(ctx, models.AlumniFilter{Skills: []string{"go", "rust"}}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, a, results[0].UserID)

	results, _, err = repos.Profiles.SearchAlumni(ctx, models.AlumniFilter{Location: "germ"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, b, results[0].UserID)

	results, total, err = repos.Profiles.SearchAlumni(ctx, models.AlumniFilter{}, 2, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, results, 1)
}

func TestConnectionActivePairUniqueness(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	a := addUser(t, repos, models.RoleStudent, models.Profile{})
	b := addUser(t, repos, models.RoleAlumni, models.Profile{})

	now := time.Now().UTC()
	first := &models.Connection{ID: uuid.New(), RequesterID: a, ReceiverID: b, Status: models.ConnectionPending, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Connections.Create(ctx, first))

	reverse := &models.Connection{ID: uuid.New(), RequesterID: b, ReceiverID: a, Status: models.ConnectionPending, CreatedAt: now, UpdatedAt: now}
	assert.ErrorIs(t, repos.Connections.Create(ctx, reverse), apperrors.ErrConnectionExists)

	_, err := repos.Connections.TransitionStatus(ctx, first.ID, []models.ConnectionStatus{models.ConnectionPending}, models.ConnectionRejected)
	require.NoError(t, err)

	_, err = repos.Connections.TransitionStatus(ctx, first.ID, []models.ConnectionStatus{models.ConnectionPending}, models.ConnectionAccepted)
	assert.ErrorIs(t, err, apperrors.ErrConnectionStatusChanged)

	require.NoError(t, repos.Connections.Create(ctx, reverse))

	active, err := repos.Connections.FindActiveBetween(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, reverse.ID, active.ID)

	incoming, total, err := repos.Connections.ListForUser(ctx, a, models.ConnectionPending, models.DirectionIncoming, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, reverse.ID, incoming[0].ID)
}

func TestMessageStatusOnlyMovesForward(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	a := addUser(t, repos, models.RoleStudent, models.Profile{})
	b := addUser(t, repos, models.RoleAlumni, models.Profile{})

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, repos.Messages.Create(ctx, &models.Message{
			ID: uuid.New(), SenderID: a, ReceiverID: b, Content: "hi",
			Status: models.MessageSent, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	n, err := repos.Messages.AdvanceStatus(ctx, b, a, models.MessageRead)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = repos.Messages.AdvanceStatus(ctx, b, a, models.MessageDelivered)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = repos.Messages.AdvanceStatus(ctx, b, a, models.MessageSent)
	assert.ErrorIs(t, err, apperrors.ErrMessageStatusInvalid)

	unread, err := repos.Messages.CountUnread(ctx, b)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestListConversations(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	me := addUser(t, repos, models.RoleStudent, models.Profile{})
	x := addUser(t, repos, models.RoleAlumni, models.Profile{})
	y := addUser(t, repos, models.RoleAlumni, models.Profile{})

	base := time.Now().UTC()
	send := func(from, to uuid.UUID, at time.Duration) {
		require.NoError(t, repos.Messages.Create(ctx, &models.Message{
			ID: uuid.New(), SenderID: from, ReceiverID: to, Content: "m",
			Status: models.MessageSent, CreatedAt: base.Add(at),
		}))
	}
	send(x, me, 1*time.Second)
	send(x, me, 2*time.Second)
	send(me, y, 3*time.Second)

	convs, total, err := repos.Messages.ListConversations(ctx, me, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, convs, 2)
	assert.Equal(t, y, convs[0].CounterpartID)
	assert.Equal(t, 0, convs[0].UnreadCount)
	assert.Equal(t, x, convs[1].CounterpartID)
	assert.Equal(t, 2, convs[1].UnreadCount)

	msgs, total, err := repos.Messages.ListConversation(ctx, me, x, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.True(t, msgs[0].CreatedAt.Before(msgs[1].CreatedAt))
}

func TestEventRegistrationCapacity(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	event := &models.Event{ID: uuid.New(), Title: "Meetup", Capacity: intPtr(1), StartsAt: time.Now(), EndsAt: time.Now().Add(time.Hour)}
	require.NoError(t, repos.Events.Create(ctx, event))

	u1, u2 := uuid.New(), uuid.New()
	require.NoError(t, repos.Events.Register(ctx, event.ID, u1))
	assert.ErrorIs(t, repos.Events.Register(ctx, event.ID, u1), apperrors.ErrAlreadyRegistered)
	assert.ErrorIs(t, repos.Events.Register(ctx, event.ID, u2), apperrors.ErrEventFull)
	assert.ErrorIs(t, repos.Events.Register(ctx, uuid.New(), u2), apperrors.ErrEventNotFound)

	got, err := repos.Events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RegisteredCount)

	registered, err := repos.Events.RegisteredAmong(ctx, u1, []uuid.UUID{event.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{event.ID: true}, registered)

	require.NoError(t, repos.Events.Unregister(ctx, event.ID, u1))
	assert.ErrorIs(t, repos.Events.Unregister(ctx, event.ID, u1), apperrors.ErrNotRegistered)
	require.NoError(t, repos.Events.Register(ctx, event.ID, u2))
}

func TestJobApplicationsAreUnique(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	job := &models.Job{ID: uuid.New(), Title: "Backend Engineer", JobType: models.JobFullTime, Status: models.JobOpen, CreatedAt: time.Now()}
	require.NoError(t, repos.Jobs.Create(ctx, job))

	applicant := uuid.New()
	app := &models.JobApplication{ID: uuid.New(), JobID: job.ID, ApplicantID: applicant, CreatedAt: time.Now()}
	require.NoError(t, repos.Jobs.CreateApplication(ctx, app))

	again := &models.JobApplication{ID: uuid.New(), JobID: job.ID, ApplicantID: applicant, CreatedAt: time.Now()}
	assert.ErrorIs(t, repos.Jobs.CreateApplication(ctx, again), apperrors.ErrAlreadyApplied)

	stats, err := repos.Jobs.Statistics(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Total)
	assert.EqualValues(t, 1, stats.TotalApplications)
	assert.EqualValues(t, 1, stats.ByType[models.JobFullTime])

	jobs, total, err := repos.Jobs.List(ctx, models.JobFilter{Search: "backend"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, job.ID, jobs[0].ID)
}

func TestDonationSummary(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	donor := uuid.New()

	for _, d := range []*models.Donation{
		{ID: uuid.New(), DonorID: donor, Amount: 1000, Currency: "USD"},
		{ID: uuid.New(), DonorID: donor, Amount: 500, Currency: "USD"},
		{ID: uuid.New(), DonorID: uuid.New(), Amount: 700, Currency: "EUR"},
	} {
		require.NoError(t, repos.Donations.Create(ctx, d))
	}

	summary, err := repos.Donations.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"USD": 1500, "EUR": 700}, summary.TotalsByCurrency)
	assert.EqualValues(t, 3, summary.DonationCount)
	assert.EqualValues(t, 2, summary.DonorCount)

	mine, total, err := repos.Donations.List(ctx, &donor, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, mine, 2)
}
