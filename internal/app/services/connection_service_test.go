package services

import (
	"testing"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectRequest(to uuid.UUID, message string) *dto.SendConnectionRequest {
	req := &dto.SendConnectionRequest{ReceiverID: to.String()}
	if message != "" {
		req.Message = &message
	}
	return req
}

func TestSendConnectionRequest(t *testing.T) {
	f := newFixture(t)
	svc := NewConnectionService(f.repos, f.email, f.publisher, f.logger)
	student := f.user(t, models.RoleStudent, "Sam")
	alum := f.user(t, models.RoleAlumni, "Alex")

	conn, err := svc.SendRequest(f.ctx, student, connectRequest(alum.UserID, "  Hello there  "))
	require.NoError(t, err)

	assert.Equal(t, models.ConnectionPending, conn.Status)
	assert.Equal(t, student.UserID, conn.RequesterID)
	require.NotNil(t, conn.Message)
	assert.Equal(t, "Hello there", *conn.Message)
	require.NotNil(t, conn.Counterpart)
	assert.Equal(t, "Alex", conn.Counterpart.FirstName)
	assert.Equal(t, []string{events.ConnectionRequested}, f.publisher.Types())

	_, err = svc.SendRequest(f.ctx, student, connectRequest(alum.UserID, ""))
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists)

	// The reverse direction is the same unordered pair.
	_, err = svc.SendRequest(f.ctx, alum, connectRequest(student.UserID, ""))
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists)
}

func TestSendConnectionRequestValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewConnectionService(f.repos, f.email, f.publisher, f.logger)
	student := f.user(t, models.RoleStudent, "Sam")

	_, err := svc.SendRequest(f.ctx, student, connectRequest(student.UserID, ""))
	assert.ErrorIs(t, err, apperrors.ErrConnectionSelf)

	_, err = svc.SendRequest(f.ctx, student, connectRequest(uuid.New(), ""))
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	inactive := f.user(t, models.RoleAlumni, "Gone")
	require.NoError(t, f.repos.Users.SetActive(f.ctx, inactive.UserID, false))
	_, err = svc.SendRequest(f.ctx, student, connectRequest(inactive.UserID, ""))
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestRespondToConnection(t *testing.T) {
	f := newFixture(t)
	svc := NewConnectionService(f.repos, f.email, f.publisher, f.logger)
	student := f.user(t, models.RoleStudent, "Sam")
	alum := f.user(t, models.RoleAlumni, "Alex")

	conn, err := svc.SendRequest(f.ctx, student, connectRequest(alum.UserID, ""))
	require.NoError(t, err)

	_, err = svc.Respond(f.ctx, student, conn.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrNotConnectionReceiver)

	accepted, err := svc.Respond(f.ctx, alum, conn.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, accepted.Status)
	require.NotNil(t, accepted.Counterpart)
	assert.Equal(t, student.UserID, accepted.Counterpart.ID)

	_, err = svc.Respond(f.ctx, alum, conn.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrConnectionNotPending)

	_, err = svc.Respond(f.ctx, alum, uuid.New(), true)
	assert.ErrorIs(t, err, apperrors.ErrConnectionNotFound)

	assert.Equal(t, []string{events.ConnectionRequested, events.ConnectionAccepted}, f.publisher.Types())
}

func TestRejectedPairMayRequestAgain(t *testing.T) {
	f := newFixture(t)
	svc := NewConnectionService(f.repos, f.email, f.publisher, f.logger)
	student := f.user(t, models.RoleStudent, "Sam")
	alum := f.user(t, models.RoleAlumni, "Alex")

	conn, err := svc.SendRequest(f.ctx, student, connectRequest(alum.UserID, ""))
	require.NoError(t, err)
	_, err = svc.Respond(f.ctx, alum, conn.ID, false)
	require.NoError(t, err)

	again, err := svc.SendRequest(f.ctx, student, connectRequest(alum.UserID, ""))
	require.NoError(t, err)
	assert.NotEqual(t, conn.ID, again.ID)
}

func TestRemoveAndBlockConnection(t *testing.T) {
	f := newFixture(t)
	svc := NewConnectionService(f.repos, f.email, f.publisher, f.logger)
	student := f.user(t, models.RoleStudent, "Sam")
	alum := f.user(t, models.RoleAlumni, "Alex")
	outsider := f.user(t, models.RoleStudent, "Olly")

	conn, err := svc.SendRequest(f.ctx, student, connectRequest(alum.UserID, ""))
	require.NoError(t, err)

	_, err = svc.Remove(f.ctx, student, conn.ID)
	assert.ErrorIs(t, err, apperrors.ErrConnectionNotAccepted)

	_, err = svc.Respond(f.ctx, alum, conn.ID, true)
	require.NoError(t, err)

	_, err = svc.Remove(f.ctx, outsider, conn.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotConnectionMember)

	removed, err := svc.Remove(f.ctx, student, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionRejected, removed.Status)

	blocked, err := svc.Block(f.ctx, alum, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionBlocked, blocked.Status)

	// Blocking twice is a no-op.
	blocked, err = svc.Block(f.ctx, alum, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionBlocked, blocked.Status)

	_, err = svc.SendRequest(f.ctx, student, connectRequest(alum.UserID, ""))
	assert.ErrorIs(t, err, apperrors.ErrConnectionExists)
}

func TestListConnections(t *testing.T) {
	f := newFixture(t)
	svc := NewConnectionService(f.repos, f.email, f.publisher, f.logger)
	me := f.user(t, models.RoleAlumni, "Me")
	a := f.user(t, models.RoleStudent, "A")
	b := f.user(t, models.RoleStudent, "B")
	c := f.user(t, models.RoleStudent, "C")

	toA, err := svc.SendRequest(f.ctx, me, connectRequest(a.UserID, ""))
	require.NoError(t, err)
	_, err = svc.Respond(f.ctx, a, toA.ID, true)
	require.NoError(t, err)

	_, err = svc.SendRequest(f.ctx, b, connectRequest(me.UserID, ""))
	require.NoError(t, err)
	_, err = svc.SendRequest(f.ctx, me, connectRequest(c.UserID, ""))
	require.NoError(t, err)

	connections, err := svc.ListConnections(f.ctx, me, firstPage())
	require.NoError(t, err)
	require.Len(t, connections.Items, 1)
	assert.Equal(t, a.UserID, connections.Items[0].Counterpart.ID)
	assert.Equal(t, int64(1), connections.Pagination.Total)
	assert.Equal(t, 1, connections.Pagination.Pages)

	pending, err := svc.ListPending(f.ctx, me, firstPage())
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, b.UserID, pending.Items[0].Counterpart.ID)

	sent, err := svc.ListSent(f.ctx, me, firstPage())
	require.NoError(t, err)
	require.Len(t, sent.Items, 1)
	assert.Equal(t, c.UserID, sent.Items[0].Counterpart.ID)
}

func TestListConnectionsPastLastPage(t *testing.T) {
	f := newFixture(t)
	svc := NewConnectionService(f.repos, f.email, f.publisher, f.logger)
	me := f.user(t, models.RoleAlumni, "Me")

	for i := 0; i < 20; i++ {
		other := f.user(t, models.RoleStudent, "Peer")
		conn, err := svc.SendRequest(f.ctx, other, connectRequest(me.UserID, ""))
		require.NoError(t, err)
		_, err = svc.Respond(f.ctx, me, conn.ID, true)
		require.NoError(t, err)
	}

	first, err := svc.ListConnections(f.ctx, me, helpers.NewPageRequest(1, 20))
	require.NoError(t, err)
	assert.Len(t, first.Items, 20)

	second, err := svc.ListConnections(f.ctx, me, helpers.NewPageRequest(2, 20))
	require.NoError(t, err)
	assert.Empty(t, second.Items)
	assert.Equal(t, int64(20), second.Pagination.Total)
	assert.Equal(t, 1, second.Pagination.Pages)
}

func TestConnectionStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewConnectionService(f.repos, f.email, f.publisher, f.logger)
	student := f.user(t, models.RoleStudent, "Sam")
	alum := f.user(t, models.RoleAlumni, "Alex")

	status, err := svc.Status(f.ctx, student, alum.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionNone, status.Status)
	assert.Nil(t, status.ConnectionID)

	conn, err := svc.SendRequest(f.ctx, student, connectRequest(alum.UserID, ""))
	require.NoError(t, err)

	status, err = svc.Status(f.ctx, student, alum.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, status.Status)
	assert.Equal(t, "outgoing", status.Direction)
	require.NotNil(t, status.ConnectionID)
	assert.Equal(t, conn.ID, *status.ConnectionID)

	status, err = svc.Status(f.ctx, alum, student.UserID)
	require.NoError(t, err)
	assert.Equal(t, "incoming", status.Direction)
}
