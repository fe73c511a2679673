package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	appAuth "github.com/alnet/mentorbridge/internal/app/auth"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []*models.Message
}

func (n *recordingNotifier) Broadcast(m *models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, m)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func send(to uuid.UUID, content string) *dto.SendMessageRequest {
	return &dto.SendMessageRequest{ReceiverID: to.String(), Content: content}
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	svc := NewMessageService(f.repos, notifier, f.publisher, MessageOptions{}, f.logger)
	a := f.user(t, models.RoleStudent, "A")
	b := f.user(t, models.RoleAlumni, "B")

	msg, err := svc.Send(f.ctx, a, send(b.UserID, "Hi!"))
	require.NoError(t, err)
	assert.Equal(t, models.MessageSent, msg.Status)
	assert.Equal(t, "Hi!", msg.Content)
	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, []string{events.MessageSent}, f.publisher.Types())
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.repos, nil, f.publisher, MessageOptions{}, f.logger)
	a := f.user(t, models.RoleStudent, "A")
	b := f.user(t, models.RoleAlumni, "B")

	tests := []struct {
		name string
		req  *dto.SendMessageRequest
		want error
	}{
		{"whitespace", send(b.UserID, "   \n\t"), apperrors.ErrMessageEmpty},
		{"too long", send(b.UserID, strings.Repeat("é", models.MaxMessageLength+1)), apperrors.ErrMessageEmpty},
		{"self", send(a.UserID, "hello"), apperrors.ErrMessageSelf},
		{"unknown receiver", send(uuid.New(), "hello"), apperrors.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(f.ctx, a, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := svc.Send(f.ctx, a, send(b.UserID, strings.Repeat("é", models.MaxMessageLength)))
	assert.NoError(t, err)
}

func TestSendMessageBlockedAndRequireConnection(t *testing.T) {
	f := newFixture(t)
	connections := NewConnectionService(f.repos, f.email, f.publisher, f.logger)
	a := f.user(t, models.RoleStudent, "A")
	b := f.user(t, models.RoleAlumni, "B")

	strict := NewMessageService(f.repos, nil, f.publisher, MessageOptions{RequireConnection: true}, f.logger)
	_, err := strict.Send(f.ctx, a, send(b.UserID, "hello"))
	assert.ErrorIs(t, err, apperrors.ErrConnectionRequired)

	conn, err := connections.SendRequest(f.ctx, a, connectRequest(b.UserID, ""))
	require.NoError(t, err)
	_, err = connections.Respond(f.ctx, b, conn.ID, true)
	require.NoError(t, err)

	_, err = strict.Send(f.ctx, a, send(b.UserID, "hello"))
	require.NoError(t, err)

	_, err = connections.Block(f.ctx, b, conn.ID)
	require.NoError(t, err)

	open := NewMessageService(f.repos, nil, f.publisher, MessageOptions{}, f.logger)
	_, err = open.Send(f.ctx, a, send(b.UserID, "still there?"))
	assert.ErrorIs(t, err, apperrors.ErrMessagingBlocked)
}

func TestConversationAdvancesStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.repos, nil, f.publisher, MessageOptions{}, f.logger)
	a := f.user(t, models.RoleStudent, "A")
	b := f.user(t, models.RoleAlumni, "B")

	for _, content := range []string{"one", "two", "three"} {
		_, err := svc.Send(f.ctx, a, send(b.UserID, content))
		require.NoError(t, err)
	}
	_, err := svc.Send(f.ctx, b, send(a.UserID, "reply"))
	require.NoError(t, err)

	unread, err := svc.UnreadCount(f.ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	page, err := svc.Conversation(f.ctx, b, a.UserID, firstPage())
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	assert.Equal(t, int64(4), page.Pagination.Total)
	assert.Equal(t, "one", page.Items[0].Content)
	assert.Equal(t, "reply", page.Items[3].Content)
	for _, m := range page.Items[:3] {
		assert.Equal(t, models.MessageDelivered, m.Status)
	}
	// b's own outgoing message is untouched by b reading.
	assert.Equal(t, models.MessageSent, page.Items[3].Status)

	// Delivered messages still count as unread.
	unread, err = svc.UnreadCount(f.ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	read, err := svc.MarkRead(f.ctx, b, a.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), read.Updated)

	unread, err = svc.UnreadCount(f.ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// Reading again never moves statuses backwards.
	_, err = svc.Conversation(f.ctx, b, a.UserID, firstPage())
	require.NoError(t, err)
	read, err = svc.MarkRead(f.ctx, b, a.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), read.Updated)

	_, err = svc.Conversation(f.ctx, b, uuid.New(), firstPage())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestConversationIsTheSameFromBothSides(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.repos, nil, f.publisher, MessageOptions{}, f.logger)
	a := f.user(t, models.RoleStudent, "A")
	b := f.user(t, models.RoleAlumni, "B")

	for i, content := range []string{"1", "2", "3", "4", "5"} {
		from, to := a, b
		if i%2 == 1 {
			from, to = b, a
		}
		_, err := svc.Send(f.ctx, from, send(to.UserID, content))
		require.NoError(t, err)
	}

	ids := func(page *dto.Page[*models.Message]) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(page.Items))
		for _, m := range page.Items {
			out = append(out, m.ID)
		}
		return out
	}

	fromA, err := svc.Conversation(f.ctx, a, b.UserID, firstPage())
	require.NoError(t, err)
	fromB, err := svc.Conversation(f.ctx, b, a.UserID, firstPage())
	require.NoError(t, err)

	require.Len(t, fromA.Items, 5)
	assert.Equal(t, ids(fromA), ids(fromB))
	assert.Equal(t, fromA.Pagination.Total, fromB.Pagination.Total)
	for i, m := range fromB.Items {
		assert.Equal(t, fmt.Sprint(i+1), m.Content)
	}
}

func TestConversationsInbox(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.repos, nil, f.publisher, MessageOptions{}, f.logger)
	me := f.user(t, models.RoleAlumni, "Me")
	a := f.user(t, models.RoleStudent, "A")
	b := f.user(t, models.RoleStudent, "B")

	msgSvc := svc.(*messageServiceImpl)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(offset time.Duration) { msgSvc.now = func() time.Time { return base.Add(offset) } }

	at(0)
	_, err := svc.Send(f.ctx, a, send(me.UserID, "from a"))
	require.NoError(t, err)
	at(time.Minute)
	_, err = svc.Send(f.ctx, b, send(me.UserID, "from b"))
	require.NoError(t, err)
	at(2 * time.Minute)
	_, err = svc.Send(f.ctx, me, send(a.UserID, "back to a"))
	require.NoError(t, err)

	inbox, err := svc.Conversations(f.ctx, me, firstPage())
	require.NoError(t, err)
	require.Len(t, inbox.Items, 2)

	assert.Equal(t, a.UserID, inbox.Items[0].Counterpart.ID)
	assert.Equal(t, "A", inbox.Items[0].Counterpart.FirstName)
	assert.Equal(t, "back to a", inbox.Items[0].LastMessage.Content)
	assert.Equal(t, 1, inbox.Items[0].UnreadCount)

	assert.Equal(t, b.UserID, inbox.Items[1].Counterpart.ID)
	assert.Equal(t, 1, inbox.Items[1].UnreadCount)
}

func TestReplay(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.repos, nil, f.publisher, MessageOptions{ReplayLimit: 2}, f.logger)
	a := f.user(t, models.RoleStudent, "A")
	b := f.user(t, models.RoleAlumni, "B")
	c := f.user(t, models.RoleAlumni, "C")

	msgSvc := svc.(*messageServiceImpl)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, to := range []appAuth.Session{b, c, b, b} {
		ts := base.Add(time.Duration(i) * time.Second)
		msgSvc.now = func() time.Time { return ts }
		_, err := svc.Send(f.ctx, a, send(to.UserID, "m"))
		require.NoError(t, err)
	}

	none, err := svc.Replay(f.ctx, a, nil, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := svc.Replay(f.ctx, a, nil, base)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, base.Add(time.Second), all[0].CreatedAt)

	with := b.UserID
	scoped, err := svc.Replay(f.ctx, a, &with, base)
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	for _, m := range scoped {
		assert.Equal(t, b.UserID, m.ReceiverID)
	}
}
