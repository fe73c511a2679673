package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRole(t *testing.T) {
	assert.True(t, RoleAlumni.Valid())
	assert.False(t, Role("instructor").Valid())
	assert.True(t, RoleStudent.SelfRegistrable())
	assert.False(t, RoleAdmin.SelfRegistrable())
}

func TestConnectionStatusActive(t *testing.T) {
	assert.True(t, ConnectionPending.Active())
	assert.True(t, ConnectionAccepted.Active())
	assert.True(t, ConnectionBlocked.Active())
	assert.False(t, ConnectionRejected.Active())
}

func TestMessageStatusRankIsMonotonic(t *testing.T) {
	assert.Less(t, MessageSent.Rank(), MessageDelivered.Rank())
	assert.Less(t, MessageDelivered.Rank(), MessageRead.Rank())
	assert.Zero(t, MessageStatus("unknown").Rank())
}

func TestConnectionCounterpart(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	conn := Connection{RequesterID: a, ReceiverID: b}

	assert.Equal(t, b, conn.Counterpart(a))
	assert.Equal(t, a, conn.Counterpart(b))
	assert.True(t, conn.Involves(a))
	assert.False(t, conn.Involves(c))
}

func TestMessageBetween(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	msg := Message{SenderID: a, ReceiverID: b}

	assert.True(t, msg.Between(a, b))
	assert.True(t, msg.Between(b, a))
	assert.False(t, msg.Between(a, c))
}

func TestProfileFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&Profile{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&Profile{FirstName: "Ada"}).FullName())
	assert.Equal(t, "Lovelace", (&Profile{LastName: "Lovelace"}).FullName())
}

func TestIsAlumniSortKey(t *testing.T) {
	assert.True(t, IsAlumniSortKey("graduationYear"))
	assert.False(t, IsAlumniSortKey("password_hash"))
}
