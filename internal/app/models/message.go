package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength is the maximum content length in characters
const MaxMessageLength = 5000

// Message is a direct message between two users
type Message struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	SenderID   uuid.UUID     `json:"senderId" db:"sender_id"`
	ReceiverID uuid.UUID     `json:"receiverId" db:"receiver_id"`
	Content    string        `json:"content" db:"content"`
	Status     MessageStatus `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time     `json:"updatedAt" db:"updated_at"`
}

// Between reports whether the message belongs to the conversation of a and b
func (m *Message) Between(a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// ConversationSummary is one row of a user's inbox
type ConversationSummary struct {
	CounterpartID  uuid.UUID `json:"counterpartId"`
	LastMessage    Message   `json:"lastMessage"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	UnreadCount    int       `json:"unreadCount"`
}

// DailyCount is the number of items created on one UTC day
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}
