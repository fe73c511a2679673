package dto

import (
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
)

// SendMessageRequest sends a direct message
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required,uuid"`
	Content    string `json:"content" binding:"required,max=5000"`
}

// ConversationResponse is one inbox row
type ConversationResponse struct {
	Counterpart    models.UserSummary `json:"counterpart"`
	LastMessage    models.Message     `json:"lastMessage"`
	LastActivityAt time.Time          `json:"lastActivityAt"`
	UnreadCount    int                `json:"unreadCount"`
}

// MarkReadResponse reports how many messages advanced to read
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// StreamEvent is a frame pushed over the message stream
type StreamEvent struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message,omitempty"`
}

// Stream event types
const (
	StreamEventMessage = "message"
	StreamEventReplay  = "replay_complete"
)
