package models

import (
	"time"

	"github.com/google/uuid"
)

// Connection is a directed request between two users. At most one active
// (pending, accepted or blocked) connection exists per unordered pair.
type Connection struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	RequesterID uuid.UUID        `json:"requesterId" db:"requester_id"`
	ReceiverID  uuid.UUID        `json:"receiverId" db:"receiver_id"`
	Status      ConnectionStatus `json:"status" db:"status"`
	Message     *string          `json:"message,omitempty" db:"message"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
}

// Involves reports whether userID is one of the two parties
func (c *Connection) Involves(userID uuid.UUID) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// Counterpart returns the other party from userID's point of view
func (c *Connection) Counterpart(userID uuid.UUID) uuid.UUID {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// ConnectionDirection selects which side of a connection the caller is on
type ConnectionDirection string

const (
	DirectionAny      ConnectionDirection = "any"
	DirectionIncoming ConnectionDirection = "incoming"
	DirectionOutgoing ConnectionDirection = "outgoing"
)
