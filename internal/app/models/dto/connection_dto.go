package dto

import (
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/google/uuid"
)

// SendConnectionRequest asks another user to connect
type SendConnectionRequest struct {
	ReceiverID string  `json:"receiverId" binding:"required,uuid"`
	Message    *string `json:"message" binding:"omitempty,max=500"`
}

// RespondConnectionRequest accepts or rejects a pending request
type RespondConnectionRequest struct {
	Accepted *bool `json:"accepted" binding:"required"`
}

// ConnectionResponse is a connection with the counterpart's summary
type ConnectionResponse struct {
	ID          uuid.UUID               `json:"id"`
	RequesterID uuid.UUID               `json:"requesterId"`
	ReceiverID  uuid.UUID               `json:"receiverId"`
	Status      models.ConnectionStatus `json:"status"`
	Message     *string                 `json:"message,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
	Counterpart *models.UserSummary     `json:"counterpart,omitempty"`
}

// NewConnectionResponse maps a connection and optional counterpart summary
func NewConnectionResponse(c *models.Connection, counterpart *models.UserSummary) ConnectionResponse {
	return ConnectionResponse{
		ID:          c.ID,
		RequesterID: c.RequesterID,
		ReceiverID:  c.ReceiverID,
		Status:      c.Status,
		Message:     c.Message,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Counterpart: counterpart,
	}
}

// ConnectionStatusResponse describes the relationship between the caller and another user
type ConnectionStatusResponse struct {
	Status       models.ConnectionStatus `json:"status"`
	ConnectionID *uuid.UUID              `json:"connectionId,omitempty"`
	// Direction is "outgoing" when the caller sent the request, "incoming" otherwise
	Direction string `json:"direction,omitempty"`
}
