package models

// Role defines the user role
type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAlumni, RoleAdmin:
		return true
	}
	return false
}

// SelfRegistrable reports whether users may register themselves with this role
func (r Role) SelfRegistrable() bool {
	return r == RoleStudent || r == RoleAlumni
}

// ConnectionStatus is the lifecycle state of a connection
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

// Active reports whether the status occupies the pair's single active slot
func (s ConnectionStatus) Active() bool {
	return s == ConnectionPending || s == ConnectionAccepted || s == ConnectionBlocked
}

// ConnectionNone is reported by status lookups when no connection row exists
const ConnectionNone ConnectionStatus = "none"

// MessageStatus is the delivery state of a message. Transitions only move forward.
type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

// Rank orders message statuses so forward-only transitions can be checked
func (s MessageStatus) Rank() int {
	switch s {
	case MessageSent:
		return 1
	case MessageDelivered:
		return 2
	case MessageRead:
		return 3
	}
	return 0
}

// JobType is the employment type of a job posting
type JobType string

const (
	JobFullTime   JobType = "full_time"
	JobPartTime   JobType = "part_time"
	JobInternship JobType = "internship"
	JobContract   JobType = "contract"
)

// JobStatus is the open/closed state of a job posting
type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

// StartupStatus is the review state of a startup listing
type StartupStatus string

const (
	StartupPending  StartupStatus = "pending"
	StartupApproved StartupStatus = "approved"
	StartupRejected StartupStatus = "rejected"
)
