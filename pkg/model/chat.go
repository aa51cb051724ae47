package model

import "time"

// Role tags the origin of a stored memory record or conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleDocument  Role = "document"
)

// Turn is a single literal conversation turn, used for short-term context.
type Turn struct {
	Role      Role
	Text      string
	CreatedAt time.Time
}
