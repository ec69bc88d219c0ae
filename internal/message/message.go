// Package message provides message management with persistence.
package message

import (
	"time"
)

// Role represents the role of a message sender. The enumeration is closed:
// a message is authored either by the user or by the model.
type Role string

// Role constants.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message represents one committed conversation message. Messages are
// immutable once persisted: they are only appended to a session's log and
// removed via session or project cascade.
type Message struct {
	// ID is the autoincrement row id; ascending ID is conversation order.
	ID        int64
	SessionID string
	Role      Role
	Content   string
	CreatedAt time.Time
}
