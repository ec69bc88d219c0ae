// Package project provides project management with persistence.
// A project groups sessions and carries the system instructions sent to the
// provider for every turn in those sessions.
package project

import (
	"time"
)

// Project represents a named group of sessions sharing system instructions.
type Project struct {
	ID   string
	Name string
	// Instructions is the system prompt applied to the project's sessions.
	// Empty means no system directive is sent.
	Instructions string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
