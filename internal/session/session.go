// Package session provides session management with persistence.
package session

import (
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

// DefaultTitle is the placeholder title a session carries until its first
// turn derives a real one from the prompt.
const DefaultTitle = "New Chat"

// titleMaxGraphemes bounds a derived title to the first 30 user-perceived
// characters of the prompt.
const titleMaxGraphemes = 30

// Session represents one conversation thread, optionally grouped under a
// project.
type Session struct {
	ID string
	// ProjectID is empty for standalone sessions.
	ProjectID string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeriveTitle builds a session title from the first prompt, truncated to 30
// grapheme clusters so multi-byte characters are never split.
func DeriveTitle(prompt string) string {
	prompt = strings.TrimSpace(prompt)

	var b strings.Builder
	gr := uniseg.NewGraphemes(prompt)
	for n := 0; gr.Next() && n < titleMaxGraphemes; n++ {
		b.WriteString(gr.Str())
	}
	return b.String()
}
