package session

import (
	"strings"
	"testing"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{
			name:   "short prompt unchanged",
			prompt: "Hello",
			want:   "Hello",
		},
		{
			name:   "trims surrounding whitespace",
			prompt: "  Hello there  ",
			want:   "Hello there",
		},
		{
			name:   "truncates to 30 characters",
			prompt: strings.Repeat("a", 50),
			want:   strings.Repeat("a", 30),
		},
		{
			name:   "exactly 30 characters kept",
			prompt: strings.Repeat("b", 30),
			want:   strings.Repeat("b", 30),
		},
		{
			name:   "counts grapheme clusters not bytes",
			prompt: strings.Repeat("é", 40),
			want:   strings.Repeat("é", 30),
		},
		{
			name:   "does not split emoji",
			prompt: strings.Repeat("👍🏽", 40),
			want:   strings.Repeat("👍🏽", 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.prompt); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}
