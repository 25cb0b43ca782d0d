package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pet-progression/internal/domain"
)

func TestBar(t *testing.T) {
	assert.Equal(t, "████░░░░░░", plain(Bar(2, 5, 10)))
	assert.Equal(t, "██████████", plain(Bar(9, 5, 10)))
	assert.Equal(t, "░░░░", plain(Bar(0, 0, 4)))
}

func TestOutcome(t *testing.T) {
	assert.Contains(t, Outcome(domain.Ok("fed")), "fed")
	assert.Contains(t, Outcome(domain.Fail("full")), IconWarn)
}

// plain drops ANSI escape sequences.
func plain(s string) string {
	out := make([]rune, 0, len(s))
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && r == 'm':
			esc = false
		case !esc:
			out = append(out, r)
		}
	}
	return string(out)
}
