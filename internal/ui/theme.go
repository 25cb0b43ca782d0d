package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pet-progression/internal/domain"
)

// Pet progression CLI theme.

const (
	IconPaw     = "🐾"
	IconSparkle = "✨"
	IconStar    = "⭐"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconCompass = "🧭"
	IconScroll  = "📜"
	IconCoin    = "💫"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconGift    = "🎁"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
	cPurple  = lipgloss.Color("135")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Outcome renders a rule result as a good or bad line.
func Outcome(res domain.Result) string {
	if res.Success {
		return Good.Render(IconDone + " " + res.Message)
	}
	return Warn.Render(IconWarn + " " + res.Message)
}

func MoodText(m domain.MoodState) string {
	switch m {
	case domain.MoodHappy:
		return Good.Render("😄 happy")
	case domain.MoodRelaxed:
		return Good.Render("😌 relaxed")
	case domain.MoodBored:
		return Warn.Render("😐 bored")
	case domain.MoodSad:
		return Warn.Render("😢 sad")
	case domain.MoodAngry:
		return Bad.Render("😠 angry")
	default:
		return Muted.Render(string(m))
	}
}

func RarityText(r domain.Rarity) string {
	s := string(r)
	switch r {
	case domain.RarityUncommon:
		return Good.Render(s)
	case domain.RarityRare:
		return H2.Render(s)
	case domain.RarityEpic:
		return lipgloss.NewStyle().Bold(true).Foreground(cPurple).Render(s)
	case domain.RarityLegendary:
		return Gold.Render(s)
	default:
		return Muted.Render(s)
	}
}

// Bar draws a fixed-width progress bar for value out of max.
func Bar(value, max, width int) string {
	if width <= 0 {
		width = 10
	}
	filled := 0
	if max > 0 {
		filled = min(value, max) * width / max
	}
	if filled < 0 {
		filled = 0
	}
	return Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}
