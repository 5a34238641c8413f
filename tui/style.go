package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleCombatBar = lipgloss.NewStyle().
			Background(lipgloss.Color("53")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleChoice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleLocked = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	styleRoll = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	styleLight = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleShadow = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))

	styleHint = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindChoice
	kindLocked
	kindRoll
	kindLight
	kindShadow
	kindHint
	kindSystem
	kindError
	kindTrace
	kindInput
)

var (
	lightPrefixes = []string{"Your light", "You gain", "You reach level", "You recover", "You rest", "Insight:", "You steady", "You stand fortified", "You embrace"}
	errorPrefixes = []string{"You cannot", "I don't understand", "There is no", "You are too tired", "That path is closed", "The shadow is still moving", "Choose which"}
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case isChoiceLine(line) && strings.HasSuffix(line, "[locked]"):
		return kindLocked
	case isChoiceLine(line):
		return kindChoice
	case strings.HasPrefix(line, "You roll"):
		return kindRoll
	case strings.HasPrefix(line, "("):
		return kindHint
	case hasAnyPrefix(line, errorPrefixes):
		return kindError
	case hasAnyPrefix(line, lightPrefixes), strings.Contains(line, "dissolves into light"):
		return kindLight
	case strings.Contains(line, "damage)"),
		strings.Contains(line, "lashes out"),
		strings.Contains(line, "manifests"),
		strings.Contains(line, "overwhelms you"),
		strings.Contains(line, "hesitates"):
		return kindShadow
	default:
		return kindNarrative
	}
}

// isChoiceLine matches the "  1. text" lines of a scene menu.
func isChoiceLine(line string) bool {
	t := strings.TrimLeft(line, " ")
	if len(t) == len(line) || t == "" {
		return false
	}
	i := 0
	for i < len(t) && t[i] >= '0' && t[i] <= '9' {
		i++
	}
	return i > 0 && i < len(t) && t[i] == '.'
}

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// styleFor returns the style for a line kind.
func styleFor(kind lineKind) lipgloss.Style {
	switch kind {
	case kindChoice:
		return styleChoice
	case kindLocked:
		return styleLocked
	case kindRoll:
		return styleRoll
	case kindLight:
		return styleLight
	case kindShadow:
		return styleShadow
	case kindHint:
		return styleHint
	case kindSystem:
		return styleSystem
	case kindError:
		return styleError
	case kindTrace:
		return styleTrace
	case kindInput:
		return stylePlayerInput
	default:
		return styleNarrative
	}
}
