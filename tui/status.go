package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sceneDisplayName derives a readable title from a scene ID.
// "misty_ridge" -> "Misty Ridge".
func sceneDisplayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width status line. On the road it shows
// the scene, level and resources; during an encounter it shows the
// shadow's health and whose turn it is.
func (m Model) renderStatusBar() string {
	if m.engine.InCombat() {
		return m.renderCombatBar()
	}

	s := m.engine.State
	p := s.Player
	left := fmt.Sprintf(" %s | Lv %d", sceneDisplayName(s.SceneID), p.Level)
	right := fmt.Sprintf("LP %d SP %d HP %d/%d EN %d/%d | T:%d ",
		p.LightPoints, p.ShadowPoints, p.Health, p.MaxHealth, p.Energy, p.MaxEnergy, s.TurnCount)
	return styleStatusBar.Width(m.width).Render(spread(left, right, m.width))
}

func (m Model) renderCombatBar() string {
	v := m.engine.Combat.View()
	if v.Enemy == nil {
		return styleCombatBar.Width(m.width).Render(" ...")
	}

	turn := "your turn"
	switch {
	case v.End.IsEnded:
		turn = string(v.End.Reason)
	case !v.IsPlayerTurn:
		turn = "shadow moves"
	}
	left := fmt.Sprintf(" %s %d/%d | Turn %d, %s", v.Enemy.Name, v.Enemy.CurrentHP, v.Enemy.MaxHP, v.Turn, turn)
	right := fmt.Sprintf("LP %d SP %d HP %d/%d ", v.Resources.LP, v.Resources.SP, v.Vitals.Health, v.Vitals.MaxHealth)
	if v.Fortified {
		right = "Fortified | " + right
	}
	return styleCombatBar.Width(m.width).Render(spread(left, right, m.width))
}

// spread pads between left and right to fill width.
func spread(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}
