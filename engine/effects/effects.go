// Package effects applies resolved outcomes to the session state. Every
// resource change goes through the state modifier operations and is
// reported as an event.
package effects

import (
	"fmt"

	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/types"
)

// Rest amounts.
const (
	RestEnergy = 15
	RestHealth = 5
)

// ApplyScene applies a scene outcome to the player. It returns events
// emitted, output text and every resource change made.
func ApplyScene(s *types.State, out types.SceneOutcome) ([]types.Event, []string, []types.ResourceChange) {
	var events []types.Event
	var output []string
	var changes []types.ResourceChange

	record := func(c types.ResourceChange) {
		if c.Applied == 0 {
			return
		}
		changes = append(changes, c)
		events = append(events, changeEvent(c))
	}

	if out.Text != "" {
		output = append(output, out.Text)
	}

	reason := "scene:" + out.SceneID
	record(state.ModifyPlayerEnergy(&s.Player.Vitals, -out.EnergyChanges.EnergyCost, reason))
	record(state.ModifyLightPoints(&s.Player.Vitals, out.ResourceChanges.LPChange, reason))
	record(state.ModifyShadowPoints(&s.Player.Vitals, out.ResourceChanges.SPChange, reason))
	record(state.ModifyPlayerEnergy(&s.Player.Vitals, out.EnergyChanges.EnergyReward, reason))

	if out.ExperienceChanges.XPGained != 0 {
		evs, lines, c := gainXP(s, out.ExperienceChanges.XPGained, out.ExperienceChanges.Reason)
		record(c)
		events = append(events, evs...)
		output = append(output, lines...)
	}

	if out.TrustModifiers.Change != 0 {
		s.Trust += out.TrustModifiers.Change
		events = append(events, types.Event{
			Type: "trust_changed",
			Data: map[string]any{"change": out.TrustModifiers.Change, "trust": s.Trust},
		})
	}

	s.Flags["seen:"+out.SceneID] = true
	if out.Success {
		s.Flags["done:"+out.SceneID] = true
	}
	events = append(events, types.Event{
		Type: "scene_resolved",
		Data: map[string]any{
			"scene":     out.SceneID,
			"success":   out.Success,
			"roll":      out.Roll,
			"triggered": out.TriggeredCombat,
		},
	})

	return events, output, changes
}

// ApplyCombat writes an ended encounter back to the session: the
// encounter's final vitals, then the victory reward or the regroup after
// a loss.
func ApplyCombat(s *types.State, final types.Vitals, sum types.CombatSummary) ([]types.Event, []string) {
	var events []types.Event
	var output []string
	reason := "combat:" + sum.EnemyID

	p := &s.Player.Vitals
	for _, c := range []types.ResourceChange{
		state.ModifyLightPoints(p, final.LightPoints-p.LightPoints, reason),
		state.ModifyShadowPoints(p, final.ShadowPoints-p.ShadowPoints, reason),
		state.ModifyHealth(p, final.Health-p.Health, reason),
		state.ModifyPlayerEnergy(p, final.Energy-p.Energy, reason),
	} {
		if c.Applied != 0 {
			events = append(events, changeEvent(c))
		}
	}

	if sum.Victory {
		output = append(output, fmt.Sprintf("%s dissolves into light.", sum.EnemyName))
		if sum.Insight != "" {
			output = append(output, "Insight: "+sum.Insight)
		}
		if c := state.ModifyLightPoints(p, sum.Reward.LP, reason); c.Applied != 0 {
			events = append(events, changeEvent(c))
			output = append(output, fmt.Sprintf("You gain %d light.", c.Applied))
		}
		if sum.Reward.XP != 0 {
			evs, lines, c := gainXP(s, sum.Reward.XP, reason)
			events = append(events, changeEvent(c))
			events = append(events, evs...)
			output = append(output, lines...)
		}
		s.Flags["defeated:"+sum.EnemyID] = true
		events = append(events, types.Event{
			Type: "combat_won",
			Data: map[string]any{"enemy": sum.EnemyID, "turns": sum.TurnsTaken},
		})
		return events, output
	}

	if sum.Reason == types.EndSurrender {
		output = append(output, fmt.Sprintf("You step away from %s. It will wait.", sum.EnemyName))
	} else {
		output = append(output, fmt.Sprintf("%s overwhelms you.", sum.EnemyName))
	}
	if half := p.MaxHealth / 2; p.Health < half {
		c := state.ModifyHealth(p, half-p.Health, "regroup")
		events = append(events, changeEvent(c))
		output = append(output, fmt.Sprintf("You regroup and recover to %d health.", p.Health))
	}
	events = append(events, types.Event{
		Type: "combat_lost",
		Data: map[string]any{"enemy": sum.EnemyID, "reason": string(sum.Reason)},
	})
	return events, output
}

// Rest restores energy and a little health.
func Rest(s *types.State) ([]types.Event, []string) {
	var events []types.Event
	e := state.ModifyPlayerEnergy(&s.Player.Vitals, RestEnergy, "rest")
	h := state.ModifyHealth(&s.Player.Vitals, RestHealth, "rest")
	for _, c := range []types.ResourceChange{e, h} {
		if c.Applied != 0 {
			events = append(events, changeEvent(c))
		}
	}
	if e.Applied == 0 && h.Applied == 0 {
		return events, []string{"You rest, though you were already at ease."}
	}
	return events, []string{fmt.Sprintf("You rest. Energy +%d, health +%d.", e.Applied, h.Applied)}
}

func gainXP(s *types.State, amount int, reason string) ([]types.Event, []string, types.ResourceChange) {
	c, gained := state.ModifyExperiencePoints(&s.Player, amount, reason)
	if gained == 0 {
		return nil, nil, c
	}
	ev := types.Event{
		Type: "level_up",
		Data: map[string]any{"level": s.Player.Level, "gained": gained},
	}
	line := fmt.Sprintf("You reach level %d.", s.Player.Level)
	return []types.Event{ev}, []string{line}, c
}

func changeEvent(c types.ResourceChange) types.Event {
	return types.Event{
		Type: "resource_changed",
		Data: map[string]any{
			"kind":   string(c.Kind),
			"amount": c.Applied,
			"value":  c.After,
			"reason": c.Reason,
		},
	}
}
