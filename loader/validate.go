package loader

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nathoo/shadowcore/engine/archetype"
	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Known scene types.
var validSceneTypes = map[types.SceneType]bool{
	types.SceneCombat:      true,
	types.SceneSocial:      true,
	types.SceneSkill:       true,
	types.SceneExploration: true,
	types.SceneJournal:     true,
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"min_level":  true,
	"min_light":  true,
	"min_shadow": true,
	"min_energy": true,
	"min_trust":  true,
	"flag_set":   true,
	"not":        true,
}

// Known ability kinds.
var validAbilityKinds = map[types.AbilityKind]bool{
	types.AbilityStrike:       true,
	types.AbilityBlockHealing: true,
	types.AbilityBlockLight:   true,
	types.AbilityStun:         true,
	types.AbilityEmpower:      true,
	types.AbilitySap:          true,
	types.AbilityDrain:        true,
}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	// Game title required.
	if defs.Game.Title == "" {
		ve.errorf("Game.Title is required")
	}

	// At least one scene, and the start scene exists.
	if len(defs.Scenes) == 0 {
		ve.errorf("no Scene definitions found")
	}
	if defs.Game.Start != "" {
		if _, ok := defs.Scenes[defs.Game.Start]; !ok {
			ve.errorf("start scene %q not found in defined scenes", defs.Game.Start)
		}
	}

	shadows := knownShadows(defs)
	for _, id := range defs.SortedScenes() {
		validateScene(defs.Scenes[id], defs, shadows, ve)
	}

	for _, sh := range defs.Shadows {
		validateShadow(sh, ve)
	}

	for _, h := range defs.Handlers {
		validateConditions(h.Conditions, ve)
		if h.Say == "" {
			ve.warnf("handler for %q has nothing to say", h.EventType)
		}
	}

	for _, w := range ve.Warnings {
		slog.Warn("content warning", "detail", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateScene(sc types.SceneDef, defs *state.Defs, shadows map[string]bool, ve *ValidationError) {
	if !validSceneTypes[sc.Type] {
		ve.errorf("scene %q has unknown type %q", sc.ID, sc.Type)
	}
	if sc.DC < 0 {
		ve.errorf("scene %q has negative dc %d", sc.ID, sc.DC)
	}
	if sc.LPReward < 0 || sc.SPPenalty < 0 || sc.EnergyCost < 0 || sc.EnergyReward < 0 || sc.XPReward < 0 {
		ve.errorf("scene %q has a negative reward, penalty or cost", sc.ID)
	}
	if sc.Text == "" {
		ve.warnf("scene %q has no text", sc.ID)
	}

	switch {
	case sc.Type == types.SceneCombat && sc.ShadowType == "":
		ve.errorf("combat scene %q must name a shadow", sc.ID)
	case sc.Type == types.SceneCombat && !shadows[sc.ShadowType]:
		ve.errorf("scene %q references undefined shadow %q", sc.ID, sc.ShadowType)
	case sc.Type != types.SceneCombat && sc.ShadowType != "":
		ve.warnf("scene %q is not a combat scene; shadow %q is ignored", sc.ID, sc.ShadowType)
	}
	if sc.TrustChange != 0 && sc.Type != types.SceneSocial {
		ve.warnf("scene %q is not a social scene; trust is ignored", sc.ID)
	}

	if sc.Next != "" {
		if _, ok := defs.Scenes[sc.Next]; !ok {
			ve.errorf("scene %q next points to undefined scene %q", sc.ID, sc.Next)
		}
	}
	for i, ch := range sc.Choices {
		if ch.Text == "" {
			ve.errorf("scene %q choice %d has no text", sc.ID, i+1)
		}
		if ch.DC < 0 {
			ve.errorf("scene %q choice %d has negative dc %d", sc.ID, i+1, ch.DC)
		}
		if ch.Next != "" {
			if _, ok := defs.Scenes[ch.Next]; !ok {
				ve.errorf("scene %q choice %d points to undefined scene %q", sc.ID, i+1, ch.Next)
			}
		}
		validateConditions(ch.Requires, ve)
	}
}

func validateShadow(sh types.ShadowDef, ve *ValidationError) {
	if sh.MaxHP <= 0 {
		ve.errorf("shadow %q must have positive hp", sh.ID)
	}
	if sh.Attack < 0 || sh.HPPerLevel < 0 || sh.Weight < 0 {
		ve.errorf("shadow %q has a negative attack, hp_per_level or weight", sh.ID)
	}
	ids := map[string]bool{}
	for _, ab := range sh.Abilities {
		if ab.ID == "" {
			ve.errorf("shadow %q has an ability without an id", sh.ID)
			continue
		}
		if ids[ab.ID] {
			ve.errorf("shadow %q lists ability %q twice", sh.ID, ab.ID)
		}
		ids[ab.ID] = true
		if !validAbilityKinds[ab.Kind] {
			ve.errorf("ability %q has unknown kind %q", ab.ID, ab.Kind)
		}
		if ab.CooldownTurns < 0 || ab.Power < 0 || ab.Duration < 0 {
			ve.errorf("ability %q has a negative cooldown, power or duration", ab.ID)
		}
		if (ab.Kind == types.AbilityEmpower || ab.Kind == types.AbilitySap) && ab.Multiplier <= 0 {
			ve.errorf("ability %q of kind %s needs a positive multiplier", ab.ID, ab.Kind)
		}
	}
}

func validateConditions(conditions []types.Condition, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.errorf("unknown condition type %q", cond.Type)
		}
		switch cond.Type {
		case "flag_set":
			if cond.Flag == "" {
				ve.errorf("condition flag_set needs a flag name")
			}
		case "not":
			if cond.Inner == nil {
				ve.errorf("condition not needs an inner condition")
			} else {
				validateConditions([]types.Condition{*cond.Inner}, ve)
			}
		}
	}
}

// knownShadows returns the IDs a combat scene may name: the built-in
// archetypes plus those defined in content.
func knownShadows(defs *state.Defs) map[string]bool {
	known := map[string]bool{}
	for _, def := range archetype.Builtin() {
		known[def.ID] = true
	}
	for _, def := range defs.Shadows {
		known[def.ID] = true
	}
	return known
}
