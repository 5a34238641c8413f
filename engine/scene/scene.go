// Package scene turns a scene definition and a dice outcome into the
// resource, energy, experience and trust deltas the caller must apply.
// Everything here is pure: no state is read or written.
package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/nathoo/shadowcore/types"
)

// ErrUnknownShadow is returned when a combat scene names an archetype the
// registry does not know.
var ErrUnknownShadow = errors.New("unknown shadow archetype")

// DefaultDC is used when neither the scene nor the choice sets one.
const DefaultDC = 10

// ShadowLookup reports whether an enemy archetype exists.
type ShadowLookup interface {
	Has(id string) bool
}

// EffectiveDC returns the DC for the given choice, falling back to the
// scene DC and then DefaultDC. An out-of-range choice uses the scene DC.
func EffectiveDC(sc types.SceneDef, choice int) int {
	if choice >= 0 && choice < len(sc.Choices) && sc.Choices[choice].DC > 0 {
		return sc.Choices[choice].DC
	}
	if sc.DC > 0 {
		return sc.DC
	}
	return DefaultDC
}

// HandleSceneOutcome computes the deltas produced by a resolved roll.
//
// Combat scenes that fail trigger an encounter and defer every resource
// effect to it. Combat scenes that succeed are won without fighting and pay
// their light reward. Other scenes pay light on success and add shadow on
// failure.
func HandleSceneOutcome(sc types.SceneDef, success bool, roll int, mods types.LevelModifiers) types.SceneOutcome {
	out := types.SceneOutcome{
		SceneID: sc.ID,
		Success: success,
		Roll:    roll,
		EnergyChanges: types.EnergyChanges{
			EnergyCost: energyCost(sc.EnergyCost, mods.CostReduction),
		},
		TrustModifiers: types.TrustModifiers{Multiplier: trustMultiplier(mods)},
	}

	if success {
		out.Text = sc.SuccessText
	} else {
		out.Text = sc.FailureText
	}

	if sc.Type == types.SceneCombat {
		if !success {
			out.TriggeredCombat = true
			out.ShadowType = sc.ShadowType
			return out
		}
		out.ResourceChanges.LPChange = sc.LPReward
		out.EnergyChanges.EnergyReward = sc.EnergyReward
		out.ExperienceChanges = types.ExperienceChanges{
			XPGained: sc.XPReward,
			Reason:   fmt.Sprintf("faced %s without fighting", sc.ID),
		}
		return out
	}

	if success {
		out.ResourceChanges.LPChange = sc.LPReward
		out.EnergyChanges.EnergyReward = sc.EnergyReward
		out.ExperienceChanges = types.ExperienceChanges{
			XPGained: sc.XPReward,
			Reason:   fmt.Sprintf("completed %s", sc.ID),
		}
	} else {
		out.ResourceChanges.SPChange = sc.SPPenalty
		out.ExperienceChanges = types.ExperienceChanges{
			XPGained: sc.XPReward / 2,
			Reason:   fmt.Sprintf("learned from %s", sc.ID),
		}
	}

	if sc.Type == types.SceneSocial && sc.TrustChange != 0 {
		change := int(math.Round(float64(sc.TrustChange) * out.TrustModifiers.Multiplier))
		if !success {
			change = -change
		}
		out.TrustModifiers.Change = change
	}

	return out
}

// Resolve is HandleSceneOutcome plus a registry check: a triggered combat
// must name an archetype the registry can build.
func Resolve(reg ShadowLookup, sc types.SceneDef, success bool, roll int, mods types.LevelModifiers) (types.SceneOutcome, error) {
	out := HandleSceneOutcome(sc, success, roll, mods)
	if out.TriggeredCombat {
		if out.ShadowType == "" {
			return out, fmt.Errorf("scene %s: combat scene has no shadow type: %w", sc.ID, ErrUnknownShadow)
		}
		if reg == nil || !reg.Has(out.ShadowType) {
			return out, fmt.Errorf("scene %s: %q: %w", sc.ID, out.ShadowType, ErrUnknownShadow)
		}
	}
	return out, nil
}

func energyCost(base, reduction int) int {
	cost := base - reduction
	if cost < 0 {
		return 0
	}
	return cost
}

func trustMultiplier(mods types.LevelModifiers) float64 {
	if mods.TrustMultiplier <= 0 {
		return 1.0
	}
	return mods.TrustMultiplier
}
