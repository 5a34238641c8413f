// Package status implements the composition rules for status effects:
// damage scaling, block counters, the one-shot skip flag and the endure
// streak.
package status

import (
	"math"

	"github.com/nathoo/shadowcore/types"
)

// Multiplier bounds. Stacked modifiers are clamped into this range.
const (
	MinMultiplier = 0.1
	MaxMultiplier = 3.0
)

// New returns status effects with neutral multipliers.
func New() types.StatusEffects {
	return types.StatusEffects{DamageMultiplier: 1.0, DamageReduction: 1.0}
}

// ClampMultiplier keeps m inside [MinMultiplier, MaxMultiplier].
func ClampMultiplier(m float64) float64 {
	if math.IsNaN(m) || m < MinMultiplier {
		return MinMultiplier
	}
	if m > MaxMultiplier {
		return MaxMultiplier
	}
	return m
}

// IncomingDamage computes round(base * attacker multiplier * defender
// reduction), minimum 0.
func IncomingDamage(base int, attacker, defender types.StatusEffects) int {
	if base <= 0 {
		return 0
	}
	d := float64(base) * ClampMultiplier(attacker.DamageMultiplier) * ClampMultiplier(defender.DamageReduction)
	return max(int(math.Round(d)), 0)
}

// Scale multiplies the outgoing damage multiplier by factor and clamps.
func Scale(s *types.StatusEffects, factor float64) {
	s.DamageMultiplier = ClampMultiplier(s.DamageMultiplier * factor)
}

// BlockHealing extends the healing block to at least turns.
func BlockHealing(s *types.StatusEffects, turns int) {
	s.HealingBlocked = max(s.HealingBlocked, turns, 0)
}

// BlockLight extends the LP generation block to at least turns.
func BlockLight(s *types.StatusEffects, turns int) {
	s.LPGenerationBlocked = max(s.LPGenerationBlocked, turns, 0)
}

// BeginTurn runs the start-of-turn bookkeeping for one side: block counters
// drop by one (floor 0) and the skip flag is consumed. It reports whether
// the turn is skipped.
func BeginTurn(s *types.StatusEffects) (skipped bool) {
	if s.HealingBlocked > 0 {
		s.HealingBlocked--
	}
	if s.LPGenerationBlocked > 0 {
		s.LPGenerationBlocked--
	}
	skipped = s.SkipNextTurn
	s.SkipNextTurn = false
	return skipped
}

// CanHeal reports whether healing takes effect.
func CanHeal(s types.StatusEffects) bool { return s.HealingBlocked == 0 }

// CanGenerateLight reports whether LP gains take effect.
func CanGenerateLight(s types.StatusEffects) bool { return s.LPGenerationBlocked == 0 }

// Endure records a defensive action and sets the damage reduction it grants.
// From the threshold-th consecutive endure on, fortified replaces normal.
func Endure(s *types.StatusEffects, normal, fortified float64, threshold int) {
	s.ConsecutiveEndures++
	if Fortified(*s, threshold) {
		s.DamageReduction = ClampMultiplier(fortified)
	} else {
		s.DamageReduction = ClampMultiplier(normal)
	}
}

// BreakStreak resets the endure streak and its damage reduction after any
// non-defensive action.
func BreakStreak(s *types.StatusEffects) {
	s.ConsecutiveEndures = 0
	s.DamageReduction = 1.0
}

// Fortified reports whether the endure streak has reached threshold.
func Fortified(s types.StatusEffects, threshold int) bool {
	return threshold > 0 && s.ConsecutiveEndures >= threshold
}

// Valid reports whether every field is inside its allowed range.
func Valid(s types.StatusEffects) bool {
	return s.HealingBlocked >= 0 &&
		s.LPGenerationBlocked >= 0 &&
		s.ConsecutiveEndures >= 0 &&
		s.DamageMultiplier >= MinMultiplier && s.DamageMultiplier <= MaxMultiplier &&
		s.DamageReduction >= MinMultiplier && s.DamageReduction <= MaxMultiplier
}
