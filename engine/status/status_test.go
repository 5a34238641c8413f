package status

import (
	"testing"

	"github.com/nathoo/shadowcore/types"
)

func TestIncomingDamage(t *testing.T) {
	tests := []struct {
		name      string
		base      int
		mult, red float64
		want      int
	}{
		{"neutral", 5, 1.0, 1.0, 5},
		{"halved rounds half up", 5, 1.0, 0.5, 3},
		{"quartered", 4, 1.0, 0.25, 1},
		{"empowered", 4, 1.5, 1.0, 6},
		{"weakened", 5, 0.8, 1.0, 4},
		{"zero base", 0, 2.0, 1.0, 0},
		{"negative base", -3, 1.0, 1.0, 0},
		{"multiplier clamped", 10, 50.0, 1.0, 30},
		{"reduction clamped", 10, 1.0, 0.0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att := types.StatusEffects{DamageMultiplier: tt.mult, DamageReduction: 1}
			def := types.StatusEffects{DamageMultiplier: 1, DamageReduction: tt.red}
			if got := IncomingDamage(tt.base, att, def); got != tt.want {
				t.Errorf("IncomingDamage = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScale_Clamps(t *testing.T) {
	s := New()
	for i := 0; i < 20; i++ {
		Scale(&s, 0.5)
	}
	if s.DamageMultiplier != MinMultiplier {
		t.Errorf("multiplier = %v, want %v", s.DamageMultiplier, MinMultiplier)
	}
	for i := 0; i < 20; i++ {
		Scale(&s, 2)
	}
	if s.DamageMultiplier != MaxMultiplier {
		t.Errorf("multiplier = %v, want %v", s.DamageMultiplier, MaxMultiplier)
	}
	if !Valid(s) {
		t.Error("clamped effects should be valid")
	}
}

func TestBeginTurn_HealingBlockedDecays(t *testing.T) {
	s := New()
	BlockHealing(&s, 2)

	BeginTurn(&s)
	if CanHeal(s) {
		t.Fatal("healing should still be blocked after the first turn start")
	}
	if s.HealingBlocked != 1 {
		t.Errorf("HealingBlocked = %d, want 1", s.HealingBlocked)
	}

	BeginTurn(&s)
	if s.HealingBlocked != 0 || !CanHeal(s) {
		t.Errorf("HealingBlocked = %d, want 0 and healing restored", s.HealingBlocked)
	}

	BeginTurn(&s)
	if s.HealingBlocked != 0 {
		t.Errorf("counter must floor at 0, got %d", s.HealingBlocked)
	}
}

func TestBlocks_DoNotShorten(t *testing.T) {
	s := New()
	BlockLight(&s, 3)
	BlockLight(&s, 1)
	if s.LPGenerationBlocked != 3 {
		t.Errorf("LPGenerationBlocked = %d, want 3", s.LPGenerationBlocked)
	}
	BlockHealing(&s, -2)
	if s.HealingBlocked != 0 {
		t.Errorf("negative duration must not go below 0, got %d", s.HealingBlocked)
	}
}

func TestBeginTurn_SkipIsOneShot(t *testing.T) {
	s := New()
	s.SkipNextTurn = true

	if !BeginTurn(&s) {
		t.Fatal("first turn start should report a skip")
	}
	if s.SkipNextTurn {
		t.Fatal("skip flag should be consumed")
	}
	if BeginTurn(&s) {
		t.Fatal("second turn start should not skip")
	}
}

func TestEndure_Fortified(t *testing.T) {
	s := New()
	const threshold = 3

	Endure(&s, 0.5, 0.25, threshold)
	Endure(&s, 0.5, 0.25, threshold)
	if Fortified(s, threshold) {
		t.Fatal("two endures should not fortify")
	}
	if s.DamageReduction != 0.5 {
		t.Errorf("DamageReduction = %v, want 0.5", s.DamageReduction)
	}

	Endure(&s, 0.5, 0.25, threshold)
	if !Fortified(s, threshold) {
		t.Fatal("third endure should fortify")
	}
	if s.DamageReduction != 0.25 {
		t.Errorf("DamageReduction = %v, want 0.25", s.DamageReduction)
	}

	BreakStreak(&s)
	if s.ConsecutiveEndures != 0 || s.DamageReduction != 1.0 {
		t.Errorf("streak not reset: %+v", s)
	}
}
