package scene

import (
	"errors"
	"testing"

	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/types"
)

type lookup map[string]bool

func (l lookup) Has(id string) bool { return l[id] }

func combatScene() types.SceneDef {
	return types.SceneDef{
		ID:          "mirror",
		Type:        types.SceneCombat,
		DC:          14,
		SuccessText: "You meet your reflection calmly.",
		FailureText: "Your reflection twists into something else.",
		ShadowType:  "self_doubt",
		LPReward:    3,
		SPPenalty:   2,
		EnergyCost:  10,
		XPReward:    40,
	}
}

func TestHandleSceneOutcome_CombatFailureTriggersCombat(t *testing.T) {
	out := HandleSceneOutcome(combatScene(), false, 5, types.LevelModifiers{})

	if !out.TriggeredCombat {
		t.Fatal("expected combat to trigger")
	}
	if out.ShadowType != "self_doubt" {
		t.Errorf("ShadowType = %q, want self_doubt", out.ShadowType)
	}
	if out.ResourceChanges != (types.ResourceChanges{}) {
		t.Errorf("expected no resource changes, got %+v", out.ResourceChanges)
	}
	if out.ExperienceChanges.XPGained != 0 {
		t.Errorf("expected XP deferred to combat, got %d", out.ExperienceChanges.XPGained)
	}
	if out.Text != "Your reflection twists into something else." {
		t.Errorf("Text = %q", out.Text)
	}
}

func TestHandleSceneOutcome_CombatSuccessWinsWithoutFighting(t *testing.T) {
	out := HandleSceneOutcome(combatScene(), true, 17, types.LevelModifiers{})

	if out.TriggeredCombat {
		t.Fatal("a won combat scene must not trigger combat")
	}
	if out.ShadowType != "" {
		t.Errorf("ShadowType = %q, want empty", out.ShadowType)
	}
	if out.ResourceChanges.LPChange != 3 {
		t.Errorf("LPChange = %d, want 3", out.ResourceChanges.LPChange)
	}
	if out.ResourceChanges.SPChange != 0 {
		t.Errorf("SPChange = %d, want 0", out.ResourceChanges.SPChange)
	}
	if out.ExperienceChanges.XPGained != 40 {
		t.Errorf("XPGained = %d, want 40", out.ExperienceChanges.XPGained)
	}
}

func TestHandleSceneOutcome_NonCombat(t *testing.T) {
	sc := types.SceneDef{
		ID:           "garden",
		Type:         types.SceneExploration,
		DC:           10,
		LPReward:     2,
		SPPenalty:    1,
		EnergyCost:   5,
		EnergyReward: 3,
		XPReward:     20,
	}

	tests := []struct {
		name    string
		success bool
		want    types.ResourceChanges
		xp      int
		reward  int
	}{
		{"success pays light", true, types.ResourceChanges{LPChange: 2}, 20, 3},
		{"failure adds shadow", false, types.ResourceChanges{SPChange: 1}, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := HandleSceneOutcome(sc, tt.success, 12, types.LevelModifiers{})
			if out.TriggeredCombat {
				t.Fatal("non-combat scene triggered combat")
			}
			if out.ResourceChanges != tt.want {
				t.Errorf("ResourceChanges = %+v, want %+v", out.ResourceChanges, tt.want)
			}
			if out.ExperienceChanges.XPGained != tt.xp {
				t.Errorf("XPGained = %d, want %d", out.ExperienceChanges.XPGained, tt.xp)
			}
			if out.EnergyChanges.EnergyCost != 5 {
				t.Errorf("EnergyCost = %d, want 5", out.EnergyChanges.EnergyCost)
			}
			if out.EnergyChanges.EnergyReward != tt.reward {
				t.Errorf("EnergyReward = %d, want %d", out.EnergyChanges.EnergyReward, tt.reward)
			}
		})
	}
}

func TestHandleSceneOutcome_LevelModifiers(t *testing.T) {
	sc := types.SceneDef{ID: "circle", Type: types.SceneSocial, EnergyCost: 4, TrustChange: 10}
	mods := types.LevelModifiers{CostReduction: 6, TrustMultiplier: 1.25}

	out := HandleSceneOutcome(sc, true, 15, mods)
	if out.EnergyChanges.EnergyCost != 0 {
		t.Errorf("EnergyCost should floor at 0, got %d", out.EnergyChanges.EnergyCost)
	}
	if out.TrustModifiers.Change != 13 {
		t.Errorf("trust change = %d, want 13 (10 * 1.25 rounded)", out.TrustModifiers.Change)
	}
	if out.TrustModifiers.Multiplier != 1.25 {
		t.Errorf("multiplier = %v, want 1.25", out.TrustModifiers.Multiplier)
	}

	failed := HandleSceneOutcome(sc, false, 2, mods)
	if failed.TrustModifiers.Change != -13 {
		t.Errorf("failed trust change = %d, want -13 (scaled and negated)", failed.TrustModifiers.Change)
	}
}

func TestHandleSceneOutcome_TrustScaledBothWays(t *testing.T) {
	sc := types.SceneDef{ID: "council", Type: types.SceneSocial, TrustChange: 10}
	mods := state.LevelModifiers(6)

	won := HandleSceneOutcome(sc, true, 18, mods)
	lost := HandleSceneOutcome(sc, false, 3, mods)
	if won.TrustModifiers.Change != 15 {
		t.Errorf("success trust change = %d, want 15", won.TrustModifiers.Change)
	}
	if lost.TrustModifiers.Change != -won.TrustModifiers.Change {
		t.Errorf("failure trust change = %d, want %d", lost.TrustModifiers.Change, -won.TrustModifiers.Change)
	}
}

func TestHandleSceneOutcome_NoTrustOutsideSocialScenes(t *testing.T) {
	sc := types.SceneDef{ID: "path", Type: types.SceneSkill, TrustChange: 5}
	out := HandleSceneOutcome(sc, true, 20, types.LevelModifiers{TrustMultiplier: 2})
	if out.TrustModifiers.Change != 0 {
		t.Errorf("skill scene should not change trust, got %d", out.TrustModifiers.Change)
	}
}

func TestHandleSceneOutcome_Pure(t *testing.T) {
	sc := combatScene()
	sc.Choices = []types.Choice{{Text: "Look closer", DC: 12}}
	before := sc.Choices[0]

	a := HandleSceneOutcome(sc, true, 15, types.LevelModifiers{RollBonus: 1})
	b := HandleSceneOutcome(sc, true, 15, types.LevelModifiers{RollBonus: 1})
	if a != b {
		t.Errorf("same inputs produced different outcomes: %+v vs %+v", a, b)
	}
	if sc.Choices[0].DC != before.DC || sc.LPReward != 3 {
		t.Error("scene definition was mutated")
	}
}

func TestEffectiveDC(t *testing.T) {
	sc := types.SceneDef{DC: 14, Choices: []types.Choice{{DC: 8}, {}}}
	if got := EffectiveDC(sc, 0); got != 8 {
		t.Errorf("choice DC = %d, want 8", got)
	}
	if got := EffectiveDC(sc, 1); got != 14 {
		t.Errorf("fallback DC = %d, want 14", got)
	}
	if got := EffectiveDC(sc, 9); got != 14 {
		t.Errorf("out of range DC = %d, want 14", got)
	}
	if got := EffectiveDC(types.SceneDef{}, 0); got != DefaultDC {
		t.Errorf("default DC = %d, want %d", got, DefaultDC)
	}
}

func TestResolve_ChecksRegistry(t *testing.T) {
	reg := lookup{"self_doubt": true}

	if _, err := Resolve(reg, combatScene(), false, 3, types.LevelModifiers{}); err != nil {
		t.Fatalf("known shadow: unexpected error %v", err)
	}

	sc := combatScene()
	sc.ShadowType = "ghost"
	_, err := Resolve(reg, sc, false, 3, types.LevelModifiers{})
	if !errors.Is(err, ErrUnknownShadow) {
		t.Fatalf("expected ErrUnknownShadow, got %v", err)
	}

	// A won combat scene never needs the registry.
	if _, err := Resolve(reg, sc, true, 18, types.LevelModifiers{}); err != nil {
		t.Fatalf("won scene: unexpected error %v", err)
	}
}
