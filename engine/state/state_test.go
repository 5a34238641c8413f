package state

import (
	"testing"

	"github.com/nathoo/shadowcore/types"
)

func testDefs() *Defs {
	return &Defs{
		Game: types.GameDef{
			Title:   "Test Journey",
			Author:  "Test",
			Version: "0.1.0",
			Start:   "threshold",
		},
		Scenes: map[string]types.SceneDef{
			"threshold": {ID: "threshold", Type: types.SceneExploration, SourceOrder: 0},
			"mirror":    {ID: "mirror", Type: types.SceneCombat, SourceOrder: 1},
			"circle":    {ID: "circle", Type: types.SceneSocial, SourceOrder: 2},
		},
		Order: []string{"threshold", "mirror", "circle"},
	}
}

func TestNewState(t *testing.T) {
	s := NewState(testDefs())

	if s.SceneID != "threshold" {
		t.Errorf("SceneID = %q, want threshold", s.SceneID)
	}
	if s.SceneIndex != 0 {
		t.Errorf("SceneIndex = %d, want 0", s.SceneIndex)
	}
	if s.Player.Level != 1 {
		t.Errorf("Level = %d, want 1", s.Player.Level)
	}
	if s.Player.Health != s.Player.MaxHealth {
		t.Errorf("player should start at full health: %d/%d", s.Player.Health, s.Player.MaxHealth)
	}
	if s.Flags == nil || s.CommandLog == nil {
		t.Error("maps and slices should be initialized")
	}
}

func TestNewState_NoStartUsesFirstScene(t *testing.T) {
	defs := testDefs()
	defs.Game.Start = ""
	s := NewState(defs)
	if s.SceneID != "threshold" {
		t.Errorf("SceneID = %q, want threshold", s.SceneID)
	}
}

func TestSortedScenes(t *testing.T) {
	got := testDefs().SortedScenes()
	want := []string{"threshold", "mirror", "circle"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedScenes = %v, want %v", got, want)
		}
	}
}

func TestModifiers_Clamp(t *testing.T) {
	tests := []struct {
		name   string
		apply  func(v *types.Vitals) types.ResourceChange
		after  int
		actual int
	}{
		{"light floors at zero", func(v *types.Vitals) types.ResourceChange { return ModifyLightPoints(v, -100, "test") }, 0, -6},
		{"light unbounded above", func(v *types.Vitals) types.ResourceChange { return ModifyLightPoints(v, 50, "test") }, 56, 50},
		{"shadow floors at zero", func(v *types.Vitals) types.ResourceChange { return ModifyShadowPoints(v, -3, "test") }, 0, -2},
		{"health caps at max", func(v *types.Vitals) types.ResourceChange { return ModifyHealth(v, 10, "test") }, 30, 0},
		{"health floors at zero", func(v *types.Vitals) types.ResourceChange { return ModifyHealth(v, -99, "test") }, 0, -30},
		{"energy caps at max", func(v *types.Vitals) types.ResourceChange { return ModifyPlayerEnergy(v, 1, "test") }, 50, 0},
		{"energy spend", func(v *types.Vitals) types.ResourceChange { return ModifyPlayerEnergy(v, -8, "test") }, 42, -8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer()
			c := tt.apply(&p.Vitals)
			if c.After != tt.after {
				t.Errorf("After = %d, want %d", c.After, tt.after)
			}
			if c.Applied != tt.actual {
				t.Errorf("Applied = %d, want %d", c.Applied, tt.actual)
			}
			if c.Reason != "test" {
				t.Errorf("Reason = %q", c.Reason)
			}
			Check(p.Vitals)
		})
	}
}

func TestModifyExperiencePoints_LevelUp(t *testing.T) {
	p := NewPlayer()

	c, gained := ModifyExperiencePoints(&p, 90, "scene")
	if gained != 0 || p.Level != 1 {
		t.Fatalf("90 XP should not level: level=%d gained=%d", p.Level, gained)
	}
	if c.After != 90 {
		t.Errorf("XP = %d, want 90", c.After)
	}

	_, gained = ModifyExperiencePoints(&p, 120, "combat")
	if gained != 2 || p.Level != 3 {
		t.Fatalf("210 XP should reach level 3: level=%d gained=%d", p.Level, gained)
	}
	if p.MaxHealth != StartMaxHealth+2*LevelUpHealth {
		t.Errorf("MaxHealth = %d", p.MaxHealth)
	}
	if p.MaxEnergy != StartMaxEnergy+2*LevelUpEnergy {
		t.Errorf("MaxEnergy = %d", p.MaxEnergy)
	}

	_, gained = ModifyExperiencePoints(&p, -500, "penalty")
	if gained != 0 || p.Level != 3 || p.Experience != 0 {
		t.Errorf("XP loss should floor at 0 and keep level: xp=%d level=%d", p.Experience, p.Level)
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct{ xp, want int }{
		{-5, 1}, {0, 1}, {99, 1}, {100, 2}, {450, 5}, {5000, MaxLevel},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelModifiers(t *testing.T) {
	m := LevelModifiers(1)
	if m.RollBonus != 0 || m.CostReduction != 0 || m.TrustMultiplier != 1 {
		t.Errorf("level 1 modifiers = %+v", m)
	}
	m = LevelModifiers(5)
	if m.RollBonus != 2 || m.CostReduction != 4 {
		t.Errorf("level 5 modifiers = %+v", m)
	}
	if m.TrustMultiplier < 1.39 || m.TrustMultiplier > 1.41 {
		t.Errorf("level 5 trust multiplier = %v, want 1.4", m.TrustMultiplier)
	}
}

func TestCheck_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on negative light")
		}
	}()
	Check(types.Vitals{LightPoints: -1, MaxHealth: 1, MaxEnergy: 1})
}
