package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/types"
)

// validDefs returns a minimal valid Defs for testing.
func validDefs() *state.Defs {
	defs := &state.Defs{
		Game: types.GameDef{
			Title: "Test",
			Start: "gate",
		},
		Scenes: map[string]types.SceneDef{
			"gate": {ID: "gate", Type: types.SceneExploration, DC: 10, Text: "A gate.", Next: "woods", SourceOrder: 1},
			"woods": {
				ID: "woods", Type: types.SceneCombat, DC: 12, Text: "Dark woods.",
				ShadowType: "wisp", SourceOrder: 2,
			},
		},
		Shadows: []types.ShadowDef{
			{ID: "wisp", Name: "Wisp", MaxHP: 6, Attack: 2},
		},
	}
	defs.Order = defs.SortedScenes()
	return defs
}

func validationErrors(t *testing.T, defs *state.Defs) []string {
	t.Helper()
	err := validate(defs)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return ve.Errors
}

func TestValidate_ValidDefs(t *testing.T) {
	if err := validate(validDefs()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *state.Defs)
		want   string
	}{
		{
			name:   "empty title",
			mutate: func(d *state.Defs) { d.Game.Title = "" },
			want:   "Title",
		},
		{
			name:   "missing start scene",
			mutate: func(d *state.Defs) { d.Game.Start = "nowhere" },
			want:   "start scene",
		},
		{
			name:   "no scenes",
			mutate: func(d *state.Defs) { d.Scenes = map[string]types.SceneDef{}; d.Game.Start = "" },
			want:   "no Scene",
		},
		{
			name: "unknown scene type",
			mutate: func(d *state.Defs) {
				sc := d.Scenes["gate"]
				sc.Type = "dream"
				d.Scenes["gate"] = sc
			},
			want: "unknown type",
		},
		{
			name: "next points nowhere",
			mutate: func(d *state.Defs) {
				sc := d.Scenes["gate"]
				sc.Next = "void"
				d.Scenes["gate"] = sc
			},
			want: "undefined scene",
		},
		{
			name: "choice points nowhere",
			mutate: func(d *state.Defs) {
				sc := d.Scenes["gate"]
				sc.Choices = []types.Choice{{Text: "Go", Next: "void"}}
				d.Scenes["gate"] = sc
			},
			want: "choice 1 points to undefined scene",
		},
		{
			name: "negative dc",
			mutate: func(d *state.Defs) {
				sc := d.Scenes["gate"]
				sc.DC = -1
				d.Scenes["gate"] = sc
			},
			want: "negative dc",
		},
		{
			name: "combat scene without shadow",
			mutate: func(d *state.Defs) {
				sc := d.Scenes["woods"]
				sc.ShadowType = ""
				d.Scenes["woods"] = sc
			},
			want: "must name a shadow",
		},
		{
			name: "combat scene with undefined shadow",
			mutate: func(d *state.Defs) {
				sc := d.Scenes["woods"]
				sc.ShadowType = "ghost"
				d.Scenes["woods"] = sc
			},
			want: "undefined shadow",
		},
		{
			name:   "shadow without hp",
			mutate: func(d *state.Defs) { d.Shadows[0].MaxHP = 0 },
			want:   "positive hp",
		},
		{
			name: "unknown ability kind",
			mutate: func(d *state.Defs) {
				d.Shadows[0].Abilities = []types.Ability{{ID: "hex", Kind: "curse"}}
			},
			want: "unknown kind",
		},
		{
			name: "empower without multiplier",
			mutate: func(d *state.Defs) {
				d.Shadows[0].Abilities = []types.Ability{{ID: "flare", Kind: types.AbilityEmpower}}
			},
			want: "positive multiplier",
		},
		{
			name: "duplicate ability",
			mutate: func(d *state.Defs) {
				ab := types.Ability{ID: "lash", Kind: types.AbilityStrike, Power: 3}
				d.Shadows[0].Abilities = []types.Ability{ab, ab}
			},
			want: "twice",
		},
		{
			name: "unknown condition type",
			mutate: func(d *state.Defs) {
				d.Handlers = []types.EventHandler{{EventType: "level_up", Say: "x", Conditions: []types.Condition{{Type: "has_item"}}}}
			},
			want: "unknown condition type",
		},
		{
			name: "not without inner",
			mutate: func(d *state.Defs) {
				sc := d.Scenes["gate"]
				sc.Choices = []types.Choice{{Text: "Go", Requires: []types.Condition{{Type: "not"}}}}
				d.Scenes["gate"] = sc
			},
			want: "inner condition",
		},
		{
			name: "flag_set without flag",
			mutate: func(d *state.Defs) {
				sc := d.Scenes["gate"]
				sc.Choices = []types.Choice{{Text: "Go", Requires: []types.Condition{{Type: "not", Inner: &types.Condition{Type: "flag_set"}}}}}
				d.Scenes["gate"] = sc
			},
			want: "needs a flag name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := validDefs()
			tt.mutate(defs)
			assertContains(t, validationErrors(t, defs), tt.want)
		})
	}
}

func TestValidate_BuiltinShadowAccepted(t *testing.T) {
	defs := validDefs()
	sc := defs.Scenes["woods"]
	sc.ShadowType = "echo_of_anger"
	defs.Scenes["woods"] = sc

	if err := validate(defs); err != nil {
		t.Fatalf("built-in archetypes should be valid targets: %v", err)
	}
}

func TestValidate_WarningsDoNotFail(t *testing.T) {
	defs := validDefs()
	sc := defs.Scenes["gate"]
	sc.ShadowType = "wisp"
	sc.TrustChange = 3
	sc.Text = ""
	defs.Scenes["gate"] = sc
	defs.Handlers = []types.EventHandler{{EventType: "level_up"}}

	if err := validate(defs); err != nil {
		t.Fatalf("warnings must not fail validation: %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []string{"first", "second"}}
	msg := ve.Error()
	if !strings.Contains(msg, "2 error(s)") || !strings.Contains(msg, "first\n  second") {
		t.Errorf("Error() = %q", msg)
	}
}

func assertContains(t *testing.T, strs []string, substr string) {
	t.Helper()
	for _, s := range strs {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected an error containing %q, got %v", substr, strs)
}
