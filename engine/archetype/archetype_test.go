package archetype

import (
	"errors"
	"testing"

	"github.com/nathoo/shadowcore/types"
)

type pickFirst struct{ calls int }

func (p *pickFirst) WeightedSelect(weights []int) int {
	p.calls++
	return 0
}

func builtinRegistry() *Registry {
	r := NewRegistry()
	for _, def := range Builtin() {
		r.RegisterDef(def)
	}
	return r
}

func TestRegistry_New(t *testing.T) {
	r := builtinRegistry()

	s, err := r.New("echo_of_anger", 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.CurrentHP != 16 || s.MaxHP != 16 {
		t.Errorf("HP = %d/%d, want 16/16", s.CurrentHP, s.MaxHP)
	}
	if len(s.Abilities) != 2 {
		t.Errorf("abilities = %d, want 2", len(s.Abilities))
	}
	if s.VictoryReward.XP != 50 {
		t.Errorf("reward XP = %d, want 50", s.VictoryReward.XP)
	}

	scaled, _ := r.New("echo_of_anger", 3)
	if scaled.MaxHP != 24 {
		t.Errorf("level 3 MaxHP = %d, want 24", scaled.MaxHP)
	}
}

func TestRegistry_UnknownArchetype(t *testing.T) {
	r := builtinRegistry()
	if r.Has("ghost") {
		t.Fatal("ghost should not be registered")
	}
	_, err := r.New("ghost", 1)
	if !errors.Is(err, ErrUnknownArchetype) {
		t.Fatalf("expected ErrUnknownArchetype, got %v", err)
	}
}

func TestRegistry_FreshAbilities(t *testing.T) {
	r := builtinRegistry()
	a, _ := r.New("veil_of_grief", 1)
	a.Abilities[0].CurrentCooldown = 3

	b, _ := r.New("veil_of_grief", 1)
	if b.Abilities[0].CurrentCooldown != 0 {
		t.Error("enemies must not share ability state")
	}
}

func TestRegistry_Random(t *testing.T) {
	r := builtinRegistry()
	r.Register("boss", 0, func(level int) types.Shadow { return types.Shadow{ID: "boss", MaxHP: 1, CurrentHP: 1} })

	sel := &pickFirst{}
	s, err := r.Random(sel, 1)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	// Sorted IDs with positive weight: echo_of_anger first.
	if s.ID != "echo_of_anger" {
		t.Errorf("picked %q, want echo_of_anger", s.ID)
	}
	if sel.calls != 1 {
		t.Errorf("selector called %d times, want 1", sel.calls)
	}
}

func TestRegistry_RandomEmpty(t *testing.T) {
	r := NewRegistry()
	r.Register("boss", 0, func(int) types.Shadow { return types.Shadow{} })
	if _, err := r.Random(&pickFirst{}, 1); !errors.Is(err, ErrUnknownArchetype) {
		t.Fatalf("expected ErrUnknownArchetype, got %v", err)
	}
}

func TestIDs_Sorted(t *testing.T) {
	ids := builtinRegistry().IDs()
	want := []string{"echo_of_anger", "veil_of_grief", "whisper_of_doubt"}
	if len(ids) != len(want) {
		t.Fatalf("IDs = %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}
