// Package archetype is the registry of enemy archetypes shared by the scene
// resolver and the combat engine. Each archetype is a factory that builds a
// fresh Shadow scaled to the player's level.
package archetype

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/shadowcore/types"
)

// ErrUnknownArchetype is returned when an ID is not registered.
var ErrUnknownArchetype = errors.New("unknown archetype")

// Factory builds a new enemy for the given player level.
type Factory func(level int) types.Shadow

// Selector picks an index from positive weights.
type Selector interface {
	WeightedSelect(weights []int) int
}

type entry struct {
	factory Factory
	weight  int
}

// Registry maps archetype IDs to factories.
type Registry struct {
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]entry{}}
}

// Register adds a factory with a random-encounter weight. A weight of 0
// keeps the archetype out of random encounters. Re-registering an ID
// replaces it.
func (r *Registry) Register(id string, weight int, f Factory) {
	r.entries[id] = entry{factory: f, weight: max(weight, 0)}
}

// RegisterDef registers a content definition.
func (r *Registry) RegisterDef(def types.ShadowDef) {
	r.Register(def.ID, def.Weight, FromDef(def))
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// New builds a fresh enemy of archetype id.
func (r *Registry) New(id string, level int) (types.Shadow, error) {
	e, ok := r.entries[id]
	if !ok {
		return types.Shadow{}, fmt.Errorf("%q: %w", id, ErrUnknownArchetype)
	}
	return e.factory(max(level, 1)), nil
}

// IDs returns registered IDs in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Random picks an archetype by weight using sel and builds it.
func (r *Registry) Random(sel Selector, level int) (types.Shadow, error) {
	var ids []string
	var weights []int
	for _, id := range r.IDs() {
		if w := r.entries[id].weight; w > 0 {
			ids = append(ids, id)
			weights = append(weights, w)
		}
	}
	if len(ids) == 0 {
		return types.Shadow{}, fmt.Errorf("no archetypes available for random encounters: %w", ErrUnknownArchetype)
	}
	return r.New(ids[sel.WeightedSelect(weights)], level)
}

// FromDef returns a factory for a content definition. Max HP grows by
// HPPerLevel for each level above 1. Abilities are copied so enemies never
// share cooldown state.
func FromDef(def types.ShadowDef) Factory {
	return func(level int) types.Shadow {
		hp := max(def.MaxHP+def.HPPerLevel*(level-1), 1)
		abilities := make([]types.Ability, len(def.Abilities))
		copy(abilities, def.Abilities)
		for i := range abilities {
			abilities[i].CurrentCooldown = 0
		}
		name := def.Name
		if name == "" {
			name = def.ID
		}
		return types.Shadow{
			ID:                 def.ID,
			Name:               name,
			Type:               def.Type,
			CurrentHP:          hp,
			MaxHP:              hp,
			Attack:             def.Attack,
			Abilities:          abilities,
			TherapeuticInsight: def.Insight,
			VictoryReward:      def.Reward,
		}
	}
}

// Builtin returns the default archetypes used when content defines none.
func Builtin() []types.ShadowDef {
	return []types.ShadowDef{
		{
			ID:         "whisper_of_doubt",
			Name:       "Whisper of Doubt",
			Type:       "doubt",
			MaxHP:      12,
			HPPerLevel: 3,
			Attack:     3,
			Weight:     3,
			Abilities: []types.Ability{
				{ID: "undermine", Name: "Undermine", Kind: types.AbilityBlockLight, Power: 2, Duration: 2, CooldownTurns: 3, Message: "Who are you to shine?"},
			},
			Insight: "Doubt fades when it is named rather than obeyed.",
			Reward:  types.VictoryReward{LP: 3, XP: 40},
		},
		{
			ID:         "echo_of_anger",
			Name:       "Echo of Anger",
			Type:       "anger",
			MaxHP:      16,
			HPPerLevel: 4,
			Attack:     4,
			Weight:     2,
			Abilities: []types.Ability{
				{ID: "flare", Name: "Flare", Kind: types.AbilityEmpower, Multiplier: 1.5, CooldownTurns: 4, Message: "The echo burns hotter."},
				{ID: "lash", Name: "Lash", Kind: types.AbilityStrike, Power: 6, CooldownTurns: 2, Message: "Old words strike like a whip."},
			},
			Insight: "Anger points at what still matters to you.",
			Reward:  types.VictoryReward{LP: 4, XP: 50},
		},
		{
			ID:         "veil_of_grief",
			Name:       "Veil of Grief",
			Type:       "grief",
			MaxHP:      20,
			HPPerLevel: 4,
			Attack:     3,
			Weight:     1,
			Abilities: []types.Ability{
				{ID: "numb", Name: "Numb", Kind: types.AbilityBlockHealing, Power: 2, Duration: 2, CooldownTurns: 3, Message: "A heaviness settles on your chest."},
				{ID: "drift", Name: "Drift", Kind: types.AbilityStun, CooldownTurns: 5, Message: "Time slips away from you."},
			},
			Insight: "Grief is love that has nowhere to go yet.",
			Reward:  types.VictoryReward{LP: 5, XP: 60},
		},
	}
}
