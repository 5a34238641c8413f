// Package state owns the player's resource sheet and the immutable game
// definitions. Resources are changed only through the Modify* operations so
// every change is clamped and attributable.
package state

import (
	"sort"

	"github.com/nathoo/shadowcore/types"
)

// Starting values for a fresh player.
const (
	StartLight     = 6
	StartShadow    = 2
	StartMaxHealth = 30
	StartMaxEnergy = 50

	// XPPerLevel is the experience needed for each level after the first.
	XPPerLevel = 100
	// MaxLevel caps progression.
	MaxLevel = 10
	// LevelUpHealth and LevelUpEnergy are added to the maxima on level-up.
	LevelUpHealth = 5
	LevelUpEnergy = 5
)

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game     types.GameDef
	Scenes   map[string]types.SceneDef
	Order    []string // scene IDs in journey order
	Shadows  []types.ShadowDef
	Handlers []types.EventHandler
}

// SortedScenes returns scene IDs ordered by their position in the source.
func (d *Defs) SortedScenes() []string {
	ids := make([]string, 0, len(d.Scenes))
	for id := range d.Scenes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := d.Scenes[ids[i]], d.Scenes[ids[j]]
		if a.SourceOrder != b.SourceOrder {
			return a.SourceOrder < b.SourceOrder
		}
		return ids[i] < ids[j]
	})
	return ids
}

// SceneIndex returns the position of a scene in the journey, or -1.
func (d *Defs) SceneIndex(id string) int {
	for i, sid := range d.Order {
		if sid == id {
			return i
		}
	}
	return -1
}

// NewPlayer returns a level 1 player with starting resources.
func NewPlayer() types.PlayerResources {
	return types.PlayerResources{
		Vitals: types.Vitals{
			LightPoints:  StartLight,
			ShadowPoints: StartShadow,
			Health:       StartMaxHealth,
			MaxHealth:    StartMaxHealth,
			Energy:       StartMaxEnergy,
			MaxEnergy:    StartMaxEnergy,
		},
		Level: 1,
	}
}

// NewState creates a fresh session state from definitions.
func NewState(defs *Defs) *types.State {
	start := defs.Game.Start
	if start == "" && len(defs.Order) > 0 {
		start = defs.Order[0]
	}
	return &types.State{
		Player:     NewPlayer(),
		SceneID:    start,
		SceneIndex: max(defs.SceneIndex(start), 0),
		Flags:      map[string]bool{},
		CommandLog: []string{},
	}
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.State, name string) bool {
	return s.Flags[name]
}

// ModifyLightPoints adds delta to LP, flooring at 0.
func ModifyLightPoints(v *types.Vitals, delta int, reason string) types.ResourceChange {
	return modify(types.ResourceLight, &v.LightPoints, delta, 0, -1, reason)
}

// ModifyShadowPoints adds delta to SP, flooring at 0.
func ModifyShadowPoints(v *types.Vitals, delta int, reason string) types.ResourceChange {
	return modify(types.ResourceShadow, &v.ShadowPoints, delta, 0, -1, reason)
}

// ModifyHealth adds delta to health, clamped to [0, MaxHealth].
func ModifyHealth(v *types.Vitals, delta int, reason string) types.ResourceChange {
	return modify(types.ResourceHealth, &v.Health, delta, 0, v.MaxHealth, reason)
}

// ModifyPlayerEnergy adds delta to energy, clamped to [0, MaxEnergy].
func ModifyPlayerEnergy(v *types.Vitals, delta int, reason string) types.ResourceChange {
	return modify(types.ResourceEnergy, &v.Energy, delta, 0, v.MaxEnergy, reason)
}

// ModifyExperiencePoints adds amount XP (floored at 0) and applies any
// level-ups it earns. It returns the change and the number of levels gained.
// Levels are never lost.
func ModifyExperiencePoints(p *types.PlayerResources, amount int, reason string) (types.ResourceChange, int) {
	change := modify(types.ResourceExperience, &p.Experience, amount, 0, -1, reason)

	target := LevelForXP(p.Experience)
	gained := 0
	for p.Level < target {
		p.Level++
		p.MaxHealth += LevelUpHealth
		p.MaxEnergy += LevelUpEnergy
		p.Health = min(p.Health+LevelUpHealth, p.MaxHealth)
		p.Energy = min(p.Energy+LevelUpEnergy, p.MaxEnergy)
		gained++
	}
	return change, gained
}

// LevelForXP returns the level reached with xp experience points.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return min(1+xp/XPPerLevel, MaxLevel)
}

// LevelModifiers returns the level-derived bonuses for the scene resolver.
func LevelModifiers(level int) types.LevelModifiers {
	if level < 1 {
		level = 1
	}
	return types.LevelModifiers{
		RollBonus:       (level - 1) / 2,
		CostReduction:   level - 1,
		TrustMultiplier: 1 + 0.1*float64(level-1),
	}
}

// Check panics if any resource is outside its valid range. A violation is a
// programming error.
func Check(v types.Vitals) {
	switch {
	case v.LightPoints < 0:
		panic("state: negative light points")
	case v.ShadowPoints < 0:
		panic("state: negative shadow points")
	case v.Health < 0 || v.Health > v.MaxHealth:
		panic("state: health out of range")
	case v.Energy < 0 || v.Energy > v.MaxEnergy:
		panic("state: energy out of range")
	}
}

// modify applies delta to *field and clamps to [lo, hi]; hi < 0 means
// unbounded above.
func modify(kind types.ResourceKind, field *int, delta, lo, hi int, reason string) types.ResourceChange {
	before := *field
	after := before + delta
	if after < lo {
		after = lo
	}
	if hi >= 0 && after > hi {
		after = hi
	}
	*field = after
	return types.ResourceChange{
		Kind:      kind,
		Requested: delta,
		Applied:   after - before,
		Before:    before,
		After:     after,
		Reason:    reason,
	}
}
