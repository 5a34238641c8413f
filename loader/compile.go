// Package loader loads Lua game content into Go structs at compile time.
// The Lua VM is discarded after loading; no Lua runs during play.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/types"
)

// rawDef holds an ID-keyed constructor table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
	order int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// forEachArray calls f for each array element of tbl in index order.
func forEachArray(tbl *lua.LTable, f func(v lua.LValue)) {
	for i := 1; i <= tbl.MaxN(); i++ {
		f(tbl.RawGetInt(i))
	}
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Scenes: map[string]types.SceneDef{},
	}

	// Game.
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	// Scenes, in source order.
	for _, raw := range coll.scenes {
		if _, dup := defs.Scenes[raw.id]; dup {
			return nil, fmt.Errorf("duplicate scene %q", raw.id)
		}
		defs.Scenes[raw.id] = compileScene(raw)
	}
	defs.Order = defs.SortedScenes()

	// Shared abilities.
	abilities := map[string]types.Ability{}
	for _, raw := range coll.abilities {
		if _, dup := abilities[raw.id]; dup {
			return nil, fmt.Errorf("duplicate ability %q", raw.id)
		}
		abilities[raw.id] = compileAbility(raw.id, raw.table)
	}

	// Shadows.
	seen := map[string]bool{}
	for _, raw := range coll.shadows {
		if seen[raw.id] {
			return nil, fmt.Errorf("duplicate shadow %q", raw.id)
		}
		seen[raw.id] = true
		sh, err := compileShadow(raw, abilities)
		if err != nil {
			return nil, fmt.Errorf("compiling shadow %s: %w", raw.id, err)
		}
		defs.Shadows = append(defs.Shadows, sh)
	}

	// Handlers.
	for _, raw := range coll.handlers {
		defs.Handlers = append(defs.Handlers, compileHandler(raw))
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Start:   getString(tbl, "start"),
		Intro:   getString(tbl, "intro"),
	}
}

func compileScene(raw rawDef) types.SceneDef {
	tbl := raw.table
	sc := types.SceneDef{
		ID:           raw.id,
		Type:         types.SceneType(getString(tbl, "type")),
		DC:           getInt(tbl, "dc"),
		Text:         getString(tbl, "text"),
		SuccessText:  getString(tbl, "success"),
		FailureText:  getString(tbl, "failure"),
		ShadowType:   getString(tbl, "shadow"),
		LPReward:     getInt(tbl, "light"),
		SPPenalty:    getInt(tbl, "shadow_penalty"),
		EnergyCost:   getInt(tbl, "energy_cost"),
		EnergyReward: getInt(tbl, "energy_reward"),
		XPReward:     getInt(tbl, "xp"),
		TrustChange:  getInt(tbl, "trust"),
		Next:         getString(tbl, "next"),
		SourceOrder:  raw.order,
	}
	if sc.Type == "" {
		sc.Type = types.SceneExploration
	}
	if choices := getTable(tbl, "choices"); choices != nil {
		forEachArray(choices, func(v lua.LValue) {
			if ct, ok := v.(*lua.LTable); ok {
				sc.Choices = append(sc.Choices, compileChoice(ct))
			}
		})
	}
	return sc
}

func compileChoice(tbl *lua.LTable) types.Choice {
	ch := types.Choice{
		Text: getString(tbl, "text"),
		DC:   getInt(tbl, "dc"),
		Next: getString(tbl, "next"),
	}
	if req := getTable(tbl, "requires"); req != nil {
		ch.Requires = compileConditions(req)
	}
	return ch
}

func compileAbility(id string, tbl *lua.LTable) types.Ability {
	ab := types.Ability{
		ID:            id,
		Name:          getString(tbl, "name"),
		Kind:          types.AbilityKind(getString(tbl, "kind")),
		Power:         getInt(tbl, "power"),
		Duration:      getInt(tbl, "duration"),
		Multiplier:    getNumber(tbl, "multiplier"),
		CooldownTurns: getInt(tbl, "cooldown"),
		Message:       getString(tbl, "message"),
	}
	if ab.Name == "" {
		ab.Name = id
	}
	return ab
}

// compileShadow resolves ability references: a string names a shared
// Ability, a table is an inline ability with its own id field.
func compileShadow(raw rawDef, shared map[string]types.Ability) (types.ShadowDef, error) {
	tbl := raw.table
	def := types.ShadowDef{
		ID:         raw.id,
		Name:       getString(tbl, "name"),
		Type:       getString(tbl, "type"),
		MaxHP:      getInt(tbl, "hp"),
		HPPerLevel: getInt(tbl, "hp_per_level"),
		Attack:     getInt(tbl, "attack"),
		Weight:     getInt(tbl, "weight"),
		Insight:    getString(tbl, "insight"),
	}
	if def.Name == "" {
		def.Name = raw.id
	}
	if reward := getTable(tbl, "reward"); reward != nil {
		def.Reward = types.VictoryReward{LP: getInt(reward, "light"), XP: getInt(reward, "xp")}
	}

	var err error
	if abs := getTable(tbl, "abilities"); abs != nil {
		forEachArray(abs, func(v lua.LValue) {
			switch a := v.(type) {
			case lua.LString:
				ab, ok := shared[string(a)]
				if !ok && err == nil {
					err = fmt.Errorf("undefined ability %q", string(a))
				}
				def.Abilities = append(def.Abilities, ab)
			case *lua.LTable:
				def.Abilities = append(def.Abilities, compileAbility(getString(a, "id"), a))
			}
		})
	}
	return def, err
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	forEachArray(tbl, func(v lua.LValue) {
		if condTbl, ok := v.(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	})
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	c := types.Condition{
		Type:  getString(tbl, "type"),
		Value: getInt(tbl, "value"),
		Flag:  getString(tbl, "flag"),
	}
	if c.Type == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			c.Inner = &inner
		}
	}
	return c
}

func compileHandler(raw rawDef) types.EventHandler {
	handler := types.EventHandler{
		EventType: raw.id,
		Say:       getString(raw.table, "say"),
	}
	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		handler.Conditions = compileConditions(condTbl)
	}
	return handler
}

// sortedLuaFiles returns .lua files in a directory, with game.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
