package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	// Scene "id" { ... } is curried: Scene("id") returns a function that takes a table.
	L.SetGlobal("Scene", curried(L, func(id string, tbl *lua.LTable) {
		coll.scenes = append(coll.scenes, rawDef{id: id, table: tbl, order: coll.nextSourceOrder()})
	}))

	// Shadow "id" { ... } defines an enemy archetype.
	L.SetGlobal("Shadow", curried(L, func(id string, tbl *lua.LTable) {
		coll.shadows = append(coll.shadows, rawDef{id: id, table: tbl, order: coll.nextSourceOrder()})
	}))

	// Ability "id" { ... } defines a shared ability that shadows reference by ID.
	L.SetGlobal("Ability", curried(L, func(id string, tbl *lua.LTable) {
		coll.abilities = append(coll.abilities, rawDef{id: id, table: tbl, order: coll.nextSourceOrder()})
	}))

	// On "event_type" { conditions = {...}, say = "..." }
	L.SetGlobal("On", curried(L, func(eventType string, tbl *lua.LTable) {
		coll.handlers = append(coll.handlers, rawDef{id: eventType, table: tbl, order: coll.nextSourceOrder()})
	}))
}

// curried builds a Name("id") { ... } constructor.
func curried(L *lua.LState, collect func(id string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			collect(id, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}

func registerConditionHelpers(L *lua.LState) {
	// MinLevel(3), MinLight(2), ...: numeric thresholds.
	for name, typ := range map[string]string{
		"MinLevel":  "min_level",
		"MinLight":  "min_light",
		"MinShadow": "min_shadow",
		"MinEnergy": "min_energy",
		"MinTrust":  "min_trust",
	} {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			value := L.CheckNumber(1)
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(typ))
			tbl.RawSetString("value", value)
			L.Push(tbl)
			return 1
		}))
	}

	// FlagSet("flag")
	L.SetGlobal("FlagSet", L.NewFunction(func(L *lua.LState) int {
		L.Push(flagCondition(L, L.CheckString(1)))
		return 1
	}))

	// Defeated("shadow_id"): the shadow has been beaten at least once.
	L.SetGlobal("Defeated", L.NewFunction(func(L *lua.LState) int {
		L.Push(flagCondition(L, "defeated:"+L.CheckString(1)))
		return 1
	}))

	// Completed("scene_id"): the scene has been resolved successfully.
	L.SetGlobal("Completed", L.NewFunction(func(L *lua.LState) int {
		L.Push(flagCondition(L, "done:"+L.CheckString(1)))
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}

func flagCondition(L *lua.LState, flag string) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString("flag_set"))
	tbl.RawSetString("flag", lua.LString(flag))
	return tbl
}
