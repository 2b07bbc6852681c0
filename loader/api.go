package loader

import (
	"github.com/nathoo/regioncore/types"
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors, constants and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstants(L)
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstants(L *lua.LState) {
	strs := map[string]string{
		"ALL":          string(types.CollisionAll),
		"UP":           string(types.CollisionUp),
		"RIGHT":        string(types.CollisionRight),
		"DOWN":         string(types.CollisionDown),
		"LEFT":         string(types.CollisionLeft),
		"LADDER":       string(types.AttrLadder),
		"BUSH":         string(types.AttrBush),
		"COUNTER":      string(types.AttrCounter),
		"DAMAGE_FLOOR": string(types.AttrDamageFloor),
	}
	for name, v := range strs {
		L.SetGlobal(name, lua.LString(v))
	}
	L.SetGlobal("ON_ENTER", lua.LNumber(types.TriggerOnEnter))
	L.SetGlobal("WHILE_INSIDE", lua.LNumber(types.TriggerWhileInside))
	L.SetGlobal("ON_LEAVE", lua.LNumber(types.TriggerOnLeave))
}

// curried returns a constructor taking an id that returns a function
// taking the body table: Region(3) { ... }.
func curried(L *lua.LState, add func(id lua.LValue, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckAny(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			add(id, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	L.SetGlobal("Region", curried(L, func(id lua.LValue, tbl *lua.LTable) {
		coll.regions = append(coll.regions, rawRecord{id: id, table: tbl})
	}))
	L.SetGlobal("TerrainTag", curried(L, func(id lua.LValue, tbl *lua.LTable) {
		coll.terrainTags = append(coll.terrainTags, rawRecord{id: id, table: tbl})
	}))
	L.SetGlobal("Class", curried(L, func(id lua.LValue, tbl *lua.LTable) {
		coll.classes = append(coll.classes, rawRecord{id: id, table: tbl})
	}))
	L.SetGlobal("CommonEvent", curried(L, func(id lua.LValue, tbl *lua.LTable) {
		coll.commonEvents = append(coll.commonEvents, rawRecord{id: id, table: tbl})
	}))
	L.SetGlobal("Map", curried(L, func(id lua.LValue, tbl *lua.LTable) {
		coll.maps = append(coll.maps, rawRecord{id: id, table: tbl})
	}))

	// Text "id" "body", curried on strings.
	L.SetGlobal("Text", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.texts = append(coll.texts, rawText{id: id, text: L.CheckString(1)})
			return 0
		}))
		return 1
	}))

	// DataFile("property", "file")
	L.SetGlobal("DataFile", L.NewFunction(func(L *lua.LState) int {
		coll.dataFiles = append(coll.dataFiles, rawDataFile{
			property: L.CheckString(1),
			file:     L.CheckString(2),
		})
		return 0
	}))

	// MapEvent { id = 1, name = "Rat", x = 2, y = 2, route = "LR" }, passed through.
	L.SetGlobal("MapEvent", L.NewFunction(func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	}))

	// Trait(code, data_id, value)
	L.SetGlobal("Trait", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("code", lua.LString(L.CheckString(1)))
		tbl.RawSetString("data_id", lua.LNumber(L.OptInt(2, 0)))
		tbl.RawSetString("value", lua.LNumber(L.OptNumber(3, 1)))
		L.Push(tbl)
		return 1
	}))

	trigger := func(t types.Trigger) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("id", lua.LNumber(L.CheckInt(1)))
			tbl.RawSetString("trigger", lua.LNumber(t))
			L.Push(tbl)
			return 1
		})
	}
	L.SetGlobal("OnEnter", trigger(types.TriggerOnEnter))
	L.SetGlobal("WhileInside", trigger(types.TriggerWhileInside))
	L.SetGlobal("OnLeave", trigger(types.TriggerOnLeave))
}

// typed builds a {type = name, key = arg...} table from positional args.
func typed(L *lua.LState, name string, keys ...string) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(name))
		for i, k := range keys {
			tbl.RawSetString(k, L.CheckAny(i+1))
		}
		L.Push(tbl)
		return 1
	})
}

func registerConditionHelpers(L *lua.LState) {
	L.SetGlobal("SwitchOn", typed(L, "switch_on", "switch"))
	L.SetGlobal("SwitchOff", typed(L, "switch_off", "switch"))
	L.SetGlobal("VarGt", typed(L, "var_gt", "variable", "value"))
	L.SetGlobal("VarLt", typed(L, "var_lt", "variable", "value"))
	L.SetGlobal("VarIs", typed(L, "var_is", "variable", "value"))
	L.SetGlobal("InRegion", typed(L, "in_region", "region"))
	L.SetGlobal("OnTerrain", typed(L, "on_terrain", "terrain"))

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

func registerEffectHelpers(L *lua.LState) {
	L.SetGlobal("Say", typed(L, "say", "text"))
	L.SetGlobal("SetVar", typed(L, "set_var", "variable", "value"))
	L.SetGlobal("AddVar", typed(L, "add_var", "variable", "amount"))
	L.SetGlobal("ChangeText", typed(L, "change_text", "id", "text"))
	L.SetGlobal("Transfer", typed(L, "transfer", "map", "x", "y"))
	L.SetGlobal("Heal", typed(L, "heal", "amount"))
	L.SetGlobal("Stop", typed(L, "stop"))

	// SetSwitch(id, value): value defaults to true.
	L.SetGlobal("SetSwitch", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("set_switch"))
		tbl.RawSetString("switch", lua.LNumber(L.CheckInt(1)))
		tbl.RawSetString("value", lua.LBool(L.OptBool(2, true)))
		L.Push(tbl)
		return 1
	}))
}
