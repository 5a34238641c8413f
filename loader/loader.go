package loader

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/shadowcore/engine/state"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game      *lua.LTable
	scenes    []rawDef
	shadows   []rawDef
	abilities []rawDef
	handlers  []rawDef
	order     int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// Load reads all .lua files from dir, compiles them into game definitions,
// validates references, and returns the immutable Defs. The Lua VM is
// discarded after loading.
func Load(dir string) (*state.Defs, error) {
	defs, err := LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	return defs, nil
}

// LoadFS is Load over the top level of an arbitrary file system, such as
// an embed.FS holding bundled content.
func LoadFS(fsys fs.FS) (*state.Defs, error) {
	// Discover .lua files.
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading game directory: %w", err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found")
	}

	// Sort: game.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// Open safe libs only.
	openSafeLibs(L)

	// Sandbox: remove globals that escape the VM or break determinism.
	sandbox(L)

	// Register API.
	coll := &collector{}
	registerAPI(L, coll)

	// Execute each file.
	for _, f := range luaFiles {
		if err := runFile(L, fsys, f); err != nil {
			return nil, err
		}
	}

	// Compile.
	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling game data: %w", err)
	}
	// Validate.
	if err := validate(defs); err != nil {
		return nil, err
	}

	slog.Debug("content loaded",
		"title", defs.Game.Title,
		"files", len(luaFiles),
		"scenes", len(defs.Scenes),
		"shadows", len(defs.Shadows),
		"handlers", len(defs.Handlers))
	return defs, nil
}

func runFile(L *lua.LState, fsys fs.FS, name string) error {
	src, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	fn, err := L.Load(bytes.NewReader(src), path.Base(name))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("executing %s: %w", name, err)
	}
	return nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM or break determinism.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	} {
		L.SetGlobal(name, lua.LNil)
	}

	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
