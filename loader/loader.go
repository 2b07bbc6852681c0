package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/regioncore/ctxlog"
	"github.com/nathoo/regioncore/engine/sandbox"
	"github.com/nathoo/regioncore/engine/state"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game         *lua.LTable
	regions      []rawRecord
	terrainTags  []rawRecord
	classes      []rawRecord
	commonEvents []rawRecord
	maps         []rawRecord
	texts        []rawText
	dataFiles    []rawDataFile
}

// Load reads all .lua files from dir, compiles them into game definitions,
// validates references, and returns the immutable Defs. The Lua VM is
// discarded after loading. Validation warnings go to the context logger.
func Load(ctx context.Context, dir string) (*state.Defs, error) {
	// Discover .lua files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// Sort: game.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	L := sandbox.New()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling game data: %w", err)
	}

	if err := validate(ctx, defs); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("game loaded",
		"dir", dir,
		"files", len(luaFiles),
		"maps", len(defs.Maps),
		"regions", len(defs.Regions),
		"terrain_tags", len(defs.TerrainTags))
	return defs, nil
}
