// Package scripting runs the Lua world generation scripts. A script
// defines generate(width, height) and lays out the starting world
// through the place and noise2 builtins; the coordinates it works in
// run from (0, 0) to (width-1, height-1) and are translated onto the
// world bounds when applied.
package scripting

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aquilax/go-perlin"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/config"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/world"
)

//go:embed builtin.lua
var builtinScript string

// Placement is one block the generator asked for, in script
// coordinates.
type Placement struct {
	X, Y int32
	Kind string
	Dir  grid.Direction
}

// Engine wraps a single gopher-lua VM for world generation.
// Single-goroutine access only.
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	noise *perlin.Perlin
	seed  int64
	scale float64
	cmds  []Placement
}

// New creates a Lua engine and loads cfg.Script, or the built-in
// generator when none is configured.
func New(cfg config.ScenarioConfig, log *zap.Logger) (*Engine, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	scale := cfg.Scale
	if scale <= 0 {
		scale = 12
	}

	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	e := &Engine{
		vm:    vm,
		log:   log,
		noise: perlin.NewPerlin(2, 2, 3, seed),
		seed:  seed,
		scale: scale,
	}

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("GEN_THRESHOLD", lua.LNumber(cfg.Threshold))
	vm.SetGlobal("place", vm.NewFunction(e.luaPlace))
	vm.SetGlobal("noise2", vm.NewFunction(e.luaNoise2))

	if cfg.Script != "" {
		if err := vm.DoFile(cfg.Script); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scenario %s: %w", cfg.Script, err)
		}
		log.Debug("loaded scenario script", zap.String("file", cfg.Script))
	} else {
		if err := vm.DoString(builtinScript); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load builtin scenario: %w", err)
		}
	}
	return e, nil
}

// Seed returns the noise seed in effect.
func (e *Engine) Seed() int64 { return e.seed }

// Generate runs the script's generate(width, height) and returns the
// placements it recorded.
func (e *Engine) Generate(width, height uint32) ([]Placement, error) {
	fn := e.vm.GetGlobal("generate")
	if fn == lua.LNil {
		return nil, errors.New("scenario defines no generate function")
	}

	e.cmds = nil
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(width), lua.LNumber(height)); err != nil {
		e.cmds = nil
		return nil, fmt.Errorf("generate: %w", err)
	}

	out := e.cmds
	e.cmds = nil
	return out, nil
}

func (e *Engine) luaPlace(L *lua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	kind := L.CheckString(3)
	dir := L.OptInt(4, 0)
	e.cmds = append(e.cmds, Placement{
		X:    int32(x),
		Y:    int32(y),
		Kind: kind,
		Dir:  grid.DirectionFrom(byte(dir)),
	})
	return 0
}

func (e *Engine) luaNoise2(L *lua.LState) int {
	x := float64(L.CheckNumber(1))
	y := float64(L.CheckNumber(2))
	L.Push(lua.LNumber(e.noise.Noise2D(x/e.scale, y/e.scale)))
	return 1
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// Apply installs placements onto w, resolving kinds through the block
// registry. A kind may be bare ("coal") for the built-in namespace or
// qualified ("mods:crusher"). Unknown kinds and rejected placements
// are skipped with a warning.
func Apply(w *world.World, placements []Placement, blocks *block.Registry, pool *ident.Pool, sched block.Scheduler, log *zap.Logger) int {
	min, _, _ := w.BlockBounds()
	placed := 0
	for _, p := range placements {
		proto, ok := blocks.Lookup(parseKind(pool, p.Kind))
		if !ok {
			log.Warn("scenario places unknown block", zap.String("kind", p.Kind))
			continue
		}
		pos := grid.Vec2i{X: min.X + p.X, Y: min.Y + p.Y}
		if !w.PlaceBlock(pos, proto.Clone(), p.Dir, sched) {
			log.Warn("scenario placement rejected",
				zap.String("kind", p.Kind),
				zap.Int32("x", p.X), zap.Int32("y", p.Y))
			continue
		}
		placed++
	}
	return placed
}

func parseKind(pool *ident.Pool, kind string) ident.ID {
	if ns, key, ok := strings.Cut(kind, ":"); ok {
		return pool.ID(ns, key)
	}
	return pool.ID(block.Namespace, kind)
}
