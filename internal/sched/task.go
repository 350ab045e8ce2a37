package sched

import (
	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/world"
)

// Task is one queued unit of deferred work. The kinds form a closed
// set; the session switches over them while draining.
type Task interface{ isTask() }

// UpdateBlock runs deferred block work against the world.
type UpdateBlock struct {
	Fn   block.UpdateFn
	Meta grid.BlockMeta
}

// TickMark separates one scheduling pass from the next. Draining one
// has no effect.
type TickMark struct{}

// OpenWorld asks the session to load a save file in the background.
type OpenWorld struct {
	Path string
}

// WorldReady delivers a world loaded in the background, together with
// the player inventory stored alongside it.
type WorldReady struct {
	World  *world.World
	Player *inventory.Inventory
}

// LoadFailed reports a background load that could not complete.
type LoadFailed struct {
	Err error
}

// SaveWorld asks the session to write the running world to disk.
type SaveWorld struct {
	Path string
}

func (UpdateBlock) isTask() {}
func (TickMark) isTask()    {}
func (OpenWorld) isTask()   {}
func (WorldReady) isTask()  {}
func (LoadFailed) isTask()  {}
func (SaveWorld) isTask()   {}
