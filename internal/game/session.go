package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/codec"
	"github.com/pn2s/factory/internal/config"
	"github.com/pn2s/factory/internal/data"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
	"github.com/pn2s/factory/internal/metrics"
	"github.com/pn2s/factory/internal/persist"
	"github.com/pn2s/factory/internal/save"
	"github.com/pn2s/factory/internal/sched"
	"github.com/pn2s/factory/internal/world"
)

// maxTPS caps the reported rate at the nominal tick frequency.
const maxTPS = 20

// Deps carries everything a session needs. Catalog and Names may be
// nil.
type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Set
	Pool    *ident.Pool
	Items   *item.Registry
	Blocks  *block.Registry
	Queue   *sched.Queue
	Names   *data.Table
	Catalog *persist.Catalog
}

// Session owns one running world: tick state, task dispatch, the
// player inventory and autosave accounting. Every method runs on the
// simulation goroutine; background loads hand results back through
// the queue.
type Session struct {
	deps  Deps
	board *Board

	world  *world.World
	player *inventory.Inventory

	tick           uint64
	tps            float64
	autosavePeriod int
	autosaveLeft   int
}

func NewSession(deps Deps) *Session {
	sim := deps.Config.Simulation
	ttl := uint64(1)
	if sim.TickRate > 0 {
		ttl = uint64(sim.NoticeTTL / sim.TickRate)
		if ttl == 0 {
			ttl = 1
		}
	}
	period := 0
	if sim.AutosaveInterval > 0 && sim.TickRate > 0 {
		period = int(sim.AutosaveInterval / sim.TickRate)
	}
	return &Session{
		deps:           deps,
		board:          NewBoard(ttl, deps.Log),
		autosavePeriod: period,
		autosaveLeft:   period,
	}
}

func (s *Session) World() *world.World          { return s.world }
func (s *Session) Player() *inventory.Inventory { return s.player }
func (s *Session) Board() *Board                { return s.board }
func (s *Session) CurrentTick() uint64          { return s.tick }

// TPS reports the rate measured on the last tick.
func (s *Session) TPS() float64 { return s.tps }

// CreateWorld builds a fresh world of the configured chunk size and
// adopts it together with an empty player inventory.
func (s *Session) CreateWorld(width, height uint32) *world.World {
	w := world.New(s.deps.Pool, width, height)
	s.AdoptWorld(w, nil)
	return w
}

// AdoptWorld installs w and player as the running state. The player
// inventory is brought to the standard slot count and wired to the
// notice board; every cell gets its Init pass.
func (s *Session) AdoptWorld(w *world.World, player *inventory.Inventory) {
	if player == nil {
		player = inventory.New(PlayerSlots, nil)
	}
	player.Resize(PlayerSlots)
	player.SetNotifier(s.postItemDelta)
	s.world = w
	s.player = player
	w.Init()
}

func (s *Session) postItemDelta(it item.Item, delta int) {
	if delta == 0 {
		return
	}
	sign := "+"
	if delta < 0 {
		sign = "-"
		delta = -delta
	}
	name := it.Name()
	if s.deps.Names != nil {
		name = s.deps.Names.NameFor(s.deps.Pool, it.ID())
	}
	s.board.Post(s.tick, fmt.Sprintf("%s%d %s", sign, delta, name))
}

// RunTick executes one full simulation step: the world update pass,
// the tick marker, a drain to completion, board expiry and the rate
// accounting.
func (s *Session) RunTick() {
	start := time.Now()

	if s.world != nil {
		s.world.Update(s.deps.Queue)
	}
	s.deps.Queue.Schedule(sched.TickMark{})
	s.drain()
	s.board.Expire(s.tick)
	s.tick++

	elapsed := time.Since(start)
	s.deps.Metrics.TicksTotal.Inc()
	s.deps.Metrics.TickDuration.Observe(elapsed.Seconds())

	ms := elapsed.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	tps := 1000 / float64(ms)
	if tps > maxTPS {
		tps = maxTPS
	}
	s.tps = tps
	s.deps.Metrics.TPS.Set(tps)

	s.countdownAutosave()
}

// drain empties the queue, including tasks scheduled by the tasks it
// runs, so every transfer settles before the tick ends.
func (s *Session) drain() {
	for {
		tasks := s.deps.Queue.Drain()
		if len(tasks) == 0 {
			return
		}
		s.deps.Metrics.TasksDrained.Add(float64(len(tasks)))
		for _, t := range tasks {
			s.dispatch(t)
		}
	}
}

func (s *Session) dispatch(t sched.Task) {
	switch t := t.(type) {
	case sched.UpdateBlock:
		if s.world != nil {
			t.Fn(s.world, t.Meta)
		}
	case sched.TickMark:
		// marker only; draining one is the observable floor of a tick
	case sched.OpenWorld:
		s.loadAsync(t.Path)
	case sched.WorldReady:
		s.AdoptWorld(t.World, t.Player)
		s.board.Post(s.tick, "world loaded")
		s.deps.Log.Info("world loaded", zap.Uint64("tick", s.tick))
	case sched.LoadFailed:
		s.board.Post(s.tick, "load failed: "+t.Err.Error())
		s.deps.Log.Error("world load failed", zap.Error(t.Err))
	case sched.SaveWorld:
		if err := s.Save(t.Path); err != nil {
			s.deps.Log.Error("world save failed", zap.String("path", t.Path), zap.Error(err))
		}
	}
}

// loadAsync decodes the save on a background goroutine. The result
// comes back as a WorldReady or LoadFailed task; nothing else is
// shared with the simulation goroutine.
func (s *Session) loadAsync(path string) {
	deps := save.Deps{Pool: s.deps.Pool, Blocks: s.deps.Blocks, Items: s.deps.Items}
	queue := s.deps.Queue
	go func() {
		snap, err := save.ReadFile(path, deps)
		if err != nil {
			queue.Schedule(sched.LoadFailed{Err: err})
			return
		}
		queue.Schedule(sched.WorldReady{World: snap.World, Player: snap.Player})
	}()
}

// Save writes the running world to path and, when a catalog is
// attached, archives the encoded bytes off-thread.
func (s *Session) Save(path string) error {
	if s.world == nil {
		return errors.New("no world to save")
	}
	snap := &save.Snapshot{
		SavedAt: time.Now(),
		World:   s.world,
		Player:  s.player,
	}
	if err := save.WriteFile(path, snap, s.deps.Pool); err != nil {
		s.deps.Metrics.SavesTotal.WithLabelValues("error").Inc()
		return err
	}
	s.deps.Metrics.SavesTotal.WithLabelValues("ok").Inc()
	s.deps.Log.Info("world saved", zap.String("path", path))
	s.archive(snap)
	return nil
}

func (s *Session) archive(snap *save.Snapshot) {
	if s.deps.Catalog == nil {
		return
	}
	w := codec.NewWriter(s.deps.Pool)
	save.Encode(w, snap)
	raw := w.Bytes()

	count := 0
	s.world.EachBlock(func(grid.Vec2i, block.Block, grid.Direction) { count++ })
	_, _, width, height := s.world.Bounds()
	meta := persist.SaveMeta{
		SavedAt: snap.SavedAt,
		Width:   width,
		Height:  height,
		Blocks:  count,
	}

	catalog := s.deps.Catalog
	log := s.deps.Log
	name := s.deps.Config.Game.Name
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := catalog.RecordSave(ctx, name, raw, meta); err != nil {
			log.Warn("save catalog insert failed", zap.Error(err))
		}
	}()
}

func (s *Session) countdownAutosave() {
	if s.autosavePeriod <= 0 || s.world == nil {
		return
	}
	s.autosaveLeft--
	if s.autosaveLeft > 0 {
		return
	}
	s.autosaveLeft = s.autosavePeriod
	if err := s.Save(s.deps.Config.Game.SavePath); err != nil {
		s.deps.Log.Error("autosave failed", zap.Error(err))
		return
	}
	s.board.Post(s.tick, "autosaved")
}

// Place puts the block item in the player's slot into the world and
// consumes one unit. Reported per placement in the metrics.
func (s *Session) Place(slot int, pos grid.Vec2i, dir grid.Direction) bool {
	if s.world == nil {
		return false
	}
	if !s.world.PlaceFromInventory(s.player, slot, pos, dir, s.deps.Queue) {
		return false
	}
	s.deps.Metrics.BlocksPlaced.Inc()
	return true
}

// Dismantle removes the block at pos, refunding its contents and its
// own item into the player inventory.
func (s *Session) Dismantle(pos grid.Vec2i) bool {
	if s.world == nil {
		return false
	}
	if !s.world.DismantleAt(pos, s.deps.Queue, s.player) {
		return false
	}
	s.deps.Metrics.BlocksRemoved.Inc()
	return true
}

// Interact routes a player interaction to the block at pos. False
// when the cell is out of bounds or the block has nothing to offer.
func (s *Session) Interact(pos grid.Vec2i) bool {
	if s.world == nil {
		return false
	}
	b, meta, ok := s.world.BlockAt(pos)
	if !ok || !b.SupportsInteraction() {
		return false
	}
	b.Interact(s.world, s.deps.Queue, meta, s.player)
	return true
}
