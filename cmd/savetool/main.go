// savetool inspects factoryd save files.
//
// Usage:
//
//	savetool <command> <file>
//
// Commands: info, verify, dump
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/game"
	"github.com/pn2s/factory/internal/grid"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/inventory"
	"github.com/pn2s/factory/internal/item"
	"github.com/pn2s/factory/internal/save"
	"github.com/pn2s/factory/internal/world"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	commands := map[string]func(string) error{
		"info":   runInfo,
		"verify": runVerify,
		"dump":   runDump,
	}
	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "missing save file argument")
		printUsage()
		os.Exit(1)
	}
	if err := fn(os.Args[2]); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: savetool <command> <file>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  info    Print signature, timestamp, bounds and a block census")
	fmt.Println("  verify  Fully decode the file; exit 1 on corruption")
	fmt.Println("  dump    List every non-empty cell, chunk by chunk")
}

// newDeps builds the registries the way factoryd does, so any file
// factoryd wrote resolves here.
func newDeps() (save.Deps, *ident.Pool) {
	pool := ident.NewPool()
	items := item.NewRegistry()
	blocks := block.NewRegistry(pool, items)
	game.RegisterContent(pool, items, blocks)
	return save.Deps{Pool: pool, Blocks: blocks, Items: items}, pool
}

func runInfo(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !save.Sniff(raw) {
		return fmt.Errorf("%s is not a save file", filepath.Base(path))
	}
	deps, pool := newDeps()
	snap, err := save.Decode(raw, deps)
	if err != nil {
		return err
	}

	_, _, w, h := snap.World.Bounds()
	used := 0
	for i := 0; i < snap.Player.Size(); i++ {
		if snap.Player.Item(i) != nil {
			used++
		}
	}

	census := make(map[ident.ID]int)
	total := 0
	snap.World.EachBlock(func(_ grid.Vec2i, b block.Block, _ grid.Direction) {
		census[b.ID()]++
		total++
	})

	fmt.Printf("file:     %s (%d bytes)\n", filepath.Base(path), len(raw))
	fmt.Printf("saved:    %s\n", snap.SavedAt.Format(time.RFC3339))
	fmt.Printf("world:    %dx%d chunks (%d loaded)\n", w, h, w*h)
	fmt.Printf("player:   %d/%d slots used\n", used, snap.Player.Size())
	fmt.Printf("checksum: %x\n", save.Checksum(raw))
	fmt.Printf("blocks:   %d\n", total)
	for _, id := range deps.Blocks.IDs() {
		if n := census[id]; n > 0 {
			fmt.Printf("  %-44s %d\n", pool.IDString(id), n)
		}
	}
	return nil
}

func runVerify(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	deps, _ := newDeps()
	if _, err := save.Decode(raw, deps); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	fmt.Printf("OK  %x\n", save.Checksum(raw))
	return nil
}

func runDump(path string) error {
	deps, pool := newDeps()
	snap, err := save.ReadFile(path, deps)
	if err != nil {
		return err
	}

	var cur grid.Vec2i
	first := true
	snap.World.EachBlock(func(pos grid.Vec2i, b block.Block, dir grid.Direction) {
		cc := grid.Vec2i{X: chunkOf(pos.X), Y: chunkOf(pos.Y)}
		if first || cc != cur {
			fmt.Printf("chunk %d,%d\n", cc.X, cc.Y)
			cur = cc
			first = false
		}
		line := fmt.Sprintf("  %5d,%5d  %-42s %-5s", pos.X, pos.Y, pool.IDString(b.ID()), dir)
		if inv := b.InventoryCapability(); inv != nil {
			line += "  " + itemsSummary(pool, inv)
		}
		fmt.Println(line)
	})
	return nil
}

func chunkOf(v int32) int32 {
	c := v / world.ChunkSize
	if v%world.ChunkSize < 0 {
		c--
	}
	return c
}

func itemsSummary(pool *ident.Pool, inv *inventory.Inventory) string {
	var parts []string
	for i := 0; i < inv.Size(); i++ {
		it := inv.Item(i)
		if it == nil {
			continue
		}
		if it.MetadataIsStackSize() {
			parts = append(parts, fmt.Sprintf("%s x%d", pool.IDString(it.ID()), it.Metadata()))
		} else {
			parts = append(parts, fmt.Sprintf("%s (wear %d)", pool.IDString(it.ID()), it.Metadata()))
		}
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, ", ")
}
