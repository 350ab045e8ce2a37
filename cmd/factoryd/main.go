// factoryd runs the factory simulation as a daemon: it opens or
// creates a world, ticks it at the configured rate, and saves on
// shutdown.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/config"
	"github.com/pn2s/factory/internal/data"
	"github.com/pn2s/factory/internal/game"
	"github.com/pn2s/factory/internal/ident"
	"github.com/pn2s/factory/internal/item"
	"github.com/pn2s/factory/internal/metrics"
	"github.com/pn2s/factory/internal/persist"
	"github.com/pn2s/factory/internal/save"
	"github.com/pn2s/factory/internal/sched"
	"github.com/pn2s/factory/internal/scripting"
	"github.com/pn2s/factory/internal/world"
)

const version = "v0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Printf("\033[36;1m  │\033[0m             factoryd  %s              \033[36;1m│\033[0m\n", version)
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mgame:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main daemon logic ──────────────────────────────────────────────

func run() error {
	cfgPath := flag.String("config", "config/factoryd.toml", "TOML configuration file")
	flag.Parse()

	cfg, fromFile, err := loadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting",
		zap.String("version", version),
		zap.String("session_id", uuid.NewString()))

	printBanner(cfg.Game.Name)

	printSection("configuration")
	if fromFile {
		printOK(*cfgPath)
	} else {
		printOK("built-in defaults (no config file)")
	}
	fmt.Println()

	// Save catalog, only when a database is configured.
	var catalog *persist.Catalog
	if cfg.Database.Enabled {
		printSection("save catalog")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		catalog, err = persist.Open(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		if err := catalog.Migrate(ctx); err != nil {
			cancel()
			catalog.Close()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		defer catalog.Close()
		printOK("PostgreSQL connected, migrations applied")
		fmt.Println()
	}

	// Content and display data.
	printSection("data")
	names, err := data.LoadTable(cfg.Data.Tables...)
	if err != nil {
		return fmt.Errorf("load display tables: %w", err)
	}
	printStat("display entries", names.Len())

	pool := ident.NewPool()
	items := item.NewRegistry()
	blocks := block.NewRegistry(pool, items)
	game.RegisterContent(pool, items, blocks)
	printStat("block kinds", blocks.Len())
	printStat("item kinds", items.Len())
	fmt.Println()

	queue := sched.NewQueue()
	set := metrics.NewSet()
	session := game.NewSession(game.Deps{
		Config:  cfg,
		Log:     log,
		Metrics: set,
		Pool:    pool,
		Items:   items,
		Blocks:  blocks,
		Queue:   queue,
		Names:   names,
		Catalog: catalog,
	})

	// Open the existing save in the background, or create a fresh
	// world and run the scenario over it.
	printSection("world")
	if sniffSave(cfg.Game.SavePath) {
		queue.Schedule(sched.OpenWorld{Path: cfg.Game.SavePath})
		printOK(fmt.Sprintf("loading %s in the background", cfg.Game.SavePath))
	} else {
		w := session.CreateWorld(cfg.World.Width, cfg.World.Height)
		_, bw, bh := w.BlockBounds()
		printOK(fmt.Sprintf("created a %dx%d block world", bw, bh))
		placed, err := generateScenario(cfg.Scenario, w, blocks, pool, queue, log)
		if err != nil {
			return err
		}
		printStat("scenario blocks", placed)
	}
	fmt.Println()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = set.Serve(cfg.Metrics.Bind, log)
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("ready")
	if metricsSrv != nil {
		printReady("metrics on http://" + cfg.Metrics.Bind + "/metrics")
	}
	printReady(fmt.Sprintf("simulation loop started (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			session.RunTick()
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			if session.World() != nil {
				if err := session.Save(cfg.Game.SavePath); err != nil {
					log.Error("final save failed", zap.Error(err))
				}
			}
			if metricsSrv != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := metricsSrv.Shutdown(ctx); err != nil {
					log.Warn("metrics shutdown", zap.Error(err))
				}
				cancel()
			}
			log.Info("stopped")
			return nil
		}
	}
}

// loadConfig reads path, falling back to the built-in defaults when
// no file exists there. fromFile reports which one happened.
func loadConfig(path string) (cfg *config.Config, fromFile bool, err error) {
	cfg, err = config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
		cfg.Game.StartTime = time.Now().Unix()
		return cfg, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// sniffSave reports whether path starts with the save signature.
func sniffSave(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, len(save.Signature))
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return save.Sniff(head)
}

// generateScenario lays the starting resources over a fresh world.
func generateScenario(cfg config.ScenarioConfig, w *world.World, blocks *block.Registry, pool *ident.Pool, queue *sched.Queue, log *zap.Logger) (int, error) {
	eng, err := scripting.New(cfg, log)
	if err != nil {
		return 0, fmt.Errorf("scenario: %w", err)
	}
	defer eng.Close()

	_, bw, bh := w.BlockBounds()
	placements, err := eng.Generate(bw, bh)
	if err != nil {
		return 0, fmt.Errorf("scenario: %w", err)
	}
	placed := scripting.Apply(w, placements, blocks, pool, queue, log)
	log.Info("scenario generated",
		zap.Int64("seed", eng.Seed()),
		zap.Int("blocks", placed))
	return placed, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
