package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/width"

	"github.com/l1jgo/guestsync/internal/avatar"
	"github.com/l1jgo/guestsync/internal/config"
	"github.com/l1jgo/guestsync/internal/core/event"
	coresys "github.com/l1jgo/guestsync/internal/core/system"
	"github.com/l1jgo/guestsync/internal/data"
	"github.com/l1jgo/guestsync/internal/geom"
	"github.com/l1jgo/guestsync/internal/persist"
	"github.com/l1jgo/guestsync/internal/physics"
	"github.com/l1jgo/guestsync/internal/scene"
	"github.com/l1jgo/guestsync/internal/scripting"
	"github.com/l1jgo/guestsync/internal/system"
	"github.com/l1jgo/guestsync/internal/world"
)

// statusEvery is how many ticks pass between session status lines.
const statusEvery = 1200

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
	fmt.Println("\033[36;1m  │\033[0m             guestsync  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      remote participant reconciler        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1msession:\033[0m %s\n\n", name)
}

// cells is the terminal width of s; East Asian wide runes take two columns.
func cells(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := max(46-cells(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-cells(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Host ──────────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/guestsync.toml"
	if p := os.Getenv("GUESTSYNC_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Session.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Replicated state backend
	printSection("replicated state")
	store, err := newBackend(ctx, cfg.Store, log)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer store.Close()
	printOK(fmt.Sprintf("%s backend ready", cfg.Store.Backend))
	fmt.Println()

	// 4. Data tables and scripts
	printSection("data")
	var spawns *data.SpawnTable
	if cfg.Spawn.Table != "" {
		spawns, err = data.LoadSpawnTable(cfg.Spawn.Table)
		if err != nil {
			return fmt.Errorf("spawn table: %w", err)
		}
		printStat("spawn points", spawns.Count())
	} else {
		printOK("default spawn origin")
	}

	deps := avatar.Deps{Log: log}
	if cfg.Scripting.Dir != "" {
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		deps.Labels = engine
		printOK("lua label hooks loaded")
	}
	fmt.Println()

	// 5. Engines
	graph := scene.NewGraph()
	sim := physics.NewSim()
	deps.Scene, deps.Visuals, deps.Physics = graph, graph, sim

	bus := event.NewBus()
	roster := world.NewRoster(world.RosterConfig{
		Deps:          deps,
		Spawns:        spawns,
		DefaultOrigin: geom.V3(cfg.Spawn.OriginX, cfg.Spawn.OriginY, cfg.Spawn.OriginZ),
		Debug:         cfg.Session.Debug,
		ErrorLogEvery: cfg.Sync.ErrorLogEvery,
	}, log)

	// 6. Systems
	done := make(chan struct{})
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))

	var peers *system.PeerSimulator
	if cfg.Session.DemoPeers > 0 {
		peers = system.NewPeerSimulator(bus, store.open, cfg.Session.DemoPeers, 200, log)
		runner.Register(peers)
	}
	runner.Register(system.NewRosterSystem(bus, roster, log, func() { close(done) }))
	event.Subscribe(bus, func(ev event.ParticipantLeft) { store.forget(ev.ID) })

	syncSys, err := system.NewSyncSystem(roster, cfg.Sync.Workers, log)
	if err != nil {
		return err
	}
	defer syncSys.Close()
	runner.Register(syncSys)

	var snapshots *system.PersistenceSystem
	if cfg.Persist.Enabled {
		printSection("database")
		db, err := persist.NewDB(ctx, cfg.Persist, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("schema version", int(version))
		fmt.Println()

		snapshots = system.NewPersistenceSystem(bus, roster, persist.NewPositionRepo(db), log,
			cfg.Persist.SnapshotEvery, cfg.Persist.SaveTimeout.Duration)
		runner.Register(snapshots)
	}

	// 7. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Session.TickRate.Duration)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("game loop (tick: %s, workers: %d)", cfg.Session.TickRate.Duration, cfg.Sync.Workers))
	if cfg.Session.Debug {
		printReady("debug override on")
	}
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Session.TickRate.Duration)
			if runner.Ticks()%statusEvery == 0 {
				log.Info("session status",
					zap.Int("guests", roster.Len()),
					zap.Int("guests_seen", roster.Joined()),
					zap.Duration("sync_took", syncSys.LastDuration()),
					zap.Uint64("ticks", runner.Ticks()),
				)
			}
		case <-done:
			log.Info("session ended", zap.Uint64("ticks", runner.Ticks()))
			return nil
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			if snapshots != nil {
				snapshots.SaveAll()
			}
			if peers != nil {
				peers.Leave()
			}
			event.Emit(bus, event.SessionEnded{})
			// Deliver the leaves and the session end without moving anyone,
			// drop departed rows, then close the roster.
			runner.TickPhase(coresys.PhasePreUpdate, 0)
			runner.TickPhase(coresys.PhasePersist, 0)
			runner.TickPhase(coresys.PhaseCleanup, 0)
			if roster.Len() > 0 {
				roster.Close()
			}
			log.Info("guestsync stopped",
				zap.Int("guests_seen", roster.Joined()),
				zap.Uint64("ticks", runner.Ticks()),
			)
			return nil
		}
	}
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
