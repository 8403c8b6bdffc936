// Command realm runs the client-facing realm process: it accepts player
// connections, drives the account/character join handshake, and hosts the
// World Instance Manager that owns every WorldInstance's tick loop.
//
// internal/proxy implements a genuine wire-level realm↔world link (framing,
// handshake, CharacterJoin/Leave/Save messages) for a future deployment that
// splits the realm frontend from the world host across processes. This
// binary does not dial it: realm.Server already fulfills C9's lifecycle
// semantics in-process, against the same *world.InstanceManager it ticks
// here, so a single process covers both roles without adding an unused
// network hop. See DESIGN.md for the tradeoff.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/forgeward/realmcore/internal/combat"
	"github.com/forgeward/realmcore/internal/config"
	"github.com/forgeward/realmcore/internal/db"
	"github.com/forgeward/realmcore/internal/model"
	"github.com/forgeward/realmcore/internal/realm"
	"github.com/forgeward/realmcore/internal/world"
)

const ConfigPath = "config/realm.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("REALMCORE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadRealm(cfgPath)
	if err != nil {
		return fmt.Errorf("loading realm config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
	log.Info("realmcore starting", "log_level", cfg.LogLevel)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	worldCfg := config.DefaultWorld()
	instances := world.NewInstanceManager(worldCfg.TileSize, worldCfg.SightRadius, log.With("component", "world"))

	srv := realm.NewServer(fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port), database, instances, cfg.SessionCapacity, log.With("component", "realm"))

	// The default map instance is created up front so its combat Manager's
	// hooks are wired before any character can join it. joinCharacter falls
	// back to creating an unwired instance only for a map that hasn't been
	// pre-created.
	inst := instances.CreateInstance(0)
	inst.Hooks = buildCombatHooks(srv, inst, worldCfg)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		instances.Run(ctx, worldCfg.TickRate)
		return nil
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})

	return g.Wait()
}

// buildCombatHooks wires a combat.Manager into inst's TickHooks, resolving
// GUIDs back to live Units/Players through the realm's SessionManager —
// the only live-object registry this process keeps, since WorldInstance
// tracks bare *model.Object entries rather than their owning Unit/Player.
func buildCombatHooks(srv *realm.Server, inst *world.WorldInstance, worldCfg config.World) world.TickHooks {
	mgr := combat.NewManager(combat.Hooks{
		NonSpellDamageLog: func(attacker, victim model.GUID, amount int32) {
			slog.Debug("melee damage", "attacker", attacker, "victim", victim, "amount", amount)
		},
		SpellDamageLog: func(caster, victim model.GUID, entry uint32, amount int32) {
			slog.Debug("spell damage", "caster", caster, "victim", victim, "spell", entry, "amount", amount)
		},
		XPLog: func(killer *model.Player, victim *model.Unit, awardedXP uint32) {
			slog.Info("kill credited", "killer", killer.GUID(), "victim", victim.GUID(), "xp", awardedXP)
		},
		BaseXPFor: func(victim *model.Unit) uint32 {
			return victim.Level() * 50
		},
		NextLevelXPFor: func(level uint32) uint32 {
			return (level + 1) * 1000
		},
		ResolvePlayer: func(guid model.GUID) (*model.Player, bool) {
			session := srv.Sessions().ByGUID(guid)
			if session == nil {
				return nil, false
			}
			p := session.Player()
			return p, p != nil
		},
		ResolveUnit: func(guid model.GUID) (*model.Unit, bool) {
			session := srv.Sessions().ByGUID(guid)
			if session == nil {
				return nil, false
			}
			p := session.Player()
			if p == nil {
				return nil, false
			}
			return &p.Unit, true
		},
	})

	return world.TickHooks{
		ExpireTimers: mgr.ExpireTimers,
		Combat:       mgr.TickAttacks,
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
