package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/milk9111/sentinel/common"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/levels"
	"github.com/milk9111/sentinel/prefabs"
	"github.com/milk9111/sentinel/sim"
	"github.com/pkg/errors"
)

func main() {
	app := cli.NewApp()
	app.Name = "sandbox"
	app.Usage = "run agent scenes headless"
	app.Version = "0.1.0"

	app.Commands = []cli.Command{
		{
			Name:    "run",
			Aliases: []string{"r"},
			Usage:   "Step a scene and log its events",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "scene", Value: sim.DefaultScene, Usage: "scene prefab to load"},
				cli.IntFlag{Name: "ticks", Value: 600, Usage: "ticks to run, 0 runs until interrupted"},
				cli.StringFlag{Name: "prefabs", Value: prefabs.Dir, Usage: "directory checked for prefab and script overrides"},
				cli.BoolFlag{Name: "watch", Usage: "hot reload prefabs and scripts from the prefab directory"},
				cli.BoolFlag{Name: "realtime", Usage: "pace ticks at the fixed tick rate"},
				cli.BoolFlag{Name: "debug", Usage: "log at debug level"},
			},
			Action: func(c *cli.Context) error {
				setupLogging(c.Bool("debug"))
				prefabs.Dir = c.String("prefabs")

				ctx, cancel := signalContext()
				defer cancel()

				return run(ctx, runOptions{
					scene:    c.String("scene"),
					ticks:    c.Int("ticks"),
					watch:    c.Bool("watch"),
					realtime: c.Bool("realtime") || c.Bool("watch"),
				})
			},
		},
		{
			Name:  "check",
			Usage: "Load every prefab and scene and report the broken ones",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "prefabs", Value: prefabs.Dir, Usage: "directory checked for prefab overrides"},
			},
			Action: func(c *cli.Context) error {
				setupLogging(false)
				prefabs.Dir = c.String("prefabs")
				return check()
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("sandbox failed", "err", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			slog.Info("shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

type runOptions struct {
	scene    string
	ticks    int
	watch    bool
	realtime bool
}

func run(ctx context.Context, opts runOptions) error {
	s, err := sim.New(opts.scene)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	changes := make(chan prefabs.Change, 8)

	if opts.watch {
		watcher, err := prefabs.NewWatcher(prefabs.DefaultDebounce, prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			return err
		}
		g.Go(func() error {
			slog.Info("watching prefabs", "dir", prefabs.Dir)
			return watcher.Run(gctx, func(c prefabs.Change) {
				select {
				case changes <- c:
				case <-gctx.Done():
				}
			})
		})
	}

	g.Go(func() error {
		// the watcher stops with the loop once the tick budget is spent
		defer cancel()
		return loop(gctx, s, opts, changes)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loop owns the sim. File changes are applied between ticks.
func loop(ctx context.Context, s *sim.Sim, opts runOptions, changes <-chan prefabs.Change) error {
	var pace <-chan time.Time
	if opts.realtime {
		ticker := time.NewTicker(time.Second / common.TickRate)
		defer ticker.Stop()
		pace = ticker.C
	}

	counts := map[ecs.EventKind]int{}
	defer func() { logSummary(s, counts) }()

	for opts.ticks <= 0 || s.Tick() < uint64(opts.ticks) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-changes:
			if err := s.Apply(c); err != nil {
				slog.Warn("reload failed, keeping current scene", "file", c.Name, "err", err)
			}
			continue
		default:
		}

		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		}

		for _, evt := range s.Step() {
			counts[evt.Kind]++
			logEvent(evt)
		}
	}
	return nil
}

func logEvent(evt ecs.Event) {
	attrs := []any{"tick", evt.Tick, "entity", evt.Entity}
	keys := make([]string, 0, len(evt.Data))
	for k := range evt.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, k, evt.Data[k])
	}

	switch evt.Kind {
	case ecs.EventStateChanged, ecs.EventDied, ecs.EventThreat, ecs.EventScript:
		slog.Info(string(evt.Kind), attrs...)
	default:
		slog.Debug(string(evt.Kind), attrs...)
	}
}

func logSummary(s *sim.Sim, counts map[ecs.EventKind]int) {
	attrs := []any{"scene", s.SceneName, "ticks", s.Tick()}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		attrs = append(attrs, k, counts[ecs.EventKind(k)])
	}
	slog.Info("run finished", attrs...)
}

func check() error {
	names, err := fs.Glob(prefabs.PrefabsFS, "*.yaml")
	if err != nil {
		return errors.Wrap(err, "list prefabs")
	}

	var failed int
	for _, name := range names {
		if err := checkOne(name); err != nil {
			failed++
			slog.Error("broken", "file", name, "err", err)
			continue
		}
		slog.Info("ok", "file", name)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d prefabs failed", failed, len(names))
	}
	return nil
}

func checkOne(name string) error {
	if !strings.HasPrefix(name, "scene_") {
		spec, err := prefabs.LoadAgentSpec(name)
		if err != nil {
			return err
		}
		if spec.Script != "" {
			if _, err := prefabs.LoadScript(spec.Script); err != nil {
				return err
			}
		}
		return nil
	}

	scene, err := prefabs.LoadSceneSpec(name)
	if err != nil {
		return err
	}
	if _, err := levels.LoadLevelFromFS(scene.Level); err != nil {
		return err
	}
	for i, spawn := range scene.Agents {
		if _, err := prefabs.ResolveSpawn(spawn); err != nil {
			return errors.Wrapf(err, "agent %d", i)
		}
	}
	return nil
}
