package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/sentinel/prefabs"
	"github.com/milk9111/sentinel/sim"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging and physics outlines")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	sceneName := flag.String("scene", sim.DefaultScene, "scene prefab to load")
	watch := flag.Bool("watch", false, "hot reload prefabs and scripts from the prefab directory")
	prefabDir := flag.String("prefabs", prefabs.Dir, "directory checked for prefab and script overrides")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	prefabs.Dir = *prefabDir

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("sentinel")
	ebiten.SetTPS(ebiten.DefaultTPS)

	game, err := NewGame(*sceneName, *debug, *watch)
	if err != nil {
		slog.Error("viewer: start", "err", err)
		os.Exit(1)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		slog.Error("viewer: run", "err", err)
		os.Exit(1)
	}
}
