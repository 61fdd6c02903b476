package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/levels"
	"github.com/milk9111/sentinel/prefabs"
	"github.com/milk9111/sentinel/sim"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	maxEventLines = 8
	maxSpeed      = 8
)

// Game hosts a sim in an ebiten window. Update steps the sim at the fixed
// tick rate; Draw only reads it.
type Game struct {
	sim   *sim.Sim
	debug bool

	paused bool
	speed  int
	view   debugView

	events []string

	changes chan prefabs.Change
	cancel  context.CancelFunc
}

func NewGame(sceneName string, debug, watch bool) (*Game, error) {
	s, err := sim.New(sceneName)
	if err != nil {
		return nil, err
	}

	g := &Game{sim: s, debug: debug, speed: 1}
	g.fitView()

	if watch {
		if err := g.startWatcher(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Game) startWatcher() error {
	watcher, err := prefabs.NewWatcher(prefabs.DefaultDebounce, prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.changes = make(chan prefabs.Change, 8)

	go func() {
		err := watcher.Run(ctx, func(c prefabs.Change) {
			select {
			case g.changes <- c:
			case <-ctx.Done():
			}
		})
		if err != nil {
			slog.Error("viewer: watcher stopped", "err", err)
		}
	}()
	return nil
}

func (g *Game) Close() {
	if g.cancel != nil {
		g.cancel()
	}
}

// fitView scales the level to the window width.
func (g *Game) fitView() {
	g.view = debugView{zoom: 1}
	if g.sim.Scene == nil || g.sim.Scene.Level == nil {
		return
	}
	w, h := g.sim.Scene.Level.PixelSize()
	if w <= 0 || h <= 0 {
		return
	}
	zoom := float64(baseWidth) / w
	if hz := float64(baseHeight) / h; hz < zoom {
		zoom = hz
	}
	g.view.zoom = zoom
	g.view.camY = -(float64(baseHeight)/zoom - h) / 2
}

func (g *Game) Update() error {
	g.applyChanges()
	g.handleInput()

	if g.paused {
		return nil
	}
	for i := 0; i < g.speed; i++ {
		g.record(g.sim.Step())
	}
	return nil
}

func (g *Game) applyChanges() {
	if g.changes == nil {
		return
	}
	for {
		select {
		case c := <-g.changes:
			if err := g.sim.Apply(c); err != nil {
				slog.Warn("viewer: reload failed", "file", c.Name, "err", err)
				g.pushLine(fmt.Sprintf("reload failed: %s", c.Name))
				continue
			}
			g.fitView()
			g.pushLine(fmt.Sprintf("reloaded %s", c.Name))
		default:
			return
		}
	}
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.record(g.sim.Step())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) && g.speed < maxSpeed {
		g.speed *= 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) && g.speed > 1 {
		g.speed /= 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.sim.Apply(prefabs.Change{Name: g.sim.SceneName}); err != nil {
			slog.Warn("viewer: restart failed", "err", err)
			return
		}
		g.fitView()
		g.events = nil
	}
}

func (g *Game) record(events []ecs.Event) {
	for _, evt := range events {
		switch evt.Kind {
		case ecs.EventStateChanged:
			g.pushLine(fmt.Sprintf("%d %v %v -> %v (%v)", evt.Tick, evt.Entity, evt.Data["from"], evt.Data["to"], evt.Data["rule"]))
		case ecs.EventDied, ecs.EventThreat, ecs.EventScript:
			g.pushLine(fmt.Sprintf("%d %v %s %v", evt.Tick, evt.Entity, evt.Kind, evt.Data))
		}
	}
}

func (g *Game) pushLine(line string) {
	g.events = append(g.events, line)
	if n := len(g.events); n > maxEventLines {
		g.events = g.events[n-maxEventLines:]
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	if g.sim.Scene != nil {
		drawLevel(screen, g.view, g.sim.Scene.Level)
	}
	if g.debug {
		drawPhysicsDebug(g.sim.Space.Space(), g.view, screen)
	}
	drawAgentDebug(g.sim.World, g.view, screen)

	status := fmt.Sprintf("Tick: %d    TPS: %.1f    Speed: x%d", g.sim.Tick(), ebiten.ActualTPS(), g.speed)
	if g.paused {
		status += "    PAUSED (N steps)"
	}
	ebitenutil.DebugPrint(screen, status)
	for i, line := range g.events {
		ebitenutil.DebugPrintAt(screen, line, 10, baseHeight-16*(len(g.events)-i)-8)
	}
}

func drawLevel(screen *ebiten.Image, view debugView, lvl *levels.Level) {
	if lvl == nil {
		return
	}
	size := float32(lvl.TileSize * view.zoom)
	for y := 0; y < lvl.Height; y++ {
		for x := 0; x < lvl.Width; x++ {
			if !lvl.Solid(x, y) {
				continue
			}
			sx := float32((float64(x)*lvl.TileSize - view.camX) * view.zoom)
			sy := float32((float64(y)*lvl.TileSize - view.camY) * view.zoom)
			vector.DrawFilledRect(screen, sx, sy, size, size, colornames.Slategray, false)
		}
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
