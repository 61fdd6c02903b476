package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/combat"
	"github.com/milk9111/sentinel/decision"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/pathfinding"
	"github.com/milk9111/sentinel/perception"
	"golang.org/x/image/colornames"
)

const (
	debugCircleSegments = 24
	debugConeSegments   = 12
	debugDotSize        = 4
)

// debugView maps world coordinates onto the screen.
type debugView struct {
	camX float64
	camY float64
	zoom float64
}

func (v debugView) toScreen(p cp.Vector) (float32, float32) {
	zoom := v.zoom
	if zoom <= 0 {
		zoom = 1
	}
	return float32((p.X - v.camX) * zoom), float32((p.Y - v.camY) * zoom)
}

func (v debugView) scale(d float64) float32 {
	if v.zoom <= 0 {
		return float32(d)
	}
	return float32(d * v.zoom)
}

// drawPhysicsDebug outlines every shape in the space.
func drawPhysicsDebug(space *cp.Space, view debugView, screen *ebiten.Image) {
	if space == nil || screen == nil {
		return
	}
	cp.DrawSpace(space, &physicsDebugDrawer{screen: screen, view: view})
}

// drawAgentDebug draws each agent's vision cone, last known position,
// planned path and state label, plus live projectiles.
func drawAgentDebug(w *ecs.World, view debugView, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}

	ecs.ForEach3(w, component.AgentConfigComponent.Kind(), component.AIStateComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, cfg *component.AgentConfig, st *component.AIState, t *component.Transform) {
		facing := 1
		if f, ok := ecs.Get(w, e, component.FacingComponent.Kind()); ok {
			facing = f.Sign
		}

		mem, _ := ecs.Get(w, e, component.MemoryComponent.Kind())
		res, _ := ecs.Get(w, e, component.PerceptionComponent.Kind())
		visible := res != nil && res.Visible

		if st.Current != decision.Dead {
			drawVisionCone(screen, view, perception.Observer{Position: t.Position, Facing: facing}.Eye(cfg.Perception), facing, cfg.Perception, visible)
		}
		if mem != nil && mem.HasLKP {
			drawCross(screen, view, mem.LastKnown, 6, colornames.Orange)
		}
		if path, ok := ecs.Get(w, e, component.PathComponent.Kind()); ok {
			drawPath(screen, view, t.Position, path)
		}

		x, y := view.toScreen(t.Position)
		hw, hh := view.scale(cfg.HalfWidth), view.scale(cfg.HalfHeight)
		vector.StrokeRect(screen, x-hw, y-hh, hw*2, hh*2, 1, stateColor(st.Current), false)

		label := st.Current.String()
		if mem != nil {
			label += "\n" + mem.Level.String()
		}
		if h, ok := ecs.Get(w, e, component.HealthComponent.Kind()); ok {
			label += fmt.Sprintf("\n%.0f/%.0f", h.Current, h.Max)
		}
		ebitenutil.DebugPrintAt(screen, label, int(x-hw), int(y-hh)-48)
	})

	ecs.ForEach2(w, component.PlayerTagComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.PlayerTag, t *component.Transform) {
		x, y := view.toScreen(t.Position)
		vector.StrokeRect(screen, x-view.scale(10), y-view.scale(22), view.scale(20), view.scale(44), 2, colornames.Crimson, false)
	})

	ecs.ForEach(w, component.ProjectileComponent.Kind(), func(e ecs.Entity, p *combat.Projectile) {
		x, y := view.toScreen(p.Position)
		vector.StrokeCircle(screen, x, y, view.scale(math.Max(p.Radius, 2)), 1, colornames.Yellow, false)
	})
}

func stateColor(s decision.State) color.Color {
	switch s {
	case decision.Chase:
		return colornames.Orangered
	case decision.Attack:
		return colornames.Red
	case decision.Reposition:
		return colornames.Violet
	case decision.Search:
		return colornames.Gold
	case decision.Stunned:
		return colornames.Lightblue
	case decision.Dead:
		return colornames.Dimgray
	default:
		return colornames.Limegreen
	}
}

func drawVisionCone(screen *ebiten.Image, view debugView, eye cp.Vector, facing int, cfg perception.Config, alert bool) {
	if cfg.VisionRange <= 0 {
		return
	}
	clr := color.NRGBA{R: 0x9a, G: 0xcd, B: 0x32, A: 0x80}
	if alert {
		clr = color.NRGBA{R: 0xff, G: 0x45, B: 0x00, A: 0xc0}
	}

	forward := 0.0
	if facing < 0 {
		forward = math.Pi
	}
	half := cfg.VisionAngle * math.Pi / 360
	ex, ey := view.toScreen(eye)

	var prevX, prevY float32
	for i := 0; i <= debugConeSegments; i++ {
		a := forward - half + 2*half*float64(i)/debugConeSegments
		p := eye.Add(cp.Vector{X: math.Cos(a), Y: math.Sin(a)}.Mult(cfg.VisionRange))
		x, y := view.toScreen(p)
		if i == 0 || i == debugConeSegments {
			vector.StrokeLine(screen, ex, ey, x, y, 1, clr, false)
		}
		if i > 0 {
			vector.StrokeLine(screen, prevX, prevY, x, y, 1, clr, false)
		}
		prevX, prevY = x, y
	}
}

func drawPath(screen *ebiten.Image, view debugView, from cp.Vector, path *pathfinding.Path) {
	if path.Empty() || path.Done() {
		return
	}
	prev := from
	for _, wp := range path.Waypoints[path.Index:] {
		x1, y1 := view.toScreen(prev)
		x2, y2 := view.toScreen(wp)
		vector.StrokeLine(screen, x1, y1, x2, y2, 1, colornames.Deepskyblue, false)
		prev = wp
	}
	drawCross(screen, view, path.Goal, 4, colornames.Deepskyblue)
}

func drawCross(screen *ebiten.Image, view debugView, at cp.Vector, size float32, clr color.Color) {
	x, y := view.toScreen(at)
	vector.StrokeLine(screen, x-size, y-size, x+size, y+size, 2, clr, false)
	vector.StrokeLine(screen, x-size, y+size, x+size, y-size, 2, clr, false)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	view   debugView
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		d.drawCircle(a, radius, outline)
		d.drawCircle(b, radius, outline)
	}
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.5, G: 0.5, B: 0.5, A: 0.9}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return cp.FColor{R: 0.4, G: 0.4, B: 0.45, A: 0.6}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, clr cp.FColor) {
	x1, y1 := d.view.toScreen(a)
	x2, y2 := d.view.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, toNRGBA(clr), false)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, clr cp.FColor) {
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], clr)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, clr cp.FColor) {
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, clr)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
