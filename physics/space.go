package physics

import (
	"log/slog"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/common"
)

// Space owns the Chipmunk space plus the mapping from shapes back to the
// colliders the agent core understands.
type Space struct {
	space  *cp.Space
	bodies map[uint64]*cp.Body
	shapes map[uint64]*cp.Shape
}

// NewSpace creates a space with the default side-scroller gravity.
func NewSpace() *Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: common.Gravity})

	return &Space{
		space:  space,
		bodies: make(map[uint64]*cp.Body),
		shapes: make(map[uint64]*cp.Shape),
	}
}

// Space returns the underlying Chipmunk space.
func (s *Space) Space() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

func layerFilter(layer, mask Layer) cp.ShapeFilter {
	return cp.NewShapeFilter(cp.NO_GROUP, uint(layer), uint(mask))
}

// AddStaticBox adds level geometry covering bb.
func (s *Space) AddStaticBox(bb cp.BB, layer Layer) *cp.Shape {
	if s == nil || s.space == nil {
		return nil
	}
	shape := cp.NewBox2(s.space.StaticBody, bb, 0)
	shape.SetFriction(0.8)
	shape.SetFilter(layerFilter(layer, LayerAll))
	shape.UserData = Collider{Layer: layer}
	s.space.AddShape(shape)
	return shape
}

// AddBody creates a dynamic box body for id centered at center. Rotation is
// locked so agents stay upright.
func (s *Space) AddBody(id uint64, center cp.Vector, w, h float64, layer, collides Layer) *cp.Body {
	if s == nil || s.space == nil || id == 0 {
		return nil
	}
	if body, ok := s.bodies[id]; ok {
		return body
	}

	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(center)
	shape := cp.NewBox(body, w, h, 0)
	shape.SetFriction(0.8)
	shape.SetFilter(layerFilter(layer, collides))
	shape.UserData = Collider{ID: id, Layer: layer}

	s.space.AddBody(body)
	s.space.AddShape(shape)
	s.bodies[id] = body
	s.shapes[id] = shape

	slog.Debug("physics: body added", "id", id, "layer", uint(layer), "x", center.X, "y", center.Y)
	return body
}

// Body returns the body registered for id.
func (s *Space) Body(id uint64) (*cp.Body, bool) {
	if s == nil {
		return nil, false
	}
	b, ok := s.bodies[id]
	return b, ok
}

// Remove detaches the body registered for id.
func (s *Space) Remove(id uint64) {
	if s == nil || s.space == nil {
		return
	}
	if shape, ok := s.shapes[id]; ok {
		s.space.RemoveShape(shape)
		delete(s.shapes, id)
	}
	if body, ok := s.bodies[id]; ok {
		s.space.RemoveBody(body)
		delete(s.bodies, id)
	}
}

// Step advances the physics simulation.
func (s *Space) Step(dt float64) {
	if s == nil || s.space == nil || dt <= 0 {
		return
	}
	s.space.Step(dt)
}

// Raycast returns the first non-sensor shape on mask along the segment.
func (s *Space) Raycast(origin, dir cp.Vector, maxDistance float64, mask Layer) (Hit, bool) {
	if s == nil || s.space == nil || maxDistance <= 0 {
		return Hit{}, false
	}
	end := origin.Add(dir.Mult(maxDistance))
	info := s.space.SegmentQueryFirst(origin, end, 0, layerFilter(LayerAll, mask))
	if info.Shape == nil {
		return Hit{}, false
	}
	return Hit{
		Point:    info.Point,
		Normal:   info.Normal,
		Distance: info.Alpha * maxDistance,
		Collider: colliderFor(info.Shape),
	}, true
}

// OverlapBox returns every shape on mask whose bounds intersect bb. Each
// collider id is reported once.
func (s *Space) OverlapBox(bb cp.BB, mask Layer) []Collider {
	if s == nil || s.space == nil {
		return nil
	}
	var out []Collider
	seen := make(map[uint64]bool)
	s.space.BBQuery(bb, layerFilter(LayerAll, mask), func(shape *cp.Shape, _ interface{}) {
		c := colliderFor(shape)
		if c.ID != 0 {
			if seen[c.ID] {
				return
			}
			seen[c.ID] = true
		}
		out = append(out, c)
	}, nil)
	return out
}

func colliderFor(shape *cp.Shape) Collider {
	c, _ := shape.UserData.(Collider)
	c.BB = shape.BB()
	return c
}
