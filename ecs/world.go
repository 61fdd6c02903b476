package ecs

import (
	"github.com/milk9111/sentinel/common"
	"github.com/milk9111/sentinel/ecs/component"
)

// World owns entities, their components and the simulation clock.
type World struct {
	gens   []generation
	alive  []bool
	free   []entityID
	stores map[component.ComponentID]store
	events EventQueue

	tick uint64
	dt   float64
}

// NewWorld creates an empty world stepping at the default fixed rate.
func NewWorld() *World {
	return &World{
		gens:   []generation{0},
		alive:  []bool{false},
		stores: make(map[component.ComponentID]store),
		dt:     common.Dt,
	}
}

func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	var id entityID
	if n := len(w.free); n > 0 {
		id = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		id = entityID(len(w.gens))
		w.gens = append(w.gens, 0)
		w.alive = append(w.alive, false)
	}
	w.alive[id] = true
	return makeEntity(id, w.gens[id])
}

// DestroyEntity removes e and all of its components. It reports false when
// e was already dead.
func DestroyEntity(w *World, e Entity) bool {
	if !IsAlive(w, e) {
		return false
	}
	id := e.id()
	for _, s := range w.stores {
		s.remove(id)
	}
	w.alive[id] = false
	w.gens[id]++
	w.free = append(w.free, id)
	return true
}

func IsAlive(w *World, e Entity) bool {
	if w == nil || !e.Valid() {
		return false
	}
	id := e.id()
	if int(id) >= len(w.gens) {
		return false
	}
	return w.alive[id] && w.gens[id] == e.generation()
}

// Entities returns every live entity in slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, len(w.gens))
	for id := 1; id < len(w.gens); id++ {
		if w.alive[id] {
			out = append(out, makeEntity(entityID(id), w.gens[id]))
		}
	}
	return out
}

// Dt is the fixed simulation step in seconds.
func (w *World) Dt() float64 {
	if w == nil {
		return common.Dt
	}
	return w.dt
}

// SetDt overrides the fixed step. Non-positive values are ignored.
func (w *World) SetDt(dt float64) {
	if w == nil {
		return
	}
	w.dt = common.PositiveOr(dt, w.dt)
}

// Tick is the number of completed simulation steps.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Now is the simulation time in seconds.
func (w *World) Now() float64 {
	if w == nil {
		return 0
	}
	return float64(w.tick) * w.dt
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) advance() {
	w.tick++
}

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseStore[T] {
	if w == nil || !kind.Valid() {
		return nil
	}
	if s, ok := w.stores[kind.ID()]; ok {
		typed, _ := s.(*sparseStore[T])
		return typed
	}
	if !create {
		return nil
	}
	s := newSparseStore[T]()
	w.stores[kind.ID()] = s
	return s
}
