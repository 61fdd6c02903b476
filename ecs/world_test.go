package ecs

import (
	"testing"

	"github.com/milk9111/sentinel/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int {
	return &i
}

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_destroy_middle", 3, 1},
		{"none_destroyed", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			require.Len(t, Entities(w), c.create)
			if c.destroyIndex < 0 {
				return
			}
			require.True(t, DestroyEntity(w, ents[c.destroyIndex]))
			assert.False(t, IsAlive(w, ents[c.destroyIndex]))
			assert.False(t, DestroyEntity(w, ents[c.destroyIndex]), "double destroy")
			assert.Len(t, Entities(w), c.create-1)
		})
	}
}

func TestRecycledSlotInvalidatesOldHandle(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponentKind[int]()

	old := CreateEntity(w)
	require.NoError(t, Add(w, old, kind, intPtr(1)))
	require.True(t, DestroyEntity(w, old))

	fresh := CreateEntity(w)
	assert.Equal(t, old.id(), fresh.id())
	assert.NotEqual(t, old, fresh)
	assert.False(t, Has(w, fresh, kind), "components do not survive destruction")

	err := Add(w, old, kind, intPtr(2))
	assert.ErrorIs(t, err, component.ErrEntityNotAlive)
}

func TestComponentTable(t *testing.T) {
	w := NewWorld()
	ints := component.NewComponentKind[int]()
	strs := component.NewComponentKind[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	require.NoError(t, Add(w, e1, ints, intPtr(10)))
	v, ok := Get(w, e1, ints)
	require.True(t, ok)
	assert.Equal(t, 10, *v)

	*v = 11
	v, _ = Get(w, e1, ints)
	assert.Equal(t, 11, *v, "Get returns the stored pointer")

	a, b := "a", "b"
	require.NoError(t, Add(w, e1, strs, &a))
	require.NoError(t, Add(w, e2, strs, &b))
	assert.True(t, Has(w, e1, strs))
	assert.True(t, Has(w, e2, strs))
	assert.False(t, Has(w, e2, ints))

	assert.True(t, Remove(w, e1, strs))
	assert.False(t, Remove(w, e1, strs))
	got, ok := Get(w, e2, strs)
	require.True(t, ok, "swap-remove keeps the other entry reachable")
	assert.Equal(t, "b", *got)

	assert.ErrorIs(t, Add[int](w, e1, ints, nil), component.ErrNilComponent)
	assert.ErrorIs(t, Add(w, e1, component.ComponentKind[int]{}, intPtr(1)), component.ErrInvalidComponentKind)
}

func TestForEachIntersections(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[int]()
	kc := component.NewComponentKind[int]()
	kd := component.NewComponentKind[int]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)
	dead := CreateEntity(w)

	for _, e := range []Entity{e1, e2, dead} {
		require.NoError(t, Add(w, e, ka, intPtr(1)))
	}
	for _, e := range []Entity{e2, e3, dead} {
		require.NoError(t, Add(w, e, kb, intPtr(2)))
		require.NoError(t, Add(w, e, kc, intPtr(3)))
	}
	require.NoError(t, Add(w, e2, kd, intPtr(4)))
	require.True(t, DestroyEntity(w, dead))

	collect := func(run func(add func(Entity))) []Entity {
		var out []Entity
		run(func(e Entity) { out = append(out, e) })
		return out
	}

	tests := []struct {
		name string
		got  []Entity
		want []Entity
	}{
		{
			name: "single",
			got:  collect(func(add func(Entity)) { ForEach(w, ka, func(e Entity, _ *int) { add(e) }) }),
			want: []Entity{e1, e2},
		},
		{
			name: "pair",
			got: collect(func(add func(Entity)) {
				ForEach2(w, ka, kb, func(e Entity, _, _ *int) { add(e) })
			}),
			want: []Entity{e2},
		},
		{
			name: "triple",
			got: collect(func(add func(Entity)) {
				ForEach3(w, kb, kc, ka, func(e Entity, _, _, _ *int) { add(e) })
			}),
			want: []Entity{e2},
		},
		{
			name: "quad",
			got: collect(func(add func(Entity)) {
				ForEach4(w, ka, kb, kc, kd, func(e Entity, _, _, _, _ *int) { add(e) })
			}),
			want: []Entity{e2},
		},
		{
			name: "missing_store",
			got: collect(func(add func(Entity)) {
				ForEach2(w, ka, component.NewComponentKind[int](), func(e Entity, _, _ *int) { add(e) })
			}),
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ElementsMatch(t, tc.want, tc.got)
		})
	}
}

func TestForEachAllowsRemovalDuringIteration(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponentKind[int]()
	for i := 0; i < 4; i++ {
		require.NoError(t, Add(w, CreateEntity(w), kind, intPtr(i)))
	}

	visited := 0
	ForEach(w, kind, func(e Entity, _ *int) {
		visited++
		DestroyEntity(w, e)
	})
	assert.Equal(t, 4, visited)
	assert.Zero(t, Count(w, kind))
}

type countingSystem struct {
	ticks []uint64
}

func (s *countingSystem) Update(w *World) {
	s.ticks = append(s.ticks, w.Tick())
}

func TestSchedulerAdvancesClock(t *testing.T) {
	w := NewWorld()
	w.SetDt(0.5)
	sys := &countingSystem{}
	sched := NewScheduler(sys, nil)

	for i := 0; i < 3; i++ {
		sched.Update(w)
	}

	assert.Equal(t, []uint64{0, 1, 2}, sys.ticks)
	assert.Equal(t, uint64(3), w.Tick())
	assert.InDelta(t, 1.5, w.Now(), 1e-9)
	assert.Len(t, sched.Systems(), 1)
}

func TestEmitStampsTick(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)
	NewScheduler().Update(w)

	Emit(w, EventAttack, e, map[string]any{"kind": "melee"})
	events := w.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].Tick)
	assert.Equal(t, EventAttack, events[0].Kind)
	assert.Nil(t, w.Events().Drain())
}
