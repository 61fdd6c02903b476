package system

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/combat"
	"github.com/milk9111/sentinel/decision"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/ecs/entity"
	"github.com/milk9111/sentinel/pathfinding"
	"github.com/milk9111/sentinel/perception"
	"github.com/milk9111/sentinel/physics"
	"github.com/milk9111/sentinel/physics/physicstest"
	"github.com/milk9111/sentinel/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floorTop = 100.0

// standY centers a 44px body on the floor.
const standY = floorTop - 22

type harness struct {
	t      *testing.T
	w      *ecs.World
	world  *physicstest.World
	hooks  *ScriptHooks
	sched  *ecs.Scheduler
	target ecs.Entity
	tmotor *physicstest.Actuator
	tbox   int
	events []ecs.Event
}

func newHarness(t *testing.T, targetX float64) *harness {
	t.Helper()
	h := &harness{t: t, w: ecs.NewWorld(), world: &physicstest.World{}, hooks: NewScriptHooks()}
	h.world.Box(0, physics.LayerGround, -2000, floorTop, 2000, floorTop+32)

	h.tmotor = physicstest.NewActuator(cp.Vector{X: targetX, Y: standY}, -1)
	h.tmotor.Integrate = true
	target, err := entity.NewTarget(h.w, entity.TargetOptions{
		Position: h.tmotor.Pos,
		Health:   100,
		Motor:    h.tmotor,
	})
	require.NoError(t, err)
	h.target = target
	h.tbox = len(h.world.Colliders)
	h.world.Box(target.ID(), physics.LayerPlayer, 0, 0, 0, 0)
	h.syncTarget()

	h.sched = NewPipeline(nil, h.world, h.hooks)
	return h
}

func (h *harness) syncTarget() {
	h.world.Colliders[h.tbox].BB = physics.BoxAround(h.tmotor.Pos, 20, 44)
}

func (h *harness) agent(spec prefabs.AgentSpec, x float64, facing int) (ecs.Entity, *physicstest.Actuator) {
	h.t.Helper()
	m := physicstest.NewActuator(cp.Vector{X: x, Y: standY}, facing)
	m.Integrate = true
	e, err := entity.NewAgent(h.w, entity.AgentOptions{
		Spec:     spec,
		Position: m.Pos,
		Facing:   facing,
		Target:   h.target,
		Motor:    m,
	})
	require.NoError(h.t, err)
	return e, m
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.syncTarget()
		h.sched.Update(h.w)
		h.events = append(h.events, h.w.Events().Drain()...)
	}
}

func (h *harness) states(e ecs.Entity) []string {
	var out []string
	for _, ev := range h.events {
		if ev.Kind == ecs.EventStateChanged && ev.Entity == e {
			out = append(out, ev.Data["to"].(string))
		}
	}
	return out
}

func (h *harness) state(e ecs.Entity) *component.AIState {
	st, ok := ecs.Get(h.w, e, component.AIStateComponent.Kind())
	require.True(h.t, ok)
	return st
}

func (h *harness) targetHealth() float64 {
	hp, ok := ecs.Get(h.w, h.target, component.HealthComponent.Kind())
	require.True(h.t, ok)
	return hp.Current
}

func meleeSpec() prefabs.AgentSpec {
	var s prefabs.AgentSpec
	s.Name = "grunt"
	s.Kind = "melee"
	s.Health.Max = 30
	s.Movement.PatrolSpeed = 50
	s.Movement.ChaseSpeed = 100
	s.Movement.JumpStrength = 400
	s.Movement.AnalyzeDuration = 0.5
	s.Perception.VisionRange = 300
	s.Perception.VisionAngle = 120
	s.Perception.HearingRange = 150
	s.Perception.MemoryDuration = 2
	s.Perception.InertiaDuration = 0.5
	s.Decision.PersonalSpaceRadius = 10
	s.Decision.AttackRange = 40
	s.Decision.EngagementRange = 60
	s.Decision.StunDuration = 0.3
	s.Decision.DeadGracePeriod = 1
	s.Attack.Damage = 5
	s.Attack.Cooldown = 1
	s.Attack.Knockback = 100
	s.Attack.WindUp = 0.2
	s.Attack.Freeze = true
	s.Attack.HitboxOffsetX = 20
	s.Attack.HitboxWidth = 30
	s.Attack.HitboxHeight = 40
	return s
}

func rangedSpec() prefabs.AgentSpec {
	s := meleeSpec()
	s.Name = "archer"
	s.Kind = "ranged"
	s.Decision.PersonalSpaceRadius = 20
	s.Decision.AttackRange = 250
	s.Decision.EngagementRange = 300
	s.Decision.IdealEngagementDistance = 150
	s.Movement.RepositionSpeed = 80
	s.Attack.Damage = 4
	s.Attack.Cooldown = 0.5
	s.Attack.WindUp = 0.1
	s.Attack.ProjectileSpeed = 600
	s.Attack.ProjectileLifetime = 1
	return s
}

func ticksFor(seconds float64) int {
	return int(math.Ceil(seconds/ecs.NewWorld().Dt())) + 1
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func TestIncompleteAgentIsDisabledOnce(t *testing.T) {
	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.AgentTagComponent.Kind(), &component.AgentTag{}))

	ai := NewAISystem(nil)
	ai.Update(w)
	d, ok := ecs.Get(w, e, component.DisabledComponent.Kind())
	require.True(t, ok)
	assert.Contains(t, d.Reason, "config")
	assert.Contains(t, d.Reason, "motor")

	d.Reason = "kept"
	ai.Update(w)
	d, _ = ecs.Get(w, e, component.DisabledComponent.Kind())
	assert.Equal(t, "kept", d.Reason)
}

func TestPatrolAnalyzesWallThenTurns(t *testing.T) {
	h := newHarness(t, -1000)
	h.world.Box(0, physics.LayerGround, 20, floorTop-200, 60, floorTop)
	// no target: patrol only
	ecs.DestroyEntity(h.w, h.target)

	e, m := h.agent(meleeSpec(), 0, 1)
	h.tick(1)

	sub, ok := ecs.Get(h.w, e, component.SubActionComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, decision.Analyze, sub.Kind)
	assert.Equal(t, decision.Patrol, h.state(e).Current)
	assert.GreaterOrEqual(t, m.Stops, 1)

	h.tick(ticksFor(0.5) + 1)
	assert.Equal(t, 1, m.Flips)
	assert.Equal(t, -1, m.Face)
	assert.Less(t, m.Vel.X, 0.0)
}

func TestMeleeChasesAndStrikes(t *testing.T) {
	h := newHarness(t, 200)
	e, m := h.agent(meleeSpec(), 0, 1)

	h.tick(ticksFor(3))

	states := h.states(e)
	chase, attack := indexOf(states, "chase"), indexOf(states, "attack")
	require.GreaterOrEqual(t, chase, 0, "states %v", states)
	require.Greater(t, attack, chase, "states %v", states)

	assert.Less(t, h.targetHealth(), 100.0)
	assert.NotEmpty(t, h.tmotor.Pushes)
	assert.Greater(t, m.Pos.X, 100.0)

	var resolved int
	for _, ev := range h.events {
		if ev.Kind == ecs.EventAttack && ev.Entity == e && ev.Data["phase"] == "resolve" {
			resolved++
			assert.Equal(t, 1, ev.Data["strikes"])
		}
	}
	assert.GreaterOrEqual(t, resolved, 1)
}

func TestRangedShootsAndKites(t *testing.T) {
	h := newHarness(t, 100)
	e, m := h.agent(rangedSpec(), 0, 1)

	sawProjectile := false
	for i := 0; i < ticksFor(2); i++ {
		h.tick(1)
		if ecs.Count(h.w, component.ProjectileComponent.Kind()) > 0 {
			sawProjectile = true
		}
	}

	states := h.states(e)
	assert.GreaterOrEqual(t, indexOf(states, "attack"), 0, "states %v", states)
	assert.GreaterOrEqual(t, indexOf(states, "reposition"), 0, "states %v", states)
	assert.True(t, sawProjectile)
	assert.Less(t, h.targetHealth(), 100.0)
	assert.Less(t, m.Pos.X, 0.0, "kited away from the target")
}

func TestKnockbackStaggersAndUnseenHitAlerts(t *testing.T) {
	h := newHarness(t, -200)
	// facing away from the target so the hit comes from behind
	e, m := h.agent(meleeSpec(), 0, 1)
	h.tick(1)

	origin := cp.Vector{X: -200, Y: standY}
	queueHit(h.w, e, component.Hit{Amount: 6, Knockback: 50, Direction: cp.Vector{X: 1}, Origin: origin})
	h.tick(1)

	hp, _ := ecs.Get(h.w, e, component.HealthComponent.Kind())
	assert.Equal(t, 24.0, hp.Current)
	require.Len(t, m.Pushes, 1)
	assert.InDelta(t, 50.0, m.Pushes[0].X, 1e-9)

	mem, _ := ecs.Get(h.w, e, component.MemoryComponent.Kind())
	assert.Equal(t, perception.Suspicious, mem.Level)
	assert.Equal(t, origin, mem.LastKnown)

	h.tick(1)
	assert.Equal(t, decision.Stunned, h.state(e).Current)
	assert.Equal(t, "staggered", h.state(e).Rule)

	h.tick(ticksFor(0.3))
	assert.NotEqual(t, decision.Stunned, h.state(e).Current)
	assert.Contains(t, h.states(e), "search")
}

func TestResistedKnockbackDoesNotStagger(t *testing.T) {
	h := newHarness(t, -1000)
	spec := meleeSpec()
	spec.Health.KnockbackResistance = 80
	e, m := h.agent(spec, 0, 1)
	h.tick(1)

	queueHit(h.w, e, component.Hit{Amount: 1, Knockback: 50, Direction: cp.Vector{X: 1}})
	h.tick(2)

	assert.Empty(t, m.Pushes)
	assert.NotEqual(t, decision.Stunned, h.state(e).Current)
	assert.NotContains(t, h.states(e), "stunned")
}

func TestMissingTargetReturnsToPatrol(t *testing.T) {
	h := newHarness(t, 150)
	e, _ := h.agent(meleeSpec(), 0, 1)
	h.tick(1)
	require.Equal(t, decision.Chase, h.state(e).Current)

	ecs.DestroyEntity(h.w, h.target)
	h.tick(1)

	st := h.state(e)
	assert.Equal(t, decision.Patrol, st.Current)
	assert.Equal(t, "target_missing", st.Rule)
	mem, _ := ecs.Get(h.w, e, component.MemoryComponent.Kind())
	assert.False(t, mem.HasLKP)
}

func TestDeadAgentIsRemovedAfterGrace(t *testing.T) {
	h := newHarness(t, -1000)
	e, _ := h.agent(meleeSpec(), 0, 1)
	h.tick(1)

	hp, _ := ecs.Get(h.w, e, component.HealthComponent.Kind())
	hp.Current = 0
	h.tick(1)
	assert.Equal(t, decision.Dead, h.state(e).Current)

	died := 0
	for _, ev := range h.events {
		if ev.Kind == ecs.EventDied && ev.Entity == e {
			died++
		}
	}
	assert.Equal(t, 1, died)

	h.tick(ticksFor(1) + 1)
	assert.False(t, ecs.IsAlive(h.w, e))
}

func TestNoiseDrawsPatrollingAgent(t *testing.T) {
	h := newHarness(t, -100)
	h.tmotor.Vel.X = -40
	noise, ok := ecs.Get(h.w, h.target, component.NoiseEmitterComponent.Kind())
	require.True(t, ok)
	noise.Period = 0.1

	e, _ := h.agent(meleeSpec(), 0, 1)
	h.tick(ticksFor(0.2))

	mem, _ := ecs.Get(h.w, e, component.MemoryComponent.Kind())
	assert.True(t, mem.HasLKP)
	assert.Contains(t, h.states(e), "search")
}

func TestUnreachableTargetFallsBackToPatrol(t *testing.T) {
	h := newHarness(t, 208)

	grid := pathfinding.NewGrid(12, 6, 32)
	for y := 1; y <= 3; y++ {
		for x := 5; x <= 7; x++ {
			if x == 6 && y == 2 {
				continue
			}
			grid.SetBlocked(pathfinding.Cell{X: x, Y: y}, true)
		}
	}

	spec := meleeSpec()
	spec.Pathfinding.RetryDelay = 5
	m := physicstest.NewActuator(cp.Vector{X: 48, Y: standY}, 1)
	e, err := entity.NewAgent(h.w, entity.AgentOptions{
		Spec:     spec,
		Position: m.Pos,
		Facing:   1,
		Target:   h.target,
		Grid:     grid,
		Motor:    m,
	})
	require.NoError(t, err)

	h.tick(3)

	path, _ := ecs.Get(h.w, e, component.PathComponent.Kind())
	assert.True(t, path.Failed)
	assert.Equal(t, decision.Patrol, h.state(e).Current)
	assert.Equal(t, []string{"chase", "patrol"}, h.states(e))
}

func TestScriptHooksObserveTransitions(t *testing.T) {
	h := newHarness(t, 150)
	h.hooks.load = func(name string) ([]byte, error) {
		return []byte(`
onEnter := func(engine, state, current) {
	engine.emit("entered_" + current)
}
update := func(engine, state, current) {
	engine.set_anim_speed(2.5)
}
onExit := func(engine, state, current) {}
`), nil
	}

	spec := meleeSpec()
	spec.Script = "test.tengo"
	e, _ := h.agent(spec, 0, 1)
	h.tick(1)

	var names []string
	for _, ev := range h.events {
		if ev.Kind == ecs.EventScript && ev.Entity == e {
			names = append(names, ev.Data["name"].(string))
		}
	}
	assert.Equal(t, []string{"entered_chase"}, names)

	link, ok := ecs.Get(h.w, e, component.AnimationLinkComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, 2.5, link.Speed)
	assert.Equal(t, "chase", link.State)
	assert.True(t, link.Changed)
}

func TestBrokenScriptDoesNotStopAgent(t *testing.T) {
	h := newHarness(t, 150)
	h.hooks.load = func(name string) ([]byte, error) {
		return []byte(`this is not tengo`), nil
	}

	spec := meleeSpec()
	spec.Script = "broken.tengo"
	e, _ := h.agent(spec, 0, 1)
	h.tick(2)

	assert.Equal(t, decision.Chase, h.state(e).Current)
	assert.False(t, ecs.Has(h.w, e, component.DisabledComponent.Kind()))
}

func TestDamageWithoutKnockbackInterruptsSubAction(t *testing.T) {
	h := newHarness(t, -1000)
	h.world.Box(0, physics.LayerGround, 20, floorTop-200, 60, floorTop)
	e, m := h.agent(meleeSpec(), 0, 1)
	h.tick(1)

	sub, ok := ecs.Get(h.w, e, component.SubActionComponent.Kind())
	require.True(t, ok)
	require.True(t, sub.Active())
	require.Equal(t, decision.Analyze, sub.Kind)

	queueHit(h.w, e, component.Hit{Amount: 5, Direction: cp.Vector{X: 1}, Origin: cp.Vector{X: -100, Y: standY}})
	h.tick(2)

	hp, _ := ecs.Get(h.w, e, component.HealthComponent.Kind())
	assert.Equal(t, 25.0, hp.Current)
	assert.Empty(t, m.Pushes)

	st := h.state(e)
	assert.Equal(t, decision.Search, st.Current)
	assert.Equal(t, "investigate", st.Rule)
	assert.False(t, st.Interrupted)
	assert.NotContains(t, h.states(e), "stunned")
}

func TestHitCancelsRunningManeuver(t *testing.T) {
	h := newHarness(t, -1000)
	e, m := h.agent(meleeSpec(), 0, 1)
	m.Integrate = false
	h.tick(1)

	m.ClimbToPosition(cp.Vector{Y: standY - 40}, false)
	sub, _ := ecs.Get(h.w, e, component.SubActionComponent.Kind())
	sub.Start(decision.Climb, 2, false)
	h.tick(1)
	require.True(t, sub.Active())
	require.False(t, m.ManeuverDone())

	queueHit(h.w, e, component.Hit{Amount: 2, Direction: cp.Vector{X: 1}, Origin: cp.Vector{X: -100, Y: standY}})
	h.tick(2)

	assert.Equal(t, 1, m.Cancels)
	assert.True(t, m.ManeuverDone())
	assert.False(t, sub.Active())
}

func TestSearchExpiresWithTargetHiddenNearby(t *testing.T) {
	h := newHarness(t, 50)
	e, m := h.agent(meleeSpec(), 0, 1)
	m.Integrate = false
	h.tick(1)
	require.Equal(t, decision.Chase, h.state(e).Current)

	// a tall wall between agent and target, inside engagement range
	h.world.Box(0, physics.LayerGround, 34, floorTop-300, 38, floorTop)
	h.tick(ticksFor(5))

	assert.Equal(t, []string{"chase", "search", "patrol"}, h.states(e))
	assert.Equal(t, decision.Patrol, h.state(e).Current)
	mem, _ := ecs.Get(h.w, e, component.MemoryComponent.Kind())
	assert.False(t, mem.HasLKP)
}

func TestChaseStopsAtPathEnd(t *testing.T) {
	h := newHarness(t, 208)

	spec := meleeSpec()
	spec.Decision.PersonalSpaceRadius = 4
	spec.Decision.AttackRange = 8
	m := physicstest.NewActuator(cp.Vector{X: 48, Y: standY}, 1)
	m.Integrate = true
	e, err := entity.NewAgent(h.w, entity.AgentOptions{
		Spec:     spec,
		Position: m.Pos,
		Facing:   1,
		Target:   h.target,
		Grid:     pathfinding.NewGrid(12, 6, 32),
		Motor:    m,
	})
	require.NoError(t, err)

	h.tick(ticksFor(2.5))

	path, _ := ecs.Get(h.w, e, component.PathComponent.Kind())
	assert.True(t, path.Done())
	assert.Equal(t, []string{"chase"}, h.states(e))
	assert.GreaterOrEqual(t, m.Stops, 1)
	assert.Zero(t, m.Vel.X)
	assert.InDelta(t, 192, m.Pos.X, 4, "stopped at the last waypoint short of the target")
}

func TestRangedShotAimsAtTargetOnRelease(t *testing.T) {
	h := newHarness(t, 200)
	spec := rangedSpec()
	spec.Attack.WindUp = 0.3
	e, m := h.agent(spec, 0, 1)
	m.Integrate = false

	cs, ok := ecs.Get(h.w, e, component.CombatComponent.Kind())
	require.True(t, ok)
	for i := 0; i < ticksFor(1) && !cs.WindUp.Active; i++ {
		h.tick(1)
	}
	require.True(t, cs.WindUp.Active)

	// the target jumps onto a ledge mid wind-up
	h.tmotor.Pos = cp.Vector{X: 200, Y: standY - 150}

	var shot *combat.Projectile
	for i := 0; i < ticksFor(0.5) && shot == nil; i++ {
		h.tick(1)
		_, shot, _ = ecs.First(h.w, component.ProjectileComponent.Kind())
	}
	require.NotNil(t, shot)

	dir := shot.Direction()
	assert.InDelta(t, 0.8, dir.X, 1e-6)
	assert.InDelta(t, -0.6, dir.Y, 1e-6)
}
