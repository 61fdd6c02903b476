package system

import (
	"log/slog"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/combat"
	"github.com/milk9111/sentinel/decision"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/pathfinding"
	"github.com/milk9111/sentinel/perception"
	"github.com/milk9111/sentinel/physics"
)

// AISystem runs the decision core for every agent and turns the chosen state
// into motor commands. It must run after perception and navigation.
type AISystem struct {
	hooks *ScriptHooks
}

// NewAISystem accepts nil hooks; agents then run without scripts.
func NewAISystem(hooks *ScriptHooks) *AISystem {
	return &AISystem{hooks: hooks}
}

// agentTick gathers one agent's components for the duration of a tick.
type agentTick struct {
	w     *ecs.World
	e     ecs.Entity
	cfg   *component.AgentConfig
	st    *component.AIState
	mem   *perception.Memory
	motor physics.Actuator
	sub   *decision.SubAction
	cs    *combat.State
	path  *pathfinding.Path
	link  *component.AnimationLink

	pos       cp.Vector
	target    ecs.Entity
	targetPos cp.Vector
	hasTarget bool
	visible   bool
	dt, now   float64
}

func (s *AISystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.AgentTagComponent.Kind(), func(e ecs.Entity, _ *component.AgentTag) {
		if !ensureRunnable(w, e) {
			return
		}
		t := s.prepare(w, e)
		t.st.Elapsed += t.dt

		s.advanceSubAction(t)
		if t.st.Interrupted {
			t.interrupt()
			t.st.Interrupted = false
		}

		out := s.evaluate(t)
		t.st.Staggered = false
		if out.Changed || out.Rule == "staggered" {
			s.transition(t, out)
		}
		t.st.Rule = out.Rule

		s.behave(t)
		s.hooks.update(t)
		s.writeAnimation(t, out.Changed)
	})
}

func getOrAdd[T any](w *ecs.World, e ecs.Entity, h component.ComponentHandle[T], init func() T) *T {
	if v, ok := ecs.Get(w, e, h.Kind()); ok {
		return v
	}
	v := init()
	_ = ecs.Add(w, e, h.Kind(), &v)
	got, _ := ecs.Get(w, e, h.Kind())
	return got
}

func (s *AISystem) prepare(w *ecs.World, e ecs.Entity) *agentTick {
	t := &agentTick{w: w, e: e, dt: w.Dt(), now: w.Now()}
	t.cfg, _ = ecs.Get(w, e, component.AgentConfigComponent.Kind())
	t.st, _ = ecs.Get(w, e, component.AIStateComponent.Kind())
	t.mem, _ = ecs.Get(w, e, component.MemoryComponent.Kind())
	t.cs, _ = ecs.Get(w, e, component.CombatComponent.Kind())
	m, _ := ecs.Get(w, e, component.MotorComponent.Kind())
	t.motor = m.Actuator
	t.pos, _ = positionOf(w, e)

	t.sub = getOrAdd(w, e, component.SubActionComponent, func() decision.SubAction { return decision.SubAction{} })
	t.path = getOrAdd(w, e, component.PathComponent, func() pathfinding.Path { return pathfinding.Path{} })
	t.link = getOrAdd(w, e, component.AnimationLinkComponent, func() component.AnimationLink {
		return component.AnimationLink{Speed: 1}
	})

	if target, tt, ok := liveTarget(w, e); ok {
		t.target, t.targetPos, t.hasTarget = target, tt.Position, true
	}
	if res, ok := ecs.Get(w, e, component.PerceptionComponent.Kind()); ok {
		t.visible = res.Visible && t.hasTarget
	}
	return t
}

// advanceSubAction ticks the running sub-action. Maneuvers end when the
// motor reports completion or the timeout passes; wind-ups mirror combat.
func (s *AISystem) advanceSubAction(t *agentTick) {
	if !t.sub.Active() {
		return
	}
	switch t.sub.Kind {
	case decision.WindUp:
		if !t.cs.WindUp.Active {
			t.sub.Cancel()
		}
	case decision.Climb, decision.Vault:
		if t.motor.ManeuverDone() {
			t.sub.Cancel()
			return
		}
		if done, finished := t.sub.Advance(t.dt); finished {
			t.motor.CancelManeuver()
			slog.Debug("ai: maneuver timed out", "entity", t.e, "kind", done.Kind)
		}
	default:
		if done, finished := t.sub.Advance(t.dt); finished && done.FlipOnDone {
			t.motor.Flip()
			// wall scans ran facing the other way
			ecs.Remove(t.w, t.e, component.NavigationComponent.Kind())
			ecs.Remove(t.w, t.e, component.WallScanComponent.Kind())
		}
	}
}

func (t *agentTick) distance() float64 {
	if !t.hasTarget {
		return math.Inf(1)
	}
	return t.pos.Distance(t.targetPos)
}

func (s *AISystem) params(t *agentTick) decision.Params {
	p := t.cfg.Core.Params
	if !t.cfg.UseThreat || !p.Ranged {
		return p
	}
	if prof, ok := ecs.Get(t.w, t.e, component.ThreatComponent.Kind()); ok {
		p.IdealDistance = prof.EffectiveIdealDistance()
	}
	return p
}

func (s *AISystem) evaluate(t *agentTick) decision.Outcome {
	health, _ := ecs.Get(t.w, t.e, component.HealthComponent.Kind())
	in := decision.Inputs{
		State:       t.st.Current,
		Elapsed:     t.st.Elapsed,
		Dead:        health.Dead(),
		HasTarget:   t.hasTarget,
		Staggered:   t.st.Staggered,
		SubAction:   t.sub.Active(),
		Visible:     t.visible,
		Distance:    t.distance(),
		Suspicious:  !t.mem.Expired(),
		MemoryGone:  t.mem.Expired(),
		Unreachable: t.path.Failed && t.now < t.path.RetryAt,
		AttackReady: t.cs.Ready(t.cfg.Attack, t.now),
	}
	core := decision.Core{Params: s.params(t), Table: t.cfg.Core.Table}
	return core.Evaluate(in)
}

// interrupt drops whatever the agent was in the middle of.
func (t *agentTick) interrupt() {
	t.motor.CancelManeuver()
	t.sub.Cancel()
	combat.Cancel(t.cs)
}

func (s *AISystem) transition(t *agentTick, out decision.Outcome) {
	from := t.st.Current
	if !out.Changed {
		// restaggered while stunned
		t.st.Elapsed = 0
		t.interrupt()
		return
	}

	s.hooks.exit(t, from)

	switch out.Next {
	case decision.Stunned:
		t.interrupt()
	case decision.Dead:
		t.interrupt()
		t.motor.Stop()
	case decision.Patrol:
		switch out.Rule {
		case "target_missing", "search_expired":
			t.mem.Forget()
			*t.path = pathfinding.Path{}
		}
	}
	if from == decision.Attack && t.cs.WindUp.Active {
		t.interrupt()
	}

	t.st.Previous = from
	t.st.Current = out.Next
	t.st.Elapsed = 0

	slog.Debug("ai: transition", "entity", t.e, "from", from, "to", out.Next, "rule", out.Rule)
	ecs.Emit(t.w, ecs.EventStateChanged, t.e, map[string]any{
		"from": from.String(),
		"to":   out.Next.String(),
		"rule": out.Rule,
	})
	if out.Next == decision.Dead {
		ecs.Emit(t.w, ecs.EventDied, t.e, nil)
	}

	s.hooks.enter(t, out.Next)
}

func (s *AISystem) writeAnimation(t *agentTick, changed bool) {
	t.link.State = t.st.Current.String()
	t.link.SubAction = t.sub.Kind.String()
	t.link.Facing = t.motor.Facing()
	t.link.Changed = changed
	if t.link.Speed <= 0 {
		t.link.Speed = 1
	}
}
