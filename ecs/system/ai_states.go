package system

import (
	"log/slog"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/combat"
	"github.com/milk9111/sentinel/decision"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/navigation"
	"github.com/milk9111/sentinel/perception"
)

// arriveTolerance is how close on X an agent must get to a search point.
const arriveTolerance = 8.0

func (s *AISystem) behave(t *agentTick) {
	switch t.st.Current {
	case decision.Patrol:
		s.patrol(t)
	case decision.Search:
		s.search(t)
	case decision.Chase:
		s.chase(t)
	case decision.Attack:
		s.attack(t)
	case decision.Reposition:
		s.reposition(t)
	case decision.Dead:
		t.motor.Stop()
	}
}

func (t *agentTick) terrain() (navigation.Report, navigation.WallReport) {
	var rep navigation.Report
	var wall navigation.WallReport
	if r, ok := ecs.Get(t.w, t.e, component.NavigationComponent.Kind()); ok {
		rep = *r
	}
	if r, ok := ecs.Get(t.w, t.e, component.WallScanComponent.Kind()); ok {
		wall = *r
	}
	return rep, wall
}

func (s *AISystem) patrol(t *agentTick) {
	if t.sub.Active() {
		if t.sub.Kind == decision.Analyze {
			t.motor.Stop()
		}
		return
	}
	rep, _ := t.terrain()
	dir := float64(t.motor.Facing())
	switch decision.PatrolStep(rep.Kind) {
	case decision.CmdJump:
		t.motor.Move(dir, t.cfg.PatrolSpeed)
		t.motor.Jump(t.cfg.JumpStrength)
	case decision.CmdAnalyze:
		t.motor.Stop()
		t.sub.Start(decision.Analyze, t.cfg.AnalyzeDuration, true)
	default:
		t.motor.Move(dir, t.cfg.PatrolSpeed)
	}
}

// steer walks toward dir, jumping, climbing or vaulting what is in the way.
// Turning takes a tick so the terrain probes face the new way first.
func (s *AISystem) steer(t *agentTick, dir, speed float64) {
	if int(dir) != t.motor.Facing() {
		t.motor.Move(dir, speed)
		return
	}
	rep, wall := t.terrain()
	switch decision.ChaseStep(rep, wall, t.cfg.VaultHeight) {
	case decision.CmdJump:
		t.motor.Move(dir, speed)
		t.motor.Jump(t.cfg.JumpStrength)
	case decision.CmdStop:
		t.motor.Stop()
	case decision.CmdClimb:
		opp := wall.Opportunity
		to := opp.Entry.Sub(cp.Vector{Y: t.cfg.HalfHeight})
		t.motor.ClimbToPosition(to, opp.Crouch)
		t.sub.Start(decision.Climb, t.cfg.ClimbTimeout, false)
		slog.Debug("ai: climb", "entity", t.e, "to", to, "crouch", opp.Crouch)
	case decision.CmdVault:
		h := math.Max(wall.Opportunity.EntryHeight, t.cfg.Navigation.KneeHeight)
		t.motor.Vault(h)
		t.sub.Start(decision.Vault, t.cfg.ClimbTimeout, false)
		slog.Debug("ai: vault", "entity", t.e, "height", h)
	default:
		t.motor.Move(dir, speed)
	}
}

func (s *AISystem) search(t *agentTick) {
	if t.sub.Active() {
		return
	}
	est := perception.Predict(*t.mem, t.cfg.Perception)
	if est.Mode == perception.ModeNone {
		t.motor.Stop()
		return
	}
	dx := est.Position.X - t.pos.X
	if math.Abs(dx) <= math.Max(arriveTolerance, t.cfg.HalfWidth) {
		t.motor.Stop()
		return
	}
	s.steer(t, signOr(dx, t.motor.Facing()), t.cfg.PatrolSpeed)
}

// chaseDirection follows the planned route when there is one and falls back
// to heading straight at the target. arrived reports that the last waypoint
// has been reached.
func (s *AISystem) chaseDirection(t *agentTick) (dir float64, arrived bool) {
	dir = signOr(t.targetPos.X-t.pos.X, t.motor.Facing())
	planner := t.cfg.Planner
	if planner == nil {
		return dir, false
	}
	if planner.NeedsReplan(*t.path, t.targetPos, t.now) {
		path, ok := planner.Plan(*t.path, t.pos, t.targetPos, t.now)
		*t.path = path
		if !ok {
			slog.Debug("ai: no path to target", "entity", t.e, "retry_at", path.RetryAt)
			return dir, false
		}
	}
	wp, done := planner.Follow(t.path, t.pos)
	if done {
		return dir, true
	}
	if math.Abs(wp.X-t.pos.X) <= arriveTolerance {
		return dir, false
	}
	return signOr(wp.X-t.pos.X, t.motor.Facing()), false
}

func (s *AISystem) chase(t *agentTick) {
	if t.sub.Active() {
		return
	}
	dir, arrived := s.chaseDirection(t)
	if arrived || t.distance() <= t.cfg.Core.Params.AttackRange {
		// end of the route, or in range but cooling down
		t.motor.Stop()
		face(t.motor, t.targetPos.X-t.pos.X)
		return
	}
	s.steer(t, dir, t.cfg.ChaseSpeed)
}

func (s *AISystem) attack(t *agentTick) {
	if t.cs.WindUp.Active {
		if t.cfg.Attack.FreezeDuringWindUp {
			t.motor.Stop()
		}
		return
	}
	if t.sub.Active() {
		return
	}
	if !combat.TryAttack(t.cs, t.cfg.Attack, t.now, t.pos, t.targetPos, t.motor.Facing()) {
		t.motor.Stop()
		face(t.motor, t.targetPos.X-t.pos.X)
		return
	}
	face(t.motor, float64(t.cs.WindUp.Facing))
	if t.cfg.Attack.FreezeDuringWindUp {
		t.motor.Stop()
	}
	t.sub.Start(decision.WindUp, t.cs.WindUp.Duration, false)
	ecs.Emit(t.w, ecs.EventAttack, t.e, map[string]any{
		"phase": "wind_up",
		"skill": t.cs.WindUp.Skill,
	})
}

// reposition backs away while keeping the target in view. Navigation
// probes the direction of travel for this state.
func (s *AISystem) reposition(t *agentTick) {
	if t.sub.Active() {
		return
	}
	toward := signOr(t.targetPos.X-t.pos.X, t.motor.Facing())
	away := -toward
	rep, _ := t.terrain()
	switch decision.PatrolStep(rep.Kind) {
	case decision.CmdJump:
		t.motor.Move(away, t.cfg.RepositionSpeed)
		t.motor.Jump(t.cfg.JumpStrength)
	case decision.CmdAnalyze:
		// cornered
		t.motor.Stop()
	default:
		t.motor.Move(away, t.cfg.RepositionSpeed)
	}
	face(t.motor, toward)
}
