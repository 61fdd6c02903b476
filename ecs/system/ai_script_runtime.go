package system

import (
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/sentinel/decision"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/prefabs"
	"github.com/pkg/errors"
)

// Hook scripts observe state changes. They can emit events, log and tune
// animation speed but never choose the agent's state.
const hookDispatchScript = `
if __phase == "enter" {
	onEnter(__engine, __state, __current_state)
} else if __phase == "update" {
	update(__engine, __state, __current_state)
} else if __phase == "exit" {
	onExit(__engine, __state, __current_state)
}
`

type scriptRuntime struct {
	name      string
	compiled  *tengo.Compiled
	stateData *tengo.Map
	broken    bool
}

// ScriptHooks compiles each script once and keeps a clone per agent so
// script globals never leak between agents.
type ScriptHooks struct {
	compiled map[string]*tengo.Compiled
	runtimes map[ecs.Entity]*scriptRuntime
	load     func(name string) ([]byte, error)
}

func NewScriptHooks() *ScriptHooks {
	return &ScriptHooks{
		compiled: map[string]*tengo.Compiled{},
		runtimes: map[ecs.Entity]*scriptRuntime{},
		load:     prefabs.LoadScript,
	}
}

// Invalidate drops a script so the next tick recompiles it from disk.
func (h *ScriptHooks) Invalidate(name string) {
	if h == nil {
		return
	}
	delete(h.compiled, name)
	for e, rt := range h.runtimes {
		if rt.name == name {
			delete(h.runtimes, e)
		}
	}
}

// Forget releases a destroyed agent's runtime.
func (h *ScriptHooks) Forget(e ecs.Entity) {
	if h == nil {
		return
	}
	delete(h.runtimes, e)
}

func (h *ScriptHooks) compile(name string) (*tengo.Compiled, error) {
	if c, ok := h.compiled[name]; ok {
		return c, nil
	}
	src, err := h.load(name)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + hookDispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__current_state", "")
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, errors.Wrapf(err, "compile script %s", name)
	}
	h.compiled[name] = compiled
	return compiled, nil
}

func (h *ScriptHooks) runtimeFor(t *agentTick) *scriptRuntime {
	if h == nil {
		return nil
	}
	sc, ok := ecs.Get(t.w, t.e, component.ScriptComponent.Kind())
	if !ok || strings.TrimSpace(sc.Name) == "" {
		return nil
	}
	if rt, ok := h.runtimes[t.e]; ok && rt.name == sc.Name {
		if rt.broken {
			return nil
		}
		return rt
	}

	rt := &scriptRuntime{name: sc.Name, stateData: &tengo.Map{Value: map[string]tengo.Object{}}}
	h.runtimes[t.e] = rt
	compiled, err := h.compile(sc.Name)
	if err != nil {
		// logged once; the agent keeps running without hooks
		slog.Error("ai: load script", "entity", t.e, "script", sc.Name, "err", err)
		rt.broken = true
		return nil
	}
	rt.compiled = compiled.Clone()
	for k, v := range sc.Vars {
		rt.stateData.Value[k] = &tengo.Float{Value: v}
	}
	return rt
}

func (h *ScriptHooks) enter(t *agentTick, state decision.State) {
	h.run(t, "enter", state)
}

func (h *ScriptHooks) exit(t *agentTick, state decision.State) {
	h.run(t, "exit", state)
}

func (h *ScriptHooks) update(t *agentTick) {
	h.run(t, "update", t.st.Current)
}

func (h *ScriptHooks) run(t *agentTick, phase string, state decision.State) {
	rt := h.runtimeFor(t)
	if rt == nil {
		return
	}
	if err := rt.runPhase(phase, state, buildHookEngine(t)); err != nil {
		slog.Error("ai: script "+phase, "entity", t.e, "script", rt.name, "err", err)
	}
}

func (rt *scriptRuntime) runPhase(phase string, state decision.State, engine *tengo.ImmutableMap) error {
	if rt == nil || rt.compiled == nil {
		return errors.New("nil script runtime")
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	if err := rt.compiled.Set("__current_state", state.String()); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func vec(x, y float64) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}
}

func buildHookEngine(t *agentTick) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["emit"] = &tengo.UserFunction{Name: "emit", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		data := map[string]any{"name": name}
		if len(args) > 1 {
			data["value"] = objectToAny(args[1])
		}
		ecs.Emit(t.w, ecs.EventScript, t.e, data)
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		slog.Info("script", "entity", t.e, "msg", strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vec(t.pos.X, t.pos.Y), nil
	}}

	values["get_target_position"] = &tengo.UserFunction{Name: "get_target_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if !t.hasTarget {
			return vec(t.pos.X, t.pos.Y), nil
		}
		return vec(t.targetPos.X, t.targetPos.Y), nil
	}}

	values["get_facing"] = &tengo.UserFunction{Name: "get_facing", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(t.motor.Facing())}, nil
	}}

	values["elapsed"] = &tengo.UserFunction{Name: "elapsed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: t.st.Elapsed}, nil
	}}

	values["awareness"] = &tengo.UserFunction{Name: "awareness", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: t.mem.Level.String()}, nil
	}}

	values["set_anim_speed"] = &tengo.UserFunction{Name: "set_anim_speed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		v, ok := objectToAny(args[0]).(float64)
		if !ok {
			if i, isInt := objectToAny(args[0]).(int); isInt {
				v, ok = float64(i), true
			}
		}
		if !ok || v <= 0 {
			return tengo.FalseValue, nil
		}
		t.link.Speed = v
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
