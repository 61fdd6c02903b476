package component

// Script names a hook script attached to an agent. Vars are exposed to the
// script as read-only tuning values.
type Script struct {
	Name string
	Vars map[string]float64
}

var ScriptComponent = NewComponent[Script]()
