package component

// Target is a weak reference to the entity an agent hunts. It is checked
// for liveness before every use.
type Target struct {
	Entity uint64
}

var TargetComponent = NewComponent[Target]()
