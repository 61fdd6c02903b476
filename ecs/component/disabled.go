package component

// Disabled takes an entity out of every system. It is added once when an
// agent is missing something it cannot run without.
type Disabled struct {
	Reason string
}

var DisabledComponent = NewComponent[Disabled]()
