package component

type AgentTag struct{}

var AgentTagComponent = NewComponent[AgentTag]()

// PlayerTag marks entities agents may be given as targets.
type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type LevelTag struct {
	Name string
}

var LevelTagComponent = NewComponent[LevelTag]()
