package component

import "github.com/milk9111/sentinel/perception"

// PerceptionComponent holds this tick's visibility result.
var PerceptionComponent = NewComponent[perception.Result]()

// MemoryComponent holds the agent's awareness and last known position.
var MemoryComponent = NewComponent[perception.Memory]()

// NoiseEmitter makes an entity audible while it moves. Emitted is true on
// the ticks a noise went out.
type NoiseEmitter struct {
	Period   float64
	MinSpeed float64
	Timer    float64
	Emitted  bool
}

var NoiseEmitterComponent = NewComponent[NoiseEmitter]()
