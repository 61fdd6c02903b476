package component

type Health struct {
	Current float64
	Max     float64
}

func (h Health) Dead() bool {
	return h.Current <= 0
}

// Vitals are the flat reductions applied to incoming hits.
type Vitals struct {
	Defense             float64
	KnockbackResistance float64
}

var HealthComponent = NewComponent[Health]()
var VitalsComponent = NewComponent[Vitals]()
