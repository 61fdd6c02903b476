package component

// AnimationLink is written by the AI every tick for renderers to read. It
// never feeds back into decisions.
type AnimationLink struct {
	State     string
	SubAction string
	Speed     float64
	Facing    int
	Changed   bool
}

var AnimationLinkComponent = NewComponent[AnimationLink]()
