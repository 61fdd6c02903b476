package common

const (
	// TileSize is the edge length of one level tile in world units (pixels).
	TileSize = 32.0

	// TickRate is the fixed simulation rate.
	TickRate = 60

	// Dt is the fixed tick duration in seconds.
	Dt = 1.0 / TickRate

	Gravity = 1400.0
)
