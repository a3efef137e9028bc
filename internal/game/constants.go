package game

// Board geometry and physics defaults. Units are pixels and pixels per frame.
const (
	DefaultBoardWidth  = 600.0
	DefaultBoardHeight = 550.0
	DefaultRows        = 12
	DefaultStartPegs   = 3
	DefaultPegSpacing  = 35.0
	DefaultTopOffset   = 30.0
	DefaultPegRadius   = 5.0
	DefaultBallRadius  = 10.0
	DefaultZoneGap     = 70.0 // vertical distance from the bottom peg row to the zone band
	DefaultZoneHeight  = 60.0

	Gravity         = 0.2 // added to vy every frame
	SpawnY          = 20.0
	BallRestitution = 0.5 // fixed ball-ball restitution
	WallDamping     = 0.8
	PegJitter       = 0.4 // max |vx| perturbation after a peg hit

	DefaultBallCost = 10
)

// DefaultMultipliers is the symmetric payout table: high at the edges, low in the centre.
var DefaultMultipliers = []float64{40, 15, 10, 5, 2, 0.5, 0.2, 0.2, 0.2, 0.5, 2, 5, 10, 15, 40}

// DefaultBoardConfig returns the standard board.
func DefaultBoardConfig() BoardConfig {
	m := make([]float64, len(DefaultMultipliers))
	copy(m, DefaultMultipliers)
	return BoardConfig{
		Width:       DefaultBoardWidth,
		Height:      DefaultBoardHeight,
		Rows:        DefaultRows,
		StartPegs:   DefaultStartPegs,
		Spacing:     DefaultPegSpacing,
		TopOffset:   DefaultTopOffset,
		PegRadius:   DefaultPegRadius,
		BallRadius:  DefaultBallRadius,
		ZoneGap:     DefaultZoneGap,
		ZoneHeight:  DefaultZoneHeight,
		Multipliers: m,
	}
}
