package game

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBoard is returned when a BoardConfig cannot produce a playable layout.
var ErrInvalidBoard = errors.New("invalid board config")

// BoardConfig describes the static layout of a board.
type BoardConfig struct {
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Rows        int       `json:"rows"`
	StartPegs   int       `json:"start_pegs"` // pegs in the top row; each row adds one
	Spacing     float64   `json:"spacing"`
	TopOffset   float64   `json:"top_offset"`
	PegRadius   float64   `json:"peg_radius"`
	BallRadius  float64   `json:"ball_radius"`
	ZoneGap     float64   `json:"zone_gap"`
	ZoneHeight  float64   `json:"zone_height"`
	Multipliers []float64 `json:"multipliers"`
}

// Peg is a fixed circular obstacle. All pegs share the board's PegRadius.
type Peg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position returns the peg centre as a vector.
func (p Peg) Position() Vec2 {
	return Vec2{X: p.X, Y: p.Y}
}

// ScoreZone is one horizontal payout band at the bottom of the board.
type ScoreZone struct {
	X          float64 `json:"x"`
	Width      float64 `json:"width"`
	Y          float64 `json:"y"`
	Height     float64 `json:"height"`
	Multiplier float64 `json:"multiplier"`
}

// Right returns the zone's right edge.
func (z ScoreZone) Right() float64 {
	return z.X + z.Width
}

// Board holds the immutable peg and zone sets of a session.
type Board struct {
	cfg   BoardConfig
	pegs  []Peg
	zones []ScoreZone
	edges []float64 // len(zones)+1 boundaries, edges[i] == zones[i].X
}

func (c BoardConfig) validate() error {
	switch {
	case !(c.Width > 0) || !(c.Height > 0):
		return fmt.Errorf("%w: board size %.2fx%.2f", ErrInvalidBoard, c.Width, c.Height)
	case c.Rows < 1:
		return fmt.Errorf("%w: rows must be >= 1, got %d", ErrInvalidBoard, c.Rows)
	case c.StartPegs < 1:
		return fmt.Errorf("%w: start pegs must be >= 1, got %d", ErrInvalidBoard, c.StartPegs)
	case c.StartPegs+c.Rows-1 < 2:
		return fmt.Errorf("%w: bottom row needs at least 2 pegs", ErrInvalidBoard)
	case !(c.Spacing > 0):
		return fmt.Errorf("%w: spacing must be positive", ErrInvalidBoard)
	case !(c.PegRadius > 0) || !(c.BallRadius > 0):
		return fmt.Errorf("%w: radii must be positive", ErrInvalidBoard)
	case c.ZoneHeight < 0 || c.ZoneGap < 0:
		return fmt.Errorf("%w: zone gap and height must be non-negative", ErrInvalidBoard)
	case len(c.Multipliers) == 0:
		return fmt.Errorf("%w: no zone multipliers", ErrInvalidBoard)
	}
	for i, m := range c.Multipliers {
		if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("%w: multiplier %d is %v", ErrInvalidBoard, i, m)
		}
	}
	return nil
}

// NewBoard lays out pegs in a centred triangle and places one scoring zone per
// multiplier below the bottom row.
func NewBoard(cfg BoardConfig) (*Board, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	mult := make([]float64, len(cfg.Multipliers))
	copy(mult, cfg.Multipliers)
	cfg.Multipliers = mult

	b := &Board{cfg: cfg}
	b.pegs = layoutPegs(cfg)
	b.zones, b.edges = layoutZones(cfg, b.pegs)
	return b, nil
}

func layoutPegs(cfg BoardConfig) []Peg {
	total := cfg.Rows*cfg.StartPegs + cfg.Rows*(cfg.Rows-1)/2
	pegs := make([]Peg, 0, total)
	for row := 0; row < cfg.Rows; row++ {
		pegsInRow := cfg.StartPegs + row
		rowWidth := float64(pegsInRow) * cfg.Spacing
		startX := (cfg.Width - rowWidth) / 2
		y := float64(row+1)*cfg.Spacing + cfg.TopOffset

		for i := 0; i < pegsInRow; i++ {
			pegs = append(pegs, Peg{
				X: startX + float64(i)*cfg.Spacing + cfg.Spacing/2,
				Y: y,
			})
		}
	}
	return pegs
}

// layoutZones divides the bottom row span evenly. Edges are derived from the
// span rather than accumulated so neighbouring zones share the exact same edge.
func layoutZones(cfg BoardConfig, pegs []Peg) ([]ScoreZone, []float64) {
	bottomCount := cfg.StartPegs + cfg.Rows - 1
	bottom := pegs[len(pegs)-bottomCount:]
	left := bottom[0].X
	right := bottom[len(bottom)-1].X
	span := right - left
	n := len(cfg.Multipliers)
	y := bottom[0].Y + cfg.ZoneGap

	edges := make([]float64, n+1)
	for i := 0; i < n; i++ {
		edges[i] = left + span*float64(i)/float64(n)
	}
	edges[n] = right

	zones := make([]ScoreZone, n)
	for i := 0; i < n; i++ {
		zones[i] = ScoreZone{
			X:          edges[i],
			Width:      edges[i+1] - edges[i],
			Y:          y,
			Height:     cfg.ZoneHeight,
			Multiplier: cfg.Multipliers[i],
		}
	}
	return zones, edges
}

// Config returns a copy of the layout parameters.
func (b *Board) Config() BoardConfig {
	cfg := b.cfg
	cfg.Multipliers = append([]float64(nil), b.cfg.Multipliers...)
	return cfg
}

// Pegs returns a copy of the peg set.
func (b *Board) Pegs() []Peg {
	return append([]Peg(nil), b.pegs...)
}

// Zones returns a copy of the zone set, ordered left to right.
func (b *Board) Zones() []ScoreZone {
	return append([]ScoreZone(nil), b.zones...)
}

func (b *Board) Width() float64      { return b.cfg.Width }
func (b *Board) Height() float64     { return b.cfg.Height }
func (b *Board) BallRadius() float64 { return b.cfg.BallRadius }
func (b *Board) PegRadius() float64  { return b.cfg.PegRadius }

// ScoringLineY is the top edge of the zone band. A ball below it settles.
func (b *Board) ScoringLineY() float64 {
	return b.zones[0].Y
}

// RemovalY is the depth past which a ball is culled.
func (b *Board) RemovalY() float64 {
	return b.cfg.Height + b.cfg.BallRadius
}

// ZoneAt returns the index of the zone containing x. Zones are left-inclusive
// and right-exclusive except the last one, which also owns its right edge.
func (b *Board) ZoneAt(x float64) (int, bool) {
	last := len(b.zones) - 1
	for i := range b.zones {
		lo, hi := b.edges[i], b.edges[i+1]
		if x < lo {
			continue
		}
		if x < hi || (i == last && x == hi) {
			return i, true
		}
	}
	return -1, false
}
