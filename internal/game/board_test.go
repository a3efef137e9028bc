package game

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultBoardPegLayout(t *testing.T) {
	b := mustDefaultBoard(t)
	pegs := b.Pegs()

	want := 0
	for r := 0; r < DefaultRows; r++ {
		want += DefaultStartPegs + r
	}
	if len(pegs) != want {
		t.Fatalf("peg count = %d, want %d", len(pegs), want)
	}

	// Every row is centred on the board.
	idx := 0
	for r := 0; r < DefaultRows; r++ {
		n := DefaultStartPegs + r
		row := pegs[idx : idx+n]
		mid := (row[0].X + row[n-1].X) / 2
		if math.Abs(mid-DefaultBoardWidth/2) > 1e-9 {
			t.Errorf("row %d centre = %.4f, want %.4f", r, mid, DefaultBoardWidth/2)
		}
		wantY := float64(r+1)*DefaultPegSpacing + DefaultTopOffset
		for _, p := range row {
			if p.Y != wantY {
				t.Errorf("row %d peg y = %.2f, want %.2f", r, p.Y, wantY)
			}
		}
		idx += n
	}
}

func TestZonesSpanBottomRow(t *testing.T) {
	b := mustDefaultBoard(t)
	pegs := b.Pegs()
	zones := b.Zones()

	if len(zones) != len(DefaultMultipliers) {
		t.Fatalf("zone count = %d, want %d", len(zones), len(DefaultMultipliers))
	}

	bottomCount := DefaultStartPegs + DefaultRows - 1
	bottom := pegs[len(pegs)-bottomCount:]
	first, last := bottom[0].X, bottom[len(bottom)-1].X

	if zones[0].X != first {
		t.Errorf("first zone x = %.4f, want %.4f", zones[0].X, first)
	}
	if got := zones[len(zones)-1].Right(); math.Abs(got-last) > 1e-9 {
		t.Errorf("last zone right = %.4f, want %.4f", got, last)
	}
	for i, z := range zones {
		if z.Y != bottom[0].Y+DefaultZoneGap {
			t.Errorf("zone %d y = %.2f", i, z.Y)
		}
		if z.Multiplier != DefaultMultipliers[i] {
			t.Errorf("zone %d multiplier = %v, want %v", i, z.Multiplier, DefaultMultipliers[i])
		}
	}
}

func TestZonesContiguousWithUnevenDivision(t *testing.T) {
	cfg := DefaultBoardConfig()
	cfg.Multipliers = []float64{3, 1, 0.5, 1, 3, 7, 11}
	cfg.Spacing = 33.3
	b, err := NewBoard(cfg)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	zones := b.Zones()
	for i := 1; i < len(zones); i++ {
		if zones[i].X != b.edges[i] {
			t.Errorf("zone %d x = %.12f, want edge %.12f", i, zones[i].X, b.edges[i])
		}
		if math.Abs(zones[i-1].Right()-zones[i].X) > 1e-9 {
			t.Errorf("gap/overlap between zone %d and %d: %.12f vs %.12f", i-1, i, zones[i-1].Right(), zones[i].X)
		}
	}

	// Sweep across the band: every x inside the span maps to exactly one zone.
	left, right := zones[0].X, b.edges[len(zones)]
	for x := left; x <= right; x += 0.01 {
		if _, ok := b.ZoneAt(x); !ok {
			t.Fatalf("x=%.4f fell between zones", x)
		}
	}
	if _, ok := b.ZoneAt(right); !ok {
		t.Error("right edge of the final zone should be inclusive")
	}
}

func TestZoneAtBoundaries(t *testing.T) {
	b := mustDefaultBoard(t)
	zones := b.Zones()

	for i := 1; i < len(zones); i++ {
		idx, ok := b.ZoneAt(zones[i].X)
		if !ok || idx != i {
			t.Errorf("x at left edge of zone %d resolved to %d (ok=%v)", i, idx, ok)
		}
	}

	last := len(zones) - 1
	if idx, ok := b.ZoneAt(b.edges[last+1]); !ok || idx != last {
		t.Errorf("right edge of last zone resolved to %d (ok=%v), want %d", idx, ok, last)
	}
	if _, ok := b.ZoneAt(zones[0].X - 0.001); ok {
		t.Error("x left of the band should not match")
	}
	if _, ok := b.ZoneAt(b.edges[last+1] + 0.001); ok {
		t.Error("x right of the band should not match")
	}
}

func TestNewBoardRejectsInvalidConfig(t *testing.T) {
	cases := map[string]func(*BoardConfig){
		"zero width":          func(c *BoardConfig) { c.Width = 0 },
		"no rows":             func(c *BoardConfig) { c.Rows = 0 },
		"no start pegs":       func(c *BoardConfig) { c.StartPegs = 0 },
		"single peg row":      func(c *BoardConfig) { c.Rows, c.StartPegs = 1, 1 },
		"zero spacing":        func(c *BoardConfig) { c.Spacing = 0 },
		"zero ball radius":    func(c *BoardConfig) { c.BallRadius = 0 },
		"no multipliers":      func(c *BoardConfig) { c.Multipliers = nil },
		"negative multiplier": func(c *BoardConfig) { c.Multipliers = []float64{1, -2} },
		"NaN multiplier":      func(c *BoardConfig) { c.Multipliers = []float64{math.NaN()} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultBoardConfig()
			mutate(&cfg)
			if _, err := NewBoard(cfg); !errors.Is(err, ErrInvalidBoard) {
				t.Errorf("err = %v, want ErrInvalidBoard", err)
			}
		})
	}
}

func TestBoardCopiesMultipliers(t *testing.T) {
	cfg := DefaultBoardConfig()
	b, err := NewBoard(cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Multipliers[0] = 999
	if b.Zones()[0].Multiplier == 999 {
		t.Error("board must not alias the caller's multiplier slice")
	}
	zones := b.Zones()
	zones[0].Multiplier = 999
	if b.Zones()[0].Multiplier == 999 {
		t.Error("Zones must return a copy")
	}
}
