package economy

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// UpgradeKind names one of the independent upgrade tracks.
type UpgradeKind string

const (
	AutoDrop         UpgradeKind = "auto_drop"
	Bounciness       UpgradeKind = "bounciness"
	RewardMultiplier UpgradeKind = "reward_multiplier"
)

// Kinds lists the tracks in display order.
var Kinds = []UpgradeKind{AutoDrop, Bounciness, RewardMultiplier}

var (
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrMaxLevel          = errors.New("upgrade already at max level")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// ParseKind validates an upgrade name.
func ParseKind(s string) (UpgradeKind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUpgrade, s)
}

// Upgrade is one track. Values holds the effect at each level, so
// len(Values) == MaxLevel+1.
type Upgrade struct {
	Kind     UpgradeKind
	Level    int
	MaxLevel int
	BaseCost decimal.Decimal
	Values   []float64
}

// Cost of the next level: base × 2^level.
func (u *Upgrade) Cost() decimal.Decimal {
	return u.BaseCost.Mul(decimal.NewFromInt(2).Pow(decimal.NewFromInt(int64(u.Level))))
}

// Maxed reports whether no further level can be bought.
func (u *Upgrade) Maxed() bool {
	return u.Level >= u.MaxLevel
}

// Value is the effect at the current level.
func (u *Upgrade) Value() float64 {
	if len(u.Values) == 0 {
		return 0
	}
	i := u.Level
	if i < 0 {
		i = 0
	}
	if i >= len(u.Values) {
		i = len(u.Values) - 1
	}
	return u.Values[i]
}

// UpgradeState is the read model of a track.
type UpgradeState struct {
	Kind     UpgradeKind `json:"kind"`
	Level    int         `json:"level"`
	MaxLevel int         `json:"max_level"`
	Value    float64     `json:"value"`
	NextCost *string     `json:"next_cost"` // nil at max level
}

func (u *Upgrade) State() UpgradeState {
	s := UpgradeState{Kind: u.Kind, Level: u.Level, MaxLevel: u.MaxLevel, Value: u.Value()}
	if !u.Maxed() {
		c := u.Cost().String()
		s.NextCost = &c
	}
	return s
}

// Upgrades holds all three tracks.
type Upgrades struct {
	tracks map[UpgradeKind]*Upgrade
}

// DefaultUpgrades returns level-0 tracks: auto-drop intervals in milliseconds,
// restitution per bounciness level and reward multipliers.
func DefaultUpgrades() *Upgrades {
	return &Upgrades{tracks: map[UpgradeKind]*Upgrade{
		AutoDrop: {
			Kind: AutoDrop, MaxLevel: 3,
			BaseCost: decimal.NewFromInt(500),
			Values:   []float64{2000, 1500, 1000, 500},
		},
		Bounciness: {
			Kind: Bounciness, MaxLevel: 3,
			BaseCost: decimal.NewFromInt(1000),
			Values:   []float64{0.5, 0.7, 0.85, 1.0},
		},
		RewardMultiplier: {
			Kind: RewardMultiplier, MaxLevel: 3,
			BaseCost: decimal.NewFromInt(2000),
			Values:   []float64{1.0, 1.5, 2.0, 3.0},
		},
	}}
}

// Get returns the track for kind.
func (u *Upgrades) Get(kind UpgradeKind) (*Upgrade, error) {
	t, ok := u.tracks[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUpgrade, kind)
	}
	return t, nil
}

func (u *Upgrades) value(kind UpgradeKind) float64 {
	if t, ok := u.tracks[kind]; ok {
		return t.Value()
	}
	return 0
}

// States returns every track in display order.
func (u *Upgrades) States() []UpgradeState {
	out := make([]UpgradeState, 0, len(Kinds))
	for _, k := range Kinds {
		if t, ok := u.tracks[k]; ok {
			out = append(out, t.State())
		}
	}
	return out
}
