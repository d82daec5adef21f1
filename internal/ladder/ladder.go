// Package ladder maps rank points to tiers and works out what a PvE result
// is worth.
package ladder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	DefaultThreshold = 500
	DefaultFloor     = 5
)

// Tier is one band of the ladder. LossRP is stored negative.
type Tier struct {
	Name      string `yaml:"name" json:"name"`
	Min       int    `yaml:"min" json:"min"`
	Max       int    `yaml:"max" json:"max"`
	WinRP     int    `yaml:"win_rp" json:"win_rp"`
	LossRP    int    `yaml:"loss_rp" json:"loss_rp"`
	CoinBonus int    `yaml:"coin_bonus" json:"coin_bonus"`
}

func (t Tier) Contains(rp int) bool {
	return rp >= t.Min && rp <= t.Max
}

// Ladder is the ordered tier table plus the mismatch tuning. When two
// parties are more than Threshold RP apart, the swing is cut to Floor.
type Ladder struct {
	Tiers     []Tier `yaml:"tiers"`
	Threshold int    `yaml:"threshold"`
	Floor     int    `yaml:"floor"`
}

// Default is the ladder used when no file is configured.
func Default() *Ladder {
	return &Ladder{
		Threshold: DefaultThreshold,
		Floor:     DefaultFloor,
		Tiers: []Tier{
			{Name: "Bronze", Min: 0, Max: 999, WinRP: 30, LossRP: -10, CoinBonus: 50},
			{Name: "Silver", Min: 1000, Max: 1999, WinRP: 25, LossRP: -15, CoinBonus: 100},
			{Name: "Gold", Min: 2000, Max: 3499, WinRP: 20, LossRP: -20, CoinBonus: 200},
			{Name: "Platinum", Min: 3500, Max: 4999, WinRP: 15, LossRP: -25, CoinBonus: 350},
			{Name: "Diamond", Min: 5000, Max: 1 << 30, WinRP: 10, LossRP: -30, CoinBonus: 500},
		},
	}
}

// Load reads a ladder from a YAML file.
func Load(path string) (*Ladder, error) {
	b, err := os.ReadFile(filepath.Clean(path)) //nolint:gosec // path is cleaned
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes and validates ladder YAML. Missing threshold and floor fall
// back to the defaults.
func Parse(b []byte) (*Ladder, error) {
	var l Ladder
	if err := yaml.Unmarshal(b, &l); err != nil {
		return nil, err
	}
	if err := l.normalize(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *Ladder) normalize() error {
	if len(l.Tiers) == 0 {
		return errors.New("ladder: no tiers")
	}
	sort.SliceStable(l.Tiers, func(i, j int) bool { return l.Tiers[i].Min < l.Tiers[j].Min })
	for i := range l.Tiers {
		t := &l.Tiers[i]
		if t.Max < t.Min {
			return fmt.Errorf("ladder: tier %q has max %d below min %d", t.Name, t.Max, t.Min)
		}
		if t.LossRP > 0 {
			t.LossRP = -t.LossRP
		}
	}
	if l.Threshold <= 0 {
		l.Threshold = DefaultThreshold
	}
	if l.Floor <= 0 {
		l.Floor = DefaultFloor
	}
	return nil
}

// Tune overrides the mismatch threshold and floor. Non-positive values are
// ignored.
func (l *Ladder) Tune(threshold, floor int) {
	if threshold > 0 {
		l.Threshold = threshold
	}
	if floor > 0 {
		l.Floor = floor
	}
}

// TierFor returns the tier whose band holds rp, or the lowest tier.
func (l *Ladder) TierFor(rp int) Tier {
	for _, t := range l.Tiers {
		if t.Contains(rp) {
			return t
		}
	}
	return l.Tiers[0]
}

// DeltaFor is the RP change for the player on the given side of a result:
// the winner's tier WinRP when won, otherwise the loser's tier LossRP. A gap
// larger than Threshold between the two cuts the swing to Floor.
func (l *Ladder) DeltaFor(winnerRP, loserRP int, won bool) int {
	mismatch := abs(winnerRP-loserRP) > l.Threshold
	if won {
		d := l.TierFor(winnerRP).WinRP
		if mismatch {
			d = min(d, l.Floor)
		}
		return d
	}
	d := l.TierFor(loserRP).LossRP
	if mismatch {
		d = max(d, -l.Floor)
	}
	return d
}

// Outcome is a ladder update for one player.
type Outcome struct {
	Delta     int  `json:"delta"`
	RP        int  `json:"rp"`
	Before    Tier `json:"before"`
	After     Tier `json:"after"`
	CoinDelta int  `json:"coin_delta"`
	Coins     int  `json:"coins"`
}

func (o Outcome) Promoted() bool { return o.After.Min > o.Before.Min }
func (o Outcome) Demoted() bool  { return o.After.Min < o.Before.Min }

// Apply settles a result for a player holding playerRP and coins against an
// opponent rated opponentRP. RP and coins never go below zero. The coin
// bonus comes from the tier held before the battle.
func (l *Ladder) Apply(playerRP, opponentRP int, won bool, coins int) Outcome {
	before := l.TierFor(playerRP)
	var delta int
	if won {
		delta = l.DeltaFor(playerRP, opponentRP, true)
	} else {
		delta = l.DeltaFor(opponentRP, playerRP, false)
	}
	rp := max(0, playerRP+delta)

	coinDelta := before.CoinBonus
	if !won {
		coinDelta = -before.CoinBonus
	}
	newCoins := max(0, coins+coinDelta)

	return Outcome{
		Delta:     rp - playerRP,
		RP:        rp,
		Before:    before,
		After:     l.TierFor(rp),
		CoinDelta: newCoins - coins,
		Coins:     newCoins,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
