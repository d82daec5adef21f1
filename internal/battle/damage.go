package battle

import (
	"math"

	"arena/internal/game"
)

const (
	DefaultCritChance     = 5
	DefaultCritMultiplier = 1.5
)

// Result is the outcome of one move. Heal is only set for heal-type moves.
type Result struct {
	Hit    bool
	Damage int
	Crit   bool
	Heal   int
}

// Resolver rolls accuracy and criticals and computes damage. It does not
// touch HP; the session applies the result.
type Resolver struct {
	Rand           game.Rand
	CritChance     int // percent
	CritMultiplier float64
}

func NewResolver(r game.Rand) *Resolver {
	return &Resolver{Rand: r, CritChance: DefaultCritChance, CritMultiplier: DefaultCritMultiplier}
}

// Resolve uses move from attacker against defender.
func (r *Resolver) Resolve(attacker, defender *Combatant, move game.Move) Result {
	if game.RollPercent(r.Rand) > move.Accuracy {
		return Result{}
	}

	if move.Heal {
		amount := max(1, attacker.MaxHP*move.Power/100)
		if room := attacker.MaxHP - attacker.HP; amount > room {
			amount = room
		}
		return Result{Hit: true, Heal: amount}
	}

	atk, def := attackStats(attacker.Stats, defender.Stats, move.Category)
	mult := 1.0
	crit := game.RollPercent(r.Rand) <= r.CritChance
	if crit {
		mult = r.CritMultiplier
	}
	return Result{
		Hit:    true,
		Damage: Damage(attacker.Level(), move.Power, atk, def, mult),
		Crit:   crit,
	}
}

func attackStats(a, d game.Stats, cat game.Category) (atk, def int) {
	if cat == game.Special {
		return a.SPAtk, d.SPDef
	}
	return a.ATK, d.DEF
}

// Damage is max(1, round((((2*level/5+2)*power*atk/def)/50+2)*mult)).
func Damage(level, power, atk, def int, mult float64) int {
	if def < 1 {
		def = 1
	}
	base := (2*float64(level)/5 + 2) * float64(power) * float64(atk) / float64(def)
	d := int(math.Round((base/50 + 2) * mult))
	return max(1, d)
}
