package battle

import (
	"fmt"
	"slices"

	"arena/internal/game"
)

// Combatant is the battle-scoped view of a character instance. HP changes
// stay on the combatant and never reach the persistent instance.
type Combatant struct {
	Instance game.CharacterInstance
	Stats    game.Stats
	MaxHP    int
	HP       int
	Moves    []game.Move
}

// NewCombatant snapshots inst with its equipment-adjusted stats and full HP.
// Moveset entries that do not resolve are returned so the caller can report
// them; they have already been replaced by the first physical move. Moves
// above the instance's level are left out.
func NewCombatant(c *game.Catalog, inst game.CharacterInstance) (*Combatant, []string, error) {
	stats, err := c.Stats(inst)
	if err != nil {
		return nil, nil, err
	}
	moves, unknown := c.MovesFor(inst)
	moves = slices.DeleteFunc(moves, func(m game.Move) bool { return m.UnlockLevel > inst.Level })
	if len(moves) == 0 {
		moves = []game.Move{c.FirstPhysical()}
	}
	return &Combatant{
		Instance: inst,
		Stats:    stats,
		MaxHP:    stats.HP,
		HP:       stats.HP,
		Moves:    moves,
	}, unknown, nil
}

func (c *Combatant) Name() string  { return c.Instance.Name }
func (c *Combatant) Level() int    { return c.Instance.Level }
func (c *Combatant) Alive() bool   { return c.HP > 0 }
func (c *Combatant) Fainted() bool { return c.HP <= 0 }

// HPPercent is current HP as a percentage of max HP.
func (c *Combatant) HPPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP) * 100
}

// TakeDamage lowers HP by n, never below zero, and returns what was removed.
func (c *Combatant) TakeDamage(n int) int {
	if n > c.HP {
		n = c.HP
	}
	if n < 0 {
		n = 0
	}
	c.HP -= n
	return n
}

// Restore raises HP by n, never above max HP, and returns what was added.
func (c *Combatant) Restore(n int) int {
	if room := c.MaxHP - c.HP; n > room {
		n = room
	}
	if n < 0 {
		n = 0
	}
	c.HP += n
	return n
}

func (c *Combatant) String() string {
	return fmt.Sprintf("%s Lv.%d (%d/%d HP)", c.Name(), c.Level(), c.HP, c.MaxHP)
}

// firstLiving returns the index of the first combatant with HP left, or -1.
func firstLiving(team []*Combatant) int {
	for i, c := range team {
		if c.Alive() {
			return i
		}
	}
	return -1
}

func livingIndices(team []*Combatant) []int {
	var out []int
	for i, c := range team {
		if c.Alive() {
			out = append(out, i)
		}
	}
	return out
}
