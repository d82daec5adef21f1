package battle

import (
	"sort"

	"arena/internal/game"
)

// Policy holds the AI heuristics. It is not safe for concurrent use because
// it draws from a single Rand.
type Policy struct {
	Catalog *game.Catalog
	Rand    game.Rand

	SwitchBelow  float64 // HP% under which a switch is considered
	SwitchChance int     // percent
	RosterSize   int
}

func NewPolicy(c *game.Catalog, r game.Rand) *Policy {
	return &Policy{Catalog: c, Rand: r, SwitchBelow: 30, SwitchChance: 70, RosterSize: game.MaxTeamSize}
}

// ScoreMove is the deterministic part of a move's score.
func ScoreMove(active, target *Combatant, m game.Move) float64 {
	score := float64(m.Power) + float64(m.Accuracy-85)*0.5
	if target != nil && target.HPPercent() < 30 {
		score += 0.5 * float64(m.Power)
	}
	if active.HPPercent() < 40 {
		if m.Heal {
			score += 50
		} else if m.Power < 60 {
			score += 20
		}
	}
	if m.Element != "" {
		score += 10
	}
	return score
}

// ChooseMove scores every available move, adds jitter in [-10,10] and picks
// the best.
func (p *Policy) ChooseMove(active, target *Combatant, moves []game.Move) game.Move {
	if len(moves) == 0 {
		return p.Catalog.FirstPhysical()
	}
	best, bestScore := 0, 0.0
	for i, m := range moves {
		s := ScoreMove(active, target, m) + game.Uniform(p.Rand, -10, 10)
		if i == 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return moves[best]
}

// ChooseSwitch decides whether the active combatant at index active should
// be swapped out and for whom.
func (p *Policy) ChooseSwitch(active int, team []*Combatant) (int, bool) {
	if active < 0 || active >= len(team) || team[active].HPPercent() >= p.SwitchBelow {
		return 0, false
	}
	var bench []int
	for _, i := range livingIndices(team) {
		if i != active {
			bench = append(bench, i)
		}
	}
	if len(bench) == 0 {
		return 0, false
	}
	if game.RollPercent(p.Rand) > p.SwitchChance {
		return 0, false
	}
	return bench[p.Rand.Intn(len(bench))], true
}

// PickLiving returns a random living index, or -1 when everyone fainted.
func (p *Policy) PickLiving(team []*Combatant) int {
	alive := livingIndices(team)
	if len(alive) == 0 {
		return -1
	}
	return alive[p.Rand.Intn(len(alive))]
}

// BuildRoster creates an opponent team of distinct templates at avgLevel.
// Every stat gets a high IV and the moveset prefers the strongest unlocked
// signature moves, padded with common moves.
func (p *Policy) BuildRoster(avgLevel int, owner string) []game.CharacterInstance {
	level := game.ClampLevel(avgLevel)
	templates := append([]*game.CharacterTemplate(nil), p.Catalog.Characters...)
	for i := len(templates) - 1; i > 0; i-- {
		j := p.Rand.Intn(i + 1)
		templates[i], templates[j] = templates[j], templates[i]
	}
	n := min(p.RosterSize, len(templates))

	roster := make([]game.CharacterInstance, 0, n)
	for i, t := range templates[:n] {
		ivs := game.HighIVs(p.Rand, game.StatKeys)
		roster = append(roster, game.CharacterInstance{
			ID:         int64(i + 1),
			TemplateID: t.ID,
			Name:       t.Name,
			Level:      level,
			IVs:        ivs,
			IVPercent:  ivs.IVPercent(),
			Moveset:    p.autoMoveset(t.ID, level),
			OwnerID:    owner,
		})
	}
	return roster
}

func (p *Policy) autoMoveset(templateID string, level int) [game.MovesetSize]string {
	sig := p.Catalog.UnlockedMoves(templateID, level)
	sort.SliceStable(sig, func(i, j int) bool { return sig[i].Power > sig[j].Power })

	var ms [game.MovesetSize]string
	n := 0
	used := map[string]bool{}
	fill := func(pool []game.Move) {
		for _, m := range pool {
			if n == game.MovesetSize {
				return
			}
			if used[m.Name] {
				continue
			}
			used[m.Name] = true
			ms[n] = m.Name
			n++
		}
	}
	fill(sig)
	fill(p.Catalog.Moves.Physical)
	fill(p.Catalog.Moves.Special)
	return ms
}
