package battle

import (
	"context"
	"testing"

	"arena/internal/game"
)

const testCatalogYAML = `
characters:
  - id: ember
    name: Ember Fox
    element: fire
    base: {HP: 45, ATK: 60, DEF: 40, SPD: 70, SP_ATK: 65, SP_DEF: 50}
  - id: tide
    name: Tide Otter
    element: water
    base: {HP: 60, ATK: 50, DEF: 50, SPD: 40, SP_ATK: 60, SP_DEF: 70}
  - id: stone
    name: Stone Golem
    base: {HP: 80, ATK: 70, DEF: 90, SPD: 20, SP_ATK: 30, SP_DEF: 60}
moves:
  physical:
    - {name: Tackle, power: 40, accuracy: 100}
    - {name: Slam, power: 80, accuracy: 75}
  special:
    - {name: Spark, power: 40}
  characters:
    ember:
      - {name: Flame Bite, power: 60, accuracy: 95, unlock_level: 1, element: fire}
    tide:
      - {name: Mend, power: 30, type: special, unlock_level: 10, heal: true}
    stone:
      - {name: Rock Throw, power: 50, accuracy: 90, unlock_level: 1}
      - {name: Quake, power: 100, accuracy: 85, unlock_level: 40}
items:
  Power Band:
    Rare: {stat: ATK, boost: 20}
`

func testCatalog(t *testing.T) *game.Catalog {
	t.Helper()
	c, err := game.ParseCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	return c
}

// fixedRand always draws n (mod the range) and the float f.
type fixedRand struct {
	n int
	f float64
}

func (r fixedRand) Intn(n int) int   { return r.n % n }
func (r fixedRand) Float64() float64 { return r.f }

// scriptRand replays ints, then returns 0.
type scriptRand struct {
	ints []int
}

func (s *scriptRand) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptRand) Float64() float64 { return 0.5 }

type chooserFunc func(ctx context.Context, req Request) (string, error)

func (f chooserFunc) Choose(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

// blockingChooser never answers.
var blockingChooser = chooserFunc(func(ctx context.Context, _ Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
})

func instance(templateID, name string, level int, moves ...string) game.CharacterInstance {
	inst := game.CharacterInstance{TemplateID: templateID, Name: name, Level: level}
	copy(inst.Moveset[:], moves)
	return inst
}

func combatant(t *testing.T, c *game.Catalog, inst game.CharacterInstance) *Combatant {
	t.Helper()
	cb, _, err := NewCombatant(c, inst)
	if err != nil {
		t.Fatalf("NewCombatant: %v", err)
	}
	return cb
}
