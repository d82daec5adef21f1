package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownMove is returned when a move name does not resolve in the catalog.
var ErrUnknownMove = errors.New("unknown move")

// MovePools groups the common pools and the per-character signature moves.
type MovePools struct {
	Physical  []Move            `yaml:"physical"`
	Special   []Move            `yaml:"special"`
	Signature map[string][]Move `yaml:"characters"`
}

// Catalog is the static data provider: templates, move pools and items.
type Catalog struct {
	Characters []*CharacterTemplate `yaml:"characters"`
	Moves      MovePools            `yaml:"moves"`
	Items      ItemTable            `yaml:"items"`

	byID map[string]*CharacterTemplate
}

// LoadCatalog loads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned and validated
	if err != nil {
		return nil, err
	}
	return ParseCatalog(b)
}

// ParseCatalog decodes and indexes catalog YAML.
func ParseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	if len(c.Moves.Physical) == 0 {
		return errors.New("catalog: at least one physical move is required")
	}
	c.byID = make(map[string]*CharacterTemplate, len(c.Characters))
	for _, t := range c.Characters {
		if t.ID == "" {
			return fmt.Errorf("catalog: character %q has no id", t.Name)
		}
		if _, dup := c.byID[t.ID]; dup {
			return fmt.Errorf("catalog: duplicate character id %q", t.ID)
		}
		c.byID[t.ID] = t
	}
	normalizeMoves(c.Moves.Physical, Physical)
	normalizeMoves(c.Moves.Special, Special)
	for _, ms := range c.Moves.Signature {
		normalizeMoves(ms, Physical)
	}
	return nil
}

// DefaultAccuracy is used for moves whose YAML omits accuracy.
const DefaultAccuracy = 100

type moveFields Move

// UnmarshalYAML decodes a move and defaults a missing accuracy to
// DefaultAccuracy. An explicit "accuracy: 0" is kept and always misses.
func (m *Move) UnmarshalYAML(n *yaml.Node) error {
	if err := n.Decode((*moveFields)(m)); err != nil {
		return err
	}
	if !hasKey(n, "accuracy") {
		m.Accuracy = DefaultAccuracy
	}
	if m.Accuracy < 0 || m.Accuracy > 100 {
		return fmt.Errorf("move %q: accuracy %d outside 0-100", m.Name, m.Accuracy)
	}
	return nil
}

func hasKey(n *yaml.Node, key string) bool {
	if n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

// normalizeMoves fills defaults: unlock level 1 when unset and the pool's
// category when a move has none.
func normalizeMoves(ms []Move, def Category) {
	for i := range ms {
		if ms[i].UnlockLevel < 1 {
			ms[i].UnlockLevel = 1
		}
		if ms[i].Category == "" {
			ms[i].Category = def
		}
	}
}

// Template returns the template with id.
func (c *Catalog) Template(id string) (*CharacterTemplate, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// FirstPhysical is the fallback move used whenever nothing else resolves.
func (c *Catalog) FirstPhysical() Move {
	return c.Moves.Physical[0]
}

// Lookup resolves name (case-insensitively) against the physical, special and
// templateID's signature pools, in that order.
func (c *Catalog) Lookup(templateID, name string) (Move, bool) {
	for _, pool := range [][]Move{c.Moves.Physical, c.Moves.Special, c.Moves.Signature[templateID]} {
		if m, ok := findMove(pool, name); ok {
			return m, true
		}
	}
	return Move{}, false
}

func findMove(pool []Move, name string) (Move, bool) {
	name = strings.TrimSpace(name)
	for _, m := range pool {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Move{}, false
}

// MovesFor resolves the instance's moveset slots, in slot order, into at
// most four moves. Names that do not resolve are returned in unknown and are
// replaced by the first physical move; if nothing resolves at all the result
// is just the first physical move.
func (c *Catalog) MovesFor(inst CharacterInstance) (moves []Move, unknown []string) {
	seen := map[string]bool{}
	add := func(m Move) {
		if seen[m.Name] {
			return
		}
		seen[m.Name] = true
		moves = append(moves, m)
	}
	for _, name := range inst.Moveset {
		if name == "" {
			continue
		}
		m, ok := c.Lookup(inst.TemplateID, name)
		if !ok {
			unknown = append(unknown, name)
			m = c.FirstPhysical()
		}
		add(m)
	}
	if len(moves) == 0 {
		moves = []Move{c.FirstPhysical()}
	}
	return moves, unknown
}

// UnlockedMoves returns templateID's signature moves with unlock level at or
// below level, in catalog order.
func (c *Catalog) UnlockedMoves(templateID string, level int) []Move {
	var out []Move
	for _, m := range c.Moves.Signature[templateID] {
		if m.UnlockLevel <= level {
			out = append(out, m)
		}
	}
	return out
}

// Stats returns the battle stats of inst, items included.
func (c *Catalog) Stats(inst CharacterInstance) (Stats, error) {
	t, ok := c.Template(inst.TemplateID)
	if !ok {
		return Stats{}, fmt.Errorf("unknown character template %q", inst.TemplateID)
	}
	return DisplayStats(t, inst, c.Items), nil
}
