package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMoveLocked      = errors.New("move not unlocked at current level")
	ErrDuplicateMove   = errors.New("move already in moveset")
	ErrSlotOutOfRange  = errors.New("moveset slot out of range")
	ErrMoveNotEquipped = errors.New("move not in moveset")
)

// Learn puts the move called name into slot. Other slots are left where they
// are; the moveset is never compacted.
func (c *Catalog) Learn(inst *CharacterInstance, slot int, name string) error {
	if slot < 0 || slot >= MovesetSize {
		return fmt.Errorf("slot %d: %w", slot, ErrSlotOutOfRange)
	}
	m, ok := c.Lookup(inst.TemplateID, name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownMove)
	}
	if m.UnlockLevel > inst.Level {
		return fmt.Errorf("%q requires level %d: %w", m.Name, m.UnlockLevel, ErrMoveLocked)
	}
	if i := slotOf(inst.Moveset, m.Name); i >= 0 {
		return fmt.Errorf("%q in slot %d: %w", m.Name, i, ErrDuplicateMove)
	}
	inst.Moveset[slot] = m.Name
	return nil
}

// Swap replaces oldName with newName in the slot oldName occupies.
func (c *Catalog) Swap(inst *CharacterInstance, newName, oldName string) error {
	slot := slotOf(inst.Moveset, oldName)
	if slot < 0 {
		return fmt.Errorf("%q: %w", oldName, ErrMoveNotEquipped)
	}
	return c.Learn(inst, slot, newName)
}

// ValidateMoveset checks that every filled slot resolves, is unlocked at the
// instance's level and appears only once. All problems are joined into the
// returned error, one per slot.
func (c *Catalog) ValidateMoveset(inst CharacterInstance) error {
	var errs []error
	seen := map[string]bool{}
	for i, name := range inst.Moveset {
		if name == "" {
			continue
		}
		m, ok := c.Lookup(inst.TemplateID, name)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("slot %d %q: %w", i, name, ErrUnknownMove))
			continue
		case m.UnlockLevel > inst.Level:
			errs = append(errs, fmt.Errorf("slot %d %q: %w", i, name, ErrMoveLocked))
		case seen[strings.ToLower(m.Name)]:
			errs = append(errs, fmt.Errorf("slot %d %q: %w", i, name, ErrDuplicateMove))
		}
		seen[strings.ToLower(m.Name)] = true
	}
	return errors.Join(errs...)
}

// InitialMoveset is what a new instance starts with: the first physical
// move, the first special move and the first signature move unlocked at
// level.
func (c *Catalog) InitialMoveset(templateID string, level int) [MovesetSize]string {
	var ms [MovesetSize]string
	i := 0
	ms[i] = c.FirstPhysical().Name
	i++
	if len(c.Moves.Special) > 0 {
		ms[i] = c.Moves.Special[0].Name
		i++
	}
	if sig := c.UnlockedMoves(templateID, level); len(sig) > 0 {
		ms[i] = sig[0].Name
	}
	return ms
}

func slotOf(ms [MovesetSize]string, name string) int {
	name = strings.TrimSpace(name)
	for i, n := range ms {
		if n != "" && strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}
