package game

import "fmt"

// NewInstance creates a fresh instance of templateID at level with a newly
// generated IV set and the starting moveset. ID is left for the owner to
// assign.
func NewInstance(r Rand, c *Catalog, templateID string, level int, owner string) (CharacterInstance, error) {
	t, ok := c.Template(templateID)
	if !ok {
		return CharacterInstance{}, fmt.Errorf("unknown character template %q", templateID)
	}
	level = ClampLevel(level)
	ivs := GenerateIVs(r, StatKeys)
	return CharacterInstance{
		TemplateID: t.ID,
		Name:       t.Name,
		Level:      level,
		IVs:        ivs,
		IVPercent:  ivs.IVPercent(),
		Moveset:    c.InitialMoveset(t.ID, level),
		OwnerID:    owner,
	}, nil
}

// ClampLevel keeps level inside [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// XPForNextLevel is the xp needed to go from level to level+1.
func XPForNextLevel(level int) int {
	return level * level * 100
}

// GainXP adds xp and levels the instance up as many times as it affords.
// At the level cap the xp counter is reset to zero. The signature moves
// unlocked by the new levels are returned.
func (c *Catalog) GainXP(inst *CharacterInstance, amount int) []Move {
	if amount <= 0 || inst.Level >= MaxLevel {
		return nil
	}
	before := inst.Level
	inst.XP += amount
	for inst.XP >= XPForNextLevel(inst.Level) {
		inst.XP -= XPForNextLevel(inst.Level)
		inst.Level++
		if inst.Level >= MaxLevel {
			inst.Level = MaxLevel
			inst.XP = 0
			break
		}
	}

	var unlocked []Move
	for _, m := range c.Moves.Signature[inst.TemplateID] {
		if m.UnlockLevel > before && m.UnlockLevel <= inst.Level {
			unlocked = append(unlocked, m)
		}
	}
	return unlocked
}
