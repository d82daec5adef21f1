package game

import (
	"errors"
	"fmt"
)

const (
	StartingCoins = 500
	MaxTeamSize   = 3
)

var (
	ErrUnknownCharacter = errors.New("character not owned")
	ErrInvalidTeam      = errors.New("team must hold 1 to 3 distinct owned characters")
	ErrItemMissing      = errors.New("item not in inventory")
	ErrItemEquipped     = errors.New("character already has an item equipped")
	ErrNothingEquipped  = errors.New("character has no item equipped")
)

// NewPlayer returns the record a first-time player starts with.
func NewPlayer(id string) Player {
	return Player{
		ID:              id,
		Coins:           StartingCoins,
		Characters:      map[int64]*CharacterInstance{},
		Inventory:       map[string]int{},
		NextCharacterID: 1,
	}
}

// AddCharacter takes ownership of inst and returns its new id.
func (p *Player) AddCharacter(inst CharacterInstance) int64 {
	if p.Characters == nil {
		p.Characters = map[int64]*CharacterInstance{}
	}
	if p.NextCharacterID < 1 {
		p.NextCharacterID = 1
	}
	id := p.NextCharacterID
	p.NextCharacterID++
	inst.ID = id
	inst.OwnerID = p.ID
	p.Characters[id] = &inst
	return id
}

// Character returns the owned instance with id.
func (p *Player) Character(id int64) (*CharacterInstance, error) {
	c, ok := p.Characters[id]
	if !ok {
		return nil, fmt.Errorf("character %d: %w", id, ErrUnknownCharacter)
	}
	return c, nil
}

// SetTeam replaces the team with ids.
func (p *Player) SetTeam(ids []int64) error {
	if len(ids) == 0 || len(ids) > MaxTeamSize {
		return ErrInvalidTeam
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			return ErrInvalidTeam
		}
		seen[id] = true
		if _, err := p.Character(id); err != nil {
			return err
		}
	}
	p.Team = append([]int64(nil), ids...)
	return nil
}

// TeamInstances returns copies of the team members in team order. Ids that
// no longer resolve are skipped.
func (p *Player) TeamInstances() []CharacterInstance {
	out := make([]CharacterInstance, 0, len(p.Team))
	for _, id := range p.Team {
		if c, ok := p.Characters[id]; ok {
			out = append(out, *c)
		}
	}
	return out
}

// AverageTeamLevel is the integer mean level of the team, at least 1.
func (p *Player) AverageTeamLevel() int {
	team := p.TeamInstances()
	if len(team) == 0 {
		return 1
	}
	sum := 0
	for _, c := range team {
		sum += c.Level
	}
	return max(1, sum/len(team))
}

// Equip moves one item from the inventory onto character id.
func (p *Player) Equip(id int64, item string) error {
	c, err := p.Character(id)
	if err != nil {
		return err
	}
	if c.EquippedItem != "" {
		return ErrItemEquipped
	}
	if p.Inventory[item] <= 0 {
		return fmt.Errorf("%q: %w", item, ErrItemMissing)
	}
	p.Inventory[item]--
	if p.Inventory[item] == 0 {
		delete(p.Inventory, item)
	}
	c.EquippedItem = item
	return nil
}

// Unequip returns character id's item to the inventory.
func (p *Player) Unequip(id int64) (string, error) {
	c, err := p.Character(id)
	if err != nil {
		return "", err
	}
	if c.EquippedItem == "" {
		return "", ErrNothingEquipped
	}
	item := c.EquippedItem
	c.EquippedItem = ""
	if p.Inventory == nil {
		p.Inventory = map[string]int{}
	}
	p.Inventory[item]++
	return item, nil
}

// Clone returns a deep copy so edits to the copy never reach the original.
func (p Player) Clone() Player {
	out := p
	out.Characters = make(map[int64]*CharacterInstance, len(p.Characters))
	for id, c := range p.Characters {
		cc := *c
		out.Characters[id] = &cc
	}
	out.Team = append([]int64(nil), p.Team...)
	out.Inventory = make(map[string]int, len(p.Inventory))
	for k, v := range p.Inventory {
		out.Inventory[k] = v
	}
	return out
}
