package game

import (
	"sort"
	"strings"
)

// ComputeStat applies the level/IV formula to one stat:
//
//	HP:     floor(((2*base+iv)*level/100) + level + 10)
//	others: floor(((2*base+iv)*level/100) + 5)
//
// The result is never below 1.
func ComputeStat(key StatKey, base, iv, level int) int {
	scaled := (2*base + iv) * level / 100
	v := scaled + 5
	if key == StatHP {
		v = scaled + level + 10
	}
	if v < 1 {
		return 1
	}
	return v
}

// ComputeStats applies ComputeStat to every stat.
func ComputeStats(base, ivs Stats, level int) Stats {
	var out Stats
	for _, k := range StatKeys {
		out.Set(k, ComputeStat(k, base.Get(k), ivs.Get(k), level))
	}
	return out
}

// ItemTable maps an item type to its boost per rarity.
type ItemTable map[string]map[string]ItemBoost

// Resolve splits a full item name ("Power Band Rare") on its last space into
// type and rarity and returns the matching boost.
func (t ItemTable) Resolve(name string) (ItemBoost, bool) {
	name = strings.TrimSpace(name)
	i := strings.LastIndex(name, " ")
	if i <= 0 {
		return ItemBoost{}, false
	}
	byRarity, ok := t[name[:i]]
	if !ok {
		return ItemBoost{}, false
	}
	b, ok := byRarity[name[i+1:]]
	return b, ok
}

// RarityWeights are the item box odds per rarity, in tenths of a percent.
// Rarities missing here never drop unless a type has nothing else.
var RarityWeights = map[string]int{"Common": 650, "Rare": 250, "Epic": 95, "Legendary": 5}

// Draw picks a random item: a uniform item type, then a rarity weighted by
// RarityWeights among the rarities that type defines. It returns the full
// item name ("Power Band Rare").
func (t ItemTable) Draw(r Rand) (string, bool) {
	types := make([]string, 0, len(t))
	for name, byRarity := range t {
		if len(byRarity) > 0 {
			types = append(types, name)
		}
	}
	if len(types) == 0 {
		return "", false
	}
	sort.Strings(types)
	typ := types[r.Intn(len(types))]

	rarities := make([]string, 0, len(t[typ]))
	total := 0
	for rarity := range t[typ] {
		rarities = append(rarities, rarity)
		total += RarityWeights[rarity]
	}
	sort.Strings(rarities)
	if total == 0 {
		return typ + " " + rarities[r.Intn(len(rarities))], true
	}
	roll := r.Intn(total)
	for _, rarity := range rarities {
		w := RarityWeights[rarity]
		if roll < w {
			return typ + " " + rarity, true
		}
		roll -= w
	}
	return typ + " " + rarities[len(rarities)-1], true
}

// DisplayStats returns the stats an instance fights with. Unboosted stats are
// computed first; an equipped item then adds floor(base*boost/100) to its
// stat, where base is the template's base value, not the computed one.
func DisplayStats(t *CharacterTemplate, inst CharacterInstance, items ItemTable) Stats {
	if t == nil {
		return Stats{}
	}
	out := ComputeStats(t.Base, inst.IVs, inst.Level)
	if inst.EquippedItem == "" {
		return out
	}
	boost, ok := items.Resolve(inst.EquippedItem)
	if !ok {
		return out
	}
	bonus := t.Base.Get(boost.Stat) * boost.Boost / 100
	out.Set(boost.Stat, out.Get(boost.Stat)+bonus)
	return out
}
