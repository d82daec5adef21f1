package game

import "math"

// IVBand is one row of the weighted table used to pick a target IV%.
type IVBand struct {
	Min, Max float64
	Weight   float64
}

// DefaultIVBands is the acquisition distribution: most pulls land in the
// broad 5–80% band, high rolls are rare.
var DefaultIVBands = []IVBand{
	{Min: 95, Max: 100, Weight: 0.1},
	{Min: 91, Max: 94.99, Weight: 0.5},
	{Min: 88, Max: 90.99, Weight: 2},
	{Min: 84, Max: 87.99, Weight: 3},
	{Min: 80, Max: 83.99, Weight: 5},
	{Min: 1, Max: 5, Weight: 10},
	{Min: 5.01, Max: 79.99, Weight: 79.4},
}

// GenerateIVs produces an IV set for keys using DefaultIVBands.
func GenerateIVs(r Rand, keys []StatKey) Stats {
	ivs, _ := GenerateIVsFrom(r, keys, DefaultIVBands)
	return ivs
}

// GenerateIVsFrom picks a target IV% from bands, converts it into a point
// budget of round(target/100 * 31*len(keys)) and hands the points out one at
// a time to random stats that are still below 31. The returned target is the
// percentile the budget was derived from.
func GenerateIVsFrom(r Rand, keys []StatKey, bands []IVBand) (Stats, float64) {
	var ivs Stats
	if len(keys) == 0 || len(bands) == 0 {
		return ivs, 0
	}

	band := pickBand(r, bands)
	target := Uniform(r, band.Min, band.Max)
	budget := IVBudget(target, len(keys))

	open := append([]StatKey(nil), keys...)
	for budget > 0 && len(open) > 0 {
		i := r.Intn(len(open))
		k := open[i]
		ivs.Set(k, ivs.Get(k)+1)
		budget--
		if ivs.Get(k) >= MaxIV {
			open = append(open[:i], open[i+1:]...)
		}
	}
	return ivs, target
}

// IVBudget converts a target percentile into total IV points for n stats.
func IVBudget(targetPercent float64, n int) int {
	limit := MaxIV * n
	b := int(math.Round(targetPercent / 100 * float64(limit)))
	if b < 0 {
		return 0
	}
	if b > limit {
		return limit
	}
	return b
}

func pickBand(r Rand, bands []IVBand) IVBand {
	total := 0.0
	for _, b := range bands {
		total += b.Weight
	}
	x := r.Float64() * total
	for _, b := range bands {
		if x < b.Weight {
			return b
		}
		x -= b.Weight
	}
	return bands[len(bands)-1]
}

// HighIVs gives every key an IV uniformly drawn from [24,31]. AI rosters use
// it so generated opponents are consistently strong.
func HighIVs(r Rand, keys []StatKey) Stats {
	var ivs Stats
	for _, k := range keys {
		ivs.Set(k, 24+r.Intn(MaxIV-24+1))
	}
	return ivs
}

// IVPercent is the aggregate IV% of the six stats, rounded to 2 decimals.
func (s Stats) IVPercent() float64 {
	pct := float64(s.Sum()) / float64(MaxIV*len(StatKeys)) * 100
	return math.Round(pct*100) / 100
}
