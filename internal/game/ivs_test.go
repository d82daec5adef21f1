package game

import (
	"math"
	"math/rand"
	"testing"
)

func TestGenerateIVs_Range(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		ivs, target := GenerateIVsFrom(r, StatKeys, DefaultIVBands)
		for _, k := range StatKeys {
			if v := ivs.Get(k); v < 0 || v > MaxIV {
				t.Fatalf("%s out of range: got %d, expected 0-31", k, v)
			}
		}
		if ivs.Sum() != IVBudget(target, len(StatKeys)) {
			t.Fatalf("Expected budget %d to be fully spent, got %d", IVBudget(target, len(StatKeys)), ivs.Sum())
		}
		// one point is worth ~0.54%, rounding costs at most half of that
		if d := math.Abs(ivs.IVPercent() - target); d > 0.3 {
			t.Fatalf("IV%% %.2f too far from target %.2f", ivs.IVPercent(), target)
		}
	}
}

func TestGenerateIVs_SubsetOfKeys(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	keys := []StatKey{StatATK, StatDEF}
	ivs, _ := GenerateIVsFrom(r, keys, []IVBand{{Min: 100, Max: 100, Weight: 1}})
	if ivs.ATK != MaxIV || ivs.DEF != MaxIV {
		t.Errorf("Expected both keys maxed, got %+v", ivs)
	}
	if ivs.HP != 0 || ivs.SPD != 0 {
		t.Errorf("Expected untouched keys to stay 0, got %+v", ivs)
	}
}

func TestGenerateIVs_Empty(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	if ivs, target := GenerateIVsFrom(r, nil, DefaultIVBands); ivs != (Stats{}) || target != 0 {
		t.Errorf("Expected zero result for no keys, got %+v %.2f", ivs, target)
	}
}

func TestPickBand(t *testing.T) {
	bands := []IVBand{{Min: 90, Max: 100, Weight: 1}, {Min: 0, Max: 10, Weight: 3}}

	if b := pickBand(&scriptRand{floats: []float64{0}}, bands); b.Min != 90 {
		t.Errorf("Expected first band, got %+v", b)
	}
	if b := pickBand(&scriptRand{floats: []float64{0.5}}, bands); b.Min != 0 {
		t.Errorf("Expected second band, got %+v", b)
	}
}

func TestIVBudget(t *testing.T) {
	tests := []struct {
		target float64
		n      int
		want   int
	}{
		{100, 6, 186},
		{50, 6, 93},
		{0, 6, 0},
		{120, 6, 186},
		{-5, 6, 0},
		{100, 1, 31},
	}
	for _, tt := range tests {
		if got := IVBudget(tt.target, tt.n); got != tt.want {
			t.Errorf("IVBudget(%.0f, %d): expected %d, got %d", tt.target, tt.n, tt.want, got)
		}
	}
}

func TestHighIVs(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	for i := 0; i < 200; i++ {
		ivs := HighIVs(r, StatKeys)
		for _, k := range StatKeys {
			if v := ivs.Get(k); v < 24 || v > MaxIV {
				t.Fatalf("%s out of range: got %d, expected 24-31", k, v)
			}
		}
	}
}

func TestIVPercent(t *testing.T) {
	full := Stats{HP: 31, ATK: 31, DEF: 31, SPD: 31, SPAtk: 31, SPDef: 31}
	if got := full.IVPercent(); got != 100 {
		t.Errorf("Expected 100, got %.2f", got)
	}
	// 93/186
	half := Stats{HP: 31, ATK: 31, DEF: 31}
	if got := half.IVPercent(); got != 50 {
		t.Errorf("Expected 50, got %.2f", got)
	}
}
