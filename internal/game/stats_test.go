package game

import "testing"

func TestComputeStat(t *testing.T) {
	tests := []struct {
		name  string
		key   StatKey
		base  int
		iv    int
		level int
		want  int
	}{
		{"attack at 50", StatATK, 50, 31, 50, 70},
		{"hp at 50", StatHP, 45, 31, 50, 120},
		{"hp at 1", StatHP, 45, 0, 1, 11},
		{"speed at 100", StatSPD, 70, 31, 100, 176},
		{"floor at 1", StatATK, -10, 0, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStat(tt.key, tt.base, tt.iv, tt.level); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestComputeStat_Monotonic(t *testing.T) {
	for _, k := range StatKeys {
		for level := MinLevel; level < MaxLevel; level++ {
			if ComputeStat(k, 60, 15, level+1) < ComputeStat(k, 60, 15, level) {
				t.Fatalf("%s decreased from level %d to %d", k, level, level+1)
			}
		}
		for iv := 0; iv < MaxIV; iv++ {
			if ComputeStat(k, 60, iv+1, 50) < ComputeStat(k, 60, iv, 50) {
				t.Fatalf("%s decreased from iv %d to %d", k, iv, iv+1)
			}
		}
	}
}

func TestItemTableResolve(t *testing.T) {
	c := testCatalog(t)

	b, ok := c.Items.Resolve("Power Band Rare")
	if !ok {
		t.Fatal("Expected Power Band Rare to resolve")
	}
	if b.Stat != StatATK || b.Boost != 20 {
		t.Errorf("Expected ATK +20%%, got %s +%d%%", b.Stat, b.Boost)
	}
	for _, name := range []string{"Power Band", "Power Band Legendary", "Band", ""} {
		if _, ok := c.Items.Resolve(name); ok {
			t.Errorf("Expected %q not to resolve", name)
		}
	}
}

func TestDisplayStats_ItemBoostUsesBaseStat(t *testing.T) {
	c := testCatalog(t)
	tmpl, _ := c.Template("ember")
	inst := CharacterInstance{TemplateID: "ember", Level: 50, IVs: Stats{ATK: 31}}

	plain := DisplayStats(tmpl, inst, c.Items)
	inst.EquippedItem = "Power Band Rare"
	boosted := DisplayStats(tmpl, inst, c.Items)

	// base ATK 60, 20% of base is 12
	if boosted.ATK-plain.ATK != 12 {
		t.Errorf("Expected +12 ATK, got +%d", boosted.ATK-plain.ATK)
	}
	if boosted.HP != plain.HP || boosted.DEF != plain.DEF {
		t.Error("Expected other stats to be untouched")
	}

	inst.EquippedItem = "Mystery Box Common"
	if got := DisplayStats(tmpl, inst, c.Items); got != plain {
		t.Errorf("Expected unknown item to be ignored, got %+v", got)
	}
}

func TestCatalogStats(t *testing.T) {
	c := testCatalog(t)
	inst := CharacterInstance{TemplateID: "stone", Level: 10, IVs: Stats{HP: 10}}

	s, err := c.Stats(inst)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	// (160+10)*10/100 = 17, + 10 + 10
	if s.HP != 37 {
		t.Errorf("Expected HP 37, got %d", s.HP)
	}
}

func TestItemTableDraw(t *testing.T) {
	full := map[string]ItemBoost{
		"Common":    {Stat: StatDEF, Boost: 5},
		"Rare":      {Stat: StatDEF, Boost: 10},
		"Epic":      {Stat: StatDEF, Boost: 20},
		"Legendary": {Stat: StatDEF, Boost: 30},
	}
	items := ItemTable{
		"Iron Shell": full,
		"Power Band": {"Rare": {Stat: StatATK, Boost: 10}},
	}

	tests := []struct {
		ints []int
		want string
	}{
		{[]int{0, 0}, "Iron Shell Common"},
		{[]int{0, 649}, "Iron Shell Common"},
		{[]int{0, 650}, "Iron Shell Epic"},
		{[]int{0, 745}, "Iron Shell Legendary"},
		{[]int{0, 750}, "Iron Shell Rare"},
		{[]int{0, 999}, "Iron Shell Rare"},
		{[]int{1, 0}, "Power Band Rare"},
	}
	for _, tt := range tests {
		got, ok := items.Draw(&scriptRand{ints: tt.ints})
		if !ok || got != tt.want {
			t.Errorf("Draw(%v): expected %q, got %q", tt.ints, tt.want, got)
		}
		if _, ok := items.Resolve(got); !ok {
			t.Errorf("Expected drawn item %q to resolve", got)
		}
	}

	if _, ok := (ItemTable{}).Draw(&scriptRand{}); ok {
		t.Error("Expected no draw from an empty table")
	}
	odd := ItemTable{"Charm": {"Mythic": {Stat: StatHP, Boost: 50}}}
	if got, _ := odd.Draw(&scriptRand{}); got != "Charm Mythic" {
		t.Errorf("Expected unweighted rarities to still drop, got %q", got)
	}
}
