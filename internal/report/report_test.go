package report

import (
	"bytes"
	"fmt"
	"testing"

	"arena/internal/battle"
	"arena/internal/ladder"
)

func testBattle(events int) Battle {
	b := Battle{
		ID:    "b1",
		Sides: [2]string{"alice", "Arena AI"},
		Summary: battle.Summary{
			Outcome: battle.OutcomeVictory,
			Winner:  battle.SideA,
			Rounds:  3,
			Combatants: []battle.CombatantSummary{
				{Side: battle.SideA, Name: "Ember Fox", Level: 20, HP: 30, MaxHP: 60},
				{Side: battle.SideB, Name: "Stone Golem", Level: 20, HP: 0, MaxHP: 70},
			},
		},
	}
	for i := 0; i < events; i++ {
		b.Events = append(b.Events, battle.Event{Seq: i + 1, Kind: battle.EventMove, Message: fmt.Sprintf("event %d", i)})
	}
	return b
}

func TestGenerate_ReturnsPDF(t *testing.T) {
	b := testBattle(10)
	l := ladder.Default()
	out := l.Apply(990, 1000, true, 100)
	b.Ladder = &out

	pdf, err := Generate(b)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(pdf) < 100 {
		t.Errorf("PDF too short: %d bytes", len(pdf))
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output is not a PDF (missing %PDF header)")
	}
}

func TestGenerate_LongLogSpansPages(t *testing.T) {
	short, err := Generate(testBattle(5))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	long, err := Generate(testBattle(400))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(long) <= len(short) {
		t.Errorf("Expected a longer log to produce a larger PDF, got %d <= %d", len(long), len(short))
	}
}

func TestGenerate_Unfinished(t *testing.T) {
	if _, err := Generate(Battle{ID: "b1"}); err == nil {
		t.Error("Expected error for a battle without an outcome")
	}
}

func TestHeadline(t *testing.T) {
	b := testBattle(0)
	if got := headline(b); got != "Victory: alice wins after 3 rounds" {
		t.Errorf("Unexpected headline %q", got)
	}
	b.Summary = battle.Summary{Outcome: battle.OutcomeDraw, Winner: battle.NoSide, Rounds: 1200, Reason: "no winner after 1200 rounds"}
	if got := headline(b); got != "Draw after 1,200 rounds (no winner after 1200 rounds)" {
		t.Errorf("Unexpected headline %q", got)
	}
	b.Sides = [2]string{}
	if got := sideName(b, battle.SideB); got != "Side B" {
		t.Errorf("Expected fallback side name, got %q", got)
	}
}
