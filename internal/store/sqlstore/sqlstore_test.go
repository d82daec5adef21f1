package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"arena/internal/game"
	"arena/internal/store"
)

var _ store.Store[game.Player] = (*PlayerStore)(nil)

func openTestStore(t *testing.T) *PlayerStore {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPlayerStore_GetPut(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "p1"); err != nil || ok {
		t.Fatalf("Expected missing player, got ok=%v err=%v", ok, err)
	}

	p := game.NewPlayer("p1")
	p.RP = 120
	p.AddCharacter(game.CharacterInstance{TemplateID: "ember", Name: "Ember Fox", Level: 7, Moveset: [game.MovesetSize]string{"Tackle", "", "Spark"}})
	_ = p.SetTeam([]int64{1})
	p.Inventory["Power Band Rare"] = 2
	if err := s.Put(ctx, p.ID, p); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, "p1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.RP != 120 || got.Coins != game.StartingCoins {
		t.Errorf("Expected RP 120 and %d coins, got %d and %d", game.StartingCoins, got.RP, got.Coins)
	}
	c, err := got.Character(1)
	if err != nil {
		t.Fatalf("Character: %v", err)
	}
	if c.Level != 7 || c.Moveset[2] != "Spark" || c.Moveset[1] != "" {
		t.Errorf("Expected moveset slots preserved, got %+v", c)
	}
	if got.Inventory["Power Band Rare"] != 2 || len(got.Team) != 1 {
		t.Errorf("Expected inventory and team preserved, got %+v", got)
	}
}

func TestPlayerStore_Upsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := game.NewPlayer("p1")
	_ = s.Put(ctx, p.ID, p)
	p.Coins = 42
	if err := s.Put(ctx, p.ID, p); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _, _ := s.Get(ctx, "p1")
	if got.Coins != 42 {
		t.Errorf("Expected 42 coins, got %d", got.Coins)
	}
}

func TestPlayerStore_Leaderboard(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for id, rp := range map[string]int{"a": 10, "b": 300, "c": 50} {
		p := game.NewPlayer(id)
		p.RP = rp
		_ = s.Put(ctx, id, p)
	}

	top, err := s.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].PlayerID != "b" || top[1].PlayerID != "c" {
		t.Errorf("Expected [b c], got %+v", top)
	}
}

func TestOpen_MigratesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.db")
	ctx := context.Background()

	s, err := Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = s.Put(ctx, "p1", game.NewPlayer("p1"))
	_ = s.Close()

	s, err = Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer s.Close()
	if _, ok, _ := s.Get(ctx, "p1"); !ok {
		t.Error("Expected player to survive reopening")
	}
}

func TestOpen_Invalid(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, "mysql", "x"); err == nil {
		t.Error("Expected error for unsupported driver")
	}
	if _, err := Open(ctx, DriverSQLite, " "); err == nil {
		t.Error("Expected error for empty dsn")
	}
}

func TestRebind(t *testing.T) {
	pg := &PlayerStore{driver: DriverPostgres}
	if got := pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"); got != "SELECT a FROM t WHERE x = $1 AND y = $2" {
		t.Errorf("Unexpected postgres query %q", got)
	}
	lite := &PlayerStore{driver: DriverSQLite}
	if got := lite.rebind("x = ?"); got != "x = ?" {
		t.Errorf("Expected sqlite query untouched, got %q", got)
	}
}

func TestUpSection(t *testing.T) {
	got := upSection("-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;\n")
	if got != "\nCREATE TABLE a (x INT);\n" {
		t.Errorf("Unexpected up section %q", got)
	}
	if got := upSection("SELECT 1;"); got != "SELECT 1;" {
		t.Errorf("Expected whole file without markers, got %q", got)
	}
}
