package web

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"arena/internal/store/sqlstore"
)

func decodePlayer(t *testing.T, body []byte) playerView {
	t.Helper()
	var pv playerView
	if err := json.Unmarshal(body, &pv); err != nil {
		t.Fatalf("decode player: %v", err)
	}
	return pv
}

func TestHandlePlayer_Create(t *testing.T) {
	srv := testServer(t, quickTimeouts())
	rec := get(t, srv.Routes(), "/players/bob")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	pv := decodePlayer(t, rec.Body.Bytes())
	if pv.ID != "bob" || pv.Coins != 500 || pv.Tier != "Bronze" {
		t.Errorf("Unexpected player %+v", pv)
	}
}

func TestPlayerEdits(t *testing.T) {
	srv := testServer(t, quickTimeouts())
	seedPlayer(t, srv, "alice", 10)
	h := srv.Routes()

	rec := postForm(t, h, "/players/alice/pull", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postForm(t, h, "/players/alice/team", url.Values{"team": {"2, 1"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if pv := decodePlayer(t, rec.Body.Bytes()); len(pv.Team) != 2 || pv.Team[0] != 2 {
		t.Errorf("Expected team [2 1], got %v", pv.Team)
	}

	rec = postForm(t, h, "/players/alice/characters/1/moves", url.Values{"move": {"Slam"}, "slot": {"3"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	pv := decodePlayer(t, rec.Body.Bytes())
	if pv.Characters[0].Moveset[3] != "Slam" {
		t.Errorf("Expected Slam in slot 3, got %v", pv.Characters[0].Moveset)
	}
	if pv.Characters[0].Stats.HP == 0 {
		t.Error("Expected computed stats in the player view")
	}

	tests := []struct {
		name string
		path string
		form url.Values
		want int
	}{
		{"unknown move", "/players/alice/characters/1/moves", url.Values{"move": {"Hyper Beam"}, "slot": {"0"}}, http.StatusBadRequest},
		{"swap missing", "/players/alice/characters/1/moves", url.Values{"move": {"Slam"}, "old": {"Quake"}}, http.StatusBadRequest},
		{"bad slot", "/players/alice/characters/1/moves", url.Values{"move": {"Slam"}}, http.StatusBadRequest},
		{"bad character", "/players/alice/characters/x/equip", url.Values{"item": {"Power Band Rare"}}, http.StatusBadRequest},
		{"item missing", "/players/alice/characters/1/equip", url.Values{"item": {"Power Band Rare"}}, http.StatusBadRequest},
		{"nothing equipped", "/players/alice/characters/1/unequip", nil, http.StatusBadRequest},
		{"bad team", "/players/alice/team", url.Values{"team": {"1,1"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := postForm(t, h, tt.path, tt.form); rec.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPull_NotEnoughCoins(t *testing.T) {
	srv := testServer(t, quickTimeouts())
	h := srv.Routes()
	for i := 0; i < 10; i++ {
		if rec := postForm(t, h, "/players/carol/pull", nil); rec.Code != http.StatusOK {
			t.Fatalf("pull %d: expected 200, got %d", i, rec.Code)
		}
	}
	if rec := postForm(t, h, "/players/carol/pull", nil); rec.Code != http.StatusPaymentRequired {
		t.Errorf("Expected 402 with no coins left, got %d", rec.Code)
	}
}

func TestLeaderboard(t *testing.T) {
	srv := testServer(t, quickTimeouts())
	if rec := get(t, srv.Routes(), "/leaderboard"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without a leaderboard, got %d", rec.Code)
	}

	ps, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ps.Close()
	srv.Leaderboard = ps.Leaderboard
	h := srv.Routes()

	if rec := get(t, h, "/leaderboard?n=zero"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	rec := get(t, h, "/leaderboard?n=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

func TestHandlePortrait(t *testing.T) {
	srv := testServer(t, quickTimeouts())
	h := srv.Routes()

	rec := get(t, h, "/portraits/ember.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != spriteW || b.Dy() != spriteH {
		t.Errorf("Expected %dx%d, got %v", spriteW, spriteH, b)
	}

	if rec := get(t, h, "/portraits/pikachu.png"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown template, got %d", rec.Code)
	}
}

func TestHandlePortrait_PrefersStaticFile(t *testing.T) {
	srv := testServer(t, quickTimeouts())
	dir := filepath.Join(srv.StaticDir, "portraits")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stone.png"), []byte("not really a png"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	rec := get(t, srv.Routes(), "/portraits/stone.png")
	if rec.Code != http.StatusOK || rec.Body.String() != "not really a png" {
		t.Errorf("Expected the static file, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestGeneratePortrait_Deterministic(t *testing.T) {
	a := generatePortrait("ember", "fire")
	b := generatePortrait("ember", "fire")
	for y := 0; y < spriteH; y += blockPx {
		for x := 0; x < spriteW; x += blockPx {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("Expected identical sprites, differ at %d,%d", x, y)
			}
		}
	}
}

func TestItemBoxThenEquip(t *testing.T) {
	srv := testServer(t, quickTimeouts())
	h := srv.Routes()

	if rec := postForm(t, h, "/players/dave/pull", nil); rec.Code != http.StatusOK {
		t.Fatalf("pull: expected 200, got %d", rec.Code)
	}
	rec := postForm(t, h, "/players/dave/items", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Player playerView `json:"player"`
		Items  []string   `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0] != "Power Band Rare" {
		t.Fatalf("Expected one Power Band Rare, got %v", body.Items)
	}
	if body.Player.Coins != 250 {
		t.Errorf("Expected 250 coins after a pull and a box, got %d", body.Player.Coins)
	}

	rec = postForm(t, h, "/players/dave/characters/1/equip", url.Values{"item": {"Power Band Rare"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("equip: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	pv := decodePlayer(t, rec.Body.Bytes())
	if pv.Characters[0].EquippedItem != "Power Band Rare" {
		t.Errorf("Expected the band equipped, got %q", pv.Characters[0].EquippedItem)
	}

	tests := []struct {
		amount string
		want   int
	}{
		{"zero", http.StatusBadRequest},
		{"0", http.StatusBadRequest},
		{"11", http.StatusBadRequest},
		{"5", http.StatusPaymentRequired},
	}
	for _, tt := range tests {
		if rec := postForm(t, h, "/players/dave/items", url.Values{"amount": {tt.amount}}); rec.Code != tt.want {
			t.Errorf("amount %s: expected %d, got %d", tt.amount, tt.want, rec.Code)
		}
	}
}
