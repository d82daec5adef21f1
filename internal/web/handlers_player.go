package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"arena/internal/game"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// GET /players/{id}
func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.Arena.Player(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.makePlayerView(p))
}

// POST /players/{id}/pull
func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	p, inst, err := s.Arena.Pull(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player": s.makePlayerView(p),
		"pulled": inst,
	})
}

// POST /players/{id}/items with optional amount (default 1)
func (s *Server) handleItemBoxes(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", 400)
		return
	}
	n := 1
	if v := r.FormValue("amount"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "bad amount", 400)
			return
		}
		n = parsed
	}
	p, items, err := s.Arena.OpenItemBoxes(r.Context(), r.PathValue("id"), n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player": s.makePlayerView(p),
		"items":  items,
	})
}

// POST /players/{id}/team with team=1,4,2
func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", 400)
		return
	}
	var ids []int64
	for _, f := range strings.Split(r.FormValue("team"), ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			http.Error(w, "bad team", 400)
			return
		}
		ids = append(ids, id)
	}
	p, err := s.Arena.SetTeam(r.Context(), r.PathValue("id"), ids)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.makePlayerView(p))
}

func characterID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("cid"), 10, 64)
	if err != nil {
		return 0, errors.New("bad character id")
	}
	return id, nil
}

// POST /players/{id}/characters/{cid}/moves with move and either slot
// (learn into a slot) or old (swap out a known move).
func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	cid, err := characterID(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", 400)
		return
	}
	move := r.FormValue("move")
	var p game.Player
	if old := r.FormValue("old"); old != "" {
		p, err = s.Arena.SwapMove(r.Context(), r.PathValue("id"), cid, move, old)
	} else {
		slot, convErr := strconv.Atoi(r.FormValue("slot"))
		if convErr != nil {
			http.Error(w, "bad slot", 400)
			return
		}
		p, err = s.Arena.LearnMove(r.Context(), r.PathValue("id"), cid, slot, move)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.makePlayerView(p))
}

// POST /players/{id}/characters/{cid}/equip with item
func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request) {
	cid, err := characterID(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", 400)
		return
	}
	p, err := s.Arena.Equip(r.Context(), r.PathValue("id"), cid, r.FormValue("item"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.makePlayerView(p))
}

// POST /players/{id}/characters/{cid}/unequip
func (s *Server) handleUnequip(w http.ResponseWriter, r *http.Request) {
	cid, err := characterID(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	p, err := s.Arena.Unequip(r.Context(), r.PathValue("id"), cid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.makePlayerView(p))
}

// GET /leaderboard?n=10
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.Leaderboard == nil {
		http.NotFound(w, r)
		return
	}
	n := defaultLeaderboardSize
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "bad n", 400)
			return
		}
		n = min(parsed, maxLeaderboardSize)
	}
	rows, err := s.Leaderboard(r.Context(), n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
