package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"arena/internal/arena"
	"arena/internal/battle"
	"arena/internal/logging"
)

const maxPlayerIDLen = 64

// GET /battles/new
func (s *Server) handleNewBattle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	vm := NewBattleViewModel{PlayerID: s.playerID(r)}
	if err := s.Tmpl.ExecuteTemplate(w, "layout.html", map[string]any{"New": vm}); err != nil {
		http.Error(w, "failed to render template", 500)
		return
	}
}

// POST /battles
func (s *Server) handleStartBattle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", 400)
		return
	}
	pid := strings.TrimSpace(s.playerID(r))
	if pid == "" || len(pid) > maxPlayerIDLen {
		http.Error(w, "player_id is required", 400)
		return
	}
	level := 0
	if v := r.FormValue("level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad level", 400)
			return
		}
		level = n
	}

	lb := newLiveBattle()
	m, err := s.Arena.StartPvE(r.Context(), arena.PvERequest{
		PlayerID: pid,
		Level:    level,
		Chooser:  lb.chooser,
		Observer: lb.observe,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	lb.id = m.Session.ID()
	lb.match = m
	s.Battles.start(s.baseContext(), lb)
	logging.Info("battle started over http", logging.Fields{"battle_id": lb.id, "player_id": pid})

	s.setPlayerCookie(w, pid)
	http.Redirect(w, r, "/battles/"+lb.id, http.StatusSeeOther)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*liveBattle, bool) {
	lb, ok := s.Battles.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return lb, true
}

// GET /battles/{id}
func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request) {
	lb, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.renderBattle(w, r, lb, "")
}

func (s *Server) renderBattle(w http.ResponseWriter, r *http.Request, lb *liveBattle, msg string) {
	w.Header().Set("Cache-Control", "no-store")
	vm := s.makeBattleViewModel(lb, msg)
	var err error
	if isHTMX(r) {
		err = s.Tmpl.ExecuteTemplate(w, "battle.html", vm)
	} else {
		err = s.Tmpl.ExecuteTemplate(w, "layout.html", map[string]any{"Battle": vm})
	}
	if err != nil {
		http.Error(w, "failed to render template", 500)
	}
}

// POST /battles/{id}/choice
func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request) {
	lb, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", 400)
		return
	}
	if err := lb.chooser.Answer(r.FormValue("request_id"), r.FormValue("option")); err != nil {
		s.fail(w, r, err)
		return
	}
	if isHTMX(r) {
		s.renderBattle(w, r, lb, "")
		return
	}
	http.Redirect(w, r, "/battles/"+lb.id, http.StatusSeeOther)
}

// POST /battles/{id}/cancel
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	lb, ok := s.lookup(w, r)
	if !ok {
		return
	}
	accepted, err := lb.match.Session.ProposeCancel(r.Context(), battle.SideA)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if accepted {
		select {
		case <-lb.done:
		case <-time.After(2 * time.Second):
		}
	}
	if isHTMX(r) {
		msg := "Cancel declined"
		if accepted {
			msg = "Battle cancelled"
		}
		s.renderBattle(w, r, lb, msg)
		return
	}
	http.Redirect(w, r, "/battles/"+lb.id, http.StatusSeeOther)
}
