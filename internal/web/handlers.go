package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"arena/internal/arena"
	"arena/internal/battle"
	"arena/internal/game"
	"arena/internal/logging"
	"arena/internal/store/sqlstore"
)

type Server struct {
	Arena   *arena.Service
	Tmpl    *template.Template
	Battles *Hub
	// Leaderboard lists the top players by RP. Nil disables /leaderboard.
	Leaderboard func(ctx context.Context, n int) ([]sqlstore.Standing, error)
	StaticDir   string
	// BaseContext is the parent of every battle started over HTTP.
	BaseContext context.Context
}

const cookieName = "arena_pid"

func (s *Server) Routes() http.Handler {
	if s.Battles == nil {
		s.Battles = NewHub(0)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /battles/new", s.handleNewBattle)
	mux.HandleFunc("POST /battles", s.handleStartBattle)
	mux.HandleFunc("GET /battles/{id}", s.handleBattle)
	mux.HandleFunc("POST /battles/{id}/choice", s.handleChoice)
	mux.HandleFunc("POST /battles/{id}/cancel", s.handleCancel)
	mux.HandleFunc("GET /battles/{id}/ws", s.handleStream)
	mux.HandleFunc("GET /battles/{id}/report.pdf", s.handleReport)

	mux.HandleFunc("GET /players/{id}", s.handlePlayer)
	mux.HandleFunc("POST /players/{id}/pull", s.handlePull)
	mux.HandleFunc("POST /players/{id}/items", s.handleItemBoxes)
	mux.HandleFunc("POST /players/{id}/team", s.handleTeam)
	mux.HandleFunc("POST /players/{id}/characters/{cid}/moves", s.handleMoves)
	mux.HandleFunc("POST /players/{id}/characters/{cid}/equip", s.handleEquip)
	mux.HandleFunc("POST /players/{id}/characters/{cid}/unequip", s.handleUnequip)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)

	mux.HandleFunc("GET /portraits/{file}", s.handlePortrait)
	staticDir := s.StaticDir
	if staticDir == "" {
		staticDir = "static"
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/battles/new", http.StatusFound)
}

func (s *Server) baseContext() context.Context {
	if s.BaseContext != nil {
		return s.BaseContext
	}
	return context.Background()
}

// playerID prefers the form value and falls back to the cookie.
func (s *Server) playerID(r *http.Request) string {
	if id := r.FormValue("player_id"); id != "" {
		return id
	}
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) setPlayerCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, battle.ErrConcurrentBattle),
		errors.Is(err, battle.ErrNotRunning),
		errors.Is(err, battle.ErrCancelPending),
		errors.Is(err, ErrNoPendingRequest):
		return http.StatusConflict
	case errors.Is(err, arena.ErrPersistence):
		return http.StatusInternalServerError
	case errors.Is(err, arena.ErrUnknownPlayer):
		return http.StatusNotFound
	case errors.Is(err, arena.ErrInsufficientCoins):
		return http.StatusPaymentRequired
	case errors.Is(err, arena.ErrNoTeam),
		errors.Is(err, arena.ErrInvalidAmount),
		errors.Is(err, battle.ErrInvalidTeamState),
		errors.Is(err, ErrInvalidOption),
		errors.Is(err, game.ErrUnknownMove),
		errors.Is(err, game.ErrMoveLocked),
		errors.Is(err, game.ErrDuplicateMove),
		errors.Is(err, game.ErrSlotOutOfRange),
		errors.Is(err, game.ErrMoveNotEquipped),
		errors.Is(err, game.ErrUnknownCharacter),
		errors.Is(err, game.ErrInvalidTeam),
		errors.Is(err, game.ErrItemMissing),
		errors.Is(err, game.ErrItemEquipped),
		errors.Is(err, game.ErrNothingEquipped):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := errorStatus(err)
	if code >= 500 {
		logging.Error("request failed", err, logging.Fields{"method": r.Method, "path": r.URL.Path})
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// isHTMX reports whether the request wants a fragment rather than a page.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
