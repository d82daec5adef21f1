package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"arena/internal/battle"
	"arena/internal/game"
	"arena/internal/ladder"
	"arena/internal/logging"
)

type Kind string

const (
	KindPvE Kind = "pve"
	KindPvP Kind = "pvp"
)

const aiOwner = "arena-ai"

type PvERequest struct {
	PlayerID string
	// Level of the opponent roster. Zero uses the team's average level.
	Level    int
	Chooser  battle.Chooser
	Observer func(battle.Event)
}

type PvPRequest struct {
	PlayerA, PlayerB   string
	ChooserA, ChooserB battle.Chooser
	Observer           func(battle.Event)
}

// Match is a battle that holds the registry lock for its players until it
// has run or been closed.
type Match struct {
	Kind          Kind
	Session       *battle.Session
	PlayerIDs     []string
	OpponentLevel int
	OpponentRP    int

	svc     *Service
	player  game.Player
	token   battle.Token
	release sync.Once
}

// Result is what a finished match changed.
type Result struct {
	Summary battle.Summary
	// Ladder is set when a PvE battle was won or lost.
	Ladder   *ladder.Outcome
	XP       int
	Unlocked map[int64][]string
	Player   *game.Player
}

// StartPvE locks the player, reads the record once and builds a session
// against an AI roster. The caller must Run or Close the match.
func (s *Service) StartPvE(ctx context.Context, req PvERequest) (*Match, error) {
	if req.PlayerID == "" {
		return nil, ErrUnknownPlayer
	}
	tok, err := s.Registry.Acquire(req.PlayerID)
	if err != nil {
		return nil, err
	}
	m := &Match{Kind: KindPvE, PlayerIDs: []string{req.PlayerID}, svc: s, token: tok}
	ok := false
	defer func() {
		if !ok {
			m.Close()
		}
	}()

	p, err := s.load(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}
	team := p.TeamInstances()
	if len(team) == 0 {
		return nil, fmt.Errorf("player %s: %w", p.ID, ErrNoTeam)
	}

	avg := p.AverageTeamLevel()
	level := avg
	if req.Level > 0 {
		level = game.ClampLevel(req.Level)
	}
	m.player = p
	m.OpponentLevel = level
	m.OpponentRP = max(0, p.RP+(level-avg)*s.cfg.RPPerLevel)

	cfg := s.cfg.Battle
	cfg.Timeouts = cfg.Timeouts.OrDefaults()
	cfg.Rand = s.NewRand()
	cfg.Observer = req.Observer

	policy := battle.NewPolicy(s.Catalog, s.NewRand())
	sess, err := battle.New(cfg, s.Catalog,
		battle.SideSpec{Name: p.ID, Roster: team, Controller: battle.NewHumanController(req.Chooser, cfg.Timeouts)},
		battle.SideSpec{Name: "Arena AI", Roster: policy.BuildRoster(level, aiOwner), Controller: battle.NewAIController(policy)},
	)
	if err != nil {
		return nil, err
	}
	m.Session = sess
	ok = true
	logging.Info("pve battle created", logging.Fields{
		"battle_id": sess.ID(), "player_id": p.ID, "opponent_level": level, "opponent_rp": m.OpponentRP,
	})
	return m, nil
}

// StartPvP locks both players and builds a session between their teams.
// PvP battles carry no rewards and write nothing.
func (s *Service) StartPvP(ctx context.Context, req PvPRequest) (*Match, error) {
	if req.PlayerA == "" || req.PlayerB == "" {
		return nil, ErrUnknownPlayer
	}
	if req.PlayerA == req.PlayerB {
		return nil, errors.New("a player cannot battle themselves")
	}
	tok, err := s.Registry.Acquire(req.PlayerA, req.PlayerB)
	if err != nil {
		return nil, err
	}
	m := &Match{Kind: KindPvP, PlayerIDs: []string{req.PlayerA, req.PlayerB}, svc: s, token: tok}
	ok := false
	defer func() {
		if !ok {
			m.Close()
		}
	}()

	a, err := s.load(ctx, req.PlayerA)
	if err != nil {
		return nil, err
	}
	b, err := s.load(ctx, req.PlayerB)
	if err != nil {
		return nil, err
	}

	cfg := s.cfg.Battle
	cfg.Timeouts = cfg.Timeouts.OrDefaults()
	cfg.Rand = s.NewRand()
	cfg.Observer = req.Observer

	sess, err := battle.New(cfg, s.Catalog,
		battle.SideSpec{Name: a.ID, Roster: a.TeamInstances(), Controller: battle.NewHumanController(req.ChooserA, cfg.Timeouts)},
		battle.SideSpec{Name: b.ID, Roster: b.TeamInstances(), Controller: battle.NewHumanController(req.ChooserB, cfg.Timeouts)},
	)
	if err != nil {
		return nil, err
	}
	m.Session = sess
	ok = true
	return m, nil
}

// Close releases the players without running the battle. It is safe to
// call more than once.
func (m *Match) Close() {
	m.release.Do(func() { m.svc.Registry.Release(m.token) })
}

// Run plays the battle to the end, settles rewards and releases the
// players. Only a won or lost PvE battle writes the player record.
func (m *Match) Run(ctx context.Context) (Result, error) {
	defer m.Close()

	sum, err := m.Session.Run(ctx)
	res := Result{Summary: sum}
	if err != nil {
		return res, err
	}
	if m.Kind != KindPvE || !sum.Decided() {
		return res, nil
	}
	return m.settle(ctx, res)
}

func (m *Match) settle(ctx context.Context, res Result) (Result, error) {
	s := m.svc
	p := m.player
	won := res.Summary.Won(battle.SideA)

	out := s.Ladder.Apply(p.RP, m.OpponentRP, won, p.Coins)
	p.RP = out.RP
	p.Coins = out.Coins
	res.Ladder = &out

	if won {
		res.XP = s.cfg.VictoryXP
		for _, id := range p.Team {
			c, ok := p.Characters[id]
			if !ok {
				continue
			}
			for _, mv := range s.Catalog.GainXP(c, res.XP) {
				if res.Unlocked == nil {
					res.Unlocked = map[int64][]string{}
				}
				res.Unlocked[id] = append(res.Unlocked[id], mv.Name)
			}
		}
	}

	if err := s.save(ctx, p); err != nil {
		logging.Error("reward write failed", err, logging.Fields{"battle_id": m.Session.ID(), "player_id": p.ID})
		return res, err
	}
	res.Player = &p
	logging.Info("pve rewards applied", logging.Fields{
		"battle_id": m.Session.ID(), "player_id": p.ID, "won": won,
		"rp": out.RP, "rp_delta": out.Delta, "coins": out.Coins, "tier": out.After.Name,
	})
	return res, nil
}

// PlayPvE starts and runs a PvE battle in one call.
func (s *Service) PlayPvE(ctx context.Context, req PvERequest) (Result, error) {
	m, err := s.StartPvE(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return m.Run(ctx)
}

// PlayPvP starts and runs a PvP battle in one call.
func (s *Service) PlayPvP(ctx context.Context, req PvPRequest) (Result, error) {
	m, err := s.StartPvP(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return m.Run(ctx)
}
