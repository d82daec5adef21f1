// Package arena ties players, battles and the ladder together.
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
	"arena/internal/store"
)

const (
	PullCost     = 50
	PullMinLevel = 1
	PullMaxLevel = 25

	ItemBoxCost  = 200
	MaxItemBoxes = 10

	DefaultRPPerLevel = 20
	DefaultVictoryXP  = 150
)

var (
	ErrPersistence       = errors.New("persistence failure")
	ErrInsufficientCoins = errors.New("not enough coins")
	ErrNoTeam            = errors.New("player has no team")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrInvalidAmount     = errors.New("invalid amount")
)

type Config struct {
	Battle     battle.Config
	RPPerLevel int
	VictoryXP  int
}

// Service owns the registry and the player store. It is safe for
// concurrent use.
type Service struct {
	Catalog  *game.Catalog
	Ladder   *ladder.Ladder
	Players  store.Store[game.Player]
	Registry *battle.Registry

	cfg Config

	// NewRand hands out an independent generator per battle side.
	NewRand func() game.Rand

	mu   sync.Mutex
	rand game.Rand
}

func New(c *game.Catalog, l *ladder.Ladder, players store.Store[game.Player], cfg Config) *Service {
	if cfg.RPPerLevel <= 0 {
		cfg.RPPerLevel = DefaultRPPerLevel
	}
	if cfg.VictoryXP <= 0 {
		cfg.VictoryXP = DefaultVictoryXP
	}
	return &Service{
		Catalog:  c,
		Ladder:   l,
		Players:  players,
		Registry: battle.NewRegistry(),
		cfg:      cfg,
		NewRand:  func() game.Rand { return game.NewRand() },
		rand:     game.NewRand(),
	}
}

func (s *Service) load(ctx context.Context, id string) (game.Player, error) {
	p, ok, err := s.Players.Get(ctx, id)
	if err != nil {
		return game.Player{}, fmt.Errorf("load player %s: %w: %w", id, ErrPersistence, err)
	}
	if !ok {
		return game.NewPlayer(id), nil
	}
	return p, nil
}

func (s *Service) save(ctx context.Context, p game.Player) error {
	if err := s.Players.Put(ctx, p.ID, p); err != nil {
		return fmt.Errorf("save player %s: %w: %w", p.ID, ErrPersistence, err)
	}
	return nil
}

// Player returns the record for id, creating and storing a fresh one the
// first time it is asked for.
func (s *Service) Player(ctx context.Context, id string) (game.Player, error) {
	if id == "" {
		return game.Player{}, ErrUnknownPlayer
	}
	p, ok, err := s.Players.Get(ctx, id)
	if err != nil {
		return game.Player{}, fmt.Errorf("load player %s: %w: %w", id, ErrPersistence, err)
	}
	if ok {
		return p, nil
	}
	p = game.NewPlayer(id)
	if err := s.save(ctx, p); err != nil {
		return game.Player{}, err
	}
	logging.Info("player created", logging.Fields{"player_id": id})
	return p, nil
}

// update reads player id, applies fn and writes the result once. Players in
// a battle are locked for the duration of the edit.
func (s *Service) update(ctx context.Context, id string, fn func(*game.Player) error) (game.Player, error) {
	if id == "" {
		return game.Player{}, ErrUnknownPlayer
	}
	tok, err := s.Registry.Acquire(id)
	if err != nil {
		return game.Player{}, err
	}
	defer s.Registry.Release(tok)

	p, err := s.load(ctx, id)
	if err != nil {
		return game.Player{}, err
	}
	if err := fn(&p); err != nil {
		return game.Player{}, err
	}
	if err := s.save(ctx, p); err != nil {
		return game.Player{}, err
	}
	return p, nil
}

// Pull spends PullCost coins on a random character at a random level
// between PullMinLevel and PullMaxLevel. The new character joins the team
// while the team has room.
func (s *Service) Pull(ctx context.Context, id string) (game.Player, game.CharacterInstance, error) {
	var pulled game.CharacterInstance
	p, err := s.update(ctx, id, func(p *game.Player) error {
		if p.Coins < PullCost {
			return fmt.Errorf("need %d coins, have %d: %w", PullCost, p.Coins, ErrInsufficientCoins)
		}
		if len(s.Catalog.Characters) == 0 {
			return errors.New("catalog has no characters")
		}

		s.mu.Lock()
		t := s.Catalog.Characters[s.rand.Intn(len(s.Catalog.Characters))]
		level := PullMinLevel + s.rand.Intn(PullMaxLevel-PullMinLevel+1)
		inst, err := game.NewInstance(s.rand, s.Catalog, t.ID, level, p.ID)
		s.mu.Unlock()
		if err != nil {
			return err
		}

		p.Coins -= PullCost
		cid := p.AddCharacter(inst)
		if len(p.Team) < game.MaxTeamSize {
			p.Team = append(p.Team, cid)
		}
		pulled = *p.Characters[cid]
		return nil
	})
	if err != nil {
		return game.Player{}, game.CharacterInstance{}, err
	}
	logging.Info("character pulled", logging.Fields{
		"player_id": id, "character": pulled.Name, "level": pulled.Level, "iv": pulled.IVPercent,
	})
	return p, pulled, nil
}

func (s *Service) SetTeam(ctx context.Context, id string, team []int64) (game.Player, error) {
	return s.update(ctx, id, func(p *game.Player) error { return p.SetTeam(team) })
}

// LearnMove puts move name into slot of character cid.
func (s *Service) LearnMove(ctx context.Context, id string, cid int64, slot int, name string) (game.Player, error) {
	return s.update(ctx, id, func(p *game.Player) error {
		c, err := p.Character(cid)
		if err != nil {
			return err
		}
		return s.Catalog.Learn(c, slot, name)
	})
}

// SwapMove replaces oldName with newName in the same slot.
func (s *Service) SwapMove(ctx context.Context, id string, cid int64, newName, oldName string) (game.Player, error) {
	return s.update(ctx, id, func(p *game.Player) error {
		c, err := p.Character(cid)
		if err != nil {
			return err
		}
		return s.Catalog.Swap(c, newName, oldName)
	})
}

func (s *Service) Equip(ctx context.Context, id string, cid int64, item string) (game.Player, error) {
	return s.update(ctx, id, func(p *game.Player) error { return p.Equip(cid, item) })
}

func (s *Service) Unequip(ctx context.Context, id string, cid int64) (game.Player, error) {
	return s.update(ctx, id, func(p *game.Player) error {
		_, err := p.Unequip(cid)
		return err
	})
}

// OpenItemBoxes spends ItemBoxCost coins per box and adds one random item
// from the catalog per box to the inventory. It returns the items drawn.
func (s *Service) OpenItemBoxes(ctx context.Context, id string, n int) (game.Player, []string, error) {
	if n < 1 || n > MaxItemBoxes {
		return game.Player{}, nil, fmt.Errorf("open %d boxes: %w", n, ErrInvalidAmount)
	}
	var drawn []string
	p, err := s.update(ctx, id, func(p *game.Player) error {
		cost := ItemBoxCost * n
		if p.Coins < cost {
			return fmt.Errorf("need %d coins, have %d: %w", cost, p.Coins, ErrInsufficientCoins)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for range n {
			item, ok := s.Catalog.Items.Draw(s.rand)
			if !ok {
				return errors.New("catalog has no items")
			}
			drawn = append(drawn, item)
		}
		if p.Inventory == nil {
			p.Inventory = map[string]int{}
		}
		for _, item := range drawn {
			p.Inventory[item]++
		}
		p.Coins -= cost
		return nil
	})
	if err != nil {
		return game.Player{}, nil, err
	}
	logging.Info("item boxes opened", logging.Fields{"player_id": id, "items": drawn})
	return p, drawn, nil
}
