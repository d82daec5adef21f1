package web

import (
	"arena/internal/battle"
	"arena/internal/game"
	"arena/internal/ladder"
)

const recentEvents = 15

// NewBattleViewModel is the start form.
type NewBattleViewModel struct {
	PlayerID string
	Message  string
}

type CombatantView struct {
	Name      string
	Level     int
	HP        int
	MaxHP     int
	HPPercent int
	Active    bool
	Fainted   bool
}

type SideView struct {
	Name string
	Team []CombatantView
}

// BattleViewModel contains data for rendering the battle page.
type BattleViewModel struct {
	ID      string
	State   battle.State
	Round   int
	Player  SideView
	Foe     SideView
	Prompt  *battle.Request
	Events  []battle.Event
	Summary *battle.Summary
	Ladder  *ladder.Outcome
	XP      int
	Done    bool
	Message string
}

func sideView(sd battle.SideSnapshot) SideView {
	v := SideView{Name: sd.Name}
	for i, c := range sd.Team {
		pct := 0
		if c.MaxHP > 0 {
			pct = c.HP * 100 / c.MaxHP
		}
		v.Team = append(v.Team, CombatantView{
			Name:      c.Name,
			Level:     c.Level,
			HP:        c.HP,
			MaxHP:     c.MaxHP,
			HPPercent: pct,
			Active:    i == sd.Active,
			Fainted:   c.HP <= 0,
		})
	}
	return v
}

func (s *Server) makeBattleViewModel(lb *liveBattle, msg string) BattleViewModel {
	snap := lb.match.Session.Snapshot()
	events := lb.match.Session.Events()
	if len(events) > recentEvents {
		events = events[len(events)-recentEvents:]
	}
	vm := BattleViewModel{
		ID:      snap.ID,
		State:   snap.State,
		Round:   snap.Round,
		Player:  sideView(snap.Sides[battle.SideA]),
		Foe:     sideView(snap.Sides[battle.SideB]),
		Events:  events,
		Summary: snap.Summary,
		Message: msg,
	}
	if pending := lb.chooser.Pending(); len(pending) > 0 {
		vm.Prompt = &pending[0]
	}
	if res, ok := lb.Result(); ok {
		vm.Done = true
		vm.Summary = &res.Summary
		vm.Ladder = res.Ladder
		vm.XP = res.XP
		if err := lb.Err(); err != nil && vm.Message == "" {
			vm.Message = err.Error()
		}
	}
	return vm
}

// characterView is a character as the players API returns it.
type characterView struct {
	game.CharacterInstance
	Stats       game.Stats `json:"stats"`
	NextLevelXP int        `json:"next_level_xp"`
	Learnable   []string   `json:"learnable"`
}

type playerView struct {
	ID         string          `json:"id"`
	Coins      int             `json:"coins"`
	RP         int             `json:"rp"`
	Tier       string          `json:"tier"`
	Team       []int64         `json:"team"`
	Inventory  map[string]int  `json:"inventory"`
	Characters []characterView `json:"characters"`
}

func (s *Server) makePlayerView(p game.Player) playerView {
	v := playerView{
		ID:        p.ID,
		Coins:     p.Coins,
		RP:        p.RP,
		Tier:      s.Arena.Ladder.TierFor(p.RP).Name,
		Team:      p.Team,
		Inventory: p.Inventory,
	}
	if v.Team == nil {
		v.Team = []int64{}
	}
	for id := int64(1); id < p.NextCharacterID; id++ {
		c, ok := p.Characters[id]
		if !ok {
			continue
		}
		cv := characterView{CharacterInstance: *c, NextLevelXP: game.XPForNextLevel(c.Level)}
		if st, err := s.Arena.Catalog.Stats(*c); err == nil {
			cv.Stats = st
		}
		for _, m := range s.Arena.Catalog.UnlockedMoves(c.TemplateID, c.Level) {
			cv.Learnable = append(cv.Learnable, m.Name)
		}
		v.Characters = append(v.Characters, cv)
	}
	return v
}
