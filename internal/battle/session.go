package battle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"arena/internal/game"
	"arena/internal/logging"
)

var (
	ErrInvalidTeamState = errors.New("invalid team state")
	ErrAlreadyStarted   = errors.New("battle already started")
	ErrNotRunning       = errors.New("battle is over")
	ErrCancelPending    = errors.New("a cancel proposal is already pending")
)

type State string

const (
	StateInit       State = "init"
	StateTeamSelect State = "team_select"
	StateRound      State = "round"
	StateTerminal   State = "terminal"
)

const DefaultMaxRounds = 200

type Config struct {
	Timeouts  Timeouts
	MaxRounds int
	// Rand drives accuracy and critical rolls. Nil uses a fresh game.NewRand.
	Rand game.Rand
	// Observer is called with every event as it is logged, while the
	// session lock is held. It must not call back into the session.
	Observer func(Event)
}

func DefaultConfig() Config {
	return Config{Timeouts: DefaultTimeouts(), MaxRounds: DefaultMaxRounds}
}

func (c *Config) fill() {
	c.Timeouts = c.Timeouts.OrDefaults()
	if c.MaxRounds <= 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.Rand == nil {
		c.Rand = game.NewRand()
	}
}

// SideSpec describes one side before the battle starts.
type SideSpec struct {
	Name       string
	Roster     []game.CharacterInstance
	Controller Controller
}

type side struct {
	name   string
	team   []*Combatant
	active int
	ctrl   Controller
}

// Session runs one battle from team selection to a terminal outcome.
type Session struct {
	id       string
	cfg      Config
	resolver *Resolver
	sides    [2]*side
	tracer   trace.Tracer

	mu        sync.Mutex
	state     State
	round     int
	events    []Event
	summary   *Summary
	started   bool
	cancelled bool
	proposing bool
	stop      context.CancelFunc

	done chan struct{}
}

// New builds the combatants for both sides. An empty roster on either side
// is rejected before any combatant is created.
func New(cfg Config, c *game.Catalog, a, b SideSpec) (*Session, error) {
	for i, spec := range []SideSpec{a, b} {
		if len(spec.Roster) == 0 || len(spec.Roster) > game.MaxTeamSize {
			return nil, fmt.Errorf("side %s has %d combatants: %w", Side(i), len(spec.Roster), ErrInvalidTeamState)
		}
		if spec.Controller == nil {
			return nil, fmt.Errorf("side %s has no controller: %w", Side(i), ErrInvalidTeamState)
		}
	}
	cfg.fill()

	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		resolver: NewResolver(cfg.Rand),
		tracer:   otel.Tracer("arena/internal/battle"),
		state:    StateInit,
		done:     make(chan struct{}),
	}

	var warnings []Event
	for i, spec := range []SideSpec{a, b} {
		sd := &side{name: spec.Name, active: -1, ctrl: spec.Controller}
		for _, inst := range spec.Roster {
			cb, unknown, err := NewCombatant(c, inst)
			if err != nil {
				return nil, fmt.Errorf("side %s: %w", Side(i), err)
			}
			for _, name := range unknown {
				warnings = append(warnings, Event{
					Kind:    EventWarning,
					Side:    Side(i),
					Actor:   cb.Name(),
					Move:    name,
					Message: fmt.Sprintf("%s does not know %q, using %s instead", cb.Name(), name, c.FirstPhysical().Name),
				})
			}
			for _, problem := range movesetProblems(c.ValidateMoveset(inst)) {
				warnings = append(warnings, Event{
					Kind:    EventWarning,
					Side:    Side(i),
					Actor:   cb.Name(),
					Message: fmt.Sprintf("%s: %v, move left out", cb.Name(), problem),
				})
			}
			sd.team = append(sd.team, cb)
		}
		s.sides[i] = sd
	}
	for _, w := range warnings {
		logging.Warn("moveset warning", logging.Fields{"battle_id": s.id, "character": w.Actor, "move": w.Move, "detail": w.Message})
		s.emit(w)
	}
	return s, nil
}

// movesetProblems splits a ValidateMoveset error into its locked and
// duplicate slots. Unknown moves are reported separately.
func movesetProblems(err error) []error {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	var out []error
	for _, e := range errs {
		if errors.Is(e, game.ErrUnknownMove) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Session) ID() string { return s.id }

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Events returns a copy of the event log so far.
func (s *Session) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Summary returns the terminal summary once the battle is over.
func (s *Session) Summary() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return Summary{}, false
	}
	return *s.summary, true
}

// SideSnapshot is a point-in-time copy of one side.
type SideSnapshot struct {
	Name   string             `json:"name"`
	Active int                `json:"active"`
	Team   []CombatantSummary `json:"team"`
}

type Snapshot struct {
	ID      string          `json:"id"`
	State   State           `json:"state"`
	Round   int             `json:"round"`
	Sides   [2]SideSnapshot `json:"sides"`
	Summary *Summary        `json:"summary,omitempty"`
}

// Snapshot copies the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{ID: s.id, State: s.state, Round: s.round}
	for i, sd := range s.sides {
		snap.Sides[i] = SideSnapshot{Name: sd.name, Active: sd.active, Team: summarize(Side(i), sd.team)}
	}
	if s.summary != nil {
		sum := *s.summary
		snap.Summary = &sum
	}
	return snap
}

func summarize(sd Side, team []*Combatant) []CombatantSummary {
	out := make([]CombatantSummary, 0, len(team))
	for _, c := range team {
		out = append(out, CombatantSummary{Side: sd, Name: c.Name(), Level: c.Level(), HP: c.HP, MaxHP: c.MaxHP})
	}
	return out
}

func (s *Session) emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitLocked(e)
}

func (s *Session) emitLocked(e Event) {
	e.Seq = len(s.events) + 1
	e.Round = s.round
	e.At = time.Now()
	s.events = append(s.events, e)
	if s.cfg.Observer != nil {
		s.cfg.Observer(e)
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) view(sd Side) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	own, foe := s.sides[sd], s.sides[sd.Other()]
	v := View{BattleID: s.id, Side: sd, Round: s.round, Team: own.team, Active: own.active}
	if foe.active >= 0 {
		v.Foe = foe.team[foe.active]
	}
	return v
}

// Run plays the battle to the end. Cancelling ctx aborts it; a cancel agreed
// through ProposeCancel ends it as cancelled. An aborted battle returns its
// summary together with the context error.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return Summary{}, ErrAlreadyStarted
	}
	s.started = true
	runCtx, stop := context.WithCancel(ctx)
	s.stop = stop
	s.mu.Unlock()
	defer close(s.done)
	defer stop()

	runCtx, span := s.tracer.Start(runCtx, "battle.Run", trace.WithAttributes(attribute.String("battle.id", s.id)))
	defer span.End()

	sum := s.play(runCtx, ctx)
	span.SetAttributes(
		attribute.String("battle.outcome", string(sum.Outcome)),
		attribute.Int("battle.rounds", sum.Rounds),
	)
	logging.Info("battle finished", logging.Fields{
		"battle_id": s.id,
		"outcome":   sum.Outcome,
		"winner":    sum.Winner.String(),
		"rounds":    sum.Rounds,
	})
	if sum.Outcome == OutcomeAborted {
		return sum, ctx.Err()
	}
	return sum, nil
}

func (s *Session) play(ctx, parent context.Context) Summary {
	if o, ok := s.interrupted(parent); ok {
		return s.finish(o, NoSide, "")
	}

	s.setState(StateTeamSelect)
	s.chooseLeads(ctx, parent)
	if o, ok := s.interrupted(parent); ok {
		return s.finish(o, NoSide, "")
	}

	for round := 1; ; round++ {
		if round > s.cfg.MaxRounds {
			return s.finish(OutcomeDraw, NoSide, fmt.Sprintf("no winner after %d rounds", s.cfg.MaxRounds))
		}
		s.mu.Lock()
		s.state = StateRound
		s.round = round
		s.emitLocked(Event{Kind: EventRound, Side: NoSide})
		s.mu.Unlock()

		if sum, over := s.playRound(ctx, parent, round); over {
			return sum
		}
	}
}

func (s *Session) chooseLeads(ctx, parent context.Context) {
	var picks [2]int
	var timedOut [2]bool
	g, gctx := errgroup.WithContext(ctx)
	for i := range s.sides {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.cfg.Timeouts.Lead)
			defer cancel()
			picks[i], timedOut[i] = s.sides[i].ctrl.ChooseLead(cctx, s.view(Side(i)))
			return nil
		})
	}
	_ = g.Wait()
	if _, ok := s.interrupted(parent); ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sd := range s.sides {
		if timedOut[i] {
			s.emitLocked(Event{Kind: EventTimeout, Side: Side(i), Message: fmt.Sprintf("Side %s did not pick a lead in time", Side(i))})
		}
		sd.active = validPick(sd.team, picks[i], -1)
		s.emitLocked(Event{Kind: EventSendOut, Side: Side(i), Actor: sd.team[sd.active].Name(), HP: sd.team[sd.active].HP})
	}
}

// validPick returns i when it names a living combatant other than exclude,
// otherwise the first such combatant.
func validPick(team []*Combatant, i, exclude int) int {
	if i >= 0 && i < len(team) && i != exclude && team[i].Alive() {
		return i
	}
	for j, c := range team {
		if j != exclude && c.Alive() {
			return j
		}
	}
	return firstLiving(team)
}

type turn struct {
	side   Side
	actor  *Combatant
	action Action
}

func (s *Session) playRound(ctx, parent context.Context, round int) (Summary, bool) {
	ctx, span := s.tracer.Start(ctx, "battle.Round", trace.WithAttributes(attribute.Int("battle.round", round)))
	defer span.End()

	var actions [2]Action
	var timedOut [2]bool
	g, gctx := errgroup.WithContext(ctx)
	for i := range s.sides {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.cfg.Timeouts.Action)
			defer cancel()
			v := s.view(Side(i))
			actions[i], timedOut[i] = s.sides[i].ctrl.ChooseAction(cctx, v)
			if timedOut[i] {
				actions[i] = DefaultAction(v)
			}
			return nil
		})
	}
	_ = g.Wait()
	if o, ok := s.interrupted(parent); ok {
		return s.finish(o, NoSide, ""), true
	}

	s.mu.Lock()
	turns := make([]turn, 0, len(s.sides))
	for i, sd := range s.sides {
		if timedOut[i] {
			s.emitLocked(Event{Kind: EventTimeout, Side: Side(i), Message: fmt.Sprintf("Side %s did not act in time", Side(i))})
		}
		turns = append(turns, turn{side: Side(i), actor: sd.team[sd.active], action: actions[i]})
	}
	s.mu.Unlock()

	// stable sort keeps side A ahead on speed ties
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].actor.Stats.SPD > turns[j].actor.Stats.SPD
	})

	for _, t := range turns {
		foeFainted, wiped := s.execute(t)
		if wiped {
			return s.finish(OutcomeVictory, t.side, ""), true
		}
		if foeFainted {
			s.replace(ctx, t.side.Other())
			if o, ok := s.interrupted(parent); ok {
				return s.finish(o, NoSide, ""), true
			}
		}
	}
	return Summary{}, false
}

// execute carries out one turn. It reports whether the opposing active
// combatant fainted and whether the opposing side has nobody left.
func (s *Session) execute(t turn) (foeFainted, wiped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	own, foe := s.sides[t.side], s.sides[t.side.Other()]
	if t.actor.Fainted() || own.team[own.active] != t.actor {
		return false, false
	}

	if t.action.Kind == ActionSwitch {
		i := t.action.Switch
		if i >= 0 && i < len(own.team) && i != own.active && own.team[i].Alive() {
			own.active = i
			s.emitLocked(Event{Kind: EventSwitch, Side: t.side, Actor: t.actor.Name(), Target: own.team[i].Name(), HP: own.team[i].HP})
			return false, false
		}
		t.action = DefaultAction(View{Team: own.team, Active: own.active})
	}

	move := t.action.Move
	if move.Name == "" {
		move = t.actor.Moves[0]
	}
	target := foe.team[foe.active]
	s.emitLocked(Event{Kind: EventMove, Side: t.side, Actor: t.actor.Name(), Target: target.Name(), Move: move.Name})

	res := s.resolver.Resolve(t.actor, target, move)
	switch {
	case !res.Hit:
		s.emitLocked(Event{Kind: EventMiss, Side: t.side, Actor: t.actor.Name(), Move: move.Name})
		return false, false
	case move.Heal:
		n := t.actor.Restore(res.Heal)
		s.emitLocked(Event{Kind: EventHeal, Side: t.side, Actor: t.actor.Name(), Move: move.Name, Amount: n, HP: t.actor.HP})
		return false, false
	}

	target.TakeDamage(res.Damage)
	s.emitLocked(Event{
		Kind:   EventDamage,
		Side:   t.side,
		Actor:  t.actor.Name(),
		Target: target.Name(),
		Move:   move.Name,
		Amount: res.Damage,
		Crit:   res.Crit,
		HP:     target.HP,
	})
	if target.Alive() {
		return false, false
	}
	s.emitLocked(Event{Kind: EventFaint, Side: t.side.Other(), Actor: target.Name()})
	return true, firstLiving(foe.team) < 0
}

func (s *Session) replace(ctx context.Context, sd Side) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Replacement)
	defer cancel()
	pick, timedOut := s.sides[sd].ctrl.ChooseReplacement(cctx, s.view(sd))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	own := s.sides[sd]
	if timedOut {
		s.emitLocked(Event{Kind: EventTimeout, Side: sd, Message: fmt.Sprintf("Side %s did not pick a replacement in time", sd)})
	}
	own.active = validPick(own.team, pick, -1)
	c := own.team[own.active]
	s.emitLocked(Event{Kind: EventSendOut, Side: sd, Actor: c.Name(), HP: c.HP})
}

func (s *Session) interrupted(parent context.Context) (Outcome, bool) {
	s.mu.Lock()
	cancelled := s.cancelled
	s.mu.Unlock()
	if cancelled {
		return OutcomeCancelled, true
	}
	if parent.Err() != nil {
		return OutcomeAborted, true
	}
	return "", false
}

// finish records the terminal summary. An accepted cancel wins over any
// result reached after it, so a called-off battle never has a winner.
func (s *Session) finish(o Outcome, winner Side, reason string) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled && o != OutcomeCancelled {
		o, winner, reason = OutcomeCancelled, NoSide, ""
	}
	s.state = StateTerminal
	sum := Summary{Outcome: o, Winner: winner, Rounds: s.round, Reason: reason}
	for i, sd := range s.sides {
		sum.Combatants = append(sum.Combatants, summarize(Side(i), sd.team)...)
	}
	s.summary = &sum

	msg := ""
	switch o {
	case OutcomeVictory:
		msg = fmt.Sprintf("%s wins", s.sides[winner].name)
	case OutcomeDraw:
		msg = "The battle ended in a draw"
	case OutcomeCancelled:
		msg = "The battle was called off"
	case OutcomeAborted:
		msg = "The battle was aborted"
	}
	if reason != "" {
		msg += ": " + reason
	}
	s.emitLocked(Event{Kind: EventEnd, Side: winner, Message: msg})
	return sum
}

// ProposeCancel asks the other side to call the battle off. When they agree
// the running battle ends as cancelled with no winner. The bool result
// reports whether the proposal was accepted.
func (s *Session) ProposeCancel(ctx context.Context, from Side) (bool, error) {
	if from != SideA && from != SideB {
		return false, fmt.Errorf("unknown side %d", from)
	}
	s.mu.Lock()
	if s.state == StateTerminal {
		s.mu.Unlock()
		return false, ErrNotRunning
	}
	if s.proposing {
		s.mu.Unlock()
		return false, ErrCancelPending
	}
	s.proposing = true
	s.emitLocked(Event{Kind: EventCancelProposed, Side: from, Message: fmt.Sprintf("Side %s proposed to cancel", from)})
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.proposing = false
		s.mu.Unlock()
	}()

	other := from.Other()
	cctx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Cancel)
	defer cancel()
	ok, timedOut := s.sides[other].ctrl.ConfirmCancel(cctx, s.view(other))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateTerminal {
		return false, ErrNotRunning
	}
	if !ok {
		if timedOut {
			s.emitLocked(Event{Kind: EventTimeout, Side: other, Message: fmt.Sprintf("Side %s did not answer the cancel proposal", other)})
		}
		s.emitLocked(Event{Kind: EventCancelDeclined, Side: other, Message: fmt.Sprintf("Side %s declined to cancel", other)})
		return false, nil
	}
	s.cancelled = true
	if s.stop != nil {
		s.stop()
	}
	return true, nil
}
