package battle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arena/internal/game"
)

// Timeouts bounds every prompt a human side can be given.
type Timeouts struct {
	Lead        time.Duration
	Action      time.Duration
	Replacement time.Duration
	Cancel      time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Lead:        120 * time.Second,
		Action:      60 * time.Second,
		Replacement: 120 * time.Second,
		Cancel:      30 * time.Second,
	}
}

// OrDefaults replaces every non-positive timeout with its default.
func (t Timeouts) OrDefaults() Timeouts {
	def := DefaultTimeouts()
	if t.Lead <= 0 {
		t.Lead = def.Lead
	}
	if t.Action <= 0 {
		t.Action = def.Action
	}
	if t.Replacement <= 0 {
		t.Replacement = def.Replacement
	}
	if t.Cancel <= 0 {
		t.Cancel = def.Cancel
	}
	return t
}

type ActionKind string

const (
	ActionAttack ActionKind = "attack"
	ActionSwitch ActionKind = "switch"
)

// Action is what a side does in a round: use a move, or switch its active
// combatant to the team index Switch.
type Action struct {
	Kind   ActionKind
	Move   game.Move
	Switch int
}

// View is what a controller gets to see when asked for a decision. The
// combatants must be treated as read-only.
type View struct {
	BattleID string
	Side     Side
	Round    int
	Team     []*Combatant
	Active   int
	Foe      *Combatant
}

// ActiveCombatant returns the side's active combatant, or nil before a lead
// has been chosen.
func (v View) ActiveCombatant() *Combatant {
	if v.Active < 0 || v.Active >= len(v.Team) {
		return nil
	}
	return v.Team[v.Active]
}

// Controller makes one side's decisions. Every method must return by the
// time ctx is done; the bool result reports that the default was used.
type Controller interface {
	ChooseLead(ctx context.Context, v View) (int, bool)
	ChooseAction(ctx context.Context, v View) (Action, bool)
	ChooseReplacement(ctx context.Context, v View) (int, bool)
	ConfirmCancel(ctx context.Context, v View) (bool, bool)
}

// DefaultAction is the first available move of the active combatant.
func DefaultAction(v View) Action {
	if c := v.ActiveCombatant(); c != nil && len(c.Moves) > 0 {
		return Action{Kind: ActionAttack, Move: c.Moves[0]}
	}
	return Action{Kind: ActionAttack}
}

// HumanController asks a Chooser, falling back to defaults on timeout.
type HumanController struct {
	Chooser  Chooser
	Timeouts Timeouts
}

func NewHumanController(ch Chooser, t Timeouts) *HumanController {
	return &HumanController{Chooser: ch, Timeouts: t}
}

func (h *HumanController) request(v View, kind RequestKind, prompt string, opts []Option) Request {
	return Request{
		ID:       uuid.NewString(),
		BattleID: v.BattleID,
		Side:     v.Side,
		Kind:     kind,
		Prompt:   prompt,
		Options:  opts,
	}
}

func (h *HumanController) ChooseLead(ctx context.Context, v View) (int, bool) {
	return h.pickCombatant(ctx, v, RequestLead, "Choose your lead", h.Timeouts.Lead)
}

func (h *HumanController) ChooseReplacement(ctx context.Context, v View) (int, bool) {
	return h.pickCombatant(ctx, v, RequestReplacement, "Choose a replacement", h.Timeouts.Replacement)
}

func (h *HumanController) pickCombatant(ctx context.Context, v View, kind RequestKind, prompt string, timeout time.Duration) (int, bool) {
	menu := NewMenu[int]()
	for _, i := range livingIndices(v.Team) {
		menu.Add(fmt.Sprintf("c%d", i), v.Team[i].String(), i)
	}
	if menu.Len() == 0 {
		return -1, false
	}
	req := h.request(v, kind, prompt, menu.Options())
	req.Default = menu.First()
	id, timedOut := Ask(ctx, h.Chooser, req, timeout)
	i, _ := menu.Resolve(id)
	return i, timedOut
}

func (h *HumanController) ChooseAction(ctx context.Context, v View) (Action, bool) {
	menu := NewMenu[Action]()
	if c := v.ActiveCombatant(); c != nil {
		for i, m := range c.Moves {
			menu.Add(fmt.Sprintf("m%d", i), moveLabel(m), Action{Kind: ActionAttack, Move: m})
		}
	}
	for _, i := range livingIndices(v.Team) {
		if i != v.Active {
			menu.Add(fmt.Sprintf("s%d", i), "Switch to "+v.Team[i].String(), Action{Kind: ActionSwitch, Switch: i})
		}
	}
	if menu.Len() == 0 {
		return DefaultAction(v), true
	}
	prompt := "Choose an action"
	if v.Foe != nil {
		prompt = fmt.Sprintf("Round %d against %s", v.Round, v.Foe)
	}
	req := h.request(v, RequestAction, prompt, menu.Options())
	req.Default = menu.First()
	id, timedOut := Ask(ctx, h.Chooser, req, h.Timeouts.Action)
	a, _ := menu.Resolve(id)
	return a, timedOut
}

func (h *HumanController) ConfirmCancel(ctx context.Context, v View) (bool, bool) {
	menu := NewMenu[bool]()
	menu.Add("no", "Keep fighting", false)
	menu.Add("yes", "Agree to cancel", true)
	req := h.request(v, RequestCancel, "Your opponent wants to call off the battle", menu.Options())
	req.Default = "no"
	id, timedOut := Ask(ctx, h.Chooser, req, h.Timeouts.Cancel)
	ok, _ := menu.Resolve(id)
	return ok, timedOut
}

func moveLabel(m game.Move) string {
	if m.Heal {
		return fmt.Sprintf("%s (heal %d%%, %d%% acc)", m.Name, m.Power, m.Accuracy)
	}
	return fmt.Sprintf("%s (%s %d, %d%% acc)", m.Name, m.Category, m.Power, m.Accuracy)
}

// AIController decides with a Policy and never waits. Each AIController
// needs its own Policy since both sides choose concurrently.
type AIController struct {
	Policy *Policy
	// AcceptCancel is the answer given to a cancel proposal.
	AcceptCancel bool
}

func NewAIController(p *Policy) *AIController {
	return &AIController{Policy: p, AcceptCancel: true}
}

func (a *AIController) ChooseLead(_ context.Context, v View) (int, bool) {
	return a.Policy.PickLiving(v.Team), false
}

func (a *AIController) ChooseReplacement(_ context.Context, v View) (int, bool) {
	return a.Policy.PickLiving(v.Team), false
}

func (a *AIController) ChooseAction(_ context.Context, v View) (Action, bool) {
	if i, ok := a.Policy.ChooseSwitch(v.Active, v.Team); ok {
		return Action{Kind: ActionSwitch, Switch: i}, false
	}
	active := v.ActiveCombatant()
	if active == nil {
		return DefaultAction(v), false
	}
	return Action{Kind: ActionAttack, Move: a.Policy.ChooseMove(active, v.Foe, active.Moves)}, false
}

func (a *AIController) ConfirmCancel(context.Context, View) (bool, bool) {
	return a.AcceptCancel, false
}
