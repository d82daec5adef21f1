package battle

import (
	"fmt"
	"time"
)

// Side identifies one half of a battle.
type Side int

const (
	NoSide Side = -1
	SideA  Side = 0
	SideB  Side = 1
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "-"
	}
}

type EventKind string

const (
	EventRound          EventKind = "round"
	EventSendOut        EventKind = "send_out"
	EventMove           EventKind = "move"
	EventMiss           EventKind = "miss"
	EventDamage         EventKind = "damage"
	EventHeal           EventKind = "heal"
	EventFaint          EventKind = "faint"
	EventSwitch         EventKind = "switch"
	EventWarning        EventKind = "warning"
	EventTimeout        EventKind = "timeout"
	EventCancelProposed EventKind = "cancel_proposed"
	EventCancelDeclined EventKind = "cancel_declined"
	EventEnd            EventKind = "end"
)

// Event is one entry of the battle log. Which fields are set depends on Kind.
type Event struct {
	Seq     int       `json:"seq"`
	Round   int       `json:"round"`
	Kind    EventKind `json:"kind"`
	Side    Side      `json:"side"`
	Actor   string    `json:"actor,omitempty"`
	Target  string    `json:"target,omitempty"`
	Move    string    `json:"move,omitempty"`
	Amount  int       `json:"amount,omitempty"`
	Crit    bool      `json:"crit,omitempty"`
	HP      int       `json:"hp"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// String renders the event as a single log line.
func (e Event) String() string {
	switch e.Kind {
	case EventRound:
		return fmt.Sprintf("Round %d", e.Round)
	case EventSendOut:
		return fmt.Sprintf("Side %s sends out %s", e.Side, e.Actor)
	case EventMove:
		return fmt.Sprintf("%s used %s", e.Actor, e.Move)
	case EventMiss:
		return fmt.Sprintf("%s's %s missed", e.Actor, e.Move)
	case EventDamage:
		if e.Crit {
			return fmt.Sprintf("Critical hit! %s took %d damage (%d HP left)", e.Target, e.Amount, e.HP)
		}
		return fmt.Sprintf("%s took %d damage (%d HP left)", e.Target, e.Amount, e.HP)
	case EventHeal:
		return fmt.Sprintf("%s recovered %d HP (%d HP)", e.Actor, e.Amount, e.HP)
	case EventFaint:
		return fmt.Sprintf("%s fainted", e.Actor)
	case EventSwitch:
		return fmt.Sprintf("Side %s switched %s out for %s", e.Side, e.Actor, e.Target)
	case EventEnd:
		return e.Message
	default:
		return e.Message
	}
}

type Outcome string

const (
	OutcomeVictory   Outcome = "victory"
	OutcomeDraw      Outcome = "draw"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeAborted   Outcome = "aborted"
)

// CombatantSummary is the final state of one combatant.
type CombatantSummary struct {
	Side  Side   `json:"side"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
}

// Summary is produced once a session reaches its terminal state. Winner is
// NoSide unless Outcome is OutcomeVictory.
type Summary struct {
	Outcome    Outcome            `json:"outcome"`
	Winner     Side               `json:"winner"`
	Rounds     int                `json:"rounds"`
	Combatants []CombatantSummary `json:"combatants"`
	Reason     string             `json:"reason,omitempty"`
}

// Won reports whether side won the battle.
func (s Summary) Won(side Side) bool {
	return s.Outcome == OutcomeVictory && s.Winner == side
}

// Decided reports whether the battle ended with a winner.
func (s Summary) Decided() bool {
	return s.Outcome == OutcomeVictory
}
