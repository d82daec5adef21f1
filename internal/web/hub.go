package web

import (
	"context"
	"sync"
	"time"

	"arena/internal/arena"
	"arena/internal/battle"
	"arena/internal/ladder"
	"arena/internal/logging"
)

const (
	DefaultRetention = 30 * time.Minute
	subscriberBuffer = 64
)

// frame is one websocket message.
type frame struct {
	Type    string          `json:"type"` // event, prompt or end
	Event   *battle.Event   `json:"event,omitempty"`
	Request *battle.Request `json:"request,omitempty"`
	Summary *battle.Summary `json:"summary,omitempty"`
	Ladder  *ladder.Outcome `json:"ladder,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// liveBattle is a battle started over HTTP, kept around after it ends so
// the result and report can still be fetched.
type liveBattle struct {
	id      string
	match   *arena.Match
	chooser *webChooser

	mu     sync.Mutex
	subs   map[chan frame]struct{}
	result *arena.Result
	err    error

	done chan struct{}
}

func newLiveBattle() *liveBattle {
	lb := &liveBattle{subs: map[chan frame]struct{}{}, done: make(chan struct{})}
	lb.chooser = newWebChooser(func(req battle.Request) {
		lb.publish(frame{Type: "prompt", Request: &req})
	})
	return lb
}

// observe is the session observer. It runs under the session lock and never
// blocks: slow subscribers lose frames.
func (lb *liveBattle) observe(e battle.Event) {
	lb.publish(frame{Type: "event", Event: &e})
}

func (lb *liveBattle) publish(f frame) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	for ch := range lb.subs {
		select {
		case ch <- f:
		default:
		}
	}
}

func (lb *liveBattle) subscribe() (<-chan frame, func()) {
	ch := make(chan frame, subscriberBuffer)
	lb.mu.Lock()
	lb.subs[ch] = struct{}{}
	lb.mu.Unlock()
	return ch, func() {
		lb.mu.Lock()
		delete(lb.subs, ch)
		lb.mu.Unlock()
	}
}

func (lb *liveBattle) run(ctx context.Context) {
	res, err := lb.match.Run(ctx)
	if err != nil {
		logging.Error("battle ended with error", err, logging.Fields{"battle_id": lb.id})
	}
	lb.mu.Lock()
	lb.result = &res
	lb.err = err
	lb.mu.Unlock()
	close(lb.done)
}

// Result returns the match result once the battle is over.
func (lb *liveBattle) Result() (arena.Result, bool) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.result == nil {
		return arena.Result{}, false
	}
	return *lb.result, true
}

// Err is the error the match ended with, if any.
func (lb *liveBattle) Err() error {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.err
}

func (lb *liveBattle) finished() bool {
	select {
	case <-lb.done:
		return true
	default:
		return false
	}
}

// Hub indexes live battles by id.
type Hub struct {
	mu        sync.RWMutex
	battles   map[string]*liveBattle
	retention time.Duration
}

// NewHub keeps finished battles for retention. Non-positive means
// DefaultRetention.
func NewHub(retention time.Duration) *Hub {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Hub{battles: map[string]*liveBattle{}, retention: retention}
}

func (h *Hub) add(lb *liveBattle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.battles[lb.id] = lb
}

func (h *Hub) get(id string) (*liveBattle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	lb, ok := h.battles[id]
	return lb, ok
}

// start runs lb under ctx and drops it once the retention has passed.
func (h *Hub) start(ctx context.Context, lb *liveBattle) {
	h.add(lb)
	go func() {
		lb.run(ctx)
		time.AfterFunc(h.retention, func() {
			h.mu.Lock()
			delete(h.battles, lb.id)
			h.mu.Unlock()
		})
	}()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.battles)
}
