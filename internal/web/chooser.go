package web

import (
	"context"
	"errors"
	"sort"
	"sync"

	"arena/internal/battle"
)

var (
	ErrNoPendingRequest = errors.New("no such pending request")
	ErrInvalidOption    = errors.New("option not offered by the request")
)

type pendingRequest struct {
	req    battle.Request
	answer chan string
}

// webChooser parks battle prompts until a browser answers them. Answers
// arrive through Answer from the choice handler.
type webChooser struct {
	mu      sync.Mutex
	pending map[string]*pendingRequest
	notify  func(battle.Request)
}

func newWebChooser(notify func(battle.Request)) *webChooser {
	return &webChooser{pending: map[string]*pendingRequest{}, notify: notify}
}

func (c *webChooser) Choose(ctx context.Context, req battle.Request) (string, error) {
	p := &pendingRequest{req: req, answer: make(chan string, 1)}
	c.mu.Lock()
	c.pending[req.ID] = p
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	if c.notify != nil {
		c.notify(req)
	}
	select {
	case id := <-p.answer:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Answer resolves the pending request reqID with option. Each request can
// be answered once.
func (c *webChooser) Answer(reqID, option string) error {
	c.mu.Lock()
	p, ok := c.pending[reqID]
	if !ok {
		c.mu.Unlock()
		return ErrNoPendingRequest
	}
	if !p.req.Valid(option) {
		c.mu.Unlock()
		return ErrInvalidOption
	}
	delete(c.pending, reqID)
	c.mu.Unlock()

	p.answer <- option
	return nil
}

// Pending returns the open requests, oldest deadline first.
func (c *webChooser) Pending() []battle.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]battle.Request, 0, len(c.pending))
	for _, p := range c.pending {
		out = append(out, p.req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out
}
