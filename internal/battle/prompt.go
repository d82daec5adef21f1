package battle

import (
	"context"
	"time"
)

type RequestKind string

const (
	RequestLead        RequestKind = "lead"
	RequestAction      RequestKind = "action"
	RequestReplacement RequestKind = "replacement"
	RequestCancel      RequestKind = "cancel"
)

// Option is one selectable entry of a request.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Request is a question put to one side. Default is the option picked when
// nobody answers before Deadline.
type Request struct {
	ID       string      `json:"id"`
	BattleID string      `json:"battle_id"`
	Side     Side        `json:"side"`
	Kind     RequestKind `json:"kind"`
	Prompt   string      `json:"prompt"`
	Options  []Option    `json:"options"`
	Default  string      `json:"default"`
	Deadline time.Time   `json:"deadline"`
}

// Valid reports whether id is one of the request's options.
func (r Request) Valid(id string) bool {
	for _, o := range r.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Chooser is the interaction surface a human side answers through. Choose
// blocks until an option id is picked or ctx is done.
type Chooser interface {
	Choose(ctx context.Context, req Request) (string, error)
}

// Ask puts req to ch and waits at most timeout for an answer. When the
// chooser fails, answers with an unknown id, or does not answer in time,
// req.Default is returned with timedOut set. Ask never waits past the
// deadline even if ch ignores its context.
func Ask(ctx context.Context, ch Chooser, req Request, timeout time.Duration) (id string, timedOut bool) {
	if ch == nil || len(req.Options) == 0 {
		return req.Default, true
	}
	if req.Default == "" {
		req.Default = req.Options[0].ID
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req.Deadline = time.Now().Add(timeout)

	type answer struct {
		id  string
		err error
	}
	done := make(chan answer, 1)
	go func() {
		id, err := ch.Choose(ctx, req)
		done <- answer{id, err}
	}()

	select {
	case a := <-done:
		if a.err != nil || !req.Valid(a.id) {
			return req.Default, true
		}
		return a.id, false
	case <-ctx.Done():
		return req.Default, true
	}
}

// Menu maps rendered option ids back to the values they stand for.
type Menu[T any] struct {
	opts []Option
	byID map[string]T
}

func NewMenu[T any]() *Menu[T] {
	return &Menu[T]{byID: map[string]T{}}
}

// Add appends an option. Adding an id twice replaces the value but keeps the
// original position.
func (m *Menu[T]) Add(id, label string, v T) {
	if _, ok := m.byID[id]; !ok {
		m.opts = append(m.opts, Option{ID: id, Label: label})
	}
	m.byID[id] = v
}

func (m *Menu[T]) Options() []Option {
	return append([]Option(nil), m.opts...)
}

func (m *Menu[T]) Len() int { return len(m.opts) }

// First returns the id of the first option, or "" for an empty menu.
func (m *Menu[T]) First() string {
	if len(m.opts) == 0 {
		return ""
	}
	return m.opts[0].ID
}

// Resolve returns the value behind id.
func (m *Menu[T]) Resolve(id string) (T, bool) {
	v, ok := m.byID[id]
	return v, ok
}
