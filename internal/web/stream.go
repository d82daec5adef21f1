package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"arena/internal/logging"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096}

// GET /battles/{id}/ws streams the event log: the backlog first, then live
// events and prompts, and a final end frame with the summary.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	lb, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", logging.Fields{"battle_id": lb.id, "error": err.Error()})
		return
	}
	defer conn.Close()

	// subscribe before reading the backlog so nothing falls in between;
	// duplicates are dropped by sequence number
	ch, unsubscribe := lb.subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(f frame) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(f) == nil
	}

	last := 0
	forward := func(f frame) bool {
		if f.Event != nil {
			if f.Event.Seq <= last {
				return true
			}
			last = f.Event.Seq
		}
		return write(f)
	}

	for _, e := range lb.match.Session.Events() {
		if !forward(frame{Type: "event", Event: &e}) {
			return
		}
	}
	for _, req := range lb.chooser.Pending() {
		if !write(frame{Type: "prompt", Request: &req}) {
			return
		}
	}

	for {
		select {
		case f := <-ch:
			if !forward(f) {
				return
			}
		case <-lb.done:
			for drained := false; !drained; {
				select {
				case f := <-ch:
					if !forward(f) {
						return
					}
				default:
					drained = true
				}
			}
			end := frame{Type: "end"}
			if res, ok := lb.Result(); ok {
				end.Summary = &res.Summary
				end.Ladder = res.Ladder
			}
			if err := lb.Err(); err != nil {
				end.Error = err.Error()
			}
			if write(end) {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			}
			return
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
