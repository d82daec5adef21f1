package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"arena/internal/battle"
)

func TestStream(t *testing.T) {
	srv := testServer(t, quickTimeouts())
	seedPlayer(t, srv, "alice", 50)
	h := srv.Routes()
	ts := httptest.NewServer(h)
	defer ts.Close()

	lb := startBattle(t, srv, h, "alice", "1")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/battles/" + lb.id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	lastSeq := 0
	answered := false
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		switch f.Type {
		case "event":
			if f.Event.Seq <= lastSeq {
				t.Fatalf("Expected increasing sequence numbers, got %d after %d", f.Event.Seq, lastSeq)
			}
			lastSeq = f.Event.Seq
		case "prompt":
			if f.Request.Kind != battle.RequestLead || answered {
				continue
			}
			answered = true
			form := url.Values{"request_id": {f.Request.ID}, "option": {f.Request.Options[0].ID}}
			resp, err := http.PostForm(ts.URL+"/battles/"+lb.id+"/choice", form)
			if err != nil {
				t.Fatalf("PostForm: %v", err)
			}
			resp.Body.Close()
		case "end":
			if f.Summary == nil || !f.Summary.Won(battle.SideA) {
				t.Errorf("Expected a victory summary, got %+v", f.Summary)
			}
			if f.Ladder == nil {
				t.Error("Expected the ladder result in the end frame")
			}
			if !answered {
				t.Error("Expected the lead prompt to be streamed")
			}
			if lastSeq == 0 {
				t.Error("Expected events before the end frame")
			}
			return
		}
	}
}
