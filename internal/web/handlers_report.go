package web

import (
	"fmt"
	"net/http"

	"arena/internal/report"
)

// GET /battles/{id}/report.pdf
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	lb, ok := s.lookup(w, r)
	if !ok {
		return
	}
	res, done := lb.Result()
	if !done {
		http.Error(w, "battle still running", http.StatusConflict)
		return
	}
	snap := lb.match.Session.Snapshot()
	pdf, err := report.Generate(report.Battle{
		ID:      lb.id,
		Sides:   [2]string{snap.Sides[0].Name, snap.Sides[1].Name},
		Summary: res.Summary,
		Events:  lb.match.Session.Events(),
		Ladder:  res.Ladder,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="battle-%s.pdf"`, lb.id))
	if _, err := w.Write(pdf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
