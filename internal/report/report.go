// Package report renders a finished battle as a printable PDF: the final
// state of both teams followed by the full event log.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"arena/internal/battle"
	"arena/internal/ladder"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	fontSize  = 8
	titleSize = 16
	lineH     = 11.0
	barW      = 150.0
	barH      = 8.0
)

// Battle is everything a report shows.
type Battle struct {
	ID      string
	Sides   [2]string
	Summary battle.Summary
	Events  []battle.Event
	// Ladder is the PvE ladder result, if any.
	Ladder *ladder.Outcome
}

var (
	title   = cases.Title(language.English)
	printer = message.NewPrinter(language.English)
)

// Generate returns the PDF bytes for b.
func Generate(b Battle) ([]byte, error) {
	if b.Summary.Outcome == "" {
		return nil, errors.New("battle has not finished")
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Battle report "+b.ID, true)
	newPage(pdf)

	// Header
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin+10, margin+10)
	pdf.CellFormat(pageW-2*margin-80, 18, fmt.Sprintf("%s vs %s", sideName(b, battle.SideA), sideName(b, battle.SideB)), "", 0, "L", false, 0, "")
	drawSwords(pdf, pageW-margin-40, margin+28)

	pdf.SetFont("Helvetica", "", fontSize+1)
	pdf.SetXY(margin+10, margin+30)
	pdf.CellFormat(pageW-2*margin-80, 12, headline(b), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", fontSize)
	pdf.SetXY(margin+10, margin+44)
	pdf.CellFormat(pageW-2*margin-80, 10, "Battle "+b.ID, "", 0, "L", false, 0, "")

	y := float64(margin + 70)
	if b.Ladder != nil {
		y = drawLadder(pdf, *b.Ladder, y)
	}
	y = drawTeams(pdf, b, y)
	drawLog(pdf, b.Events, y+10)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sideName(b Battle, sd battle.Side) string {
	if sd < 0 || int(sd) >= len(b.Sides) || b.Sides[sd] == "" {
		return "Side " + sd.String()
	}
	return b.Sides[sd]
}

func headline(b Battle) string {
	s := b.Summary
	out := title.String(string(s.Outcome))
	if s.Decided() {
		out += ": " + sideName(b, s.Winner) + " wins"
	}
	out += printer.Sprintf(" after %d rounds", s.Rounds)
	if s.Reason != "" {
		out += " (" + s.Reason + ")"
	}
	return out
}

// newPage starts a page with the parchment background and frame.
func newPage(pdf *gofpdf.Fpdf) {
	pdf.AddPage()
	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")
	drawFrame(pdf)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetLineWidth(1)
}

func drawLadder(pdf *gofpdf.Fpdf, o ladder.Outcome, y float64) float64 {
	pdf.SetFont("Helvetica", "B", fontSize+2)
	pdf.SetXY(margin+10, y)
	pdf.CellFormat(200, 12, "Ladder", "", 0, "L", false, 0, "")
	y += 14

	pdf.SetFont("Helvetica", "", fontSize+1)
	lines := []string{
		printer.Sprintf("%d RP (%+d), %s", o.RP, o.Delta, o.After.Name),
		printer.Sprintf("%d coins (%+d)", o.Coins, o.CoinDelta),
	}
	switch {
	case o.Promoted():
		lines = append(lines, "Promoted from "+o.Before.Name)
	case o.Demoted():
		lines = append(lines, "Demoted from "+o.Before.Name)
	}
	for _, l := range lines {
		pdf.SetXY(margin+10, y)
		pdf.CellFormat(300, lineH, l, "", 0, "L", false, 0, "")
		y += lineH
	}
	return y + 8
}

// drawTeams lists both teams side by side with an HP bar per combatant.
func drawTeams(pdf *gofpdf.Fpdf, b Battle, y float64) float64 {
	colW := (pageW - 2*margin - 20) / 2.0
	bottom := y
	for i := range b.Sides {
		sd := battle.Side(i)
		x := margin + 10 + float64(i)*colW
		cy := y
		pdf.SetFont("Helvetica", "B", fontSize+2)
		pdf.SetXY(x, cy)
		pdf.CellFormat(colW, 12, sideName(b, sd), "", 0, "L", false, 0, "")
		cy += 16
		for _, c := range b.Summary.Combatants {
			if c.Side != sd {
				continue
			}
			pdf.SetFont("Helvetica", "", fontSize)
			pdf.SetXY(x, cy)
			pdf.CellFormat(colW, 10, printer.Sprintf("%s  Lv.%d  %d/%d HP", c.Name, c.Level, c.HP, c.MaxHP), "", 0, "L", false, 0, "")
			drawHPBar(pdf, x, cy+11, c.HP, c.MaxHP)
			cy += 26
		}
		bottom = math.Max(bottom, cy)
	}
	return bottom
}

func drawHPBar(pdf *gofpdf.Fpdf, x, y float64, hp, maxHP int) {
	frac := 0.0
	if maxHP > 0 {
		frac = math.Max(0, math.Min(1, float64(hp)/float64(maxHP)))
	}
	switch {
	case frac > 0.5:
		pdf.SetFillColor(70, 140, 60)
	case frac > 0.2:
		pdf.SetFillColor(210, 160, 40)
	default:
		pdf.SetFillColor(180, 40, 40)
	}
	if frac > 0 {
		pdf.Rect(x, y, barW*frac, barH, "F")
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(x, y, barW, barH, "D")
	pdf.SetDrawColor(80, 50, 30)
}

// drawLog writes one line per event, starting new pages as needed.
func drawLog(pdf *gofpdf.Fpdf, events []battle.Event, y float64) {
	pdf.SetFont("Helvetica", "B", fontSize+2)
	pdf.SetXY(margin+10, y)
	pdf.CellFormat(200, 12, "Battle log", "", 0, "L", false, 0, "")
	y += 16

	for _, e := range events {
		if y > pageH-margin-lineH-10 {
			newPage(pdf)
			y = margin + 20
		}
		style := ""
		switch e.Kind {
		case battle.EventRound:
			style = "B"
		case battle.EventFaint, battle.EventEnd:
			style = "B"
			pdf.SetTextColor(150, 30, 30)
		case battle.EventTimeout, battle.EventWarning:
			style = "I"
		}
		pdf.SetFont("Helvetica", style, fontSize)
		pdf.SetXY(margin+10, y)
		pdf.CellFormat(pageW-2*margin-20, lineH, e.String(), "", 0, "L", false, 0, "")
		pdf.SetTextColor(80, 50, 30)
		y += lineH
	}
}

// drawFrame draws a slightly wobbly black border around the page.
func drawFrame(pdf *gofpdf.Fpdf) {
	pts := wavyRectPoints(margin/2, margin/2, pageW-margin, pageH-margin, 12, 3)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Polygon(pts, "D")
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

// wavyRectPoints returns polygon points for a rectangle with sinusoidal wobble on each side.
func wavyRectPoints(x, y, w, h float64, steps int, amp float64) []gofpdf.PointType {
	pts := make([]gofpdf.PointType, 0, steps*4+4)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + t*w + amp*math.Sin(float64(i)*0.7), Y: y + amp*math.Cos(float64(i)*0.5)})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + w + amp*math.Sin(float64(i)*0.6), Y: y + t*h + amp*math.Cos(float64(i)*0.4)})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + w - t*w + amp*math.Sin(float64(i)*0.8), Y: y + h + amp*math.Cos(float64(i)*0.3)})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + amp*math.Sin(float64(i)*0.5), Y: y + h - t*h + amp*math.Cos(float64(i)*0.6)})
	}
	return pts
}

// drawSwords draws crossed swords inside a ring.
func drawSwords(pdf *gofpdf.Fpdf, cx, cy float64) {
	const r = 18.0
	pdf.SetDrawColor(101, 67, 33)
	pdf.Circle(cx, cy, r+4, "D")
	pdf.SetDrawColor(180, 40, 40)
	pdf.SetLineWidth(2)
	pdf.Line(cx-r*0.7, cy-r*0.7, cx+r*0.7, cy+r*0.7)
	pdf.Line(cx-r*0.7, cy+r*0.7, cx+r*0.7, cy-r*0.7)
	pdf.SetLineWidth(1)
	// hilts
	pdf.Line(cx+r*0.35, cy+r*0.65, cx+r*0.65, cy+r*0.35)
	pdf.Line(cx-r*0.35, cy+r*0.65, cx-r*0.65, cy+r*0.35)
	pdf.SetDrawColor(80, 50, 30)
}
