package web

import (
	"bytes"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// handlePortrait serves character portraits: static/portraits/{id}.png if
// present, otherwise a generated blocky sprite. Only catalog template ids
// are served.
func (s *Server) handlePortrait(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	id := strings.TrimSuffix(file, path.Ext(file))
	if id == "" {
		http.NotFound(w, r)
		return
	}
	t, ok := s.Arena.Catalog.Template(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Build path under static/portraits and verify no path traversal.
	staticDir := s.StaticDir
	if staticDir == "" {
		staticDir = "static"
	}
	baseDir := filepath.Join(staticDir, "portraits")
	staticPath := filepath.Clean(filepath.Join(baseDir, t.ID+".png"))
	rel, err := filepath.Rel(baseDir, staticPath)
	if err != nil || strings.Contains(rel, "..") {
		http.NotFound(w, r)
		return
	}
	if b, err := os.ReadFile(staticPath); err == nil { // #nosec G304 -- staticPath is under baseDir
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(b)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, generatePortrait(t.ID, t.Element)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if _, err := w.Write(buf.Bytes()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

var (
	pixelBack    = color.RGBA{0x18, 0x14, 0x28, 255}
	pixelOutline = color.RGBA{0x05, 0x05, 0x08, 255}
	pixelEye     = color.RGBA{0xf0, 0xf0, 0xe0, 255}
)

// elementPalette is the body and accent colour per element.
var elementPalette = map[string][2]color.RGBA{
	"fire":     {{0xc4, 0x4c, 0x22, 255}, {0xf2, 0xb1, 0x34, 255}},
	"water":    {{0x2d, 0x5a, 0x9c, 255}, {0x8c, 0xc8, 0xe8, 255}},
	"grass":    {{0x2d, 0x7a, 0x3d, 255}, {0xa6, 0xd0, 0x5a, 255}},
	"electric": {{0xd8, 0xb4, 0x1c, 255}, {0xfa, 0xf0, 0x8c, 255}},
	"":         {{0x77, 0x6f, 0x66, 255}, {0xb0, 0xa8, 0x98, 255}},
}

const blockPx = 8
const spriteW, spriteH = 128, 128
const blocksW, blocksH = spriteW / blockPx, spriteH / blockPx

// fillBlock fills one 8×8 block at block coords (bx, by) with clr.
func fillBlock(img *image.RGBA, bx, by int, clr color.RGBA) {
	for dy := 0; dy < blockPx; dy++ {
		for dx := 0; dx < blockPx; dx++ {
			x := bx*blockPx + dx
			y := by*blockPx + dy
			if x < spriteW && y < spriteH {
				img.SetRGBA(x, y, clr)
			}
		}
	}
}

// generatePortrait draws a left/right mirrored sprite seeded by id, so each
// template keeps the same look, coloured by element.
func generatePortrait(id, element string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, spriteW, spriteH))
	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			fillBlock(img, bx, by, pixelBack)
		}
	}

	pal, ok := elementPalette[strings.ToLower(element)]
	if !ok {
		pal = elementPalette[""]
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	bits := h.Sum64()

	// body: 6 columns × 10 rows inside a 2 block border, mirrored
	half := blocksW / 2
	for by := 3; by < blocksH-3; by++ {
		for bx := 2; bx < half; bx++ {
			bit := uint((by-3)*(half-2) + (bx - 2))
			if bits>>(bit%64)&1 == 0 && bx != half-1 {
				continue
			}
			clr := pal[0]
			if (by+bx)%4 == 0 {
				clr = pal[1]
			}
			fillBlock(img, bx, by, clr)
			fillBlock(img, blocksW-1-bx, by, clr)
		}
	}
	// eyes
	eyeY := 5
	fillBlock(img, half-2, eyeY, pixelEye)
	fillBlock(img, half+1, eyeY, pixelEye)
	fillBlock(img, half-2, eyeY+1, pixelOutline)
	fillBlock(img, half+1, eyeY+1, pixelOutline)
	return img
}
