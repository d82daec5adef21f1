package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const catalogYAML = `
characters:
  - id: ember
    name: Ember Fox
    base: {HP: 45, ATK: 60, DEF: 40, SPD: 70, SP_ATK: 65, SP_DEF: 50}
  - id: stone
    name: Stone Golem
    base: {HP: 80, ATK: 70, DEF: 90, SPD: 20, SP_ATK: 30, SP_DEF: 60}
moves:
  physical:
    - {name: Tackle, power: 40, accuracy: 100}
  special:
    - {name: Spark, power: 40}
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(catalogYAML), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-catalog", writeCatalog(t), "-seed", "7", "-n", "3", "-q", "-a", "100", "-b", "1"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if strings.Count(out, "battle ") != 3 {
		t.Errorf("Expected three summaries, got %q", out)
	}
	if !strings.Contains(out, "side A 3, side B 0") {
		t.Errorf("Expected the level 100 side to win every battle, got %q", out)
	}
}

func TestRun_WritesReport(t *testing.T) {
	dir := t.TempDir()
	catalog := writeCatalog(t)
	t.Chdir(dir)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-catalog", catalog, "-seed", "3", "-pdf", "out.pdf"}, &stdout, &stderr); code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
	}
	b, err := os.ReadFile(filepath.Join(dir, "out.pdf"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Error("Expected a PDF file")
	}
}

func TestRun_BadArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"-x"}, 2},
		{"zero battles", []string{"-n", "0"}, 2},
		{"escaping path", []string{"-pdf", "../out.pdf"}, 2},
		{"missing catalog", []string{"-catalog", "does-not-exist.yaml"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.want {
				t.Errorf("Expected exit %d, got %d", tt.want, code)
			}
		})
	}
}
