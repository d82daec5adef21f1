// simulate runs AI-versus-AI battles from the catalog and prints the log.
// Usage: go run ./cmd/simulate [-a 30] [-b 30] [-seed 1] [-n 1] [-pdf out.pdf]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"arena/internal/battle"
	"arena/internal/config"
	"arena/internal/game"
	"arena/internal/report"
)

func main() {
	code := run(os.Args[1:], os.Stdout, os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	catalogPath := fs.String("catalog", cfg.CatalogPath(), "catalog YAML")
	levelA := fs.Int("a", 30, "average level of side A")
	levelB := fs.Int("b", 30, "average level of side B")
	seed := fs.Int64("seed", 0, "random seed (0 picks one)")
	count := fs.Int("n", 1, "number of battles")
	pdfPath := fs.String("pdf", "", "write a report of the last battle to this file")
	quiet := fs.Bool("q", false, "print only the summaries")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *count <= 0 {
		fmt.Fprintf(stderr, "-n must be positive\n")
		return 2
	}
	if *pdfPath != "" && strings.Contains(filepath.Clean(*pdfPath), "..") {
		fmt.Fprintf(stderr, "path must not escape current directory\n")
		return 2
	}

	catalog, err := game.LoadCatalog(*catalogPath)
	if err != nil {
		fmt.Fprintf(stderr, "load catalog: %v\n", err)
		return 1
	}

	newRand := func() game.Rand { return game.NewRand() }
	if *seed != 0 {
		src := rand.New(rand.NewSource(*seed))
		newRand = func() game.Rand { return rand.New(rand.NewSource(src.Int63())) }
	}

	wins := [2]int{}
	var last report.Battle
	for i := 0; i < *count; i++ {
		b, err := simulate(cfg.Battle(), catalog, newRand, *levelA, *levelB)
		if err != nil {
			fmt.Fprintf(stderr, "battle %d: %v\n", i+1, err)
			return 1
		}
		if !*quiet {
			for _, e := range b.Events {
				fmt.Fprintln(stdout, e.String())
			}
		}
		fmt.Fprintf(stdout, "battle %d: %s after %d rounds", i+1, b.Summary.Outcome, b.Summary.Rounds)
		if b.Summary.Decided() {
			wins[b.Summary.Winner]++
			fmt.Fprintf(stdout, ", %s wins", b.Sides[b.Summary.Winner])
		}
		fmt.Fprintln(stdout)
		last = b
	}
	if *count > 1 {
		fmt.Fprintf(stdout, "side A %d, side B %d, undecided %d\n", wins[0], wins[1], *count-wins[0]-wins[1])
	}

	if *pdfPath != "" {
		pdf, err := report.Generate(last)
		if err != nil {
			fmt.Fprintf(stderr, "report: %v\n", err)
			return 1
		}
		if err := os.WriteFile(filepath.Clean(*pdfPath), pdf, 0o600); err != nil {
			fmt.Fprintf(stderr, "write %s: %v\n", *pdfPath, err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote %s\n", *pdfPath)
	}
	return 0
}

func simulate(cfg battle.Config, c *game.Catalog, newRand func() game.Rand, levelA, levelB int) (report.Battle, error) {
	cfg.Rand = newRand()
	pa := battle.NewPolicy(c, newRand())
	pb := battle.NewPolicy(c, newRand())
	names := [2]string{"Red AI", "Blue AI"}
	sess, err := battle.New(cfg, c,
		battle.SideSpec{Name: names[0], Roster: pa.BuildRoster(levelA, "red"), Controller: battle.NewAIController(pa)},
		battle.SideSpec{Name: names[1], Roster: pb.BuildRoster(levelB, "blue"), Controller: battle.NewAIController(pb)},
	)
	if err != nil {
		return report.Battle{}, err
	}
	sum, err := sess.Run(context.Background())
	if err != nil {
		return report.Battle{}, err
	}
	return report.Battle{ID: sess.ID(), Sides: names, Summary: sum, Events: sess.Events()}, nil
}
