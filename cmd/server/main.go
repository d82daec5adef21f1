package main

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"arena/internal/arena"
	"arena/internal/config"
	"arena/internal/game"
	"arena/internal/ladder"
	"arena/internal/logging"
	"arena/internal/store"
	"arena/internal/store/sqlstore"
	"arena/internal/telemetry"
	"arena/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "arena", cfg.OTelEndpoint)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logging.Error("telemetry shutdown", err, nil)
		}
	}()

	catalog, err := game.LoadCatalog(cfg.CatalogPath())
	if err != nil {
		log.Fatal(err)
	}
	lad, err := ladder.Load(cfg.LadderPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		lad = ladder.Default()
	case err != nil:
		log.Fatal(err)
	}
	lad.Tune(cfg.LadderThreshold, cfg.LadderFloor)

	var players store.Store[game.Player]
	srv := &web.Server{
		Battles:     web.NewHub(web.DefaultRetention),
		StaticDir:   "static",
		BaseContext: ctx,
	}
	if cfg.StoreDriver == "memory" {
		players = store.NewCopyingMemoryStore(game.Player.Clone)
	} else {
		ps, err := sqlstore.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			log.Fatal(err)
		}
		defer ps.Close()
		players = ps
		srv.Leaderboard = ps.Leaderboard
	}

	srv.Arena = arena.New(catalog, lad, players, arena.Config{
		Battle:     cfg.Battle(),
		RPPerLevel: cfg.RPPerLevel,
		VictoryXP:  cfg.VictoryXP,
	})
	srv.Tmpl = template.Must(template.ParseFiles(
		filepath.Join(cfg.TemplatesDir, "layout.html"),
		filepath.Join(cfg.TemplatesDir, "new_battle.html"),
		filepath.Join(cfg.TemplatesDir, "battle.html"),
	))

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Routes()}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Shutdown(context.Background())
	}()

	logging.Info("listening", logging.Fields{"addr": cfg.Addr, "store": cfg.StoreDriver, "characters": len(catalog.Characters)})
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
