// main.go
//
// Alphabet Snake game server.
// Responsibilities:
//   - Load configuration (.env + environment) and set the log level.
//   - Pick the word catalog: SQLite (seeded when empty), a text file, or the
//     embedded list.
//   - Serve the HTTP/websocket API and sweep idle games.
//   - Shut down cleanly on SIGINT/SIGTERM, closing every live game.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/alphasnake/internal/catalogdb"
	"github.com/robalobadob/alphasnake/internal/config"
	"github.com/robalobadob/alphasnake/internal/httpserver"
	"github.com/robalobadob/alphasnake/internal/pose"
	"github.com/robalobadob/alphasnake/internal/session"
	"github.com/robalobadob/alphasnake/internal/store"
	"github.com/robalobadob/alphasnake/internal/words"
)

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word catalog")
	}
	classifier, err := pose.New(cfg.PoseClassifier)
	if err != nil {
		log.Fatal().Err(err).Msg("pose classifier")
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, httpserver.Options{
		Catalog: cat,
		Session: session.Config{
			Interval: cfg.TickInterval,
			Debounce: cfg.PoseDebounce,
			Salt:     []byte(cfg.PlacementSalt),
		},
		Secret:     []byte(cfg.JWTSecret),
		TokenTTL:   cfg.TokenTTL,
		Origin:     cfg.ClientOrigin,
		Classifier: classifier,
	})

	if cfg.IdleTimeout > 0 {
		go sweepIdle(ctx, mem, cfg.IdleTimeout)
	}

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Int("words", cat.Len()).Msg("starting alphasnake server")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	mem.CloseAll()
	log.Info().Msg("server stopped")
}

// loadCatalog resolves the word source. With CATALOG_DB set the database is
// authoritative and is seeded from WORDS_FILE (or the embedded list) while
// empty.
func loadCatalog(ctx context.Context, cfg config.Config) (*words.Catalog, error) {
	fileCat, err := words.Load(cfg.WordsFile)
	if err != nil {
		return nil, err
	}
	if cfg.CatalogDB == "" {
		return fileCat, nil
	}

	db, err := catalogdb.Open(cfg.CatalogDB)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Load(ctx, fileCat)
}

// sweepIdle closes games with no input for longer than idle.
func sweepIdle(ctx context.Context, mem *store.Memory, idle time.Duration) {
	t := time.NewTicker(idle / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if ids := mem.Sweep(now.Add(-idle)); len(ids) > 0 {
				log.Info().Int("games", len(ids)).Msg("closed idle games")
			}
		}
	}
}
