package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"moodlist/catalog"
	"moodlist/config"
	"moodlist/database"
	"moodlist/handlers"
	"moodlist/logging"
	"moodlist/sentry"
	"moodlist/songs"
	"moodlist/spotify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("Error loading .env file: %v", err)
	}
	cfg := config.New()

	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatalf("Error setting up logging: %v", err)
	}
	defer closer.Close()

	args := os.Args[1:]
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		err = run(cfg)
	case "import":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: moodlist import <in.csv> <out.db>")
			os.Exit(2)
		}
		err = importCatalog(context.Background(), args[0], args[1], cfg.Catalog.Table)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want serve or import)\n", command)
		os.Exit(2)
	}
	if err != nil {
		closer.Close()
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := sentry.Init(cfg.Sentry); err != nil {
		log.Warnf("Sentry initialization failed: %v", err)
	}
	defer sentry.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(ctx, catalog.Source{Path: cfg.Catalog.Path, Table: cfg.Catalog.Table})
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	service := songs.NewService(cat,
		songs.WithSampleLimit(cfg.Catalog.SampleLimit),
		songs.WithMoodField(cfg.Catalog.MoodField),
	)

	gin.SetMode(gin.ReleaseMode)
	manager := handlers.NewManager(
		spotify.NewAuthenticator(cfg.Spotify, cfg.Options.FrontendURI).
			WithHTTPClient(&http.Client{Timeout: 15 * time.Second}),
		spotify.NewPlaylistCreator(cfg.Spotify, nil),
		service,
		handlers.Options{
			AllowedOrigins: cfg.Options.AllowedOrigins,
			Middleware:     []gin.HandlerFunc{sentry.GetSentryGin()},
		},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Options.Port,
		Handler:           manager.Router(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on :%s", cfg.Options.Port)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

// importCatalog copies a CSV catalog into a SQLite table that catalog.Load
// can read back.
func importCatalog(ctx context.Context, in, out, table string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	cat, err := catalog.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	db, err := database.Create(out)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.WriteTable(ctx, table, cat.Header(), cat.Rows()); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	log.Infof("Imported %d songs into %s (table %s)", cat.Len(), out, table)
	return nil
}
