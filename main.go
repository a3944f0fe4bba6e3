package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/bellapacxx/bingo-sessions/config"
	"github.com/bellapacxx/bingo-sessions/metrics"
	"github.com/bellapacxx/bingo-sessions/routes"
	"github.com/bellapacxx/bingo-sessions/services"
	"github.com/bellapacxx/bingo-sessions/utils/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bingo",
		Usage: "bingo session backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema and exit",
				Action: migrate,
			},
		},
	}
}

// initConfig loads configuration and configures the logger
func initConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		return nil, err
	}
	return cfg, nil
}

func migrate(c *cli.Context) error {
	cfg, err := initConfig(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	_, err = config.SetupDatabase(cfg.Database)
	return err
}

func serve(c *cli.Context) error {
	cfg, err := initConfig(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Connect to database
	db, err := config.SetupDatabase(cfg.Database)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	bus := services.NewEventBus()
	defer bus.Close()

	players := services.NewPlayerService(db, m)
	matches := services.NewMatchService(db, bus, m, cfg.Game.WinPoints)

	hub := services.NewHub(bus, matches)
	if err := hub.Start(ctx); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := routes.NewRouter(cfg, routes.Dependencies{
		Players: players,
		Matches: matches,
		Hub:     hub,
		Metrics: m,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("🚀 Bingo backend listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
