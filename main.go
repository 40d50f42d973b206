package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/urfave/cli/v2"
)

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:    "listen-addr",
		Value:   ":9090",
		Usage:   "address to listen on for the HTTP API",
		EnvVars: []string{"HTTP_ADDR"},
	},
	&cli.StringFlag{
		Name:    "redis-addr",
		Value:   "localhost:6379",
		Usage:   "address of the Redis document store",
		EnvVars: []string{"REDIS_ADDR"},
	},
	&cli.StringFlag{
		Name:    "jwt-secret",
		Usage:   "secret used to sign session tokens",
		EnvVars: []string{"JWT_SECRET"},
	},
	&cli.BoolFlag{
		Name:  "log-json",
		Value: false,
		Usage: "log in JSON format",
	},
	&cli.BoolFlag{
		Name:  "log-debug",
		Value: false,
		Usage: "log debug messages",
	},
}

func main() {
	app := &cli.App{
		Name:   "whereisit-server",
		Usage:  "Serve the WhereIsIt lost-and-found API",
		Flags:  flags,
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(cCtx *cli.Context) error {
	logger := setupLogger(cCtx.Bool("log-json"), cCtx.Bool("log-debug"))

	secret := cCtx.String("jwt-secret")
	if secret == "" {
		logger.Error("jwt-secret is required")
		return errors.New("jwt-secret is required")
	}

	ctx := context.Background()
	redisAddr := cCtx.String("redis-addr")
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("could not connect to redis", "addr", redisAddr, "err", err)
		return err
	}
	defer redisClient.Close()

	store := NewRedisStore(redisClient)
	auth := NewTokenService([]byte(secret))
	handler := NewHandler(store, auth, logger)

	server := &http.Server{
		Addr:         cCtx.String("listen-addr"),
		Handler:      newRouter(handler, auth, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	select {
	case err := <-errCh:
		logger.Error("could not listen", "err", err)
		return err
	case <-quit:
	}
	logger.Info("server is shutting down")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "err", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func setupLogger(jsonOut, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if jsonOut {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
