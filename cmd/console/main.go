package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/catalog-console/apiclient"
	"github.com/jrsteele09/catalog-console/catalog"
	"github.com/jrsteele09/catalog-console/internal/config"
	"github.com/jrsteele09/catalog-console/navigation"
	"github.com/jrsteele09/catalog-console/server"
	"github.com/jrsteele09/catalog-console/session"
	"github.com/jrsteele09/catalog-console/session/filestore"
	"github.com/jrsteele09/catalog-console/session/redisstore"
	fakesessionrepo "github.com/jrsteele09/catalog-console/session/repofake"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running console")
	}
	log.Info().Msg("Console stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	repo, closer, err := sessionRepo(c)
	if err != nil {
		return err
	}
	defer closer.Close()

	store := session.NewStore(context.Background(), repo)
	api, err := apiclient.New(c.GetAPIBaseURL(), store, store, navigation.ContextNavigator{},
		apiclient.WithTimeout(c.GetAPITimeout()),
		apiclient.WithLoginRoute(navigation.RouteLogin),
	)
	if err != nil {
		return err
	}

	handler, err := server.New(c, store, users.NewService(api), catalog.NewService(api), api)
	if err != nil {
		return err
	}

	addr := c.GetListenAddr()
	if !config.IsLoopback(addr) {
		log.Warn().Str("addr", addr).Msg("listening beyond loopback, anyone who can reach this address acts as the logged-in operator")
	}
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(srv) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

// sessionRepo opens the configured session storage. The closer releases any
// connection the storage holds.
func sessionRepo(c config.Config) (session.Repo, io.Closer, error) {
	codec := session.NewCodec(c.GetSessionSecret())
	if !codec.Sealed() {
		log.Warn().Msg("SESSION_SECRET not set, the session is stored unencrypted")
	}

	switch c.GetSessionBackend() {
	case config.SessionBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Username: c.GetRedisUsername(),
			Password: c.GetRedisPassword(),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("[sessionRepo] redis %s: %w", c.GetRedisAddr(), err)
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("session stored in redis")
		return redisstore.New(rdb, c.GetSessionNamespace(), codec), rdb, nil
	case config.SessionBackendMemory:
		log.Info().Msg("session kept in memory only")
		return fakesessionrepo.NewFakeSessionRepo(), nopCloser{}, nil
	default:
		repo, err := filestore.New(c.GetDataFolder(), c.GetSessionNamespace(), codec)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", repo.Path()).Msg("session stored on disk")
		return repo, nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Console listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
