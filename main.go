package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/quintans/tvshelf/internal/app"
	"github.com/quintans/tvshelf/internal/app/services"
	"github.com/quintans/tvshelf/internal/config"
	"github.com/quintans/tvshelf/internal/gateways/eventbus"
	"github.com/quintans/tvshelf/internal/gateways/repository"
	"github.com/quintans/tvshelf/internal/gateways/secrets"
	"github.com/quintans/tvshelf/internal/gateways/tvdb"
	"github.com/quintans/tvshelf/internal/lib/bus"
	"github.com/quintans/tvshelf/internal/model"
)

func main() {
	cfg, err := config.Load(os.Getenv("TVSHELF_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %s\n", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.Debug("data", "dir", cfg.DataDir, "store", cfg.Store)

	kv, closeStore, err := openStore(cfg)
	if err != nil {
		panic(fmt.Sprintf("opening store: %s", err))
	}
	defer closeStore()

	sec := secrets.NewSecrets()
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey, err = sec.GetAPIKey()
		if err != nil {
			slog.Warn("Unable to read API key from keyring", "error", err)
		}
	}

	httpc := &http.Client{Timeout: cfg.HTTPTimeout}
	tokens := tvdb.NewTokenCache(
		tvdb.NewLogin(cfg.BaseURL, apiKey, httpc),
		tvdb.WithTTL(cfg.TokenTTL),
		tvdb.WithTokenStore(sec),
	)
	client := tvdb.New(
		cfg.BaseURL,
		tokens,
		tvdb.WithHTTPClient(httpc),
		tvdb.WithArtworkURL(cfg.ArtworkURL),
		tvdb.WithMinInterval(cfg.RequestInterval),
	)

	b := bus.New()
	eventBus := eventbus.New(b)

	var failed atomic.Bool
	bus.Listen(b, func(n app.Notify) {
		if n.Type == app.NotifyError {
			failed.Store(true)
		}
		fmt.Fprintln(os.Stderr, n.Message)
	})
	bus.Listen(b, func(c app.ListChanged) {
		slog.Info("List saved", "list", c.List, "size", c.Size)
	})

	var listOpts []services.ListsOption
	if cfg.Demo {
		listOpts = append(listOpts, services.WithDefaultWatching(demoWatching...))
	}

	cli := &CLI{
		out:     os.Stdout,
		catalog: services.NewCatalog(client, kv, eventBus),
		lists:   services.NewLists(kv, eventBus, listOpts...),
		secrets: sec,
		tokens:  tokens,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = cli.Run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		closeStore()
		os.Exit(2)
	}
	if failed.Load() {
		closeStore()
		os.Exit(1)
	}
}

func openStore(cfg config.Config) (app.KeyValue, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := repository.OpenSQLite(cfg.DatabasePath())
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Error("Failed to close store", "error", err)
			}
		}, nil
	default:
		s, err := repository.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

var demoWatching = []model.WatchingShow{
	{
		Show:     model.Show{ID: 121361, Name: "Game of Thrones", Type: model.TypeSeries},
		Progress: model.Progress{Season: 1, Episode: 1, TotalEpisodes: 10},
	},
}
