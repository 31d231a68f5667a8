package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pevans/blogscraper/api"
)

func (a *app) handleServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", a.cfg.API.Addr, "Listen address")
	fs.Parse(args)

	st, err := a.openStore()
	if err != nil {
		return err
	}

	server := api.NewServer(st, nil)
	if runs, err := a.openRunLog(); err != nil {
		log.Warn().Err(err).Msg("run history route disabled")
	} else {
		server = api.NewServer(st, runs)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", *addr).Msg("serving API on http://" + *addr + "/api/v1/articles")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
