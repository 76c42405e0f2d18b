package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type closer struct {
	name  string
	close func() error
}

// serve runs srv until it fails or ctx is done. Either way it drains srv
// within grace and then closes each resource in order.
func serve(ctx context.Context, srv *http.Server, grace time.Duration, closers ...closer) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	var runErr error
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("http shutdown incomplete")
		}
		cancel()
	}

	for _, c := range closers {
		if err := c.close(); err != nil {
			log.Warn().Err(err).Str("resource", c.name).Msg("close failed")
		}
	}
	return runErr
}
