package cmd

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jimezsa/jobradar/internal/pipeline"
)

type ServeCmd struct {
	Listen   string `help:"Listen address (default: config listen)."`
	Schedule string `help:"Cron spec for batch harvests (default: config schedule); off disables."`
	Catalog  string `help:"JSON5 catalog for scheduled batches (default: built-in weekly catalog)."`
	RunNow   bool   `name:"run-now" help:"Run one batch immediately on startup."`
	SourceOptions
}

func (s *ServeCmd) Run(ctx *Context) error {
	runCtx, cancel := signalContext()
	defer cancel()

	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	p, err := ctx.buildPipeline(st, s.SourceOptions)
	if err != nil {
		return err
	}
	profiles, err := ctx.openProfiles()
	if err != nil {
		return err
	}

	spec := firstNonEmpty(s.Schedule, ctx.Config.Schedule)
	if spec != "" && !strings.EqualFold(spec, "off") {
		catalog, err := loadCatalog(s.Catalog)
		if err != nil {
			return err
		}
		scheduler := pipeline.NewScheduler(p, catalog, spec)
		if err := scheduler.Start(runCtx, s.RunNow); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	addr := firstNonEmpty(s.Listen, ctx.Config.Listen, ":8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           NewServer(p, profiles, ctx.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-runCtx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		_ = server.Shutdown(shutdownCtx)
	}()

	ctx.Logger.Info().Str("addr", addr).Strs("connectors", p.Connectors()).Msg("serving")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
