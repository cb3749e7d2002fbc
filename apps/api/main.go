package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	dig_container "github.com/trezcool/rastreio/apps/api/di/dig"
	echoapi "github.com/trezcool/rastreio/apps/api/echo"
	"github.com/trezcool/rastreio/core"
)

func main() {
	c := dig_container.New(core.NewConfig)
	if err := c.Invoke(run); err != nil {
		log.Fatal(err)
	}
}

func run(conf *core.Config, logger core.Logger, storage dig_container.StorageParam, server *echoapi.Server) error {
	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : %s", conf))
	if c, ok := logger.(interface{ Close() }); ok {
		defer c.Close()
	}
	defer logger.Info("Application stopped")
	defer func() {
		if err := storage.Closer.Close(); err != nil {
			logger.Error("Failed to close storage", err)
		}
	}()

	// =========================================================================
	// Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	debug := &http.Server{Addr: conf.Server.DebugHost, Handler: http.DefaultServeMux}

	g, gctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		if err := debug.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "debug server")
		}
		return nil
	})

	// =========================================================================
	// API Service

	g.Go(func() error {
		return errors.Wrap(server.Start(), "api server")
	})

	// =========================================================================
	// Shutdown

	g.Go(func() error {
		select {
		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		case <-gctx.Done():
			logger.Info("Server failed: Start shutdown...")
		}

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		_ = debug.Shutdown(ctx)

		// asking listener to shut down and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("server error: %v", err), err)
		return err
	}
	return nil
}
