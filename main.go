package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/oaiiae/addressbook/cli/api"
	"github.com/oaiiae/addressbook/cli/commands"
	"github.com/oaiiae/addressbook/cli/logger"
)

// Set with -ldflags "-X main.version=...".
var (
	version  = "dev"
	revision = ""
	created  = ""
)

const title = "Address book"

// Options for the CLI. Pass `--port` or set the `SERVICE_PORT` env var.
type Options struct {
	api.ServerOptions
	api.RouterOptions
	api.StoreOptions
	logger.Options
}

func main() {
	env := commands.NewEnv(slog.Default())

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		// keep stdout for the client subcommands' output
		env.Logger = logger.NewWithStdout(&options.Options, env.Stderr)
		log := logger.New(&options.Options)

		var srv atomic.Pointer[http.Server]
		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			store, file := api.NewStore(&options.StoreOptions, log)
			if file != nil && options.Watch {
				go func() {
					if err := file.Watch(ctx); err != nil {
						log.Warn("could not watch data file", "err", err)
					}
				}()
			}

			handler := api.NewRouter(&options.RouterOptions, title, version, revision, created, store, log)
			s := api.NewServer(&options.ServerOptions, handler, log)
			srv.Store(s)

			log.Info("listening", "addr", s.Addr, "data", options.DataFile)
			err := s.ListenAndServe()
			if err != http.ErrServerClosed {
				log.Error("failed to listen and serve", "err", err)
			} else {
				log.Info("server closed")
			}
		})
		hooks.OnStop(func() {
			cancel()
			s := srv.Load()
			if s == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err := s.Shutdown(ctx)
			if err != nil {
				log.Warn("could not shutdown the server", "err", err)
			}
		})
	})

	cli.Root().Use = "addressbook"
	cli.Root().Short = "Address book API server and client"
	cli.Root().AddCommand(commands.Commands(env)...)
	cli.Run()
	if env.Failed() {
		os.Exit(1)
	}
}
