// Package app assembles the application from its components and runs it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	cfg "go.kongo.dev/kongo/app/config"
	actx "go.kongo.dev/kongo/app/context"
	"go.kongo.dev/kongo/cli"
	"go.kongo.dev/kongo/db"
)

const version = "0.1.0"

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application.
func New(name, configFilePath, dataDir string, opts ...Option) (*App, error) {
	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		TimeNow: time.Now,
		Version: version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	if app.ctx.Config == nil {
		app.ctx.Config = cfg.NewConfig(app.ctx.FS, configFilePath)
	}

	var err error
	app.cli, err = cli.New(name, configFilePath, dataDir,
		fmt.Sprintf("%s %s", app.name, app.ctx.Version))
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	if err := app.ctx.Config.Load(); err != nil {
		return err
	}
	app.ctx.Config.SetDefaults()
	app.cli.ApplyConfig(app.ctx.Config)

	app.ctx.DataDir = app.cli.DataDir
	if app.ctx.Stores == nil {
		if err := app.ctx.FS.MkdirAll(app.ctx.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed creating data directory: %w", err)
		}
		stores, err := db.OpenStores(app.ctx.Ctx, app.ctx.DataDir, app.ctx.TimeNow)
		if err != nil {
			return err
		}
		app.ctx.Stores = stores
		defer func() {
			if cerr := stores.Close(); cerr != nil {
				app.ctx.Logger.Warn("failed closing stores", "error", cerr)
			}
		}()
	}

	return app.cli.Execute(app.ctx)
}
