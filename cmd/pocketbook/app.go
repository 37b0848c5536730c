package main

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"pocketbook/internal/backend"
	appcli "pocketbook/internal/cli"
	"pocketbook/internal/config"
	"pocketbook/internal/log"
	"pocketbook/internal/tracker"
)

func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "pocketbook",
		Usage:     "track personal income and expenses",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Before: func(c *cli.Context) error {
			appcli.LoadEnvFile()
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			addCommand(),
			editCommand(),
			deleteCommand(),
			listCommand(),
			summaryCommand(),
			categoriesCommand(),
			watchCommand(),
		},
	}
}

// runtime is what every data command needs: config, logger and a loaded
// tracker with its session.
type runtime struct {
	cfg     *config.Config
	logger  *log.Logger
	backend *backend.BackendResult
	session *tracker.Session
}

func (rt *runtime) tracker() *tracker.Tracker {
	return rt.backend.Tracker
}

func (rt *runtime) close() {
	if err := rt.backend.Cleanup(); err != nil {
		rt.logger.Warn("Failed to release storage", log.FieldError, err.Error())
	}
}

func setup(c *cli.Context) (*config.Config, *log.Logger, error) {
	cfg, err := appcli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := appcli.SetupLogger(cfg.LogLevel, c.App.ErrWriter)
	return cfg, logger, nil
}

func openRuntime(c *cli.Context) (*runtime, error) {
	cfg, logger, err := setup(c)
	if err != nil {
		return nil, err
	}
	res, err := appcli.OpenBackend(c.Context, logger.WithComponent(log.ComponentCLI), cfg)
	if err != nil {
		return nil, err
	}
	return &runtime{
		cfg:     cfg,
		logger:  logger,
		backend: res,
		session: tracker.NewSession(res.Tracker),
	}, nil
}

func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one <%s> argument", name)
	}
	return c.Args().First(), nil
}
