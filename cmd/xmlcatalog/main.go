package main

import (
	"context"
	"log"
	"os"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/config"
	"github.com/birkland/xmlcatalog/drivers/fs"
	"github.com/birkland/xmlcatalog/drivers/storage"
	"github.com/birkland/xmlcatalog/logging"
	"github.com/birkland/xmlcatalog/resolv"
	"github.com/birkland/xmlcatalog/scheme"
	"github.com/birkland/xmlcatalog/store"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var mainOpts = struct {
	catalogs cli.StringSlice
	config   string
	prefer   string
	logLevel string
}{}

func main() {
	app := cli.NewApp()
	app.Name = "xmlcatalog"
	app.Usage = "OASIS XML catalog utilities"
	app.EnableBashCompletion = true
	app.Commands = []cli.Command{
		resolveCmd,
		lsCmd,
		checkCmd,
		exportCmd,
	}
	app.Flags = []cli.Flag{
		cli.StringSliceFlag{
			Name:  "catalog, c",
			Usage: "Catalog file or URI (repeatable); replaces the configured catalogs",
			Value: &mainOpts.catalogs,
		},
		cli.StringFlag{
			Name:        "config",
			Usage:       "Config file (default ~/.xmlcatalog.yaml)",
			EnvVar:      "XMLCATALOG_CONFIG",
			Destination: &mainOpts.config,
		},
		cli.StringFlag{
			Name:        "prefer",
			Usage:       "Default preference {public, system}",
			Destination: &mainOpts.prefer,
		},
		cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level {debug, info, warn, error}",
			Destination: &mainOpts.logLevel,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// env is everything a command needs to load and resolve catalogs
type env struct {
	ctx      context.Context
	cfg      *config.Config
	store    *store.Store
	engine   *resolv.Engine
	registry *scheme.Registry
}

func setup() (*env, error) {
	cfg, err := config.Load(mainOpts.config)
	if err != nil {
		return nil, err
	}

	if len(mainOpts.catalogs) > 0 {
		cfg.Catalogs = mainOpts.catalogs
		cfg.CatalogDirs = nil
	}
	if mainOpts.prefer != "" {
		cfg.Prefer = xmlcatalog.ParsePrefer(mainOpts.prefer).Or(cfg.Prefer)
	}
	if mainOpts.logLevel != "" {
		cfg.Log.Level = mainOpts.logLevel
	}

	logging.Configure(&cfg.Log)
	logger := logging.Default()
	ctx := logging.WithLogger(context.Background(), logger)

	files, err := fs.NewDriver(fs.Config{})
	if err != nil {
		return nil, errors.Wrapf(err, "could not initialize file driver")
	}

	fetcher := store.NewMux(storage.New(nil))
	fetcher.Handle("file", files)

	s := store.New(fetcher, store.WithTimeout(cfg.LoadTimeout))

	locations, err := cfg.Locations()
	if err != nil {
		return nil, errors.Wrapf(err, "could not find catalogs")
	}

	// Nothing configured, so use the catalog nearest the working directory
	if len(locations) == 0 {
		if nearest, err := fs.LocateCatalog(".", ""); err == nil {
			locations = []string{nearest}
		}
	}
	if err := s.Register(locations...); err != nil {
		return nil, err
	}

	engine := resolv.New(s, cfg.Engine())
	opts := engine.Config()
	logger.Debug().Strs("catalogs", s.Locations()).Str("config", cfg.ConfigFile).
		Stringer("prefer", opts.Prefer).Stringer("chain_failure", opts.ChainFailure).Msg("configured")

	return &env{
		ctx:      ctx,
		cfg:      cfg,
		store:    s,
		engine:   engine,
		registry: scheme.NewRegistry(fetcher),
	}, nil
}

// locations returns the given catalogs, or the configured ones if none.
// Relative arguments are taken relative to the configured catalog base.
func (e *env) locations(args []string) []string {
	if len(args) == 0 {
		return e.store.Locations()
	}
	locations := make([]string, 0, len(args))
	for _, a := range args {
		locations = append(locations, e.cfg.Location(a))
	}
	return locations
}

// existing loads a catalog that must exist.  The store reads a missing
// catalog as empty, which is right for resolution but not for commands
// that operate on one named catalog.
func (e *env) existing(location string) (*xmlcatalog.Catalog, error) {
	loc := e.cfg.Location(location)
	cat, err := e.store.Load(e.ctx, loc)
	if err != nil {
		return nil, err
	}
	if e.store.State(loc) == store.Missing {
		return nil, errors.Wrapf(xmlcatalog.ErrCatalogMissing, "%s", loc)
	}
	return cat, nil
}
