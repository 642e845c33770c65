// Package logging provides structured logging for xmlcatalog using zerolog.
//
// The library logs through the logger carried by the context passed to it,
// falling back to a package default:
//
//	log := logging.New(&logging.Config{Level: "debug", Format: "console"})
//	ctx := logging.WithLogger(context.Background(), &log)
//	res, err := engine.ResolveSystem(ctx, "", "http://example.com/a.dtd")
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu            sync.RWMutex
	defaultLogger = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
)

// Default returns the package default logger
func Default() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := defaultLogger
	return &l
}

// SetDefault replaces the package default logger
func SetDefault(logger zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// Configure replaces the package default logger with one built from cfg
func Configure(cfg *Config) {
	SetDefault(New(cfg))
}
