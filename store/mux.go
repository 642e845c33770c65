package store

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/birkland/xmlcatalog"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Mux is a fetcher that routes catalog locations to other fetchers by URI
// scheme.  Locations without a scheme are routed as file locations.
type Mux struct {
	mu       sync.RWMutex
	fallback xmlcatalog.Fetcher
	schemes  map[string]xmlcatalog.Fetcher
}

// NewMux creates a Mux that uses the given fetcher for any scheme without a
// dedicated handler.
func NewMux(fallback xmlcatalog.Fetcher) *Mux {
	return &Mux{
		fallback: fallback,
		schemes:  make(map[string]xmlcatalog.Fetcher),
	}
}

// Handle routes locations with the given scheme to f
func (m *Mux) Handle(scheme string, f xmlcatalog.Fetcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemes[strings.ToLower(scheme)] = f
}

// Fetch implements xmlcatalog.Fetcher
func (m *Mux) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	return m.fetcher(location).Fetch(ctx, location)
}

func (m *Mux) fetcher(location string) xmlcatalog.Fetcher {
	scheme := strings.ToLower(url.Scheme(location, file.Scheme))

	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.schemes[scheme]; ok {
		return f
	}
	return m.fallback
}
