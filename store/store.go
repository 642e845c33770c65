package store

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/document"
	"github.com/birkland/xmlcatalog/logging"
	"github.com/birkland/xmlcatalog/uri"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// State is the load state of a catalog location
type State int

// Load states.  A location moves from Unloaded through Loading to one of
// Loaded, Missing or Failed, once.
const (
	Unloaded State = iota
	Loading
	Loaded
	Missing
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Missing:
		return "missing"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type source struct {
	state   State
	catalog *xmlcatalog.Catalog
	err     error
}

// Store is a cache of catalogs, plus the ordered list of configured catalog
// locations.  It is safe for concurrent use.
type Store struct {
	fetcher xmlcatalog.Fetcher
	timeout time.Duration

	mu        sync.RWMutex
	locations []string
	sources   map[string]*source

	group singleflight.Group
}

// Option configures a Store
type Option func(*Store)

// WithTimeout bounds the time spent fetching and parsing a single catalog
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// New creates an empty store that reads catalogs with the given fetcher
func New(fetcher xmlcatalog.Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		sources: make(map[string]*source),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register appends catalog locations to the configured list.  Locations may
// be file paths or URIs; they are made absolute.  Locations already
// registered are ignored.
func (s *Store) Register(locations ...string) error {
	abs := make([]string, 0, len(locations))
	for _, l := range locations {
		a, err := uri.FromPath(l)
		if err != nil {
			return errors.Wrapf(err, "could not register catalog %s", l)
		}
		abs = append(abs, a)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range abs {
		if !contains(s.locations, a) {
			s.locations = append(s.locations, a)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

// Locations returns the configured catalog locations, in registration order
func (s *Store) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.locations...)
}

// State returns the load state of the catalog at the given location
func (s *Store) State(location string) State {
	loc, err := uri.FromPath(location)
	if err != nil {
		return Unloaded
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if src, ok := s.sources[loc]; ok {
		return src.state
	}
	return Unloaded
}

// Put adds an already loaded catalog to the cache under the given location,
// replacing whatever was there.  It does not register the location.
func (s *Store) Put(location string, cat *xmlcatalog.Catalog) error {
	loc, err := uri.FromPath(location)
	if err != nil {
		return errors.Wrapf(err, "could not add catalog %s", location)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[loc] = &source{state: Loaded, catalog: cat}
	return nil
}

// Invalidate forgets the cached state of a location, so that the next Load
// fetches it again.
func (s *Store) Invalidate(location string) {
	loc, err := uri.FromPath(location)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, loc)
}

// Load returns the catalog at the given location, loading it on first use.
//
// A catalog that does not exist is returned as an empty catalog.  Other
// failures are returned as *xmlcatalog.LoadError, and repeated on subsequent
// calls without another fetch.  If ctx is done before the catalog is loaded,
// Load returns ctx.Err(); the load itself carries on for other callers.
func (s *Store) Load(ctx context.Context, location string) (*xmlcatalog.Catalog, error) {
	loc, err := uri.FromPath(location)
	if err != nil {
		return nil, xmlcatalog.NewLoadError(location, xmlcatalog.ErrCatalogUnavailable, err)
	}

	if cat, err, ok := s.cached(loc); ok {
		return cat, err
	}

	ch := s.group.DoChan(loc, func() (interface{}, error) {
		// Someone may have finished loading between our check and now
		if cat, err, ok := s.cached(loc); ok {
			return cat, err
		}
		return s.load(context.WithoutCancel(ctx), loc)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*xmlcatalog.Catalog), nil
	}
}

func (s *Store) cached(loc string) (*xmlcatalog.Catalog, error, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[loc]
	if !ok {
		return nil, nil, false
	}

	switch src.state {
	case Loaded, Missing:
		return src.catalog, nil, true
	case Failed:
		return nil, src.err, true
	default:
		return nil, nil, false
	}
}

func (s *Store) setState(loc string, src *source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src == nil {
		delete(s.sources, loc)
		return
	}
	s.sources[loc] = src
}

func (s *Store) load(ctx context.Context, loc string) (*xmlcatalog.Catalog, error) {
	log := logging.FromContext(ctx)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.setState(loc, &source{state: Loading})

	cat, err := s.read(ctx, loc)

	switch {
	case err == nil:
		log.Debug().Str("catalog", loc).Int("entries", cat.Len()).Msg("loaded catalog")
		s.setState(loc, &source{state: Loaded, catalog: cat})
		return cat, nil

	case errors.Is(err, xmlcatalog.ErrCatalogMissing):
		log.Debug().Str("catalog", loc).Msg("catalog does not exist, treating it as empty")
		empty := &xmlcatalog.Catalog{Location: loc, Base: loc}
		s.setState(loc, &source{state: Missing, catalog: empty})
		return empty, nil

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// Not cached; the next request tries again
		log.Warn().Err(err).Str("catalog", loc).Msg("catalog load timed out")
		s.setState(loc, nil)
		return nil, err

	default:
		log.Warn().Err(err).Str("catalog", loc).Msg("could not load catalog")
		s.setState(loc, &source{state: Failed, err: err})
		return nil, err
	}
}

// read fetches and parses a catalog.  Errors are always *xmlcatalog.LoadError.
func (s *Store) read(ctx context.Context, loc string) (cat *xmlcatalog.Catalog, err error) {
	rc, err := s.fetcher.Fetch(ctx, loc)
	if err != nil {
		if errors.Is(err, xmlcatalog.ErrCatalogMissing) {
			return nil, xmlcatalog.NewLoadError(loc, xmlcatalog.ErrCatalogMissing, err)
		}
		return nil, xmlcatalog.NewLoadError(loc, xmlcatalog.ErrCatalogUnavailable, err)
	}
	defer func() {
		if e := rc.Close(); e != nil && err == nil {
			err = xmlcatalog.NewLoadError(loc, xmlcatalog.ErrCatalogUnavailable,
				errors.Wrapf(e, "error closing %s", loc))
		}
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, xmlcatalog.NewLoadError(loc, xmlcatalog.ErrCatalogUnavailable,
			errors.Wrapf(err, "could not read %s", loc))
	}

	return document.Load(document.Bytes(data), loc)
}

// Preload loads the given catalogs concurrently, returning the first failure.
// Missing catalogs are not failures.
func (s *Store) Preload(ctx context.Context, locations []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range locations {
		l := l
		g.Go(func() error {
			_, err := s.Load(gctx, l)
			return err
		})
	}
	return g.Wait()
}
