package resolv

import (
	"context"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/internal/resolv"
	"github.com/birkland/xmlcatalog/logging"
	"github.com/birkland/xmlcatalog/uri"
	"github.com/rs/zerolog"
)

// Loader supplies catalogs to an Engine.  Locations lists the configured
// catalogs, in the order they are consulted.
type Loader interface {
	Load(ctx context.Context, location string) (*xmlcatalog.Catalog, error)
	Locations() []string
}

// Engine resolves requests against the catalogs of a Loader
type Engine struct {
	loader Loader
	cfg    Config
}

// New creates an engine
func New(loader Loader, cfg Config) *Engine {
	cfg.Prefer = cfg.Prefer.Or(xmlcatalog.PreferSystem)
	return &Engine{
		loader: loader,
		cfg:    cfg,
	}
}

// Config returns the engine's options
func (e *Engine) Config() Config {
	return e.cfg
}

// ResolveSystem resolves an external identifier.  Either identifier may be
// empty.
func (e *Engine) ResolveSystem(ctx context.Context, publicID, systemID string) (xmlcatalog.Result, error) {
	return e.Resolve(ctx, xmlcatalog.Request{
		Kind:     xmlcatalog.ExternalIdentifier,
		PublicID: publicID,
		SystemID: systemID,
	})
}

// ResolvePublic resolves a bare public identifier
func (e *Engine) ResolvePublic(ctx context.Context, publicID string) (xmlcatalog.Result, error) {
	return e.Resolve(ctx, xmlcatalog.Request{
		Kind:     xmlcatalog.PublicOnly,
		PublicID: publicID,
	})
}

// ResolveURI resolves a URI reference, optionally relative to base
func (e *Engine) ResolveURI(ctx context.Context, ref, base string) (xmlcatalog.Result, error) {
	return e.Resolve(ctx, xmlcatalog.Request{
		Kind: xmlcatalog.URIReference,
		URI:  ref,
		Base: base,
	})
}

// Resolve answers a request.  Finding no match is not an error; errors are
// only returned when a configured catalog cannot be loaded (a
// *xmlcatalog.LoadError), when the chain failure policy is ChainAbort and a
// chained catalog cannot be loaded, or when ctx is done.
func (e *Engine) Resolve(ctx context.Context, req xmlcatalog.Request) (xmlcatalog.Result, error) {
	var res xmlcatalog.Result
	var err error

	switch req.Kind {
	case xmlcatalog.URIReference:
		res, err = e.resolveURI(ctx, req)
	case xmlcatalog.PublicOnly:
		req.SystemID = ""
		res, err = e.resolveExternal(ctx, req)
	default:
		res, err = e.resolveExternal(ctx, req)
	}

	log := logging.FromContext(ctx)
	if err != nil {
		log.Debug().Err(err).Stringer("kind", req.Kind).Msg("resolution failed")
	} else if res.Found {
		log.Debug().Stringer("kind", req.Kind).Str("public", req.PublicID).Str("system", req.SystemID).
			Str("uri", req.URI).Str("resolved", res.URI).Msg("resolved")
	}
	return res, err
}

func (e *Engine) resolveExternal(ctx context.Context, req xmlcatalog.Request) (xmlcatalog.Result, error) {
	q := externalQuery(req.PublicID, req.SystemID)
	if q.empty() {
		return xmlcatalog.NotFound, nil
	}

	res, err := e.lookup(ctx, req.Catalogs, q)
	if err != nil || res.Found {
		return res, err
	}

	if e.cfg.SystemAsURI && q.systemID != "" {
		return e.lookup(ctx, req.Catalogs, query{uri: q.systemID})
	}

	return xmlcatalog.NotFound, nil
}

func (e *Engine) resolveURI(ctx context.Context, req xmlcatalog.Request) (xmlcatalog.Result, error) {
	if req.URI == "" {
		return xmlcatalog.NotFound, nil
	}

	// A publicid URN names a public identifier, whatever it is used as
	if pub, ok := uri.UnwrapURN(req.URI); ok {
		return e.lookup(ctx, req.Catalogs, query{publicID: uri.NormalizePublic(pub)})
	}

	ref := uri.NormalizeSystem(req.URI)
	res, err := e.lookup(ctx, req.Catalogs, query{uri: ref})
	if err != nil || res.Found {
		return res, err
	}

	if req.Base != "" && !uri.IsAbsolute(ref) {
		if abs := uri.Resolve(req.Base, ref); abs != ref {
			return e.lookup(ctx, req.Catalogs, query{uri: abs})
		}
	}

	return xmlcatalog.NotFound, nil
}

// lookup consults the request catalogs, if allowed, and then the configured
// catalogs, sharing one visited set.
func (e *Engine) lookup(ctx context.Context, extra []string, q query) (xmlcatalog.Result, error) {
	w := &walker{
		Engine: e,
		cxt:    resolv.NewCxt(e.cfg.Prefer),
		log:    logging.FromContext(ctx),
	}

	if e.cfg.AllowPI && len(extra) > 0 {
		res, done, err := w.catalogs(ctx, extra, false, q)
		if err != nil || done {
			return res, err
		}
	}

	res, _, err := w.catalogs(ctx, e.loader.Locations(), true, q)
	if err == nil && !res.Found {
		w.log.Debug().Strs("catalogs", w.cxt.Visited()).Msg("no catalog matched")
	}
	return res, err
}

// walker is the state of one walk through the catalog graph
type walker struct {
	*Engine
	cxt *resolv.Cxt
	log *zerolog.Logger
}

// catalogs consults each catalog in turn.  It is done at the first match, or
// at the first delegation, whose outcome is final whether or not the delegate
// catalogs match.  Load failures of strict catalogs are always returned;
// others are subject to the chain failure policy.
func (w *walker) catalogs(ctx context.Context, locations []string, strict bool, q query) (xmlcatalog.Result, bool, error) {
	for _, loc := range locations {
		res, done, err := w.catalog(ctx, loc, strict, q)
		if err != nil || done {
			return res, done, err
		}
	}
	return xmlcatalog.NotFound, false, nil
}

func (w *walker) catalog(ctx context.Context, location string, strict bool, q query) (xmlcatalog.Result, bool, error) {
	if err := ctx.Err(); err != nil {
		return xmlcatalog.NotFound, true, err
	}

	if abs, err := uri.FromPath(location); err == nil {
		location = abs
	}

	if !w.cxt.Visit(location) {
		w.log.Debug().Str("catalog", location).Msg("catalog already visited")
		return xmlcatalog.NotFound, false, nil
	}

	cat, err := w.loader.Load(ctx, location)
	if err != nil {
		if ctx.Err() != nil || strict || w.cfg.ChainFailure == ChainAbort {
			return xmlcatalog.NotFound, true, err
		}
		w.log.Warn().Err(err).Str("catalog", location).Msg("skipping catalog that could not be loaded")
		return xmlcatalog.NotFound, false, nil
	}

	m := q.match(cat, w.cxt.Prefer)
	if m.Found {
		return xmlcatalog.Resolved(m.URI), true, nil
	}

	if m.Delegated() {
		res, _, err := w.catalogs(ctx, m.Delegates, false, q.delegated(m.Via))
		return res, true, err
	}

	return w.catalogs(ctx, resolv.NextCatalogs(cat), false, q)
}
