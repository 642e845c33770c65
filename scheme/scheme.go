// Package scheme fetches resolved resources whose URI scheme needs special
// handling.
//
// Resolvers are registered per scheme, usually through a Provider at startup.
// Registry.Open tries the resolvers of a URI's scheme in registration order
// and falls back to a plain fetch when none of them produce a response.
package scheme

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/logging"
	"github.com/birkland/xmlcatalog/uri"
	"github.com/pkg/errors"
)

// Response is an opened resource
type Response struct {
	URI         string
	Body        io.ReadCloser
	ContentType string
}

// Resolver produces the resource at a URI.  A nil response with a nil error
// means the resolver does not handle the URI.
type Resolver interface {
	GetResource(ctx context.Context, req xmlcatalog.Request, uri string) (*Response, error)
}

// ResolverFunc is a function that can be used to satisfy the Resolver interface
type ResolverFunc func(ctx context.Context, req xmlcatalog.Request, uri string) (*Response, error)

// GetResource calls f
func (f ResolverFunc) GetResource(ctx context.Context, req xmlcatalog.Request, uri string) (*Response, error) {
	return f(ctx, req, uri)
}

// Provider advertises a resolver for a set of schemes
type Provider interface {
	Schemes() []string
	Resolver() Resolver
}

// Registry maps URI schemes to resolvers.  It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string][]Resolver
	fallback  xmlcatalog.Fetcher
}

// NewRegistry creates an empty registry that falls back to the given fetcher
func NewRegistry(fallback xmlcatalog.Fetcher) *Registry {
	return &Registry{
		resolvers: make(map[string][]Resolver),
		fallback:  fallback,
	}
}

// Register adds a resolver for a scheme, after any already registered
func (r *Registry) Register(scheme string, resolver Resolver) {
	scheme = strings.ToLower(scheme)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[scheme] = append(r.resolvers[scheme], resolver)
}

// RegisterProvider registers a provider's resolver for each of its schemes.
// The resolver is instantiated once.
func (r *Registry) RegisterProvider(p Provider) {
	resolver := p.Resolver()
	for _, s := range p.Schemes() {
		r.Register(s, resolver)
	}
}

// ResolversFor lists the resolvers of a scheme, in registration order
func (r *Registry) ResolversFor(scheme string) []Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Resolver(nil), r.resolvers[strings.ToLower(scheme)]...)
}

// Open opens the resource at target.  The first resolver of target's scheme
// with a response wins; resolver errors are logged and skipped.  If no
// resolver responds, the fallback fetcher is used.
func (r *Registry) Open(ctx context.Context, req xmlcatalog.Request, target string) (*Response, error) {
	log := logging.FromContext(ctx)

	for _, resolver := range r.ResolversFor(uri.Scheme(target)) {
		resp, err := resolver.GetResource(ctx, req, target)
		if err != nil {
			log.Warn().Err(err).Str("uri", target).Msg("scheme resolver failed, trying the next one")
			continue
		}
		if resp != nil {
			if resp.URI == "" {
				resp.URI = target
			}
			return resp, nil
		}
	}

	if r.fallback == nil {
		return nil, errors.Errorf("no way to open %s", target)
	}

	body, err := r.fallback.Fetch(ctx, target)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", target)
	}
	return &Response{URI: target, Body: body}, nil
}
