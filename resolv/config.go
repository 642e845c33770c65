package resolv

import (
	"strings"

	"github.com/birkland/xmlcatalog"
)

// ChainPolicy decides what happens when a catalog reached through
// delegation, nextCatalog or a catalog processing instruction cannot be
// loaded.
type ChainPolicy int

// Chain failure policies
const (
	// ChainIgnore logs the failure and treats the catalog as having no match
	ChainIgnore ChainPolicy = iota

	// ChainAbort fails the whole request
	ChainAbort
)

func (p ChainPolicy) String() string {
	if p == ChainAbort {
		return "abort"
	}
	return "ignore"
}

// ParseChainPolicy parses "ignore" or "abort".  Anything else is ignore.
func ParseChainPolicy(s string) ChainPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "abort") {
		return ChainAbort
	}
	return ChainIgnore
}

// Config holds the resolution options of an Engine
type Config struct {
	// Prefer is the preference for entries that do not set one.  Unset means
	// system.
	Prefer xmlcatalog.Prefer

	// AllowPI enables the request-scoped catalogs of Request.Catalogs
	AllowPI bool

	// SystemAsURI retries an unresolved system identifier as a URI reference
	SystemAsURI bool

	ChainFailure ChainPolicy
}
