package store_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/store"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

const catalogXML = `<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
	<system systemId="http://example.com/a.dtd" uri="a.dtd"/>
</catalog>`

// mapFetcher serves catalogs from a map, counting fetches per location
type mapFetcher struct {
	mu      sync.Mutex
	docs    map[string]string
	errs    map[string]error
	fetches map[string]int
	gate    chan struct{}
}

func newMapFetcher(docs map[string]string) *mapFetcher {
	return &mapFetcher{
		docs:    docs,
		errs:    make(map[string]error),
		fetches: make(map[string]int),
	}
}

func (f *mapFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[location]++

	if err, ok := f.errs[location]; ok {
		return nil, err
	}
	doc, ok := f.docs[location]
	if !ok {
		return nil, xmlcatalog.ErrCatalogMissing
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

func (f *mapFetcher) count(location string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[location]
}

func TestLoad(t *testing.T) {
	loc := "http://example.org/catalog.xml"
	f := newMapFetcher(map[string]string{loc: catalogXML})
	s := store.New(f)

	if s.State(loc) != store.Unloaded {
		t.Errorf("Expected unloaded state, got %s", s.State(loc))
	}

	cat, err := s.Load(context.Background(), loc)
	if err != nil {
		t.Fatalf("Load failed: %+v", err)
	}

	expected := &xmlcatalog.Catalog{
		Location: loc,
		Base:     loc,
		Entries: []xmlcatalog.Entry{{
			Kind:   xmlcatalog.System,
			Match:  "http://example.com/a.dtd",
			Target: "http://example.org/a.dtd",
			Base:   loc,
		}},
	}
	if diffs := deep.Equal(expected, cat); len(diffs) != 0 {
		t.Errorf("Unexpected catalog: %s", diffs)
	}

	again, _ := s.Load(context.Background(), loc)
	if again != cat {
		t.Errorf("Expected the cached catalog on the second load")
	}
	if f.count(loc) != 1 {
		t.Errorf("Expected one fetch, got %d", f.count(loc))
	}
	if s.State(loc) != store.Loaded {
		t.Errorf("Expected loaded state, got %s", s.State(loc))
	}
}

func TestLoadOnceConcurrently(t *testing.T) {
	loc := "http://example.org/catalog.xml"
	f := newMapFetcher(map[string]string{loc: catalogXML})
	f.gate = make(chan struct{})
	s := store.New(f)

	const n = 20
	results := make([]*xmlcatalog.Catalog, n)
	var wg sync.WaitGroup
	var started int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			atomic.AddInt32(&started, 1)
			cat, err := s.Load(context.Background(), loc)
			if err != nil {
				t.Errorf("Load failed: %+v", err)
			}
			results[i] = cat
		}(i)
	}

	for atomic.LoadInt32(&started) < n {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Errorf("Concurrent loads should share one catalog")
		}
	}
	if f.count(loc) != 1 {
		t.Errorf("Expected exactly one fetch, got %d", f.count(loc))
	}
}

func TestMissingIsEmpty(t *testing.T) {
	loc := "file:///nonexistent/catalog.xml"
	f := newMapFetcher(nil)
	s := store.New(f)

	cat, err := s.Load(context.Background(), loc)
	if err != nil {
		t.Fatalf("A missing catalog should not be an error: %+v", err)
	}
	if cat.Len() != 0 || cat.Location != loc {
		t.Errorf("Expected an empty catalog at %s, got %+v", loc, cat)
	}
	if s.State(loc) != store.Missing {
		t.Errorf("Expected missing state, got %s", s.State(loc))
	}

	_, _ = s.Load(context.Background(), loc)
	if f.count(loc) != 1 {
		t.Errorf("Missing catalogs should be cached, got %d fetches", f.count(loc))
	}
}

func TestFailuresCached(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		err  error
		kind error
	}{
		{name: "unavailable", err: errors.New("permission denied"), kind: xmlcatalog.ErrCatalogUnavailable},
		{name: "malformed", doc: "<catalog", kind: xmlcatalog.ErrCatalogInvalid},
		{name: "notACatalog", doc: "<html/>", kind: xmlcatalog.ErrNotACatalog},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			loc := "http://example.org/" + c.name + ".xml"
			f := newMapFetcher(map[string]string{loc: c.doc})
			if c.err != nil {
				f.errs[loc] = c.err
			}
			s := store.New(f)

			for i := 0; i < 2; i++ {
				_, err := s.Load(context.Background(), loc)
				if !errors.Is(err, c.kind) {
					t.Errorf("Expected %s, got %v", c.kind, err)
				}
				var loadErr *xmlcatalog.LoadError
				if !errors.As(err, &loadErr) || loadErr.Location != loc {
					t.Errorf("Expected a LoadError for %s, got %v", loc, err)
				}
			}

			if f.count(loc) != 1 {
				t.Errorf("Failures should be cached, got %d fetches", f.count(loc))
			}
			if s.State(loc) != store.Failed {
				t.Errorf("Expected failed state, got %s", s.State(loc))
			}

			s.Invalidate(loc)
			_, _ = s.Load(context.Background(), loc)
			if f.count(loc) != 2 {
				t.Errorf("Invalidate should force a refetch, got %d fetches", f.count(loc))
			}
		})
	}
}

func TestTimeoutNotCached(t *testing.T) {
	loc := "http://example.org/slow.xml"
	var calls int32
	slow := xmlcatalog.FetcherFunc(func(ctx context.Context, location string) (io.ReadCloser, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return io.NopCloser(strings.NewReader(catalogXML)), nil
	})
	s := store.New(slow, store.WithTimeout(10*time.Millisecond))

	if _, err := s.Load(context.Background(), loc); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected a deadline error, got %v", err)
	}
	if s.State(loc) != store.Unloaded {
		t.Errorf("A timed out load should not be cached, got %s", s.State(loc))
	}
	if _, err := s.Load(context.Background(), loc); err != nil {
		t.Errorf("Second load should succeed: %+v", err)
	}
}

func TestCallerCancel(t *testing.T) {
	loc := "http://example.org/catalog.xml"
	f := newMapFetcher(map[string]string{loc: catalogXML})
	f.gate = make(chan struct{})
	s := store.New(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Load(ctx, loc); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation, got %v", err)
	}

	close(f.gate)
	if _, err := s.Load(context.Background(), loc); err != nil {
		t.Errorf("Load after a cancelled caller should succeed: %+v", err)
	}
}

func TestRegister(t *testing.T) {
	s := store.New(newMapFetcher(nil))

	err := s.Register("http://example.org/a.xml", "file:/etc/xml/catalog", "http://example.org/a.xml")
	if err != nil {
		t.Fatalf("Register failed: %+v", err)
	}

	expected := []string{"http://example.org/a.xml", "file:///etc/xml/catalog"}
	if diffs := deep.Equal(expected, s.Locations()); len(diffs) != 0 {
		t.Errorf("Unexpected locations: %s", diffs)
	}
}

func TestPut(t *testing.T) {
	f := newMapFetcher(nil)
	s := store.New(f)
	cat := &xmlcatalog.Catalog{Location: "mem://catalog.xml"}

	if err := s.Put("mem://catalog.xml", cat); err != nil {
		t.Fatalf("Put failed: %+v", err)
	}
	got, err := s.Load(context.Background(), "mem://catalog.xml")
	if err != nil || got != cat {
		t.Errorf("Expected the catalog that was put, got %+v, %v", got, err)
	}
	if f.count("mem://catalog.xml") != 0 {
		t.Errorf("Put catalogs should not be fetched")
	}
}

func TestPreload(t *testing.T) {
	good := "http://example.org/good.xml"
	bad := "http://example.org/bad.xml"
	f := newMapFetcher(map[string]string{good: catalogXML, bad: "<nope/>"})
	s := store.New(f)

	if err := s.Preload(context.Background(), []string{good, "http://example.org/missing.xml"}); err != nil {
		t.Errorf("Preload failed: %+v", err)
	}
	if s.State(good) != store.Loaded {
		t.Errorf("Expected %s to be loaded", good)
	}

	if err := s.Preload(context.Background(), []string{good, bad}); !errors.Is(err, xmlcatalog.ErrNotACatalog) {
		t.Errorf("Expected preload failure, got %v", err)
	}
}

func TestMux(t *testing.T) {
	var got []string
	named := func(name string) xmlcatalog.Fetcher {
		return xmlcatalog.FetcherFunc(func(ctx context.Context, location string) (io.ReadCloser, error) {
			got = append(got, name)
			return io.NopCloser(strings.NewReader("")), nil
		})
	}

	m := store.NewMux(named("default"))
	m.Handle("file", named("file"))
	m.Handle("MEM", named("mem"))

	for _, loc := range []string{"file:///a.xml", "/relative/a.xml", "mem://localhost/a.xml", "http://example.org/a.xml"} {
		if _, err := m.Fetch(context.Background(), loc); err != nil {
			t.Errorf("Fetch %s failed: %+v", loc, err)
		}
	}

	expected := []string{"file", "file", "mem", "default"}
	if diffs := deep.Equal(expected, got); len(diffs) != 0 {
		t.Errorf("Unexpected routing: %s", diffs)
	}
}
