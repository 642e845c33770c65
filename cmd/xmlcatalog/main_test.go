package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/config"
	"github.com/birkland/xmlcatalog/drivers/fs"
	"github.com/birkland/xmlcatalog/store"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

const testCatalog = `<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
	<system systemId="http://example.com/a.dtd" uri="a.dtd"/>
</catalog>`

func testEnv(t *testing.T, cfg *config.Config) *env {
	driver, err := fs.NewDriver(fs.Config{})
	if err != nil {
		t.Fatalf("Could not create driver: %+v", err)
	}
	return &env{
		ctx:   context.Background(),
		cfg:   cfg,
		store: store.New(driver),
	}
}

func TestExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.xml")
	if err := os.WriteFile(path, []byte(testCatalog), 0644); err != nil {
		t.Fatal(err)
	}

	e := testEnv(t, &config.Config{})

	cat, err := e.existing(path)
	if err != nil {
		t.Fatalf("Could not load %s: %+v", path, err)
	}
	if cat.Len() != 1 {
		t.Errorf("Expected one entry, got %d", cat.Len())
	}

	missing := filepath.Join(dir, "DOES_NOT_EXIST.xml")
	if _, err := e.existing(missing); !errors.Is(err, xmlcatalog.ErrCatalogMissing) {
		t.Errorf("Expected a missing catalog error, got %v", err)
	}
}

func TestLocations(t *testing.T) {
	e := testEnv(t, &config.Config{CatalogBase: "mem://localhost/catalogs"})

	got := e.locations([]string{"a.xml", "http://example.com/b.xml"})
	expected := []string{"mem://localhost/catalogs/a.xml", "http://example.com/b.xml"}
	if diffs := deep.Equal(expected, got); len(diffs) != 0 {
		t.Errorf("Unexpected locations: %s", diffs)
	}

	if err := e.store.Register("/etc/xml/catalog"); err != nil {
		t.Fatal(err)
	}
	if diffs := deep.Equal([]string{"file:///etc/xml/catalog"}, e.locations(nil)); len(diffs) != 0 {
		t.Errorf("Expected the registered catalogs, got %s", diffs)
	}
}
