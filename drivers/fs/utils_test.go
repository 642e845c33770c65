package fs_test

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/document"
	"github.com/birkland/xmlcatalog/drivers/fs"
	"github.com/go-test/deep"
)

func TestAtomicWriteCommit(t *testing.T) {
	runInTempDir(t, func(tempDir string) {
		fileName := filepath.Join(tempDir, "atomicCommit")

		content := "(╯°□°）╯︵ ┻━┻"
		_ = ioutil.WriteFile(fileName, []byte("previous content"), 0664)

		writer, _ := fs.AtomicWrite(fileName)
		defer func() {
			err := writer.Close()
			if err != nil {
				t.Errorf("deferred close failed! %s", err)
			}
		}()

		_, _ = io.WriteString(writer, content)

		if err := writer.Close(); err != nil {
			t.Errorf("writer failed close! %s", err)
		}

		readBytes, _ := ioutil.ReadFile(fileName)

		if string(readBytes) != content {
			t.Errorf("did not read the expected content from atomic write")
		}

	})

}
func TestAtomicWriteRollback(t *testing.T) {
	runInTempDir(t, func(tempDir string) {
		fileName := filepath.Join(tempDir, "rollback")
		writer, _ := fs.AtomicWrite(fileName)
		defer func() {
			err := writer.Rollback()
			if err != nil {
				t.Errorf("deferred rollback failed! %s", err)
			}
		}()

		_, _ = io.WriteString(writer, "something")
		err := writer.Rollback()
		if err != nil {
			t.Errorf("error rolling back! %s", err)
		}

		files, err := ioutil.ReadDir(tempDir)
		if err != nil || len(files) > 0 {
			t.Errorf("rollback did not clean up temp files!")
		}
	})
}

func TestAtomicConflict(t *testing.T) {
	runInTempDir(t, func(tempDir string) {
		fileName := filepath.Join(tempDir, "err")

		conflictingFileName := filepath.Join(tempDir, fs.AtomicPrefix+"err")

		_ = ioutil.WriteFile(conflictingFileName, []byte("I'm in the way!"), 0664)

		writer, err := fs.AtomicWrite(fileName)
		if err == nil {
			writer.Close()
			t.Errorf("should have thrown an error")
		}
	})
}

func TestManagedWriteCloseError(t *testing.T) {
	badCloser := &fs.ManagedWrite{WriteCloser: &errcloser{}}
	if badCloser.Close() == nil {
		t.Errorf("should have thrown an error")
	}
}

type errcloser struct{}

func (*errcloser) Close() error {
	return fmt.Errorf("an error")
}
func (*errcloser) Write([]byte) (int, error) {
	return 0, nil
}
func runInTempDir(t *testing.T, f func(string)) {
	tempDir, err := ioutil.TempDir("", "xmlcatalog_test")
	if err != nil {
		t.Fatal("Could not create testing temp dir")
	}
	defer os.RemoveAll(tempDir)
	f(tempDir)
}

func TestWriteCatalog(t *testing.T) {
	runInTempDir(t, func(tempDir string) {
		fileName := filepath.Join(tempDir, "catalog.xml")

		cat := &xmlcatalog.Catalog{
			Location: "file:///original/catalog.xml",
			Base:     "file:///original/catalog.xml",
			Prefer:   xmlcatalog.PreferPublic,
			Entries: []xmlcatalog.Entry{{
				Kind:   xmlcatalog.Public,
				Match:  "-//Example//DTD Doc//EN",
				Target: "http://example.org/doc.dtd",
				Base:   "file:///original/catalog.xml",
				Prefer: xmlcatalog.PreferPublic,
			}},
		}

		if err := fs.WriteCatalog(fileName, cat); err != nil {
			t.Fatalf("WriteCatalog failed: %+v", err)
		}

		file, err := os.Open(fileName)
		if err != nil {
			t.Fatalf("Could not open written catalog: %+v", err)
		}
		defer file.Close()

		reread, err := document.Load(document.Reader(file), cat.Location)
		if err != nil {
			t.Fatalf("Could not re-read written catalog: %+v", err)
		}
		if diffs := deep.Equal(cat, reread); len(diffs) != 0 {
			t.Errorf("Written catalog differs: %s", diffs)
		}

		files, _ := ioutil.ReadDir(tempDir)
		if len(files) != 1 {
			t.Errorf("Expected no leftover temp files, got %d files", len(files))
		}
	})
}
