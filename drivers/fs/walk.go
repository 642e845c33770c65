package fs

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/birkland/xmlcatalog/uri"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
)

// DefaultPattern matches the file names of catalogs found by Discover
const DefaultPattern = "catalog*.xml"

const (
	dontGoDeeper = true
	goDeeper     = false
)

// Discover walks the given directories, and returns the file URIs of all
// regular files whose name matches the glob pattern, sorted.  Hidden
// directories are not descended into.
func Discover(dirs []string, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.Wrapf(err, "bad catalog pattern %s", pattern)
	}

	found := make(map[string]bool)
	for _, dir := range dirs {
		root := filepath.Clean(dir)
		err := fsWalk(root, func(ospath string, e *godirwalk.Dirent) (bool, error) {
			name := filepath.Base(ospath)

			if e.IsDir() {
				if filepath.Clean(ospath) != root && len(name) > 1 && name[0] == '.' {
					return dontGoDeeper, nil
				}
				return goDeeper, nil
			}

			if ok, _ := filepath.Match(pattern, name); !ok {
				return dontGoDeeper, nil
			}

			loc, err := uri.FromPath(ospath)
			if err != nil {
				return dontGoDeeper, err
			}
			found[loc] = true
			return dontGoDeeper, nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "error discovering catalogs in %s", dir)
		}
	}

	locations := make([]string, 0, len(found))
	for loc := range found {
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	return locations, nil
}

type skip struct {
	action godirwalk.ErrorAction
}

func (skip) Error() string {
	return "node is skipped"
}

// Callback to be invoked each time a fs entry is encountered.
// Returns a Boolean indicating whether the current fs entry should be a
// considered a terminal (leaf) node.  If true, any children will not be
// walked.  Any error will terminate a walk entirely.
type fsCallback func(ospath string, e *godirwalk.Dirent) (terminal bool, err error)

func fsWalk(dir string, f fsCallback) error {

	if _, err := os.Stat(dir); err != nil {
		return errors.Wrapf(err, "error walking directory %s", dir)
	}

	return godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(ospath string, dirent *godirwalk.Dirent) error {
			terminal, err := f(ospath, dirent)
			if err != nil {
				return errors.Wrap(err, "terminating walk due to error")
			}
			if terminal && dirent.IsDir() {
				return skip{godirwalk.SkipNode}
			}
			return nil
		},
		ErrorCallback: func(ospath string, err error) godirwalk.ErrorAction {
			s, skip := errors.Cause(err).(skip)
			if skip {
				return s.action
			}

			return godirwalk.Halt
		},
		Unsorted:            true,
		FollowSymbolicLinks: true,
	},
	)
}
