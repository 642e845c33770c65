package main

import (
	"fmt"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/document"
	"github.com/birkland/xmlcatalog/store"
	"github.com/urfave/cli"
)

var checkCmd = cli.Command{
	Name:  "check",
	Usage: "Load and validate catalogs",
	Description: `Load the given catalogs, or the configured catalogs if none are
	given, along with every catalog they chain to.  Report catalogs that
	cannot be loaded, and entries that can never match.

	Exits with status 1 if any catalog fails to load.`,
	ArgsUsage: "[ catalog ] ...",

	Action: func(c *cli.Context) error {
		return checkAction(c.Args())
	},
}

func checkAction(args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	locations := e.locations(args)

	// Load the top level concurrently; failures are reported below
	_ = e.store.Preload(e.ctx, locations)

	failed := 0
	visited := make(map[string]bool)
	queue := locations

	for len(queue) > 0 {
		loc := queue[0]
		queue = queue[1:]
		if visited[loc] {
			continue
		}
		visited[loc] = true

		cat, err := e.store.Load(e.ctx, loc)
		if err != nil {
			failed++
			fmt.Printf("FAIL     %s: %s\n", loc, err)
			continue
		}

		if e.store.State(loc) == store.Missing {
			fmt.Printf("MISSING  %s\n", loc)
			continue
		}

		fmt.Printf("OK       %s (%d entries)\n", cat.Location, cat.Len())
		for _, p := range document.Validate(cat) {
			fmt.Printf("    %s\n", p)
		}

		cat.Walk(func(entry *xmlcatalog.Entry) bool {
			if entry.Kind == xmlcatalog.NextCatalog || entry.Kind.IsDelegate() {
				queue = append(queue, entry.Target)
			}
			return true
		})
	}

	if failed > 0 {
		return cli.NewExitError(fmt.Sprintf("%d catalog(s) could not be loaded", failed), 1)
	}
	return nil
}
