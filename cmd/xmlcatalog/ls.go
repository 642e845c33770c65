package main

import (
	"fmt"
	"strings"

	"github.com/birkland/xmlcatalog"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var lsOpts = struct {
	recursive bool
	kind      string
}{}

var lsCmd = cli.Command{
	Name:  "ls",
	Usage: "List catalog entries",
	Description: `List the entries of the given catalogs, or of the configured
	catalogs if none are given.

	Entries are shown with their identifiers and fully resolved targets,
	one per line, indented within groups.  With -r, catalogs reached through
	nextCatalog and delegate entries are listed as well.`,
	ArgsUsage: "[ catalog ] ...",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:        "recursive, r",
			Usage:       "Follow nextCatalog and delegate entries",
			Destination: &lsOpts.recursive,
		},
		cli.StringFlag{
			Name:        "type, t",
			Usage:       "Show only entries of the given type (e.g. system, rewriteURI)",
			Destination: &lsOpts.kind,
		},
	},

	Action: func(c *cli.Context) error {
		return lsAction(c.Args())
	},
}

func lsAction(args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	want := xmlcatalog.Unknown
	if lsOpts.kind != "" {
		if want = xmlcatalog.ParseKind(lsOpts.kind); want == xmlcatalog.Unknown {
			return fmt.Errorf("unknown entry type %s", lsOpts.kind)
		}
	}

	visited := make(map[string]bool)
	queue := e.locations(args)

	for len(queue) > 0 {
		loc := queue[0]
		queue = queue[1:]
		if visited[loc] {
			continue
		}
		visited[loc] = true

		cat, err := e.store.Load(e.ctx, loc)
		if err != nil {
			return errors.Wrapf(err, "could not list %s", loc)
		}

		fmt.Println(cat.Location)
		printEntries(cat.Entries, want, 1)

		if lsOpts.recursive {
			cat.Walk(func(entry *xmlcatalog.Entry) bool {
				if entry.Kind == xmlcatalog.NextCatalog || entry.Kind.IsDelegate() {
					queue = append(queue, entry.Target)
				}
				return true
			})
		}
	}

	return nil
}

func printEntries(entries []xmlcatalog.Entry, want xmlcatalog.Kind, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, entry := range entries {
		if entry.Kind == xmlcatalog.Group {
			if want == xmlcatalog.Unknown {
				fmt.Printf("%sgroup prefer=%s\n", indent, entry.Prefer)
			}
			printEntries(entry.Entries, want, depth+1)
			continue
		}

		if want != xmlcatalog.Unknown && entry.Kind != want {
			continue
		}

		if entry.Match == "" {
			fmt.Printf("%s%s    %s\n", indent, entry.Kind, entry.Target)
		} else {
			fmt.Printf("%s%s    %s    %s\n", indent, entry.Kind, entry.Match, entry.Target)
		}
	}
}
