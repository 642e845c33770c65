package main

import (
	"fmt"
	"os"

	"github.com/birkland/xmlcatalog/document"
	"github.com/birkland/xmlcatalog/drivers/fs"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var exportOpts = struct {
	output string
}{}

var exportCmd = cli.Command{
	Name:  "export",
	Usage: "Write the effective form of a catalog",
	Description: `Load a catalog and write it back out in its effective form:
	every target absolute, every group with an explicit preference.  The
	result resolves identically wherever it is placed.

	  xmlcatalog export -o /tmp/catalog.xml ./catalog.xml

	Without -o, the catalog is written to stdout.  Output files are
	replaced atomically.`,
	ArgsUsage: "catalog",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:        "output, o",
			Usage:       "Output file",
			Destination: &exportOpts.output,
		},
	},

	Action: func(c *cli.Context) error {
		return exportAction(c.Args())
	},
}

func exportAction(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("export needs exactly one catalog")
	}

	e, err := setup()
	if err != nil {
		return err
	}

	cat, err := e.existing(args[0])
	if err != nil {
		return errors.Wrapf(err, "could not export %s", args[0])
	}

	if exportOpts.output == "" {
		return document.Serialize(os.Stdout, cat)
	}

	return fs.WriteCatalog(exportOpts.output, cat)
}
