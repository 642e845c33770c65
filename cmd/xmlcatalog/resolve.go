package main

import (
	"fmt"
	"io"
	"os"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/drivers/fs"
	"github.com/birkland/xmlcatalog/pi"
	"github.com/birkland/xmlcatalog/uri"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var resolveOpts = struct {
	public   string
	system   string
	uri      string
	base     string
	document string
	open     bool
}{}

var resolveCmd = cli.Command{
	Name:  "resolve",
	Usage: "Resolve a public identifier, system identifier or URI",
	Description: `Look up an identifier in the configured catalogs, and print the
	location it maps to.

	External identifiers are given with -public and/or -system; URI
	references (e.g. from xsl:include or xs:import) with -uri, relative to
	-base if they are relative.  For example

	  xmlcatalog -c /etc/xml/catalog resolve -public "-//OASIS//DTD DocBook XML V4.5//EN"

	With -document, the catalogs named by oasis-xml-catalog processing
	instructions in the given document are consulted first.  With -open,
	the resolved resource is written to stdout.

	Exits with status 1 if nothing matches.`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:        "public, p",
			Usage:       "Public identifier",
			Destination: &resolveOpts.public,
		},
		cli.StringFlag{
			Name:        "system, s",
			Usage:       "System identifier",
			Destination: &resolveOpts.system,
		},
		cli.StringFlag{
			Name:        "uri, u",
			Usage:       "URI reference",
			Destination: &resolveOpts.uri,
		},
		cli.StringFlag{
			Name:        "base, b",
			Usage:       "Base URI of a relative URI reference",
			Destination: &resolveOpts.base,
		},
		cli.StringFlag{
			Name:        "document, d",
			Usage:       "Document whose catalog processing instructions apply",
			Destination: &resolveOpts.document,
		},
		cli.BoolFlag{
			Name:        "open, o",
			Usage:       "Write the resolved resource to stdout",
			Destination: &resolveOpts.open,
		},
	},

	Action: func(c *cli.Context) error {
		return resolveAction(c.Args())
	},
}

func resolveAction(args []string) error {
	req, err := request(args)
	if err != nil {
		return err
	}

	e, err := setup()
	if err != nil {
		return err
	}

	if resolveOpts.document != "" {
		if req.Catalogs, err = documentCatalogs(resolveOpts.document); err != nil {
			return err
		}
	}

	res, err := e.engine.Resolve(e.ctx, req)
	if err != nil {
		return errors.Wrapf(err, "resolution failed")
	}
	if !res.Found {
		return cli.NewExitError("no match", 1)
	}

	if !resolveOpts.open {
		fmt.Println(res.URI)
		return nil
	}

	resp, err := e.registry.Open(e.ctx, req, res.URI)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = io.Copy(os.Stdout, resp.Body)
	return errors.Wrapf(err, "could not read %s", resp.URI)
}

func request(args []string) (xmlcatalog.Request, error) {
	switch {
	case resolveOpts.uri != "":
		if resolveOpts.public != "" || resolveOpts.system != "" {
			return xmlcatalog.Request{}, fmt.Errorf("-uri cannot be combined with -public or -system")
		}
		return xmlcatalog.Request{
			Kind: xmlcatalog.URIReference,
			URI:  resolveOpts.uri,
			Base: resolveOpts.base,
		}, nil
	case resolveOpts.system != "":
		return xmlcatalog.Request{
			Kind:     xmlcatalog.ExternalIdentifier,
			PublicID: resolveOpts.public,
			SystemID: resolveOpts.system,
		}, nil
	case resolveOpts.public != "":
		return xmlcatalog.Request{
			Kind:     xmlcatalog.PublicOnly,
			PublicID: resolveOpts.public,
		}, nil
	case len(args) == 1:
		return xmlcatalog.Request{Kind: xmlcatalog.URIReference, URI: args[0], Base: resolveOpts.base}, nil
	default:
		return xmlcatalog.Request{}, fmt.Errorf("nothing to resolve: give one of -public, -system or -uri")
	}
}

// documentCatalogs sniffs the catalog processing instructions of a local
// document
func documentCatalogs(path string) ([]string, error) {
	base, err := uri.FromPath(path)
	if err != nil {
		return nil, err
	}

	local, err := fs.Path(base)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(local)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open document %s", path)
	}
	defer file.Close()

	return pi.Catalogs(file, base)
}
