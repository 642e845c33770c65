// Package document reads OASIS XML Catalog documents into xmlcatalog.Catalog
// values, and writes them back out.
//
// Every supported input (an already parsed tree, bytes, a reader, a string) is
// first normalized into a Node tree, and only then turned into catalog entries.
// Relative uri, rewritePrefix and catalog attributes are made absolute while
// loading, using the xml:base values in effect, so that resolution never has to
// look at ancestors again.
//
// The vocabulary is read leniently: unknown elements and attributes, elements
// from other namespaces and entries missing a required attribute are skipped.
package document
