// Package resolv implements matching an identifier against a single loaded
// catalog, following the OASIS XML Catalogs rules.  Walking from one catalog to
// the next is left to the caller; see the top level resolv package.
//
// Group entries are transparent here: their members take part in every step,
// in document order, with the preference they were declared under.
package resolv
