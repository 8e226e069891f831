// Package catalog defines the per-content-type field catalogs.
//
// A catalog is the immutable, compiled-in list of domain fields for one
// Douban content type (books, movies, tv, documentary): stable domain
// names, the Chinese display names matched or created on the remote
// table, abstract data kinds, and required flags.
//
// Catalog order is the canonical field order used for content hashing,
// so it must stay stable across releases.
//
// The package also provides the tolerant dotted-path walker used to pull
// nested values (e.g. "rating.average") out of scraped records.
package catalog
