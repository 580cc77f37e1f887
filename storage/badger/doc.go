// Package badger implements the storage interfaces on BadgerDB, with
// in-memory secondary structures for lexical search and filtering.
package badger
