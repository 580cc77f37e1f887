// Package storage defines the persistence contracts for audio records and
// the binary serialization used by the backends.
package storage
