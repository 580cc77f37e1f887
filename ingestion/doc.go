// Package ingestion provides bulk import of audio assets into the catalog.
//
// The Pipeline type fans items out over two worker pool stages:
//   - Probing file durations and validating the resulting records
//   - Generating embeddings and inserting into storage
//
// Items fail independently; one bad file never aborts the batch. Every
// failure is reported with its path and cause.
package ingestion
