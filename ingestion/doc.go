// Package ingestion builds the course catalog index.
//
// Documents are loaded from a directory (PDF pages, plain text and markdown
// files), split into overlapping chunks, embedded in batches on a worker
// pool and stored in a storage.CatalogRepository. Passage IDs are derived
// from content and provenance, so indexing the same files twice does not
// create duplicates.
package ingestion
