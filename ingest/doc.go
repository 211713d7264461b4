// Package ingest provides pipeline orchestration for adding catalog items.
//
// The Pipeline type manages the ingestion workflow for food items, including:
//   - Validating incoming items
//   - Persisting them through the catalog repository
//   - Folding them into the search index asynchronously
//
// Index folding is performed concurrently using a worker pool. Errors during
// async folding are logged but do not fail the ingestion operation; the index
// catches up on the next full rebuild.
package ingest
