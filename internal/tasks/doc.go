// Package tasks runs long playlist operations on top of a [services.Service].
//
// # Bulk Export
//
// [BulkExport] exports many playlists concurrently. Fetches are paced with a token bucket
// ([Options.RateLimit] requests per second) and run on a bounded worker pool
// ([Options.NumWorkers], at most 10). A failed playlist is recorded in the [Result] and does not
// stop the others. Every run ends by writing export_manifest.json into the output directory.
//
// # Progress Reporting
//
// When [Options.Progress] is set, each playlist emits [ProgressUpdate] values as it is fetched,
// written, or fails. Sends never block: an update is dropped when the channel is full.
package tasks
