// Package catalog manages external package repositories and their cached
// metadata.
//
// A repository is a name plus the URL of a remote JSON package index. The
// index is fetched over HTTP and cached in Redis for an hour; fetches run
// as background tasks so mutating requests never wait on the remote.
//
// # Key Components
//
//   - Store: repository persistence (PostgreSQL implementation included)
//   - Cache: Redis-backed package metadata cache
//   - Fetcher: bounded-timeout HTTP client for remote indexes
//   - Service: orchestrates the three and schedules background work
//     through an async.Executor
package catalog
