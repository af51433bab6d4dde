// Package provider supplies the matrices, metadata and networks that the
// pixel views render.
//
// # Overview
//
// A [Provider] answers five questions: load a dataset, return the motif
// significance profiles, return the graphlet degree vectors of one network,
// return a network's metadata, and return a network as a node-link graph.
// Orderings and cluster boundaries are decided by the provider; callers pass
// the requested [Ordering] through unchanged and never re-sort.
//
// Two implementations are available:
//
//   - [HTTPProvider] talks to a backend exposing /load_dataset, /get_motif_sp,
//     /get_gdv, /get_graph_meta and /get_graph_data. Responses are cached and
//     transient failures are retried with exponential backoff.
//   - [FileProvider] reads a local JSON [Bundle] with precomputed orderings.
//     [Watch] reloads the bundle when the file changes on disk.
//
// # Errors
//
// Failures carry a code from pkg/errors: NETWORK_ERROR once retries are
// exhausted, TIMEOUT when the context deadline passes, NOT_FOUND for 404s and
// INVALID_ORDERING for orderings the dataset does not provide.
package provider
