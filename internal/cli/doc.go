// Package cli implements the command-line interface for event-scout.
//
// The cli package provides the Cobra-based CLI for running a discovery
// pass, formatting output (text/JSON), post-filtering by score, source
// or keyword, and persisting ranked candidates to the snapshot store.
// It wires together the config, discovery, filter and store packages.
package cli
