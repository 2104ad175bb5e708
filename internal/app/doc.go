// Package app bootstraps and runs the campaignd daemon.
//
// NewApplication loads the daemon configuration and tool server
// manifest, then builds the full pipeline: registry, event bus,
// projector and sync feed. Run launches the configured tool servers,
// serves the feed over HTTP and, when enabled, hot-reloads the manifest
// on change by swapping in a fresh registry generation.
package app
