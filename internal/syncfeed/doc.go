// Package syncfeed pushes campaign snapshots to connected clients.
//
// The Broadcaster decouples the projector from its consumers: every
// published snapshot lands in a per-observer, per-campaign latest-wins
// slot, so a stalled client coalesces intermediate states instead of
// applying backpressure to the fold pipeline. Delivery order is
// verified with a feed-wide sequence number; an observer can miss
// snapshots but can never see them out of order.
//
// The Server exposes the feed over HTTP: an SSE stream per campaign for
// live UIs, plus a plain JSON snapshot endpoint for polling clients.
package syncfeed
