// Package projector derives live campaign snapshots from the domain
// event stream.
//
// Apply is a pure, deterministic fold: replaying the same events from
// the zero state always yields the same CampaignState, and folding
// incrementally equals folding the whole sequence at once. The Manager
// gives each campaign exactly one fold worker, so a campaign's snapshot
// has a single writer and readers only ever see immutable copies.
//
// Events that contradict the snapshot invariants (a completion beyond
// the planned task total) raise an Inconsistency diagnostic that rides
// the sync feed; the counters stay capped but the problem is surfaced,
// not silently corrected.
package projector
