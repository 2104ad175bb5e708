// Package events defines the domain event variants raised by campaign,
// task, and lead lifecycle transitions, and the bus that carries them.
//
// Events are immutable facts. Producers stamp them with a globally
// unique id and a timestamp at emission (NewMeta); the bus adds no
// ordering key beyond arrival order. Within one campaign, subscribers
// observe events in the order Publish was called; across campaigns no
// ordering is implied.
//
// The bus is the only write path into the state projection: external
// collaborators publish, the projector subscribes and folds.
package events
