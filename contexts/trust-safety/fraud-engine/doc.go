// Package fraudengine implements the fraud signal engine inside the
// trust-safety context.
//
// The module owns the per-agent fraud score: an event-sourced, monotonically
// accumulating risk number with automatic suspension at a fixed ceiling.
// Every scoring call appends an immutable audit event, and the only
// score-decreasing operation is an explicit administrative unban. Device
// fingerprints and rate-limit logs live here too, along with their retention
// purge tasks.
package fraudengine
