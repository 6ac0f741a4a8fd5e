// Package thresholdpolicy implements the verdict threshold service inside
// the dispute-resolution context.
//
// The module owns the population-keyed tier table that decides how many votes
// a dilemma needs, how long its voting window stays open, and what consensus
// percentage constitutes a clear verdict. Lookups are cached with a TTL and
// fall back to a conservative hardcoded tier when the backing store cannot
// answer, because the finalization path must stay available.
package thresholdpolicy
