// Package verdictengine owns the dilemma and vote ledger: casting weighted
// blind verdicts, keeping the denormalized tallies honest, and driving a
// dilemma from active to closed once the population-tier thresholds say the
// window is done. Vote weight is snapshotted at cast time from the voter's
// account attributes and fraud standing.
package verdictengine
