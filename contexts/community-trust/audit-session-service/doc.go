// Package auditsessionservice manages master-audit quiz sessions. A session
// is created when an agent consumes an entitlement, graded exactly once on
// completion, and expired by the nightly sweep when its time box lapses.
// Completed and expired sessions are terminal.
package auditsessionservice
