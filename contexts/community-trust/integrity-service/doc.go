// Package integrityservice computes the displayed trust score for an agent
// from the judged dilemmas they submitted. Scores are smoothed toward a
// neutral prior when the sample is thin and carry a confidence band and a
// trend estimate. Ghost-mode agents keep an internal score that public
// reads never see.
package integrityservice
