// Package anomalydetection hosts the statistical voting detectors. The
// timing detector looks for mechanical cadence in one agent's recent votes
// and the correlation detector looks for coordinated pairs. Both only emit
// fraud events through a reporter port; suspension decisions stay with the
// fraud engine.
package anomalydetection
