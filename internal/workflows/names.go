// Package workflows defines the Temporal workflow implementations for the
// generation pipeline, the batch supervisor, and the A/B variant runner.
package workflows

// Signal and query names form the public contract of a running instance.
// The server/client layer references these constants, never raw strings.
const (
	SignalPause  = "pause"
	SignalResume = "resume"
	SignalCancel = "cancel"
	SignalScale  = "scale"
	SignalStop   = "stop"

	QueryProgress    = "progress"
	QueryTotalCost   = "totalCost"
	QueryStatus      = "status"
	QueryMetrics     = "getMetrics"
	QueryBatchStatus = "getStatus"
)
