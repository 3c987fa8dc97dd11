// Package pipeline orchestrates the per-file transcode workflow.
//
// Each uploaded file moves through its own instance of the state machine
// (validate, stage, probe, plan, encode, finalize); the staged input is
// removed unconditionally at the end of processing, and the encoder writes
// to a hidden in-flight name that is only renamed into place after a clean
// exit so concurrent delivery requests never see a partial artifact.
package pipeline
