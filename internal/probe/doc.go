// Package probe extracts clip durations using the ffprobe command-line tool.
//
// Two queries are attempted in order: the container-level format duration,
// then the duration of the first video stream. Non-finite or non-positive
// results are treated as failures so callers never plan an encode against a
// degenerate duration.
package probe
