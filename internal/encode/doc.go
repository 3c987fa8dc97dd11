// Package encode plans and executes size-targeted transcodes.
//
// It contains:
//   - the static format → profile table (container, codecs, audio bitrate)
//   - preset size ceilings for platform upload limits
//   - the bitrate planner deriving a video bitrate from a target size
//   - the pure argument-list builder for the external ffmpeg encoder
//   - the subprocess runner with in-flight process tracking
//
// Encoding is performed by FFmpeg, which must be installed and available in
// the system PATH.
package encode
