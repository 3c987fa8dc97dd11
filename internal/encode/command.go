package encode

import (
	"strconv"

	"vicom/internal/mediatypes"
)

// TrimWindow is an inclusive-start/exclusive-end range in whole seconds.
type TrimWindow struct {
	Start int
	End   int
}

// CommandSpec carries everything needed to render one ffmpeg invocation.
type CommandSpec struct {
	InputPath  string
	OutputPath string

	Profile          Profile
	VideoBitrateKbps int

	// Trim is nil when the whole clip is encoded.
	Trim *TrimWindow

	PreserveMetadata  bool
	PreserveSubtitles bool
	Enhancement       mediatypes.Enhancement
}

// BuildArgs renders the ordered ffmpeg argument list for a command spec.
//
// Arguments are discrete tokens handed to the subprocess directly; nothing
// here is ever joined into a shell string, so paths containing spaces or
// shell metacharacters need no quoting.
func BuildArgs(spec CommandSpec) []string {
	args := []string{"-y", "-i", spec.InputPath}

	// Accurate (not keyframe-snapped) trim, placed before codec flags.
	if spec.Trim != nil && spec.Trim.Start < spec.Trim.End {
		args = append(args,
			"-ss", strconv.Itoa(spec.Trim.Start),
			"-to", strconv.Itoa(spec.Trim.End),
		)
	}

	kbps := strconv.Itoa(spec.VideoBitrateKbps)
	bufsize := strconv.Itoa(spec.VideoBitrateKbps * 2)

	args = append(args, "-c:v", spec.Profile.VideoCodec)
	switch spec.Profile.VideoCodec {
	case "libx264":
		// CRF with a VBV cap: short-term variance is bounded by bufsize
		// while the maxrate keeps the average on the size target.
		args = append(args,
			"-crf", "23",
			"-preset", "slow",
			"-maxrate", kbps+"k",
			"-bufsize", bufsize+"k",
			"-pix_fmt", "yuv420p",
		)
	case "libvpx-vp9":
		args = append(args,
			"-b:v", kbps+"k",
			"-maxrate", kbps+"k",
			"-bufsize", bufsize+"k",
			"-pix_fmt", "yuv420p",
		)
	case "libsvtav1":
		args = append(args,
			"-crf", "35",
			"-preset", "6",
			"-maxrate", kbps+"k",
			"-bufsize", bufsize+"k",
			"-pix_fmt", "yuv420p",
		)
	}

	// Audio is always re-encoded to the profile's fixed codec and bitrate,
	// independent of metadata/subtitle preservation.
	args = append(args, "-c:a", spec.Profile.AudioCodec, "-b:a", strconv.Itoa(spec.Profile.AudioBitrateKbps)+"k")

	if spec.PreserveMetadata {
		args = append(args, "-map_metadata", "0")
	}
	if spec.PreserveSubtitles {
		args = append(args, "-c:s", "copy")
	}

	switch spec.Enhancement {
	case mediatypes.EnhanceDenoise:
		args = append(args, "-vf", "hqdn3d")
	case mediatypes.EnhanceSharpen:
		args = append(args, "-vf", "unsharp")
	}

	args = append(args, spec.Profile.ExtraFlags...)

	// MP4-family output relocates the index to the front of the file so
	// progressive playback can start before the download completes.
	if spec.Profile.Container == "mp4" {
		args = append(args, "-movflags", "+faststart")
	}

	return append(args, spec.OutputPath)
}
