package encode

import "math"

// Bitrate clamp bounds in kbps. Below the floor an encode is unwatchable;
// above the ceiling the size target is already met without compression and
// an extreme value signals a bad input such as a near-zero duration.
const (
	MinVideoBitrateKbps = 100
	MaxVideoBitrateKbps = 50000
)

// VideoBitrateKbps computes the video bitrate that fills targetSizeBytes over
// durationSeconds once the fixed audio budget is reserved.
//
// Pure and total: the caller validates durationSeconds > 0 so no division by
// zero is possible, and the result is always within
// [MinVideoBitrateKbps, MaxVideoBitrateKbps].
func VideoBitrateKbps(targetSizeBytes int64, durationSeconds float64, audioBitrateKbps int) int {
	audioBits := math.Floor(float64(audioBitrateKbps) * 1000 * durationSeconds)
	if audioBits < 0 {
		audioBits = 0
	}

	totalBits := float64(targetSizeBytes) * 8
	if totalBits < 8 {
		totalBits = 8
	}

	videoBits := totalBits - audioBits
	if videoBits < 0 {
		videoBits = 0
	}

	kbps := int(math.Floor(videoBits / durationSeconds / 1000))
	if kbps < MinVideoBitrateKbps {
		return MinVideoBitrateKbps
	}
	if kbps > MaxVideoBitrateKbps {
		return MaxVideoBitrateKbps
	}
	return kbps
}
