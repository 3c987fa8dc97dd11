package encode

import "testing"

func TestVideoBitrateKbps(t *testing.T) {
	tests := []struct {
		name      string
		bytes     int64
		duration  float64
		audioKbps int
		want      int
	}{
		// floor((10*1024*1024*8 - 96000*120) / 120 / 1000) = 603
		{"TenMBTwoMinutes", 10 * 1024 * 1024, 120, 96, 603},
		// floor((25*1024*1024*8 - 96000*60) / 60 / 1000) = 3399
		{"TwentyFiveMBOneMinute", 25 * 1024 * 1024, 60, 96, 3399},
		{"TinyTargetClampsToFloor", 1024, 120, 96, MinVideoBitrateKbps},
		{"AudioEatsWholeBudget", 100 * 1024, 600, 96, MinVideoBitrateKbps},
		{"HugeTargetClampsToCeiling", 5 * 1024 * 1024 * 1024, 10, 96, MaxVideoBitrateKbps},
		{"NoAudioReservation", 1024 * 1024, 8, 0, 1048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VideoBitrateKbps(tt.bytes, tt.duration, tt.audioKbps)
			if got != tt.want {
				t.Errorf("VideoBitrateKbps(%d, %v, %d) = %d, want %d",
					tt.bytes, tt.duration, tt.audioKbps, got, tt.want)
			}
		})
	}
}

func TestVideoBitrateKbpsAlwaysWithinClamp(t *testing.T) {
	sizes := []int64{1, 1024, 1024 * 1024, 100 * 1024 * 1024, 10 * 1024 * 1024 * 1024}
	durations := []float64{0.04, 1, 30, 120, 3600, 86400}

	for _, size := range sizes {
		for _, d := range durations {
			got := VideoBitrateKbps(size, d, 96)
			if got < MinVideoBitrateKbps || got > MaxVideoBitrateKbps {
				t.Errorf("VideoBitrateKbps(%d, %v, 96) = %d, outside [%d, %d]",
					size, d, got, MinVideoBitrateKbps, MaxVideoBitrateKbps)
			}
		}
	}
}

func TestVideoBitrateKbpsMonotonicInTargetSize(t *testing.T) {
	prev := 0
	for _, size := range []int64{1 << 20, 2 << 20, 4 << 20, 8 << 20, 16 << 20, 32 << 20} {
		got := VideoBitrateKbps(size, 120, 96)
		if got < prev {
			t.Errorf("Bitrate decreased as target size grew: %d < %d at size %d", got, prev, size)
		}
		prev = got
	}
}

func TestVideoBitrateKbpsNonIncreasingInDuration(t *testing.T) {
	prev := MaxVideoBitrateKbps + 1
	for _, d := range []float64{10, 30, 60, 120, 600, 3600} {
		got := VideoBitrateKbps(50*1024*1024, d, 96)
		if got > prev {
			t.Errorf("Bitrate increased as duration grew: %d > %d at duration %v", got, prev, d)
		}
		prev = got
	}
}
