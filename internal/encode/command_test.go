package encode

import (
	"reflect"
	"strings"
	"testing"

	"vicom/internal/mediatypes"
)

func mustProfile(t *testing.T, format mediatypes.OutputFormat) Profile {
	t.Helper()
	p, err := ResolveProfile(format)
	if err != nil {
		t.Fatalf("ResolveProfile(%s) error: %v", format, err)
	}
	return p
}

func indexOf(args []string, token string) int {
	for i, a := range args {
		if a == token {
			return i
		}
	}
	return -1
}

func TestBuildArgsX264(t *testing.T) {
	args := BuildArgs(CommandSpec{
		InputPath:        "/in/a.mp4",
		OutputPath:       "/out/b.mp4",
		Profile:          mustProfile(t, mediatypes.FormatMP4),
		VideoBitrateKbps: 800,
	})

	want := []string{
		"-y", "-i", "/in/a.mp4",
		"-c:v", "libx264",
		"-crf", "23",
		"-preset", "slow",
		"-maxrate", "800k",
		"-bufsize", "1600k",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac", "-b:a", "96k",
		"-movflags", "+faststart",
		"/out/b.mp4",
	}

	if !reflect.DeepEqual(args, want) {
		t.Errorf("BuildArgs() =\n%v\nwant\n%v", args, want)
	}
}

func TestBuildArgsVP9(t *testing.T) {
	args := BuildArgs(CommandSpec{
		InputPath:        "/in/a.mkv",
		OutputPath:       "/out/b.webm",
		Profile:          mustProfile(t, mediatypes.FormatWebM),
		VideoBitrateKbps: 1200,
	})

	joined := strings.Join(args, " ")

	// Explicit target bitrate plus VBV cap for VP9.
	for _, frag := range []string{"-c:v libvpx-vp9", "-b:v 1200k", "-maxrate 1200k", "-bufsize 2400k", "-row-mt 1", "-c:a libopus -b:a 96k"} {
		if !strings.Contains(joined, frag) {
			t.Errorf("Expected %q in args: %v", frag, args)
		}
	}

	if strings.Contains(joined, "faststart") {
		t.Error("WebM output must not request MP4 faststart")
	}
	if args[len(args)-1] != "/out/b.webm" {
		t.Errorf("Expected output path last, got %s", args[len(args)-1])
	}
}

func TestBuildArgsAV1(t *testing.T) {
	args := BuildArgs(CommandSpec{
		InputPath:        "/in/a.mov",
		OutputPath:       "/out/b.mp4",
		Profile:          mustProfile(t, mediatypes.FormatAV1),
		VideoBitrateKbps: 500,
	})

	joined := strings.Join(args, " ")
	for _, frag := range []string{"-c:v libsvtav1", "-crf 35", "-preset 6", "-maxrate 500k", "-bufsize 1000k", "-movflags +faststart"} {
		if !strings.Contains(joined, frag) {
			t.Errorf("Expected %q in args: %v", frag, args)
		}
	}
}

func TestBuildArgsTrim(t *testing.T) {
	tests := []struct {
		name     string
		trim     *TrimWindow
		wantTrim bool
	}{
		{"NoWindow", nil, false},
		{"ValidWindow", &TrimWindow{Start: 10, End: 30}, true},
		{"StartEqualsEnd", &TrimWindow{Start: 30, End: 30}, false},
		{"Inverted", &TrimWindow{Start: 30, End: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := BuildArgs(CommandSpec{
				InputPath:        "/in/a.mp4",
				OutputPath:       "/out/b.mp4",
				Profile:          mustProfile(t, mediatypes.FormatMP4),
				VideoBitrateKbps: 800,
				Trim:             tt.trim,
			})

			ss := indexOf(args, "-ss")
			if tt.wantTrim {
				if ss == -1 || indexOf(args, "-to") == -1 {
					t.Fatalf("Expected trim flags in %v", args)
				}
				// Seek flags sit between the input reference and codec flags.
				if ss < indexOf(args, "-i") || ss > indexOf(args, "-c:v") {
					t.Errorf("Trim flags out of position: %v", args)
				}
				if args[ss+1] != "10" || args[indexOf(args, "-to")+1] != "30" {
					t.Errorf("Wrong trim bounds: %v", args)
				}
			} else if ss != -1 {
				t.Errorf("Unexpected trim flags in %v", args)
			}
		})
	}
}

func TestBuildArgsPreservationAndEnhancement(t *testing.T) {
	args := BuildArgs(CommandSpec{
		InputPath:         "/in/a file with spaces.mp4",
		OutputPath:        "/out/b.mp4",
		Profile:           mustProfile(t, mediatypes.FormatMP4),
		VideoBitrateKbps:  800,
		PreserveMetadata:  true,
		PreserveSubtitles: true,
		Enhancement:       mediatypes.EnhanceDenoise,
	})

	joined := strings.Join(args, "\x00")
	for _, frag := range []string{"-map_metadata\x000", "-c:s\x00copy", "-vf\x00hqdn3d"} {
		if !strings.Contains(joined, frag) {
			t.Errorf("Expected %q tokens in %v", strings.ReplaceAll(frag, "\x00", " "), args)
		}
	}

	// Paths stay single discrete tokens, never shell-quoted.
	if indexOf(args, "/in/a file with spaces.mp4") == -1 {
		t.Errorf("Input path was mangled: %v", args)
	}
}

func TestBuildArgsSharpen(t *testing.T) {
	args := BuildArgs(CommandSpec{
		InputPath:        "/in/a.mp4",
		OutputPath:       "/out/b.mp4",
		Profile:          mustProfile(t, mediatypes.FormatMP4),
		VideoBitrateKbps: 800,
		Enhancement:      mediatypes.EnhanceSharpen,
	})

	vf := indexOf(args, "-vf")
	if vf == -1 || args[vf+1] != "unsharp" {
		t.Errorf("Expected unsharp filter stage, got %v", args)
	}
}

func TestBuildArgsNoEnhancement(t *testing.T) {
	args := BuildArgs(CommandSpec{
		InputPath:        "/in/a.mp4",
		OutputPath:       "/out/b.mp4",
		Profile:          mustProfile(t, mediatypes.FormatMP4),
		VideoBitrateKbps: 800,
		Enhancement:      mediatypes.EnhanceNone,
	})

	if indexOf(args, "-vf") != -1 {
		t.Errorf("Expected no filter stage, got %v", args)
	}
}
