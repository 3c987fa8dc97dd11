package encode

import (
	"errors"
	"fmt"

	"vicom/internal/mediatypes"
)

// ErrUnsupportedFormat indicates a format token outside the supported set.
// Unknown tokens fail instead of silently defaulting to mp4.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Profile is the fixed encoding quadruple for one output format. Profiles
// never mix codecs across containers.
type Profile struct {
	Container        string
	VideoCodec       string
	AudioCodec       string
	AudioBitrateKbps int
	ExtraFlags       []string
}

// ResolveProfile maps a requested output format to its encoding profile.
func ResolveProfile(format mediatypes.OutputFormat) (Profile, error) {
	switch format {
	case mediatypes.FormatMP4:
		return Profile{
			Container:        "mp4",
			VideoCodec:       "libx264",
			AudioCodec:       "aac",
			AudioBitrateKbps: 96,
		}, nil
	case mediatypes.FormatWebM:
		return Profile{
			Container:        "webm",
			VideoCodec:       "libvpx-vp9",
			AudioCodec:       "libopus",
			AudioBitrateKbps: 96,
			ExtraFlags:       []string{"-row-mt", "1"},
		}, nil
	case mediatypes.FormatMKV:
		return Profile{
			Container:        "mkv",
			VideoCodec:       "libx264",
			AudioCodec:       "aac",
			AudioBitrateKbps: 96,
		}, nil
	case mediatypes.FormatAV1:
		// AV1 in MP4 for broad compatibility.
		return Profile{
			Container:        "mp4",
			VideoCodec:       "libsvtav1",
			AudioCodec:       "aac",
			AudioBitrateKbps: 96,
		}, nil
	default:
		return Profile{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Platform upload ceilings in megabytes. The ceiling is a hard upper bound
// on the requested target size, not a suggestion.
const (
	discordCeilingMB  = 10
	twitterCeilingMB  = 15
	whatsappCeilingMB = 16
	customDefaultMB   = 25
)

// EffectiveSizeMB applies the preset's platform ceiling to a requested target
// size. A zero requested size selects the preset's ceiling (or the custom
// default), and the custom path is floored at 1 MB.
func EffectiveSizeMB(preset mediatypes.Preset, requestedMB float64) float64 {
	switch preset {
	case mediatypes.PresetDiscord:
		return capOrDefault(requestedMB, discordCeilingMB)
	case mediatypes.PresetTwitter:
		return capOrDefault(requestedMB, twitterCeilingMB)
	case mediatypes.PresetWhatsApp:
		return capOrDefault(requestedMB, whatsappCeilingMB)
	default:
		if requestedMB <= 0 {
			requestedMB = customDefaultMB
		}
		if requestedMB < 1 {
			return 1
		}
		return requestedMB
	}
}

func capOrDefault(requestedMB float64, ceilingMB float64) float64 {
	if requestedMB <= 0 || requestedMB > ceilingMB {
		return ceilingMB
	}
	return requestedMB
}
