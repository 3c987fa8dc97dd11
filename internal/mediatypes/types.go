package mediatypes

// OutputFormat identifies a requested output format token.
type OutputFormat string

const (
	// FormatMP4 produces H.264 video in an MP4 container.
	FormatMP4 OutputFormat = "mp4"
	// FormatWebM produces VP9 video in a WebM container.
	FormatWebM OutputFormat = "webm"
	// FormatMKV produces H.264 video in a Matroska container.
	FormatMKV OutputFormat = "mkv"
	// FormatAV1 produces AV1 video in an MP4 container for broad compatibility.
	FormatAV1 OutputFormat = "av1"
)

// Preset identifies a target-platform size preset.
type Preset string

const (
	// PresetDiscord caps the output at Discord's upload limit.
	PresetDiscord Preset = "discord"
	// PresetTwitter caps the output at Twitter's upload limit.
	PresetTwitter Preset = "twitter"
	// PresetWhatsApp caps the output at WhatsApp's upload limit.
	PresetWhatsApp Preset = "whatsapp"
	// PresetCustom applies no platform ceiling.
	PresetCustom Preset = "custom"
)

// Enhancement identifies an optional single-stage video filter.
type Enhancement string

const (
	// EnhanceNone applies no filter stage.
	EnhanceNone Enhancement = "none"
	// EnhanceDenoise applies a spatio-temporal denoise filter.
	EnhanceDenoise Enhancement = "denoise"
	// EnhanceSharpen applies an unsharp-mask filter.
	EnhanceSharpen Enhancement = "sharpen"
)

// InputExtensions maps accepted upload extensions to whether they may be staged.
var InputExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".wmv":  true,
	".flv":  true,
	".m4v":  true,
}

// VideoExtensions maps extensions the listing endpoint recognizes as video artifacts.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".m4v":  "video/x-m4v",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".ogg":  "video/ogg",
}

// SupportedFormats lists every output format token the service accepts.
var SupportedFormats = map[OutputFormat]bool{
	FormatMP4:  true,
	FormatWebM: true,
	FormatMKV:  true,
	FormatAV1:  true,
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".mp4").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsAcceptedInput returns true if the extension is accepted for upload.
func IsAcceptedInput(ext string) bool {
	return InputExtensions[ext]
}

// IsVideoArtifact returns true if the extension is listed as a downloadable video.
func IsVideoArtifact(ext string) bool {
	return VideoExtensions[ext]
}
