package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxBaseNameLen caps sanitized base names so the final artifact name stays
// well under common filesystem limits.
const maxBaseNameLen = 180

// artifactLabel prefixes generated (non-custom) output names.
const artifactLabel = "Vicom"

// sanitizeBase reduces a user-supplied name to a filesystem-safe base:
// Unicode is NFKD-normalized, only word characters, whitespace, dots and
// hyphens survive, runs of whitespace collapse to a single space, and the
// result is trimmed and truncated.
func sanitizeBase(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	lastSpace := false
	for _, r := range decomposed {
		switch {
		case r == '_' || r == '.' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
		}
	}

	s := strings.TrimSpace(b.String())
	if len(s) > maxBaseNameLen {
		s = s[:maxBaseNameLen]
	}
	return s
}

// originalBase strips directory separators and the extension from an
// uploaded filename.
func originalBase(filename string) string {
	replaced := strings.NewReplacer("/", " ", "\\", " ").Replace(filename)
	ext := filepath.Ext(replaced)
	return strings.TrimSuffix(replaced, ext)
}

// proposeBaseName applies the output naming policy: the sanitized custom
// name when supplied (suffixed with the file's position when the request
// has several files), otherwise a generated label with the batch index or
// the sanitized original filename plus a timestamp.
func proposeBaseName(customName, uploadName string, index, fileCount int) string {
	if safe := sanitizeBase(customName); safe != "" {
		if fileCount > 1 {
			return fmt.Sprintf("%s_%d", safe, index+1)
		}
		return safe
	}

	if fileCount > 1 {
		return fmt.Sprintf("%s_%d", artifactLabel, index+1)
	}

	base := sanitizeBase(originalBase(uploadName))
	if base == "" {
		base = "file"
	}
	ts := strings.NewReplacer(":", "-", ".", "-").Replace(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	return fmt.Sprintf("%s_%s_%s", artifactLabel, base, ts)
}

// uniqueFileName resolves collisions with a linear probe, appending -2, -3,
// ... before the extension until the name is free in dir. Not idempotent
// for repeated identical uploads; callers must not assume stable names.
func uniqueFileName(dir, fileName string) (string, error) {
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)

	candidate := fileName
	for counter := 2; ; counter++ {
		_, err := os.Stat(filepath.Join(dir, candidate))
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d%s", base, counter, ext)
	}
}
