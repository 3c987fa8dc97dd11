package delivery

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrUnsatisfiableRange covers both a header that does not match the strict
// bytes=start-end grammar and a computed range outside the file, since both
// answer with 416.
var ErrUnsatisfiableRange = errors.New("range not satisfiable")

// Strict single-range grammar. Multi-range and suffix forms are not served.
var rangeSpec = regexp.MustCompile(`^bytes=(\d*)-(\d*)$`)

// ByteRange is an inclusive byte span within an artifact.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the range covers.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the Content-Range header value for a satisfied range.
func (r ByteRange) ContentRange(total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, total)
}

// ParseRange parses a Range header against a file of the given size.
// Returns (nil, nil) when the header is empty. A missing end defaults to
// end-of-file and an out-of-range end clamps to size-1; a malformed header
// or a start at or past the file end is unsatisfiable.
func ParseRange(header string, size int64) (*ByteRange, error) {
	if header == "" {
		return nil, nil
	}

	m := rangeSpec.FindStringSubmatch(header)
	if m == nil {
		return nil, ErrUnsatisfiableRange
	}

	start := int64(0)
	if m[1] != "" {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, ErrUnsatisfiableRange
		}
		start = v
	}

	end := size - 1
	if m[2] != "" {
		v, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil, ErrUnsatisfiableRange
		}
		if v < size {
			end = v
		}
	}

	if start > end || start >= size {
		return nil, ErrUnsatisfiableRange
	}

	return &ByteRange{Start: start, End: end}, nil
}
