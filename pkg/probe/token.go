package probe

import (
	"regexp"
	"strconv"

	"digital.vasic.attachprobe/pkg/metadata"
)

// Named aspect ratio tokens.
const (
	Square    = "square"
	Portrait  = "portrait"
	Landscape = "landscape"
)

// RatioPattern matches "W:H" and "is_W_H" ratio tokens.
var RatioPattern = regexp.MustCompile(`^(?:(\d+):(\d+)|is_(\d+)_(\d+))$`)

// AspectDimensions returns a representative width and height for an
// aspect ratio token. Unrecognized tokens yield the sentinel pair.
func AspectDimensions(token string) (width, height int) {
	switch token {
	case Square:
		return 100, 100
	case Portrait:
		return 100, 200
	case Landscape:
		return 200, 100
	}

	x, y, ok := ParseRatio(token)
	if !ok {
		return metadata.Sentinel, metadata.Sentinel
	}
	return 100 * x, 100 * y
}

// ParseRatio extracts W and H from a ratio token.
func ParseRatio(token string) (x, y int, ok bool) {
	m := RatioPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, 0, false
	}
	xs, ys := m[1], m[2]
	if xs == "" {
		xs, ys = m[3], m[4]
	}
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil || x > 1<<20 || y > 1<<20 {
		return 0, 0, false
	}
	return x, y, true
}
