package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"digital.vasic.attachprobe/pkg/record"
)

// Validator checks one attachment. It returns the error messages to
// add, or nil when the attachment is valid.
type Validator interface {
	// Kind names the validator (e.g., "content_type").
	Kind() string

	// Check validates a using meta for image metadata.
	Check(a record.Attachment, meta record.MetadataProvider) []string
}

// Default messages.
const (
	MsgInvalidContentType = "has an invalid content type"
	MsgInvalidImage       = "is not a valid image"
)

// ContentType accepts attachments whose declared type is listed.
// An entry like "image/*" accepts every subtype.
type ContentType struct {
	Allowed []string
}

// Kind implements Validator.
func (ContentType) Kind() string { return "content_type" }

// Check implements Validator.
func (v ContentType) Check(
	a record.Attachment,
	_ record.MetadataProvider,
) []string {
	ct := strings.ToLower(a.ContentType())
	for _, allowed := range v.Allowed {
		allowed = strings.ToLower(allowed)
		if allowed == ct {
			return nil
		}
		if prefix, ok := strings.CutSuffix(allowed, "/*"); ok &&
			strings.HasPrefix(ct, prefix+"/") {
			return nil
		}
	}
	return []string{MsgInvalidContentType}
}

// Dimension bounds width and height inclusively. Nil bounds are
// unchecked.
type Dimension struct {
	WidthMin  *int
	WidthMax  *int
	HeightMin *int
	HeightMax *int
}

// Kind implements Validator.
func (Dimension) Kind() string { return "dimension" }

// Check implements Validator.
func (v Dimension) Check(
	a record.Attachment,
	meta record.MetadataProvider,
) []string {
	w, h, ok := imageSize(a, meta)
	if !ok {
		return []string{MsgInvalidImage}
	}
	var msgs []string
	msgs = append(msgs, checkBounds("width", w, v.WidthMin, v.WidthMax)...)
	msgs = append(msgs, checkBounds("height", h, v.HeightMin, v.HeightMax)...)
	return msgs
}

func checkBounds(dim string, val int, lo, hi *int) []string {
	if lo != nil && hi != nil && *lo == *hi {
		if val != *lo {
			return []string{fmt.Sprintf(
				"%s must be equal to %d pixel", dim, *lo,
			)}
		}
		return nil
	}
	var msgs []string
	if lo != nil && val < *lo {
		msgs = append(msgs, fmt.Sprintf(
			"%s must be greater than or equal to %d pixel", dim, *lo,
		))
	}
	if hi != nil && val > *hi {
		msgs = append(msgs, fmt.Sprintf(
			"%s must be less than or equal to %d pixel", dim, *hi,
		))
	}
	return msgs
}

var ratioFormat = regexp.MustCompile(`^(?:is_(\d+)_(\d+)|(\d+):(\d+))$`)

// AspectRatio requires "square", "portrait", "landscape" or an
// exact "W:H" / "is_W_H" ratio.
type AspectRatio struct {
	Ratio string
}

// Kind implements Validator.
func (AspectRatio) Kind() string { return "aspect_ratio" }

// Check implements Validator.
func (v AspectRatio) Check(
	a record.Attachment,
	meta record.MetadataProvider,
) []string {
	w, h, ok := imageSize(a, meta)
	if !ok {
		return []string{MsgInvalidImage}
	}
	switch v.Ratio {
	case "square":
		if w != h {
			return []string{"must be a square image"}
		}
		return nil
	case "portrait":
		if w >= h {
			return []string{"must be a portrait image"}
		}
		return nil
	case "landscape":
		if w <= h {
			return []string{"must be a landscape image"}
		}
		return nil
	}

	m := ratioFormat.FindStringSubmatch(v.Ratio)
	if m == nil {
		return []string{"has an unsupported aspect ratio"}
	}
	xs, ys := m[1], m[2]
	if xs == "" {
		xs, ys = m[3], m[4]
	}
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil || x == 0 || y == 0 {
		return []string{"has an unsupported aspect ratio"}
	}
	if w*y != h*x {
		return []string{fmt.Sprintf(
			"must have an aspect ratio of %d:%d", x, y,
		)}
	}
	return nil
}

// imageSize resolves dimensions; non-positive values count as
// missing metadata.
func imageSize(
	a record.Attachment,
	meta record.MetadataProvider,
) (int, int, bool) {
	if meta == nil {
		return 0, 0, false
	}
	w, h, ok := meta.Dimensions(a)
	if !ok || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

