// Package metadata substitutes image metadata for synthetic
// attachments so dimension and aspect-ratio validators can be
// exercised without decoding any file.
//
// Overrides are plain values handed to the validation run, never
// process-wide patches: an override only exists for the duration of
// the callback it was created for.
package metadata

import "digital.vasic.attachprobe/pkg/record"

// Sentinel is the width/height value that no validator accepts.
const Sentinel = -1

// Unanalyzed is a provider with no metadata for any attachment.
var Unanalyzed record.MetadataProvider = record.MetadataProviderFunc(
	func(record.Attachment) (int, int, bool) { return 0, 0, false },
)

// Override answers dimension lookups for one attachment and
// delegates every other lookup to its base provider. An Override
// belongs to the single trial that created it and is not safe for
// concurrent use.
type Override struct {
	base     record.MetadataProvider
	key      string
	width    int
	height   int
	released bool
}

// NewOverride creates an active override for a. A nil base behaves
// like Unanalyzed.
func NewOverride(
	base record.MetadataProvider,
	a record.Attachment,
	width, height int,
) *Override {
	if base == nil {
		base = Unanalyzed
	}
	return &Override{
		base:   base,
		key:    a.Key(),
		width:  width,
		height: height,
	}
}

// Dimensions implements record.MetadataProvider.
func (o *Override) Dimensions(a record.Attachment) (int, int, bool) {
	if !o.released && a != nil && a.Key() == o.key {
		return o.width, o.height, true
	}
	if a == nil {
		return 0, 0, false
	}
	return o.base.Dimensions(a)
}

// Release restores base resolution. Safe to call more than once.
func (o *Override) Release() {
	o.released = true
}

// Released reports whether Release has been called.
func (o *Override) Released() bool {
	return o.released
}

// WithMocked runs fn with a provider that reports width and height
// for a. The override is released when fn returns or panics, so a
// provider captured inside fn falls back to base afterwards.
func WithMocked(
	base record.MetadataProvider,
	a record.Attachment,
	width, height int,
	fn func(meta record.MetadataProvider) error,
) error {
	o := NewOverride(base, a, width, height)
	defer o.Release()
	return fn(o)
}
