// Package attachment builds the minimal synthetic files the probe
// attaches to records. File content is never inspected by the probe;
// only the declared name and content type matter.
package attachment

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"digital.vasic.attachprobe/pkg/record"
)

// DefaultContentType is used when a spec declares no content type.
const DefaultContentType = "image/png"

// InvalidContentType is a content type no real validator allows.
const InvalidContentType = "fake/fake"

// Payload is the fixed byte content of every synthetic file.
var Payload = []byte("Hello world!")

// Spec describes the synthetic file to attach.
type Spec struct {
	// ContentType is the declared MIME type. Defaults to
	// DefaultContentType.
	ContentType string

	// Name is the file name. Defaults to FileName(ContentType).
	Name string
}

// Builder attaches synthetic files to records.
type Builder struct {
	payload []byte
}

// NewBuilder creates a Builder using the fixed Payload.
func NewBuilder() *Builder {
	return &Builder{payload: Payload}
}

// Attach attaches a synthetic file to field and returns the live
// attachment. Each call replaces the previous attachment on field.
func (b *Builder) Attach(
	r record.Record,
	field string,
	s Spec,
) (record.Attachment, error) {
	d := b.Descriptor(s)
	a, err := r.Attach(field, d)
	if err != nil {
		return nil, fmt.Errorf(
			"attach %s to %s: %w", d.Filename, field, err,
		)
	}
	if a == nil {
		return nil, fmt.Errorf(
			"attach %s to %s: record returned no attachment",
			d.Filename, field,
		)
	}
	return a, nil
}

// Descriptor resolves defaults in s into a record.Descriptor.
func (b *Builder) Descriptor(s Spec) record.Descriptor {
	ct := s.ContentType
	if ct == "" {
		ct = DefaultContentType
	}
	name := s.Name
	if name == "" {
		name = FileName(ct)
	}
	payload := make([]byte, len(b.payload))
	copy(payload, b.payload)
	return record.Descriptor{
		Payload:     payload,
		Filename:    name,
		ContentType: ct,
	}
}

// FileName returns "test" plus the extension registered for
// contentType, or the MIME subtype when the type is unknown.
func FileName(contentType string) string {
	if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		return "test" + m.Extension()
	}
	suffix := contentType
	if i := strings.LastIndex(contentType, "/"); i >= 0 {
		suffix = contentType[i+1:]
	}
	if suffix == "" {
		return "test"
	}
	return "test." + suffix
}
