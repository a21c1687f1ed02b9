// Package model is an in-memory record implementation with
// attachment fields and declarative attachment validators. It plays
// the part of an application model so attachment rules can be probed
// without a database or real files.
package model

import (
	"errors"
	"fmt"
	"slices"

	"digital.vasic.attachprobe/pkg/record"
)

// ErrUnknownAttachment is returned when attaching to a field that is
// not declared as an attachment field.
var ErrUnknownAttachment = errors.New("unknown attachment field")

// Condition gates a validation on record state.
type Condition func(r *Record) bool

// Validation binds a validator to a field.
type Validation struct {
	// Field is the attachment field validated.
	Field string

	// Validator performs the check.
	Validator Validator

	// On restricts the validation to these contexts. Empty means
	// every context.
	On []record.Context

	// If, when set, must return true for the validation to run.
	If Condition

	// Unless, when set, must return false for the validation to
	// run.
	Unless Condition

	// Message replaces the validator's messages when set.
	Message string
}

func (v Validation) appliesIn(vctx record.Context) bool {
	return len(v.On) == 0 || slices.Contains(v.On, vctx)
}

// Schema declares a record type.
type Schema struct {
	name        string
	attachments []string
	attributes  map[string]any
	validations []Validation
}

// NewSchema declares a record type with the given attachment
// fields.
func NewSchema(name string, attachments ...string) *Schema {
	return &Schema{
		name:        name,
		attachments: slices.Clone(attachments),
		attributes:  make(map[string]any),
	}
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Attribute declares a plain attribute with a default value.
func (s *Schema) Attribute(name string, def any) *Schema {
	s.attributes[name] = def
	return s
}

// Validates adds a validation.
func (s *Schema) Validates(v Validation) *Schema {
	s.validations = append(s.validations, v)
	return s
}

// AttachmentFields returns the declared attachment fields.
func (s *Schema) AttachmentFields() []string {
	return slices.Clone(s.attachments)
}

// Validations returns the declared validations.
func (s *Schema) Validations() []Validation {
	return slices.Clone(s.validations)
}

// New builds a fresh record with default attributes.
func (s *Schema) New() *Record {
	attrs := make(map[string]any, len(s.attributes))
	for k, v := range s.attributes {
		attrs[k] = v
	}
	return &Record{
		schema:      s,
		attrs:       attrs,
		attachments: make(map[string]*Attachment),
	}
}

// Subject returns a record.Subject that builds a fresh record for
// every assertion.
func (s *Schema) Subject() record.Subject {
	return record.Factory(s.name, func() record.Record { return s.New() })
}

// Record is an instance of a Schema.
type Record struct {
	schema      *Schema
	attrs       map[string]any
	attachments map[string]*Attachment
	seq         int
	validated   int
}

// Set assigns an attribute.
func (r *Record) Set(name string, value any) *Record {
	r.attrs[name] = value
	return r
}

// Get returns an attribute value.
func (r *Record) Get(name string) any { return r.attrs[name] }

// Attachment returns the current attachment on field, or nil.
func (r *Record) Attachment(field string) *Attachment {
	return r.attachments[field]
}

// ValidationRuns returns how many times Validate has run.
func (r *Record) ValidationRuns() int { return r.validated }

// IsAttachmentField implements record.Record.
func (r *Record) IsAttachmentField(name string) bool {
	return slices.Contains(r.schema.attachments, name)
}

// Attach implements record.Record. Every call creates a new
// attachment with a new key.
func (r *Record) Attach(
	name string,
	d record.Descriptor,
) (record.Attachment, error) {
	if !r.IsAttachmentField(name) {
		return nil, fmt.Errorf(
			"%s.%s: %w", r.schema.name, name, ErrUnknownAttachment,
		)
	}
	r.seq++
	a := &Attachment{
		key:         fmt.Sprintf("%s/%s/%d", r.schema.name, name, r.seq),
		field:       name,
		filename:    d.Filename,
		contentType: d.ContentType,
		size:        len(d.Payload),
	}
	r.attachments[name] = a
	return a, nil
}

// Validate implements record.Record.
func (r *Record) Validate(
	vctx record.Context,
	meta record.MetadataProvider,
) (*record.Outcome, error) {
	r.validated++
	out := record.NewOutcome()
	for _, v := range r.schema.validations {
		if !v.appliesIn(vctx) {
			continue
		}
		if v.If != nil && !v.If(r) {
			continue
		}
		if v.Unless != nil && v.Unless(r) {
			continue
		}
		a := r.attachments[v.Field]
		if a == nil {
			continue
		}
		if v.Validator == nil {
			return nil, fmt.Errorf(
				"%s.%s: validation has no validator",
				r.schema.name, v.Field,
			)
		}
		msgs := v.Validator.Check(a, meta)
		if len(msgs) > 0 && v.Message != "" {
			msgs = []string{v.Message}
		}
		for _, m := range msgs {
			out.Add(v.Field, m)
		}
	}
	return out, nil
}

// SupportsContext implements record.Record.
func (r *Record) SupportsContext(name string, vctx record.Context) bool {
	for _, v := range r.schema.validations {
		if v.Field == name && slices.Contains(v.On, vctx) {
			return true
		}
	}
	return false
}

// Attachment is a file attached to a Record.
type Attachment struct {
	key         string
	field       string
	filename    string
	contentType string
	size        int
}

// Key identifies the attachment for metadata lookups.
func (a *Attachment) Key() string { return a.key }

// Field returns the attachment field name.
func (a *Attachment) Field() string { return a.field }

// Filename returns the declared file name.
func (a *Attachment) Filename() string { return a.filename }

// ContentType returns the declared MIME type.
func (a *Attachment) ContentType() string { return a.contentType }

// Size is the payload length in bytes.
func (a *Attachment) Size() int { return a.size }

// AttributeEquals is a Condition comparing an attribute to value.
func AttributeEquals(name string, value any) Condition {
	return func(r *Record) bool { return r.Get(name) == value }
}

// AttributeTruthy is a Condition true when an attribute is set to
// anything but nil, false, zero or "".
func AttributeTruthy(name string) Condition {
	return func(r *Record) bool {
		switch v := r.Get(name).(type) {
		case nil:
			return false
		case bool:
			return v
		case int:
			return v != 0
		case float64:
			return v != 0
		case string:
			return v != ""
		}
		return true
	}
}
