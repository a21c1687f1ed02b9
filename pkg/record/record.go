// Package record defines the contract between the attachment probe
// and the record abstraction that owns attachment fields and runs
// validations. The probe only ever talks to a record through these
// interfaces.
package record

// Context names a validation context (e.g., "create", "update").
// The zero value is the record's default context.
type Context string

// DefaultContext is the record's standard validation context.
const DefaultContext Context = ""

// Record is a data record with attachment fields and validations.
type Record interface {
	// IsAttachmentField reports whether name is declared as an
	// attachment field on the record type.
	IsAttachmentField(name string) bool

	// Attach stores a file under the named attachment field and
	// returns the live attachment. Attaching again replaces the
	// previous attachment for that field.
	Attach(name string, d Descriptor) (Attachment, error)

	// Validate runs every validation applicable in vctx. Image
	// metadata is resolved exclusively through meta.
	Validate(vctx Context, meta MetadataProvider) (*Outcome, error)

	// SupportsContext reports whether validations on the named
	// field are registered for vctx.
	SupportsContext(name string, vctx Context) bool
}

// Attachment is a file attached to a record field.
type Attachment interface {
	// Key identifies the attachment for metadata lookups.
	Key() string

	// Field is the attachment field name.
	Field() string

	// Filename is the declared file name.
	Filename() string

	// ContentType is the declared MIME type.
	ContentType() string
}

// Descriptor describes a file to attach.
type Descriptor struct {
	Payload     []byte
	Filename    string
	ContentType string
}

// MetadataProvider resolves image metadata for attachments.
type MetadataProvider interface {
	// Dimensions returns the width and height of the attachment.
	// ok is false when no metadata is available.
	Dimensions(a Attachment) (width, height int, ok bool)
}

// MetadataProviderFunc adapts a function to MetadataProvider.
type MetadataProviderFunc func(a Attachment) (int, int, bool)

// Dimensions calls f(a).
func (f MetadataProviderFunc) Dimensions(
	a Attachment,
) (int, int, bool) {
	return f(a)
}
