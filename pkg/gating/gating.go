// Package gating decides whether a field can be probed at all: it
// must be an attachment field and, when a validation context is
// declared, the record must register validations for that context.
package gating

import (
	"errors"
	"fmt"

	"digital.vasic.attachprobe/pkg/record"
)

var (
	// ErrNotAnAttachmentField is returned when the field is not
	// declared as an attachment field.
	ErrNotAnAttachmentField = errors.New("not an attachment field")

	// ErrUnsupportedContext is returned when no validation on the
	// field is registered for the declared context.
	ErrUnsupportedContext = errors.New("unsupported validation context")
)

// Check runs the field check, then the context check. The context
// check is skipped when vctx is the default context. Conditional
// validations (if/unless) are not evaluated here; they take effect
// through the record state during probing.
func Check(r record.Record, field string, vctx record.Context) error {
	if err := CheckField(r, field); err != nil {
		return err
	}
	return CheckContext(r, field, vctx)
}

// CheckField verifies field is an attachment field.
func CheckField(r record.Record, field string) error {
	if !r.IsAttachmentField(field) {
		return fmt.Errorf("%s: %w", field, ErrNotAnAttachmentField)
	}
	return nil
}

// CheckContext verifies the record honors vctx for field.
func CheckContext(r record.Record, field string, vctx record.Context) error {
	if vctx == record.DefaultContext {
		return nil
	}
	if !r.SupportsContext(field, vctx) {
		return fmt.Errorf(
			"%s on context %q: %w", field, vctx, ErrUnsupportedContext,
		)
	}
	return nil
}
