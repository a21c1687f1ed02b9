// Package message checks that a validator reports a declared custom
// error message. It runs one trial that no validator can accept and
// compares the messages on the field with the expected text.
package message

import (
	"errors"
	"fmt"
	"slices"

	"digital.vasic.attachprobe/pkg/attachment"
	"digital.vasic.attachprobe/pkg/metadata"
	"digital.vasic.attachprobe/pkg/probe"
	"digital.vasic.attachprobe/pkg/record"
)

// ErrCustomMessageMismatch is returned when the field does not carry
// the declared custom message.
var ErrCustomMessageMismatch = errors.New("custom message mismatch")

// Result is the outcome of a message verification.
type Result struct {
	// Expected is the declared custom message.
	Expected string `json:"expected"`

	// Actual holds every message found on the field.
	Actual []string `json:"actual"`

	// Matched is true when one message equals Expected exactly.
	Matched bool `json:"matched"`
}

// Err returns nil when matched, otherwise ErrCustomMessageMismatch
// wrapped with the expected and actual messages.
func (r *Result) Err() error {
	if r.Matched {
		return nil
	}
	return fmt.Errorf("%w: expected %q, got %q",
		ErrCustomMessageMismatch, r.Expected, r.Actual)
}

// InvalidTrial returns the trial guaranteed to fail for rule kind:
// an unknown content type for content-type rules, sentinel metadata
// otherwise.
func InvalidTrial(kind probe.Kind) probe.Trial {
	if kind == probe.KindContentType {
		return probe.Trial{
			Label:       "invalid:" + attachment.InvalidContentType,
			ContentType: attachment.InvalidContentType,
		}
	}
	return probe.Trial{
		Label:  "invalid:sentinel",
		Mocked: true,
		Width:  metadata.Sentinel,
		Height: metadata.Sentinel,
	}
}

// Verify runs the invalid trial for kind on field and requires an
// error message on the field equal to expected.
func Verify(
	e *probe.Engine,
	r record.Record,
	field string,
	vctx record.Context,
	kind probe.Kind,
	expected string,
) (*Result, error) {
	res, err := e.Execute(r, field, vctx, InvalidTrial(kind))
	if err != nil {
		return nil, fmt.Errorf("verify custom message: %w", err)
	}
	return &Result{
		Expected: expected,
		Actual:   res.Errors,
		Matched:  slices.Contains(res.Errors, expected),
	}, nil
}
