// Package matcher is the assertion surface for test authors. Each
// matcher is an immutable value: chain methods return a modified
// copy, so a partially configured matcher can be shared and extended
// without affecting other users.
//
//	m := matcher.ValidateContentTypeOf("avatar").
//		Allowing("image/png").
//		Rejecting("image/gif")
//	res, err := m.Match(record.Factory("user", newUser))
//
// Match runs the gating checks, then the rule probe, then the custom
// message check, stopping at the first stage that fails.
package matcher

import (
	"errors"
	"fmt"

	"digital.vasic.attachprobe/pkg/gating"
	"digital.vasic.attachprobe/pkg/message"
	"digital.vasic.attachprobe/pkg/probe"
	"digital.vasic.attachprobe/pkg/record"
)

// Matcher is implemented by every attachment matcher.
type Matcher interface {
	// Field returns the attachment field under test.
	Field() string

	// Kind returns the rule kind probed.
	Kind() probe.Kind

	// Rule returns the declared rule.
	Rule() probe.Rule

	// Description returns a one-line summary of the assertion.
	Description() string

	// Match runs the assertion against the subject. A non-nil
	// error means a collaborator failed; assertion failures are
	// reported through the Result.
	Match(s record.Subject) (*Result, error)
}

// config is the state shared by every matcher kind.
type config struct {
	field   string
	vctx    record.Context
	message string
	engine  *probe.Engine
}

func (c config) probeEngine() *probe.Engine {
	if c.engine == nil {
		return probe.NewEngine()
	}
	return c.engine
}

// match runs the three stages for rule. render builds the failure
// message of a rule mismatch.
func match(
	c config,
	rule probe.Rule,
	s record.Subject,
	render func(*Result) string,
) (*Result, error) {
	r, err := s.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolve subject: %w", err)
	}

	res := &Result{
		Field:   c.field,
		Kind:    rule.Kind(),
		Context: c.vctx,
		render:  render,
	}

	if err := gating.Check(r, c.field, c.vctx); err != nil {
		res.Failure = gatingFailure(err)
		res.cause = err
		return res, nil
	}

	e := c.probeEngine()
	out, err := e.Run(r, c.field, c.vctx, rule)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", c.field, err)
	}
	res.Outcome = out
	if err := out.Err(); err != nil {
		res.Failure = FailureRuleMismatch
		res.cause = err
		return res, nil
	}

	if c.message != "" {
		mres, err := message.Verify(e, r, c.field, c.vctx, rule.Kind(), c.message)
		if err != nil {
			return nil, err
		}
		res.Message = mres
		if err := mres.Err(); err != nil {
			res.Failure = FailureCustomMessageMismatch
			res.cause = err
			return res, nil
		}
	}

	res.Passed = true
	return res, nil
}

func gatingFailure(err error) Failure {
	if errors.Is(err, gating.ErrUnsupportedContext) {
		return FailureUnsupportedContext
	}
	return FailureNotAnAttachmentField
}
