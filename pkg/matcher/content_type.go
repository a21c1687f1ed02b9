package matcher

import (
	"slices"

	"digital.vasic.attachprobe/pkg/probe"
	"digital.vasic.attachprobe/pkg/record"
)

// ContentTypeMatcher asserts which content types an attachment field
// accepts and rejects.
type ContentTypeMatcher struct {
	cfg      config
	allowed  []string
	rejected []string
}

// ValidateContentTypeOf starts a content type assertion on field.
func ValidateContentTypeOf(field string) ContentTypeMatcher {
	return ContentTypeMatcher{cfg: config{field: field}}
}

// Allowing returns a copy declaring types as accepted, replacing any
// earlier declaration.
func (m ContentTypeMatcher) Allowing(types ...string) ContentTypeMatcher {
	m.allowed = slices.Clone(types)
	return m
}

// Rejecting returns a copy declaring types as rejected, replacing any
// earlier declaration.
func (m ContentTypeMatcher) Rejecting(types ...string) ContentTypeMatcher {
	m.rejected = slices.Clone(types)
	return m
}

// On returns a copy that validates in vctx.
func (m ContentTypeMatcher) On(vctx record.Context) ContentTypeMatcher {
	m.cfg.vctx = vctx
	return m
}

// WithMessage returns a copy that also requires msg on invalid input.
func (m ContentTypeMatcher) WithMessage(msg string) ContentTypeMatcher {
	m.cfg.message = msg
	return m
}

// Using returns a copy that runs trials on e.
func (m ContentTypeMatcher) Using(e *probe.Engine) ContentTypeMatcher {
	m.cfg.engine = e
	return m
}

// Field implements Matcher.
func (m ContentTypeMatcher) Field() string { return m.cfg.field }

// Kind implements Matcher.
func (m ContentTypeMatcher) Kind() probe.Kind { return probe.KindContentType }

// Rule implements Matcher.
func (m ContentTypeMatcher) Rule() probe.Rule { return m.rule() }

func (m ContentTypeMatcher) rule() probe.SetRule {
	return probe.ContentTypes(m.allowed, m.rejected)
}

// Description implements Matcher.
func (m ContentTypeMatcher) Description() string {
	return "validate the content types allowed on attachment " + m.cfg.field
}

// Match implements Matcher.
func (m ContentTypeMatcher) Match(s record.Subject) (*Result, error) {
	rule := m.rule()
	return match(m.cfg, rule, s, renderSet("content types", rule))
}
