package matcher

import (
	"github.com/stretchr/testify/assert"

	"digital.vasic.attachprobe/pkg/record"
)

// AssertMatch runs m against s and reports a test failure with the
// matcher's diagnostic when the assertion fails or a collaborator
// errors. It returns whether the assertion passed.
func AssertMatch(
	t assert.TestingT,
	m Matcher,
	s record.Subject,
	msgAndArgs ...any,
) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	res, err := m.Match(s)
	if err != nil {
		return assert.Fail(t, m.Description()+": "+err.Error(), msgAndArgs...)
	}
	if !res.Passed {
		return assert.Fail(t,
			m.Description()+"\n"+res.FailureMessage(), msgAndArgs...)
	}
	return true
}

// AssertNoMatch is the negation of AssertMatch. Collaborator errors
// still fail the test.
func AssertNoMatch(
	t assert.TestingT,
	m Matcher,
	s record.Subject,
	msgAndArgs ...any,
) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	res, err := m.Match(s)
	if err != nil {
		return assert.Fail(t, m.Description()+": "+err.Error(), msgAndArgs...)
	}
	if res.Passed {
		return assert.Fail(t,
			"expected not to "+m.Description(), msgAndArgs...)
	}
	return true
}
