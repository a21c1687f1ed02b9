// Package probe converts declared attachment rules into the minimal
// set of synthetic trials that proves or disproves them, and runs
// those trials against a record's real validations.
//
// Two rule shapes exist. A SetRule lists discrete tokens (content
// types or aspect ratios) that must be accepted or rejected; every
// token becomes one trial. A RangeRule bounds width and height; each
// set bound produces trials just inside and just outside it, with the
// other dimension held at a value well inside its own range.
package probe

import "slices"

// Kind identifies what a rule constrains.
type Kind string

// Rule kinds.
const (
	KindContentType Kind = "content_type"
	KindAspectRatio Kind = "aspect_ratio"
	KindDimension   Kind = "dimension"
)

// Rule is a declared attachment constraint.
type Rule interface {
	// Kind returns the constraint kind.
	Kind() Kind

	// Trials derives the trials that prove the rule.
	Trials() []Trial
}

// SetRule declares tokens that must be accepted and tokens that
// must be rejected.
type SetRule struct {
	RuleKind Kind
	Allowed  []string
	Rejected []string
}

// ContentTypes returns a SetRule over MIME types.
func ContentTypes(allowed, rejected []string) SetRule {
	return SetRule{
		RuleKind: KindContentType,
		Allowed:  slices.Clone(allowed),
		Rejected: slices.Clone(rejected),
	}
}

// AspectRatios returns a SetRule over aspect ratio tokens.
func AspectRatios(allowed, rejected []string) SetRule {
	return SetRule{
		RuleKind: KindAspectRatio,
		Allowed:  slices.Clone(allowed),
		Rejected: slices.Clone(rejected),
	}
}

// Kind implements Rule.
func (r SetRule) Kind() Kind { return r.RuleKind }

// Trials implements Rule: one trial per allowed token expecting a
// pass, then one per rejected token expecting a failure.
func (r SetRule) Trials() []Trial {
	trials := make([]Trial, 0, len(r.Allowed)+len(r.Rejected))
	for _, tok := range r.Allowed {
		trials = append(trials, r.trialFor(tok, true))
	}
	for _, tok := range r.Rejected {
		trials = append(trials, r.trialFor(tok, false))
	}
	return trials
}

func (r SetRule) trialFor(token string, expectPass bool) Trial {
	prefix := "rejected:"
	if expectPass {
		prefix = "allowed:"
	}
	t := Trial{
		Label:      prefix + token,
		Token:      token,
		ExpectPass: expectPass,
	}
	if r.RuleKind == KindContentType {
		t.ContentType = token
		return t
	}
	t.Mocked = true
	t.Width, t.Height = AspectDimensions(token)
	return t
}

// Default bounds for an undeclared side of a range. They are
// generous enough that the dimension not under test never fails.
const (
	DefaultMin = 0
	DefaultMax = 2000
)

// RangeRule declares inclusive width and height bounds. A nil bound
// is unset; min == max declares a fixed value.
type RangeRule struct {
	WidthMin  *int
	WidthMax  *int
	HeightMin *int
	HeightMax *int
}

// Kind implements Rule.
func (r RangeRule) Kind() Kind { return KindDimension }

// ValidWidth is the width held while height bounds are probed.
func (r RangeRule) ValidWidth() int {
	return midpoint(r.WidthMin, r.WidthMax)
}

// ValidHeight is the height held while width bounds are probed.
func (r RangeRule) ValidHeight() int {
	return midpoint(r.HeightMin, r.HeightMax)
}

// Trials implements Rule. Width trials come first, then height;
// within a dimension the order is min-1, min+1, max-1, max+1, exact.
func (r RangeRule) Trials() []Trial {
	validW, validH := r.ValidWidth(), r.ValidHeight()

	trials := boundTrials("width", r.WidthMin, r.WidthMax,
		func(v int) (int, int) { return v, validH })
	return append(trials, boundTrials("height", r.HeightMin, r.HeightMax,
		func(v int) (int, int) { return validW, v })...)
}

func boundTrials(
	dim string,
	lo, hi *int,
	dims func(v int) (w, h int),
) []Trial {
	var trials []Trial
	add := func(label string, v int, expectPass bool) {
		w, h := dims(v)
		trials = append(trials, Trial{
			Label:      dim + "_" + label,
			Dimension:  dim,
			Value:      v,
			Mocked:     true,
			Width:      w,
			Height:     h,
			ExpectPass: expectPass,
		})
	}

	fixed := lo != nil && hi != nil && *lo == *hi
	if lo != nil {
		add("min-1", *lo-1, false)
	}
	if lo != nil && !fixed {
		add("min+1", *lo+1, true)
	}
	if hi != nil && !fixed {
		add("max-1", *hi-1, true)
	}
	if hi != nil {
		add("max+1", *hi+1, false)
	}
	if fixed {
		add("exact", *lo, true)
	}
	return trials
}

// midpoint floors (lo+hi)/2, defaulting unset bounds.
func midpoint(lo, hi *int) int {
	a, b := DefaultMin, DefaultMax
	if lo != nil {
		a = *lo
	}
	if hi != nil {
		b = *hi
	}
	sum := a + b
	if sum < 0 && sum%2 != 0 {
		return sum/2 - 1
	}
	return sum / 2
}
