package bank

import (
	"fmt"

	"digital.vasic.attachprobe/pkg/matcher"
	"digital.vasic.attachprobe/pkg/probe"
	"digital.vasic.attachprobe/pkg/record"
)

// SuiteFile is the on-disk structure of a suite file. JSON files
// parse through the same YAML decoder.
type SuiteFile struct {
	Version      string         `yaml:"version" json:"version" validate:"required"`
	Name         string         `yaml:"name" json:"name"`
	Models       []ModelDef     `yaml:"models" json:"models" validate:"required,min=1,dive"`
	Expectations []Expectation  `yaml:"expectations" json:"expectations" validate:"dive"`
	Metadata     map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// ModelDef declares a reference model: its attachment fields, plain
// attributes with defaults, and attachment validations.
type ModelDef struct {
	Name        string          `yaml:"name" json:"name" validate:"required"`
	Attachments []string        `yaml:"attachments" json:"attachments" validate:"required,min=1,dive,required"`
	Attributes  map[string]any  `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Validations []ValidationDef `yaml:"validations" json:"validations" validate:"dive"`
}

// ValidationDef declares one validator on a model field.
type ValidationDef struct {
	Field   string         `yaml:"field" json:"field" validate:"required"`
	Kind    string         `yaml:"kind" json:"kind" validate:"required"`
	Options map[string]any `yaml:"options" json:"options"`
	On      []string       `yaml:"on,omitempty" json:"on,omitempty" validate:"dive,required"`

	// If and Unless name attributes whose truthiness gates the
	// validation.
	If     string `yaml:"if,omitempty" json:"if,omitempty"`
	Unless string `yaml:"unless,omitempty" json:"unless,omitempty"`

	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// SetDef declares accepted and rejected tokens.
type SetDef struct {
	Allowing  []string `yaml:"allowing" json:"allowing"`
	Rejecting []string `yaml:"rejecting" json:"rejecting"`
}

// RangeDef declares dimension bounds. Width and Height set a fixed
// value and exclude the matching min and max.
type RangeDef struct {
	Width     *int `yaml:"width,omitempty" json:"width,omitempty" validate:"omitempty,min=0"`
	WidthMin  *int `yaml:"width_min,omitempty" json:"width_min,omitempty" validate:"omitempty,min=0"`
	WidthMax  *int `yaml:"width_max,omitempty" json:"width_max,omitempty" validate:"omitempty,min=0"`
	Height    *int `yaml:"height,omitempty" json:"height,omitempty" validate:"omitempty,min=0"`
	HeightMin *int `yaml:"height_min,omitempty" json:"height_min,omitempty" validate:"omitempty,min=0"`
	HeightMax *int `yaml:"height_max,omitempty" json:"height_max,omitempty" validate:"omitempty,min=0"`
}

// Expectation is one matcher assertion against a model, with the
// result the suite author expects.
type Expectation struct {
	ID          string `yaml:"id" json:"id" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Model       string `yaml:"model" json:"model" validate:"required"`
	Field       string `yaml:"field" json:"field" validate:"required"`

	ContentType *SetDef   `yaml:"content_type,omitempty" json:"content_type,omitempty"`
	AspectRatio *SetDef   `yaml:"aspect_ratio,omitempty" json:"aspect_ratio,omitempty"`
	Dimension   *RangeDef `yaml:"dimension,omitempty" json:"dimension,omitempty"`

	// Attributes are set on the record before probing.
	Attributes map[string]any `yaml:"attributes,omitempty" json:"attributes,omitempty"`

	On      string `yaml:"on,omitempty" json:"on,omitempty"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`

	// Expect is "pass" (default) or "fail".
	Expect string `yaml:"expect,omitempty" json:"expect,omitempty" validate:"omitempty,oneof=pass fail"`

	Source string `yaml:"-" json:"-"`
}

// ExpectPass reports whether the assertion is expected to pass.
func (e *Expectation) ExpectPass() bool {
	return e.Expect != "fail"
}

// Kind returns the rule kind of the single rule block, or "" when
// zero or several blocks are set.
func (e *Expectation) Kind() probe.Kind {
	var kinds []probe.Kind
	if e.ContentType != nil {
		kinds = append(kinds, probe.KindContentType)
	}
	if e.AspectRatio != nil {
		kinds = append(kinds, probe.KindAspectRatio)
	}
	if e.Dimension != nil {
		kinds = append(kinds, probe.KindDimension)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Matcher builds the matcher this expectation declares, running its
// trials on engine. A nil engine uses a default one.
func (e *Expectation) Matcher(engine *probe.Engine) (matcher.Matcher, error) {
	vctx := record.Context(e.On)
	switch e.Kind() {
	case probe.KindContentType:
		m := matcher.ValidateContentTypeOf(e.Field).
			Allowing(e.ContentType.Allowing...).
			Rejecting(e.ContentType.Rejecting...).
			On(vctx).
			WithMessage(e.Message)
		if engine != nil {
			m = m.Using(engine)
		}
		return m, nil
	case probe.KindAspectRatio:
		m := matcher.ValidateAspectRatioOf(e.Field).
			Allowing(e.AspectRatio.Allowing...).
			Rejecting(e.AspectRatio.Rejecting...).
			On(vctx).
			WithMessage(e.Message)
		if engine != nil {
			m = m.Using(engine)
		}
		return m, nil
	case probe.KindDimension:
		m := e.Dimension.apply(matcher.ValidateDimensionsOf(e.Field)).
			On(vctx).
			WithMessage(e.Message)
		if engine != nil {
			m = m.Using(engine)
		}
		return m, nil
	}
	return nil, fmt.Errorf("expectation %s: exactly one rule block required", e.ID)
}

func (d *RangeDef) apply(m matcher.DimensionMatcher) matcher.DimensionMatcher {
	if d.WidthMin != nil {
		m = m.WidthMin(*d.WidthMin)
	}
	if d.WidthMax != nil {
		m = m.WidthMax(*d.WidthMax)
	}
	if d.Width != nil {
		m = m.Width(*d.Width)
	}
	if d.HeightMin != nil {
		m = m.HeightMin(*d.HeightMin)
	}
	if d.HeightMax != nil {
		m = m.HeightMax(*d.HeightMax)
	}
	if d.Height != nil {
		m = m.Height(*d.Height)
	}
	return m
}
