package matcher

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.attachprobe/pkg/gating"
	"digital.vasic.attachprobe/pkg/message"
	"digital.vasic.attachprobe/pkg/metrics"
	"digital.vasic.attachprobe/pkg/model"
	"digital.vasic.attachprobe/pkg/probe"
	"digital.vasic.attachprobe/pkg/record"
)

func intp(v int) *int { return &v }

func userSchema(validations ...model.Validation) *model.Schema {
	s := model.NewSchema("user", "avatar").Attribute("name", "")
	for _, v := range validations {
		s.Validates(v)
	}
	return s
}

func contentTypes(allowed ...string) model.Validation {
	return model.Validation{
		Field:     "avatar",
		Validator: model.ContentType{Allowed: allowed},
	}
}

func TestContentType_AllowedAndRejected(t *testing.T) {
	s := userSchema(contentTypes("image/png"))

	res, err := ValidateContentTypeOf("avatar").
		Allowing("image/png").
		Rejecting("image/gif").
		Match(s.Subject())
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, FailureNone, res.Failure)
	assert.NoError(t, res.Err())
	assert.Equal(t, 2, res.Trials())
	assert.Empty(t, res.FailureMessage())
}

func TestContentType_RejectedTypeAccepted(t *testing.T) {
	s := userSchema(contentTypes("image/png", "image/gif"))

	res, err := ValidateContentTypeOf("avatar").
		Allowing("image/png").
		Rejecting("image/gif").
		Match(s.Subject())
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, FailureRuleMismatch, res.Failure)
	assert.ErrorIs(t, res.Err(), probe.ErrRuleMismatch)
	assert.Equal(t, []string{"image/gif"}, res.Outcome.RejectedButAllowed())
	assert.Equal(t,
		"Expected avatar\n"+
			"Reject content types: image/gif\n"+
			"image/gif were accepted",
		res.FailureMessage())
}

func TestContentType_AllowedTypeRejected(t *testing.T) {
	s := userSchema(contentTypes("image/png"))

	res, err := ValidateContentTypeOf("avatar").
		Allowing("image/png", "image/jpeg", "image/webp").
		Match(s.Subject())
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t,
		"Expected avatar\n"+
			"Accept content types: image/png, image/jpeg, image/webp\n"+
			"image/jpeg, image/webp were rejected",
		res.FailureMessage())
}

func TestDimensions_WidthRange(t *testing.T) {
	s := userSchema(model.Validation{
		Field:     "avatar",
		Validator: model.Dimension{WidthMin: intp(50), WidthMax: intp(100)},
	})

	res, err := ValidateDimensionsOf("avatar").
		WidthBetween(50, 100).
		Match(s.Subject())
	require.NoError(t, err)
	require.True(t, res.Passed, res.FailureMessage())

	observed := map[int]bool{}
	for _, tr := range res.Outcome.Results {
		observed[tr.Trial.Value] = tr.Passed
	}
	assert.Equal(t, map[int]bool{49: false, 51: true, 99: true, 101: false}, observed)
}

func TestDimensions_Mismatch(t *testing.T) {
	s := userSchema(model.Validation{
		Field:     "avatar",
		Validator: model.Dimension{WidthMin: intp(50), WidthMax: intp(100)},
	})

	res, err := ValidateDimensionsOf("avatar").
		WidthBetween(50, 120).
		Match(s.Subject())
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, FailureRuleMismatch, res.Failure)
	assert.Equal(t,
		"is expected to validate dimensions of avatar\n"+
			"  width between 50 and 120\n"+
			"  height between any and any\n"+
			"  width 119 was rejected",
		res.FailureMessage())
}

func TestDimensions_FixedValues(t *testing.T) {
	s := userSchema(model.Validation{
		Field:     "avatar",
		Validator: model.Dimension{
			WidthMin: intp(150), WidthMax: intp(150),
			HeightMin: intp(80), HeightMax: intp(80),
		},
	})

	res, err := ValidateDimensionsOf("avatar").
		Width(150).
		Height(80).
		Match(s.Subject())
	require.NoError(t, err)
	assert.True(t, res.Passed, res.FailureMessage())
	assert.Equal(t, 6, res.Trials())
}

func TestDimensions_SeparateBounds(t *testing.T) {
	s := userSchema(model.Validation{
		Field: "avatar",
		Validator: model.Dimension{
			WidthMin: intp(10), HeightMax: intp(300),
		},
	})

	res, err := ValidateDimensionsOf("avatar").
		WidthMin(10).
		HeightMax(300).
		Match(s.Subject())
	require.NoError(t, err)
	assert.True(t, res.Passed, res.FailureMessage())

	res, err = ValidateDimensionsOf("avatar").
		WidthMin(10).
		WidthMax(500).
		HeightMin(5).
		HeightMax(300).
		Match(s.Subject())
	require.NoError(t, err)
	assert.False(t, res.Passed)
}

func TestAspectRatio(t *testing.T) {
	s := userSchema(model.Validation{
		Field:     "avatar",
		Validator: model.AspectRatio{Ratio: "square"},
	})

	res, err := ValidateAspectRatioOf("avatar").
		Allowing("square").
		Rejecting("portrait", "landscape", "16:9").
		Match(s.Subject())
	require.NoError(t, err)
	assert.True(t, res.Passed, res.FailureMessage())

	res, err = ValidateAspectRatioOf("avatar").
		Allowing("square", "is_4_3").
		Match(s.Subject())
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t,
		"Expected avatar\n"+
			"Accept aspect ratios: square, is_4_3\n"+
			"is_4_3 were rejected",
		res.FailureMessage())
}

func TestCustomMessage(t *testing.T) {
	withMessage := func(msg string) *model.Schema {
		v := contentTypes("image/png")
		v.Message = msg
		return userSchema(v)
	}
	m := ValidateContentTypeOf("avatar").
		Allowing("image/png").
		Rejecting("image/gif").
		WithMessage("bad file")

	res, err := m.Match(withMessage("bad file").Subject())
	require.NoError(t, err)
	assert.True(t, res.Passed)
	require.NotNil(t, res.Message)
	assert.True(t, res.Message.Matched)

	res, err = m.Match(withMessage("wrong file").Subject())
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, FailureCustomMessageMismatch, res.Failure)
	assert.ErrorIs(t, res.Err(), message.ErrCustomMessageMismatch)
	assert.Equal(t,
		"Expected avatar to report custom message \"bad file\"\n"+
			"Got: \"wrong file\"",
		res.FailureMessage())
}

func TestCustomMessage_SkippedAfterRuleMismatch(t *testing.T) {
	v := contentTypes("image/png", "image/gif")
	v.Message = "bad file"
	s := userSchema(v)

	res, err := ValidateContentTypeOf("avatar").
		Rejecting("image/gif").
		WithMessage("bad file").
		Match(s.Subject())
	require.NoError(t, err)
	assert.Equal(t, FailureRuleMismatch, res.Failure)
	assert.Nil(t, res.Message)
}

func TestNotAnAttachmentField(t *testing.T) {
	s := userSchema(contentTypes("image/png"))

	for _, field := range []string{"name", "resume"} {
		t.Run(field, func(t *testing.T) {
			res, err := ValidateDimensionsOf(field).
				WidthBetween(1, 10).
				Match(s.Subject())
			require.NoError(t, err)
			assert.False(t, res.Passed)
			assert.Equal(t, FailureNotAnAttachmentField, res.Failure)
			assert.ErrorIs(t, res.Err(), gating.ErrNotAnAttachmentField)
			assert.Nil(t, res.Outcome)
			assert.Zero(t, res.Trials())
			assert.Equal(t,
				fmt.Sprintf("Expected %s to be an attachment field", field),
				res.FailureMessage())
		})
	}
}

func TestNotAnAttachmentField_RunsNoValidation(t *testing.T) {
	r := userSchema(contentTypes("image/png")).New()

	res, err := ValidateContentTypeOf("name").
		Allowing("image/png").
		Match(record.Instance(r))
	require.NoError(t, err)
	assert.Equal(t, FailureNotAnAttachmentField, res.Failure)
	assert.Zero(t, r.ValidationRuns())
}

func TestContext(t *testing.T) {
	v := contentTypes("image/png")
	v.On = []record.Context{"create"}
	s := userSchema(v)
	m := ValidateContentTypeOf("avatar").
		Allowing("image/png").
		Rejecting("image/gif")

	res, err := m.On("create").Match(s.Subject())
	require.NoError(t, err)
	assert.True(t, res.Passed, res.FailureMessage())

	res, err = m.On("update").Match(s.Subject())
	require.NoError(t, err)
	assert.Equal(t, FailureUnsupportedContext, res.Failure)
	assert.ErrorIs(t, res.Err(), gating.ErrUnsupportedContext)
	assert.Equal(t,
		`Expected avatar to be validated on context "update"`,
		res.FailureMessage())

	// Without a context the validation never runs.
	res, err = m.Match(s.Subject())
	require.NoError(t, err)
	assert.Equal(t, FailureRuleMismatch, res.Failure)
}

func TestConditionalValidation(t *testing.T) {
	v := contentTypes("image/png")
	v.If = model.AttributeTruthy("strict")
	s := userSchema(v).Attribute("strict", false)
	m := ValidateContentTypeOf("avatar").Rejecting("image/gif")

	res, err := m.Match(s.Subject())
	require.NoError(t, err)
	assert.False(t, res.Passed)

	res, err = m.Match(record.Instance(s.New().Set("strict", true)))
	require.NoError(t, err)
	assert.True(t, res.Passed, res.FailureMessage())
}

func TestMatch_SubjectErrors(t *testing.T) {
	m := ValidateContentTypeOf("avatar").Allowing("image/png")

	_, err := m.Match(record.Instance(nil))
	assert.ErrorIs(t, err, record.ErrNoSubject)

	_, err = m.Match(record.Factory("broken", func() record.Record {
		return nil
	}))
	assert.ErrorIs(t, err, record.ErrNoSubject)
}

func TestMatch_CollaboratorErrorPropagates(t *testing.T) {
	s := userSchema(model.Validation{Field: "avatar"})

	_, err := ValidateContentTypeOf("avatar").
		Allowing("image/png").
		Match(s.Subject())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation has no validator")
}

func TestMatchers_AreImmutable(t *testing.T) {
	base := ValidateContentTypeOf("avatar").Allowing("image/png")
	strict := base.Rejecting("image/gif")
	ctx := base.On("create")

	assert.Empty(t, base.rule().Rejected)
	assert.Equal(t, []string{"image/gif"}, strict.rule().Rejected)
	assert.Equal(t, record.DefaultContext, base.cfg.vctx)
	assert.Equal(t, record.Context("create"), ctx.cfg.vctx)

	types := []string{"image/png"}
	m := ValidateContentTypeOf("avatar").Allowing(types...)
	types[0] = "image/gif"
	assert.Equal(t, []string{"image/png"}, m.rule().Allowed)

	dims := ValidateDimensionsOf("avatar").WidthMin(10)
	wider := dims.WidthMin(20)
	assert.Equal(t, 10, *dims.rule.WidthMin)
	assert.Equal(t, 20, *wider.rule.WidthMin)
}

func TestDescriptions(t *testing.T) {
	tests := []struct {
		m    Matcher
		want string
		kind probe.Kind
	}{
		{ValidateContentTypeOf("avatar"),
			"validate the content types allowed on attachment avatar",
			probe.KindContentType},
		{ValidateDimensionsOf("avatar"),
			"validate image dimensions of avatar",
			probe.KindDimension},
		{ValidateAspectRatioOf("avatar"),
			"validate the aspect ratios allowed on attachment avatar",
			probe.KindAspectRatio},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.m.Description())
		assert.Equal(t, tt.kind, tt.m.Kind())
		assert.Equal(t, tt.kind, tt.m.Rule().Kind())
		assert.Equal(t, "avatar", tt.m.Field())
	}
}

func TestUsing_EngineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := metrics.NewPrometheusMetrics(reg, "test")
	e := probe.NewEngine(probe.WithMetrics(pm))
	s := userSchema(contentTypes("image/png", "image/gif"))

	res, err := ValidateContentTypeOf("avatar").
		Allowing("image/png").
		Rejecting("image/gif").
		Using(e).
		Match(s.Subject())
	require.NoError(t, err)
	assert.False(t, res.Passed)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		pm.TrialMismatches.WithLabelValues("content_type", "rejected:image/gif"),
	))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		pm.Trials.WithLabelValues("content_type", "allowed:image/png", "passed"),
	))
}
