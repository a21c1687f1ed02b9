package gating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"digital.vasic.attachprobe/pkg/model"
	"digital.vasic.attachprobe/pkg/record"
)

type mockRecord struct {
	mock.Mock
	record.Record
}

func (m *mockRecord) IsAttachmentField(name string) bool {
	return m.Called(name).Bool(0)
}

func (m *mockRecord) SupportsContext(
	name string, vctx record.Context,
) bool {
	return m.Called(name, vctx).Bool(0)
}

func TestCheck_NotAnAttachmentField(t *testing.T) {
	r := &mockRecord{}
	r.On("IsAttachmentField", "name").Return(false)

	err := Check(r, "name", "create")
	assert.ErrorIs(t, err, ErrNotAnAttachmentField)
	assert.Contains(t, err.Error(), "name")
	r.AssertNotCalled(t, "SupportsContext", mock.Anything, mock.Anything)
}

func TestCheck_DefaultContextSkipsContextCheck(t *testing.T) {
	r := &mockRecord{}
	r.On("IsAttachmentField", "avatar").Return(true)

	assert.NoError(t, Check(r, "avatar", record.DefaultContext))
	r.AssertNotCalled(t, "SupportsContext", mock.Anything, mock.Anything)
}

func TestCheck_UnsupportedContext(t *testing.T) {
	r := &mockRecord{}
	r.On("IsAttachmentField", "avatar").Return(true)
	r.On("SupportsContext", "avatar", record.Context("update")).Return(false)

	err := Check(r, "avatar", "update")
	assert.ErrorIs(t, err, ErrUnsupportedContext)
	assert.Contains(t, err.Error(), `"update"`)
}

func TestCheck_SupportedContext(t *testing.T) {
	r := &mockRecord{}
	r.On("IsAttachmentField", "avatar").Return(true)
	r.On("SupportsContext", "avatar", record.Context("create")).Return(true)

	assert.NoError(t, Check(r, "avatar", "create"))
	r.AssertExpectations(t)
}

func TestCheck_WithModel(t *testing.T) {
	r := model.NewSchema("user", "avatar").
		Attribute("name", "").
		Validates(model.Validation{
			Field:     "avatar",
			Validator: model.ContentType{Allowed: []string{"image/png"}},
			On:        []record.Context{"create", "custom"},
		}).New()

	tests := []struct {
		name  string
		field string
		vctx  record.Context
		want  error
	}{
		{"attachment default context", "avatar", "", nil},
		{"declared context", "avatar", "custom", nil},
		{"undeclared context", "avatar", "update", ErrUnsupportedContext},
		{"plain attribute", "name", "", ErrNotAnAttachmentField},
		{"unknown field", "resume", "create", ErrNotAnAttachmentField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(r, tt.field, tt.vctx)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
