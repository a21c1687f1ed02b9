package attachment

import (
	"errors"
	"testing"

	"digital.vasic.attachprobe/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRecord struct {
	mock.Mock
}

func (m *mockRecord) IsAttachmentField(name string) bool {
	return m.Called(name).Bool(0)
}

func (m *mockRecord) Attach(
	name string, d record.Descriptor,
) (record.Attachment, error) {
	args := m.Called(name, d)
	a, _ := args.Get(0).(record.Attachment)
	return a, args.Error(1)
}

func (m *mockRecord) Validate(
	vctx record.Context, meta record.MetadataProvider,
) (*record.Outcome, error) {
	args := m.Called(vctx, meta)
	o, _ := args.Get(0).(*record.Outcome)
	return o, args.Error(1)
}

func (m *mockRecord) SupportsContext(
	name string, vctx record.Context,
) bool {
	return m.Called(name, vctx).Bool(0)
}

type fakeAttachment struct {
	d record.Descriptor
}

func (f fakeAttachment) Key() string         { return "avatar/1" }
func (f fakeAttachment) Field() string       { return "avatar" }
func (f fakeAttachment) Filename() string    { return f.d.Filename }
func (f fakeAttachment) ContentType() string { return f.d.ContentType }

func TestFileName(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", "test.png"},
		{"image/gif", "test.gif"},
		{"application/pdf", "test.pdf"},
		{"fake/fake", "test.fake"},
		{"weird", "test.weird"},
		{"", "test"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.contentType))
		})
	}
}

func TestBuilder_Descriptor_Defaults(t *testing.T) {
	d := NewBuilder().Descriptor(Spec{})
	assert.Equal(t, DefaultContentType, d.ContentType)
	assert.Equal(t, "test.png", d.Filename)
	assert.Equal(t, Payload, d.Payload)
}

func TestBuilder_Descriptor_PayloadIsCopied(t *testing.T) {
	b := NewBuilder()
	d := b.Descriptor(Spec{})
	d.Payload[0] = 'X'
	assert.Equal(t, byte('H'), b.Descriptor(Spec{}).Payload[0])
}

func TestBuilder_Descriptor_ExplicitName(t *testing.T) {
	d := NewBuilder().Descriptor(Spec{
		ContentType: "image/gif", Name: "cat.gif",
	})
	assert.Equal(t, "cat.gif", d.Filename)
	assert.Equal(t, "image/gif", d.ContentType)
}

func TestBuilder_Attach_Success(t *testing.T) {
	r := &mockRecord{}
	r.On("Attach", "avatar", mock.MatchedBy(
		func(d record.Descriptor) bool {
			return d.ContentType == "image/gif" &&
				d.Filename == "test.gif"
		},
	)).Return(fakeAttachment{d: record.Descriptor{
		Filename: "test.gif", ContentType: "image/gif",
	}}, nil)

	a, err := NewBuilder().Attach(r, "avatar", Spec{
		ContentType: "image/gif",
	})
	require.NoError(t, err)
	assert.Equal(t, "image/gif", a.ContentType())
	r.AssertExpectations(t)
}

func TestBuilder_Attach_RecordError(t *testing.T) {
	r := &mockRecord{}
	r.On("Attach", "avatar", mock.Anything).
		Return(nil, errors.New("storage offline"))

	_, err := NewBuilder().Attach(r, "avatar", Spec{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage offline")
	assert.Contains(t, err.Error(), "attach test.png to avatar")
}

func TestBuilder_Attach_NilAttachment(t *testing.T) {
	r := &mockRecord{}
	r.On("Attach", "avatar", mock.Anything).Return(nil, nil)

	_, err := NewBuilder().Attach(r, "avatar", Spec{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no attachment")
}
