package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "image/webp", DetectMIME("image/webp; q=1", pngHeader))
	assert.Equal(t, "image/png", DetectMIME("", pngHeader))
	assert.Equal(t, "image/png", DetectMIME("application/octet-stream", pngHeader))
	assert.Equal(t, "text/plain", DetectMIME("", []byte("hello")))
	assert.Equal(t, "image/jpeg", DetectMIME("", []byte{0x00, 0x01, 0x02}))
}

func TestFromDropRequiresImage(t *testing.T) {
	img, err := FromDrop("", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)

	_, err = FromDrop("text/plain", []byte("hello"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = FromDrop("", []byte{0x00, 0x01, 0x02})
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = FromDrop("image/png", nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestFromPickerSkipsTypeCheck(t *testing.T) {
	img, err := FromPicker("text/plain", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", img.MIMEType)
}

func TestDataURIRoundTrip(t *testing.T) {
	uri := DataURI("image/png", []byte("abc"))
	assert.Equal(t, "data:image/png;base64,YWJj", uri)

	img, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, []byte("abc"), img.Data)

	img, err = ParseDataURI("YWJj")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)

	_, err = ParseDataURI("data:image/png,abc")
	assert.ErrorIs(t, err, ErrBadDataURI)
	_, err = ParseDataURI("data:image/png;base64,***")
	assert.ErrorIs(t, err, ErrBadDataURI)
}

func TestCloneDetachesBytes(t *testing.T) {
	src := Image{Data: []byte("abc"), MIMEType: "image/png"}
	cp := src.Clone()
	src.Data[0] = 'z'
	assert.Equal(t, []byte("abc"), cp.Data)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Khoe_Tấm_Lưng_Trần.png", Filename("Khoe Tấm Lưng Trần"))
	assert.Equal(t, "a_b.png", Filename("a \t  b"))
}
