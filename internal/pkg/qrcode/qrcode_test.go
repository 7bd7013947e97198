package qrcode

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uri = "otpauth://totp/MyApp:alice%40example.com?algorithm=SHA1&digits=6&issuer=MyApp&period=30&secret=GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestPNGRenderer_PNG(t *testing.T) {
	t.Parallel()

	r := NewPNGRenderer(200)

	out, err := r.PNG(uri)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	again, err := r.PNG(uri)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestPNGRenderer_DefaultSize(t *testing.T) {
	t.Parallel()

	out, err := NewPNGRenderer(0).PNG(uri)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}

func TestPNGRenderer_Empty(t *testing.T) {
	t.Parallel()

	_, err := NewPNGRenderer(100).PNG("")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	got := DataURI([]byte{0x89, 'P', 'N', 'G'})
	require.True(t, strings.HasPrefix(got, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw)
}

func TestPNGRenderer_ClampsSize(t *testing.T) {
	t.Parallel()

	out, err := NewPNGRenderer(4096).PNG(uri)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, MaxSize, img.Bounds().Dx())
	assert.Less(t, len(DataURI(out)), 32*1024)
}
