package printing

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeThumbnail(t *testing.T) {
	t.Run("downscales wide images", func(t *testing.T) {
		thumb, err := DecodeThumbnail(pngBase64(t, 400, 200), 100)
		require.NoError(t, err)
		assert.Equal(t, 100, thumb.Width)
		assert.Equal(t, 50, thumb.Height)

		img, err := imaging.Decode(bytes.NewReader(thumb.JPEG))
		require.NoError(t, err)
		assert.Equal(t, 100, img.Bounds().Dx())
	})

	t.Run("keeps small images", func(t *testing.T) {
		thumb, err := DecodeThumbnail(pngBase64(t, 40, 30), 100)
		require.NoError(t, err)
		assert.Equal(t, 40, thumb.Width)
		assert.Equal(t, 30, thumb.Height)
	})

	t.Run("accepts data URIs", func(t *testing.T) {
		thumb, err := DecodeThumbnail("data:image/png;base64,"+pngBase64(t, 10, 10), 0)
		require.NoError(t, err)
		assert.Equal(t, 10, thumb.Width)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := DecodeThumbnail("not-an-image!!", 100)
		assert.Error(t, err)

		_, err = DecodeThumbnail(base64.StdEncoding.EncodeToString([]byte("plain text")), 100)
		assert.Error(t, err)

		_, err = DecodeThumbnail("data:image/png;base64", 100)
		assert.Error(t, err)

		_, err = DecodeThumbnail("  ", 100)
		assert.ErrorIs(t, err, errEmptyImage)
	})
}

func TestFitBox(t *testing.T) {
	w, h := fitBox(200, 100, 26, 26)
	assert.InDelta(t, 26, w, 0.001)
	assert.InDelta(t, 13, h, 0.001)

	w, h = fitBox(50, 100, 26, 26)
	assert.InDelta(t, 13, w, 0.001)
	assert.InDelta(t, 26, h, 0.001)
}
