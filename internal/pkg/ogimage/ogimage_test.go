package ogimage

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/frame"
)

func TestRender_AllScreens(t *testing.T) {
	r := NewRenderer("vibes")

	for _, s := range frame.Screens {
		t.Run(string(s), func(t *testing.T) {
			data, err := r.Render(s)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, Width, img.Bounds().Dx())
			assert.Equal(t, Height, img.Bounds().Dy())
		})
	}
}

func TestRender_IsCached(t *testing.T) {
	r := NewRenderer("vibes")

	first, err := r.Render(frame.ScreenSuccess)
	require.NoError(t, err)
	second, err := r.Render(frame.ScreenSuccess)
	require.NoError(t, err)

	assert.Same(t, &first[0], &second[0])
}

func TestPaint_Gradient(t *testing.T) {
	img := Paint(Card{From: purple, To: pink})

	left := img.NRGBAAt(0, Height-1)
	right := img.NRGBAAt(Width-1, Height-1)
	assert.Equal(t, purple.R, left.R)
	assert.Equal(t, purple.B, left.B)
	assert.Equal(t, pink.R, right.R)
	assert.Equal(t, pink.B, right.B)
}

func TestCardFor_UsesChannel(t *testing.T) {
	assert.Equal(t, "/lofi Channel", CardFor(frame.ScreenEntry, "lofi").Title)
	assert.Contains(t, CardFor(frame.ScreenSuccess, "lofi").Subtitle, "/lofi")
	assert.Equal(t, "Error", CardFor(frame.Screen("bogus"), "lofi").Title)
}

func TestAsciiOnly(t *testing.T) {
	assert.Equal(t, "Opt in now!", asciiOnly("🎁 Opt in now!"))
	assert.Equal(t, "", asciiOnly("🎉"))
}
