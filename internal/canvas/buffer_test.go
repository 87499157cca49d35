package canvas

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bufWidth  = 100
	bufHeight = 100
)

var (
	transparent = color.NRGBA{}
	white       = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red         = color.NRGBA{R: 0xff, A: 0xff}
)

func newTestBuffer(t *testing.T, base color.NRGBA) *Buffer {
	t.Helper()
	b, err := New(bufWidth, bufHeight, base)
	require.NoError(t, err)
	return b
}

func TestNew_RejectsInvalidSize(t *testing.T) {
	_, err := New(0, 100, transparent)
	assert.Error(t, err)
	_, err = New(100, -1, transparent)
	assert.Error(t, err)
}

func TestStampBrush_PaintsClampedDiskOnly(t *testing.T) {
	b := newTestBuffer(t, transparent)

	b.StampBrush(0.5, 0.5, red, 3)
	b.Apply()

	// Center maps to floor(0.5*100) = (50, 50).
	assert.Equal(t, red, b.At(50, 50))
	// Distance 3 equals the radius and is included.
	assert.Equal(t, red, b.At(53, 50))
	// Distance 4 exceeds the radius and stays untouched.
	assert.Equal(t, transparent, b.At(50, 54))

	// Every pixel is red exactly when it lies inside the disk.
	for y := 0; y < bufHeight; y++ {
		for x := 0; x < bufWidth; x++ {
			dx, dy := x-50, y-50
			inside := dx*dx+dy*dy <= 9
			if got := b.At(x, y); inside {
				assert.Equalf(t, red, got, "pixel (%d,%d) inside disk", x, y)
			} else {
				assert.Equalf(t, transparent, got, "pixel (%d,%d) outside disk", x, y)
			}
		}
	}
}

func TestStampBrush_RadiusZeroPaintsOnePixel(t *testing.T) {
	b := newTestBuffer(t, transparent)

	b.StampBrush(0.25, 0.75, red, 0)
	b.Apply()

	painted := 0
	for y := 0; y < bufHeight; y++ {
		for x := 0; x < bufWidth; x++ {
			if b.At(x, y) == red {
				painted++
			}
		}
	}
	assert.Equal(t, 1, painted)
	assert.Equal(t, red, b.At(25, 75))
}

func TestStampBrush_ClampsAtEdges(t *testing.T) {
	b := newTestBuffer(t, transparent)

	// Corner stamp: the disk quarters outside the raster fold onto the
	// border instead of wrapping to the far side.
	b.StampBrush(0, 0, red, 3)
	b.Apply()

	assert.Equal(t, red, b.At(0, 0))
	assert.Equal(t, red, b.At(3, 0))
	assert.Equal(t, transparent, b.At(bufWidth-1, bufHeight-1))
	assert.Equal(t, transparent, b.At(bufWidth-1, 0))
	for y := 0; y < bufHeight; y++ {
		for x := 0; x < bufWidth; x++ {
			if x > 3 || y > 3 {
				assert.Equalf(t, transparent, b.At(x, y), "pixel (%d,%d) beyond the clamped disk", x, y)
			}
		}
	}
}

func TestStampBrush_OutOfRangeUVCollapsesOntoBorder(t *testing.T) {
	b := newTestBuffer(t, transparent)

	b.StampBrush(1.5, 0.5, red, 2)
	b.Apply()

	// The center lands far right of the raster; every disk offset clamps
	// into the last column.
	assert.Equal(t, red, b.At(bufWidth-1, 50))
	for y := 0; y < bufHeight; y++ {
		for x := 0; x < bufWidth-1; x++ {
			assert.Equal(t, transparent, b.At(x, y))
		}
	}
}

func TestStampBrush_Idempotent(t *testing.T) {
	b := newTestBuffer(t, white)

	b.StampBrush(0.3, 0.3, red, 5)
	b.Apply()
	once := make([]byte, len(b.Image().Pix))
	copy(once, b.Image().Pix)

	b.StampBrush(0.3, 0.3, red, 5)
	b.Apply()

	assert.Equal(t, once, b.Image().Pix)
}

func TestApply_GatesVisibility(t *testing.T) {
	b := newTestBuffer(t, transparent)
	img := b.Image()

	b.StampBrush(0.5, 0.5, red, 2)

	// Staged but not applied: reads still observe the base color.
	assert.Equal(t, transparent, b.At(50, 50))

	b.Apply()
	assert.Equal(t, red, b.At(50, 50))

	// The handle returned before the stamp is live and sees the flush.
	off := img.PixOffset(50, 50)
	assert.Equal(t, uint8(0xff), img.Pix[off])
}

func TestClear_ResetsEveryPixel(t *testing.T) {
	b := newTestBuffer(t, transparent)
	b.StampBrush(0.5, 0.5, red, 10)
	b.StampBrush(0.1, 0.9, red, 4)
	b.Clear(white)
	b.Apply()

	for y := 0; y < bufHeight; y++ {
		for x := 0; x < bufWidth; x++ {
			assert.Equal(t, white, b.At(x, y))
		}
	}
}

func TestEncodeDecode_RoundTripIsExact(t *testing.T) {
	b := newTestBuffer(t, transparent)
	b.StampBrush(0.5, 0.5, red, 8)
	b.StampBrush(0.2, 0.2, color.NRGBA{G: 0xc0, B: 0x40, A: 0x7f}, 5)
	b.StampBrush(0.9, 0.1, color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}, 3)
	b.Apply()

	data, err := b.Encode()
	require.NoError(t, err)

	restored := newTestBuffer(t, white)
	require.NoError(t, restored.Decode(data))

	assert.Equal(t, b.Image().Pix, restored.Image().Pix)
}

func TestDecode_RejectsDimensionMismatch(t *testing.T) {
	small, err := New(10, 10, white)
	require.NoError(t, err)
	small.Apply()
	data, err := small.Encode()
	require.NoError(t, err)

	b := newTestBuffer(t, transparent)
	assert.Error(t, b.Decode(data))
}

func TestDecode_ClearsStagedMutations(t *testing.T) {
	b := newTestBuffer(t, white)
	b.Apply()
	data, err := b.Encode()
	require.NoError(t, err)

	b.StampBrush(0.5, 0.5, red, 4)
	require.NoError(t, b.Decode(data))
	b.Apply()

	// The staged stamp must not resurface through a later Apply.
	assert.Equal(t, white, b.At(50, 50))
}

func TestPreview_BlendsWithoutMutating(t *testing.T) {
	b := newTestBuffer(t, white)

	half := color.NRGBA{R: 0xff, A: 0x80}
	preview := b.Preview(0.5, 0.5, half, 2)

	// The preview pixel is a src-over blend of half-alpha red on white.
	off := preview.PixOffset(50, 50)
	assert.Equal(t, uint8(0xff), preview.Pix[off+0])
	assert.Less(t, preview.Pix[off+1], uint8(0xff))
	assert.Equal(t, uint8(0xff), preview.Pix[off+3])

	// The buffer itself never saw the stamp, staged or applied.
	b.Apply()
	assert.Equal(t, white, b.At(50, 50))
}

func TestPreview_OverTransparentKeepsSourceColor(t *testing.T) {
	b := newTestBuffer(t, transparent)

	half := color.NRGBA{R: 0xff, A: 0x80}
	preview := b.Preview(0.5, 0.5, half, 1)

	off := preview.PixOffset(50, 50)
	assert.Equal(t, uint8(0xff), preview.Pix[off+0])
	assert.Equal(t, uint8(0x80), preview.Pix[off+3])
}
