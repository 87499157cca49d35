// Package canvas implements the in-memory paint surface: a fixed-size
// RGBA raster with a disk-shaped brush stamp, a full clear, and a
// lossless PNG round trip for snapshot transfer.
//
// Mutations follow a stage-then-flush discipline. StampBrush and Clear
// write to a working raster only; nothing becomes visible to Image,
// Encode, or At until Apply copies the working raster onto the applied
// one. Readers holding the handle returned by Image see every later
// Apply in place.
package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
)

// Buffer is one paintable surface. It is not safe for concurrent use;
// the owning wall serializes access.
type Buffer struct {
	work    *image.NRGBA
	applied *image.NRGBA
	width   int
	height  int
	base    color.NRGBA
	dirty   bool
}

// New allocates a buffer of width x height pixels with every pixel set
// to the base color. The base is also what Clear* without an explicit
// color falls back to and what a decoded snapshot replaces.
func New(width, height int, base color.NRGBA) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	b := &Buffer{
		work:    image.NewNRGBA(image.Rect(0, 0, width, height)),
		applied: image.NewNRGBA(image.Rect(0, 0, width, height)),
		width:   width,
		height:  height,
		base:    base,
	}
	fill(b.work, base)
	fill(b.applied, base)
	return b, nil
}

// Width returns the horizontal pixel count.
func (b *Buffer) Width() int { return b.width }

// Height returns the vertical pixel count.
func (b *Buffer) Height() int { return b.height }

// Base returns the fill color the buffer was allocated with.
func (b *Buffer) Base() color.NRGBA { return b.base }

// StampBrush overwrites every pixel within the disk of the given radius
// around the uv coordinate with c. The center maps to pixel
// (floor(u*width), floor(v*height)); each disk offset is clamped into
// the raster, so strokes near an edge compress into the border row or
// column instead of wrapping or vanishing. Radius 0 paints exactly one
// pixel. The stamp is a hard overwrite: no blending, no anti-aliasing.
func (b *Buffer) StampBrush(u, v float64, c color.NRGBA, radius int) {
	if radius < 0 {
		radius = 0
	}
	cx := floorToInt(u * float64(b.width))
	cy := floorToInt(v * float64(b.height))
	rr := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > rr {
				continue
			}
			x := clamp(cx+dx, 0, b.width-1)
			y := clamp(cy+dy, 0, b.height-1)
			off := b.work.PixOffset(x, y)
			b.work.Pix[off+0] = c.R
			b.work.Pix[off+1] = c.G
			b.work.Pix[off+2] = c.B
			b.work.Pix[off+3] = c.A
		}
	}
	b.dirty = true
}

// Clear resets every pixel of the working raster to c.
func (b *Buffer) Clear(c color.NRGBA) {
	fill(b.work, c)
	b.dirty = true
}

// Apply flushes staged mutations onto the applied raster. It is cheap
// when nothing changed.
func (b *Buffer) Apply() {
	if !b.dirty {
		return
	}
	copy(b.applied.Pix, b.work.Pix)
	b.dirty = false
}

// Image returns the applied raster. The handle is live: its pixels
// change on the next Apply. Callers needing a stable snapshot must copy
// immediately.
func (b *Buffer) Image() *image.NRGBA {
	return b.applied
}

// At reads one applied pixel. Coordinates are clamped into the raster.
func (b *Buffer) At(x, y int) color.NRGBA {
	x = clamp(x, 0, b.width-1)
	y = clamp(y, 0, b.height-1)
	off := b.applied.PixOffset(x, y)
	return color.NRGBA{
		R: b.applied.Pix[off+0],
		G: b.applied.Pix[off+1],
		B: b.applied.Pix[off+2],
		A: b.applied.Pix[off+3],
	}
}

// Encode serializes the applied raster as PNG. PNG keeps the alpha
// channel exact, so Decode(Encode()) reproduces the buffer bit for bit.
func (b *Buffer) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.applied); err != nil {
		return nil, fmt.Errorf("could not encode canvas: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode replaces the whole buffer, working and applied rasters both,
// with the decoded snapshot. The snapshot must match the buffer's
// dimensions exactly.
func (b *Buffer) Decode(data []byte) error {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("could not decode canvas snapshot: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != b.width || bounds.Dy() != b.height {
		return fmt.Errorf("snapshot is %dx%d, canvas is %dx%d",
			bounds.Dx(), bounds.Dy(), b.width, b.height)
	}
	draw.Draw(b.work, b.work.Bounds(), img, bounds.Min, draw.Src)
	copy(b.applied.Pix, b.work.Pix)
	b.dirty = false
	return nil
}

// Preview returns a copy of the applied raster with a disk stamp
// alpha-blended over it (src-over). The buffer itself is never touched:
// this is the cursor-preview path and must not leak into persisted
// state.
func (b *Buffer) Preview(u, v float64, c color.NRGBA, radius int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	copy(out.Pix, b.applied.Pix)
	if radius < 0 {
		radius = 0
	}
	cx := floorToInt(u * float64(b.width))
	cy := floorToInt(v * float64(b.height))
	rr := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > rr {
				continue
			}
			x := clamp(cx+dx, 0, b.width-1)
			y := clamp(cy+dy, 0, b.height-1)
			blendOver(out, x, y, c)
		}
	}
	return out
}

// blendOver composites c over the pixel at (x, y) using
// non-premultiplied src-over.
func blendOver(img *image.NRGBA, x, y int, c color.NRGBA) {
	off := img.PixOffset(x, y)
	sa := uint32(c.A)
	da := uint32(img.Pix[off+3])
	// Output alpha scaled by 255 to stay in integers.
	oa255 := 255*sa + da*(255-sa)
	if oa255 == 0 {
		img.Pix[off+0] = 0
		img.Pix[off+1] = 0
		img.Pix[off+2] = 0
		img.Pix[off+3] = 0
		return
	}
	blend := func(sc, dc uint8) uint8 {
		n := uint32(sc)*sa*255 + uint32(dc)*da*(255-sa)
		return uint8(n / oa255)
	}
	img.Pix[off+0] = blend(c.R, img.Pix[off+0])
	img.Pix[off+1] = blend(c.G, img.Pix[off+1])
	img.Pix[off+2] = blend(c.B, img.Pix[off+2])
	img.Pix[off+3] = uint8(oa255 / 255)
}

func fill(img *image.NRGBA, c color.NRGBA) {
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
}

func floorToInt(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Floor(f))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
