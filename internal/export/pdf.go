package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/jung-kurt/gofpdf"
)

// A4 printable area in mm with a small margin on every side.
const (
	pageW  = 210.0
	pageH  = 297.0
	margin = 10.0
)

// SavePDF writes the wall image centered on a single A4 page, scaled to
// fit while keeping its aspect ratio.
func SavePDF(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("no canvas to export")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode canvas: %w", err)
	}

	bounds := img.Bounds()
	w, h := fitPage(float64(bounds.Dx()), float64(bounds.Dy()))

	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("wall", opts, &buf)
	p.ImageOptions("wall", (pageW-w)/2, (pageH-h)/2, w, h, false, opts, 0, "")
	return p.OutputFileAndClose(path)
}

func fitPage(imgW, imgH float64) (float64, float64) {
	maxW := pageW - 2*margin
	maxH := pageH - 2*margin
	scale := maxW / imgW
	if imgH*scale > maxH {
		scale = maxH / imgH
	}
	return imgW * scale, imgH * scale
}
