// Package export writes wall snapshots out as image files and PDFs.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
)

// SaveImage writes img to path, picking the encoder from the file
// extension. JPEG flattens transparency onto white since the format
// has no alpha channel.
func SaveImage(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("no canvas to export")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case "", ".png":
		return png.Encode(f, img)
	case ".jpg", ".jpeg":
		flat := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
		flat = imaging.Overlay(flat, img, image.Point{}, 1.0)
		return jpeg.Encode(f, flat, &jpeg.Options{Quality: 100})
	case ".bmp":
		return bmp.Encode(f, img)
	default:
		return errors.New("unsupported image format")
	}
}

// Thumbnail writes a scaled-down copy of img, width pixels wide with
// the height following the canvas aspect ratio.
func Thumbnail(path string, img image.Image, width int) error {
	if img == nil {
		return fmt.Errorf("no canvas to export")
	}
	if width <= 0 {
		return fmt.Errorf("thumbnail width must be positive, got %d", width)
	}
	small := imaging.Resize(img, width, 0, imaging.Lanczos)
	return SaveImage(path, small)
}
