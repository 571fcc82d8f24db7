// Package convert renders the first page of a PDF document to a PNG image.
package convert

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotPNG is returned when a renderer produces something other than a PNG.
var ErrNotPNG = errors.New("converter output is not a PNG image")

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Converter turns PDF bytes into a PNG preview of the first page.
type Converter interface {
	Convert(ctx context.Context, pdf []byte) ([]byte, error)
}

// Func adapts a function to Converter.
type Func func(ctx context.Context, pdf []byte) ([]byte, error)

func (f Func) Convert(ctx context.Context, pdf []byte) ([]byte, error) {
	return f(ctx, pdf)
}

// ImageName derives the preview file name from the uploaded document name:
// "cv.pdf" becomes "cv.png".
func ImageName(pdfName string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(pdfName), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "resume.png"
	}
	if ext := path.Ext(base); strings.EqualFold(ext, ".pdf") {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		base = "resume"
	}
	return base + ".png"
}

// IsPNG reports whether data starts with the PNG signature.
func IsPNG(data []byte) bool {
	return bytes.HasPrefix(data, pngMagic)
}
