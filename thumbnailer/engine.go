// Package thumbnailer turns a source image byte stream into a re-encoded
// derived image at a target (width, height, alignment). Generation is
// deterministic for identical inputs, which is what makes the blob-side
// thumbnail cache safe to regenerate.
package thumbnailer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ContentType is the fixed output format of the engine. Every thumbnail is
// re-encoded as baseline JPEG regardless of the source format.
const ContentType = "image/jpeg"

// ErrUnsupportedImageFormat is returned when the source bytes cannot be
// decoded. No fallback image is substituted.
var ErrUnsupportedImageFormat = errors.New("unsupported image format")

// Alignment codes. 0 skips canvas compositing entirely; 1-9 place the fitted
// image on a white canvas in a 3x3 compass layout.
const (
	AlignNone         = 0
	AlignCenter       = 1
	AlignTopLeft      = 2
	AlignTopCenter    = 3
	AlignTopRight     = 4
	AlignCenterRight  = 5
	AlignBottomRight  = 6
	AlignBottomCenter = 7
	AlignBottomLeft   = 8
	AlignCenterLeft   = 9
)

type Engine struct {
	quality int
}

func New() *Engine {
	return &Engine{quality: 90}
}

// Create produces the derived image for the given target box and alignment.
//
// With align == 0 the engine only shrinks: a source that already fits inside
// the requested box is returned unchanged, without re-encoding. Otherwise the
// source is scaled proportionally into the box; with align > 0 the result is
// composited onto a white canvas of (max(outW,width), max(outH,height)).
func (e *Engine) Create(src []byte, width, height, align int) ([]byte, error) {
	img, err := decode(src)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	if align == AlignNone && fitsWithin(srcW, srcH, width, height) {
		return src, nil
	}

	outW, outH := ProportionalSize(srcW, srcH, width, height)
	fitted := imaging.Resize(img, outW, outH, imaging.Lanczos)

	var out image.Image = fitted
	if align > AlignNone {
		canvasW := max(outW, width)
		canvasH := max(outH, height)
		canvas := imaging.New(canvasW, canvasH, color.White)
		x, y := placement(align, canvasW, canvasH, outW, outH)
		out = imaging.Paste(canvas, fitted, image.Pt(x, y))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(e.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ProportionalSize computes the fitted output size for a source of
// (srcW, srcH) and a target box. The aspect ratio is always preserved: a
// missing dimension (<= 0) is derived from the ratio, and when both are given
// the smaller of the two scale factors wins.
func ProportionalSize(srcW, srcH, width, height int) (int, int) {
	switch {
	case width <= 0 && height <= 0:
		return srcW, srcH
	case width <= 0:
		ratio := float64(srcW) / float64(srcH)
		return atLeastOne(int(math.Round(float64(height) * ratio))), height
	case height <= 0:
		ratio := float64(srcH) / float64(srcW)
		return width, atLeastOne(int(math.Round(float64(width) * ratio)))
	}

	scaleW := float64(width) / float64(srcW)
	scaleH := float64(height) / float64(srcH)
	scale := math.Min(scaleW, scaleH)
	// Degenerate-ratio guard: fall back to the non-zero factor.
	if scale == 0 {
		if scaleW != 0 {
			scale = scaleW
		} else {
			scale = scaleH
		}
	}
	outW := atLeastOne(int(math.Round(float64(srcW) * scale)))
	outH := atLeastOne(int(math.Round(float64(srcH) * scale)))
	return outW, outH
}

// fitsWithin reports whether the source already fits inside the requested
// box, treating an unset dimension as unconstrained.
func fitsWithin(srcW, srcH, width, height int) bool {
	if width <= 0 && height <= 0 {
		return true
	}
	fitsW := width <= 0 || srcW <= width
	fitsH := height <= 0 || srcH <= height
	return fitsW && fitsH
}

func placement(align, canvasW, canvasH, w, h int) (int, int) {
	left, top := 0, 0
	centerX := (canvasW - w) / 2
	centerY := (canvasH - h) / 2
	right := canvasW - w
	bottom := canvasH - h

	switch align {
	case AlignTopLeft:
		return left, top
	case AlignTopCenter:
		return centerX, top
	case AlignTopRight:
		return right, top
	case AlignCenterRight:
		return right, centerY
	case AlignBottomRight:
		return right, bottom
	case AlignBottomCenter:
		return centerX, bottom
	case AlignBottomLeft:
		return left, bottom
	case AlignCenterLeft:
		return left, centerY
	default:
		return centerX, centerY
	}
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
