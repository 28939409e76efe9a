// Package images rasterizes debug renderings.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultSVGSize is used when SVG viewBox has no size.
const defaultSVGSize = 1024

// maxRasterDim is the maximum pixel dimension (width or height) allowed when
// rasterizing an SVG. Huge layout areas would otherwise allocate enormous
// RGBA buffers.
var maxRasterDim = 8192

// RasterizeSVG renders SVG on white background. Image size is SVG viewBox
// size multiplied by scale keeping aspect ratio and clamped to maxRasterDim.
func RasterizeSVG(svgData []byte, scale float64) (*image.RGBA, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("bad raster scale %g", scale)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, err
	}

	intrW, intrH := icon.ViewBox.W, icon.ViewBox.H
	if intrW <= 0 {
		intrW = defaultSVGSize
	}
	if intrH <= 0 {
		intrH = defaultSVGSize
	}

	w := max(int(math.Round(intrW*scale)), 1)
	h := max(int(math.Round(intrH*scale)), 1)

	// Clamp preserving aspect ratio.
	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

var compressionLevels = map[string]png.CompressionLevel{
	"":        png.DefaultCompression,
	"default": png.DefaultCompression,
	"none":    png.NoCompression,
	"speed":   png.BestSpeed,
	"best":    png.BestCompression,
}

// EncodePNG writes img as PNG using named compression level.
func EncodePNG(w io.Writer, img image.Image, compression string) error {
	level, ok := compressionLevels[compression]
	if !ok {
		return fmt.Errorf("unknown PNG compression %q", compression)
	}
	return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(level))
}
