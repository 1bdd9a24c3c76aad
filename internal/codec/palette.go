package codec

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

const maxPaletteSize = 256

// pngColours maps a 0-100 quality onto a palette size between 2 and 256.
func pngColours(quality int) int {
	return 2 + 254*clamp(quality, 0, 100)/100
}

func encodePNG(w io.Writer, m image.Image, quality int) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if quality >= 100 {
		return enc.Encode(w, m)
	}
	return enc.Encode(w, quantizeTo(m, pngColours(quality)))
}

func encodeGIF(w io.Writer, img *Image, paletteSize int) error {
	colours := clamp(paletteSize, 2, maxPaletteSize)

	if img.Anim == nil {
		frame := quantizeTo(img.Still, colours)
		return gif.EncodeAll(w, &gif.GIF{
			Image: []*image.Paletted{frame},
			Delay: []int{0},
		})
	}

	src := img.Anim
	out := &gif.GIF{
		Image:     make([]*image.Paletted, len(src.Image)),
		Delay:     src.Delay,
		Disposal:  src.Disposal,
		LoopCount: src.LoopCount,
		// Frames carry local palettes, so only the logical screen size is kept.
		Config: image.Config{Width: src.Config.Width, Height: src.Config.Height},
	}
	for i, frame := range src.Image {
		out.Image[i] = reduceFrame(frame, colours)
	}
	return gif.EncodeAll(w, out)
}

func reduceFrame(frame *image.Paletted, colours int) *image.Paletted {
	if len(frame.Palette) <= colours {
		return frame
	}
	return quantizeTo(frame, colours)
}

// quantizeTo builds a palette of at most colours entries for m and dithers m
// onto it.
func quantizeTo(m image.Image, colours int) *image.Paletted {
	q := quantize.MedianCutQuantizer{AddTransparent: hasTransparency(m)}
	pal := q.Quantize(make(color.Palette, 0, colours), m)
	if len(pal) == 0 {
		pal = color.Palette{color.Black, color.White}
	}

	bounds := m.Bounds()
	dst := image.NewPaletted(bounds, pal)
	draw.FloydSteinberg.Draw(dst, bounds, m, bounds.Min)
	return dst
}

func hasTransparency(m image.Image) bool {
	if p, ok := m.(*image.Paletted); ok {
		for _, c := range p.Palette {
			if _, _, _, a := c.RGBA(); a < 0xffff {
				return true
			}
		}
		return false
	}
	if o, ok := m.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}
