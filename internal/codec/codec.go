// Package codec decodes and re-encodes PNG, JPEG and GIF images.
//
// The processor only talks to the [Codec] interface; [Standard] is the
// implementation used by the CLI. Still images travel as [image.Image] and
// GIFs keep every frame so animations survive the round trip.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"mpic/pkg/imgutil"
)

// Image is a decoded image handle.
type Image struct {
	// Source is the format the bytes were actually in.
	Source imgutil.Format
	// Still is the image (or the first frame of an animation).
	Still image.Image
	// Anim is set when the source was a GIF.
	Anim *gif.GIF
}

// Frames reports how many frames the image carries.
func (img *Image) Frames() int {
	if img.Anim != nil {
		return len(img.Anim.Image)
	}
	return 1
}

// Params selects the output format and its tuning knob.
type Params struct {
	Format      imgutil.Format
	Quality     int
	PaletteSize int
}

// Codec turns encoded bytes into an Image and back.
type Codec interface {
	Decode(r io.Reader, source imgutil.Format) (*Image, error)
	Encode(img *Image, p Params) ([]byte, error)
}

// Standard is the Codec backed by the image/* packages and a median cut
// quantizer for palette reduction. It imposes no pixel-count limit.
type Standard struct{}

var _ Codec = Standard{}

func (Standard) Decode(r io.Reader, source imgutil.Format) (*Image, error) {
	switch source {
	case imgutil.FormatPNG:
		m, err := png.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("decode png: %w", err)
		}
		return &Image{Source: source, Still: m}, nil
	case imgutil.FormatJPEG:
		m, err := jpeg.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("decode jpeg: %w", err)
		}
		return &Image{Source: source, Still: m}, nil
	case imgutil.FormatGIF:
		g, err := gif.DecodeAll(r)
		if err != nil {
			return nil, fmt.Errorf("decode gif: %w", err)
		}
		if len(g.Image) == 0 {
			return nil, fmt.Errorf("decode gif: no frames")
		}
		return &Image{Source: source, Still: g.Image[0], Anim: g}, nil
	default:
		return nil, fmt.Errorf("decode: unsupported source format %s", source)
	}
}

func (Standard) Encode(img *Image, p Params) ([]byte, error) {
	if img == nil || img.Still == nil {
		return nil, fmt.Errorf("encode: empty image")
	}

	var buf bytes.Buffer
	switch p.Format {
	case imgutil.FormatPNG:
		if err := encodePNG(&buf, img.Still, p.Quality); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case imgutil.FormatJPEG:
		opts := jpeg.Options{Quality: clamp(p.Quality, 1, 100)}
		if err := jpeg.Encode(&buf, img.Still, &opts); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case imgutil.FormatGIF:
		if err := encodeGIF(&buf, img, p.PaletteSize); err != nil {
			return nil, fmt.Errorf("encode gif: %w", err)
		}
	default:
		return nil, fmt.Errorf("encode: unsupported target format %s", p.Format)
	}
	return buf.Bytes(), nil
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
