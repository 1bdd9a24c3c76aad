package imgutil

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Format identifies one of the raster formats mpic re-encodes.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatGIF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	default:
		return "unknown"
	}
}

var extFormats = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
}

// FormatFromPath maps a file extension (case-insensitive) to a Format.
func FormatFromPath(path string) Format {
	return extFormats[strings.ToLower(filepath.Ext(path))]
}

// IsImagePath reports whether path carries one of the handled extensions.
func IsImagePath(path string) bool {
	return FormatFromPath(path) != FormatUnknown
}

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	gif87aSig = []byte("GIF87a")
	gif89aSig = []byte("GIF89a")
)

const headerLen = 8

// DetectHeader inspects the first 8 bytes of a file for known signatures.
func DetectHeader(header []byte) (Format, error) {
	if len(header) < headerLen {
		return FormatUnknown, errors.New("header too short")
	}

	switch {
	case hasPrefix(header, pngSig):
		return FormatPNG, nil
	case hasPrefix(header, jpegSig):
		return FormatJPEG, nil
	case hasPrefix(header, gif87aSig), hasPrefix(header, gif89aSig):
		return FormatGIF, nil
	}

	return FormatUnknown, nil
}

// SniffReader reads the first 8 bytes from r and determines its format.
func SniffReader(r io.Reader) (Format, error) {
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return FormatUnknown, err
	}

	return DetectHeader(header)
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}
