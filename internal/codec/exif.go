package codec

import (
	"errors"
	"fmt"
	"io"

	exif "github.com/dsoprea/go-exif/v3"
)

// ExifTagCount reports how many EXIF tags r carries. Re-encoding drops them,
// so the processor logs and counts them. Files without EXIF yield zero.
func ExifTagCount(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read exif source: %w", err)
	}

	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return 0, nil
		}
		return 0, fmt.Errorf("locate exif: %w", err)
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return 0, fmt.Errorf("parse exif: %w", err)
	}
	return len(tags), nil
}
