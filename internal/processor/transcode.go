package processor

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"mpic/internal/codec"
	"mpic/internal/config"
	"mpic/internal/display"
	"mpic/internal/logging"
	"mpic/pkg/imgutil"
)

// Transcoder re-encodes single image files and persists the result in mirror
// or replace mode.
type Transcoder struct {
	fs     afero.Fs
	codec  codec.Codec
	cfg    config.Config
	logger *slog.Logger
}

func NewTranscoder(fsys afero.Fs, c codec.Codec, cfg config.Config, logger *slog.Logger) *Transcoder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Transcoder{fs: fsys, codec: c, cfg: cfg, logger: logger}
}

// Transcode handles one file. Failures are logged and returned in the Result;
// they never panic or abort the caller.
func (t *Transcoder) Transcode(task Task) Result {
	res := t.transcode(task)
	if res.Err != nil {
		path := res.OutputPath
		if path == "" {
			path = task.Path
		}
		t.logger.Error("compression failed", "path", path, "error", res.Err)
		return res
	}
	t.logger.Info("compressed",
		"before", display.FormatSize(res.BeforeBytes),
		"after", display.FormatSize(res.AfterBytes),
		"path", res.OutputPath,
	)
	return res
}

func (t *Transcoder) transcode(task Task) Result {
	res := Result{Path: task.Path}

	format := imgutil.FormatFromPath(task.Path)
	if format == imgutil.FormatUnknown {
		res.Err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(task.Path))
		return res
	}

	dest, err := MapPath(task, t.cfg)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrFilesystem, err)
		return res
	}

	if !t.cfg.Replace {
		res.OutputPath = dest
		buf, err := t.encode(task.Path, format, &res)
		if err != nil {
			res.Err = err
			return res
		}
		if _, err := writeFile(t.fs, dest, buf); err != nil {
			res.Err = err
			return res
		}
		return t.finish(res, dest)
	}

	res.OutputPath = task.Path
	rep := newReplacement(t.fs, task.Path, dest)
	buf, err := t.encode(task.Path, format, &res)
	if err == nil {
		rep.encoded()
		err = rep.writeTemp(buf)
	}
	if err == nil {
		err = rep.commit()
	}
	if err != nil {
		if cleanupErr := rep.fail(); cleanupErr != nil {
			t.logger.Debug("temp file cleanup failed", "path", dest, "error", cleanupErr)
		}
		res.Err = err
		return res
	}
	return t.finish(res, task.Path)
}

// encode reads, decodes and re-encodes path, filling in BeforeBytes and
// MetadataTags on res.
func (t *Transcoder) encode(path string, format imgutil.Format, res *Result) ([]byte, error) {
	info, err := t.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrFilesystem, path, err)
	}
	res.BeforeBytes = info.Size()

	data, err := afero.ReadFile(t.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFilesystem, path, err)
	}

	// Decode by content; the extension only picks the output format.
	source, err := imgutil.SniffReader(bytes.NewReader(data))
	if err != nil || source == imgutil.FormatUnknown {
		return nil, fmt.Errorf("%w: %s is not a PNG, JPEG or GIF image", ErrCodec, path)
	}

	if source == imgutil.FormatJPEG {
		tags, err := codec.ExifTagCount(bytes.NewReader(data))
		if err != nil {
			t.logger.Debug("exif probe failed", "path", path, "error", err)
		} else if tags > 0 {
			res.MetadataTags = tags
			t.logger.Debug("dropping exif metadata", "path", path, "tags", tags)
		}
	}

	img, err := t.codec.Decode(bytes.NewReader(data), source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	buf, err := t.codec.Encode(img, encodeParams(format, t.cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	return buf, nil
}

func (t *Transcoder) finish(res Result, final string) Result {
	info, err := t.fs.Stat(final)
	if err != nil {
		res.Err = fmt.Errorf("%w: stat %s: %w", ErrFilesystem, final, err)
		return res
	}
	res.AfterBytes = info.Size()
	return res
}

// encodeParams picks the tuning knob for each output format.
func encodeParams(f imgutil.Format, cfg config.Config) codec.Params {
	switch f {
	case imgutil.FormatGIF:
		return codec.Params{Format: f, PaletteSize: cfg.GifColours}
	case imgutil.FormatPNG, imgutil.FormatJPEG:
		return codec.Params{Format: f, Quality: cfg.Quality}
	default:
		return codec.Params{Format: imgutil.FormatUnknown}
	}
}
