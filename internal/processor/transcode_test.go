package processor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"mpic/internal/codec"
	"mpic/internal/config"
	"mpic/pkg/imgutil"
)

func TestMapPath(t *testing.T) {
	mirror := mirrorConfig("/src", "/out")
	replace := replaceConfig("/src")

	tests := []struct {
		name string
		task Task
		cfg  config.Config
		want string
	}{
		{"top level", Task{Path: "/src/a.png", BaseDir: "/src"}, mirror, "/out/a.png"},
		{"nested keeps structure", Task{Path: "/src/x/y/b.jpg", BaseDir: "/src"}, mirror, "/out/x/y/b.jpg"},
		{"relative to walk root not parent", Task{Path: "/src/x/c.gif", BaseDir: "/src"}, mirror, "/out/x/c.gif"},
		{"replace is sibling temp", Task{Path: "/src/x/d.png", BaseDir: "/src"}, replace, "/src/x/d.png.tmp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapPath(tt.task, tt.cfg)
			if err != nil {
				t.Fatalf("MapPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("MapPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapPathRequiresOutput(t *testing.T) {
	if _, err := MapPath(Task{Path: "/src/a.png", BaseDir: "/src"}, mirrorConfig("/src", "")); err == nil {
		t.Fatal("expected error without output root")
	}
}

func TestTranscodeUnsupportedExtension(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string][]byte{"/src/a.bmp": fakeImage(imgutil.FormatPNG, "a")})

	res := NewTranscoder(fsys, &fakeCodec{}, mirrorConfig("/src", "/out"), nil).Transcode(Task{Path: "/src/a.bmp", BaseDir: "/src"})
	if !errors.Is(res.Err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", res.Err)
	}
	if exists(t, fsys, "/out") {
		t.Error("output written for unsupported file")
	}
}

func TestTranscodeDecodesByContent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string][]byte{"/src/photo.jpg": fakeImage(imgutil.FormatPNG, "p")})

	c := &fakeCodec{}
	res := NewTranscoder(fsys, c, mirrorConfig("/src", "/out"), nil).Transcode(Task{Path: "/src/photo.jpg", BaseDir: "/src"})
	if res.Err != nil {
		t.Fatalf("Transcode: %v", res.Err)
	}
	if len(c.params) != 1 || c.params[0].Format != imgutil.FormatJPEG {
		t.Errorf("params = %+v, want JPEG output", c.params)
	}
	if res.OutputPath != "/out/photo.jpg" || res.BeforeBytes != 9 || res.AfterBytes != 15 {
		t.Errorf("result = %+v", res)
	}
}

func TestTranscodeMissingFile(t *testing.T) {
	res := NewTranscoder(afero.NewMemMapFs(), &fakeCodec{}, mirrorConfig("/src", "/out"), nil).Transcode(Task{Path: "/src/gone.png", BaseDir: "/src"})
	if !errors.Is(res.Err, ErrFilesystem) {
		t.Fatalf("err = %v, want ErrFilesystem", res.Err)
	}
	if res.OutputPath != "/out/gone.png" {
		t.Errorf("OutputPath = %q, want attempted destination", res.OutputPath)
	}
}

func TestEncodeParams(t *testing.T) {
	cfg := config.Config{Quality: 70, GifColours: 64}
	tests := []struct {
		format imgutil.Format
		want   codec.Params
	}{
		{imgutil.FormatPNG, codec.Params{Format: imgutil.FormatPNG, Quality: 70}},
		{imgutil.FormatJPEG, codec.Params{Format: imgutil.FormatJPEG, Quality: 70}},
		{imgutil.FormatGIF, codec.Params{Format: imgutil.FormatGIF, PaletteSize: 64}},
		{imgutil.FormatUnknown, codec.Params{Format: imgutil.FormatUnknown}},
	}
	for _, tt := range tests {
		if got := encodeParams(tt.format, cfg); got != tt.want {
			t.Errorf("encodeParams(%v) = %+v, want %+v", tt.format, got, tt.want)
		}
	}
}

func TestTranscodeFailureLogsSourcePath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string][]byte{"/src/a.bmp": fakeImage(imgutil.FormatPNG, "a")})

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	NewTranscoder(fsys, &fakeCodec{}, mirrorConfig("/src", "/out"), logger).Transcode(Task{Path: "/src/a.bmp", BaseDir: "/src"})

	if !strings.Contains(logs.String(), `"path":"/src/a.bmp"`) {
		t.Errorf("failure log missing source path:\n%s", logs.String())
	}
}

func TestRunCountsDroppedExifTags(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string][]byte{
		"/src/a.jpg": jpegWithExif(),
		"/src/b.png": fakeImage(imgutil.FormatPNG, "b"),
	})

	summary, err := Run(context.Background(), fsys, &fakeCodec{}, mirrorConfig("/src", "/out"), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.MetadataTags != 2 {
		t.Errorf("MetadataTags = %d, want 2", summary.MetadataTags)
	}
}
