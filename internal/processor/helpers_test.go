package processor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"mpic/internal/codec"
	"mpic/internal/config"
	"mpic/pkg/imgutil"
)

var signatures = map[imgutil.Format][]byte{
	imgutil.FormatPNG:  {0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a},
	imgutil.FormatJPEG: {0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46},
	imgutil.FormatGIF:  []byte("GIF89a\x01\x00"),
}

// fakeImage returns bytes that sniff as f, followed by payload.
func fakeImage(f imgutil.Format, payload string) []byte {
	return append(append([]byte{}, signatures[f]...), payload...)
}

// jpegWithExif returns JPEG-signed bytes whose APP1 segment carries two
// EXIF tags.
func jpegWithExif() []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	for _, entry := range [][3]uint32{{0x0110, 8, 38}, {0x0132, 20, 46}} {
		_ = binary.Write(&tiff, binary.LittleEndian, uint16(entry[0]))
		_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
		_ = binary.Write(&tiff, binary.LittleEndian, entry[1])
		_ = binary.Write(&tiff, binary.LittleEndian, entry[2])
	}
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))
	tiff.Write([]byte("TestCam\x00"))
	tiff.Write([]byte("2024:01:02 03:04:05\x00"))

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xd8, 0xff, 0xe1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write([]byte{0xff, 0xd9})
	return buf.Bytes()
}

// fakeCodec fails on payloads containing "corrupt" and otherwise encodes to
// a short marker recording the params it was given.
type fakeCodec struct {
	params []codec.Params
}

func (c *fakeCodec) Decode(r io.Reader, source imgutil.Format) (*codec.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if bytes.Contains(data, []byte("corrupt")) {
		return nil, errors.New("corrupt image data")
	}
	return &codec.Image{Source: source, Still: image.NewGray(image.Rect(0, 0, 1, 1))}, nil
}

func (c *fakeCodec) Encode(_ *codec.Image, p codec.Params) ([]byte, error) {
	c.params = append(c.params, p)
	return []byte("re-encoded " + p.Format.String()), nil
}

// recorder is a Handler that only remembers what it was given.
type recorder struct {
	tasks []Task
}

func (r *recorder) Transcode(task Task) Result {
	r.tasks = append(r.tasks, task)
	return Result{Path: task.Path}
}

// failingFs injects errors into a MemMapFs for chosen paths.
type failingFs struct {
	afero.Fs
	openErr     map[string]error
	openFileErr map[string]error
	renameErr   error
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if err, ok := f.openFileErr[name]; ok {
		return nil, err
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *failingFs) Open(name string) (afero.File, error) {
	if err, ok := f.openErr[name]; ok {
		return nil, err
	}
	return f.Fs.Open(name)
}

func (f *failingFs) Rename(oldname, newname string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	return f.Fs.Rename(oldname, newname)
}

func writeTree(t *testing.T, fsys afero.Fs, files map[string][]byte) {
	t.Helper()
	for path, data := range files {
		if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", path, err)
		}
		if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func mirrorConfig(source, output string, excluded ...string) config.Config {
	if excluded == nil {
		excluded = []string{"no"}
	}
	return config.Config{
		SourceRoot:   source,
		OutputRoot:   output,
		Quality:      80,
		GifColours:   128,
		ExcludedDirs: excluded,
	}
}

func replaceConfig(source string) config.Config {
	cfg := mirrorConfig(source, "")
	cfg.Replace = true
	return cfg
}

func exists(t *testing.T, fsys afero.Fs, path string) bool {
	t.Helper()
	_, err := fsys.Stat(path)
	if err == nil {
		return true
	}
	if !os.IsNotExist(err) {
		t.Fatalf("stat %s: %v", path, err)
	}
	return false
}

func readString(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
