package processor

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrCodec             = errors.New("codec failure")
	ErrFilesystem        = errors.New("filesystem failure")
	ErrDirectoryList     = errors.New("cannot list directory")
)

// Task is one image file found by the walk.
type Task struct {
	Path    string
	BaseDir string // root the walk started from
}

// Result is the outcome of transcoding one Task. OutputPath is the attempted
// destination even when Err is set.
type Result struct {
	Path         string
	OutputPath   string
	BeforeBytes  int64
	AfterBytes   int64
	MetadataTags int
	Err          error
}

type Summary struct {
	Processed   int
	Failed      int
	SkippedDirs int
	BytesBefore int64
	BytesAfter  int64

	// MetadataTags counts EXIF tags dropped from successfully written files.
	MetadataTags int
}

func (s *Summary) add(res Result) {
	if res.Err != nil {
		s.Failed++
		return
	}
	s.Processed++
	s.BytesBefore += res.BeforeBytes
	s.BytesAfter += res.AfterBytes
	s.MetadataTags += res.MetadataTags
}
