package processor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// filePerm is applied to every written image: owner and group read/write,
// others read.
const filePerm os.FileMode = 0o664

type replaceState int

const (
	stateStart replaceState = iota
	stateEncoded
	stateWrittenTemp
	stateRenamed
	stateFailed
)

func (s replaceState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateEncoded:
		return "encoded"
	case stateWrittenTemp:
		return "written-temp"
	case stateRenamed:
		return "renamed"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("replaceState(%d)", int(s))
	}
}

// replacement rewrites one file in place: the new bytes go to a sibling temp
// file which is then renamed over the original in a single step. The original
// path therefore always holds either the old or the complete new content.
type replacement struct {
	fs       afero.Fs
	original string
	temp     string
	state    replaceState
	// touched is set once this replacement has opened the temp file.
	touched bool
}

func newReplacement(fsys afero.Fs, original, temp string) *replacement {
	return &replacement{fs: fsys, original: original, temp: temp, state: stateStart}
}

func (r *replacement) encoded() {
	if r.state == stateStart {
		r.state = stateEncoded
	}
}

func (r *replacement) writeTemp(buf []byte) error {
	if r.state != stateEncoded {
		return fmt.Errorf("write temp file in state %s", r.state)
	}
	created, err := writeFile(r.fs, r.temp, buf)
	r.touched = created
	if err != nil {
		return err
	}
	r.state = stateWrittenTemp
	return nil
}

func (r *replacement) commit() error {
	if r.state != stateWrittenTemp {
		return fmt.Errorf("rename temp file in state %s", r.state)
	}
	if err := r.fs.Rename(r.temp, r.original); err != nil {
		return fmt.Errorf("%w: rename %s over %s: %w", ErrFilesystem, r.temp, r.original, err)
	}
	r.state = stateRenamed
	return nil
}

// fail moves to the failed state and removes the temp file if this
// replacement may have created it. The removal error is returned for logging
// only.
func (r *replacement) fail() error {
	r.state = stateFailed
	if !r.touched {
		return nil
	}
	if _, err := r.fs.Stat(r.temp); err != nil {
		return nil
	}
	return r.fs.Remove(r.temp)
}

// writeFile creates path's parent directories, writes buf and applies
// filePerm regardless of umask. created reports whether path was opened for
// writing, so callers know the file on disk is theirs to clean up.
func writeFile(fsys afero.Fs, path string, buf []byte) (created bool, err error) {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("%w: create %s: %w", ErrFilesystem, filepath.Dir(path), err)
	}
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return false, fmt.Errorf("%w: open %s: %w", ErrFilesystem, path, err)
	}
	_, err = f.Write(buf)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return true, fmt.Errorf("%w: write %s: %w", ErrFilesystem, path, err)
	}
	if err := fsys.Chmod(path, filePerm); err != nil {
		return true, fmt.Errorf("%w: chmod %s: %w", ErrFilesystem, path, err)
	}
	return true, nil
}
