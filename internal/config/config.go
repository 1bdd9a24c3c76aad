// Package config holds mpic's runtime configuration: defaults, the optional
// TOML file, and validation into an immutable [Config].
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrValidation marks configuration that cannot be used.
var ErrValidation = errors.New("invalid configuration")

const (
	DefaultQuality    = 80
	DefaultGifColours = 128
	DefaultOutputDir  = "output"

	MinQuality    = 0
	MaxQuality    = 100
	MinGifColours = 2
	MaxGifColours = 256
)

// DefaultBlackDirs lists the directory names skipped when none are configured.
var DefaultBlackDirs = []string{"no"}

// Options are raw, unvalidated settings as collected from defaults, the
// config file and flags. Paths may be relative.
type Options struct {
	Dir         string
	Output      string
	Quality     int
	GifColours  int
	BlackDirs   []string
	Replace     bool
	FailOnError bool
}

// Default returns the built-in settings. Dir "." and Output "output" resolve
// against the working directory passed to [Resolve].
func Default() Options {
	return Options{
		Dir:        ".",
		Output:     DefaultOutputDir,
		Quality:    DefaultQuality,
		GifColours: DefaultGifColours,
		BlackDirs:  slices.Clone(DefaultBlackDirs),
	}
}

// Config is the validated configuration for one run.
type Config struct {
	SourceRoot   string
	OutputRoot   string // empty in replace mode
	Quality      int
	GifColours   int
	ExcludedDirs []string // sorted, unique
	Replace      bool
	FailOnError  bool
}

// Resolve validates opts and turns relative paths into absolute ones rooted at
// cwd. It does not touch the filesystem.
func Resolve(opts Options, cwd string) (Config, error) {
	if !filepath.IsAbs(cwd) {
		return Config{}, fmt.Errorf("%w: working directory %q is not absolute", ErrValidation, cwd)
	}

	if opts.Quality < MinQuality || opts.Quality > MaxQuality {
		return Config{}, fmt.Errorf("%w: quality %d outside %d-%d", ErrValidation, opts.Quality, MinQuality, MaxQuality)
	}
	if opts.GifColours < MinGifColours || opts.GifColours > MaxGifColours {
		return Config{}, fmt.Errorf("%w: gif colours %d outside %d-%d", ErrValidation, opts.GifColours, MinGifColours, MaxGifColours)
	}

	excluded, err := NormalizeNames(opts.BlackDirs)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		SourceRoot:   absolute(cwd, opts.Dir),
		Quality:      opts.Quality,
		GifColours:   opts.GifColours,
		ExcludedDirs: excluded,
		Replace:      opts.Replace,
		FailOnError:  opts.FailOnError,
	}
	if !opts.Replace {
		output := opts.Output
		if strings.TrimSpace(output) == "" {
			output = DefaultOutputDir
		}
		cfg.OutputRoot = absolute(cwd, output)
		if cfg.OutputRoot == cfg.SourceRoot {
			return Config{}, fmt.Errorf("%w: output directory equals source directory; use --replace", ErrValidation)
		}
	}
	return cfg, nil
}

// NormalizeNames splits comma-delimited entries, trims them, drops empties and
// returns the sorted unique set. Entries are directory basenames or glob
// patterns over basenames.
func NormalizeNames(raw []string) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			if strings.ContainsAny(name, `/\`) {
				return nil, fmt.Errorf("%w: excluded directory %q must be a name, not a path", ErrValidation, name)
			}
			if !doublestar.ValidatePattern(name) {
				return nil, fmt.Errorf("%w: excluded directory pattern %q is malformed", ErrValidation, name)
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// IsExcluded reports whether a directory with the given basename is skipped.
// Matching is case-sensitive.
func (c Config) IsExcluded(name string) bool {
	for _, pattern := range c.ExcludedDirs {
		if pattern == name {
			return true
		}
		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func absolute(cwd, p string) string {
	if strings.TrimSpace(p) == "" {
		return filepath.Clean(cwd)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}
