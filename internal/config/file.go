package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// File mirrors the optional TOML config file. Unset keys stay nil.
type File struct {
	Dir        *string `toml:"dir"`
	Output     *string `toml:"output"`
	Quality    *int    `toml:"quality"`
	GifColours *int    `toml:"gif_colours"`
	// BlackDirs accepts either a string ("no,tmp") or an array of strings.
	BlackDirs any   `toml:"black_dirs"`
	Replace   *bool `toml:"replace"`
}

// LoadFile decodes the TOML file at path. Unknown keys are rejected.
func LoadFile(path string) (File, error) {
	var f File

	fh, err := os.Open(path)
	if err != nil {
		return f, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()

	dec := toml.NewDecoder(fh)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return f, fmt.Errorf("%w: %s: %s", ErrValidation, path, strict.String())
		}
		return f, fmt.Errorf("%w: parse %s: %v", ErrValidation, path, err)
	}
	return f, nil
}

// Apply overlays the keys set in f onto o.
func (o *Options) Apply(f File) error {
	if f.Dir != nil {
		o.Dir = *f.Dir
	}
	if f.Output != nil {
		o.Output = *f.Output
	}
	if f.Quality != nil {
		o.Quality = *f.Quality
	}
	if f.GifColours != nil {
		o.GifColours = *f.GifColours
	}
	if f.Replace != nil {
		o.Replace = *f.Replace
	}
	if f.BlackDirs != nil {
		names, err := nameList(f.BlackDirs)
		if err != nil {
			return err
		}
		o.BlackDirs = names
	}
	return nil
}

func nameList(v any) ([]string, error) {
	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []any:
		names := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: black_dirs entries must be strings, got %T", ErrValidation, item)
			}
			names = append(names, s)
		}
		return names, nil
	default:
		return nil, fmt.Errorf("%w: black_dirs must be a string or an array of strings, got %T", ErrValidation, v)
	}
}
