// Package conf loads editor configuration from TOML files and watches them
// for live reload. A file carries only the declarative subset of the
// configuration; runtime-only values (language factories, extension
// objects, stores) stay on the base config the file is applied over.
package conf

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/editkit/tether"
)

// ErrParse reports a malformed configuration file.
var ErrParse = errors.New("conf: parse error")

// File is the on-disk configuration shape.
type File struct {
	// Setup selects an extension bundle: "basic", "minimal" or empty.
	Setup string `toml:"setup"`

	// Lang is a language key resolved through the base config's map.
	Lang string `toml:"lang"`

	// TabSize is the indentation width in columns.
	TabSize int `toml:"tab_size"`

	// UseTabs selects hard tabs over spaces.
	UseTabs bool `toml:"use_tabs"`

	// ReadOnly disables editing.
	ReadOnly bool `toml:"read_only"`

	// Styles maps style keys to CSS color strings.
	Styles map[string]string `toml:"styles"`

	// Notify tunes change-notification rate limiting.
	Notify NotifySection `toml:"notify"`
}

// NotifySection is the [notify] table.
type NotifySection struct {
	// Mode is "debounce", "throttle" or empty for immediate delivery.
	Mode string `toml:"mode"`

	// DurationMS is the window length in milliseconds.
	DurationMS int `toml:"duration_ms"`
}

// Parse decodes TOML data into a File.
func Parse(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &f, nil
}

// Load reads and decodes the file at path. A missing file yields an empty
// File, not an error, so hosts can treat the file as optional.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Apply overlays the file's settings onto a base configuration and returns
// the result. Zero-valued file fields leave the base untouched, so a file
// only has to name what it changes.
func (f *File) Apply(base tether.Config) tether.Config {
	out := base

	if f.Setup != "" {
		out.Setup = tether.Setup(f.Setup)
	}
	if f.Lang != "" {
		out.Lang = f.Lang
	}
	if f.TabSize > 0 {
		out.TabSize = f.TabSize
	}
	if f.UseTabs {
		out.UseTabs = true
	}
	if f.ReadOnly {
		out.ReadOnly = true
	}
	if len(f.Styles) > 0 {
		styles := make(map[string]string, len(base.Styles)+len(f.Styles))
		for k, v := range base.Styles {
			styles[k] = v
		}
		for k, v := range f.Styles {
			styles[k] = v
		}
		out.Styles = styles
	}
	if f.Notify.Mode != "" {
		out.Notify = tether.NotifyConfig{
			Mode:     tether.NotifyMode(f.Notify.Mode),
			Duration: time.Duration(f.Notify.DurationMS) * time.Millisecond,
		}
	}
	return out
}
