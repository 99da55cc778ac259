package conf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/editkit/tether"
)

func TestParse(t *testing.T) {
	data := []byte(`
setup = "basic"
lang = "go"
tab_size = 4
use_tabs = true
read_only = true

[styles]
background = "#1e1e1e"

[notify]
mode = "debounce"
duration_ms = 250
`)

	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Setup != "basic" || f.Lang != "go" || f.TabSize != 4 {
		t.Errorf("parsed %+v", f)
	}
	if !f.UseTabs || !f.ReadOnly {
		t.Errorf("bool fields: %+v", f)
	}
	if f.Styles["background"] != "#1e1e1e" {
		t.Errorf("styles = %v", f.Styles)
	}
	if f.Notify.Mode != "debounce" || f.Notify.DurationMS != 250 {
		t.Errorf("notify = %+v", f.Notify)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte(`tab_size = "nope`)); !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Setup != "" || f.TabSize != 0 || len(f.Styles) != 0 {
		t.Errorf("missing file loaded as %+v, want zero", f)
	}
}

func TestLoad_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.toml")
	if err := os.WriteFile(path, []byte("tab_size = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.TabSize != 8 {
		t.Errorf("TabSize = %d, want 8", f.TabSize)
	}
}

func TestApply_OverlaysOnlySetFields(t *testing.T) {
	base := tether.Config{
		Value:   "doc text",
		Setup:   tether.SetupMinimal,
		TabSize: 2,
		Styles:  map[string]string{"caret": "#ff0000"},
	}

	f := &File{
		TabSize: 4,
		Styles:  map[string]string{"background": "#101010"},
		Notify:  NotifySection{Mode: "throttle", DurationMS: 100},
	}

	got := f.Apply(base)
	if got.Value != "doc text" {
		t.Errorf("Value overwritten: %q", got.Value)
	}
	if got.Setup != tether.SetupMinimal {
		t.Errorf("Setup overwritten: %q", got.Setup)
	}
	if got.TabSize != 4 {
		t.Errorf("TabSize = %d, want 4", got.TabSize)
	}
	if got.Styles["caret"] != "#ff0000" || got.Styles["background"] != "#101010" {
		t.Errorf("Styles = %v, want merged", got.Styles)
	}
	if got.Notify.Mode != tether.NotifyThrottle || got.Notify.Duration != 100*time.Millisecond {
		t.Errorf("Notify = %+v", got.Notify)
	}

	// Base must not be mutated by the merge.
	if _, ok := base.Styles["background"]; ok {
		t.Error("base Styles mutated")
	}
}

func TestApply_EmptyFileIsIdentity(t *testing.T) {
	base := tether.Config{Setup: tether.SetupBasic, TabSize: 3, ReadOnly: false}
	got := (&File{}).Apply(base)
	if got.Setup != base.Setup || got.TabSize != base.TabSize || got.ReadOnly != base.ReadOnly {
		t.Errorf("empty overlay changed config: %+v", got)
	}
}
