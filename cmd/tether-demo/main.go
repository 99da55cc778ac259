// Package main is a small terminal host demonstrating a mounted editor:
// it opens a file, applies an optional TOML configuration with live
// reload, and runs the bubbletea adapter until quit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/editkit/tether"
	"github.com/editkit/tether/adapter/bubble"
	"github.com/editkit/tether/conf"
	"github.com/editkit/tether/engine"
	"github.com/editkit/tether/preset"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		confPath = flag.String("config", "", "path to TOML configuration file")
		logPath  = flag.String("log", "", "path to debug log file")
	)
	flag.Parse()

	base := tether.Config{
		Setup:   tether.SetupBasic,
		TabSize: 4,
		Notify:  tether.NotifyConfig{Mode: tether.NotifyDebounce, Duration: 200 * time.Millisecond},
		LangMap: demoLanguages(),
	}

	if path := flag.Arg(0); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		base.Value = string(data)
		base.DocumentID = path
	}

	var opts []tether.Option
	if *logPath != "" {
		out, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer out.Close()
		opts = append(opts, tether.WithLogger(tether.NewLogger(out, tether.LogLevelDebug)))
	}

	if *confPath != "" {
		file, err := conf.Load(*confPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		base = file.Apply(base)
	}

	m, err := bubble.New(base, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Live reload: settled file changes become editor updates.
	if *confPath != "" {
		w, err := conf.Watch(*confPath, func(f *conf.File) {
			next := f.Apply(base)
			_ = m.Editor().Update(context.Background(), &next)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer w.Close()
	}

	if err := bubble.RunModel(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// demoLanguages maps a few common keys to placeholder language bundles.
func demoLanguages() map[string]preset.LanguageFactory {
	static := func(name string) preset.LanguageFactory {
		return func(ctx context.Context) (engine.Extension, error) {
			return engine.Opaque("lang:"+name, nil), nil
		}
	}
	return map[string]preset.LanguageFactory{
		"go":   static("go"),
		"json": static("json"),
		"md":   static("md"),
	}
}
