// Command mp4edts rewrites the edit lists of assembled MP4 files.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/ugparu/mp4edts/format/mp4"
	"github.com/ugparu/mp4edts/format/mp4/mp4io"
	"golang.org/x/sync/errgroup"
)

type options struct {
	output   string
	inPlace  bool
	head     float64
	material float64
	jobs     int
	dump     bool
	inspect  bool
}

func main() {
	var opts options
	level := flag.String("log-level", "warning", "log level")
	flag.StringVar(&opts.output, "o", "", "output path (single input only)")
	flag.BoolVar(&opts.inPlace, "inplace", true, "replace the input through a temporary file")
	flag.Float64Var(&opts.head, "head", 0, "head segment length in seconds")
	flag.Float64Var(&opts.material, "material", 0, "inserted material length in seconds")
	flag.IntVar(&opts.jobs, "j", 4, "files patched in parallel")
	flag.BoolVar(&opts.dump, "dump", false, "print the box tree instead of patching")
	flag.BoolVar(&opts.inspect, "inspect", false, "print edit lists as JSON instead of patching")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.mp4...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	lvl, err := logrus.ParseLevel(*level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	// logger stays synchronous without Init, so nothing is lost on exit
	logrus.SetLevel(lvl)

	files := flag.Args()
	if len(files) == 0 || (opts.output != "" && len(files) != 1) {
		flag.Usage()
		os.Exit(2)
	}

	switch {
	case opts.dump:
		err = dump(os.Stdout, files)
	case opts.inspect:
		err = inspect(files)
	default:
		err = patch(files, opts)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// dump prints the box tree of each file. When go-mp4 rejects a file, the
// plain header walk is printed instead so damaged files can still be looked at.
func dump(w io.Writer, files []string) error {
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, name)
		var tree bytes.Buffer
		if err = mp4.DumpTree(&tree, bytes.NewReader(data)); err != nil {
			fmt.Fprintf(w, "go-mp4: %v, showing box headers only\n", err)
			mp4io.FprintBoxes(w, data)
			continue
		}
		if _, err = tree.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

func inspect(files []string) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, name := range files {
		info, err := mp4.InspectFile(name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err = enc.Encode(map[string]any{"file": name, "movie": info}); err != nil {
			return err
		}
	}
	return nil
}

// uniquePaths drops repeated paths so one file is never patched by two
// goroutines at once.
func uniquePaths(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := files[:0:0]
	for _, name := range files {
		key := filepath.Clean(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

func patch(files []string, opts options) error {
	files = uniquePaths(files)
	var failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(max(opts.jobs, 1))
	for _, name := range files {
		g.Go(func() error {
			var ok bool
			if opts.output != "" {
				ok = mp4.PatchFileEditList(name, opts.output, opts.head, opts.material)
			} else {
				ok = mp4.PatchMixedVideo(name, opts.head, opts.material, opts.inPlace)
			}
			if !ok {
				failed.Add(1)
				fmt.Fprintf(os.Stderr, "%s: not patched\n", name)
			}
			return nil
		})
	}
	_ = g.Wait()
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d files not patched", n, len(files))
	}
	return nil
}
