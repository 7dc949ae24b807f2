package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/anmerge/config"
	"github.com/mogaika/anmerge/cookbook"
	"github.com/mogaika/anmerge/export"
	"github.com/mogaika/anmerge/merge"
	"github.com/mogaika/anmerge/rules"
	"github.com/mogaika/anmerge/utils"
	"github.com/mogaika/anmerge/vfs"
)

type job struct {
	dir      string
	cookbook string
	out      string
	format   string
	rules    []string
	dump     bool
	verbose  io.Writer
}

// run assembles the cookbook and replaces the output file. Rules and
// clips are read again on every run.
func (j *job) run() (*merge.Timeline, error) {
	reg, err := rules.LoadFiles(j.rules...)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(j.cookbook)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read cookbook")
	}
	cb, err := cookbook.Load(filepath.Base(j.cookbook), data)
	if err != nil {
		return nil, err
	}
	if j.dump {
		utils.LogDump(cb)
	}

	store := merge.NewDirStore(vfs.NewDirectoryDriver(j.dir))
	t, err := merge.Assemble(cb, store, reg, merge.WithLogger(utils.NewLogger(j.verbose)))
	if err != nil {
		return nil, err
	}
	if j.dump {
		utils.LogDump(t)
	}

	sink, err := export.Lookup(j.format)
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(j.out, func(w io.Writer) error { return sink.WriteTimeline(w, t) }); err != nil {
		return nil, err
	}
	return t, nil
}

// writeAtomic writes through a temporary file so a failed export keeps
// the previous output
func writeAtomic(path string, write func(w io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "Failed to create output")
	}
	defer os.Remove(f.Name())

	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "Failed to export %q", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "Failed to write %q", path)
	}
	return os.Rename(f.Name(), path)
}

func (j *job) report() {
	t, err := j.run()
	if err != nil {
		log.Printf("[merge] %s: %v", j.cookbook, err)
		return
	}
	log.Printf("[merge] %s: %d frames, %d bones written to %s", j.cookbook, t.FrameCount, t.BoneCount(), j.out)
}

func main() {
	var cfgPath, dir, cb, out, format, ruleFiles string
	var watch, dump, verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to "+config.DefaultFileName)
	flag.StringVar(&dir, "dir", "", "Clip directory (default from config)")
	flag.StringVar(&cb, "cookbook", "", "Cookbook file (.json or .yaml)")
	flag.StringVar(&out, "out", "", "Output file (default <cookbook>.<format> in the output directory)")
	flag.StringVar(&format, "format", "", "Output format: "+strings.Join(export.Formats(), ", "))
	flag.StringVar(&ruleFiles, "rules", "", "Comma separated rule files merged over the builtin tables")
	flag.BoolVar(&watch, "watch", false, "Rebuild when the cookbook, rules or clips change")
	flag.BoolVar(&dump, "dump", false, "Dump cookbook and timeline")
	flag.BoolVar(&verbose, "v", false, "Print segment report")
	flag.Parse()

	if cb == "" {
		flag.PrintDefaults()
		return
	}

	explicit := cfgPath != ""
	if !explicit {
		cfgPath = config.DefaultFileName
	}
	cfg, err := config.Load(cfgPath, explicit)
	if err != nil {
		log.Fatal(err)
	}
	if dir != "" {
		cfg.Dir = dir
	}
	if ruleFiles != "" {
		cfg.Rules = append(cfg.Rules, strings.Split(ruleFiles, ",")...)
	}

	j := &job{
		dir:      cfg.Dir,
		cookbook: cb,
		rules:    cfg.Rules,
		dump:     dump,
	}
	if verbose {
		j.verbose = os.Stdout
	}
	switch {
	case format != "":
		j.format = format
	case out != "":
		j.format = export.FormatFromFileName(out)
	default:
		j.format = cfg.Format
	}
	j.out = out
	if j.out == "" {
		base := strings.TrimSuffix(filepath.Base(cb), filepath.Ext(cb))
		j.out = filepath.Join(cfg.OutputDir(), base+"."+j.format)
	}

	if !watch {
		if _, err := j.run(); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	j.report()
	if err := watchFiles(ctx, j.watchList(), j.report); err != nil {
		log.Fatal(err)
	}
}
