package main

import (
	"bytes"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mogaika/anmerge/ani"
	"github.com/mogaika/anmerge/config"
	"github.com/mogaika/anmerge/utils"
)

type options struct {
	strip    string
	sounds   bool
	subanims bool
	in       string
	out      string
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// encode converts utf-8 text back to the descriptor charmap
func encode(text []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := config.TextWriter(&buf)
	if _, err := w.Write(text); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func process(opts *options, data []byte) ([]byte, error) {
	in := config.TextReader(bytes.NewReader(data))
	logger := utils.NewLogger(os.Stderr)
	var out bytes.Buffer

	switch {
	case opts.strip != "":
		cb, err := ani.Strip(in, &out, logger)
		if err != nil {
			return nil, err
		}
		cbData, err := cb.Marshal(opts.strip)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(opts.strip, cbData, 0644); err != nil {
			return nil, errors.Wrapf(err, "Failed to write cookbook")
		}
	case opts.sounds:
		if err := ani.ReplaceEvents(in, &out, ani.ManToWomanSounds()); err != nil {
			return nil, err
		}
	default:
		if _, err := ani.Process(in, &out, ani.ProcessOptions{Log: logger}); err != nil {
			return nil, err
		}
	}
	return encode(out.Bytes())
}

func copySubAnims(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, name := range ani.SubAnimFiles(path) {
		if err := os.WriteFile(name, data, 0644); err != nil {
			return errors.Wrapf(err, "Failed to copy %q", filepath.Base(name))
		}
	}
	return nil
}

func main() {
	var opts options
	var encoding string
	flag.StringVar(&opts.strip, "s", "", "Strip unused frames and write the cutting cookbook here")
	flag.BoolVar(&opts.sounds, "sounds", false, "Replace male sound events with female ones")
	flag.BoolVar(&opts.subanims, "subanims", false, "Copy -in descriptor to every sub animation slot")
	flag.StringVar(&opts.in, "in", "", "Input descriptor (default stdin)")
	flag.StringVar(&opts.out, "out", "", "Output descriptor (default stdout)")
	flag.StringVar(&encoding, "encoding", config.GetEncoding().String(), "Descriptor charmap")
	flag.Parse()

	if err := config.SetEncoding(encoding); err != nil {
		log.Fatal(err)
	}

	if opts.subanims {
		if opts.in == "" {
			log.Fatal("-subanims needs -in")
		}
		if err := copySubAnims(opts.in); err != nil {
			log.Fatal(err)
		}
		return
	}

	data, err := readInput(opts.in)
	if err != nil {
		log.Fatal(err)
	}
	result, err := process(&opts, data)
	if err != nil {
		log.Fatal(err)
	}
	if err := writeOutput(opts.out, result); err != nil {
		log.Fatal(err)
	}
}
