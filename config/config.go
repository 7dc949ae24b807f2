// Package config holds tool settings loaded from anmerge.toml
// and the text encoding of .ani descriptors.
package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const DefaultFileName = "anmerge.toml"

type Config struct {
	// clip and cookbook directory
	Dir string `toml:"dir"`
	// extra rule registries merged over the builtin tables, in order
	Rules []string `toml:"rules"`
	// directory for exported timelines, Dir when empty
	OutDir string `toml:"out_dir"`
	// one of export.Formats()
	Format string `toml:"format"`
	Listen string `toml:"listen"`
	// charmap name of .ani descriptors
	Encoding string `toml:"encoding"`
}

func Default() *Config {
	return &Config{
		Dir:      ".",
		Format:   "glb",
		Listen:   ":8000",
		Encoding: GetEncoding().String(),
	}
}

// Decode reads settings over the defaults. Unknown keys are errors.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode config")
	}
	return cfg, nil
}

// Load reads the file at path. A missing file yields the defaults
// when the path was not given explicitly.
func Load(path string, explicit bool) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, errors.Wrapf(err, "Failed to open config")
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// resolve makes relative paths relative to the config file location
func (cfg *Config) resolve(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	cfg.Dir = abs(cfg.Dir)
	cfg.OutDir = abs(cfg.OutDir)
	for i := range cfg.Rules {
		cfg.Rules[i] = abs(cfg.Rules[i])
	}
}

// Apply activates the settings that live in process state
func (cfg *Config) Apply() error {
	if cfg.Encoding != "" {
		return SetEncoding(cfg.Encoding)
	}
	return nil
}

func (cfg *Config) OutputDir() string {
	if cfg.OutDir != "" {
		return cfg.OutDir
	}
	return cfg.Dir
}

func (cfg *Config) Marshal() ([]byte, error) {
	return toml.Marshal(cfg)
}
