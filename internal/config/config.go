// Package config layers the coordinator's run-time settings from three
// sources, lowest priority first: a lumen.yaml manifest, LUMEN_PATH /
// LUMEN_STDLIB environment variables, then explicit CLI flags. Each layer
// only overrides what it actually sets, so a bare environment variable
// never has to repeat a manifest's other settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the conventional name searched for in a project's root.
const ManifestFile = "lumen.yaml"

// Config is the fully-resolved set of knobs coordinator.LoadParallel and
// fsresolve.New need to run a load.
type Config struct {
	// SrcDir is the root directory module names resolve under.
	SrcDir string

	// StdlibDir, if non-empty, is searched for an import only when SrcDir
	// has no file for it, so a project's own module shadows a stdlib
	// module of the same name.
	StdlibDir string

	// MaxParallelism bounds the coordinator's worker pool width.
	MaxParallelism int
}

// manifest mirrors lumen.yaml's on-disk shape. Every field is a pointer so
// Load can tell "absent" apart from "explicitly zero" when layering.
type manifest struct {
	SrcDir         *string `yaml:"src_dir"`
	StdlibDir      *string `yaml:"stdlib_dir"`
	MaxParallelism *int    `yaml:"max_parallelism"`
}

// Default returns the built-in baseline every layer starts from.
func Default() Config {
	return Config{SrcDir: ".", MaxParallelism: 8}
}

// Load resolves a Config starting from Default, then layering a
// lumen.yaml manifest (if one exists under dir), then LUMEN_PATH /
// LUMEN_STDLIB, in that order. dir is the directory to search for
// ManifestFile; pass "" to search the current working directory.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var m manifest
		if yerr := yaml.Unmarshal(data, &m); yerr != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, yerr)
		}
		applyManifest(&cfg, m)
	case os.IsNotExist(err):
		// no manifest is not an error; every layer above Default is optional.
	default:
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	applyEnv(&cfg)

	return cfg, nil
}

func applyManifest(cfg *Config, m manifest) {
	if m.SrcDir != nil {
		cfg.SrcDir = *m.SrcDir
	}
	if m.StdlibDir != nil {
		cfg.StdlibDir = *m.StdlibDir
	}
	if m.MaxParallelism != nil {
		cfg.MaxParallelism = *m.MaxParallelism
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LUMEN_PATH"); v != "" {
		cfg.SrcDir = v
	}
	if v := os.Getenv("LUMEN_STDLIB"); v != "" {
		cfg.StdlibDir = v
	}
}

// ApplyFlags layers explicit CLI overrides, the highest-priority source.
// Zero values (an unset flag.String/flag.Int default) are treated as
// "not provided", matching applyManifest/applyEnv's pointer-vs-empty
// convention without requiring cmd/lumen to use flag.Func for everything.
func (cfg Config) ApplyFlags(srcDir, stdlibDir string, maxParallelism int) Config {
	if srcDir != "" {
		cfg.SrcDir = srcDir
	}
	if stdlibDir != "" {
		cfg.StdlibDir = stdlibDir
	}
	if maxParallelism != 0 {
		cfg.MaxParallelism = maxParallelism
	}
	return cfg
}
