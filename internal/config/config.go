// Package config loads the recognized option surface from spec.md §6 out
// of a YAML file, with CLI flags layered on top by cmd/romnibus.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"romnibus/internal/merge"
)

// Options is the recognized configuration surface from spec.md §6.
type Options struct {
	MergeModeName string   `yaml:"merge_mode"`
	Fixdat        bool     `yaml:"fixdat"`
	InputDirs     []string `yaml:"input_dirs"`
	DATPath       string   `yaml:"dat_path"`
	OutputDir     string   `yaml:"output_dir"`
	Workers       int      `yaml:"workers"`
	KnownHashDB   string   `yaml:"known_hash_db"`
	UnrarBinary   string   `yaml:"unrar_binary"`
	SevenZipBin   string   `yaml:"sevenzip_binary"`
}

// Load reads and parses a YAML options file.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return opts, nil
}

// MergeMode resolves the configured merge-mode string into merge.Mode,
// defaulting to ModeNone for an empty or unrecognized value.
func (o Options) MergeMode() merge.Mode {
	switch o.MergeModeName {
	case "SPLIT":
		return merge.ModeSplit
	case "MERGED":
		return merge.ModeMerged
	case "FULLNONMERGED":
		return merge.ModeFullNonMerged
	default:
		return merge.ModeNone
	}
}
