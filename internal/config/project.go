// Package config holds build-wide constants and the sable.yaml project
// configuration.
//
// A project file looks like:
//
//	name: mylib
//	backend: c
//	params:
//	  max_rounds: 32
//	  inlining: true
//	  helpful: true
//	includes:
//	  - stdio.h
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BuildParams controls the resolver and driver behavior.
type BuildParams struct {
	// VeryVerbose enables the resolver trace on stderr.
	VeryVerbose bool `yaml:"very_verbose,omitempty"`

	// Helpful enables import scanning for "did you mean" hints on
	// unresolved calls.
	Helpful bool `yaml:"helpful,omitempty"`

	// Inlining enables the call-site inlining rewrite for functions
	// marked inline.
	Inlining bool `yaml:"inlining,omitempty"`

	// MaxRounds caps the fixed-point loop. Once reached, the resolver runs
	// one fatal round that turns unresolved nodes into diagnostics.
	// Zero means DefaultMaxRounds.
	MaxRounds int `yaml:"max_rounds,omitempty"`
}

// EffectiveMaxRounds resolves the zero default.
func (p BuildParams) EffectiveMaxRounds() int {
	if p.MaxRounds <= 0 {
		return DefaultMaxRounds
	}
	return p.MaxRounds
}

// Project represents a parsed sable.yaml.
type Project struct {
	// Name is the package name. Defaults to the directory name.
	Name string `yaml:"name,omitempty"`

	// Backend selects the code generator. Only "c" is supported.
	Backend string `yaml:"backend,omitempty"`

	// Params are the resolver build parameters.
	Params BuildParams `yaml:"params,omitempty"`

	// Includes are C headers emitted as #include lines for extern decls.
	Includes []string `yaml:"includes,omitempty"`

	// CacheDir overrides the package-config cache location.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Dir is the directory the project file was loaded from. Not serialized.
	Dir string `yaml:"-"`
}

// LoadProject reads sable.yaml from dir. A missing file yields a default
// project, not an error.
func LoadProject(dir string) (*Project, error) {
	p := &Project{Name: filepath.Base(dir), Backend: "c", Dir: dir}

	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = filepath.Base(dir)
	}
	if p.Backend == "" {
		p.Backend = "c"
	}
	p.Dir = dir
	return p, nil
}
