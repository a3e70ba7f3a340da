// Package project locates and reads keel.toml manifests and provides
// content digests for cache keys.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the parsed keel.toml. Zero values mean "not set"; the CLI
// applies its own defaults and flag overrides on top.
type Manifest struct {
	Package PackageSection `toml:"package"`
	Verify  VerifySection  `toml:"verify"`
}

// PackageSection names the project.
type PackageSection struct {
	Name string `toml:"name"`
}

// VerifySection configures the verification driver.
type VerifySection struct {
	Jobs           int  `toml:"jobs"`
	MaxDiagnostics int  `toml:"max_diagnostics"`
	Cache          bool `toml:"cache"`
}

// ErrPackageNameMissing indicates an empty [package].name.
var ErrPackageNameMissing = errors.New("missing [package].name")

// FindKeelToml walks up from startDir to locate keel.toml.
func FindKeelToml(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "keel.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindProjectRoot returns the directory containing keel.toml, if any.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := FindKeelToml(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}

// LoadManifest parses a keel.toml file.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("package") {
		if strings.TrimSpace(m.Package.Name) == "" {
			return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
		}
		m.Package.Name = strings.TrimSpace(m.Package.Name)
	}
	if !meta.IsDefined("verify", "cache") {
		// Caching defaults on; absence must not read as false.
		m.Verify.Cache = true
	}
	return m, nil
}

// LoadNearest finds and parses the manifest governing startDir. ok is
// false when no keel.toml exists up the tree; that is not an error.
func LoadNearest(startDir string) (Manifest, string, bool, error) {
	path, ok, err := FindKeelToml(startDir)
	if err != nil || !ok {
		return Manifest{}, "", ok, err
	}
	m, err := LoadManifest(path)
	if err != nil {
		return Manifest{}, path, true, err
	}
	return m, path, true, nil
}
