package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindKeelTomlWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(root, "keel.toml")
	if err := os.WriteFile(manifest, []byte("[package]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindKeelToml(nested)
	if err != nil || !ok {
		t.Fatalf("FindKeelToml: ok=%v err=%v", ok, err)
	}
	if path != manifest {
		t.Fatalf("path = %q, want %q", path, manifest)
	}

	rootDir, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || rootDir != root {
		t.Fatalf("FindProjectRoot = %q ok=%v err=%v, want %q", rootDir, ok, err, root)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keel.toml")
	content := `[package]
name = "demo"

[verify]
jobs = 4
max_diagnostics = 50
cache = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Package.Name != "demo" || m.Verify.Jobs != 4 || m.Verify.MaxDiagnostics != 50 {
		t.Fatalf("manifest = %+v", m)
	}
	if m.Verify.Cache {
		t.Fatalf("cache = true, want explicit false respected")
	}
}

func TestLoadManifestCacheDefaultsOn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keel.toml")
	if err := os.WriteFile(path, []byte("[package]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if !m.Verify.Cache {
		t.Fatalf("cache must default to true")
	}
}

func TestLoadManifestRejectsEmptyName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keel.toml")
	if err := os.WriteFile(path, []byte("[package]\nname = \" \"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("want error for blank package name")
	}
}

func TestDigest(t *testing.T) {
	a := DigestBytes([]byte("hello"))
	b := DigestBytes([]byte("hello"))
	c := DigestBytes([]byte("world"))
	if a != b {
		t.Fatalf("digests of equal content differ")
	}
	if a == c {
		t.Fatalf("digests of distinct content collide")
	}
	if Combine(a, c) == Combine(c, a) {
		t.Fatalf("Combine must be order-sensitive")
	}
	if a.IsZero() {
		t.Fatalf("non-empty digest reads as zero")
	}
	if len(a.Hex()) != 64 {
		t.Fatalf("hex length = %d, want 64", len(a.Hex()))
	}
}
