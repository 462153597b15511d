package browser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExecutable(t *testing.T) {
	dir := t.TempDir()

	exec := filepath.Join(dir, "chrome")
	if err := os.WriteFile(exec, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(plain, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := executable(exec); !ok {
		t.Error("executable file should resolve")
	}
	if _, ok := executable(plain); ok {
		t.Error("non-executable file must not resolve")
	}
	if _, ok := executable(filepath.Join(dir, "missing")); ok {
		t.Error("missing path must not resolve")
	}
	if _, ok := executable(dir); ok {
		t.Error("directory must not resolve")
	}
}

func TestExecutable_ResolvesSymlink(t *testing.T) {
	dir := t.TempDir()

	target := filepath.Join(dir, "chrome-real")
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "chrome-link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	resolved, ok := executable(link)
	if !ok {
		t.Fatal("symlinked executable should resolve")
	}
	if resolved != target {
		t.Errorf("resolved = %q, want %q", resolved, target)
	}
}

func TestResolveBinary_OverrideWins(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "custom-chromium")
	if err := os.WriteFile(override, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok := ResolveBinary(override)
	if !ok {
		t.Fatal("override should resolve")
	}
	if got != override {
		t.Errorf("resolved = %q, want override %q", got, override)
	}
}
