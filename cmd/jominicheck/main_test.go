// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadCWTFiles_WalksAndFiltersByExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "00_technologies.cwt"), "types = {}\n")
	mustWrite(t, filepath.Join(dir, "notes.txt"), "ignore me\n")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	mustWrite(t, filepath.Join(dir, "sub", "01_enums.cwt"), "enums = {}\n")

	files, err := readCWTFiles(dir)
	if err != nil {
		t.Fatalf("readCWTFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 .cwt files, got %d: %+v", len(files), files)
	}
	if _, ok := files["00_technologies.cwt"]; !ok {
		t.Fatalf("missing top-level .cwt file in %+v", files)
	}
	if _, ok := files[filepath.ToSlash(filepath.Join("sub", "01_enums.cwt"))]; !ok {
		t.Fatalf("missing nested .cwt file in %+v", files)
	}
	if _, ok := files["notes.txt"]; ok {
		t.Fatalf("non-.cwt file should have been skipped: %+v", files)
	}
}

func TestDirFS_WalkAndReadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "common", "technologies", "00_tech.txt"), "technology = {}\n")

	fs := dirFS{root: dir}
	files, err := fs.Walk(".")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := filepath.ToSlash(filepath.Join("common", "technologies", "00_tech.txt"))
	found := false
	for _, f := range files {
		if f == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q among walked files, got %+v", want, files)
	}

	data, err := fs.ReadFile(want)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "technology = {}\n" {
		t.Fatalf("unexpected contents: %q", data)
	}
}

func mustWrite(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
