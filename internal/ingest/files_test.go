package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestListCSVFilesNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"file10.csv", "file1.csv", "file2.csv", "file20.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("id\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	paths := ListCSVFiles(dir, noopLogger())

	want := []string{"file1.csv", "file2.csv", "file10.csv", "file20.csv"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(paths))
	}
	for i, name := range want {
		if filepath.Base(paths[i]) != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, filepath.Base(paths[i]))
		}
	}
}

func TestListCSVFilesFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.CSV", "notes.txt", "c.csv.bak"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths := ListCSVFiles(dir, noopLogger())

	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(paths), paths)
	}
	if filepath.Base(paths[0]) != "a.csv" || filepath.Base(paths[1]) != "b.CSV" {
		t.Fatalf("unexpected files: %v", paths)
	}
}

func TestListCSVFilesMissingDirectory(t *testing.T) {
	paths := ListCSVFiles(filepath.Join(t.TempDir(), "does-not-exist"), noopLogger())
	if len(paths) != 0 {
		t.Fatalf("missing directory should yield no files, got %v", paths)
	}
}

func TestNaturalLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"file2.csv", "file10.csv", true},
		{"file10.csv", "file2.csv", false},
		{"File1.csv", "file2.csv", true},
		{"file1.csv", "file1.csv", false},
		{"prices_2024_2.csv", "prices_2024_10.csv", true},
		{"file002.csv", "file10.csv", true},
		{"1.csv", "a.csv", true},
	}
	for _, tc := range cases {
		if got := naturalLess(tc.a, tc.b); got != tc.want {
			t.Errorf("naturalLess(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
