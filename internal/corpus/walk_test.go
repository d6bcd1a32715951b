package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTree(t *testing.T, root string, paths map[string]string) {
	t.Helper()
	for rel, content := range paths {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func paths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestWalk_ListsSourceFilesSorted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/b.ts":        "b",
		"src/a.ts":        "a",
		"src/nested/c.ts": "c",
		"README.md":       "readme",
	})

	files, warnings, err := Walk(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}

	want := []string{"README.md", "src/a.ts", "src/b.ts", "src/nested/c.ts"}
	if diff := cmp.Diff(want, paths(files)); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_SkipsNoiseDirsAndBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.ts":                "a",
		"node_modules/dep/x.js":   "x",
		".git/config":             "cfg",
		".glueful/scans/old.json": "{}",
		"dist/bundle.js":          "x",
		"assets/logo.png":         "binary",
		"fonts/main.woff2":        "binary",
		"package-lock.json":       "{}",
		".DS_Store":               "junk",
	})

	files, _, err := Walk(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"src/a.ts"}, paths(files)); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_OversizedFileSkippedWithWarning(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"small.ts": "ok",
		"big.ts":   strings.Repeat("x", 512),
	})

	files, warnings, err := Walk(root, Options{MaxFileBytes: 256})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"small.ts"}, paths(files)); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "big.ts") {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestWalk_FileCapStopsWalkWithWarning(t *testing.T) {
	root := t.TempDir()
	tree := make(map[string]string, 10)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		tree[name+".ts"] = name
	}
	writeTree(t, root, tree)

	files, warnings, err := Walk(root, Options{MaxFiles: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %d, want 3", len(files))
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "file cap of 3 reached") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want cap warning", warnings)
	}
}

func TestWalk_RootValidation(t *testing.T) {
	if _, _, err := Walk("", Options{}); err == nil {
		t.Error("empty root should fail")
	}
	if _, _, err := Walk(filepath.Join(t.TempDir(), "missing"), Options{}); err == nil {
		t.Error("missing root should fail")
	}

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Walk(file, Options{}); err == nil {
		t.Error("non-directory root should fail")
	}
}

func TestWalk_SymlinksIgnored(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.ts": "x"})
	if err := os.Symlink(filepath.Join(root, "real.ts"), filepath.Join(root, "link.ts")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	files, _, err := Walk(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"real.ts"}, paths(files)); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}
