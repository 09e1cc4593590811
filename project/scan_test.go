package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func setupTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, root, "lib/util.py", "def util():\n    pass\n")
	writeFile(t, root, "README.md", "# Test project\n")
	writeFile(t, root, "node_modules/dep/index.js", "module.exports = {}\n")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")
	writeFile(t, root, "logo.bin", "PNG\x00\x00binary")
	return root
}

func TestScanCollectsSourceFiles(t *testing.T) {
	root := setupTestProject(t)
	snap, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	paths := make(map[string]FileInfo, len(snap.Files))
	for _, f := range snap.Files {
		paths[f.Path] = f
	}

	if _, ok := paths["main.go"]; !ok {
		t.Error("Expected main.go in the snapshot")
	}
	if _, ok := paths[filepath.Join("lib", "util.py")]; !ok {
		t.Error("Expected lib/util.py in the snapshot")
	}
	if _, ok := paths[filepath.Join("node_modules", "dep", "index.js")]; ok {
		t.Error("Expected node_modules to be skipped")
	}
	if _, ok := paths[filepath.Join(".git", "HEAD")]; ok {
		t.Error("Expected .git to be skipped")
	}
	if _, ok := paths["logo.bin"]; ok {
		t.Error("Expected the binary file to be skipped")
	}
}

func TestScanLanguageDetection(t *testing.T) {
	root := setupTestProject(t)
	snap, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	langs := snap.Languages()
	if langs["Go"] != 1 {
		t.Errorf("Expected 1 Go file, got %d", langs["Go"])
	}
	if langs["Python"] != 1 {
		t.Errorf("Expected 1 Python file, got %d", langs["Python"])
	}
	if langs["Markdown"] != 1 {
		t.Errorf("Expected 1 Markdown file, got %d", langs["Markdown"])
	}
}

func TestScanSortedByPath(t *testing.T) {
	root := setupTestProject(t)
	snap, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for i := 1; i < len(snap.Files); i++ {
		if snap.Files[i-1].Path > snap.Files[i].Path {
			t.Errorf("Expected files sorted by path, %q before %q", snap.Files[i-1].Path, snap.Files[i].Path)
		}
	}
}

func TestScanSkipsEmptyFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "empty.go", "")
	writeFile(t, root, "real.go", "package x\n")

	snap, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(snap.Files) != 1 || snap.Files[0].Path != "real.go" {
		t.Errorf("Expected only the non-empty file, got %+v", snap.Files)
	}
}

func TestDigestIncludesHeadersAndContent(t *testing.T) {
	root := setupTestProject(t)
	snap, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	digest, err := snap.Digest(1 << 20)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if !strings.Contains(digest, "=== main.go ===") {
		t.Error("Expected a path header for main.go")
	}
	if !strings.Contains(digest, "func main() {}") {
		t.Error("Expected file content in the digest")
	}
}

func TestDigestRespectsBudget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", strings.Repeat("a", 1000))
	writeFile(t, root, "b.go", strings.Repeat("b", 1000))
	writeFile(t, root, "c.go", strings.Repeat("c", 1000))

	snap, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	digest, err := snap.Digest(1200)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	// Budget only covers the first file and part of the second.
	if !strings.Contains(digest, "=== a.go ===") {
		t.Error("Expected the first file to fit")
	}
	if strings.Contains(digest, strings.Repeat("b", 1000)) {
		t.Error("Expected the second file to be truncated")
	}
	if !strings.Contains(digest, "more files omitted") {
		t.Error("Expected an omission marker for files past the budget")
	}
}
