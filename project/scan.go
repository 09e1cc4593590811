// Package project scans a source tree into a snapshot the CLI uses to build
// prompt context: file inventory, language breakdown, and a size-capped
// source digest.
package project

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// maxFileSize skips files unlikely to be hand-written source.
const maxFileSize = 256 * 1024

var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	".vscode":      true,
	".codelens":    true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
}

var languageByExt = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".rb":    "Ruby",
	".rs":    "Rust",
	".java":  "Java",
	".kt":    "Kotlin",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cc":    "C++",
	".cs":    "C#",
	".php":   "PHP",
	".swift": "Swift",
	".scala": "Scala",
	".sh":    "Shell",
	".sql":   "SQL",
	".tf":    "Terraform",
	".yaml":  "YAML",
	".yml":   "YAML",
	".json":  "JSON",
	".toml":  "TOML",
	".md":    "Markdown",
}

// FileInfo describes one scanned source file.
type FileInfo struct {
	Path     string // relative to the snapshot root
	Language string
	Size     int64
}

// Snapshot is the result of scanning a project tree.
type Snapshot struct {
	Root       string
	Files      []FileInfo
	TotalBytes int64
}

// Scan walks dir, collecting text source files. Version-control internals,
// dependency trees, and binary files are skipped.
func Scan(dir string) (*Snapshot, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	snap := &Snapshot{Root: root}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxFileSize || info.Size() == 0 {
			return nil
		}
		if isBinary(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		lang := languageByExt[strings.ToLower(filepath.Ext(path))]
		if lang == "" {
			lang = "Other"
		}
		snap.Files = append(snap.Files, FileInfo{Path: rel, Language: lang, Size: info.Size()})
		snap.TotalBytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	sort.Slice(snap.Files, func(i, j int) bool { return snap.Files[i].Path < snap.Files[j].Path })
	return snap, nil
}

// Languages returns file counts per detected language.
func (s *Snapshot) Languages() map[string]int {
	return lo.CountValuesBy(s.Files, func(f FileInfo) string { return f.Language })
}

// Digest concatenates file contents, each under a path header, truncated to
// maxBytes. Files are appended whole until the budget runs out; the file that
// crosses the budget is truncated and the rest are listed by path only.
func (s *Snapshot) Digest(maxBytes int) (string, error) {
	var b strings.Builder
	budget := maxBytes

	for i, f := range s.Files {
		header := fmt.Sprintf("=== %s ===\n", f.Path)
		if budget <= len(header) {
			b.WriteString(fmt.Sprintf("\n[%d more files omitted]\n", len(s.Files)-i))
			break
		}

		content, err := os.ReadFile(filepath.Join(s.Root, f.Path))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Path, err)
		}

		b.WriteString(header)
		budget -= len(header)
		if len(content) > budget {
			content = content[:budget]
		}
		b.Write(content)
		b.WriteString("\n\n")
		budget -= len(content) + 2
	}
	return b.String(), nil
}

// isBinary sniffs the first 512 bytes for a NUL byte.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return true
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}
