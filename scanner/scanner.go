// Package scanner extracts translation keys from templates and Go source.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Key is a translation key found in a source file.
type Key struct {
	Key     string `json:"key"`               // Flattened key (e.g. "nav.home")
	Default string `json:"default,omitempty"` // Default text found next to the key, if any
	File    string `json:"file"`              // File the key was found in
	Line    int    `json:"line,omitempty"`    // 1-based line, 0 when unknown
	Kind    string `json:"kind"`              // Scanner that found it ("html" or "go")
}

// Scanner extracts keys from the content of one file.
type Scanner interface {
	// Scan returns the keys referenced by content. name is used for positions.
	Scan(name string, content []byte) ([]Key, error)

	// Kind returns the scanner identifier.
	Kind() string

	// Extensions returns the file extensions handled (e.g. ".html").
	Extensions() []string
}

// ScanError indicates a file could not be scanned.
type ScanError struct {
	Message string
	Cause   error
	File    string
}

func (e *ScanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scan error (%s): %s: %v", e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("scan error (%s): %s", e.File, e.Message)
}

func (e *ScanError) Unwrap() error {
	return e.Cause
}

// Default returns the HTML and Go scanners with their default settings.
func Default() []Scanner {
	return []Scanner{NewHTMLScanner(), NewGoScanner()}
}

// ScanDir walks root and runs the scanner matching each file's extension.
// Hidden directories and vendor/ are skipped.
func ScanDir(root string, scanners ...Scanner) ([]Key, error) {
	if len(scanners) == 0 {
		scanners = Default()
	}

	byExt := make(map[string]Scanner)
	for _, s := range scanners {
		for _, ext := range s.Extensions() {
			byExt[ext] = s
		}
	}

	var keys []Key
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}

		s, ok := byExt[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		found, err := s.Scan(path, content)
		if err != nil {
			return err
		}
		keys = append(keys, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// Unique returns the sorted distinct key names.
func Unique(keys []Key) []string {
	seen := make(map[string]bool, len(keys))
	var names []string
	for _, k := range keys {
		if !seen[k.Key] {
			seen[k.Key] = true
			names = append(names, k.Key)
		}
	}
	sort.Strings(names)
	return names
}
