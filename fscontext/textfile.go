package fscontext

import (
	"path/filepath"
	"strings"
)

// textExtensions lists the file extensions treated as readable text.
// Anything else is listed by name and size only, content omitted.
var textExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".html": true, ".css": true, ".scss": true, ".sass": true,
	".json": true, ".xml": true, ".yaml": true, ".yml": true,
	".toml": true, ".ini": true, ".cfg": true, ".conf": true,
	".md": true, ".txt": true, ".rst": true, ".log": true,
	".sql": true, ".sh": true, ".bash": true, ".zsh": true, ".fish": true,
	".gitignore": true, ".dockerignore": true, ".env": true,
	".properties": true, ".lock": true,
	".java": true, ".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".cs": true, ".php": true, ".rb": true, ".go": true, ".rs": true,
	".swift": true, ".kt": true, ".scala": true, ".clj": true,
	".hs": true, ".ml": true, ".fs": true, ".ex": true, ".exs": true,
	".vue": true, ".svelte": true, ".astro": true, ".elm": true,
}

// textBasenames covers well-known extensionless text files.
var textBasenames = map[string]bool{
	"Makefile": true, "Dockerfile": true, "LICENSE": true, "README": true,
	"go.mod": true, "go.sum": true,
}

// IsTextFile classifies a path as text by extension or known base name.
func IsTextFile(path string) bool {
	base := filepath.Base(path)
	if textBasenames[base] {
		return true
	}
	return textExtensions[strings.ToLower(filepath.Ext(base))]
}
