// Package fscontext turns files and directories into a size-bounded block
// of text suitable for inclusion in a model prompt.
package fscontext

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/codechat-dev/codechat/errors"
)

// EntryKind distinguishes file content from a bare directory listing entry.
type EntryKind string

const (
	KindFile           EntryKind = "file"
	KindDirectoryEntry EntryKind = "directory-entry"
)

const truncationMarker = "\n[... truncated to fit context budget ...]"

// Entry is one element of a context block: either a text file's (possibly
// truncated) content, or a name-and-size listing for a binary file.
type Entry struct {
	Path      string
	Kind      EntryKind
	Content   string
	Size      int64
	Truncated bool
}

// Block is the assembled, budget-bounded context. Render() produces the
// text actually sent to the model; its length never exceeds the budget
// the block was assembled with.
type Block struct {
	Entries    []Entry
	Omitted    int      // files dropped after the budget ran out
	Unreadable []string // entries skipped due to read errors

	// summarizeUnreadable collapses the per-entry unreadable notes into a
	// single count line when listing them all would blow the budget.
	summarizeUnreadable bool
}

// Included returns the number of entries carrying file content.
func (b *Block) Included() int {
	n := 0
	for _, e := range b.Entries {
		if e.Kind == KindFile {
			n++
		}
	}
	return n
}

// Render serializes the block into prompt text.
func (b *Block) Render() string {
	var sb strings.Builder
	for _, e := range b.Entries {
		sb.WriteString(renderEntry(e))
	}
	if b.summarizeUnreadable {
		sb.WriteString(fmt.Sprintf("# %d entries unreadable\n", len(b.Unreadable)))
	} else {
		for _, p := range b.Unreadable {
			sb.WriteString(fmt.Sprintf("# Unreadable: %s\n", p))
		}
	}
	if b.Omitted > 0 {
		sb.WriteString(fmt.Sprintf("# %d more files omitted\n", b.Omitted))
	}
	return sb.String()
}

func renderEntry(e Entry) string {
	if e.Kind == KindDirectoryEntry {
		return fmt.Sprintf("# Binary: %s (%d bytes, content omitted)\n", e.Path, e.Size)
	}
	return fmt.Sprintf("# File: %s\n%s\n", e.Path, e.Content)
}

// Assembler builds context blocks under a configured budget.
type Assembler struct {
	budget    int
	perFile   int
	skipGlobs []string
	workers   int
}

// New creates an assembler. budget bounds the rendered block, perFileCap
// bounds each file's contribution, skipGlobs (doublestar patterns) name
// paths that are never read, and workers bounds read parallelism.
func New(budget, perFileCap int, skipGlobs []string, workers int) *Assembler {
	if workers < 1 {
		workers = 1
	}
	return &Assembler{budget: budget, perFile: perFileCap, skipGlobs: skipGlobs, workers: workers}
}

// Assemble produces a Block from the given paths. Directories are walked
// recursively in lexical order. A missing input path is an error; an
// unreadable entry inside a directory is recorded as an omission and does
// not abort assembly.
func (a *Assembler) Assemble(paths []string) (*Block, error) {
	candidates, unreadable, err := a.collect(paths)
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].path < candidates[j].path })

	contents, readFailed := a.readAll(candidates)

	block := &Block{Unreadable: unreadable}
	viable := candidates[:0]
	for _, c := range candidates {
		if failErr, ok := readFailed[c.path]; ok {
			block.Unreadable = append(block.Unreadable, fmt.Sprintf("%s (%v)", c.path, failErr))
			continue
		}
		viable = append(viable, c)
	}

	// Reserve room for the trailing notes so Render() stays within budget
	// even when omissions happen.
	omittedAllowance := 0
	if len(viable) > 0 {
		omittedAllowance = len(fmt.Sprintf("# %d more files omitted\n", len(viable)))
	}
	unreadableNotes := 0
	for _, p := range block.Unreadable {
		unreadableNotes += len(fmt.Sprintf("# Unreadable: %s\n", p))
	}
	if unreadableNotes+omittedAllowance > a.budget && len(block.Unreadable) > 0 {
		block.summarizeUnreadable = true
		unreadableNotes = len(fmt.Sprintf("# %d entries unreadable\n", len(block.Unreadable)))
	}
	entryBudget := a.budget - unreadableNotes - omittedAllowance

	used := 0
	for i, c := range viable {
		var entry Entry
		if c.binary {
			entry = Entry{Path: c.path, Kind: KindDirectoryEntry, Size: c.size}
		} else {
			content := contents[c.path]
			truncated := false
			if len(content) > a.perFile {
				content = cutAtRuneBoundary(content, a.perFile) + truncationMarker
				truncated = true
			}
			entry = Entry{Path: c.path, Kind: KindFile, Content: content, Size: c.size, Truncated: truncated}
		}

		rendered := len(renderEntry(entry))
		if used+rendered > entryBudget {
			// Truncate the first overflowing file to fit, then stop.
			// Everything after it is omitted with a summary note.
			if entry.Kind == KindFile {
				overhead := rendered - len(entry.Content)
				room := entryBudget - used - overhead - len(truncationMarker)
				if room > 0 {
					entry.Content = cutAtRuneBoundary(entry.Content, room) + truncationMarker
					entry.Truncated = true
					block.Entries = append(block.Entries, entry)
				} else {
					block.Omitted++
				}
			} else {
				block.Omitted++
			}
			block.Omitted += len(viable) - i - 1
			break
		}

		block.Entries = append(block.Entries, entry)
		used += rendered
	}

	return block, nil
}

// cutAtRuneBoundary returns at most n leading bytes of s, backing off so
// a multibyte rune is never split at the truncation point.
func cutAtRuneBoundary(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

type candidate struct {
	path   string
	size   int64
	binary bool
}

// collect gathers file candidates from the input paths. Explicit input
// paths must exist; everything below a directory is best-effort.
func (a *Assembler) collect(paths []string) ([]candidate, []string, error) {
	var out []candidate
	var unreadable []string
	seen := map[string]bool{}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil, errors.Mark(errors.New("context path %s does not exist", p), errors.ErrPathNotFound)
			}
			if os.IsPermission(err) {
				return nil, nil, errors.Mark(errors.New("context path %s is not readable", p), errors.ErrPermission)
			}
			return nil, nil, errors.Wrapf(err, "could not stat context path %s", p)
		}

		if !info.IsDir() {
			if !seen[p] {
				seen[p] = true
				out = append(out, candidate{path: p, size: info.Size(), binary: !IsTextFile(p)})
			}
			continue
		}

		walkErr := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// One bad entry must not block the whole context.
				unreadable = append(unreadable, fmt.Sprintf("%s (%v)", path, err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != p && a.skipped(path) {
					return fs.SkipDir
				}
				return nil
			}
			if a.skipped(path) || seen[path] {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				unreadable = append(unreadable, fmt.Sprintf("%s (%v)", path, err))
				return nil
			}
			seen[path] = true
			out = append(out, candidate{path: path, size: fi.Size(), binary: !IsTextFile(path)})
			return nil
		})
		if walkErr != nil {
			return nil, nil, errors.Wrapf(walkErr, "failed to walk directory %s", p)
		}
	}

	return out, unreadable, nil
}

// skipped reports whether a path matches any configured skip glob. The
// patterns are matched against the slash-form relative path and the bare
// base name, the same way the filesystem restriction globs work.
func (a *Assembler) skipped(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range a.skipGlobs {
		if ok, err := doublestar.PathMatch(pattern, slashed); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}
