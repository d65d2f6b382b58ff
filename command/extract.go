// Package command extracts shell command candidates from assistant text
// and classifies them by risk. Extraction and classification are pure
// functions of the input text, so the whole pathway can be regression
// tested without a live model or terminal.
package command

import (
	"regexp"
	"strings"
)

// Candidate is a shell command found in a model response, together with
// the risk label assigned by the classifier. Candidates are transient;
// they live for one request/response cycle and are never persisted.
type Candidate struct {
	Raw          string
	SourceTurnID string
	Label        Label
	Rationale    string
}

// fenceRe matches a fenced code block tagged as shell. The tag is
// required: untagged blocks are usually not shell input.
var fenceRe = regexp.MustCompile("(?s)```(?:bash|sh|shell|zsh)[ \t]*\n(.*?)```")

// knownExecutables seeds the bare-line heuristic: a line whose first token
// is one of these is treated as a command even outside a fence.
var knownExecutables = map[string]bool{
	"ls": true, "cat": true, "head": true, "tail": true, "grep": true,
	"rg": true, "find": true, "diff": true, "wc": true, "pwd": true,
	"du": true, "df": true, "ps": true, "echo": true, "which": true,
	"stat": true, "file": true, "tree": true, "env": true,
	"git": true, "go": true, "make": true, "npm": true, "pnpm": true,
	"yarn": true, "pip": true, "python": true, "python3": true,
	"cargo": true, "docker": true, "kubectl": true, "terraform": true,
	"curl": true, "wget": true, "rm": true, "mv": true, "cp": true,
	"mkdir": true, "touch": true, "chmod": true, "chown": true,
	"tar": true, "sed": true, "awk": true, "sort": true, "uniq": true,
}

// shellToken matches an argument that looks like shell input rather than
// prose: flags, paths, subcommands, globs, redirections.
var shellToken = regexp.MustCompile(`^[A-Za-z0-9_@./~:+=,*'"|&<>\\-]+$`)

// Extract scans assistant response text and returns the shell commands it
// contains, in order of appearance. Fenced blocks and loose `$ `/bare
// lines interleave by position, so a command written before a fence also
// runs before the fence's commands. Duplicate commands are kept as
// separate entries since each needs its own confirmation. The command
// text is preserved as written apart from surrounding whitespace.
func Extract(text string) []string {
	var commands []string
	last := 0
	for _, m := range fenceRe.FindAllStringSubmatchIndex(text, -1) {
		commands = appendLooseLines(commands, text[last:m[0]])
		commands = appendFenceLines(commands, text[m[2]:m[3]])
		last = m[1]
	}
	return appendLooseLines(commands, text[last:])
}

// appendFenceLines collects the non-comment lines of a fenced block body.
func appendFenceLines(commands []string, body string) []string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	return commands
}

// appendLooseLines collects `$ `-prefixed and bare-command lines from text
// outside any fence.
func appendLooseLines(commands []string, segment string) []string {
	for _, line := range strings.Split(segment, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "$ ") {
			if cmd := strings.TrimSpace(line[2:]); cmd != "" {
				commands = append(commands, cmd)
			}
			continue
		}
		if isBareCommand(line) {
			commands = append(commands, line)
		}
	}
	return commands
}

// isBareCommand applies the leading-executable heuristic to a prose line.
func isBareCommand(line string) bool {
	if line == "" || strings.HasSuffix(line, ".") || strings.HasSuffix(line, ":") {
		return false
	}
	fields := strings.Fields(line)
	if !knownExecutables[fields[0]] {
		return false
	}
	for _, f := range fields[1:] {
		if !shellToken.MatchString(f) {
			return false
		}
	}
	return true
}
