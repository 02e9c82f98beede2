package asm

import (
	"regexp"
	"strings"
)

var includeRe = regexp.MustCompile(`^\s*\.include\s+(\S+)\s*$`)

// FileSystem resolves an include path to its text contents. The core
// never touches the filesystem directly; callers inject this the same
// way callers inject an io.Reader rather than letting the loader open
// paths itself.
type FileSystem interface {
	ReadFile(path string) (string, bool)
}

// Load splits rootText into Lines stamped with origin rootName, and
// recursively resolves any `.include <path>` lines found along the way
// via fs. A path already on the active include stack is silently
// skipped (cycle suppression); a path that fs cannot find produces a
// single synthesized `!!!File '<path>' not found` line instead of an
// error return, so the pipeline can keep surfacing diagnostics through
// the normal diagnostic channel rather than aborting here.
func Load(rootText string, rootName string, fs FileSystem) []Line {
	ld := &loader{fs: fs, stack: map[string]bool{rootName: true}}
	return ld.loadText(rootText, rootName, 0)
}

type loader struct {
	fs    FileSystem
	stack map[string]bool
}

func (ld *loader) loadText(text string, file string, includedByLine int) []Line {
	raw := SplitLines(text)
	out := make([]Line, 0, len(raw))
	for i, t := range raw {
		n := i + 1
		m := includeRe.FindStringSubmatch(t)
		if m == nil {
			out = append(out, newLine(file, n, includedByLine, t))
			continue
		}
		path := m[1]
		if ld.stack[path] {
			continue
		}
		body, ok := ld.fs.ReadFile(path)
		if !ok {
			out = append(out, newLine(file, n, includedByLine, "!!!File '"+path+"' not found"))
			continue
		}
		ld.stack[path] = true
		out = append(out, newLine(file, n, includedByLine, ".push_locblk"))
		out = append(out, newLine(file, n, includedByLine, ".dbgbrk"))
		out = append(out, ld.loadText(body, path, n)...)
		out = append(out, newLine(file, n, includedByLine, ".dbgbrk"))
		out = append(out, newLine(file, n, includedByLine, ".pop_locblk"))
		delete(ld.stack, path)
	}
	return out
}

// stripComment removes a trailing `;` comment, but leaves a `;!!`
// listing-comment marker intact for the tokenizer to recognize.
func stripComment(s string) string {
	if strings.HasPrefix(strings.TrimSpace(s), ";!!") {
		return s
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}
