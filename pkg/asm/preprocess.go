package asm

import (
	"regexp"
	"strings"

	"github.com/master-g/msp430/internal/msplog"
)

var defineRe = regexp.MustCompile(`^\s*\.define\s+"([^"]*)"\s*,?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*$`)

// macroRecursionLimit bounds macro re-expansion passes. Exceeding it
// either drops a diagnostic (normal mode) or panics (panic mode, used
// by tests that want to assert on recursion detection deterministically).
const macroRecursionLimit = 128

// panicOnRecursionLimit lets tests assert on recursion detection
// deterministically: flip it on for a hard failure on runaway macro
// recursion instead of threading a mode flag through every call.
var panicOnRecursionLimit = false

// SetPanicOnRecursionLimit toggles panic mode for the macro expander.
func SetPanicOnRecursionLimit(v bool) {
	panicOnRecursionLimit = v
}

// RecursionLimitError is raised (via panic) in panic mode when macro
// expansion fails to converge within macroRecursionLimit passes.
type RecursionLimitError struct {
	Origin Origin
}

func (e RecursionLimitError) Error() string {
	return "macro recursion limit reached at " + e.Origin.File
}

type macroDef struct {
	name   string
	params []string
	body   []Line
}

func macroKey(name string, arity int) string {
	return name + "|" + itoaFast(arity)
}

func itoaFast(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [8]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

// Preprocess runs the define pass followed by the macro pass, emitting
// a diagnostic list alongside the transformed lines.
func Preprocess(lines []Line) ([]Line, []Diagnostic) {
	defined, diags := applyDefines(lines)
	expanded, macroDiags := expandMacros(defined)
	diags = append(diags, macroDiags...)
	return expanded, diags
}

func applyDefines(lines []Line) ([]Line, []Diagnostic) {
	defs := map[string]string{}
	var diags []Diagnostic
	var kept []Line
	for _, l := range lines {
		trimmed := strings.TrimSpace(l.Text)
		if strings.HasPrefix(trimmed, ".define") {
			m := defineRe.FindStringSubmatch(l.Text)
			if m == nil {
				diags = append(diags, newDiagnostic(l.Origin, "malformed .define: "+l.Text))
				continue
			}
			defs[m[2]] = m[1]
			continue
		}
		kept = append(kept, l)
	}
	out := make([]Line, len(kept))
	for i, l := range kept {
		text := l.Text
		for name, val := range defs {
			text = strings.ReplaceAll(text, "["+name+"]", val)
		}
		out[i] = Line{Origin: l.Origin, Text: text}
	}
	return out, diags
}

var (
	macroStartRe = regexp.MustCompile(`^\s*\.macro\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*\(([^)]*)\)\s*$`)
	macroEndRe   = regexp.MustCompile(`^\s*\.endmacro\s*$`)
)

func parseMacroParams(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func extractMacros(lines []Line) (map[string]macroDef, []Line, []Diagnostic) {
	macros := map[string]macroDef{}
	var diags []Diagnostic
	var rest []Line
	var cur *macroDef
	for _, l := range lines {
		if m := macroStartRe.FindStringSubmatch(l.Text); m != nil {
			if cur != nil {
				diags = append(diags, newDiagnostic(l.Origin, "nested macro definition"))
				continue
			}
			cur = &macroDef{name: m[1], params: parseMacroParams(m[2])}
			continue
		}
		if macroEndRe.MatchString(l.Text) {
			if cur == nil {
				diags = append(diags, newDiagnostic(l.Origin, "endmacro without matching macro"))
				continue
			}
			macros[macroKey(cur.name, len(cur.params))] = *cur
			cur = nil
			continue
		}
		if cur != nil {
			stamped := l
			stamped.Origin.MacroName = cur.name
			cur.body = append(cur.body, stamped)
			continue
		}
		rest = append(rest, l)
	}
	return macros, rest, diags
}

var invocationRe = regexp.MustCompile(`^\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\(([^)]*)\)\s*$`)

func splitArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := regexp.MustCompile(`,\s*`).Split(s, -1)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// expandMacros iterates substitution passes until a full pass makes no
// change, bounded by macroRecursionLimit.
func expandMacros(lines []Line) ([]Line, []Diagnostic) {
	macros, body, diags := extractMacros(lines)
	cur := body
	for pass := 0; pass < macroRecursionLimit; pass++ {
		next, changed, passDiags := expandMacroPass(cur, macros)
		diags = append(diags, passDiags...)
		cur = next
		if !changed {
			return cur, diags
		}
	}
	msplog.Logf("macro expansion did not converge after %d passes", macroRecursionLimit)
	if panicOnRecursionLimit {
		origin := Origin{}
		if len(cur) > 0 {
			origin = cur[0].Origin
		}
		panic(RecursionLimitError{Origin: origin})
	}
	out := make([]Line, len(cur))
	for i, l := range cur {
		if invocationRe.MatchString(strings.TrimSpace(l.Text)) {
			diags = append(diags, newDiagnostic(l.Origin, "macro recursion limit reached"))
			nop := l
			nop.Text = "nop"
			out[i] = nop
			continue
		}
		out[i] = l
	}
	return out, diags
}

func expandMacroPass(lines []Line, macros map[string]macroDef) ([]Line, bool, []Diagnostic) {
	var out []Line
	var diags []Diagnostic
	changed := false
	for _, l := range lines {
		m := invocationRe.FindStringSubmatch(strings.TrimSpace(l.Text))
		if m == nil {
			out = append(out, l)
			continue
		}
		name := m[1]
		args := splitArgs(m[2])
		def, ok := macros[macroKey(name, len(args))]
		if !ok {
			diags = append(diags, newDiagnostic(l.Origin, "unknown macro "+name+"/"+itoaFast(len(args))))
			nop := l
			nop.Text = "nop"
			out = append(out, nop)
			continue
		}
		changed = true
		out = append(out, newLine(l.Origin.File, l.Origin.LineNo, l.Origin.IncludedByLine, ".push_locblk"))
		out = append(out, newLine(l.Origin.File, l.Origin.LineNo, l.Origin.IncludedByLine, ".dbgbrk"))
		comment := newLine(l.Origin.File, l.Origin.LineNo, l.Origin.IncludedByLine, ";!! Macro invocation: "+strings.TrimSpace(l.Text))
		out = append(out, comment)
		for _, bl := range def.body {
			text := bl.Text
			for i, p := range def.params {
				if i < len(args) {
					text = strings.ReplaceAll(text, "{"+p+"}", args[i])
				}
			}
			stamped := bl
			stamped.Text = text
			out = append(out, stamped)
		}
		out = append(out, newLine(l.Origin.File, l.Origin.LineNo, l.Origin.IncludedByLine, ".dbgbrk"))
		out = append(out, newLine(l.Origin.File, l.Origin.LineNo, l.Origin.IncludedByLine, ".pop_locblk"))
	}
	return out, changed, diags
}
