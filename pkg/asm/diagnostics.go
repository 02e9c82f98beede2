package asm

import "strconv"

// Diagnostic is a pipeline-stage error bound to the source line that
// produced it. The loader, preprocessor, tokenizer and instruction
// parser all record diagnostics and resynchronize (skip to the next
// LineStart / next line) rather than aborting, so a single assemble
// call can surface every problem it finds in one pass.
type Diagnostic struct {
	Origin  Origin
	Message string
}

func (d Diagnostic) Error() string {
	if d.Origin.File != "" {
		return d.Origin.File + ":" + strconv.Itoa(d.Origin.LineNo) + ": " + d.Message
	}
	return d.Message
}

func newDiagnostic(o Origin, msg string) Diagnostic {
	return Diagnostic{Origin: o, Message: msg}
}

// CompileError is a per-instruction error discovered during pass 2 of
// resolution: a missing label, an invalid jump offset, an illegal
// destination addressing mode, or a byte-mode-forbidden opcode.
type CompileError struct {
	Origin  Origin
	Message string
}

func (e CompileError) Error() string {
	if e.Origin.File != "" {
		return e.Origin.File + ":" + strconv.Itoa(e.Origin.LineNo) + ": " + e.Message
	}
	return e.Message
}

func newCompileError(o Origin, msg string) CompileError {
	return CompileError{Origin: o, Message: msg}
}
