package asm

// Result is the outcome of a full Assemble call: either a resolved
// Image (plus the preprocessed lines and instruction list, kept
// around so a caller can ask for a listing) or the full set of
// diagnostics/compile errors collected along the way.
type Result struct {
	Image       *Image
	Lines       []Line
	Instrs      []Instruction
	Diagnostics []Diagnostic
	CompileErrs []CompileError
}

// Failed reports whether assembly produced no usable image.
func (r *Result) Failed() bool {
	return r.Image == nil
}

// Listing renders the three-section listing for a successful result.
func (r *Result) Listing() string {
	if r.Image == nil {
		return ""
	}
	return GenerateListing(r.Lines, r.Instrs, r.Image)
}

// Assemble runs the full pipeline: load, preprocess, tokenize, parse,
// resolve. pcStart is the program's entry address, written into both
// the instruction list's base and the startup vector segment. Pipeline
// diagnostics (from the loader's synthesized missing-include lines
// forward) always abort the compile phase: per spec §7, if any
// diagnostic remains, the compile phase is skipped entirely.
func Assemble(sourceText string, sourceName string, fs FileSystem, pcStart uint16) *Result {
	lines := Load(sourceText, sourceName, fs)

	pre, preDiags := Preprocess(lines)
	tokens, tokDiags := Tokenize(pre)
	instrs, parseDiags := Parse(tokens)

	var diags []Diagnostic
	diags = append(diags, includeDiagnostics(lines)...)
	diags = append(diags, preDiags...)
	diags = append(diags, tokDiags...)
	diags = append(diags, parseDiags...)

	if len(diags) > 0 {
		return &Result{Lines: pre, Instrs: instrs, Diagnostics: diags}
	}

	img, compileErrs := Resolve(instrs, pcStart)
	if len(compileErrs) > 0 {
		return &Result{Lines: pre, Instrs: instrs, Diagnostics: diags, CompileErrs: compileErrs}
	}

	return &Result{Image: img, Lines: pre, Instrs: instrs}
}

// includeDiagnostics turns the loader's synthesized "file not found"
// marker lines into proper diagnostics.
func includeDiagnostics(lines []Line) []Diagnostic {
	var diags []Diagnostic
	for _, l := range lines {
		if len(l.Text) >= 3 && l.Text[:3] == "!!!" {
			diags = append(diags, newDiagnostic(l.Origin, l.Text[3:]))
		}
	}
	return diags
}
