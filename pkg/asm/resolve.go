package asm

// Resolve is the two-pass address resolver and compiler (component G).
// Pass 1 walks the instruction list once to assign every instruction
// (and every label attached to it) an address, advancing pc by
// 2*NumWords() per instruction. Pass 2 reuses the addresses pass 1
// assigned while compiling each instruction to
// words, splitting segments at Padding instructions and buffering
// Interrupt instructions into a postfix segment list.
func Resolve(instrs []Instruction, pcStart uint16) (*Image, []CompileError) {
	labels, addrs := resolveLabels(instrs, pcStart)

	var segments []Segment
	var compileErrs []CompileError
	var interrupts []InterruptInstruction

	segStart := pcStart
	var curWords []uint16

	flush := func() {
		if len(curWords) > 0 {
			segments = append(segments, Segment{Start: segStart, Words: append([]uint16(nil), curWords...)})
		}
		curWords = nil
	}

	for i, instr := range instrs {
		addr := addrs[i]
		switch ins := instr.(type) {
		case PaddingInstruction:
			flush()
			segStart = addr
		case InterruptInstruction:
			interrupts = append(interrupts, ins)
		default:
			words, err := instr.Compile(addr, labels)
			if err != nil {
				if ce, ok := err.(CompileError); ok {
					compileErrs = append(compileErrs, ce)
				} else {
					compileErrs = append(compileErrs, newCompileError(instr.Origin(), err.Error()))
				}
				continue
			}
			curWords = append(curWords, words...)
		}
	}
	flush()

	if len(compileErrs) > 0 {
		return nil, compileErrs
	}

	segments = append(segments, Segment{Start: 0xFFFE, Words: []uint16{pcStart}})

	for _, ins := range interrupts {
		word, err := ins.VectorWord(labels)
		if err != nil {
			if ce, ok := err.(CompileError); ok {
				compileErrs = append(compileErrs, ce)
			}
			continue
		}
		segments = append(segments, Segment{Start: uint16(ins.Vector), Words: []uint16{word}})
	}
	if len(compileErrs) > 0 {
		return nil, compileErrs
	}

	segments = mergeSegments(segments)

	return &Image{Segments: segments, PCStart: pcStart, Labels: labels}, nil
}

// resolveLabels is pass 1: assigns every instruction an address and
// builds the label→address map.
func resolveLabels(instrs []Instruction, pcStart uint16) (map[string]uint16, []uint16) {
	labels := map[string]uint16{}
	addrs := make([]uint16, len(instrs))
	pc := pcStart
	for i, instr := range instrs {
		addrs[i] = pc
		for _, l := range instr.Labels() {
			labels[l] = pc
		}
		pc += uint16(2 * instr.NumWords())
	}
	return labels, addrs
}
