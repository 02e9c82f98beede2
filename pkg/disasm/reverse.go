package disasm

import (
	"strings"

	"github.com/master-g/msp430/pkg/isa"
)

// holePlaceholder stands in for "whatever the user's single argument
// was" when we ask an EmulatedInstruction for its template operands.
// Any value works here: the emulated-instruction Operands functions
// just echo it back verbatim into the slots that vary.
const holePlaceholder = "\x00hole\x00"

// reverseRule is one candidate collapse: a real mnemonic plus the
// operand template it rewrites back to a pseudo mnemonic, built once
// from isa.EmulatedInstructions().
type reverseRule struct {
	real     string
	template []string
	emu      isa.EmulatedInstruction
}

var reverseRules []reverseRule

func rules() []reverseRule {
	if reverseRules == nil {
		for _, e := range isa.EmulatedInstructions() {
			reverseRules = append(reverseRules, reverseRule{
				real:     e.Real,
				template: e.Operands(holePlaceholder),
				emu:      e,
			})
		}
	}
	return reverseRules
}

// applyReverseSubstitution renders d both the plain way and, for every
// matching emulated-instruction rule, the pseudo-mnemonic way, and
// returns whichever rendering is shortest.
func applyReverseSubstitution(d decoded) string {
	best := renderRaw(d)
	for _, r := range rules() {
		if r.real != d.mnemonic || len(r.template) != len(d.operands) {
			continue
		}
		if !r.emu.ByteModeAllowed && d.byteMode {
			continue
		}
		candidate, ok := matchRule(r, d)
		if !ok {
			continue
		}
		if len(candidate) < len(best) {
			best = candidate
		}
	}
	return best
}

func matchRule(r reverseRule, d decoded) (string, bool) {
	hole := ""
	haveHole := false
	for i, t := range r.template {
		if t == holePlaceholder {
			if haveHole && hole != d.operands[i] {
				return "", false
			}
			hole, haveHole = d.operands[i], true
			continue
		}
		if t != d.operands[i] {
			return "", false
		}
	}
	name := r.emu.Name
	if d.byteMode && r.emu.ByteModeAllowed {
		name += ".b"
	}
	if !haveHole {
		return name, true
	}
	return name + " " + hole, true
}

func renderRaw(d decoded) string {
	var sb strings.Builder
	sb.WriteString(d.mnemonic)
	if d.byteMode {
		sb.WriteString(".b")
	}
	if len(d.operands) > 0 {
		sb.WriteRune(' ')
		sb.WriteString(strings.Join(d.operands, ","))
	}
	return sb.String()
}
