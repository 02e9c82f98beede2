package disasm

import "strings"

// Render flattens a Disassembly into listing text, one instruction per
// line, with labels on their own preceding line. Labels spelled with a
// leading "$" (locally-scoped block labels) are inlined directly above
// their instruction with no separating blank line; any other label
// gets a blank line first, so named routines stand out visually.
func Render(d *Disassembly, labels map[uint16]string) string {
	var sb strings.Builder
	for _, addr := range d.Index {
		if name, ok := labels[addr]; ok {
			if !strings.HasPrefix(name, "$") {
				sb.WriteRune('\n')
			}
			sb.WriteString(name)
			sb.WriteString(":\n")
		}
		sb.WriteString(d.Lines[addr])
		sb.WriteRune('\n')
	}
	return sb.String()
}
