package emulator

// Memory is the CPU's address space. Word access requires an even
// address; byte access is unconstrained. Words are stored big-endian
// (the low address holds the high byte), which is also why a
// byte-mode immediate extension word stores its value in the high
// byte — see pkg/asm's ImmediateOperand.EncodeSrc.
type Memory interface {
	ReadByte(addr uint16) (uint8, error)
	WriteByte(addr uint16, v uint8) error
	ReadWord(addr uint16) (uint16, error)
	WriteWord(addr uint16, v uint16) error
}

// PlainMemory is a flat 64 KiB array backing Memory.
type PlainMemory struct {
	bytes [65536]uint8
}

// NewPlainMemory returns a zeroed 64 KiB memory.
func NewPlainMemory() *PlainMemory {
	return &PlainMemory{}
}

// LoadAt copies data into memory starting at addr, for test and image
// loading convenience.
func (m *PlainMemory) LoadAt(addr uint16, data []byte) {
	for i, b := range data {
		m.bytes[int(addr)+i] = b
	}
}

func (m *PlainMemory) ReadByte(addr uint16) (uint8, error) {
	return m.bytes[addr], nil
}

func (m *PlainMemory) WriteByte(addr uint16, v uint8) error {
	m.bytes[addr] = v
	return nil
}

func (m *PlainMemory) ReadWord(addr uint16) (uint16, error) {
	if addr%2 != 0 {
		return 0, ExecutionError("odd word read at " + hexWord(addr))
	}
	hi := m.bytes[addr]
	lo := m.bytes[addr+1]
	return uint16(hi)<<8 | uint16(lo), nil
}

func (m *PlainMemory) WriteWord(addr uint16, v uint16) error {
	if addr%2 != 0 {
		return ExecutionError("odd word write at " + hexWord(addr))
	}
	m.bytes[addr] = uint8(v >> 8)
	m.bytes[addr+1] = uint8(v)
	return nil
}
