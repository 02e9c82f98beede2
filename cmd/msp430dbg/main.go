package main

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/master-g/msp430/pkg/disasm"
	"github.com/master-g/msp430/pkg/emulator"
)

var (
	cpu           *emulator.CPU
	mem           *emulator.PlainMemory
	disassembly   *disasm.Disassembly
	paragraphCPU  *widgets.Paragraph
	paragraphCode *widgets.Paragraph
	paragraphRam0 *widgets.Paragraph
	paragraphRam1 *widgets.Paragraph
	paragraphTips *widgets.Paragraph
)

func renderCPU(p *widgets.Paragraph) {
	sb := &strings.Builder{}
	flags := []struct {
		bit  uint16
		name rune
	}{
		{emulator.FlagN, 'N'},
		{emulator.FlagV, 'V'},
		{emulator.FlagZ, 'Z'},
		{emulator.FlagC, 'C'},
	}
	sb.WriteString("STATUS: ")
	for _, f := range flags {
		sb.WriteRune('[')
		sb.WriteRune(f.name)
		sb.WriteRune(']')
		sb.WriteString("(fg:")
		if cpu.Regs.Flag(f.bit) {
			sb.WriteString("green")
		} else {
			sb.WriteString("red")
		}
		sb.WriteString(") ")
	}
	sb.WriteRune('\n')
	sb.WriteString(fmt.Sprintf("PC: $%04X SP: $%04X SR: $%04X\n", cpu.Regs.PC(), cpu.Regs.SP(), cpu.Regs.SR()))
	for i := 4; i < 16; i++ {
		sb.WriteString(fmt.Sprintf("R%-2d: $%04X  ", i, cpu.Regs.Get(i)))
		if i%4 == 3 {
			sb.WriteRune('\n')
		}
	}
	p.Text = sb.String()
}

func renderRam(p *widgets.Paragraph, addr uint16, numRow, numCol int) {
	curAddr := addr
	sb := &strings.Builder{}
	for row := 0; row < numRow; row++ {
		sb.WriteString(fmt.Sprintf("$%04X:", curAddr))
		for col := 0; col < numCol; col++ {
			sb.WriteRune(' ')
			b, _ := mem.ReadByte(curAddr)
			sb.WriteString(fmt.Sprintf("%02X", b))
			curAddr++
		}
		sb.WriteRune('\n')
	}
	p.Text = sb.String()
}

func renderCode(p *widgets.Paragraph) {
	sb := &strings.Builder{}
	pc := cpu.Regs.PC()
	for _, addr := range disassembly.Index {
		if addr+40 < pc || addr > pc+40 {
			continue
		}
		line := disassembly.Lines[addr]
		if addr == pc {
			sb.WriteString(fmt.Sprintf("[$%04X: %s](fg:cyan)", addr, line))
		} else {
			sb.WriteString(fmt.Sprintf("$%04X: %s", addr, line))
		}
		sb.WriteRune('\n')
	}
	p.Text = sb.String()
}

func renderTips(p *widgets.Paragraph) {
	p.Text = "SPACE = Step Instruction    R = Reset    Q = Quit"
}

func draw() {
	renderRam(paragraphRam0, 0x0000, 16, 16)
	renderRam(paragraphRam1, 0xc000, 16, 16)
	renderCPU(paragraphCPU)
	renderCode(paragraphCode)
	renderTips(paragraphTips)

	ui.Render(paragraphRam0, paragraphRam1, paragraphCPU, paragraphCode, paragraphTips)
}

// loadImage decodes the binary format of spec §6.1 directly into mem,
// returning the startup PC stored in the mandatory 0xFFFE segment.
func loadImage(data []byte, mem *emulator.PlainMemory) (uint16, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xFF {
		return 0, fmt.Errorf("not an msp430 image (bad magic)")
	}
	count := int(data[2])<<8 | int(data[3])
	pos := 4
	for i := 0; i < count; i++ {
		if pos+4 > len(data) {
			return 0, fmt.Errorf("truncated segment header")
		}
		start := uint16(data[pos])<<8 | uint16(data[pos+1])
		length := int(data[pos+2])<<8 | int(data[pos+3])
		pos += 4
		if pos+length > len(data) {
			return 0, fmt.Errorf("truncated segment body")
		}
		mem.LoadAt(start, data[pos:pos+length])
		pos += length
	}
	pcStart, err := mem.ReadWord(0xFFFE)
	if err != nil {
		return 0, err
	}
	return pcStart, nil
}

func initLayout() {
	paragraphRam0 = widgets.NewParagraph()
	paragraphRam0.Title = "RAM Page 0x0000"
	paragraphRam0.SetRect(0, 0, 56, 18)

	paragraphRam1 = widgets.NewParagraph()
	paragraphRam1.Title = "RAM Page 0xc000"
	paragraphRam1.SetRect(0, 18, 56, 36)

	paragraphCPU = widgets.NewParagraph()
	paragraphCPU.Title = "CPU"
	paragraphCPU.SetRect(56, 0, 56+40, 9)

	paragraphCode = widgets.NewParagraph()
	paragraphCode.Title = "Disassembly"
	paragraphCode.SetRect(56, 9, 56+40, 9+29)

	paragraphTips = widgets.NewParagraph()
	paragraphTips.Title = "Tips"
	paragraphTips.SetRect(0, 36, 56+40, 39)
}

func step() {
	if err := cpu.Step(); err != nil {
		paragraphTips.Text = fmt.Sprintf("error: %v", err)
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: msp430dbg <base64-image-file>")
		os.Exit(1)
	}
	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("could not read %v: %v", os.Args[1], err)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		log.Fatalf("could not decode base64 image: %v", err)
	}

	mem = emulator.NewPlainMemory()
	pcStart, err := loadImage(data, mem)
	if err != nil {
		log.Fatalf("could not load image: %v", err)
	}

	cpu = emulator.NewCPU(mem)
	cpu.Silent = true
	if err := cpu.Reset(pcStart); err != nil {
		log.Fatalf("could not reset cpu: %v", err)
	}

	disassembly, err = disasm.Disassemble(mem, 0, 0xfffe, nil)
	if err != nil {
		log.Fatalf("could not disassemble image: %v", err)
	}

	if err := ui.Init(); err != nil {
		log.Fatalf("failed to initialize termui: %v", err)
	}
	defer ui.Close()

	initLayout()
	draw()

	for e := range ui.PollEvents() {
		if e.Type == ui.KeyboardEvent {
			switch e.ID {
			case "q", "Q", "<C-c>":
				return
			case "<Space>":
				step()
			case "r", "R":
				if err := cpu.Reset(pcStart); err != nil {
					paragraphTips.Text = fmt.Sprintf("error: %v", err)
				}
			}
			draw()
		}
	}
}
