// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"encoding/binary"
	"iter"
)

// LinkKind is how a label reference is patched into an opcode.
type LinkKind int

const (
	LINK_NONE     = LinkKind(0) // No label reference.
	LINK_BRANCH   = LinkKind(1) // Word offset in the branch field of the last code.
	LINK_ABSOLUTE = LinkKind(2) // Address split over a mov/movt pair.
	LINK_WORD     = LinkKind(3) // Address stored as a data word.
)

// Opcode is the output of a single line of assembly.
type Opcode struct {
	LineNo    int      // Source line number.
	Pc        uint32   // Address of the first byte.
	Words     []string // Source words.
	Codes     []Code   // Instructions, or nil for data.
	Data      []byte   // Data bytes, when Codes is nil.
	LinkLabel string   // Label to link, if any.
	Link      LinkKind // Kind of link to perform.
}

// Size returns the size of the opcode in bytes.
func (op *Opcode) Size() int {
	if op.Codes != nil {
		return len(op.Codes) * 4
	}
	return len(op.Data)
}

// Bytes returns the little-endian image of the opcode.
func (op *Opcode) Bytes() (data []byte) {
	if op.Codes == nil {
		return op.Data
	}

	data = make([]byte, 0, op.Size())
	for _, code := range op.Codes {
		data = binary.LittleEndian.AppendUint32(data, uint32(code))
	}
	return
}

// Program is an assembled user program image.
type Program struct {
	Origin  uint32            // Load address of the image.
	Entry   uint32            // Entry point.
	Labels  map[string]uint32 // Label addresses.
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode containing the address pc.
func (prog *Program) Debug(pc uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if op.Codes == nil {
			continue
		}
		if pc >= op.Pc && pc < op.Pc+uint32(op.Size()) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(pc-op.Pc) / 4,
			}
			break
		}
	}

	return
}

// Size returns the image size in bytes.
func (prog *Program) Size() (size uint32) {
	if len(prog.Opcodes) == 0 {
		return
	}

	last := &prog.Opcodes[len(prog.Opcodes)-1]
	size = last.Pc + uint32(last.Size()) - prog.Origin
	return
}

// Image returns the program bytes, to be loaded at Origin.
func (prog *Program) Image() (image []byte) {
	image = make([]byte, 0, prog.Size())
	for n := range prog.Opcodes {
		image = append(image, prog.Opcodes[n].Bytes()...)
	}

	return
}

// Codes iterates over every instruction and its address.
func (prog *Program) Codes() iter.Seq2[uint32, Code] {
	return func(yield func(pc uint32, code Code) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Pc+uint32(n*4), code) {
					return
				}
			}
		}
	}
}
