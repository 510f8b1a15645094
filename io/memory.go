// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"encoding/binary"
)

// Memory is a flat little-endian RAM covering [Base, Base+len(Data)).
type Memory struct {
	Base uint32
	Data []byte
}

// NewMemory creates a zeroed memory of size bytes starting at base.
func NewMemory(base uint32, size uint32) (mem *Memory) {
	mem = &Memory{
		Base: base,
		Data: make([]byte, size),
	}
	return
}

// Limit returns the first address past the end of memory.
func (mem *Memory) Limit() uint32 {
	return mem.Base + uint32(len(mem.Data))
}

// Contains returns true if [addr, addr+size) lies inside memory.
func (mem *Memory) Contains(addr uint32, size uint32) bool {
	if addr < mem.Base {
		return false
	}
	offset := uint64(addr - mem.Base)
	return offset+uint64(size) <= uint64(len(mem.Data))
}

// offset checks an access and returns its offset into Data.
func (mem *Memory) offset(addr uint32, size uint32) (offset uint32, err error) {
	if !mem.Contains(addr, size) {
		err = &ErrAddress{Addr: addr, Err: ErrMemoryFault}
		return
	}

	offset = addr - mem.Base
	return
}

// Reset zeros the memory.
func (mem *Memory) Reset() {
	clear(mem.Data)
}

// Read8 reads a byte.
func (mem *Memory) Read8(addr uint32) (value uint8, err error) {
	offset, err := mem.offset(addr, 1)
	if err != nil {
		return
	}

	value = mem.Data[offset]
	return
}

// Write8 writes a byte.
func (mem *Memory) Write8(addr uint32, value uint8) (err error) {
	offset, err := mem.offset(addr, 1)
	if err != nil {
		return
	}

	mem.Data[offset] = value
	return
}

// Read32 reads an aligned word.
func (mem *Memory) Read32(addr uint32) (value uint32, err error) {
	if (addr & 3) != 0 {
		err = &ErrAddress{Addr: addr, Err: ErrMemoryAlign}
		return
	}

	offset, err := mem.offset(addr, 4)
	if err != nil {
		return
	}

	value = binary.LittleEndian.Uint32(mem.Data[offset:])
	return
}

// Write32 writes an aligned word.
func (mem *Memory) Write32(addr uint32, value uint32) (err error) {
	if (addr & 3) != 0 {
		err = &ErrAddress{Addr: addr, Err: ErrMemoryAlign}
		return
	}

	offset, err := mem.offset(addr, 4)
	if err != nil {
		return
	}

	binary.LittleEndian.PutUint32(mem.Data[offset:], value)
	return
}

// ReadBytes returns a copy of size bytes starting at addr.
func (mem *Memory) ReadBytes(addr uint32, size uint32) (data []byte, err error) {
	offset, err := mem.offset(addr, size)
	if err != nil {
		return
	}

	data = make([]byte, size)
	copy(data, mem.Data[offset:])
	return
}

// Load copies an image into memory at addr.
func (mem *Memory) Load(addr uint32, image []byte) (err error) {
	offset, err := mem.offset(addr, uint32(len(image)))
	if err != nil {
		return
	}

	copy(mem.Data[offset:], image)
	return
}
