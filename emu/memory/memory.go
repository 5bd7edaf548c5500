/*
 * PCIeVC - Sparse node memory
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

/*
   Each node owns one Memory. The full 64 bit address space is available,
   storage is allocated a page at a time on first access, a read of an
   untouched page allocates it and returns zeros.

   Multi byte values are assembled a byte at a time so accesses may
   straddle page boundaries, byte order is selected per access.
*/

package memory

import (
	"encoding/binary"
	"errors"
	"slices"

	"github.com/rcornwell/pcievc/emu/pagetable"
	"github.com/rcornwell/pcievc/util/debug"
)

const (
	PageShift = 12             // Log2 of page size.
	PageSize  = 1 << PageShift // Bytes per page.
)

// Byte order of multi byte accesses.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

const (
	// Debug options.
	debugAlloc = 1 << iota
	debugRead
	debugWrite
)

var debugOption = map[string]int{
	"ALLOC": debugAlloc,
	"READ":  debugRead,
	"WRITE": debugWrite,
}

type page [PageSize]byte

// Memory of one node.
type Memory struct {
	node     int                    // Node number, for debug.
	table    *pagetable.Table[page] // Allocated pages.
	debugMsk int                    // Debug option mask.
}

// Create empty memory for a node.
func New(node int) *Memory {
	return &Memory{
		node:  node,
		table: pagetable.New(PageShift, func() *page { return new(page) }),
	}
}

// Discard all content.
func (mem *Memory) Initialise() {
	mem.table.Reset()
}

// Enable debug options.
func (mem *Memory) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("memory debug option invalid: " + opt)
	}
	mem.debugMsk |= flag
	return nil
}

// Number of pages allocated.
func (mem *Memory) Pages() int {
	return mem.table.Pages()
}

// Longest collision chain in page table.
func (mem *Memory) LongestChain() int {
	return mem.table.LongestChain()
}

// Base addresses of allocated pages, in order.
func (mem *Memory) PageBases() []uint64 {
	bases := make([]uint64, 0, mem.table.Pages())
	mem.table.Walk(func(base uint64, _ *page) {
		bases = append(bases, base)
	})
	slices.Sort(bases)
	return bases
}

func (e Endian) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// Return page for address, allocating if needed.
func (mem *Memory) page(addr uint64) *page {
	p, created := mem.table.LocateOrAllocate(addr)
	if created {
		debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugAlloc, "allocate page %016x", mem.table.Base(addr))
	}
	return p
}

// Copy data into memory, crossing pages as needed.
func (mem *Memory) put(addr uint64, data []byte) {
	for len(data) != 0 {
		p := mem.page(addr)
		n := copy(p[mem.table.Offset(addr):], data)
		data = data[n:]
		addr += uint64(n)
	}
}

// Copy memory into data, crossing pages as needed.
func (mem *Memory) get(addr uint64, data []byte) {
	for len(data) != 0 {
		p := mem.page(addr)
		n := copy(data, p[mem.table.Offset(addr):])
		data = data[n:]
		addr += uint64(n)
	}
}

// Write a byte.
func (mem *Memory) PutByte(addr uint64, data uint8) {
	debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugWrite, "write byte %016x %02x", addr, data)
	p := mem.page(addr)
	p[mem.table.Offset(addr)] = data
}

// Read a byte.
func (mem *Memory) GetByte(addr uint64) uint8 {
	p := mem.page(addr)
	data := p[mem.table.Offset(addr)]
	debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugRead, "read byte %016x %02x", addr, data)
	return data
}

// Write a half word.
func (mem *Memory) PutHalf(addr uint64, data uint16, e Endian) {
	debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugWrite, "write half %016x %04x %s", addr, data, e)
	var buf [2]byte
	e.order().PutUint16(buf[:], data)
	mem.put(addr, buf[:])
}

// Read a half word.
func (mem *Memory) GetHalf(addr uint64, e Endian) uint16 {
	var buf [2]byte
	mem.get(addr, buf[:])
	data := e.order().Uint16(buf[:])
	debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugRead, "read half %016x %04x %s", addr, data, e)
	return data
}

// Write a word.
func (mem *Memory) PutWord(addr uint64, data uint32, e Endian) {
	debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugWrite, "write word %016x %08x %s", addr, data, e)
	var buf [4]byte
	e.order().PutUint32(buf[:], data)
	mem.put(addr, buf[:])
}

// Read a word.
func (mem *Memory) GetWord(addr uint64, e Endian) uint32 {
	var buf [4]byte
	mem.get(addr, buf[:])
	data := e.order().Uint32(buf[:])
	debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugRead, "read word %016x %08x %s", addr, data, e)
	return data
}

// Write a double word.
func (mem *Memory) PutDouble(addr uint64, data uint64, e Endian) {
	debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugWrite, "write double %016x %016x %s", addr, data, e)
	var buf [8]byte
	e.order().PutUint64(buf[:], data)
	mem.put(addr, buf[:])
}

// Read a double word.
func (mem *Memory) GetDouble(addr uint64, e Endian) uint64 {
	var buf [8]byte
	mem.get(addr, buf[:])
	data := e.order().Uint64(buf[:])
	debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugRead, "read double %016x %016x %s", addr, data, e)
	return data
}
