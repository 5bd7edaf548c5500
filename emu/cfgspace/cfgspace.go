/*
 * PCIeVC - Configuration space registers
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
   Configuration space is a separate store of 32 bit registers, each
   with a write mask. A mask bit of 1 lets the bus side write that bit,
   a 0 bit is read only. Raw writes ignore the mask and are used to
   build the initial register values. Registers are created a page at
   a time, zero with every bit writable, so unconfigured space acts as
   plain memory.

   Register addresses are byte addresses, byte lane n of a register is
   bits 8n to 8n+7 (little endian, as on the bus).
*/

package cfgspace

import (
	"errors"
	"slices"

	"github.com/rcornwell/pcievc/emu/pagetable"
	"github.com/rcornwell/pcievc/util/debug"
)

const (
	PageShift    = 12                 // Log2 of bytes of config space per page.
	PageSize     = 1 << PageShift     // Bytes of config space per page.
	cellsPerPage = PageSize / 4       // Registers per page.
	AllWritable  = uint32(0xffffffff) // Default mask.
)

const (
	// Debug options.
	debugRead = 1 << iota
	debugWrite
	debugMask
)

var debugOption = map[string]int{
	"READ":  debugRead,
	"WRITE": debugWrite,
	"MASK":  debugMask,
}

type page struct {
	value [cellsPerPage]uint32 // Register contents.
	mask  [cellsPerPage]uint32 // Writable bits.
}

func newPage() *page {
	p := &page{}
	for i := range p.mask {
		p.mask[i] = AllWritable
	}
	return p
}

// Configuration space of one node.
type Space struct {
	node     int                    // Node number, for debug.
	table    *pagetable.Table[page] // Allocated register pages.
	debugMsk int                    // Debug option mask.
}

// Create empty configuration space for a node.
func New(node int) *Space {
	return &Space{
		node:  node,
		table: pagetable.New(PageShift, newPage),
	}
}

// Discard all registers and masks.
func (cfg *Space) Initialise() {
	cfg.table.Reset()
}

// Enable debug options.
func (cfg *Space) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("config space debug option invalid: " + opt)
	}
	cfg.debugMsk |= flag
	return nil
}

// Number of register pages allocated.
func (cfg *Space) Pages() int {
	return cfg.table.Pages()
}

// Longest collision chain in page table.
func (cfg *Space) LongestChain() int {
	return cfg.table.LongestChain()
}

// Base addresses of allocated register pages, in order.
func (cfg *Space) PageBases() []uint32 {
	bases := make([]uint32, 0, cfg.table.Pages())
	cfg.table.Walk(func(base uint64, _ *page) {
		bases = append(bases, uint32(base))
	})
	slices.Sort(bases)
	return bases
}

// Return page and register index for address.
func (cfg *Space) cell(addr uint32) (*page, int) {
	p, _ := cfg.table.LocateOrAllocate(uint64(addr))
	return p, cfg.table.Offset(uint64(addr)) >> 2
}

// Write register ignoring mask.
func (cfg *Space) Write(addr, data uint32) {
	debug.DebugNodef("CFG", cfg.node, cfg.debugMsk, debugWrite, "write %08x %08x", addr, data)
	p, i := cfg.cell(addr)
	p.value[i] = data
}

// Write register, only bits set in mask change.
func (cfg *Space) WriteMasked(addr, data uint32) {
	p, i := cfg.cell(addr)
	m := p.mask[i]
	p.value[i] = (data & m) | (p.value[i] &^ m)
	debug.DebugNodef("CFG", cfg.node, cfg.debugMsk, debugWrite, "write masked %08x %08x mask %08x -> %08x",
		addr, data, m, p.value[i])
}

// Read register.
func (cfg *Space) Read(addr uint32) uint32 {
	p, i := cfg.cell(addr)
	debug.DebugNodef("CFG", cfg.node, cfg.debugMsk, debugRead, "read %08x %08x", addr, p.value[i])
	return p.value[i]
}

// Read writable bits of register, read only bits return 0.
func (cfg *Space) ReadMasked(addr uint32) uint32 {
	p, i := cfg.cell(addr)
	debug.DebugNodef("CFG", cfg.node, cfg.debugMsk, debugRead, "read masked %08x %08x mask %08x",
		addr, p.value[i], p.mask[i])
	return p.value[i] & p.mask[i]
}

// Set write mask of register.
func (cfg *Space) SetMask(addr, mask uint32) {
	debug.DebugNodef("CFG", cfg.node, cfg.debugMsk, debugMask, "mask %08x %08x", addr, mask)
	p, i := cfg.cell(addr)
	p.mask[i] = mask
}

// Return write mask of register.
func (cfg *Space) Mask(addr uint32) uint32 {
	p, i := cfg.cell(addr)
	return p.mask[i]
}

// Return value and mask of byte at addr.
func (cfg *Space) getByte(addr uint32) (uint8, uint8) {
	p, i := cfg.cell(addr)
	shift := 8 * (addr & 3)
	return uint8(p.value[i] >> shift), uint8(p.mask[i] >> shift)
}

// Write byte at addr, under mask if useMask set.
func (cfg *Space) putByte(addr uint32, data uint8, useMask bool) {
	p, i := cfg.cell(addr)
	shift := 8 * (addr & 3)
	m := uint32(0xff) << shift
	if useMask {
		m &= p.mask[i]
	}
	p.value[i] = (uint32(data)<<shift)&m | p.value[i]&^m
}
