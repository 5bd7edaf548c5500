/*
 * PCIeVC - Configuration space block transfers
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
   Buffer transfers use the same 16 bit units and byte enables as the
   memory block transfers. A unit at addr covers two consecutive bytes
   of configuration space, which may sit in different registers.
*/

package cfgspace

import (
	"log/slog"

	"github.com/rcornwell/pcievc/emu/memory"
	"github.com/rcornwell/pcievc/util/debug"
)

// Write length units, gated by byte enables. If useMask is set only
// writable bits change.
func (cfg *Space) WriteBuf(addr uint32, data []uint16, fbe, lbe, length int, useMask bool) {
	if length <= 0 {
		return
	}
	if len(data) < length {
		slog.Error("config write buffer too short", "node", cfg.node, "length", length, "buffer", len(data))
		return
	}
	debug.DebugNodef("CFG", cfg.node, cfg.debugMsk, debugWrite, "write buffer %08x len=%d fbe=%x lbe=%x mask=%t",
		addr, length, fbe, lbe, useMask)
	for i := range length {
		be := memory.ByteEnable(i, length, fbe, lbe)
		a := addr + uint32(2*i)
		if be&memory.EnableLow != 0 {
			cfg.putByte(a, uint8(data[i]), useMask)
		}
		if be&memory.EnableHigh != 0 {
			cfg.putByte(a+1, uint8(data[i]>>8), useMask)
		}
	}
}

// Masked buffer write.
func (cfg *Space) WriteMaskBuf(addr uint32, data []uint16, fbe, lbe, length int) {
	cfg.WriteBuf(addr, data, fbe, lbe, length, true)
}

// Return value and mask of unit at addr.
func (cfg *Space) unit(addr uint32) (uint16, uint16) {
	v0, m0 := cfg.getByte(addr)
	v1, m1 := cfg.getByte(addr + 1)
	return uint16(v0) | uint16(v1)<<8, uint16(m0) | uint16(m1)<<8
}

// Read units into data. When check is set, data holds expected values on
// entry, returns false if any unit differs in a compared bit.
func (cfg *Space) readBuf(addr uint32, data []uint16, length int, useMask, check bool) bool {
	if length < 0 || len(data) < length {
		slog.Error("config read rejected", "node", cfg.node, "length", length, "buffer", len(data))
		return false
	}
	matched := true
	for i := range length {
		value, mask := cfg.unit(addr + uint32(2*i))
		if !useMask {
			mask = 0xffff
		}
		if check && (value^data[i])&mask != 0 {
			debug.DebugNodef("CFG", cfg.node, cfg.debugMsk, debugRead, "check %08x got %04x expected %04x mask %04x",
				addr+uint32(2*i), value, data[i], mask)
			matched = false
		}
		data[i] = value & mask
	}
	return matched
}

// Read raw register contents.
func (cfg *Space) ReadBuf(addr uint32, data []uint16, length int) {
	_ = cfg.readBuf(addr, data, length, false, false)
}

// Read writable bits of registers.
func (cfg *Space) ReadMaskBuf(addr uint32, data []uint16, length int) {
	_ = cfg.readBuf(addr, data, length, true, false)
}

// Read raw register contents, optionally comparing with expected values
// in data.
func (cfg *Space) ReadBufChk(addr uint32, data []uint16, length int, check bool) bool {
	return cfg.readBuf(addr, data, length, false, check)
}

// Read writable bits of registers, optionally comparing writable bits
// with expected values in data.
func (cfg *Space) ReadMaskBufChk(addr uint32, data []uint16, length int, check bool) bool {
	return cfg.readBuf(addr, data, length, true, check)
}
