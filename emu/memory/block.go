/*
 * PCIeVC - Byte enabled block transfers
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
   Block transfers move a run of 16 bit units. The low byte of unit i
   lives at addr+2i and the high byte at addr+2i+1. The first and last
   units of a write are gated by 2 bit byte enables, bit 0 selects the
   low byte and bit 1 the high byte. Interior units are always written
   in full. A single unit transfer only uses the first enable. Reads are
   never gated.
*/

package memory

import (
	"log/slog"

	"github.com/rcornwell/pcievc/util/debug"
)

// Block read status.
type Status int

const (
	GoodStatus Status = 0
	BadStatus  Status = 1
)

const (
	EnableLow  = 0x1 // Low byte of unit enabled.
	EnableHigh = 0x2 // High byte of unit enabled.
	EnableBoth = EnableLow | EnableHigh
)

// Return byte enables for unit of a transfer of length units.
func ByteEnable(unit, length, fbe, lbe int) int {
	switch unit {
	case 0:
		return fbe & EnableBoth
	case length - 1:
		return lbe & EnableBoth
	default:
		return EnableBoth
	}
}

// Write length units of data starting at addr.
func (mem *Memory) WriteByteBlock(addr uint64, data []uint16, fbe, lbe, length int) {
	if length <= 0 {
		return
	}
	if len(data) < length {
		slog.Error("block write buffer too short", "node", mem.node, "length", length, "buffer", len(data))
		return
	}
	debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugWrite, "write block %016x len=%d fbe=%x lbe=%x",
		addr, length, fbe, lbe)
	for i := range length {
		be := ByteEnable(i, length, fbe, lbe)
		a := addr + uint64(2*i)
		if be&EnableLow != 0 {
			p := mem.page(a)
			p[mem.table.Offset(a)] = uint8(data[i])
		}
		if be&EnableHigh != 0 {
			p := mem.page(a + 1)
			p[mem.table.Offset(a+1)] = uint8(data[i] >> 8)
		}
	}
}

// Read length units starting at addr into data.
func (mem *Memory) ReadByteBlock(addr uint64, data []uint16, length int) Status {
	if length < 0 || len(data) < length {
		slog.Error("block read rejected", "node", mem.node, "length", length, "buffer", len(data))
		return BadStatus
	}
	var buf [2]byte
	for i := range length {
		mem.get(addr+uint64(2*i), buf[:])
		data[i] = uint16(buf[0]) | uint16(buf[1])<<8
	}
	debug.DebugNodef("RAM", mem.node, mem.debugMsk, debugRead, "read block %016x len=%d", addr, length)
	return GoodStatus
}
