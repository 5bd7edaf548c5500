/*
 * PCIeVC - Sparse node memory tests
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

package memory

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rcornwell/pcievc/util/debug"
)

// Untouched memory reads as zero.
func TestLazyAllocation(t *testing.T) {
	mem := New(0)
	for _, addr := range []uint64{0, 0x1000, 0xdead_beef_0000, 0xffff_ffff_ffff_fff8} {
		if r := mem.GetDouble(addr, LittleEndian); r != 0 {
			t.Errorf("Fresh memory not zero at %x got: %x", addr, r)
		}
	}
	if mem.Pages() != 4 {
		t.Errorf("Pages allocated not correct got: %d expected: %d", mem.Pages(), 4)
	}
}

// Byte read and write.
func TestByte(t *testing.T) {
	mem := New(0)
	for i := range uint64(512) {
		mem.PutByte(0x8000_0000_0000_0000+i, uint8(i*3))
	}
	for i := range uint64(512) {
		r := mem.GetByte(0x8000_0000_0000_0000 + i)
		if r != uint8(i*3) {
			t.Errorf("GetByte not correct got: %02x expected: %02x", r, uint8(i*3))
		}
	}
}

// Each width in both byte orders.
func TestWidths(t *testing.T) {
	mem := New(1)

	mem.PutHalf(0x100, 0x1234, LittleEndian)
	if mem.GetByte(0x100) != 0x34 || mem.GetByte(0x101) != 0x12 {
		t.Errorf("PutHalf little not in little endian order")
	}
	if r := mem.GetHalf(0x100, BigEndian); r != 0x3412 {
		t.Errorf("GetHalf big not correct got: %04x expected: %04x", r, 0x3412)
	}

	mem.PutWord(0x200, 0x11223344, BigEndian)
	if mem.GetByte(0x200) != 0x11 || mem.GetByte(0x203) != 0x44 {
		t.Errorf("PutWord big not in big endian order")
	}
	if r := mem.GetWord(0x200, BigEndian); r != 0x11223344 {
		t.Errorf("GetWord big not correct got: %08x expected: %08x", r, 0x11223344)
	}
	if r := mem.GetWord(0x200, LittleEndian); r != 0x44332211 {
		t.Errorf("GetWord little not correct got: %08x expected: %08x", r, 0x44332211)
	}
}

// Double word round trip.
func TestDoubleRoundTrip(t *testing.T) {
	mem := New(0)
	values := []uint64{0x0123456789abcdef, 0, 0xffffffffffffffff, 0x8000000000000001}
	for i, v := range values {
		addr := uint64(0x4000 + i*8)
		mem.PutDouble(addr, v, LittleEndian)
		if r := mem.GetDouble(addr, LittleEndian); r != v {
			t.Errorf("GetDouble little not correct got: %016x expected: %016x", r, v)
		}
		rev := uint64(0)
		for b := range 8 {
			rev |= ((v >> (8 * b)) & 0xff) << (56 - 8*b)
		}
		if r := mem.GetDouble(addr, BigEndian); r != rev {
			t.Errorf("GetDouble big not correct got: %016x expected: %016x", r, rev)
		}
	}
}

// Values which straddle page boundary.
func TestPageStraddle(t *testing.T) {
	mem := New(0)
	addr := uint64(3*PageSize - 3)
	mem.PutDouble(addr, 0xa1a2a3a4a5a6a7a8, BigEndian)
	if mem.Pages() != 2 {
		t.Errorf("Straddle did not use two pages got: %d", mem.Pages())
	}
	if r := mem.GetDouble(addr, BigEndian); r != 0xa1a2a3a4a5a6a7a8 {
		t.Errorf("GetDouble straddle not correct got: %016x", r)
	}
	if r := mem.GetByte(3 * PageSize); r != 0xa4 {
		t.Errorf("Byte after boundary not correct got: %02x expected: %02x", r, 0xa4)
	}
}

// Second initialise discards contents.
func TestInitialise(t *testing.T) {
	mem := New(0)
	mem.PutWord(0x10, 0xdeadbeef, LittleEndian)
	mem.Initialise()
	mem.Initialise()
	if r := mem.GetWord(0x10, LittleEndian); r != 0 {
		t.Errorf("Initialise did not clear memory got: %08x", r)
	}
}

// Interior units full, boundary units under enables.
func TestWriteByteBlock(t *testing.T) {
	mem := New(0)
	for i := range uint64(8) {
		mem.PutByte(0x1000+i, 0xee)
	}

	data := []uint16{0x1111, 0x2222, 0x3333, 0x4444}
	mem.WriteByteBlock(0x1000, data, EnableHigh, EnableLow, len(data))

	expected := []byte{0xee, 0x11, 0x22, 0x22, 0x33, 0x33, 0x44, 0xee}
	got := make([]byte, 8)
	for i := range got {
		got[i] = mem.GetByte(0x1000 + uint64(i))
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("WriteByteBlock mismatch (-want +got):\n%s", diff)
	}
}

// Single unit only uses first enable.
func TestWriteByteBlockSingle(t *testing.T) {
	mem := New(0)
	mem.PutHalf(0x20, 0xaaaa, LittleEndian)
	mem.WriteByteBlock(0x20, []uint16{0x5566}, EnableLow, 0, 1)
	if r := mem.GetHalf(0x20, LittleEndian); r != 0xaa66 {
		t.Errorf("Single unit write not correct got: %04x expected: %04x", r, 0xaa66)
	}
	// Only low two bits of enable count.
	mem.WriteByteBlock(0x20, []uint16{0x7788}, 0xfe, 0, 1)
	if r := mem.GetHalf(0x20, LittleEndian); r != 0x7766 {
		t.Errorf("Malformed enable write not correct got: %04x expected: %04x", r, 0x7766)
	}
}

// Zero length and short buffers.
func TestBlockEdges(t *testing.T) {
	mem := New(2)
	mem.WriteByteBlock(0x40, nil, EnableBoth, EnableBoth, 0)
	if mem.Pages() != 0 {
		t.Errorf("Zero length write touched memory")
	}
	if s := mem.ReadByteBlock(0x40, nil, 0); s != GoodStatus {
		t.Errorf("Zero length read status got: %d expected: %d", s, GoodStatus)
	}
	if s := mem.ReadByteBlock(0x40, make([]uint16, 2), -1); s != BadStatus {
		t.Errorf("Negative length read status got: %d expected: %d", s, BadStatus)
	}
	if s := mem.ReadByteBlock(0x40, make([]uint16, 2), 3); s != BadStatus {
		t.Errorf("Short buffer read status got: %d expected: %d", s, BadStatus)
	}
}

// Block read returns full units.
func TestReadByteBlock(t *testing.T) {
	mem := New(0)
	in := []uint16{0x0102, 0x0304, 0x0506}
	mem.WriteByteBlock(PageSize-2, in, EnableBoth, EnableBoth, len(in))
	out := make([]uint16, len(in))
	if s := mem.ReadByteBlock(PageSize-2, out, len(out)); s != GoodStatus {
		t.Errorf("ReadByteBlock status got: %d expected: %d", s, GoodStatus)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("ReadByteBlock mismatch (-want +got):\n%s", diff)
	}
	if r := mem.GetHalf(PageSize, BigEndian); r != 0x0403 {
		t.Errorf("Unit byte order not correct got: %04x expected: %04x", r, 0x0403)
	}
}

// Enable selection.
func TestByteEnable(t *testing.T) {
	tests := []struct {
		unit, length, fbe, lbe, want int
	}{
		{0, 1, 1, 2, 1},
		{0, 4, 2, 1, 2},
		{3, 4, 2, 1, 1},
		{1, 4, 0, 0, 3},
		{0, 2, 7, 4, 3},
		{1, 2, 7, 4, 0},
	}
	for _, test := range tests {
		r := ByteEnable(test.unit, test.length, test.fbe, test.lbe)
		if r != test.want {
			t.Errorf("ByteEnable(%d,%d,%x,%x) got: %x expected: %x", test.unit, test.length,
				test.fbe, test.lbe, r, test.want)
		}
	}
}

// Debug options and trace output.
func TestDebug(t *testing.T) {
	mem := New(5)
	if err := mem.Debug("BOGUS"); err == nil {
		t.Errorf("Invalid debug option accepted")
	}
	if err := mem.Debug("ALLOC"); err != nil {
		t.Errorf("Valid debug option rejected: %v", err)
	}
	var out bytes.Buffer
	debug.SetOutput(&out)
	defer debug.SetOutput(nil)
	mem.PutByte(0x3000, 1)
	if !strings.Contains(out.String(), "Node 5 RAM: allocate page 0000000000003000") {
		t.Errorf("Allocate trace not correct got: %q", out.String())
	}
}
