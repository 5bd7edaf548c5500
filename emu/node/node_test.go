/*
 * PCIeVC - Emulated endpoint node tests
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

package node

import (
	"errors"
	"testing"

	"github.com/rcornwell/pcievc/emu/memory"
)

func newTestModel(t *testing.T, count int) *Model {
	t.Helper()
	m, err := NewModel(count)
	if err != nil {
		t.Fatalf("Unable to create model: %v", err)
	}
	return m
}

// Model size limits.
func TestNewModel(t *testing.T) {
	for _, count := range []int{0, -1, MaxNodes + 1} {
		_, err := NewModel(count)
		if !errors.Is(err, ErrInvalidNode) {
			t.Errorf("NewModel(%d) error got: %v expected: %v", count, err, ErrInvalidNode)
		}
	}
	m := newTestModel(t, MaxNodes)
	if m.Count() != MaxNodes {
		t.Errorf("Count not correct got: %d expected: %d", m.Count(), MaxNodes)
	}
}

// Node lookup creates once.
func TestNodeLookup(t *testing.T) {
	m := newTestModel(t, 2)
	n1, err := m.Node(1)
	if err != nil {
		t.Fatalf("Node 1 lookup failed: %v", err)
	}
	n2, _ := m.Node(1)
	if n1 != n2 || n1.Number != 1 {
		t.Errorf("Node lookup returned different node")
	}
	if _, err := m.Node(2); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("Node 2 lookup error got: %v expected: %v", err, ErrInvalidNode)
	}
}

// Invalid node is fatal.
func TestInvalidNodePanics(t *testing.T) {
	m := newTestModel(t, 1)
	defer func() {
		if recover() == nil {
			t.Errorf("Write to invalid node did not panic")
		}
	}()
	m.WriteRamByte(0, 1, 7)
}

// Block read from invalid node reports status.
func TestInvalidNodeBlockRead(t *testing.T) {
	m := newTestModel(t, 1)
	data := make([]uint16, 4)
	if s := m.ReadRamByteBlock(0, data, len(data), 3); s != memory.BadStatus {
		t.Errorf("ReadRamByteBlock status got: %d expected: %d", s, memory.BadStatus)
	}
	if s := m.ReadRamByteBlock(0, data, len(data), 0); s != memory.GoodStatus {
		t.Errorf("ReadRamByteBlock status got: %d expected: %d", s, memory.GoodStatus)
	}
}

// Writes never cross nodes.
func TestIsolation(t *testing.T) {
	m := newTestModel(t, 4)
	m.WriteRamWord(0x1000, 0xdeadbeef, memory.LittleEndian, 1)
	m.WriteConfigSpace(0x10, 0x12345678, 1)
	m.SetConfigSpaceMask(0x10, 0, 1)
	for node := range uint32(4) {
		if node == 1 {
			continue
		}
		if r := m.ReadRamWord(0x1000, memory.LittleEndian, node); r != 0 {
			t.Errorf("Node %d memory sees node 1 write got: %08x", node, r)
		}
		if r := m.ReadConfigSpace(0x10, node); r != 0 {
			t.Errorf("Node %d config sees node 1 write got: %08x", node, r)
		}
		if r := m.GetConfigSpaceMask(0x10, node); r != 0xffffffff {
			t.Errorf("Node %d mask sees node 1 mask got: %08x", node, r)
		}
	}
	if r := m.ReadRamWord(0x1000, memory.LittleEndian, 1); r != 0xdeadbeef {
		t.Errorf("Node 1 memory not correct got: %08x", r)
	}
}

// Initialise twice leaves empty memory.
func TestInitialiseMem(t *testing.T) {
	m := newTestModel(t, 2)
	m.InitialiseMem(0)
	m.WriteRamDWord(0x80, 0x0102030405060708, memory.BigEndian, 0)
	m.InitialiseMem(0)
	m.InitialiseMem(0)
	if r := m.ReadRamDWord(0x80, memory.BigEndian, 0); r != 0 {
		t.Errorf("InitialiseMem did not clear memory got: %016x", r)
	}
}

// Endianness on the node entry points.
func TestRamWidths(t *testing.T) {
	m := newTestModel(t, 1)
	m.WriteRamDWord(0x10, 0x0123456789abcdef, memory.LittleEndian, 0)
	if r := m.ReadRamDWord(0x10, memory.LittleEndian, 0); r != 0x0123456789abcdef {
		t.Errorf("ReadRamDWord little got: %016x", r)
	}
	if r := m.ReadRamDWord(0x10, memory.BigEndian, 0); r != 0xefcdab8967452301 {
		t.Errorf("ReadRamDWord big got: %016x", r)
	}
	if r := m.ReadRamByte(0x10, 0); r != 0xef {
		t.Errorf("ReadRamByte got: %02x expected: %02x", r, 0xef)
	}
	m.WriteRamHWord(0x20, 0xa1b2, memory.BigEndian, 0)
	if r := m.ReadRamHWord(0x20, memory.LittleEndian, 0); r != 0xb2a1 {
		t.Errorf("ReadRamHWord got: %04x expected: %04x", r, 0xb2a1)
	}
	m.WriteRamByte(0x21, 0x55, 0)
	if r := m.ReadRamHWord(0x20, memory.BigEndian, 0); r != 0xa155 {
		t.Errorf("ReadRamHWord after byte got: %04x expected: %04x", r, 0xa155)
	}
}

// Partial block boundary leaves unselected byte alone.
func TestRamByteBlock(t *testing.T) {
	m := newTestModel(t, 1)
	m.WriteRamHWord(0x100, 0x3344, memory.LittleEndian, 0)
	m.WriteRamByteBlock(0x100, []uint16{0xaabb, 0xccdd, 0xeeff}, memory.EnableHigh, memory.EnableBoth, 3, 0)
	if r := m.ReadRamByte(0x100, 0); r != 0x44 {
		t.Errorf("Disabled byte changed got: %02x expected: %02x", r, 0x44)
	}
	data := make([]uint16, 3)
	m.ReadRamByteBlock(0x100, data, 3, 0)
	if data[0] != 0xaa44 || data[1] != 0xccdd || data[2] != 0xeeff {
		t.Errorf("ReadRamByteBlock got: %04x", data)
	}
}

// Register semantics on the node entry points.
func TestConfigSpace(t *testing.T) {
	m := newTestModel(t, 2)
	m.WriteConfigSpace(0x4, 0x00100006, 1)
	m.SetConfigSpaceMask(0x4, 0x0000fab8, 1)
	m.WriteConfigSpaceMask(0x4, 0xffff0000, 1)
	if r := m.ReadConfigSpace(0x4, 1); r != 0x00100006 {
		t.Errorf("Masked write changed read only bits got: %08x", r)
	}
	m.WriteConfigSpaceMask(0x4, 0x00000800, 1)
	if r := m.ReadConfigSpace(0x4, 1); r != 0x00100806 {
		t.Errorf("ReadConfigSpace got: %08x expected: %08x", r, 0x00100806)
	}
	if r := m.ReadConfigSpaceMask(0x4, 1); r != 0x00000800 {
		t.Errorf("ReadConfigSpaceMask got: %08x expected: %08x", r, 0x00000800)
	}
	m.WriteConfigSpace(0x4, 0xffffffff, 1)
	if r := m.ReadConfigSpace(0x4, 1); r != 0xffffffff {
		t.Errorf("Raw write did not bypass mask got: %08x", r)
	}
}

// Buffer and verify entry points.
func TestConfigSpaceBuf(t *testing.T) {
	m := newTestModel(t, 1)
	m.WriteConfigSpace(0x0, 0xdeadbeef, 0)

	good := []uint16{0xbeef, 0xdead}
	if !m.ReadConfigSpaceBufChk(0x0, good, 2, true, 0) {
		t.Errorf("ReadConfigSpaceBufChk did not match 0xdeadbeef")
	}
	bad := []uint16{0x0000, 0x0000}
	if m.ReadConfigSpaceBufChk(0x0, bad, 2, true, 0) {
		t.Errorf("ReadConfigSpaceBufChk matched 0x00000000")
	}

	m.SetConfigSpaceMask(0x0, 0xffff0000, 0)
	m.WriteConfigSpaceBuf(0x0, []uint16{0x1111, 0x2222}, memory.EnableBoth, memory.EnableBoth, 2, true, 0)
	if r := m.ReadConfigSpace(0x0, 0); r != 0x2222beef {
		t.Errorf("WriteConfigSpaceBuf masked got: %08x expected: %08x", r, 0x2222beef)
	}
	m.WriteConfigSpaceMaskBuf(0x0, []uint16{0x3333}, memory.EnableBoth, 0, 1, 0)
	if r := m.ReadConfigSpace(0x0, 0); r != 0x2222beef {
		t.Errorf("WriteConfigSpaceMaskBuf wrote read only unit got: %08x", r)
	}

	data := make([]uint16, 2)
	m.ReadConfigSpaceBuf(0x0, data, 2, 0)
	if data[0] != 0xbeef || data[1] != 0x2222 {
		t.Errorf("ReadConfigSpaceBuf got: %04x", data)
	}
	m.ReadConfigSpaceMaskBuf(0x0, data, 2, 0)
	if data[0] != 0x0000 || data[1] != 0x2222 {
		t.Errorf("ReadConfigSpaceMaskBuf got: %04x", data)
	}
	exp := []uint16{0x0000, 0x2222}
	if !m.ReadConfigSpaceMaskBufChk(0x0, exp, 2, true, 0) {
		t.Errorf("ReadConfigSpaceMaskBufChk did not match")
	}
}

// Stats follow allocation.
func TestStats(t *testing.T) {
	m := newTestModel(t, 1)
	m.WriteRamByte(0x0, 1, 0)
	m.WriteRamByte(0x10_0000, 1, 0)
	m.WriteConfigSpace(0x0, 1, 0)
	n, _ := m.Node(0)
	s := n.Stats()
	if s.MemPages != 2 || s.CfgPages != 1 || s.MemLongestChain != 1 {
		t.Errorf("Stats not correct got: %+v", s)
	}
}

// Changing count keeps lower nodes.
func TestSetCount(t *testing.T) {
	m := newTestModel(t, 4)
	m.WriteRamByte(0x10, 0x55, 1)
	m.WriteRamByte(0x10, 0x66, 3)

	err := m.SetCount(2)
	if err != nil {
		t.Fatalf("SetCount failed: %v", err)
	}
	if m.Count() != 2 {
		t.Errorf("Count got: %d expected: %d", m.Count(), 2)
	}
	if _, err := m.Node(3); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("Node 3 still valid after shrink")
	}
	if r := m.ReadRamByte(0x10, 1); r != 0x55 {
		t.Errorf("Node 1 lost data got: %02x expected: %02x", r, 0x55)
	}

	err = m.SetCount(MaxNodes + 1)
	if !errors.Is(err, ErrInvalidNode) {
		t.Errorf("SetCount accepted %d nodes", MaxNodes+1)
	}

	count := 0
	m.Walk(func(n *Node) {
		count++
		if n.Number != 1 {
			t.Errorf("Walk visited node %d", n.Number)
		}
	})
	if count != 1 {
		t.Errorf("Walk visited got: %d expected: %d", count, 1)
	}
}
