/*
 * PCIeVC - Emulated endpoint nodes
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
   A Node is one emulated endpoint, it owns one sparse memory and one
   configuration space, nothing is shared between nodes. The Model holds
   every node of a simulation run and provides the node indexed entry
   points used by the transaction layer. Each call runs to completion,
   there is no locking; a node must only be driven from one goroutine.

   Naming an invalid node in one of the entry points is a setup error
   and panics. Use Node to validate a node number first.
*/

package node

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rcornwell/pcievc/emu/cfgspace"
	"github.com/rcornwell/pcievc/emu/memory"
)

// Largest number of nodes in one run.
const MaxNodes = 64

var ErrInvalidNode = errors.New("invalid node")

// One emulated endpoint.
type Node struct {
	Number int             // Node number.
	Mem    *memory.Memory  // Sparse memory.
	Cfg    *cfgspace.Space // Configuration space.
}

// Allocation figures for a node.
type Stats struct {
	Node            int
	MemPages        int
	MemLongestChain int
	CfgPages        int
	CfgLongestChain int
}

// Create node with empty stores.
func New(number int) *Node {
	return &Node{
		Number: number,
		Mem:    memory.New(number),
		Cfg:    cfgspace.New(number),
	}
}

// Return allocation figures.
func (n *Node) Stats() Stats {
	return Stats{
		Node:            n.Number,
		MemPages:        n.Mem.Pages(),
		MemLongestChain: n.Mem.LongestChain(),
		CfgPages:        n.Cfg.Pages(),
		CfgLongestChain: n.Cfg.LongestChain(),
	}
}

// Set of nodes in a simulation run.
type Model struct {
	nodes []*Node // Created on first use.
}

// Create a model able to hold count nodes.
func NewModel(count int) (*Model, error) {
	if count < 1 || count > MaxNodes {
		return nil, fmt.Errorf("node count %d must be 1 to %d: %w", count, MaxNodes, ErrInvalidNode)
	}
	return &Model{nodes: make([]*Node, count)}, nil
}

// Number of nodes model can hold.
func (m *Model) Count() int {
	return len(m.nodes)
}

// Change number of nodes, nodes beyond new count are discarded.
func (m *Model) SetCount(count int) error {
	if count < 1 || count > MaxNodes {
		return fmt.Errorf("node count %d must be 1 to %d: %w", count, MaxNodes, ErrInvalidNode)
	}
	nodes := make([]*Node, count)
	copy(nodes, m.nodes)
	m.nodes = nodes
	return nil
}

// Call fn for each node that has been created.
func (m *Model) Walk(fn func(n *Node)) {
	for _, n := range m.nodes {
		if n != nil {
			fn(n)
		}
	}
}

// Return node, creating it if first use.
func (m *Model) Node(node uint32) (*Node, error) {
	if node >= uint32(len(m.nodes)) {
		return nil, fmt.Errorf("node %d, model has %d: %w", node, len(m.nodes), ErrInvalidNode)
	}
	n := m.nodes[node]
	if n == nil {
		n = New(int(node))
		m.nodes[node] = n
	}
	return n, nil
}

// Return node, any error is fatal.
func (m *Model) mustNode(node uint32) *Node {
	n, err := m.Node(node)
	if err != nil {
		panic(err)
	}
	return n
}

// Reset the memory of a node, creating the node if needed.
func (m *Model) InitialiseMem(node uint32) {
	m.mustNode(node).Mem.Initialise()
	slog.Info("Initialised memory", "node", node)
}

// Write a block of 16 bit units under first and last byte enables.
func (m *Model) WriteRamByteBlock(addr uint64, data []uint16, fbe, lbe, length int, node uint32) {
	m.mustNode(node).Mem.WriteByteBlock(addr, data, fbe, lbe, length)
}

// Read a block of 16 bit units.
func (m *Model) ReadRamByteBlock(addr uint64, data []uint16, length int, node uint32) memory.Status {
	n, err := m.Node(node)
	if err != nil {
		slog.Error("block read rejected", "error", err)
		return memory.BadStatus
	}
	return n.Mem.ReadByteBlock(addr, data, length)
}

func (m *Model) WriteRamByte(addr uint64, data uint8, node uint32) {
	m.mustNode(node).Mem.PutByte(addr, data)
}

func (m *Model) WriteRamHWord(addr uint64, data uint16, e memory.Endian, node uint32) {
	m.mustNode(node).Mem.PutHalf(addr, data, e)
}

func (m *Model) WriteRamWord(addr uint64, data uint32, e memory.Endian, node uint32) {
	m.mustNode(node).Mem.PutWord(addr, data, e)
}

func (m *Model) WriteRamDWord(addr uint64, data uint64, e memory.Endian, node uint32) {
	m.mustNode(node).Mem.PutDouble(addr, data, e)
}

func (m *Model) ReadRamByte(addr uint64, node uint32) uint8 {
	return m.mustNode(node).Mem.GetByte(addr)
}

func (m *Model) ReadRamHWord(addr uint64, e memory.Endian, node uint32) uint16 {
	return m.mustNode(node).Mem.GetHalf(addr, e)
}

func (m *Model) ReadRamWord(addr uint64, e memory.Endian, node uint32) uint32 {
	return m.mustNode(node).Mem.GetWord(addr, e)
}

func (m *Model) ReadRamDWord(addr uint64, e memory.Endian, node uint32) uint64 {
	return m.mustNode(node).Mem.GetDouble(addr, e)
}

// Write configuration register, ignoring its mask.
func (m *Model) WriteConfigSpace(addr, data uint32, node uint32) {
	m.mustNode(node).Cfg.Write(addr, data)
}

// Read configuration register.
func (m *Model) ReadConfigSpace(addr uint32, node uint32) uint32 {
	return m.mustNode(node).Cfg.Read(addr)
}

// Write configuration register, only writable bits change.
func (m *Model) WriteConfigSpaceMask(addr, data uint32, node uint32) {
	m.mustNode(node).Cfg.WriteMasked(addr, data)
}

// Read writable bits of configuration register.
func (m *Model) ReadConfigSpaceMask(addr uint32, node uint32) uint32 {
	return m.mustNode(node).Cfg.ReadMasked(addr)
}

// Set write mask of configuration register.
func (m *Model) SetConfigSpaceMask(addr, mask uint32, node uint32) {
	m.mustNode(node).Cfg.SetMask(addr, mask)
}

// Return write mask of configuration register.
func (m *Model) GetConfigSpaceMask(addr uint32, node uint32) uint32 {
	return m.mustNode(node).Cfg.Mask(addr)
}

func (m *Model) WriteConfigSpaceBuf(addr uint32, data []uint16, fbe, lbe, length int, useMask bool, node uint32) {
	m.mustNode(node).Cfg.WriteBuf(addr, data, fbe, lbe, length, useMask)
}

func (m *Model) WriteConfigSpaceMaskBuf(addr uint32, data []uint16, fbe, lbe, length int, node uint32) {
	m.mustNode(node).Cfg.WriteMaskBuf(addr, data, fbe, lbe, length)
}

func (m *Model) ReadConfigSpaceBuf(addr uint32, data []uint16, length int, node uint32) {
	m.mustNode(node).Cfg.ReadBuf(addr, data, length)
}

func (m *Model) ReadConfigSpaceMaskBuf(addr uint32, data []uint16, length int, node uint32) {
	m.mustNode(node).Cfg.ReadMaskBuf(addr, data, length)
}

// Read registers, if check is set compare with expected values in data.
func (m *Model) ReadConfigSpaceBufChk(addr uint32, data []uint16, length int, check bool, node uint32) bool {
	return m.mustNode(node).Cfg.ReadBufChk(addr, data, length, check)
}

// Read writable bits, if check is set compare writable bits with data.
func (m *Model) ReadConfigSpaceMaskBufChk(addr uint32, data []uint16, length int, check bool, node uint32) bool {
	return m.mustNode(node).Cfg.ReadMaskBufChk(addr, data, length, check)
}
