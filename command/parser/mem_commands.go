/*
 * PCIeVC - Console memory and configuration commands.
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rcornwell/pcievc/emu/memory"
	"github.com/rcornwell/pcievc/util/hex"
)

// Largest number of units one command will display.
const maxUnits = 4096

type memoryOpts struct {
	wordSize int           // Size of unit in bytes.
	endian   memory.Endian // Byte order of units.
}

// Get width and byte order options.
func (line *cmdLine) parseMemoryOptions() (memoryOpts, error) {
	options := memoryOpts{endian: memory.LittleEndian}
	flags, err := line.getFlags("bhwdB")
	if err != nil {
		return options, err
	}
	for _, flag := range flags {
		size := 0
		switch flag {
		case 'b': // Bytes.
			size = 1
		case 'h': // Half words.
			size = 2
		case 'w': // Words, default.
			size = 4
		case 'd': // Double words.
			size = 8
		case 'B':
			options.endian = memory.BigEndian
			continue
		}
		if options.wordSize != 0 {
			return options, errors.New("wordsize already defined")
		}
		options.wordSize = size
	}
	if options.wordSize == 0 {
		options.wordSize = 4
	}
	return options, nil
}

func (c *Console) readUnit(addr uint64, options memoryOpts, node uint32) uint64 {
	switch options.wordSize {
	case 1:
		return uint64(c.model.ReadRamByte(addr, node))
	case 2:
		return uint64(c.model.ReadRamHWord(addr, options.endian, node))
	case 4:
		return uint64(c.model.ReadRamWord(addr, options.endian, node))
	}
	return c.model.ReadRamDWord(addr, options.endian, node)
}

func (c *Console) writeUnit(addr uint64, value uint64, options memoryOpts, node uint32) {
	switch options.wordSize {
	case 1:
		c.model.WriteRamByte(addr, uint8(value), node)
	case 2:
		c.model.WriteRamHWord(addr, uint16(value), options.endian, node)
	case 4:
		c.model.WriteRamWord(addr, uint32(value), options.endian, node)
	default:
		c.model.WriteRamDWord(addr, value, options.endian, node)
	}
}

// Display memory of a node.
func examine(line *cmdLine, c *Console) (bool, error) {
	slog.Debug("Command Examine")
	options, err := line.parseMemoryOptions()
	if err != nil {
		return false, err
	}
	n, err := line.getNode(c)
	if err != nil {
		return false, err
	}
	start, end, err := line.getRange(64)
	if err != nil {
		return false, err
	}
	if err := line.noMore(); err != nil {
		return false, err
	}

	size := uint64(options.wordSize)
	count := (end-start)/size + 1
	if count > maxUnits {
		return false, fmt.Errorf("range too large, limit %d units", maxUnits)
	}
	number := uint32(n.Number)

	if size == 1 {
		data := make([]byte, count)
		for i := range data {
			data[i] = c.model.ReadRamByte(start+uint64(i), number)
		}
		fmt.Fprint(c.out, hex.Dump(start, data))
		return false, nil
	}

	perLine := 16 / size
	var str strings.Builder
	for i := uint64(0); i < count; i++ {
		addr := start + i*size
		if i%perLine == 0 {
			if i != 0 {
				str.WriteByte('\n')
			}
			hex.FormatAddr(&str, addr)
			str.WriteByte(':')
		}
		str.WriteByte(' ')
		value := c.readUnit(addr, options, number)
		switch size {
		case 2:
			hex.Format(&str, uint16(value))
		case 4:
			hex.Format(&str, uint32(value))
		default:
			hex.Format(&str, value)
		}
	}
	str.WriteByte('\n')
	fmt.Fprint(c.out, str.String())
	return false, nil
}

// Store values into memory of a node.
func deposit(line *cmdLine, c *Console) (bool, error) {
	slog.Debug("Command Deposit")
	options, err := line.parseMemoryOptions()
	if err != nil {
		return false, err
	}
	n, err := line.getNode(c)
	if err != nil {
		return false, err
	}
	addr, err := line.getHex(64, "")
	if err != nil {
		return false, err
	}

	values, err := line.getValues(options.wordSize * 8)
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, errors.New("deposit requires a value")
	}
	for _, value := range values {
		c.writeUnit(addr, value, options, uint32(n.Number))
		addr += uint64(options.wordSize)
	}
	return false, nil
}

// Collect hex values separated by space or comma.
func (line *cmdLine) getValues(bits int) ([]uint64, error) {
	values := []uint64{}
	for !line.atEnd() {
		value, err := line.getHex(bits, ",")
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		line.skipSpace()
		if line.peek() == ',' {
			line.pos++
		}
	}
	return values, nil
}

// Display configuration registers with masks.
func readConfig(line *cmdLine, c *Console) (bool, error) {
	slog.Debug("Command Read")
	n, err := line.getNode(c)
	if err != nil {
		return false, err
	}
	start, end, err := line.getRange(32)
	if err != nil {
		return false, err
	}
	if err := line.noMore(); err != nil {
		return false, err
	}
	start &^= 3
	if (end-start)/4 >= maxUnits {
		return false, fmt.Errorf("range too large, limit %d registers", maxUnits)
	}

	var str strings.Builder
	number := uint32(n.Number)
	for addr := start; addr <= end; addr += 4 {
		hex.Format(&str, uint32(addr))
		str.WriteString(": ")
		hex.Format(&str, c.model.ReadConfigSpace(uint32(addr), number))
		str.WriteString(" mask ")
		hex.Format(&str, c.model.GetConfigSpaceMask(uint32(addr), number))
		str.WriteByte('\n')
	}
	fmt.Fprint(c.out, str.String())
	return false, nil
}

// Get node, register address and one value.
func (line *cmdLine) getRegister(c *Console) (uint32, uint32, uint32, error) {
	n, err := line.getNode(c)
	if err != nil {
		return 0, 0, 0, err
	}
	addr, err := line.getHex(32, "")
	if err != nil {
		return 0, 0, 0, err
	}
	value, err := line.getHex(32, "")
	if err != nil {
		return 0, 0, 0, err
	}
	if err := line.noMore(); err != nil {
		return 0, 0, 0, err
	}
	return uint32(n.Number), uint32(addr), uint32(value), nil
}

// Write configuration register, through mask unless -r.
func writeConfig(line *cmdLine, c *Console) (bool, error) {
	slog.Debug("Command Write")
	flags, err := line.getFlags("r")
	if err != nil {
		return false, err
	}
	number, addr, value, err := line.getRegister(c)
	if err != nil {
		return false, err
	}
	if flags != "" {
		c.model.WriteConfigSpace(addr, value, number)
	} else {
		c.model.WriteConfigSpaceMask(addr, value, number)
	}
	return false, nil
}

// Set write mask of configuration register.
func setMask(line *cmdLine, c *Console) (bool, error) {
	slog.Debug("Command Mask")
	number, addr, mask, err := line.getRegister(c)
	if err != nil {
		return false, err
	}
	c.model.SetConfigSpaceMask(addr, mask, number)
	return false, nil
}

// Compare configuration registers against expected values.
func check(line *cmdLine, c *Console) (bool, error) {
	slog.Debug("Command Check")
	flags, err := line.getFlags("m")
	if err != nil {
		return false, err
	}
	n, err := line.getNode(c)
	if err != nil {
		return false, err
	}
	addr, err := line.getHex(32, "")
	if err != nil {
		return false, err
	}
	values, err := line.getValues(32)
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, errors.New("check requires a value")
	}

	// Registers go out as 16 bit units, low half first.
	data := make([]uint16, 2*len(values))
	for i, value := range values {
		data[2*i] = uint16(value)
		data[2*i+1] = uint16(value >> 16)
	}

	number := uint32(n.Number)
	var ok bool
	if flags != "" {
		ok = c.model.ReadConfigSpaceMaskBufChk(uint32(addr), data, len(data), true, number)
	} else {
		ok = c.model.ReadConfigSpaceBufChk(uint32(addr), data, len(data), true, number)
	}

	var str strings.Builder
	for i := range values {
		hex.Format(&str, uint32(addr)+uint32(i)*4)
		str.WriteString(": ")
		hex.Format(&str, uint32(data[2*i+1])<<16|uint32(data[2*i]))
		str.WriteByte('\n')
	}
	fmt.Fprint(c.out, str.String())
	if !ok {
		return false, errors.New("check failed")
	}
	return false, nil
}
