/*
 * PCIeVC - Console command parser.
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
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/rcornwell/pcievc/emu/node"
)

type cmd struct {
	Name     string // Command name.
	Min      int    // Minimum match size.
	Help     string // One line description.
	Process  func(*cmdLine, *Console) (bool, error)
	Complete func(*cmdLine, *Console) []string
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

// State shared by console commands. Consoles made by WithOutput
// share the model and take turns running commands.
type Console struct {
	model *node.Model
	out   io.Writer
	mu    *sync.Mutex
}

// Create console driving model, output goes to out.
func NewConsole(model *node.Model, out io.Writer) *Console {
	return &Console{model: model, out: out, mu: &sync.Mutex{}}
}

// Return console on same model writing to out.
func (c *Console) WithOutput(out io.Writer) *Console {
	return &Console{model: c.model, out: out, mu: c.mu}
}

// Execute the command line given. Returns true if console should exit.
func (c *Console) ProcessCommand(commandLine string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := cmdLine{line: commandLine}
	command := line.getWord()
	if command == "" {
		if !line.isEOL() {
			return false, errors.New("command must start with a letter")
		}
		return false, nil
	}

	match := matchList(command)
	if len(match) == 0 {
		return false, errors.New("command not found: " + command)
	}

	if len(match) > 1 {
		return false, errors.New("unique command not found: " + command)
	}

	return match[0].Process(&line, c)
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	if len(command) > len(match.Name) {
		return false
	}
	return strings.HasPrefix(match.Name, command) && len(command) >= match.Min
}

// Check if command matches one of the commands.
func matchList(command string) []cmd {
	// If command empty just return.
	if command == "" {
		return []cmd{}
	}

	// Try and match one command.
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, command) {
			match = append(match, m)
		}
	}
	return match
}

// Skip forward over line until none whitespace character found.
func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line.
func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// Check if at end of line after skipping space.
func (line *cmdLine) atEnd() bool {
	line.skipSpace()
	return line.isEOL()
}

// Return current character and advance to next.
func (line *cmdLine) getCurrent() byte {
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	line.pos++
	return by
}

// Peek at current character.
func (line *cmdLine) peek() byte {
	if line.isEOL() {
		return 0
	}
	return line.line[line.pos]
}

// Collect characters up to space or one of stop.
func (line *cmdLine) getToken(stop string) string {
	line.skipSpace()
	start := line.pos
	for !line.isEOL() {
		by := line.line[line.pos]
		if unicode.IsSpace(rune(by)) || strings.IndexByte(stop, by) >= 0 {
			break
		}
		line.pos++
	}
	return line.line[start:line.pos]
}

// Parse a word of letters.
func (line *cmdLine) getWord() string {
	line.skipSpace()
	start := line.pos
	for !line.isEOL() && unicode.IsLetter(rune(line.line[line.pos])) {
		line.pos++
	}
	if line.pos < len(line.line) && !unicode.IsSpace(rune(line.line[line.pos])) && line.line[line.pos] != '#' {
		line.pos = start
		return ""
	}
	return strings.ToLower(line.line[start:line.pos])
}

// Parse decimal number.
func (line *cmdLine) getNumber() (uint32, error) {
	pos := line.pos
	text := line.getToken("")
	value, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		line.pos = pos
		return 0, errors.New("not a number: " + text)
	}
	return uint32(value), nil
}

// Parse hex number ending at space or any of stop, 0x prefix optional.
func (line *cmdLine) getHex(bits int, stop string) (uint64, error) {
	pos := line.pos
	text := line.getToken(stop)
	digits := strings.TrimPrefix(strings.ToLower(text), "0x")
	value, err := strconv.ParseUint(digits, 16, bits)
	if err != nil || digits == "" {
		line.pos = pos
		return 0, errors.New("not a hex number: " + text)
	}
	return value, nil
}

// Parse string that is "string" or just string.
func (line *cmdLine) parseQuoteString() (string, bool) {
	line.skipSpace()
	if line.peek() != '"' {
		text := line.getToken("")
		return text, text != ""
	}

	var value strings.Builder
	line.pos++
	for line.pos < len(line.line) {
		by := line.line[line.pos]
		line.pos++
		if by == '"' {
			// "" is a single quote.
			if line.pos < len(line.line) && line.line[line.pos] == '"' {
				value.WriteByte('"')
				line.pos++
				continue
			}
			return value.String(), true
		}
		value.WriteByte(by)
	}
	return "", false
}

// Collect - flags, each flag must be in valid.
func (line *cmdLine) getFlags(valid string) (string, error) {
	flags := ""
	for {
		line.skipSpace()
		if line.peek() != '-' {
			return flags, nil
		}
		line.pos++
		for !line.isEOL() && !unicode.IsSpace(rune(line.line[line.pos])) {
			by := line.line[line.pos]
			if strings.IndexByte(valid, by) < 0 {
				return "", errors.New("option invalid: -" + string(by))
			}
			flags += string(by)
			line.pos++
		}
	}
}

// Get node number and make sure it is in model.
func (line *cmdLine) getNode(c *Console) (*node.Node, error) {
	number, err := line.getNumber()
	if err != nil {
		return nil, errors.New("node must be a number")
	}
	return c.model.Node(number)
}

// Get addr or addr-addr, returns start and end inclusive.
func (line *cmdLine) getRange(bits int) (uint64, uint64, error) {
	start, err := line.getHex(bits, "-")
	if err != nil {
		return 0, 0, err
	}
	if line.peek() != '-' {
		return start, start, nil
	}
	line.pos++
	end, err := line.getHex(bits, "")
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, errors.New("end of range before start")
	}
	return start, end, nil
}
