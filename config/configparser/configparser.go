/*
 * PCIeVC - Configuration file parser.
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

package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Value passed when statement has no node number.
const NoNode = -1

// List of options to pass to create routine.
type Option struct {
	Name     string    // Name of option.
	EqualOpt string    // Value of string after =.
	Value    []*string // Values following a comma.
}

// Value following statement name.
type FirstOption struct {
	node   int    // Node number if numeric.
	isNode bool   // Valid number in node.
	value  string // String value of option.
}

// Current line being parsed.
type optionLine struct {
	line   string // Current option line.
	pos    int    // Current position in line.
	number int    // Line number in file.
}

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> := <name> <whitespace> <node> <whitespace> <options> |
 *           <name> <whitespace> <value> |
 *           <name> <whitespace> <first> <whitespace> <options> |
 *           <name> <whitespace> <quoteopt>
 * <node> ::= <number>
 * <options> ::= *(<option> *(<whitespace>))
 * <option> ::= <string> ['=' <quoteopt>] *(',' *(<whitespace>) <string>)
 * <quoteopt> ::= <string> | '"' *(<letter> | <whitespace>) '"'
 * <string> ::= *(<letter> | <number>)
 */

const (
	TypeModel   = 1 + iota // Statement applies to a node.
	TypeOption             // Accepts a single value.
	TypeOptions            // Accepts a value and list of options.
	TypeFile               // Accepts a file name.
)

// Statement creation list.
type modelDef struct {
	create func(int, string, []Option) error
	ty     int
}

var models = map[string]modelDef{}

// Return type of statement or 0 if not registered.
func getModel(mod string) int {
	model, ok := models[mod]
	if !ok {
		return 0
	}
	return model.ty
}

func register(mod string, ty int, fn func(int, string, []Option) error) {
	models[strings.ToUpper(mod)] = modelDef{create: fn, ty: ty}
}

// Register a statement that names a node.
func RegisterModel(mod string, fn func(int, string, []Option) error) {
	register(mod, TypeModel, fn)
}

// Register a statement with one value.
func RegisterOption(mod string, fn func(int, string, []Option) error) {
	register(mod, TypeOption, fn)
}

// Register a statement with a value and options.
func RegisterOptions(mod string, fn func(int, string, []Option) error) {
	register(mod, TypeOptions, fn)
}

// Register a statement naming a file.
func RegisterFile(mod string, fn func(int, string, []Option) error) {
	register(mod, TypeFile, fn)
}

// Call create function of statement.
func create(mod string, ty int, first *FirstOption, options []Option) error {
	model, ok := models[strings.ToUpper(mod)]
	if !ok {
		return errors.New("unknown statement: " + mod)
	}
	if model.ty != ty {
		return errors.New("statement used with wrong arguments: " + mod)
	}
	node := NoNode
	if first.isNode {
		node = first.node
	}
	return model.create(node, first.value, options)
}

// Load in a configuration file.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return LoadConfig(file)
}

// Load configuration from a reader.
func LoadConfig(in io.Reader) error {
	reader := bufio.NewReader(in)
	number := 0
	for {
		text, err := reader.ReadString('\n')
		number++
		if text == "" && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		line := optionLine{line: strings.TrimRight(text, "\r\n"), number: number}
		if perr := line.parseLine(); perr != nil {
			return perr
		}
		if err != nil {
			break
		}
	}
	return nil
}

// Parse one line from file.
func (line *optionLine) parseLine() error {
	name := line.parseName()
	if name == "" {
		if !line.isEOL() {
			return fmt.Errorf("invalid statement, line: %d", line.number)
		}
		return nil
	}
	ty := getModel(name)
	switch ty {
	case TypeModel:
		first := line.parseFirst()
		if first == nil || !first.isNode {
			return fmt.Errorf("%s requires node number, line: %d", name, line.number)
		}
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		return create(name, ty, first, options)

	case TypeOption, TypeFile:
		first := line.parseFirst()
		line.skipSpace()
		if first == nil || !line.isEOL() {
			return fmt.Errorf("%s requires a single value, line: %d", name, line.number)
		}
		return create(name, ty, first, nil)

	case TypeOptions:
		first := line.parseFirst()
		if first == nil {
			return fmt.Errorf("%s not followed by value, line: %d", name, line.number)
		}
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		return create(name, ty, first, options)
	}
	return fmt.Errorf("no statement %s registered, line: %d", name, line.number)
}

// Skip forward over line until none whitespace character found.
func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line.
func (line *optionLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

func isNameChar(by byte) bool {
	return unicode.IsLetter(rune(by)) || unicode.IsDigit(rune(by)) || by == '_'
}

// Collect letters and digits.
func (line *optionLine) getName() string {
	start := line.pos
	for !line.isEOL() && isNameChar(line.line[line.pos]) {
		line.pos++
	}
	return line.line[start:line.pos]
}

// Parse statement name.
func (line *optionLine) parseName() string {
	line.skipSpace()
	if line.isEOL() || !unicode.IsLetter(rune(line.line[line.pos])) {
		return ""
	}
	return strings.ToUpper(line.getName())
}

// Parse string that is "string" or just string. Bare strings end at
// space or comma. Inside quotes "" is a single quote.
func (line *optionLine) parseQuoteString() (string, bool) {
	var value strings.Builder

	if line.pos >= len(line.line) || line.line[line.pos] != '"' {
		for line.pos < len(line.line) {
			by := line.line[line.pos]
			if unicode.IsSpace(rune(by)) || by == ',' || by == '#' {
				break
			}
			value.WriteByte(by)
			line.pos++
		}
		return value.String(), true
	}

	line.pos++
	for line.pos < len(line.line) {
		by := line.line[line.pos]
		line.pos++
		if by == '"' {
			if line.pos < len(line.line) && line.line[line.pos] == '"' {
				value.WriteByte('"')
				line.pos++
				continue
			}
			return value.String(), true
		}
		value.WriteByte(by)
	}
	return value.String(), false
}

// Parse value following statement name.
func (line *optionLine) parseFirst() *FirstOption {
	line.skipSpace()
	if line.isEOL() {
		return nil
	}

	value, ok := line.parseQuoteString()
	if !ok || value == "" {
		return nil
	}

	option := FirstOption{node: NoNode, value: value}
	node, err := strconv.ParseUint(value, 10, 16)
	if err == nil {
		option.node = int(node)
		option.isNode = true
	}
	return &option
}

// Parse one option.
func (line *optionLine) parseOption() (*Option, error) {
	line.skipSpace()
	if line.isEOL() {
		return nil, nil
	}

	if !isNameChar(line.line[line.pos]) {
		return nil, fmt.Errorf("invalid option encountered line: %d [%d]", line.number, line.pos)
	}
	option := Option{Name: strings.ToUpper(line.getName())}

	// Check if equals option.
	if !line.isEOL() && line.line[line.pos] == '=' {
		line.pos++
		v, ok := line.parseQuoteString()
		if !ok {
			return nil, fmt.Errorf("invalid quoted string line: %d [%d]", line.number, line.pos)
		}
		option.EqualOpt = v
	}

	line.skipSpace()

	// Grab all , options
	for !line.isEOL() && line.line[line.pos] == ',' {
		line.pos++
		line.skipSpace()
		v := line.getName()
		if v == "" {
			return nil, fmt.Errorf("missing value after comma line: %d [%d]", line.number, line.pos)
		}
		v = strings.ToUpper(v)
		option.Value = append(option.Value, &v)
		line.skipSpace()
	}

	return &option, nil
}

// Collect all options for line.
func (line *optionLine) parseOptions() ([]Option, error) {
	options := []Option{}
	for {
		option, err := line.parseOption()
		if err != nil {
			return nil, err
		}
		if option == nil {
			break
		}
		options = append(options, *option)
	}
	return options, nil
}

// Return option by name.
func FindOption(options []Option, name string) (Option, bool) {
	for _, opt := range options {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}
