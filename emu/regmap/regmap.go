/*
 * PCIeVC - Configuration register maps
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
   A register map describes the initial contents of a configuration
   space: for each 32 bit register its value and, optionally, which
   bits the bus may write. Maps are read from YAML or TOML files, a
   built in map describes a simple type 0 endpoint.

   Applying a map writes each value ignoring any mask, then sets the
   register mask. Registers without a mask stay fully writable.
*/

package regmap

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnaligned = errors.New("register offset not word aligned")
	ErrFormat    = errors.New("unknown register map format")
)

// Register map file formats.
type Format int

const (
	FormatYAML Format = 1 + iota
	FormatTOML
)

//go:embed endpoint.yaml
var endpointMap []byte

// One configuration register.
type Register struct {
	Name   string  `yaml:"name" toml:"name"`     // Register name, informational.
	Offset uint32  `yaml:"offset" toml:"offset"` // Byte offset in configuration space.
	Value  uint32  `yaml:"value" toml:"value"`   // Initial value.
	Mask   *uint32 `yaml:"mask" toml:"mask"`     // Writable bits, nil to leave alone.
}

// Register map.
type Map struct {
	Name      string     `yaml:"name" toml:"name"`
	Registers []Register `yaml:"registers" toml:"registers"`
}

// Configuration space a map can be applied to.
type Target interface {
	Write(addr, data uint32)
	SetMask(addr, mask uint32)
}

// Select format from file name.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return 0, fmt.Errorf("%s: %w", name, ErrFormat)
}

// Decode and check a register map.
func Parse(data []byte, format Format) (*Map, error) {
	m := &Map{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, m)
	case FormatTOML:
		err = toml.Unmarshal(data, m)
	default:
		return nil, ErrFormat
	}
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Read register map from file.
func Load(name string) (*Map, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("register map %s: %w", name, err)
	}
	if m.Name == "" {
		m.Name = filepath.Base(name)
	}
	return m, nil
}

// Built in type 0 endpoint map.
func Endpoint() *Map {
	m, err := Parse(endpointMap, FormatYAML)
	if err != nil {
		panic("regmap: built in endpoint map: " + err.Error())
	}
	return m
}

// Check offsets are aligned and not repeated.
func (m *Map) Validate() error {
	seen := map[uint32]string{}
	for _, reg := range m.Registers {
		if reg.Offset&3 != 0 {
			return fmt.Errorf("%s offset %x: %w", reg.Name, reg.Offset, ErrUnaligned)
		}
		if prev, ok := seen[reg.Offset]; ok {
			return fmt.Errorf("register %s offset %x already defined by %s", reg.Name, reg.Offset, prev)
		}
		seen[reg.Offset] = reg.Name
	}
	return nil
}

// Load map into configuration space.
func (m *Map) Apply(cfg Target) {
	for _, reg := range m.Registers {
		cfg.Write(reg.Offset, reg.Value)
		if reg.Mask != nil {
			cfg.SetMask(reg.Offset, *reg.Mask)
		}
	}
}

// Find register by name.
func (m *Map) Lookup(name string) (Register, bool) {
	for _, reg := range m.Registers {
		if reg.Name == name {
			return reg, true
		}
	}
	return Register{}, false
}
