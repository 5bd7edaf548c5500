/*
 * PCIeVC - Node configuration statements.
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

package nodeconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	config "github.com/rcornwell/pcievc/config/configparser"
	"github.com/rcornwell/pcievc/emu/memory"
	"github.com/rcornwell/pcievc/emu/node"
	"github.com/rcornwell/pcievc/emu/regmap"
)

// Register node statements against model.
func Register(m *node.Model) {
	config.RegisterOption("NODES", func(_ int, value string, _ []config.Option) error {
		count, err := strconv.Atoi(value)
		if err != nil {
			return errors.New("nodes requires a number: " + value)
		}
		return m.SetCount(count)
	})

	config.RegisterOption("ENDPOINT", func(number int, value string, _ []config.Option) error {
		n, err := getNode(m, number, value)
		if err != nil {
			return err
		}
		regmap.Endpoint().Apply(n.Cfg)
		slog.Debug("Loaded endpoint registers", "node", n.Number)
		return nil
	})

	config.RegisterModel("REGMAP", func(number int, _ string, options []config.Option) error {
		return loadMap(m, number, options)
	})

	config.RegisterModel("FILL", func(number int, _ string, options []config.Option) error {
		return fill(m, number, options)
	})

	config.RegisterModel("CONFIG", func(number int, _ string, options []config.Option) error {
		return setRegister(m, number, options)
	})
}

func getNode(m *node.Model, number int, value string) (*node.Node, error) {
	if number == config.NoNode {
		return nil, errors.New("node number required: " + value)
	}
	return m.Node(uint32(number))
}

// Parse hex number, 0x prefix optional.
func parseHex(value string, bits int) (uint64, error) {
	value = strings.TrimPrefix(strings.ToLower(value), "0x")
	if value == "" {
		return 0, errors.New("missing hex value")
	}
	v, err := strconv.ParseUint(value, 16, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid hex value %s: %w", value, err)
	}
	return v, nil
}

// Return hex option value, or def if option not given.
func hexOption(options []config.Option, name string, bits int, def uint64, required bool) (uint64, error) {
	opt, ok := config.FindOption(options, name)
	if !ok {
		if required {
			return 0, errors.New("option required: " + name)
		}
		return def, nil
	}
	v, err := parseHex(opt.EqualOpt, bits)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func checkOptions(options []config.Option, valid ...string) error {
	for _, opt := range options {
		found := false
		for _, name := range valid {
			if opt.Name == name {
				found = true
				break
			}
		}
		if !found {
			return errors.New("unknown option: " + opt.Name)
		}
	}
	return nil
}

// REGMAP <node> FILE="<name>"
func loadMap(m *node.Model, number int, options []config.Option) error {
	if err := checkOptions(options, "FILE"); err != nil {
		return err
	}
	n, err := m.Node(uint32(number))
	if err != nil {
		return err
	}
	opt, ok := config.FindOption(options, "FILE")
	if !ok || opt.EqualOpt == "" {
		return errors.New("regmap requires FILE option")
	}
	regs, err := regmap.Load(opt.EqualOpt)
	if err != nil {
		return err
	}
	regs.Apply(n.Cfg)
	slog.Debug("Loaded register map", "node", n.Number, "file", opt.EqualOpt, "registers", len(regs.Registers))
	return nil
}

// FILL <node> ADDR=<hex> WORDS=<n> VALUE=<hex> [STEP=<hex>] [ENDIAN=BIG|LITTLE]
func fill(m *node.Model, number int, options []config.Option) error {
	if err := checkOptions(options, "ADDR", "WORDS", "VALUE", "STEP", "ENDIAN"); err != nil {
		return err
	}
	n, err := m.Node(uint32(number))
	if err != nil {
		return err
	}
	addr, err := hexOption(options, "ADDR", 64, 0, true)
	if err != nil {
		return err
	}
	value, err := hexOption(options, "VALUE", 32, 0, false)
	if err != nil {
		return err
	}
	step, err := hexOption(options, "STEP", 32, 0, false)
	if err != nil {
		return err
	}

	words := 1
	if opt, ok := config.FindOption(options, "WORDS"); ok {
		words, err = strconv.Atoi(opt.EqualOpt)
		if err != nil || words < 1 {
			return errors.New("words must be a positive number: " + opt.EqualOpt)
		}
	}

	endian := memory.LittleEndian
	if opt, ok := config.FindOption(options, "ENDIAN"); ok {
		switch strings.ToUpper(opt.EqualOpt) {
		case "LITTLE":
		case "BIG":
			endian = memory.BigEndian
		default:
			return errors.New("endian must be BIG or LITTLE: " + opt.EqualOpt)
		}
	}

	data := uint32(value)
	for i := range words {
		n.Mem.PutWord(addr+uint64(i)*4, data, endian)
		data += uint32(step)
	}
	return nil
}

// CONFIG <node> ADDR=<hex> VALUE=<hex> [MASK=<hex>]
func setRegister(m *node.Model, number int, options []config.Option) error {
	if err := checkOptions(options, "ADDR", "VALUE", "MASK"); err != nil {
		return err
	}
	n, err := m.Node(uint32(number))
	if err != nil {
		return err
	}
	addr, err := hexOption(options, "ADDR", 32, 0, true)
	if err != nil {
		return err
	}
	value, err := hexOption(options, "VALUE", 32, 0, false)
	if err != nil {
		return err
	}
	mask, err := hexOption(options, "MASK", 32, uint64(n.Cfg.Mask(uint32(addr))), false)
	if err != nil {
		return err
	}
	n.Cfg.Write(uint32(addr), uint32(value))
	n.Cfg.SetMask(uint32(addr), uint32(mask))
	return nil
}
