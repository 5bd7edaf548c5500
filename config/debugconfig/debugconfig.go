/*
 * PCIeVC - Debug configuration statement.
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

package debugconfig

import (
	"errors"
	"strconv"
	"strings"

	config "github.com/rcornwell/pcievc/config/configparser"
	"github.com/rcornwell/pcievc/emu/node"
)

// Register DEBUG statement against model.
func Register(m *node.Model) {
	config.RegisterOptions("DEBUG", func(_ int, store string, options []config.Option) error {
		return setDebug(m, store, options)
	})
}

// DEBUG RAM|CFG <node>|ALL <option>[,<option>...]
func setDebug(m *node.Model, store string, options []config.Option) error {
	var debug func(n *node.Node, opt string) error

	switch strings.ToUpper(store) {
	case "RAM":
		debug = func(n *node.Node, opt string) error { return n.Mem.Debug(opt) }
	case "CFG":
		debug = func(n *node.Node, opt string) error { return n.Cfg.Debug(opt) }
	default:
		return errors.New("debug option invalid: " + store)
	}

	if len(options) < 1 {
		return errors.New("debug " + store + " requires a node number first")
	}
	if options[0].EqualOpt != "" || len(options[0].Value) != 0 {
		return errors.New("debug node number can't have equals or values")
	}

	nodes := []*node.Node{}
	if options[0].Name == "ALL" {
		for i := range m.Count() {
			n, err := m.Node(uint32(i))
			if err != nil {
				return err
			}
			nodes = append(nodes, n)
		}
	} else {
		number, err := strconv.ParseUint(options[0].Name, 10, 8)
		if err != nil {
			return errors.New("node number must be a number: " + options[0].Name)
		}
		n, err := m.Node(uint32(number))
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
	}

	for _, n := range nodes {
		for _, opt := range options[1:] {
			err := debug(n, opt.Name)
			if err != nil {
				return err
			}
			for _, value := range opt.Value {
				err = debug(n, *value)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}
