/*
 * PCIeVC - Console commands.
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

	"github.com/davecgh/go-spew/spew"
	"github.com/rcornwell/pcievc/emu/node"
	"github.com/rcornwell/pcievc/emu/regmap"
)

var cmdList []cmd

func init() {
	cmdList = []cmd{
		{Name: "examine", Min: 1, Help: "examine [-b|-h|-w|-d] [-B] <node> <addr>[-<addr>]", Process: examine},
		{Name: "deposit", Min: 1, Help: "deposit [-b|-h|-w|-d] [-B] <node> <addr> <value>...", Process: deposit},
		{Name: "read", Min: 1, Help: "read <node> <addr>[-<addr>]", Process: readConfig},
		{Name: "write", Min: 1, Help: "write [-r] <node> <addr> <value>", Process: writeConfig},
		{Name: "mask", Min: 1, Help: "mask <node> <addr> <mask>", Process: setMask},
		{Name: "check", Min: 1, Help: "check [-m] <node> <addr> <value>...", Process: check},
		{Name: "init", Min: 1, Help: "init <node>", Process: initMem, Complete: nodeComplete},
		{Name: "load", Min: 1, Help: "load <node> <file>", Process: load},
		{Name: "endpoint", Min: 2, Help: "endpoint <node>", Process: endpoint, Complete: nodeComplete},
		{Name: "show", Min: 2, Help: "show [<node>]", Process: show, Complete: nodeComplete},
		{Name: "help", Min: 1, Help: "help", Process: help},
		{Name: "quit", Min: 4, Help: "quit", Process: quit},
	}
}

func (line *cmdLine) noMore() error {
	if !line.atEnd() {
		return errors.New("unexpected text: " + line.line[line.pos:])
	}
	return nil
}

// Handle commands that quit simulation.
func quit(_ *cmdLine, _ *Console) (bool, error) {
	slog.Debug("Command Quit")
	return true, nil
}

// List commands.
func help(_ *cmdLine, c *Console) (bool, error) {
	for _, m := range cmdList {
		fmt.Fprintln(c.out, m.Help)
	}
	return false, nil
}

// Clear memory of a node.
func initMem(line *cmdLine, c *Console) (bool, error) {
	slog.Debug("Command Init")
	n, err := line.getNode(c)
	if err != nil {
		return false, err
	}
	if err := line.noMore(); err != nil {
		return false, err
	}
	c.model.InitialiseMem(uint32(n.Number))
	return false, nil
}

// Apply register map file to node.
func load(line *cmdLine, c *Console) (bool, error) {
	slog.Debug("Command Load")
	n, err := line.getNode(c)
	if err != nil {
		return false, err
	}
	name, ok := line.parseQuoteString()
	if !ok {
		return false, errors.New("load requires a file name")
	}
	if err := line.noMore(); err != nil {
		return false, err
	}
	regs, err := regmap.Load(name)
	if err != nil {
		return false, err
	}
	regs.Apply(n.Cfg)
	fmt.Fprintf(c.out, "Loaded %d registers from %s\n", len(regs.Registers), regs.Name)
	return false, nil
}

// Apply built in endpoint map to node.
func endpoint(line *cmdLine, c *Console) (bool, error) {
	slog.Debug("Command Endpoint")
	n, err := line.getNode(c)
	if err != nil {
		return false, err
	}
	if err := line.noMore(); err != nil {
		return false, err
	}
	regmap.Endpoint().Apply(n.Cfg)
	return false, nil
}

// Dump node statistics.
func show(line *cmdLine, c *Console) (bool, error) {
	slog.Debug("Command Show")
	if line.atEnd() {
		c.model.Walk(func(n *node.Node) {
			spew.Fdump(c.out, n.Stats())
		})
		return false, nil
	}
	n, err := line.getNode(c)
	if err != nil {
		return false, err
	}
	if err := line.noMore(); err != nil {
		return false, err
	}
	spew.Fdump(c.out, n.Stats())
	return false, nil
}
