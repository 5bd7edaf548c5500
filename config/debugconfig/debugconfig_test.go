/*
 * PCIeVC - Debug configuration statement tests.
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
	"bytes"
	"strings"
	"testing"

	config "github.com/rcornwell/pcievc/config/configparser"
	"github.com/rcornwell/pcievc/emu/memory"
	"github.com/rcornwell/pcievc/emu/node"
	"github.com/rcornwell/pcievc/util/debug"
)

func setup(t *testing.T, text string) (*node.Model, *bytes.Buffer, error) {
	t.Helper()
	m, err := node.NewModel(2)
	if err != nil {
		t.Fatalf("Unable to create model: %v", err)
	}
	Register(m)
	out := &bytes.Buffer{}
	debug.SetOutput(out)
	t.Cleanup(func() { debug.SetOutput(nil) })
	return m, out, config.LoadConfig(strings.NewReader(text))
}

func TestDebugRAM(t *testing.T) {
	m, out, err := setup(t, "DEBUG RAM 1 WRITE,READ\n")
	if err != nil {
		t.Fatalf("DEBUG RAM failed: %v", err)
	}
	m.WriteRamWord(0x100, 0xdeadbeef, memory.LittleEndian, 1)
	m.WriteRamWord(0x100, 0xdeadbeef, memory.LittleEndian, 0)
	_ = m.ReadRamByte(0x100, 1)

	trace := out.String()
	if !strings.Contains(trace, "Node 1 RAM: write word 0000000000000100 deadbeef") {
		t.Errorf("DEBUG RAM write trace missing got: %q", trace)
	}
	if !strings.Contains(trace, "Node 1 RAM: read byte 0000000000000100 ef") {
		t.Errorf("DEBUG RAM read trace missing got: %q", trace)
	}
	if strings.Contains(trace, "Node 0") {
		t.Errorf("DEBUG RAM traced node 0 got: %q", trace)
	}
}

func TestDebugAll(t *testing.T) {
	m, out, err := setup(t, "DEBUG CFG ALL WRITE\n")
	if err != nil {
		t.Fatalf("DEBUG CFG failed: %v", err)
	}
	m.WriteConfigSpace(0x10, 1, 0)
	m.WriteConfigSpace(0x10, 1, 1)
	trace := out.String()
	if !strings.Contains(trace, "Node 0 CFG:") || !strings.Contains(trace, "Node 1 CFG:") {
		t.Errorf("DEBUG CFG ALL trace missing got: %q", trace)
	}
}

func TestDebugErrors(t *testing.T) {
	for _, bad := range []string{
		"DEBUG DISK 0 READ\n",
		"DEBUG RAM\n",
		"DEBUG RAM READ\n",
		"DEBUG RAM 0=1 READ\n",
		"DEBUG RAM 2 READ\n",
		"DEBUG RAM 0 BOGUS\n",
		"DEBUG CFG 0 READ,BOGUS\n",
	} {
		if _, _, err := setup(t, bad); err == nil {
			t.Errorf("DEBUG accepted: %q", bad)
		}
	}
}
