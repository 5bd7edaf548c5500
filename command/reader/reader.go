/*
 * PCIeVC - Console reader.
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

package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterh/liner"
	"github.com/rcornwell/pcievc/command/parser"
	"golang.org/x/term"
)

const prompt = "pcievc> "

// Run console on standard input, with line editing when it is a terminal.
func ConsoleReader(console *parser.Console) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		ScriptReader(console, os.Stdin, os.Stdout)
		return
	}

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(console.CompleteCmd)

	for {
		command, err := line.Prompt(prompt)
		if err == nil {
			line.AppendHistory(command)
			if run(console, command, os.Stdout) {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return
		}
		slog.Error("error reading line: " + err.Error())
		return
	}
}

// Run commands from in until end of input or quit. Errors are reported
// to out and do not stop the script.
func ScriptReader(console *parser.Console, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if run(console, scanner.Text(), out) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("error reading line: " + err.Error())
	}
}

func run(console *parser.Console, command string, out io.Writer) bool {
	quit, err := console.ProcessCommand(command)
	if err != nil {
		fmt.Fprintln(out, "Error: "+err.Error())
	}
	return quit
}
