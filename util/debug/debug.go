/*
 * PCIeVC - Log debug data to a file
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

package debug

import (
	"fmt"
	"io"
	"os"
	"strconv"

	config "github.com/rcornwell/pcievc/config/configparser"
)

var logFile io.Writer

// Generic debug message.
func Debugf(module string, mask int, level int, format string, a ...interface{}) {
	if logFile != nil && (mask&level) != 0 {
		fmt.Fprintf(logFile, module+": "+format+"\n", a...)
	}
}

// Node store debug message.
func DebugNodef(module string, node int, mask int, level int, format string, a ...interface{}) {
	if logFile != nil && (mask&level) != 0 {
		n := strconv.FormatInt(int64(node), 10)
		fmt.Fprintf(logFile, "Node "+n+" "+module+": "+format+"\n", a...)
	}
}

// Send debug output somewhere other than a file, nil turns it off.
func SetOutput(w io.Writer) {
	logFile = w
}

// register debug file on initialize.
func init() {
	config.RegisterFile("DEBUGFILE", create)
}

// Create the debug file.
func create(_ int, fileName string, _ []config.Option) error {
	if f, ok := logFile.(*os.File); ok && f != nil {
		return fmt.Errorf("can't have more then one debug file, previous: %s", f.Name())
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create debug file: %s: %w", fileName, err)
	}

	logFile = file
	return nil
}
