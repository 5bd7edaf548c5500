/*
 * PCIeVC - Hex formatting for console output.
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

package hex

import (
	"strings"
	"unsafe"
)

var hexMap = "0123456789abcdef"

type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Append value as fixed width hex digits.
func Format[T Unsigned](str *strings.Builder, value T) {
	shift := int(unsafe.Sizeof(value))*8 - 4
	for ; shift >= 0; shift -= 4 {
		str.WriteByte(hexMap[(uint64(value)>>shift)&0xf])
	}
}

// Append values separated by space if requested.
func FormatList[T Unsigned](str *strings.Builder, space bool, values []T) {
	for i, v := range values {
		if space && i != 0 {
			str.WriteByte(' ')
		}
		Format(str, v)
	}
}

// Append a 64 bit address, with _ between upper and lower half.
func FormatAddr(str *strings.Builder, addr uint64) {
	Format(str, uint32(addr>>32))
	str.WriteByte('_')
	Format(str, uint32(addr))
}

// Dump data in lines of 16 bytes, each line starting with its
// address and ending with the printable characters.
func Dump(addr uint64, data []byte) string {
	var str strings.Builder
	for len(data) > 0 {
		n := min(16, len(data))
		FormatAddr(&str, addr)
		str.WriteString("  ")
		for i := range 16 {
			if i < n {
				Format(&str, data[i])
			} else {
				str.WriteString("  ")
			}
			str.WriteByte(' ')
			if i == 7 {
				str.WriteByte(' ')
			}
		}
		str.WriteString(" |")
		for _, by := range data[:n] {
			if by < 0x20 || by > 0x7e {
				by = '.'
			}
			str.WriteByte(by)
		}
		str.WriteString("|\n")
		data = data[n:]
		addr += uint64(n)
	}
	return str.String()
}
