/*
 * PCIeVC - Telnet protocol filter.
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

package telnet

import (
	"io"
)

// Telnet protocol constants.
const (
	tnIAC  byte = 255 // protocol delim
	tnDONT byte = 254 // dont
	tnDO   byte = 253 // do
	tnWONT byte = 252 // wont
	tnWILL byte = 251 // will
	tnSB   byte = 250 // Sub negotiations begin
	tnSE   byte = 240 // Sub negotiations end

	// Telnet line states.
	tnStateData int = 1 + iota // normal
	tnStateIAC                 // IAC seen
	tnStateWILL                // WILL seen
	tnStateDO                  // DO seen
	tnStateSKIP                // skip next cmd
	tnStateSB                  // Inside sub negotiation
	tnStateSE                  // IAC seen in sub negotiation
)

// Strips telnet commands from input and collects lines. Every option
// the client offers or asks for is refused, leaving the session in
// plain line mode.
type tnState struct {
	state int       // Current line state.
	line  []byte    // Line being collected.
	reply io.Writer // Where to send option refusals.
}

func newState(reply io.Writer) *tnState {
	return &tnState{state: tnStateData, reply: reply}
}

// Send a response to client.
func (state *tnState) sendOption(setState, option byte) {
	_, _ = state.reply.Write([]byte{tnIAC, setState, option})
}

// Process received data, calling fn for each complete line. Stops if fn
// returns true, and returns true as well.
func (state *tnState) receive(data []byte, fn func(string) bool) bool {
	for _, input := range data {
		switch state.state {
		case tnStateData:
			switch input {
			case tnIAC:
				state.state = tnStateIAC
			case '\r', 0:
			case '\n':
				line := string(state.line)
				state.line = state.line[:0]
				if fn(line) {
					return true
				}
			default:
				state.line = append(state.line, input)
			}

		case tnStateIAC:
			state.state = tnStateData
			switch input {
			case tnIAC:
				state.line = append(state.line, input)
			case tnWILL:
				state.state = tnStateWILL
			case tnDO:
				state.state = tnStateDO
			case tnWONT, tnDONT:
				state.state = tnStateSKIP
			case tnSB:
				state.state = tnStateSB
			}

		case tnStateWILL:
			state.sendOption(tnDONT, input)
			state.state = tnStateData

		case tnStateDO:
			state.sendOption(tnWONT, input)
			state.state = tnStateData

		case tnStateSKIP:
			state.state = tnStateData

		case tnStateSB:
			if input == tnIAC {
				state.state = tnStateSE
			}

		case tnStateSE:
			if input == tnSE {
				state.state = tnStateData
			} else {
				state.state = tnStateSB
			}
		}
	}
	return false
}
