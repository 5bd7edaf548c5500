/*
 * PCIeVC - Remote console listener.
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
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/rcornwell/pcievc/command/parser"
)

const prompt = "pcievc> "

type Server struct {
	wg       sync.WaitGroup
	listener net.Listener
	shutdown chan struct{}
	console  *parser.Console
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
}

// Open new listener.
func newServer(address string, console *parser.Console) (*Server, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on address %s: %w", address, err)
	}

	return &Server{
		listener: listener,
		shutdown: make(chan struct{}),
		console:  console,
		conns:    map[net.Conn]struct{}{},
	}, nil
}

// Accept connections until shutdown.
func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Warn("Accept failed: " + err.Error())
			continue
		}

		s.mu.Lock()
		select {
		case <-s.shutdown:
			s.mu.Unlock()
			conn.Close()
			return
		default:
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		slog.Info("Console connection", "remote", conn.RemoteAddr().String())
		s.wg.Add(1)
		go s.handleClient(conn)
	}
}

// Run console commands for one client.
func (s *Server) handleClient(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	console := s.console.WithOutput(conn)
	state := newState(conn)
	_, _ = conn.Write([]byte(prompt))

	buffer := make([]byte, 1024)
	for {
		n, err := conn.Read(buffer)
		if n > 0 {
			quit := state.receive(buffer[:n], func(line string) bool {
				quit, cerr := console.ProcessCommand(line)
				if cerr != nil {
					fmt.Fprintln(conn, "Error: "+cerr.Error())
				}
				if !quit {
					_, _ = conn.Write([]byte(prompt))
				}
				return quit
			})
			if quit {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Address server is listening on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start a new server.
func Start(address string, console *parser.Console) (*Server, error) {
	s, err := newServer(address, console)
	if err != nil {
		return nil, err
	}
	slog.Info("Console server started", "address", s.listener.Addr().String())

	s.wg.Add(1)
	go s.acceptConnections()
	return s, nil
}

// Stop a running server, closing any clients.
func (s *Server) Stop() {
	s.mu.Lock()
	close(s.shutdown)
	s.listener.Close()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for connections to finish")
	}
}
