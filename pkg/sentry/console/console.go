// Copyright 2018 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package console is the out-of-core console/SBI facility spec.md §4.5
// hands the write() syscall off to. On real RV64 hardware this is an SBI
// console_putchar ecall; hosted, it is a real host terminal. Package
// console provides three kernel.ConsoleWriter implementations: HostTTY,
// which puts a real attached terminal into raw mode the way an
// interactive boot would want; PTY, a pseudo-terminal pair for
// integration tests that want to observe task output a byte stream would
// actually see; and Memory, a plain in-process buffer for unit tests that
// don't care about terminal semantics at all.
package console

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	ctm "github.com/containerd/console"
	"github.com/creack/pty"
)

// HostTTY adapts a real attached terminal into a kernel.ConsoleWriter,
// putting it into raw mode for the lifetime of the kernel so that task
// output (which has no concept of host line-discipline translation)
// reaches the terminal byte for byte.
type HostTTY struct {
	c ctm.Console
}

// OpenHostTTY puts f (normally os.Stdout) into raw mode and returns a
// ConsoleWriter backed by it. Reset restores the previous terminal state
// and must be called before the process exits.
func OpenHostTTY(f *os.File) (*HostTTY, error) {
	c, err := ctm.ConsoleFromFile(f)
	if err != nil {
		return nil, fmt.Errorf("console: %s is not a terminal: %w", f.Name(), err)
	}
	if err := c.SetRaw(); err != nil {
		return nil, fmt.Errorf("console: setting raw mode: %w", err)
	}
	return &HostTTY{c: c}, nil
}

// Write implements kernel.ConsoleWriter.
func (h *HostTTY) Write(p []byte) (int, error) { return h.c.Write(p) }

// Reset restores the terminal's prior mode.
func (h *HostTTY) Reset() error { return h.c.Reset() }

// PTY is a pseudo-terminal pair a test can write task output into on one
// end and read the resulting byte stream back from on the other, the way
// a real serial console's far end would observe it.
type PTY struct {
	master *os.File
	slave  *os.File
}

// OpenPTY allocates a pty pair via the host's openpty(3).
func OpenPTY() (*PTY, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("console: opening pty: %w", err)
	}
	return &PTY{master: master, slave: slave}, nil
}

// Write implements kernel.ConsoleWriter by writing to the master side, as
// task output destined for whatever is attached to the slave.
func (p *PTY) Write(data []byte) (int, error) { return p.master.Write(data) }

// Slave returns the slave end, for a reader goroutine to Read from.
func (p *PTY) Slave() *os.File { return p.slave }

// Close releases both ends of the pair.
func (p *PTY) Close() error {
	err1 := p.master.Close()
	err2 := p.slave.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Memory is a kernel.ConsoleWriter backed by an in-process buffer, for
// tests that want to assert on exact byte content without a real tty.
type Memory struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements kernel.ConsoleWriter.
func (m *Memory) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.Write(p)
}

// String returns everything written so far.
func (m *Memory) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.String()
}

// Bytes returns a copy of everything written so far.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, m.buf.Len())
	copy(out, m.buf.Bytes())
	return out
}

var _ io.Writer = (*Memory)(nil)
