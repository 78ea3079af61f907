// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio_test

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-matrixio"
	"go.uber.org/zap/zaptest"
)

// clock ratio of 1/2, so a 25MHz FPGA.
const halfClock = 0x00010002

// txn is a transaction seen by the fakeTransport.
type txn struct {
	addr uint32
	data []byte
}

// fakeTransport is an in-memory Transport that serves canned register
// contents and records every write.
type fakeTransport struct {
	mu       sync.Mutex
	regs     map[uint32][]byte
	writes   []txn
	reads    []txn
	writeErr error
	readErr  error
	closed   int
}

func newFakeTransport(name, version, ratio uint32) *fakeTransport {
	info := make([]byte, 8)
	binary.LittleEndian.PutUint32(info[0:], name)
	binary.LittleEndian.PutUint32(info[4:], version)
	clk := make([]byte, 4)
	binary.LittleEndian.PutUint32(clk, ratio)
	return &fakeTransport{
		regs: map[uint32][]byte{
			matrixio.AddrConf:     info,
			matrixio.AddrConf + 4: clk,
		},
	}
}

func (f *fakeTransport) Read(addr uint32, p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return f.readErr
	}
	data, ok := f.regs[addr]
	if !ok {
		return errors.Errorf("no register at 0x%04x", addr)
	}
	copy(p, data)
	f.reads = append(f.reads, txn{addr, append([]byte(nil), p...)})
	return nil
}

func (f *fakeTransport) Write(addr uint32, p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, txn{addr, append([]byte(nil), p...)})
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeTransport) setWriteErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

func (f *fakeTransport) Writes() []txn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]txn(nil), f.writes...)
}

func (f *fakeTransport) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
	f.reads = nil
}

// newTestBus returns a Bus on a fake Creator with a 25MHz FPGA clock.
func newTestBus(t *testing.T) (*matrixio.Bus, *fakeTransport) {
	t.Helper()
	f := newFakeTransport(matrixio.CreatorID, 1, halfClock)
	b, err := matrixio.NewBus(
		matrixio.WithTransport(f),
		matrixio.WithLogger(zaptest.NewLogger(t)))
	require.Nil(t, err)
	require.NotNil(t, b)
	f.reset()
	return b, f
}

func u16(v uint16) []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return buf
}

func checkWrites(t *testing.T, f *fakeTransport, xw []txn) {
	t.Helper()
	w := f.Writes()
	require.Equal(t, len(xw), len(w))
	for i := range xw {
		require.Equal(t, xw[i].addr, w[i].addr, "write %d address", i)
		require.Equal(t, xw[i].data, w[i].data, "write %d data", i)
	}
}
