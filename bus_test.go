// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio_test

import (
	"os"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-matrixio"
	"golang.org/x/sys/unix"
	"periph.io/x/conn/v3/physic"
)

func TestNewBus(t *testing.T) {
	f := newFakeTransport(matrixio.CreatorID, 0x1234, halfClock)
	b, err := matrixio.NewBus(matrixio.WithTransport(f))
	require.Nil(t, err)
	defer b.Close()

	info := b.DeviceInfo()
	assert.Equal(t, matrixio.DeviceCreator, info.Kind)
	assert.Equal(t, uint32(0x1234), info.Version)
	assert.Equal(t, 25*physic.MegaHertz, b.FPGAFrequency())
	assert.Equal(t, "MATRIX Creator", info.Kind.String())
	assert.NotNil(t, b.Logger())

	// identity and clock are each read once
	require.Equal(t, 2, len(f.reads))
	assert.Equal(t, matrixio.AddrConf, f.reads[0].addr)
	assert.Equal(t, 8, len(f.reads[0].data))
	assert.Equal(t, matrixio.AddrConf+4, f.reads[1].addr)
	assert.Equal(t, 4, len(f.reads[1].data))
}

func TestNewBusVoice(t *testing.T) {
	f := newFakeTransport(matrixio.VoiceID, 7, 0x00030001)
	b, err := matrixio.NewBus(matrixio.WithTransport(f))
	require.Nil(t, err)
	defer b.Close()

	assert.Equal(t, matrixio.DeviceVoice, b.DeviceInfo().Kind)
	assert.Equal(t, uint32(7), b.DeviceInfo().Version)
	assert.Equal(t, 150*physic.MegaHertz, b.FPGAFrequency())
}

func TestNewBusUnknownDevice(t *testing.T) {
	f := newFakeTransport(0xdeadbeef, 1, halfClock)
	b, err := matrixio.NewBus(matrixio.WithTransport(f))
	assert.True(t, errors.Is(err, matrixio.ErrUnknownDevice), err)
	assert.Nil(t, b)
	assert.Equal(t, 1, f.Closed())
}

func TestNewBusZeroDivisor(t *testing.T) {
	f := newFakeTransport(matrixio.CreatorID, 1, 0x00010000)
	b, err := matrixio.NewBus(matrixio.WithTransport(f))
	assert.True(t, errors.Is(err, matrixio.ErrInvalidFrequency), err)
	assert.Nil(t, b)
	assert.Equal(t, 1, f.Closed())
}

func TestNewBusReadFailure(t *testing.T) {
	f := newFakeTransport(matrixio.CreatorID, 1, halfClock)
	f.readErr = syscall.EIO
	b, err := matrixio.NewBus(matrixio.WithTransport(f))
	assert.True(t, errors.Is(err, matrixio.ErrTransmission), err)
	assert.True(t, errors.Is(err, syscall.EIO), err)
	assert.Nil(t, b)
	assert.Equal(t, 1, f.Closed())
}

func TestNewBusMissingDevice(t *testing.T) {
	b, err := matrixio.NewBus(matrixio.WithRegmap("/nonexistent/matrixio_regmap"))
	assert.True(t, errors.Is(err, matrixio.ErrTransportUnavailable), err)
	assert.True(t, errors.Is(err, os.ErrNotExist), err)
	assert.Nil(t, b)

	b, err = matrixio.NewBus(matrixio.WithSPI("/nonexistent/spidev0.0"))
	assert.True(t, errors.Is(err, matrixio.ErrTransportUnavailable), err)
	assert.Nil(t, b)

	// a well formed node that does not exist
	b, err = matrixio.NewBus(matrixio.WithSPI("/dev/spidev255.255"))
	assert.True(t, errors.Is(err, matrixio.ErrTransportUnavailable), err)
	assert.Nil(t, b)

	// a later option overrides an earlier one
	f := newFakeTransport(matrixio.CreatorID, 1, halfClock)
	b, err = matrixio.NewBus(
		matrixio.WithRegmap("/nonexistent/matrixio_regmap"),
		matrixio.WithTransport(f))
	require.Nil(t, err)
	b.Close()
}

func TestNewBusNullDevice(t *testing.T) {
	// not a spidev node
	b, err := matrixio.NewBus(matrixio.WithSPI("/dev/null"))
	assert.True(t, errors.Is(err, matrixio.ErrTransportUnavailable), err)
	assert.Nil(t, b)

	// opens, but rejects the regmap requests
	fds := openFds(t)
	b, err = matrixio.NewBus(matrixio.WithRegmap("/dev/null"))
	assert.True(t, errors.Is(err, matrixio.ErrTransmission), err)
	assert.True(t, errors.Is(err, unix.ENOTTY), err)
	assert.Nil(t, b)
	assert.Equal(t, fds, openFds(t), "fd leaked")
}

func TestBusRead(t *testing.T) {
	b, f := newTestBus(t)
	defer b.Close()

	f.regs[matrixio.AddrMCU] = []byte{1, 2, 3, 4, 5, 6}
	buf, err := b.Read(matrixio.AddrMCU, 6)
	require.Nil(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, buf)

	// short registers are zero padded to the requested length
	buf, err = b.Read(matrixio.AddrMCU, 8)
	require.Nil(t, err)
	assert.Equal(t, 8, len(buf))

	f.readErr = syscall.EIO
	buf, err = b.Read(matrixio.AddrMCU, 6)
	assert.True(t, errors.Is(err, matrixio.ErrTransmission), err)
	assert.True(t, errors.Is(err, syscall.EIO), err)
	assert.Nil(t, buf)
}

func TestBusWrite(t *testing.T) {
	b, f := newTestBus(t)
	defer b.Close()

	err := b.Write(matrixio.AddrEverloop, []byte{1, 2, 3, 4})
	assert.Nil(t, err)
	err = b.WriteUint16(matrixio.AddrGPIO, 0x1234)
	assert.Nil(t, err)
	checkWrites(t, f, []txn{
		{matrixio.AddrEverloop, []byte{1, 2, 3, 4}},
		{matrixio.AddrGPIO, []byte{0x34, 0x12}},
	})

	f.setWriteErr(syscall.EIO)
	err = b.WriteUint16(matrixio.AddrGPIO, 0)
	assert.True(t, errors.Is(err, matrixio.ErrTransmission), err)
	assert.True(t, errors.Is(err, syscall.EIO), err)
}

func TestBusClose(t *testing.T) {
	b, f := newTestBus(t)

	assert.Nil(t, b.Close())
	assert.Equal(t, 1, f.Closed())

	// idempotent
	assert.Nil(t, b.Close())
	assert.Equal(t, 1, f.Closed())

	_, err := b.Read(matrixio.AddrConf, 8)
	assert.Equal(t, matrixio.ErrClosed, err)
	err = b.Write(matrixio.AddrGPIO, []byte{0, 0})
	assert.Equal(t, matrixio.ErrClosed, err)
	assert.Zero(t, len(f.Writes()))
}

func TestDeviceKindString(t *testing.T) {
	assert.Equal(t, "MATRIX Creator", matrixio.DeviceCreator.String())
	assert.Equal(t, "MATRIX Voice", matrixio.DeviceVoice.String())
	assert.Equal(t, "unknown", matrixio.DeviceUnknown.String())
}

// openFds returns the number of file descriptors open in the process.
func openFds(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	require.Nil(t, err)
	return len(entries)
}
