// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
)

// Bus is the single channel to the FPGA registers.
//
// All register access passes through the Bus. Each Read and Write is an
// independent transaction, and the Bus provides no locking across
// transactions, so a read followed by a write to the same register is not
// atomic with respect to other users of the Bus.
type Bus struct {
	t      Transport
	logger *zap.Logger
	closed atomic.Bool

	// Resolved during NewBus and immutable afterward.
	info   DeviceInfo
	freqHz uint32
}

// DeviceKind identifies the board attached to the host.
type DeviceKind int

const (
	// DeviceUnknown is the zero value, and never returned by a live Bus.
	DeviceUnknown DeviceKind = iota

	// DeviceCreator is a MATRIX Creator.
	DeviceCreator

	// DeviceVoice is a MATRIX Voice.
	DeviceVoice
)

func (k DeviceKind) String() string {
	switch k {
	case DeviceCreator:
		return "MATRIX Creator"
	case DeviceVoice:
		return "MATRIX Voice"
	default:
		return "unknown"
	}
}

// DeviceInfo is the identity reported by the FPGA.
type DeviceInfo struct {
	Kind    DeviceKind
	Version uint32
}

// NewBus opens the transport and identifies the attached device.
//
// The available options are [WithRegmap], [WithSPI], [WithSPIConn],
// [WithTransport] and [WithLogger]. With no options the regmap device at RegmapPath is used.
//
// The device identity and FPGA frequency are read before NewBus returns.
// If either cannot be determined the transport is closed and no Bus is
// returned.
func NewBus(options ...BusOption) (*Bus, error) {
	cfg := defaultBusConfig()
	for _, o := range options {
		o.applyBusOption(&cfg)
	}
	t := cfg.transport
	if t == nil {
		var err error
		t, err = cfg.open()
		if err != nil {
			return nil, wrapCause(ErrTransportUnavailable, err, "open %s", cfg.path)
		}
		cfg.logger.Debug("opened transport", zap.String("path", cfg.path))
	}
	b := &Bus{t: t, logger: cfg.logger}
	if err := b.identify(); err != nil {
		return nil, multierr.Append(err, t.Close())
	}
	b.logger.Info("device identified",
		zap.Stringer("kind", b.info.Kind),
		zap.Uint32("version", b.info.Version),
		zap.Uint32("fpga_hz", b.freqHz))
	return b, nil
}

func (b *Bus) identify() error {
	info, err := b.readDeviceInfo()
	if err != nil {
		return err
	}
	freq, err := b.readFPGAFrequency()
	if err != nil {
		return err
	}
	b.info = info
	b.freqHz = freq
	return nil
}

// readDeviceInfo reads and decodes the identity words in the CONF block.
func (b *Bus) readDeviceInfo() (DeviceInfo, error) {
	buf, err := b.Read(addrDeviceInfo, 8)
	if err != nil {
		return DeviceInfo{}, err
	}
	return decodeDeviceInfo(
		binary.LittleEndian.Uint32(buf[0:]),
		binary.LittleEndian.Uint32(buf[4:]))
}

func decodeDeviceInfo(name, version uint32) (DeviceInfo, error) {
	switch name {
	case CreatorID:
		return DeviceInfo{Kind: DeviceCreator, Version: version}, nil
	case VoiceID:
		return DeviceInfo{Kind: DeviceVoice, Version: version}, nil
	default:
		return DeviceInfo{}, errors.Wrapf(ErrUnknownDevice, "device code 0x%08x", name)
	}
}

// readFPGAFrequency reads the clock ratio word from the CONF block and
// applies it to FPGAClock.
func (b *Bus) readFPGAFrequency() (uint32, error) {
	buf, err := b.Read(addrClockRatio, 4)
	if err != nil {
		return 0, err
	}
	return decodeFPGAFrequency(binary.LittleEndian.Uint32(buf))
}

// decodeFPGAFrequency returns the frequency, in Hz, encoded in the clock
// ratio word.
//
// The high 16 bits are the multiplier and the low 16 bits the divisor.
func decodeFPGAFrequency(raw uint32) (uint32, error) {
	mul := uint64(raw >> 16)
	div := uint64(raw & 0xffff)
	if div == 0 {
		return 0, errors.Wrapf(ErrInvalidFrequency, "zero clock divisor in 0x%08x", raw)
	}
	hz := uint64(FPGAClock/physic.Hertz) * mul / div
	if hz > math.MaxUint32 {
		return 0, errors.Wrapf(ErrInvalidFrequency, "%d Hz out of range", hz)
	}
	return uint32(hz), nil
}

// DeviceInfo returns the identity of the attached device.
func (b *Bus) DeviceInfo() DeviceInfo {
	return b.info
}

// FPGAFrequency returns the FPGA clock frequency.
func (b *Bus) FPGAFrequency() physic.Frequency {
	return physic.Frequency(b.freqHz) * physic.Hertz
}

// Logger returns the logger used by the bus.
func (b *Bus) Logger() *zap.Logger {
	return b.logger
}

// Read reads length bytes starting at addr.
//
// This blocks until the transaction completes, and the returned slice is
// always length bytes long.
func (b *Bus) Read(addr uint32, length uint32) ([]byte, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	p := make([]byte, length)
	if err := b.t.Read(addr, p); err != nil {
		return nil, wrapCause(ErrTransmission, err, "read %d bytes at 0x%04x", length, addr)
	}
	return p, nil
}

// Write writes payload starting at addr.
func (b *Bus) Write(addr uint32, payload []byte) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if err := b.t.Write(addr, payload); err != nil {
		return wrapCause(ErrTransmission, err, "write %d bytes at 0x%04x", len(payload), addr)
	}
	return nil
}

// WriteUint16 writes a single 16-bit register.
func (b *Bus) WriteUint16(addr uint32, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return b.Write(addr, buf[:])
}

// Close releases the transport.
//
// Closing a closed Bus is a no-op.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.t.Close()
}
