// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import "go.uber.org/atomic"

// Bank is the PWM timer shared by a group of four consecutive pins.
//
// Bank i drives pins 4i to 4i+3, with the pin's position within the bank
// being its channel.
type Bank struct {
	bus *Bus

	// The address of the bank's register block.
	memoryOffset uint16

	// The last period written, cached for diagnostics.
	timerSetup atomic.Uint32
}

// NewBankSet constructs the banks of a device.
//
// The register blocks are at a fixed stride from the start of the GPIO
// block, following the FPGA register layout.
func NewBankSet(bus *Bus) [NumBanks]*Bank {
	var banks [NumBanks]*Bank
	for i := range banks {
		banks[i] = &Bank{
			bus:          bus,
			memoryOffset: uint16(addrBanks + bankStride*uint32(i)),
		}
	}
	return banks
}

// MemoryOffset returns the address of the bank's register block.
func (b *Bank) MemoryOffset() uint16 {
	return b.memoryOffset
}

// TimerSetup returns the last period applied to the bank.
func (b *Bank) TimerSetup() uint16 {
	return uint16(b.timerSetup.Load())
}

// SetPrescaler sets the power of two the FPGA clock is divided by before
// driving the timer.
func (b *Bank) SetPrescaler(prescaler uint16) error {
	return b.write(b.memoryOffset, prescaler)
}

// SetPeriod sets the timer period, in prescaled clock ticks.
func (b *Bank) SetPeriod(period uint16) error {
	if err := b.write(b.memoryOffset+1, period); err != nil {
		return err
	}
	b.timerSetup.Store(uint32(period))
	return nil
}

// SetDuty sets the number of ticks the channel is high for each period.
//
// The channel must be in the range 0..ChannelsPerBank-1. This is not checked,
// and larger channels address the registers of the following bank.
func (b *Bank) SetDuty(channel, duty uint16) error {
	return b.write(b.memoryOffset+2+channel, duty)
}

func (b *Bank) write(addr, value uint16) error {
	return b.bus.WriteUint16(uint32(addr), value)
}
