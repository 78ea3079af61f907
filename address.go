// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import "periph.io/x/conn/v3/physic"

// Base addresses of the FPGA register blocks.
const (
	AddrConf     uint32 = 0x0000
	AddrUART     uint32 = 0x1000
	AddrMicArray uint32 = 0x2000
	AddrEverloop uint32 = 0x3000
	AddrGPIO     uint32 = 0x4000
	AddrMCU      uint32 = 0x5000
)

const (
	// addrDeviceInfo holds the device name code followed by the device version.
	addrDeviceInfo = AddrConf

	// addrClockRatio holds the packed multiplier/divisor applied to FPGAClock.
	addrClockRatio = AddrConf + 4

	// addrBanks is the base of the first PWM bank within the GPIO block.
	addrBanks = AddrGPIO + 4

	// bankStride is the number of registers per PWM bank.
	//
	// prescaler, period, then one duty register per channel.
	bankStride = 6
)

// Identity codes reported in the CONF block.
const (
	CreatorID uint32 = 0x05C344E8
	VoiceID   uint32 = 0x6032BAD2
)

// FPGAClock is the reference clock the FPGA frequency is derived from.
const FPGAClock = 50 * physic.MegaHertz

const (
	// NumPins is the number of GPIO pins on the board.
	NumPins = 16

	// NumBanks is the number of PWM banks.
	NumBanks = 4

	// ChannelsPerBank is the number of pins sharing a PWM timer.
	ChannelsPerBank = NumPins / NumBanks
)
