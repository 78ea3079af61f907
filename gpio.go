// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
)

// GPIO configures the pins of the device.
//
// Pins are identified by number, in the range 0..NumPins-1.
type GPIO struct {
	bus    *Bus
	logger *zap.Logger
	pins   PinMap
	banks  [NumBanks]*Bank
}

// NewGPIO constructs a GPIO on the bus.
//
// All pins start as digital inputs, driven off, matching the state of the
// FPGA after reset.
func NewGPIO(bus *Bus) *GPIO {
	return &GPIO{
		bus:    bus,
		logger: bus.Logger(),
		banks:  NewBankSet(bus),
	}
}

// SetConfig applies the config to the pin.
//
// The whole of the affected map is written to the FPGA, as the registers do
// not support writing individual bits.
// If the write fails the map is left unchanged.
func (g *GPIO) SetConfig(pin int, c PinConfig) error {
	_, _, err := g.pins.apply(pin, c, func(value, offset uint16) error {
		g.logger.Debug("pin config",
			zap.Int("pin", pin),
			zap.Stringer("dimension", Dimension(offset)),
			zap.String("map", bitString(value)))
		return g.bus.WriteUint16(AddrGPIO+uint32(offset), value)
	})
	return err
}

// SetConfigs applies the config to each of the pins, in order.
//
// Each pin is written separately. If a pin fails then the preceding pins
// remain configured and the remaining pins are untouched.
func (g *GPIO) SetConfigs(pins []int, c PinConfig) error {
	for _, pin := range pins {
		if err := g.SetConfig(pin, c); err != nil {
			return err
		}
	}
	return nil
}

// PinMap returns a view of the maps mirroring the pin configuration.
//
// The maps can only be changed through SetConfig, so they always match the
// hardware.
func (g *GPIO) PinMap() PinMapView {
	return PinMapView{&g.pins}
}

// Banks returns the PWM banks.
func (g *GPIO) Banks() [NumBanks]*Bank {
	return g.banks
}

// Bank returns the PWM bank that drives the pin.
func (g *GPIO) Bank(pin int) (*Bank, error) {
	if pin < 0 || pin >= NumPins {
		return nil, errors.Wrapf(ErrInvalidPin, "pin %d", pin)
	}
	return g.banks[pin/ChannelsPerBank], nil
}

// maxPrescaler is the largest prescaler the timers accept.
const maxPrescaler = 15

// SetPWM sets the PWM frequency and duty cycle for the pin.
//
// The duty cycle is a percentage, 0 to 100.
// The frequency is shared by all the pins in the bank, so setting it for one
// pin changes it for the others.
//
// This only configures the timer. The pin must also be set to FunctionPWM
// for the signal to appear on the pin.
func (g *GPIO) SetPWM(pin int, freq physic.Frequency, duty float64) error {
	bank, err := g.Bank(pin)
	if err != nil {
		return err
	}
	if duty < 0 || duty > 100 {
		return errors.Wrapf(ErrInvalidConfig, "duty cycle %v%% out of range", duty)
	}
	prescaler, period, err := pwmTimer(g.bus.FPGAFrequency(), freq)
	if err != nil {
		return err
	}
	if err = bank.SetPrescaler(prescaler); err != nil {
		return err
	}
	if err = bank.SetPeriod(period); err != nil {
		return err
	}
	return bank.SetDuty(uint16(pin%ChannelsPerBank), uint16(float64(period)*duty/100))
}

// pwmTimer finds the smallest prescaler that allows the period, in timer
// ticks, to fit the 16-bit period register.
//
// Each tick of the timer is 2<<prescaler FPGA clock cycles.
func pwmTimer(clock, freq physic.Frequency) (uint16, uint16, error) {
	if freq <= 0 {
		return 0, 0, errors.Wrapf(ErrInvalidFrequency, "PWM frequency %s", freq)
	}
	cycles := uint64(clock) / uint64(freq)
	for p := uint16(0); p <= maxPrescaler; p++ {
		period := cycles / (uint64(2) << p)
		if period == 0 {
			break
		}
		if period <= 0xffff {
			return p, uint16(period), nil
		}
	}
	return 0, 0, errors.Wrapf(ErrInvalidFrequency, "PWM frequency %s not achievable from %s", freq, clock)
}

// bitString formats a map with pin 0 as the rightmost bit.
func bitString(v uint16) string {
	var buf [NumPins]byte
	for i := range buf {
		buf[NumPins-1-i] = '0' + byte(v>>i&1)
	}
	return string(buf[:])
}
