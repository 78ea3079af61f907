// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

/*
Package matrixio is a library for driving the FPGA on MATRIX Creator and
MATRIX Voice boards from a Linux host.

All register access goes through a [Bus], which owns the link to the FPGA.
The link is either the matrixio-regmap kernel module ([WithRegmap], the
default) or a spidev link ([WithSPI], or [WithSPIConn] for a periph
connection opened elsewhere). Opening the Bus identifies the
board and determines the FPGA clock frequency.

The [GPIO] configures the 16 pins. Each pin has a mode (input or output),
a state (the level driven when an output) and a function (digital or PWM).
The FPGA holds each of these as a 16-bit register with one bit per pin, and
those registers can only be written whole, so the GPIO keeps a [PinMap]
mirroring them and writes the complete map whenever a pin changes.

Pins are grouped in fours into [Bank]s, each with a PWM timer shared by the
pins in the bank.

Accessing the device nodes typically requires root permissions.

# Example Usage

Open the board and drive pin 3 high:

	d, err := matrixio.Open()
	if err != nil {
		return err
	}
	defer d.Close()
	err = d.SetConfig(3, matrixio.ModeOutput)
	err = d.SetConfig(3, matrixio.StateOn)

Generate a 50Hz signal with a 25% duty cycle on pin 5, using SPI:

	d, err := matrixio.Open(matrixio.WithSPI(matrixio.SPIPath))
	err = d.GPIO.SetConfig(5, matrixio.ModeOutput)
	err = d.GPIO.SetConfig(5, matrixio.FunctionPWM)
	err = d.GPIO.SetPWM(5, 50*physic.Hertz, 25)
*/
package matrixio
