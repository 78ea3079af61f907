// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	// ErrTransportUnavailable indicates the device node could not be opened or
	// configured.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrUnknownDevice indicates the CONF block reported an unrecognised board.
	ErrUnknownDevice = errors.New("unknown device")

	// ErrInvalidPin indicates a pin outside 0..NumPins-1.
	ErrInvalidPin = errors.New("invalid pin")

	// ErrInvalidConfig indicates a pin config value outside its variant's range.
	ErrInvalidConfig = errors.New("invalid pin config")

	// ErrTransmission indicates a register transaction did not complete.
	ErrTransmission = errors.New("transmission failure")

	// ErrInvalidFrequency indicates a frequency that cannot be represented,
	// such as a zero clock divisor.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrClosed indicates the bus has been closed.
	ErrClosed = errors.New("bus closed")
)

// wrapCause returns an error matching both sentinel and cause under
// errors.Is, annotated with the formatted message.
func wrapCause(sentinel, cause error, format string, args ...interface{}) error {
	return errors.WithMessagef(multierr.Combine(sentinel, cause), format, args...)
}
