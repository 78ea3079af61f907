// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import "github.com/pkg/errors"

// PinConfig is a setting that may be applied to a pin.
//
// The available configs are Mode, State and Function.
type PinConfig interface {
	pinConfig()
}

// Dimension identifies one of the pin maps.
//
// The value is also the offset of the corresponding register from AddrGPIO.
type Dimension uint16

const (
	// DimensionMode is the map of pin directions.
	DimensionMode Dimension = iota

	// DimensionState is the map of output levels.
	DimensionState

	// DimensionFunction is the map of digital/PWM selections.
	DimensionFunction

	numDimensions
)

func (d Dimension) String() string {
	switch d {
	case DimensionMode:
		return "mode"
	case DimensionState:
		return "state"
	case DimensionFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Mode specifies if a pin is an input or output.
type Mode uint8

const (
	// ModeInput configures the pin as an input.
	ModeInput Mode = iota

	// ModeOutput configures the pin as an output.
	ModeOutput
)

func (Mode) pinConfig() {}

// State specifies the level an output pin is driven to.
type State uint8

const (
	// StateOff drives the pin low.
	StateOff State = iota

	// StateOn drives the pin high.
	StateOn
)

func (State) pinConfig() {}

// Function specifies whether a pin is a plain digital pin or driven by its
// bank's PWM timer.
type Function uint8

const (
	// FunctionDigital is plain digital I/O.
	FunctionDigital Function = iota

	// FunctionPWM routes the pin to its PWM channel.
	FunctionPWM
)

func (Function) pinConfig() {}

// project maps a config to the pin map it targets and the bit value it sets.
func project(c PinConfig) (Dimension, uint16, error) {
	var d Dimension
	var v uint8
	switch cv := c.(type) {
	case Mode:
		d, v = DimensionMode, uint8(cv)
	case State:
		d, v = DimensionState, uint8(cv)
	case Function:
		d, v = DimensionFunction, uint8(cv)
	default:
		return 0, 0, errors.Wrapf(ErrInvalidConfig, "unsupported config %T", c)
	}
	if v > 1 {
		return 0, 0, errors.Wrapf(ErrInvalidConfig, "%s value %d", d, v)
	}
	return d, uint16(v), nil
}
