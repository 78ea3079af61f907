// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import (
	"sync"

	"github.com/pkg/errors"
)

// PinMap mirrors the mode, state and function registers of the GPIO block.
//
// Bit i of each map is the setting of pin i. The maps are never read back
// from the hardware, so they must track every value written to it.
//
// The zero value has all pins as digital inputs, driven off.
type PinMap struct {
	vectors [numDimensions]pinVector
}

// pinVector is one map, with the lock covering its read/modify/write.
type pinVector struct {
	mu   sync.Mutex
	bits uint16
}

// Value returns the current value of the map for the given dimension.
func (m *PinMap) Value(d Dimension) uint16 {
	if d >= numDimensions {
		return 0
	}
	v := &m.vectors[d]
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bits
}

// PinMapView is a read-only view of a PinMap.
type PinMapView struct {
	m *PinMap
}

// Value returns the current value of the map for the given dimension.
func (v PinMapView) Value(d Dimension) uint16 {
	return v.m.Value(d)
}

// Update applies the config to the pin.
//
// It returns the new value of the whole map and the offset of the register
// that map corresponds to. Only the bit for pin is altered.
func (m *PinMap) Update(pin int, c PinConfig) (uint16, uint16, error) {
	return m.apply(pin, c, nil)
}

// apply updates the map for the pin, then calls commit with the new map value
// and register offset while the map is still locked.
//
// If commit fails the map is restored to its previous value, so the map always
// matches the last value successfully committed.
func (m *PinMap) apply(pin int, c PinConfig, commit func(value, offset uint16) error) (uint16, uint16, error) {
	if pin < 0 || pin >= NumPins {
		return 0, 0, errors.Wrapf(ErrInvalidPin, "pin %d", pin)
	}
	d, bit, err := project(c)
	if err != nil {
		return 0, 0, err
	}
	v := &m.vectors[d]
	v.mu.Lock()
	defer v.mu.Unlock()
	old := v.bits
	mask := uint16(1) << pin
	v.bits = bit<<pin | old&^mask
	offset := uint16(d)
	if commit != nil {
		if err = commit(v.bits, offset); err != nil {
			v.bits = old
			return old, offset, err
		}
	}
	return v.bits, offset, nil
}
