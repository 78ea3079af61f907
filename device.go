// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

// Device bundles the bus and the GPIO built on it.
//
// It is the usual entry point for applications that don't need to share the
// bus with other drivers.
type Device struct {
	*Bus

	GPIO *GPIO
}

// Open opens the bus using the provided options and constructs the GPIO.
//
// The available options are those accepted by [NewBus].
func Open(options ...BusOption) (*Device, error) {
	b, err := NewBus(options...)
	if err != nil {
		return nil, err
	}
	return &Device{Bus: b, GPIO: NewGPIO(b)}, nil
}

// SetConfig applies the config to the pin.
func (d *Device) SetConfig(pin int, c PinConfig) error {
	return d.GPIO.SetConfig(pin, c)
}

// SetConfigs applies the config to each of the pins, in order.
func (d *Device) SetConfigs(pins []int, c PinConfig) error {
	return d.GPIO.SetConfigs(pins, c)
}
