// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// RegmapPath is the device node exported by the matrixio-regmap kernel module.
const RegmapPath = "/dev/matrixio_regmap"

// The driver's requests are declared as taking an int32_t pointer, so the
// encoded size is that of a pointer on the host.
var (
	regmapWriteRequest = iow('a', 'a', unsafe.Sizeof(uintptr(0)))
	regmapReadRequest  = ior('a', 'b', unsafe.Sizeof(uintptr(0)))
)

// Regmap is a Transport over the matrixio-regmap kernel module.
//
// Each transaction hands the driver a single frame containing the register
// address, the payload length and the payload.
type Regmap struct {
	path string
	fd   int
}

// OpenRegmap opens the regmap device at path.
func OpenRegmap(path string) (*Regmap, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &Regmap{path: path, fd: fd}, nil
}

// Path returns the path of the device node.
func (r *Regmap) Path() string {
	return r.path
}

// Read fills p from the registers starting at addr.
func (r *Regmap) Read(addr uint32, p []byte) error {
	buf, err := encodeFrame(addr, uint32(len(p)), nil)
	if err != nil {
		return err
	}
	if err = ioctl(r.fd, regmapReadRequest, unsafe.Pointer(&buf[0])); err != nil {
		return err
	}
	_, data, err := decodeFrame(buf)
	if err != nil {
		return err
	}
	copy(p, data)
	return nil
}

// Write writes p to the registers starting at addr.
func (r *Regmap) Write(addr uint32, p []byte) error {
	buf, err := encodeFrame(addr, uint32(len(p)), p)
	if err != nil {
		return err
	}
	return ioctl(r.fd, regmapWriteRequest, unsafe.Pointer(&buf[0]))
}

// Close closes the device node.
func (r *Regmap) Close() error {
	if r.fd < 0 {
		return nil
	}
	err := unix.Close(r.fd)
	r.fd = -1
	return err
}
