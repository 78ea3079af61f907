// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import (
	"encoding/binary"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Transport is a channel to the FPGA register space.
//
// Each call is a single, complete transaction.
// Implementations must be safe to call from multiple goroutines, though no
// ordering is implied between concurrent calls.
type Transport interface {
	// Read fills p with len(p) bytes starting at addr.
	Read(addr uint32, p []byte) error

	// Write writes p to the registers starting at addr.
	Write(addr uint32, p []byte) error

	// Close releases the underlying device.
	Close() error
}

// frameHeaderSize is the size of the [addr][len] header of a regmap frame.
const frameHeaderSize = 8

// maxFrameSize is the size of the regmap driver's transfer buffer.
const maxFrameSize = 12288

// encodeFrame packs a regmap request.
//
// The frame is [addr:u32][length:u32] followed by length bytes.
// For writes the payload fills the tail, for reads the tail is left zeroed
// for the driver to fill, and payload should be nil.
func encodeFrame(addr, length uint32, payload []byte) ([]byte, error) {
	if payload != nil && uint32(len(payload)) != length {
		return nil, errors.Errorf("payload length %d does not match frame length %d", len(payload), length)
	}
	size := frameHeaderSize + uint64(length)
	if size > maxFrameSize {
		return nil, errors.Errorf("frame of %d bytes exceeds %d", size, maxFrameSize)
	}
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:], addr)
	binary.LittleEndian.PutUint32(buf[4:], length)
	copy(buf[frameHeaderSize:], payload)
	return buf, nil
}

// decodeFrame unpacks a regmap frame into its address and payload.
func decodeFrame(buf []byte) (uint32, []byte, error) {
	if len(buf) < frameHeaderSize {
		return 0, nil, errors.Errorf("short frame: %d bytes", len(buf))
	}
	addr := binary.LittleEndian.Uint32(buf[0:])
	length := binary.LittleEndian.Uint32(buf[4:])
	if uint64(len(buf)-frameHeaderSize) < uint64(length) {
		return 0, nil, errors.Errorf("truncated frame: want %d payload bytes, have %d",
			length, len(buf)-frameHeaderSize)
	}
	return addr, buf[frameHeaderSize : frameHeaderSize+int(length)], nil
}

// From the linux /usr/include/asm-generic/ioctl.h file.
const (
	iocWrite = 1
	iocRead  = 2

	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift |
		typ<<iocTypeShift |
		nr<<iocNRShift |
		size<<iocSizeShift
}

func iow(typ, nr, size uintptr) uintptr {
	return ioc(iocWrite, typ, nr, size)
}

func ior(typ, nr, size uintptr) uintptr {
	return ioc(iocRead, typ, nr, size)
}

func ioctl(fd int, request uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), request, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
