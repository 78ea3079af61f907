// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3/sysfs"
)

// SPIPath is the spidev node the FPGA is attached to.
const SPIPath = "/dev/spidev0.0"

// Link parameters expected by the FPGA's SPI slave.
const (
	SPIMode        = spi.Mode3
	SPIBitsPerWord = 8
	SPISpeed       = 15 * physic.MegaHertz
)

// spiHeaderSize is the size of the address word leading each SPI transfer.
const spiHeaderSize = 2

// maxSPIAddr is the largest register address the SPI header can carry.
const maxSPIAddr = 0x7fff

// encodeSPIHeader packs the 15-bit register address and the read flag into
// the address word that leads each transfer.
//
// Bit 0 is set for reads, and the address occupies bits 1-15.
func encodeSPIHeader(addr uint32, read bool) ([spiHeaderSize]byte, error) {
	var hdr [spiHeaderSize]byte
	if addr > maxSPIAddr {
		return hdr, errors.Errorf("address 0x%x exceeds SPI address space", addr)
	}
	w := uint16(addr) << 1
	if read {
		w |= 1
	}
	binary.LittleEndian.PutUint16(hdr[:], w)
	return hdr, nil
}

// parseSPIPath returns the bus number and chip select of a spidev node.
func parseSPIPath(path string) (int, int, error) {
	var bus, cs int
	if _, err := fmt.Sscanf(path, "/dev/spidev%d.%d", &bus, &cs); err != nil {
		return 0, 0, errors.Errorf("'%s' is not a spidev node", path)
	}
	if fmt.Sprintf("/dev/spidev%d.%d", bus, cs) != path {
		return 0, 0, errors.Errorf("'%s' is not a spidev node", path)
	}
	return bus, cs, nil
}

// SPI is a Transport over a SPI connection to the FPGA.
type SPI struct {
	conn spi.Conn

	// Released on Close, if not nil.
	closer io.Closer
}

// NewSPI returns a Transport using the connection.
//
// The connection must already be configured with SPIMode, SPIBitsPerWord
// and SPISpeed. If the connection also implements io.Closer it is closed
// when the transport is closed.
func NewSPI(conn spi.Conn) *SPI {
	s := &SPI{conn: conn}
	if c, ok := conn.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// OpenSPI opens the spidev node at path and connects to it with the link
// parameters the FPGA expects.
func OpenSPI(path string) (*SPI, error) {
	bus, cs, err := parseSPIPath(path)
	if err != nil {
		return nil, err
	}
	port, err := sysfs.NewSPI(bus, cs)
	if err != nil {
		return nil, err
	}
	conn, err := port.Connect(SPISpeed, SPIMode, SPIBitsPerWord)
	if err != nil {
		return nil, multierr.Append(err, port.Close())
	}
	return &SPI{conn: conn, closer: port}, nil
}

// Read fills p from the registers starting at addr.
func (s *SPI) Read(addr uint32, p []byte) error {
	hdr, err := encodeSPIHeader(addr, true)
	if err != nil {
		return err
	}
	tx := make([]byte, spiHeaderSize+len(p))
	copy(tx, hdr[:])
	rx := make([]byte, len(tx))
	if err = s.conn.Tx(tx, rx); err != nil {
		return err
	}
	copy(p, rx[spiHeaderSize:])
	return nil
}

// Write writes p to the registers starting at addr.
func (s *SPI) Write(addr uint32, p []byte) error {
	hdr, err := encodeSPIHeader(addr, false)
	if err != nil {
		return err
	}
	tx := make([]byte, spiHeaderSize+len(p))
	copy(tx, hdr[:])
	copy(tx[spiHeaderSize:], p)
	rx := make([]byte, len(tx))
	return s.conn.Tx(tx, rx)
}

// Close releases the SPI port.
func (s *SPI) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
