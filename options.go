// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package matrixio

import (
	"go.uber.org/zap"
	"periph.io/x/conn/v3/spi"
)

// BusOption defines the interface required to provide an option to NewBus.
type BusOption interface {
	applyBusOption(*busConfig)
}

// busConfig contains the information required to bring up a bus.
type busConfig struct {
	// Opens the transport when no transport is provided directly.
	open func() (Transport, error)

	// The path passed to open, for error reporting.
	path string

	// A transport provided by the caller.
	transport Transport

	logger *zap.Logger
}

func defaultBusConfig() busConfig {
	c := busConfig{logger: zap.NewNop()}
	RegmapOption(RegmapPath).applyBusOption(&c)
	return c
}

// RegmapOption selects the regmap kernel module as the transport.
type RegmapOption string

// WithRegmap returns an option that opens the regmap device at path.
//
// This is the default, with path RegmapPath.
func WithRegmap(path string) RegmapOption {
	return RegmapOption(path)
}

func (o RegmapOption) applyBusOption(c *busConfig) {
	path := string(o)
	c.path = path
	c.transport = nil
	c.open = func() (Transport, error) {
		return OpenRegmap(path)
	}
}

// SPIOption selects a spidev link as the transport.
type SPIOption string

// WithSPI returns an option that opens the spidev node at path.
//
// The usual path is SPIPath.
func WithSPI(path string) SPIOption {
	return SPIOption(path)
}

func (o SPIOption) applyBusOption(c *busConfig) {
	path := string(o)
	c.path = path
	c.transport = nil
	c.open = func() (Transport, error) {
		return OpenSPI(path)
	}
}

// SPIConnOption provides an already connected SPI link as the transport.
type SPIConnOption struct {
	spi.Conn
}

// WithSPIConn returns an option that uses conn as the link to the FPGA.
//
// The conn must be configured with SPIMode, SPIBitsPerWord and SPISpeed.
// If it also implements io.Closer it is closed with the bus.
func WithSPIConn(conn spi.Conn) SPIConnOption {
	return SPIConnOption{conn}
}

func (o SPIConnOption) applyBusOption(c *busConfig) {
	c.path = ""
	c.transport = NewSPI(o.Conn)
}

// TransportOption provides an already open transport.
type TransportOption struct {
	Transport
}

// WithTransport returns an option that uses the provided transport.
//
// The bus takes ownership of the transport and closes it when the bus is
// closed, or if NewBus fails.
func WithTransport(t Transport) TransportOption {
	return TransportOption{t}
}

func (o TransportOption) applyBusOption(c *busConfig) {
	c.path = ""
	c.transport = o.Transport
}

// LoggerOption provides the logger used by the bus and everything built on it.
type LoggerOption struct {
	*zap.Logger
}

// WithLogger returns an option that sets the logger.
//
// By default nothing is logged.
func WithLogger(l *zap.Logger) LoggerOption {
	return LoggerOption{l}
}

func (o LoggerOption) applyBusOption(c *busConfig) {
	if o.Logger != nil {
		c.logger = o.Logger
	}
}
