// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

// matrixio is a command line tool to identify a MATRIX board and drive its
// GPIO pins.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/warthog618/go-matrixio"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
)

const (
	// Flags.
	flagTransport = "transport"
	flagDevice    = "device"
	flagDebug     = "debug"
	flagPin       = "pin"
	flagMode      = "mode"
	flagState     = "state"
	flagFunction  = "function"
	flagFrequency = "frequency"
	flagDuty      = "duty"

	transportRegmap = "regmap"
	transportSPI    = "spi"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	logger := zap.NewNop()
	return &cli.App{
		Name:  "matrixio",
		Usage: "identify and drive a MATRIX Creator or Voice",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagTransport,
				Aliases: []string{"t"},
				Value:   transportRegmap,
				Usage:   "link to the FPGA, " + transportRegmap + " or " + transportSPI,
				EnvVars: []string{"MATRIXIO_TRANSPORT"},
			},
			&cli.StringFlag{
				Name:    flagDevice,
				Aliases: []string{"d"},
				Usage:   "device node, defaulting to the usual node for the transport",
				EnvVars: []string{"MATRIXIO_DEVICE"},
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = l
			}
			return nil
		},
		After: func(c *cli.Context) error {
			logger.Sync() //nolint:errcheck
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "info",
				Usage: "report the board type, version and FPGA frequency",
				Action: func(c *cli.Context) error {
					d, err := openDevice(c, logger)
					if err != nil {
						return err
					}
					defer d.Close()
					info := d.DeviceInfo()
					fmt.Fprintf(c.App.Writer, "board:     %s\n", info.Kind)
					fmt.Fprintf(c.App.Writer, "version:   0x%08x\n", info.Version)
					fmt.Fprintf(c.App.Writer, "frequency: %s\n", d.FPGAFrequency())
					return nil
				},
			},
			{
				Name:  "gpio",
				Usage: "set the mode, state or function of pins",
				Flags: []cli.Flag{
					&cli.IntSliceFlag{
						Name:     flagPin,
						Aliases:  []string{"p"},
						Usage:    "pin to configure, 0-15, may be repeated",
						Required: true,
					},
					&cli.StringFlag{
						Name:  flagMode,
						Usage: "input or output",
					},
					&cli.StringFlag{
						Name:  flagState,
						Usage: "on or off",
					},
					&cli.StringFlag{
						Name:  flagFunction,
						Usage: "digital or pwm",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := pinConfig(c.String(flagMode), c.String(flagState), c.String(flagFunction))
					if err != nil {
						return err
					}
					d, err := openDevice(c, logger)
					if err != nil {
						return err
					}
					defer d.Close()
					return d.SetConfigs(c.IntSlice(flagPin), cfg)
				},
			},
			{
				Name:  "pwm",
				Usage: "generate a PWM signal on a pin",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     flagPin,
						Aliases:  []string{"p"},
						Usage:    "pin to drive, 0-15",
						Required: true,
					},
					&cli.StringFlag{
						Name:     flagFrequency,
						Aliases:  []string{"f"},
						Usage:    "signal frequency, e.g. 50Hz",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  flagDuty,
						Value: 50,
						Usage: "duty cycle, as a percentage",
					},
				},
				Action: func(c *cli.Context) error {
					var freq physic.Frequency
					if err := freq.Set(c.String(flagFrequency)); err != nil {
						return errors.Wrap(err, "frequency")
					}
					d, err := openDevice(c, logger)
					if err != nil {
						return err
					}
					defer d.Close()
					pin := c.Int(flagPin)
					if err = d.SetConfig(pin, matrixio.ModeOutput); err != nil {
						return err
					}
					if err = d.GPIO.SetPWM(pin, freq, c.Float64(flagDuty)); err != nil {
						return err
					}
					return d.SetConfig(pin, matrixio.FunctionPWM)
				},
			},
		},
	}
}

func openDevice(c *cli.Context, logger *zap.Logger) (*matrixio.Device, error) {
	opt, err := transportOption(c.String(flagTransport), c.String(flagDevice))
	if err != nil {
		return nil, err
	}
	return matrixio.Open(opt, matrixio.WithLogger(logger))
}

// transportOption maps the transport name and device path to a bus option.
func transportOption(transport, device string) (matrixio.BusOption, error) {
	switch strings.ToLower(transport) {
	case transportRegmap, "":
		if device == "" {
			device = matrixio.RegmapPath
		}
		return matrixio.WithRegmap(device), nil
	case transportSPI:
		if device == "" {
			device = matrixio.SPIPath
		}
		return matrixio.WithSPI(device), nil
	default:
		return nil, errors.Errorf("unknown transport '%s'", transport)
	}
}

// pinConfig returns the config described by exactly one of mode, state or
// function.
func pinConfig(mode, state, function string) (matrixio.PinConfig, error) {
	var cfgs []matrixio.PinConfig
	if mode != "" {
		switch strings.ToLower(mode) {
		case "input", "in":
			cfgs = append(cfgs, matrixio.ModeInput)
		case "output", "out":
			cfgs = append(cfgs, matrixio.ModeOutput)
		default:
			return nil, errors.Errorf("unknown mode '%s'", mode)
		}
	}
	if state != "" {
		switch strings.ToLower(state) {
		case "off", "0", "low":
			cfgs = append(cfgs, matrixio.StateOff)
		case "on", "1", "high":
			cfgs = append(cfgs, matrixio.StateOn)
		default:
			return nil, errors.Errorf("unknown state '%s'", state)
		}
	}
	if function != "" {
		switch strings.ToLower(function) {
		case "digital":
			cfgs = append(cfgs, matrixio.FunctionDigital)
		case "pwm":
			cfgs = append(cfgs, matrixio.FunctionPWM)
		default:
			return nil, errors.Errorf("unknown function '%s'", function)
		}
	}
	if len(cfgs) != 1 {
		return nil, errors.New("exactly one of --mode, --state or --function is required")
	}
	return cfgs[0], nil
}
