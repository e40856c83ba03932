// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warthog618/gpiosafe"
	"github.com/warthog618/gpiosafe/bcm"
	"github.com/warthog618/gpiosafe/console"
	"github.com/warthog618/gpiosafe/sim"
)

func init() {
	runCmd.Flags().Duration("delay", gpiosafe.DefaultDelay, "pause after each reconfigured pin")
	runCmd.Flags().Int("verbosity", console.Verbose, "0 quiet, 1 normal, 2 per pin detail")
	runCmd.Flags().Duration("settle", 0, "wait before starting, e.g. for a serial host to connect")
	runCmd.Flags().StringP("port", "p", "", "serve the console on this serial port instead of the terminal, not the Pi header UART")
	runCmd.Flags().IntP("baud", "b", 115200, "serial port speed")
	runCmd.Flags().BoolP("dry-run", "n", false, "simulate the hardware")
	runCmd.SetHelpTemplate(runCmd.HelpTemplate() + extendedRunHelp)
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Safe all pins then monitor",
	Long:    `Place every pin into its safe state, release the peripherals, then idle on an operator console until interrupted.`,
	Args:    cobra.NoArgs,
	RunE:    run,
	Example: "  gpiosafe run --chip esp32s3 --dry-run",
}

var extendedRunHelp = `
Console commands:
  s  show status
  v  toggle verbose mode
  r  reset reminder
  h  help

On a Raspberry Pi the console UART pins (GPIO14 and GPIO15) are safed to
inputs, so --port must name a USB serial adapter, not /dev/serial0.

Settings may also be provided by the environment, e.g. GPIOSAFE_DELAY=0s,
or by a JSON config file.
`

func run(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	cfg := loadConfig(cmd)
	prof, chip, err := resolveProfile(cfg)
	if err != nil {
		return err
	}
	rs := loadRunSettings(cfg)

	hw, err := openHardware(prof, chip, rs.DryRun)
	if err != nil {
		return err
	}
	defer hw.Close()

	term, err := openTerminal(rs.Port, rs.Baud, logger)
	if err != nil {
		return err
	}
	defer term.Close()

	time.Sleep(rs.Settle)
	out := term.out
	pr := console.Printer{W: out, Level: rs.Verbosity}
	console.WriteBanner(out, prof, version)

	pr.Printf(console.Normal, "\n Starting safety procedures...")
	pr.Printf(console.Normal, "\n Securing GPIO pins...")
	r := gpiosafe.Secure(prof, hw.pins,
		gpiosafe.WithDelay(rs.Delay),
		gpiosafe.WithLogger(logger),
		gpiosafe.WithPinObserver(func(e gpiosafe.PinEvent) {
			pr.Printf(console.Verbose, "  %s", e)
		}))
	pr.Printf(console.Normal, " All pins secured")

	pr.Printf(console.Normal, "\n Disabling peripherals...")
	gpiosafe.Shutdown(prof, hw.periph,
		gpiosafe.WithLogger(logger),
		gpiosafe.WithStepObserver(func(s gpiosafe.Step) {
			pr.Printf(console.Verbose, "  %s", s)
		}))
	pr.Printf(console.Normal, " All peripherals disabled")

	console.WriteStatus(out, prof, r)
	pr.Printf(console.Normal, "Safety mode active. Monitoring...")
	logger.WithFields(logrus.Fields{
		"profile": prof.Name,
		"safe":    r.Safe,
		"special": r.Special,
		"skipped": r.Skipped,
	}).Info("pins secured")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	l := console.Loop{
		Console: newConsole(prof, r, rs, time.Now()),
		In:      term.in,
		Out:     out,
		Pins:    hw.pins,
		Logger:  logger,
	}
	if err := l.Run(ctx); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if hw.sim != nil {
		logger.WithField("calls", len(hw.sim.Calls())).Info("dry run complete")
	}
	return nil
}

// newConsole starts the console in verbose mode when the run is verbose.
func newConsole(p *gpiosafe.Profile, r gpiosafe.Result, rs runSettings, start time.Time) *console.Console {
	return console.New(p, r, start, rs.Verbosity >= console.Verbose)
}

type hardware struct {
	pins   gpiosafe.Pins
	periph gpiosafe.Peripherals
	sim    *sim.Chip
	closer io.Closer
}

func (h *hardware) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}

func openHardware(p *gpiosafe.Profile, chip bcm.Chip, dryRun bool) (*hardware, error) {
	if dryRun {
		c := sim.NewFromProfile(p)
		return &hardware{pins: c, periph: c, sim: c}, nil
	}
	if chip == bcm.Unknown {
		return nil, fmt.Errorf("no hardware backend for %s, use --dry-run", p.Name)
	}
	g, err := bcm.OpenChip(chip)
	if err != nil {
		return nil, err
	}
	return &hardware{pins: g, periph: bcm.NewPeripherals(g, p), closer: g}, nil
}
