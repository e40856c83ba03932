// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/warthog618/gpiosafe"
)

// Verbosity levels for Printer.
const (
	Quiet = iota
	Normal
	Verbose
)

// Printer writes lines at or below its verbosity level.
type Printer struct {
	W     io.Writer
	Level int
}

// Printf writes the formatted line if level is enabled.
func (p Printer) Printf(level int, format string, a ...interface{}) {
	if level > p.Level {
		return
	}
	fmt.Fprintf(p.W, format+"\n", a...)
}

var rule = strings.Repeat("=", 80)

// WriteBanner writes the start-up banner.
func WriteBanner(w io.Writer, p *gpiosafe.Profile, version string) {
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "          %s SAFE MODE FLASHER\n", strings.ToUpper(p.Name))
	fmt.Fprintf(w, "          %s | MIT License\n", version)
	fmt.Fprintln(w, rule)
}

// WriteStatus writes the summary of the safing pass and the guidance for
// the operator.
func WriteStatus(w io.Writer, p *gpiosafe.Profile, r gpiosafe.Result) {
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "%s SAFE MODE FLASHER\n", strings.ToUpper(p.Name))
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\n STATUS SUMMARY:\n")
	fmt.Fprintf(w, "   Safe GPIO pins:    %2d\n", r.Safe)
	fmt.Fprintf(w, "   Special pins:      %2d\n", r.Special)
	fmt.Fprintf(w, "   Skipped pins:      %2d\n", r.Skipped)
	fmt.Fprintf(w, "   Total pins:        %2d\n", r.Total())

	fmt.Fprintln(w, "\n CURRENT STATE:")
	fmt.Fprintln(w, "  • All GPIOs in high-impedance INPUT")
	fmt.Fprintln(w, "  • No pull-up/pull-down resistors active")
	fmt.Fprintln(w, "  • All peripherals (PWM/RMT/I2C/SPI) disabled")
	fmt.Fprintln(w, "  • System in low-power safe state")

	fmt.Fprintln(w, "\n NEXT STEPS:")
	fmt.Fprintln(w, "  1. Upload your main firmware")
	fmt.Fprintln(w, "  2. Press RESET button")
	fmt.Fprintln(w, "  3. Or power cycle the board")

	fmt.Fprintln(w, "\n  WARNING:")
	for _, pin := range p.Pullup {
		fmt.Fprintf(w, "  • GPIO%d must stay HIGH for normal boot\n", pin)
	}
	if len(p.UsbUart) > 0 {
		fmt.Fprintf(w, "  • Do not connect anything to USB/UART pins (%s)\n", gpiosafe.FormatPinList(p.UsbUart))
	}
	if len(p.Critical) > 0 {
		fmt.Fprintf(w, "  • Critical pins (%s) are untouched\n", gpiosafe.FormatPinList(p.Critical))
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "System is READY for safe programming")
	fmt.Fprintf(w, "%s\n\n", rule)
}

// WriteHelp writes the list of console commands.
func WriteHelp(w io.Writer) {
	fmt.Fprintln(w, "\n COMMANDS:")
	fmt.Fprintln(w, "  s - Show status")
	fmt.Fprintln(w, "  v - Toggle verbose mode")
	fmt.Fprintln(w, "  r - Reset reminder")
	fmt.Fprintln(w, "  h - This help")
}

// WriteResetReminder reminds the operator that the board must be reset
// by hand.
func WriteResetReminder(w io.Writer) {
	fmt.Fprintln(w, "\n  Simulating reset...")
	fmt.Fprintln(w, "(In real hardware, press RESET button)")
}

// WriteStatusCheck writes the periodic status line.
func WriteStatusCheck(w io.Writer, uptime time.Duration) {
	fmt.Fprintln(w, "\n[STATUS CHECK] System still in safe mode.")
	fmt.Fprintf(w, "  Uptime: %d seconds\n", int64(uptime/time.Second))
	fmt.Fprintln(w, "  Ready for firmware upload.")
}
