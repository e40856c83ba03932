// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

// Package bcm provides register level GPIO access on the Raspberry Pi
// BCM2835 family and BCM2711.
//
// The GPIO block is memory mapped from /dev/gpiomem, so no root access is
// required.  GPIO implements gpiosafe.Pins and Peripherals implements
// gpiosafe.Peripherals.
//
// Pins are identified by their BCM GPIO number, not the J8 header position.
//
// See the datasheet for full details of the BCM2835 controller:
// http://www.raspberrypi.org/wp-content/uploads/2012/02/BCM2835-ARM-Peripherals.pdf
package bcm

import (
	"errors"
	"sync"
	"time"

	"github.com/warthog618/gpiosafe"
)

// Function is the value of the function select field of a pin.
type Function int

// Function select values, in register encoding order.
const (
	Input Function = iota
	Output
	Alt5
	Alt4
	Alt0
	Alt1
	Alt2
	Alt3
)

var functionNames = map[Function]string{
	Input:  "input",
	Output: "output",
	Alt0:   "alt0",
	Alt1:   "alt1",
	Alt2:   "alt2",
	Alt3:   "alt3",
	Alt4:   "alt4",
	Alt5:   "alt5",
}

func (f Function) String() string {
	return functionNames[f]
}

const (
	memLength = 4096

	modeMask uint32 = 7 // pin mode is 3 bits wide
	pullMask uint32 = 3 // pull mode is 2 bits wide
	// BCM2835 pullReg is the same for all pins.
	pullReg2835 = 37
	// BCM2711 pull registers start here, 16 pins per register.
	pullReg2711 = 57
)

var (
	// ErrAlreadyOpen indicates the mem is already open.
	ErrAlreadyOpen = errors.New("already open")
	// ErrClosed indicates the GPIO has been closed.
	ErrClosed = errors.New("closed")
)

// GPIO is a memory mapped GPIO register block.
type GPIO struct {
	// mu covers read/modify/write access to mem.
	// Individual reads and writes skip the lock on the assumption that
	// register writes are atomic. e.g. Read and Write.
	mu   sync.Mutex
	mem  []uint32
	chip Chip
	// unmap releases the mapping, if any.
	unmap func() error
}

// New wraps an existing register block.
//
// This is mainly useful for testing, as Open maps the real hardware.
func New(mem []uint32, chip Chip) *GPIO {
	return &GPIO{mem: mem, chip: chip}
}

// Chip returns the chip the registers belong to.
func (g *GPIO) Chip() Chip {
	return g.chip
}

// MaxPin returns the highest GPIO number on the chip.
func (g *GPIO) MaxPin() int {
	if g.chip == BCM2711 {
		return 57
	}
	return 53
}

// Close releases the register mapping.
func (g *GPIO) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mem = nil
	if g.unmap == nil {
		return nil
	}
	unmap := g.unmap
	g.unmap = nil
	return unmap()
}

func (g *GPIO) valid(pin int) bool {
	return len(g.mem) != 0 && pin >= 0 && pin <= g.MaxPin()
}

func bankMask(pin int) (int, uint32) {
	return pin / 32, uint32(1) << uint(pin&0x1f)
}

// SetMode sets the pin to input or output.
func (g *GPIO) SetMode(pin int, mode gpiosafe.Mode) {
	f := Input
	if mode == gpiosafe.Output {
		f = Output
	}
	g.SetFunction(pin, f)
}

// SetFunction sets the function select of the pin.
func (g *GPIO) SetFunction(pin int, f Function) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(pin) {
		return
	}
	// Pin fsel register, 0 - 5 depending on pin
	fsel := pin / 10
	// shift for pin mode field within fsel register.
	modeShift := uint(pin%10) * 3
	g.mem[fsel] = g.mem[fsel]&^(modeMask<<modeShift) | uint32(f)<<modeShift
}

// Function returns the function select of the pin.
func (g *GPIO) Function(pin int) Function {
	if !g.valid(pin) {
		return Input
	}
	modeShift := uint(pin%10) * 3
	return Function(g.mem[pin/10] >> modeShift & modeMask)
}

// Read returns the level of the pin.
func (g *GPIO) Read(pin int) gpiosafe.Level {
	if !g.valid(pin) {
		return gpiosafe.Low
	}
	bank, mask := bankMask(pin)
	// Input level register offset (13 / 14 depending on bank)
	return gpiosafe.Level(g.mem[13+bank]&mask != 0)
}

// Write sets the output latch of the pin.
func (g *GPIO) Write(pin int, level gpiosafe.Level) {
	if !g.valid(pin) {
		return
	}
	bank, mask := bankMask(pin)
	if level == gpiosafe.Low {
		// Clear register, 10 / 11 depending on bank
		g.mem[10+bank] = mask
	} else {
		// Set register, 7 / 8 depending on bank
		g.mem[7+bank] = mask
	}
}

// SetPull sets the pull up/down mode for a pin.
// Unlike the mode, the pull value cannot be read back from the BCM2835
// and so must be remembered by the caller.
func (g *GPIO) SetPull(pin int, pull gpiosafe.Pull) {
	if !g.valid(pin) {
		return
	}
	switch g.chip {
	case BCM2711:
		g.setPull2711(pin, pull)
	default:
		g.setPull2835(pin, pull)
	}
}

func (g *GPIO) setPull2835(pin int, pull gpiosafe.Pull) {
	bank, mask := bankMask(pin)
	clkReg := bank + 38
	g.mu.Lock()
	defer g.mu.Unlock()

	// Values match bcm pull field.
	g.mem[pullReg2835] = g.mem[pullReg2835]&^pullMask | uint32(pull)
	// Wait for value to clock in, this is ugly, sorry :(
	// This wait corresponds to at least 150 clock cycles.
	time.Sleep(time.Microsecond)
	g.mem[clkReg] = mask
	// Wait for value to clock in
	time.Sleep(time.Microsecond)
	g.mem[pullReg2835] = g.mem[pullReg2835] &^ pullMask
	g.mem[clkReg] = 0
}

func (g *GPIO) setPull2711(pin int, pull gpiosafe.Pull) {
	// 2711 reverses up/down sense
	switch pull {
	case gpiosafe.PullUp:
		pull = gpiosafe.PullDown
	case gpiosafe.PullDown:
		pull = gpiosafe.PullUp
	}
	reg := pullReg2711 + pin/16
	shift := uint(pin&0x0f) << 1
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mem[reg] = g.mem[reg]&^(pullMask<<shift) | uint32(pull)<<shift
}

// Pull returns the pull of the pin.
// Only the BCM2711 supports reading back the pull, so PullNone is
// returned for other chips.
func (g *GPIO) Pull(pin int) gpiosafe.Pull {
	if !g.valid(pin) || g.chip != BCM2711 {
		return gpiosafe.PullNone
	}
	shift := uint(pin&0x0f) << 1
	pull := gpiosafe.Pull(g.mem[pullReg2711+pin/16] >> shift & pullMask)
	switch pull {
	case gpiosafe.PullUp:
		return gpiosafe.PullDown
	case gpiosafe.PullDown:
		return gpiosafe.PullUp
	}
	return pull
}
