// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

// Package sim provides an in-memory chip that records every call made to
// it.
//
// It stands in for real hardware in dry runs and tests.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/gpiosafe"
)

var (
	// ErrNotInstalled is returned when releasing a peripheral that is not
	// active.
	ErrNotInstalled = errors.New("not installed")
)

// Call is a single recorded hardware call.
type Call struct {
	Op  string
	Pin int
	Arg int
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%d,%d)", c.Op, c.Pin, c.Arg)
}

// PinState is the simulated state of one pin.
type PinState struct {
	Mode  gpiosafe.Mode
	Pull  gpiosafe.Pull
	Level gpiosafe.Level
	// Touched is set once any call has been made for the pin.
	Touched bool
}

// Chip is a simulated chip implementing both gpiosafe.Pins and
// gpiosafe.Peripherals.
//
// Peripherals start active so the first release succeeds and later
// releases return ErrNotInstalled, mimicking the ESP-IDF drivers.
type Chip struct {
	mu    sync.Mutex
	calls []Call
	pins  map[int]*PinState
	pwm   map[int]bool
	pulse map[int]bool
	i2c   bool
	spi   bool
	uart  bool
}

// New creates a Chip with every peripheral active, PWM attached to the
// given pins and the given number of pulse channels installed.
func New(pwmPins []int, pulseChannels int) *Chip {
	c := &Chip{
		pins:  make(map[int]*PinState),
		pwm:   make(map[int]bool),
		pulse: make(map[int]bool),
		i2c:   true,
		spi:   true,
		uart:  true,
	}
	for _, p := range pwmPins {
		c.pwm[p] = true
	}
	for ch := 0; ch < pulseChannels; ch++ {
		c.pulse[ch] = true
	}
	return c
}

// NewFromProfile creates a Chip with the peripherals named by the profile
// active.
func NewFromProfile(p *gpiosafe.Profile) *Chip {
	return New(p.PWMPins, p.PulseChannels)
}

func (c *Chip) record(op string, pin, arg int) *PinState {
	c.calls = append(c.calls, Call{Op: op, Pin: pin, Arg: arg})
	ps, ok := c.pins[pin]
	if !ok {
		ps = &PinState{}
		c.pins[pin] = ps
	}
	return ps
}

// SetMode implements gpiosafe.Pins.
func (c *Chip) SetMode(pin int, mode gpiosafe.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps := c.record("mode", pin, int(mode))
	ps.Mode = mode
	ps.Touched = true
}

// SetPull implements gpiosafe.Pins.
func (c *Chip) SetPull(pin int, pull gpiosafe.Pull) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps := c.record("pull", pin, int(pull))
	ps.Pull = pull
	ps.Touched = true
}

// Write implements gpiosafe.Pins.
func (c *Chip) Write(pin int, level gpiosafe.Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	arg := 0
	if level {
		arg = 1
	}
	ps := c.record("write", pin, arg)
	ps.Level = level
	ps.Touched = true
}

// DetachPWM implements gpiosafe.Peripherals.
func (c *Chip) DetachPWM(pin int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: "pwm", Pin: pin})
	if !c.pwm[pin] {
		return fmt.Errorf("pwm on pin %d: %w", pin, ErrNotInstalled)
	}
	delete(c.pwm, pin)
	return nil
}

// UninstallPulse implements gpiosafe.Peripherals.
func (c *Chip) UninstallPulse(ch int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: "pulse", Pin: gpiosafe.NoPin, Arg: ch})
	if !c.pulse[ch] {
		return fmt.Errorf("pulse channel %d: %w", ch, ErrNotInstalled)
	}
	delete(c.pulse, ch)
	return nil
}

// StopI2C implements gpiosafe.Peripherals.
func (c *Chip) StopI2C() error {
	return c.stop("i2c", &c.i2c)
}

// StopSPI implements gpiosafe.Peripherals.
func (c *Chip) StopSPI() error {
	return c.stop("spi", &c.spi)
}

// StopAuxUART implements gpiosafe.Peripherals.
func (c *Chip) StopAuxUART() error {
	return c.stop("uart", &c.uart)
}

func (c *Chip) stop(op string, active *bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: op, Pin: gpiosafe.NoPin})
	if !*active {
		return fmt.Errorf("%s: %w", op, ErrNotInstalled)
	}
	*active = false
	return nil
}

// Calls returns a copy of the calls recorded so far.
func (c *Chip) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// PinCalls returns the recorded pin level calls for a single pin.
func (c *Chip) PinCalls(pin int) []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	var cc []Call
	for _, call := range c.calls {
		switch call.Op {
		case "mode", "pull", "write":
			if call.Pin == pin {
				cc = append(cc, call)
			}
		}
	}
	return cc
}

// Pin returns the state of the pin and whether it has been touched.
func (c *Chip) Pin(pin int) (PinState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps, ok := c.pins[pin]
	if !ok {
		return PinState{}, false
	}
	return *ps, true
}

// Active reports the peripherals still active.
type Active struct {
	PWM   []int
	Pulse []int
	I2C   bool
	SPI   bool
	UART  bool
}

// Active returns the set of peripherals that have not been released.
func (c *Chip) Active() Active {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := Active{I2C: c.i2c, SPI: c.spi, UART: c.uart}
	for p := range c.pwm {
		a.PWM = append(a.PWM, p)
	}
	for ch := range c.pulse {
		a.Pulse = append(a.Pulse, ch)
	}
	return a
}

// Reset clears the recorded calls but not the pin or peripheral state.
func (c *Chip) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}
