// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package gpiosafe

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Level represents the high (true) or low (false) level of a pin.
type Level bool

// Mode defines the IO direction of a pin.
type Mode int

// Pull defines the pull up/down state of a pin.
type Pull int

// Level of pin, High / Low
const (
	Low  Level = false
	High Level = true
)

// Pin Mode, a pin can be set in Input or Output mode
const (
	Input Mode = iota
	Output
)

// Pull Up / Down / Off
const (
	PullNone Pull = iota
	PullDown
	PullUp
)

// Pins is the pin level hardware interface used to safe a chip.
//
// Implementations treat every call for a valid pin as successful.
type Pins interface {
	// SetMode sets the direction of the pin.
	SetMode(pin int, mode Mode)
	// SetPull sets the pull up/down resistor of the pin.
	SetPull(pin int, pull Pull)
	// Write sets the output latch of the pin.
	Write(pin int, level Level)
}

// Outcome is the state of a pin after safing.
type Outcome int

const (
	// Skipped pins were not touched.
	Skipped Outcome = iota
	// HighZInput pins are inputs with no pull and the latch low.
	HighZInput
	// HighZInputWithPullup pins are inputs with the pull-up enabled.
	HighZInputWithPullup
)

// PinEvent reports the handling of a single pin during Secure.
type PinEvent struct {
	Pin      int
	Category Category
	Outcome  Outcome
}

var eventText = map[Category]string{
	Invalid:        "Skip: Invalid GPIO",
	Critical:       "Skip: Critical system pin",
	UsbUart:        "INPUT (USB/UART)",
	PullupRequired: "INPUT_PULLUP",
	Default:        "INPUT (High-Z)",
}

// String returns the console form of the event, e.g. "GPIO04: INPUT (High-Z)".
func (e PinEvent) String() string {
	return fmt.Sprintf("GPIO%02d: %s", e.Pin, eventText[e.Category])
}

// Result is the summary of a safing pass.
type Result struct {
	// Safe pins were placed in high impedance input.
	Safe int
	// Special pins were USB/UART or pull-up required.
	Special int
	// Skipped pins were invalid or critical.
	Skipped int
}

// Total returns the number of pins visited.
func (r Result) Total() int {
	return r.Safe + r.Special + r.Skipped
}

// DefaultDelay is the pause after each reconfigured pin, bounding the
// transient current when many capacitive loads are released together.
const DefaultDelay = 10 * time.Millisecond

// Option modifies the behaviour of Secure and Shutdown.
type Option func(*options)

type options struct {
	delay  time.Duration
	sleep  func(time.Duration)
	logger *logrus.Logger
	onPin  func(PinEvent)
	onStep func(Step)
}

func newOptions(oo []Option) options {
	o := options{
		delay: DefaultDelay,
		sleep: time.Sleep,
	}
	for _, opt := range oo {
		opt(&o)
	}
	return o
}

// WithDelay sets the pause after each reconfigured pin.  Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		o.delay = d
	}
}

// WithSleeper replaces time.Sleep, allowing the delays to be observed.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(o *options) {
		o.sleep = sleep
	}
}

// WithLogger attaches a logger for debug output.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithPinObserver registers a function called for each pin, in ascending
// pin order, after the pin has been handled.
func WithPinObserver(f func(PinEvent)) Option {
	return func(o *options) {
		o.onPin = f
	}
}

// WithStepObserver registers a function called after each peripheral
// shutdown step.
func WithStepObserver(f func(Step)) Option {
	return func(o *options) {
		o.onStep = f
	}
}

// Secure visits every pin of the profile, from 0 to MaxPin, and places it
// in the safe state for its category.
//
// Invalid and critical pins are never touched.  The pass always runs to
// completion.
func Secure(p *Profile, pins Pins, oo ...Option) Result {
	o := newOptions(oo)
	var r Result
	for pin := 0; pin <= p.MaxPin; pin++ {
		evt := PinEvent{Pin: pin, Category: p.Classify(pin)}
		switch evt.Category {
		case Invalid, Critical:
			r.Skipped++
		case UsbUart:
			highZ(pins, pin)
			evt.Outcome = HighZInput
			r.Special++
		case PullupRequired:
			pins.SetMode(pin, Input)
			pins.SetPull(pin, PullUp)
			evt.Outcome = HighZInputWithPullup
			r.Special++
		default:
			highZ(pins, pin)
			evt.Outcome = HighZInput
			r.Safe++
		}
		if o.logger != nil {
			o.logger.WithFields(logrus.Fields{
				"pin":      pin,
				"category": evt.Category.String(),
			}).Debug(eventText[evt.Category])
		}
		if o.onPin != nil {
			o.onPin(evt)
		}
		if evt.Outcome != Skipped && o.delay > 0 {
			o.sleep(o.delay)
		}
	}
	return r
}

func highZ(pins Pins, pin int) {
	pins.SetMode(pin, Input)
	pins.SetPull(pin, PullNone)
	pins.Write(pin, Low)
}
