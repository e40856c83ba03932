// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

// Package gpiosafe places the GPIO pins of a chip into a known-safe
// electrical state, typically before the board is reprogrammed.
//
// Supports:
// - Classifying pins by a chip profile (invalid, critical, USB/UART,
//   pull-up required, default)
// - Safing every pin according to its class
// - Releasing on-chip peripherals that may still drive pins
//
// Example of use:
//
// 	p := gpiosafe.BCM2711()
// 	r := gpiosafe.Secure(p, pins, gpiosafe.WithDelay(10*time.Millisecond))
// 	gpiosafe.Shutdown(p, periph)
// 	fmt.Println(r.Safe, r.Special, r.Skipped)
//
// The hardware is accessed only through the Pins and Peripherals
// interfaces, so the same logic serves real chips and simulations.
package gpiosafe

import (
	"errors"
	"fmt"
	"sort"
)

// NoPin indicates the absence of a pin, e.g. a profile without a
// heartbeat LED.
const NoPin = -1

// Category is the safing class of a pin.
type Category int

const (
	// Invalid pins are not physically present or not controllable.
	Invalid Category = iota
	// Critical pins are wired to flash, PSRAM or other system essentials
	// and must never be reconfigured.
	Critical
	// UsbUart pins carry the programming transport and must not float.
	UsbUart
	// PullupRequired pins must read high to satisfy a boot strapping contract.
	PullupRequired
	// Default pins are placed in high impedance input.
	Default
)

var categoryNames = map[Category]string{
	Invalid:        "invalid",
	Critical:       "critical",
	UsbUart:        "usb/uart",
	PullupRequired: "pullup",
	Default:        "default",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Profile describes the pin map of a particular chip and package.
//
// A Profile is treated as immutable once validated.
type Profile struct {
	Name string
	// MaxPin is the highest pin index, inclusive.
	MaxPin int
	// Invalid pins are absent or unbonded on the package.
	Invalid []int
	// Critical, UsbUart and Pullup are the category membership sets and
	// must be pairwise disjoint.
	Critical []int
	UsbUart  []int
	Pullup   []int
	// PWMPins are the candidate pins to detach from the PWM generator.
	PWMPins []int
	// PulseChannels is the number of channels of the pulse train
	// controller, e.g. the ESP32 RMT.
	PulseChannels int
	// Heartbeat is the pin toggled while idling, or NoPin.
	Heartbeat int
}

var (
	// ErrInvalidProfile indicates a profile violates one of its invariants.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrUnknownProfile indicates no built-in profile has the requested name.
	ErrUnknownProfile = errors.New("unknown profile")
)

// Validate checks the profile invariants.
func (p *Profile) Validate() error {
	if p.MaxPin < 0 {
		return fmt.Errorf("%w: negative max pin %d", ErrInvalidProfile, p.MaxPin)
	}
	sets := []struct {
		name string
		pins []int
	}{
		{"invalid", p.Invalid},
		{"critical", p.Critical},
		{"usbuart", p.UsbUart},
		{"pullup", p.Pullup},
		{"pwm", p.PWMPins},
	}
	for _, s := range sets {
		for _, pin := range s.pins {
			if pin < 0 || pin > p.MaxPin {
				return fmt.Errorf("%w: %s pin %d outside 0-%d", ErrInvalidProfile, s.name, pin, p.MaxPin)
			}
		}
	}
	owner := make(map[int]string)
	for _, s := range sets[1:4] {
		for _, pin := range s.pins {
			if o, ok := owner[pin]; ok && o != s.name {
				return fmt.Errorf("%w: pin %d in both %s and %s", ErrInvalidProfile, pin, o, s.name)
			}
			owner[pin] = s.name
		}
	}
	if p.PulseChannels < 0 {
		return fmt.Errorf("%w: negative pulse channel count %d", ErrInvalidProfile, p.PulseChannels)
	}
	if p.Heartbeat != NoPin {
		if c := p.Classify(p.Heartbeat); c != Default {
			return fmt.Errorf("%w: heartbeat pin %d is %s", ErrInvalidProfile, p.Heartbeat, c)
		}
	}
	return nil
}

// Classify returns the category of the pin.
//
// The checks are ordered, so a pin that is both invalid and critical is
// Invalid.  Pins outside 0-MaxPin are Invalid.
func (p *Profile) Classify(pin int) Category {
	switch {
	case pin < 0 || pin > p.MaxPin || contains(p.Invalid, pin):
		return Invalid
	case contains(p.Critical, pin):
		return Critical
	case contains(p.UsbUart, pin):
		return UsbUart
	case contains(p.Pullup, pin):
		return PullupRequired
	}
	return Default
}

// Pins returns the number of pin indices covered by the profile.
func (p *Profile) Pins() int {
	return p.MaxPin + 1
}

func contains(pins []int, pin int) bool {
	for _, p := range pins {
		if p == pin {
			return true
		}
	}
	return false
}

// ESP32S3 returns the profile of the ESP32-S3 with octal flash/PSRAM.
func ESP32S3() *Profile {
	return &Profile{
		Name:   "esp32s3",
		MaxPin: 48,
		// GPIO22-25 are not bonded out on the S3.
		Invalid:  pinRange(22, 25),
		Critical: pinRange(22, 39),
		// U0TXD, U0RXD, USB D-/D+ and the USB OTG pair.
		UsbUart: []int{18, 19, 43, 44, 45, 46},
		// GPIO0 selects download mode so must stay high.
		Pullup:        []int{0},
		PWMPins:       []int{2, 4, 5, 12, 13, 14, 15, 18, 19, 21, 22, 23, 25, 26, 27, 32, 33},
		PulseChannels: 8,
		Heartbeat:     2,
	}
}

// BCM2835 returns the profile of the BCM2835/6/7 used on the Raspberry Pi
// prior to the Pi 4.
//
// The console UART pins, GPIO14 and GPIO15, are safed to inputs, so the
// serial console on the header stops working.
func BCM2835() *Profile {
	return bcmProfile("bcm2835", 53)
}

// BCM2711 returns the profile of the BCM2711 used on the Raspberry Pi 4.
//
// As with BCM2835, the header serial console is lost once safed.
func BCM2711() *Profile {
	return bcmProfile("bcm2711", 57)
}

func bcmProfile(name string, maxPin int) *Profile {
	return &Profile{
		Name:   name,
		MaxPin: maxPin,
		// Banks 1 and 2 are wired on-board to SD, WiFi, ethernet and PMIC.
		Critical: pinRange(28, maxPin),
		// UART0 serial console.  Safing returns these to input, which
		// detaches the PL011 from the header, so a console run over
		// /dev/serial0 loses its transport.
		UsbUart: []int{14, 15},
		// ID EEPROM bus, read by the firmware at boot.
		Pullup:    []int{0, 1},
		PWMPins:   []int{12, 13, 18, 19},
		Heartbeat: NoPin,
	}
}

var builtins = map[string]func() *Profile{
	"esp32s3": ESP32S3,
	"bcm2835": BCM2835,
	"bcm2711": BCM2711,
}

// Lookup returns a fresh copy of the named built-in profile.
func Lookup(name string) (*Profile, error) {
	if f, ok := builtins[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// Profiles returns the names of the built-in profiles, sorted.
func Profiles() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func pinRange(first, last int) []int {
	pins := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		pins = append(pins, p)
	}
	return pins
}
