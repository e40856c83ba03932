// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package bcm

import (
	"errors"

	"github.com/warthog618/gpiosafe"
)

// ErrNoPulseController indicates the chip has no pulse train controller.
var ErrNoPulseController = errors.New("no pulse train controller")

// Peripherals releases pins from the on-chip peripherals by returning any
// pin still selected to the peripheral's alternate function to GPIO input.
//
// The kernel drivers are left loaded, but can no longer drive the pins.
// Pins the profile marks as critical or invalid are never touched.
type Peripherals struct {
	gpio    *GPIO
	profile *gpiosafe.Profile
}

// NewPeripherals creates the Peripherals for the GPIO block.
func NewPeripherals(g *GPIO, p *gpiosafe.Profile) *Peripherals {
	return &Peripherals{gpio: g, profile: p}
}

// pinFunctions maps a pin to the alternate function that routes it to a
// peripheral.
type pinFunctions map[int]Function

var (
	// PWM0/PWM1
	pwmFunctions = pinFunctions{12: Alt0, 13: Alt0, 18: Alt5, 19: Alt5, 40: Alt0, 41: Alt0, 45: Alt0}
	// I2C1 SDA1/SCL1
	i2cFunctions = pinFunctions{2: Alt0, 3: Alt0}
	// SPI0 CE1, CE0, MISO, MOSI, SCLK
	spiFunctions = pinFunctions{7: Alt0, 8: Alt0, 9: Alt0, 10: Alt0, 11: Alt0}
	// UART2-5 on the BCM2711.  The BCM2835 has no UART beyond the console
	// pair.
	auxUARTFunctions = map[Chip]pinFunctions{
		BCM2711: {0: Alt4, 1: Alt4, 4: Alt4, 5: Alt4, 8: Alt4, 9: Alt4, 12: Alt4, 13: Alt4},
	}
)

func (p *Peripherals) release(pin int, f Function) error {
	if len(p.gpio.mem) == 0 {
		return ErrClosed
	}
	switch p.profile.Classify(pin) {
	case gpiosafe.Critical, gpiosafe.Invalid:
		return nil
	}
	if p.gpio.Function(pin) == f {
		p.gpio.SetFunction(pin, Input)
	}
	return nil
}

func (p *Peripherals) releaseAll(ff pinFunctions) error {
	for pin := 0; pin <= p.profile.MaxPin; pin++ {
		if f, ok := ff[pin]; ok {
			if err := p.release(pin, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// DetachPWM returns the pin to input if it is routed to the PWM.
func (p *Peripherals) DetachPWM(pin int) error {
	f, ok := pwmFunctions[pin]
	if !ok {
		return nil
	}
	return p.release(pin, f)
}

// UninstallPulse always fails as there is no pulse train controller.
func (p *Peripherals) UninstallPulse(ch int) error {
	return ErrNoPulseController
}

// StopI2C releases the I2C1 pins.
func (p *Peripherals) StopI2C() error {
	return p.releaseAll(i2cFunctions)
}

// StopSPI releases the SPI0 pins.
func (p *Peripherals) StopSPI() error {
	return p.releaseAll(spiFunctions)
}

// StopAuxUART releases the pins of the auxiliary UARTs.
func (p *Peripherals) StopAuxUART() error {
	return p.releaseAll(auxUARTFunctions[p.gpio.chip])
}
