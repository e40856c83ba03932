// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package gpiosafe

import (
	"github.com/sirupsen/logrus"
)

// Peripherals is the interface to the on-chip controllers that can drive
// pins independently of the GPIO block.
//
// Releasing a peripheral that is already inactive must be a no-op.
// Implementations may return an error, but Shutdown ignores it.
type Peripherals interface {
	// DetachPWM disconnects the PWM generator from the pin.
	DetachPWM(pin int) error
	// UninstallPulse uninstalls a channel of the pulse train controller.
	UninstallPulse(ch int) error
	// StopI2C shuts down the two-wire bus controller.
	StopI2C() error
	// StopSPI shuts down the primary SPI controller.
	StopSPI() error
	// StopAuxUART shuts down the auxiliary UART, leaving the console UART
	// running.
	StopAuxUART() error
}

// Step identifies a stage of the peripheral shutdown.
type Step int

const (
	// StepPWM detaches the PWM generator from each candidate pin.
	StepPWM Step = iota
	// StepPulse uninstalls each pulse train channel.
	StepPulse
	// StepI2C stops the I2C controller.
	StepI2C
	// StepSPI stops the SPI controller.
	StepSPI
	// StepAuxUART stops the auxiliary UART.
	StepAuxUART
)

var stepText = map[Step]string{
	StepPWM:     "PWM detached",
	StepPulse:   "Pulse controllers uninstalled",
	StepI2C:     "I2C stopped",
	StepSPI:     "SPI stopped",
	StepAuxUART: "Aux UART stopped",
}

func (s Step) String() string {
	return stepText[s]
}

// Shutdown releases every peripheral listed by the profile, in order: PWM
// pins, pulse channels, I2C, SPI then the auxiliary UART.
//
// This is best effort.  Errors from the peripherals are logged at debug
// level, if a logger is provided, and otherwise dropped so that the caller
// always reaches the monitoring state.  Shutdown may be called repeatedly.
func Shutdown(p *Profile, periph Peripherals, oo ...Option) {
	o := newOptions(oo)
	for _, pin := range p.PWMPins {
		o.swallow(StepPWM, periph.DetachPWM(pin), logrus.Fields{"pin": pin})
	}
	o.done(StepPWM)
	for ch := 0; ch < p.PulseChannels; ch++ {
		o.swallow(StepPulse, periph.UninstallPulse(ch), logrus.Fields{"channel": ch})
	}
	o.done(StepPulse)
	o.swallow(StepI2C, periph.StopI2C(), nil)
	o.done(StepI2C)
	o.swallow(StepSPI, periph.StopSPI(), nil)
	o.done(StepSPI)
	o.swallow(StepAuxUART, periph.StopAuxUART(), nil)
	o.done(StepAuxUART)
}

func (o *options) swallow(s Step, err error, f logrus.Fields) {
	if err == nil || o.logger == nil {
		return
	}
	o.logger.WithFields(f).WithField("step", s.String()).Debugf("ignored: %s", err)
}

func (o *options) done(s Step) {
	if o.onStep != nil {
		o.onStep(s)
	}
}
