// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package bcm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warthog618/gpiosafe"
	"github.com/warthog618/gpiosafe/bcm"
)

func TestDetachPWM(t *testing.T) {
	mem := newRegs()
	g := bcm.New(mem, bcm.BCM2711)
	p := bcm.NewPeripherals(g, gpiosafe.BCM2711())
	g.SetFunction(18, bcm.Alt5)
	g.SetFunction(12, bcm.Output)
	g.SetFunction(40, bcm.Alt0)

	assert.Nil(t, p.DetachPWM(18))
	assert.Equal(t, bcm.Input, g.Function(18))
	// not routed to PWM so left alone
	assert.Nil(t, p.DetachPWM(12))
	assert.Equal(t, bcm.Output, g.Function(12))
	// critical on the Pi
	assert.Nil(t, p.DetachPWM(40))
	assert.Equal(t, bcm.Alt0, g.Function(40))
	// no PWM function
	assert.Nil(t, p.DetachPWM(4))
	// again
	assert.Nil(t, p.DetachPWM(18))
	assert.Equal(t, bcm.Input, g.Function(18))
}

func TestStopBuses(t *testing.T) {
	mem := newRegs()
	g := bcm.New(mem, bcm.BCM2711)
	p := bcm.NewPeripherals(g, gpiosafe.BCM2711())
	for _, pin := range []int{2, 3, 7, 8, 9, 10, 11} {
		g.SetFunction(pin, bcm.Alt0)
	}
	g.SetFunction(4, bcm.Alt4)
	g.SetFunction(5, bcm.Alt4)
	g.SetFunction(14, bcm.Alt0)

	assert.Nil(t, p.StopI2C())
	assert.Equal(t, bcm.Input, g.Function(2))
	assert.Equal(t, bcm.Input, g.Function(3))
	assert.Equal(t, bcm.Alt0, g.Function(7))

	assert.Nil(t, p.StopSPI())
	for _, pin := range []int{7, 8, 9, 10, 11} {
		assert.Equal(t, bcm.Input, g.Function(pin), pin)
	}

	assert.Nil(t, p.StopAuxUART())
	assert.Equal(t, bcm.Input, g.Function(4))
	assert.Equal(t, bcm.Input, g.Function(5))
	// console UART untouched
	assert.Equal(t, bcm.Alt0, g.Function(14))

	// idempotent
	assert.Nil(t, p.StopI2C())
	assert.Nil(t, p.StopSPI())
	assert.Nil(t, p.StopAuxUART())
}

func TestStopAuxUART2835(t *testing.T) {
	mem := newRegs()
	g := bcm.New(mem, bcm.BCM2835)
	p := bcm.NewPeripherals(g, gpiosafe.BCM2835())
	g.SetFunction(4, bcm.Alt4)
	assert.Nil(t, p.StopAuxUART())
	assert.Equal(t, bcm.Alt4, g.Function(4))
}

func TestUninstallPulse(t *testing.T) {
	g := bcm.New(newRegs(), bcm.BCM2711)
	p := bcm.NewPeripherals(g, gpiosafe.BCM2711())
	assert.Equal(t, bcm.ErrNoPulseController, p.UninstallPulse(0))
}

func TestPeripheralsClosed(t *testing.T) {
	g := bcm.New(newRegs(), bcm.BCM2711)
	p := bcm.NewPeripherals(g, gpiosafe.BCM2711())
	g.Close()
	assert.Equal(t, bcm.ErrClosed, p.StopI2C())
	assert.Equal(t, bcm.ErrClosed, p.DetachPWM(18))
}

func TestShutdown(t *testing.T) {
	mem := newRegs()
	g := bcm.New(mem, bcm.BCM2711)
	prof := gpiosafe.BCM2711()
	g.SetFunction(18, bcm.Alt5)
	g.SetFunction(2, bcm.Alt0)
	gpiosafe.Shutdown(prof, bcm.NewPeripherals(g, prof))
	assert.Equal(t, bcm.Input, g.Function(18))
	assert.Equal(t, bcm.Input, g.Function(2))
	gpiosafe.Shutdown(prof, bcm.NewPeripherals(g, prof))
	assert.Equal(t, bcm.Input, g.Function(18))
}
