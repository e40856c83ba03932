// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package gpiosafe_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/gpiosafe"
	"github.com/warthog618/gpiosafe/sim"
)

func TestSecureESP32S3(t *testing.T) {
	p := gpiosafe.ESP32S3()
	c := sim.NewFromProfile(p)
	r := gpiosafe.Secure(p, c, gpiosafe.WithDelay(0))
	// 22-25 invalid, 26-39 critical
	assert.Equal(t, 18, r.Skipped)
	assert.Equal(t, 7, r.Special)
	assert.Equal(t, 24, r.Safe)
	assert.Equal(t, 49, r.Total())
}

func TestSecureInvalidOutsideCritical(t *testing.T) {
	p := gpiosafe.ESP32S3()
	p.Invalid = append(p.Invalid, 47, 48)
	c := sim.NewFromProfile(p)
	r := gpiosafe.Secure(p, c, gpiosafe.WithDelay(0))
	assert.Equal(t, 20, r.Skipped)
	assert.Equal(t, 7, r.Special)
	assert.Equal(t, 22, r.Safe)
}

func TestSecureConservation(t *testing.T) {
	for _, name := range gpiosafe.Profiles() {
		p, _ := gpiosafe.Lookup(name)
		r := gpiosafe.Secure(p, sim.NewFromProfile(p), gpiosafe.WithDelay(0))
		assert.Equal(t, p.Pins(), r.Total(), name)
	}
}

func TestSecureCriticalUntouched(t *testing.T) {
	for _, name := range gpiosafe.Profiles() {
		p, _ := gpiosafe.Lookup(name)
		c := sim.NewFromProfile(p)
		gpiosafe.Secure(p, c, gpiosafe.WithDelay(0))
		for pin := 0; pin <= p.MaxPin; pin++ {
			switch p.Classify(pin) {
			case gpiosafe.Critical, gpiosafe.Invalid:
				assert.Empty(t, c.PinCalls(pin), "%s pin %d", name, pin)
			default:
				assert.NotEmpty(t, c.PinCalls(pin), "%s pin %d", name, pin)
			}
		}
	}
}

func TestSecurePinStates(t *testing.T) {
	p := gpiosafe.ESP32S3()
	c := sim.NewFromProfile(p)
	gpiosafe.Secure(p, c, gpiosafe.WithDelay(0))

	s, ok := c.Pin(0)
	require.True(t, ok)
	assert.Equal(t, gpiosafe.Input, s.Mode)
	assert.Equal(t, gpiosafe.PullUp, s.Pull)

	for _, pin := range []int{4, 18, 44} {
		s, ok = c.Pin(pin)
		require.True(t, ok)
		assert.Equal(t, gpiosafe.Input, s.Mode, pin)
		assert.Equal(t, gpiosafe.PullNone, s.Pull, pin)
		assert.Equal(t, gpiosafe.Low, s.Level, pin)
	}
	_, ok = c.Pin(30)
	assert.False(t, ok)

	// pull-up pins never have their latch written
	for _, call := range c.PinCalls(0) {
		assert.NotEqual(t, "write", call.Op)
	}
}

func TestSecureOrder(t *testing.T) {
	p := gpiosafe.BCM2711()
	var events []gpiosafe.PinEvent
	gpiosafe.Secure(p, sim.NewFromProfile(p),
		gpiosafe.WithDelay(0),
		gpiosafe.WithPinObserver(func(e gpiosafe.PinEvent) {
			events = append(events, e)
		}))
	require.Len(t, events, p.Pins())
	for i, e := range events {
		assert.Equal(t, i, e.Pin)
	}
}

func TestSecureCallsAscend(t *testing.T) {
	p := gpiosafe.ESP32S3()
	c := sim.NewFromProfile(p)
	gpiosafe.Secure(p, c, gpiosafe.WithDelay(0))
	calls := c.Calls()
	require.NotEmpty(t, calls)
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i].Pin, calls[i-1].Pin)
	}
}

func TestSecureDelay(t *testing.T) {
	p := gpiosafe.ESP32S3()
	var slept []time.Duration
	r := gpiosafe.Secure(p, sim.NewFromProfile(p),
		gpiosafe.WithSleeper(func(d time.Duration) {
			slept = append(slept, d)
		}))
	// only reconfigured pins are followed by a delay
	assert.Len(t, slept, r.Safe+r.Special)
	for _, d := range slept {
		assert.Equal(t, gpiosafe.DefaultDelay, d)
	}

	slept = nil
	gpiosafe.Secure(p, sim.NewFromProfile(p),
		gpiosafe.WithDelay(0),
		gpiosafe.WithSleeper(func(d time.Duration) {
			slept = append(slept, d)
		}))
	assert.Empty(t, slept)
}

func TestSecureLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	p := gpiosafe.ESP32S3()
	gpiosafe.Secure(p, sim.NewFromProfile(p), gpiosafe.WithDelay(0), gpiosafe.WithLogger(l))
	assert.Contains(t, buf.String(), "Skip: Critical system pin")
	assert.Contains(t, buf.String(), "INPUT_PULLUP")
}

func TestPinEventString(t *testing.T) {
	patterns := []struct {
		evt  gpiosafe.PinEvent
		text string
	}{
		{gpiosafe.PinEvent{Pin: 3, Category: gpiosafe.Default}, "GPIO03: INPUT (High-Z)"},
		{gpiosafe.PinEvent{Pin: 0, Category: gpiosafe.PullupRequired}, "GPIO00: INPUT_PULLUP"},
		{gpiosafe.PinEvent{Pin: 43, Category: gpiosafe.UsbUart}, "GPIO43: INPUT (USB/UART)"},
		{gpiosafe.PinEvent{Pin: 22, Category: gpiosafe.Invalid}, "GPIO22: Skip: Invalid GPIO"},
		{gpiosafe.PinEvent{Pin: 30, Category: gpiosafe.Critical}, "GPIO30: Skip: Critical system pin"},
	}
	for _, pp := range patterns {
		assert.Equal(t, pp.text, pp.evt.String())
	}
}
