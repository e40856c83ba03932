// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package gpiosafe_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/gpiosafe"
)

func TestBuiltinsValid(t *testing.T) {
	for _, name := range gpiosafe.Profiles() {
		p, err := gpiosafe.Lookup(name)
		require.Nil(t, err, name)
		assert.Equal(t, name, p.Name)
		assert.Nil(t, p.Validate(), name)
	}
}

func TestLookupUnknown(t *testing.T) {
	p, err := gpiosafe.Lookup("atmega328")
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, gpiosafe.ErrUnknownProfile))
}

func TestLookupReturnsCopy(t *testing.T) {
	p, err := gpiosafe.Lookup("esp32s3")
	require.Nil(t, err)
	p.Critical = nil
	q, err := gpiosafe.Lookup("esp32s3")
	require.Nil(t, err)
	assert.Len(t, q.Critical, 18)
}

func TestClassifyPartition(t *testing.T) {
	for _, name := range gpiosafe.Profiles() {
		p, _ := gpiosafe.Lookup(name)
		for pin := 0; pin <= p.MaxPin; pin++ {
			c := p.Classify(pin)
			// exactly one category holds
			matches := 0
			if c == gpiosafe.Invalid {
				matches++
			}
			for _, cat := range []gpiosafe.Category{
				gpiosafe.Critical,
				gpiosafe.UsbUart,
				gpiosafe.PullupRequired,
				gpiosafe.Default,
			} {
				if c == cat {
					matches++
				}
			}
			assert.Equal(t, 1, matches, "%s pin %d", name, pin)
		}
	}
}

func TestClassifyESP32S3(t *testing.T) {
	p := gpiosafe.ESP32S3()
	patterns := []struct {
		pin int
		cat gpiosafe.Category
	}{
		{0, gpiosafe.PullupRequired},
		{1, gpiosafe.Default},
		{2, gpiosafe.Default},
		{18, gpiosafe.UsbUart},
		{19, gpiosafe.UsbUart},
		{21, gpiosafe.Default},
		{22, gpiosafe.Invalid},
		{25, gpiosafe.Invalid},
		{26, gpiosafe.Critical},
		{39, gpiosafe.Critical},
		{40, gpiosafe.Default},
		{43, gpiosafe.UsbUart},
		{46, gpiosafe.UsbUart},
		{48, gpiosafe.Default},
		{49, gpiosafe.Invalid},
		{-1, gpiosafe.Invalid},
	}
	for _, pp := range patterns {
		assert.Equal(t, pp.cat, p.Classify(pp.pin), "pin %d", pp.pin)
	}
}

func TestClassifyBCM(t *testing.T) {
	p := gpiosafe.BCM2711()
	assert.Equal(t, gpiosafe.PullupRequired, p.Classify(0))
	assert.Equal(t, gpiosafe.PullupRequired, p.Classify(1))
	assert.Equal(t, gpiosafe.Default, p.Classify(4))
	assert.Equal(t, gpiosafe.UsbUart, p.Classify(14))
	assert.Equal(t, gpiosafe.UsbUart, p.Classify(15))
	assert.Equal(t, gpiosafe.Default, p.Classify(27))
	assert.Equal(t, gpiosafe.Critical, p.Classify(28))
	assert.Equal(t, gpiosafe.Critical, p.Classify(57))
	assert.Equal(t, gpiosafe.Invalid, p.Classify(58))
	assert.Equal(t, 54, gpiosafe.BCM2835().Pins())
}

func TestValidate(t *testing.T) {
	patterns := []struct {
		name string
		mod  func(p *gpiosafe.Profile)
	}{
		{"critical-usbuart", func(p *gpiosafe.Profile) { p.UsbUart = append(p.UsbUart, 30) }},
		{"usbuart-pullup", func(p *gpiosafe.Profile) { p.Pullup = append(p.Pullup, 43) }},
		{"critical-pullup", func(p *gpiosafe.Profile) { p.Pullup = append(p.Pullup, 22) }},
		{"range", func(p *gpiosafe.Profile) { p.Critical = append(p.Critical, 49) }},
		{"negative", func(p *gpiosafe.Profile) { p.Invalid = append(p.Invalid, -2) }},
		{"pwm range", func(p *gpiosafe.Profile) { p.PWMPins = append(p.PWMPins, 60) }},
		{"heartbeat critical", func(p *gpiosafe.Profile) { p.Heartbeat = 30 }},
		{"heartbeat special", func(p *gpiosafe.Profile) { p.Heartbeat = 0 }},
		{"pulse", func(p *gpiosafe.Profile) { p.PulseChannels = -1 }},
		{"maxpin", func(p *gpiosafe.Profile) {
			p.MaxPin = -1
		}},
	}
	for _, pp := range patterns {
		p := gpiosafe.ESP32S3()
		pp.mod(p)
		err := p.Validate()
		assert.True(t, errors.Is(err, gpiosafe.ErrInvalidProfile), pp.name)
	}
	// invalid may overlap critical
	p := gpiosafe.ESP32S3()
	p.Invalid = append(p.Invalid, 30)
	assert.Nil(t, p.Validate())
	p.Heartbeat = gpiosafe.NoPin
	assert.Nil(t, p.Validate())
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "critical", gpiosafe.Critical.String())
	assert.Equal(t, "usb/uart", gpiosafe.UsbUart.String())
	assert.Equal(t, "Category(42)", gpiosafe.Category(42).String())
}
