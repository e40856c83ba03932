// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package bcm

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/warthog618/gpiosafe"
)

// Chip identifies the GPIO controller.
type Chip int

const (
	// Unknown is an unrecognised chip.
	Unknown Chip = iota
	// BCM2835 covers the BCM2835, BCM2836 and BCM2837, which share a GPIO
	// block.
	BCM2835
	// BCM2711 is the Raspberry Pi 4 SoC.
	BCM2711
)

func (c Chip) String() string {
	switch c {
	case BCM2835:
		return "bcm2835"
	case BCM2711:
		return "bcm2711"
	}
	return "unknown"
}

// Profile returns the safing profile for the chip.
func (c Chip) Profile() (*gpiosafe.Profile, error) {
	switch c {
	case BCM2835:
		return gpiosafe.BCM2835(), nil
	case BCM2711:
		return gpiosafe.BCM2711(), nil
	}
	return nil, ErrUnknownChip
}

// ErrUnknownChip indicates the platform is not a supported Raspberry Pi.
var ErrUnknownChip = errors.New("unknown chip")

// CompatiblePath is where the device tree lists the machine compatibles.
var CompatiblePath = "/proc/device-tree/compatible"

// Detect identifies the chip from the device tree.
func Detect() (Chip, error) {
	dt, err := os.ReadFile(CompatiblePath)
	if err != nil {
		return Unknown, fmt.Errorf("unable to read device tree: %w", err)
	}
	return ParseCompatible(dt)
}

// ParseCompatible identifies the chip from a NUL separated device tree
// compatible list, e.g. "raspberrypi,4-model-b\x00brcm,bcm2711\x00".
func ParseCompatible(dt []byte) (Chip, error) {
	for _, c := range bytes.Split(dt, []byte{0}) {
		switch string(c) {
		case "brcm,bcm2711":
			return BCM2711, nil
		case "brcm,bcm2835", "brcm,bcm2836", "brcm,bcm2837":
			return BCM2835, nil
		}
	}
	return Unknown, ErrUnknownChip
}
