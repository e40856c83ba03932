// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package bcm

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

var (
	// guards the single mapping of the hardware
	openMu sync.Mutex
	opened bool
)

// Open memory maps the GPIO registers from /dev/gpiomem.
//
// The chip is detected from the device tree.  Only one GPIO may be open
// at a time.
func Open() (*GPIO, error) {
	chip, err := Detect()
	if err != nil {
		return nil, err
	}
	return OpenChip(chip)
}

// OpenChip memory maps the GPIO registers, assuming the given chip.
func OpenChip(chip Chip) (*GPIO, error) {
	openMu.Lock()
	defer openMu.Unlock()
	if opened {
		return nil, ErrAlreadyOpen
	}
	fd, err := unix.Open("/dev/gpiomem", unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to open /dev/gpiomem: %w", err)
	}
	// fd can be closed after memory mapping
	defer unix.Close(fd)

	mem8, err := unix.Mmap(
		fd,
		0,
		memLength,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("unable to mmap /dev/gpiomem: %w", err)
	}
	// 32 bit registers, so 4 bytes each
	mem := unsafe.Slice((*uint32)(unsafe.Pointer(&mem8[0])), len(mem8)/4)
	opened = true
	g := New(mem, chip)
	g.unmap = func() error {
		openMu.Lock()
		defer openMu.Unlock()
		opened = false
		return unix.Munmap(mem8)
	}
	return g, nil
}
