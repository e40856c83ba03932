// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tarm/serial"
	"golang.org/x/sys/unix"
)

// terminal is the operator console transport, either the controlling
// terminal or a serial port.
type terminal struct {
	in    io.Reader
	out   io.Writer
	close func() error
}

func (t *terminal) Close() error {
	if t.close == nil {
		return nil
	}
	return t.close()
}

func openTerminal(port string, baud int, logger *logrus.Logger) (*terminal, error) {
	if port != "" {
		s, err := serial.OpenPort(&serial.Config{Name: port, Baud: baud})
		if err != nil {
			return nil, fmt.Errorf("unable to open serial port %s: %w", port, err)
		}
		logger.WithFields(logrus.Fields{"port": port, "baud": baud}).Info("console on serial port")
		return &terminal{in: s, out: s, close: s.Close}, nil
	}
	t := &terminal{in: os.Stdin, out: os.Stdout}
	restore, err := cbreak(int(os.Stdin.Fd()))
	if err != nil {
		// not a tty, so commands are only seen after a newline
		logger.WithError(err).Debug("line buffered console")
		return t, nil
	}
	t.close = restore
	return t, nil
}

// cbreak disables line buffering and echo on the terminal so single key
// commands are seen immediately.  Output processing is left alone.
func cbreak(fd int) (func() error, error) {
	tio, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}
	orig := *tio
	tio.Lflag &^= unix.ICANON | unix.ECHO
	tio.Cc[unix.VMIN] = 1
	tio.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, tio); err != nil {
		return nil, err
	}
	return func() error {
		return unix.IoctlSetTermios(fd, unix.TCSETS, &orig)
	}, nil
}
