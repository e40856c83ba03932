// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package console

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warthog618/gpiosafe"
)

// DefaultYield is the pause between loop iterations.
const DefaultYield = 100 * time.Millisecond

// Loop polls the console until its context is done.
//
// Input is read by a goroutine that is only released when a Read on In
// returns, so if In blocks, such as a terminal, the goroutine outlives Run
// until the next character arrives or In is closed.
type Loop struct {
	Console *Console
	In      io.Reader
	Out     io.Writer
	// Pins drives the heartbeat pin.  Nil disables the heartbeat.
	Pins gpiosafe.Pins
	// Yield is the pause between iterations, DefaultYield if zero.
	Yield time.Duration
	// Now returns the current time, time.Now if nil.
	Now    func() time.Time
	Logger *logrus.Logger
}

// Run polls until ctx is done.
//
// Each iteration handles at most one input character and never blocks on
// input.  On return the heartbeat pin, if driven, is returned to high
// impedance input.
func (l *Loop) Run(ctx context.Context) error {
	now := l.Now
	if now == nil {
		now = time.Now
	}
	yield := l.Yield
	if yield == 0 {
		yield = DefaultYield
	}
	input := l.readInput(ctx)
	hb := l.Console.profile.Heartbeat
	driving := false
	defer func() {
		if driving {
			l.Pins.SetMode(hb, gpiosafe.Input)
			l.Pins.Write(hb, gpiosafe.Low)
		}
	}()
	for {
		var b byte
		ok := false
		select {
		case b, ok = <-input:
		default:
		}
		out := l.Console.Tick(now(), b, ok)
		if out.Heartbeat && l.Pins != nil {
			if !driving {
				l.Pins.Write(hb, out.Level)
				l.Pins.SetMode(hb, gpiosafe.Output)
				driving = true
			} else {
				l.Pins.Write(hb, out.Level)
			}
		}
		if len(out.Text) > 0 {
			if _, err := io.WriteString(l.Out, out.Text); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(yield):
		}
	}
}

// readInput forwards characters from In until it fails or ctx is done.
// The channel is closed on failure.
func (l *Loop) readInput(ctx context.Context) <-chan byte {
	ch := make(chan byte, 16)
	if l.In == nil {
		return ch
	}
	go func() {
		defer close(ch)
		buf := make([]byte, 1)
		for {
			n, err := l.In.Read(buf)
			if n == 1 {
				select {
				case ch <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF && l.Logger != nil {
					l.Logger.WithError(err).Warn("console input failed")
				}
				return
			}
		}
	}()
	return ch
}
