// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

// Package console provides the operator console shown once the pins have
// been safed.
//
// The console is a state machine driven by Tick, which takes the current
// time and at most one input character and returns the text to display.
// Loop drives Tick from a real clock and input stream.
package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/warthog618/gpiosafe"
)

const (
	// HeartbeatPeriod is the interval between heartbeat toggles.
	HeartbeatPeriod = time.Second
	// StatusPeriod is the interval between periodic status checks.
	StatusPeriod = 30 * time.Second
)

// Output is the result of a Tick.
type Output struct {
	// Text to display, possibly empty.
	Text string
	// Heartbeat is set when the heartbeat pin should be written with Level.
	Heartbeat bool
	Level     gpiosafe.Level
}

// Console is the state of the operator console.
//
// Nothing in the console alters the pins beyond the heartbeat, or the
// result of the safing pass.
type Console struct {
	profile       *gpiosafe.Profile
	result        gpiosafe.Result
	start         time.Time
	lastHeartbeat time.Time
	lastStatus    time.Time
	led           gpiosafe.Level
	verbose       bool
}

// New creates a Console for the result of a safing pass, starting at
// start.
func New(p *gpiosafe.Profile, r gpiosafe.Result, start time.Time, verbose bool) *Console {
	return &Console{
		profile:       p,
		result:        r,
		start:         start,
		lastHeartbeat: start,
		lastStatus:    start,
		verbose:       verbose,
	}
}

// Verbose returns the verbose mode.  The mode is reported by the v command
// but does not alter the console output.
func (c *Console) Verbose() bool {
	return c.verbose
}

// Result returns the result of the safing pass being reported.
func (c *Console) Result() gpiosafe.Result {
	return c.result
}

// Tick advances the console to now, handling the input character in if
// ok is set.
func (c *Console) Tick(now time.Time, in byte, ok bool) Output {
	var out Output
	var sb strings.Builder
	if now.Sub(c.lastHeartbeat) > HeartbeatPeriod {
		c.lastHeartbeat = now
		if c.profile.Heartbeat != gpiosafe.NoPin {
			out.Heartbeat = true
			out.Level = c.led
			c.led = !c.led
		}
	}
	if now.Sub(c.lastStatus) > StatusPeriod {
		c.lastStatus = now
		WriteStatusCheck(&sb, now.Sub(c.start))
	}
	if ok {
		c.command(&sb, in)
	}
	out.Text = sb.String()
	return out
}

func (c *Console) command(sb *strings.Builder, cmd byte) {
	switch cmd {
	case 's', 'S':
		WriteStatus(sb, c.profile, c.result)
	case 'v', 'V':
		c.verbose = !c.verbose
		mode := "OFF"
		if c.verbose {
			mode = "ON"
		}
		fmt.Fprintf(sb, "\nVerbose mode: %s\n", mode)
	case 'r', 'R':
		WriteResetReminder(sb)
	case '?', 'h', 'H':
		WriteHelp(sb)
	}
}
