// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/warthog618/gpiosafe"
)

func init() {
	rootCmd.AddCommand(profilesCmd)
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in chip profiles",
	Args:  cobra.NoArgs,
	RunE:  profiles,
}

func profiles(cmd *cobra.Command, args []string) error {
	for _, name := range gpiosafe.Profiles() {
		p, err := gpiosafe.Lookup(name)
		if err != nil {
			return err
		}
		printProfile(cmd.OutOrStdout(), p)
	}
	return nil
}

func printProfile(w io.Writer, p *gpiosafe.Profile) {
	hb := "none"
	if p.Heartbeat != gpiosafe.NoPin {
		hb = fmt.Sprintf("%d", p.Heartbeat)
	}
	fmt.Fprintf(w, "%s:\n", p.Name)
	fmt.Fprintf(w, "  pins:      0-%d\n", p.MaxPin)
	fmt.Fprintf(w, "  invalid:   %s\n", orNone(p.Invalid))
	fmt.Fprintf(w, "  critical:  %s\n", orNone(p.Critical))
	fmt.Fprintf(w, "  usbuart:   %s\n", orNone(p.UsbUart))
	fmt.Fprintf(w, "  pullup:    %s\n", orNone(p.Pullup))
	fmt.Fprintf(w, "  pwm:       %s\n", orNone(p.PWMPins))
	fmt.Fprintf(w, "  pulse:     %d\n", p.PulseChannels)
	fmt.Fprintf(w, "  heartbeat: %s\n", hb)
}

func orNone(pins []int) string {
	if len(pins) == 0 {
		return "none"
	}
	return gpiosafe.FormatPinList(pins)
}
