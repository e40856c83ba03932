// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warthog618/gpiosafe"
)

func init() {
	classifyCmd.Flags().BoolVarP(&classifyOpts.Short, "short", "s", false, "single line output format")
	classifyCmd.SetHelpTemplate(classifyCmd.HelpTemplate() + extendedClassifyHelp)
	rootCmd.AddCommand(classifyCmd)
}

var (
	classifyCmd = &cobra.Command{
		Use:     "classify [<pins>...]",
		Short:   "Show the safing category of a pin or pins",
		Example: "  gpiosafe classify --chip esp32s3 0 18-22",
		RunE:    classify,
	}
	classifyOpts = struct {
		Short bool
	}{}
)

var extendedClassifyHelp = `
Pins:
  Pins may be identified by number or inclusive range (e.g. 18-22).
  All pins of the profile are shown if none are given.

The hardware is not accessed.
`

func classify(cmd *cobra.Command, args []string) error {
	p, _, err := resolveProfile(loadConfig(cmd))
	if err != nil {
		return err
	}
	var oo []int
	if len(args) == 0 {
		oo = make([]int, p.Pins())
		for i := range oo {
			oo[i] = i
		}
	} else {
		oo, err = gpiosafe.ParsePinList(strings.Join(args, ","))
		if err != nil {
			return err
		}
		for _, o := range oo {
			if o > p.MaxPin {
				return fmt.Errorf("unknown pin '%d'", o)
			}
		}
	}
	cc := make([]gpiosafe.Category, len(oo))
	for i, o := range oo {
		cc[i] = p.Classify(o)
	}
	if classifyOpts.Short {
		printCategoriesShort(cmd.OutOrStdout(), cc)
	} else {
		printCategories(cmd.OutOrStdout(), oo, cc)
	}
	return nil
}

func printCategories(w io.Writer, oo []int, cc []gpiosafe.Category) {
	for i, o := range oo {
		fmt.Fprintf(w, "pin %2d: %s\n", o, cc[i])
	}
}

func printCategoriesShort(w io.Writer, cc []gpiosafe.Category) {
	if len(cc) == 0 {
		return
	}
	fmt.Fprintf(w, "%s", cc[0])
	for _, c := range cc[1:] {
		fmt.Fprintf(w, " %s", c)
	}
	fmt.Fprintln(w)
}
