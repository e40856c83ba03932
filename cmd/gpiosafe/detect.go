// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warthog618/gpiosafe/bcm"
)

func init() {
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Identify the GPIO chip",
	Args:  cobra.NoArgs,
	RunE:  detect,
}

func detect(cmd *cobra.Command, args []string) error {
	chip, err := bcm.Detect()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), chip)
	return nil
}
