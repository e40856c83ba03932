// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "undefined"

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("chip", "C", "auto", "chip profile, or auto to detect")
	pf.StringP("config", "c", "", "JSON config file")
	pf.String("log-level", "warning", "log level (debug|info|warning|error)")
	pf.String("critical", "", "override the critical pins, e.g. 22-39")
	pf.String("usbuart", "", "override the USB/UART pins, e.g. 18-19,43-46")
	pf.String("pullup", "", "override the pull-up required pins")
	pf.String("invalid", "", "override the invalid pins")
	pf.String("pwm", "", "override the PWM candidate pins")
	pf.Int("pulse", -1, "override the pulse train channel count")
	pf.String("heartbeat", "", "override the heartbeat pin, or none")
}

var rootCmd = &cobra.Command{
	Use:   "gpiosafe",
	Short: "gpiosafe places GPIO pins into a safe state for reprogramming",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level)
	return l, nil
}
