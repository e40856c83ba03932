// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/gpiosafe"
	"github.com/warthog618/gpiosafe/bcm"
)

// defaultConfig holds the settings that may come from flags, the
// environment (GPIOSAFE_<KEY>) or the config file.
var defaultConfig = map[string]interface{}{
	"chip":      "auto",
	"delay":     gpiosafe.DefaultDelay.String(),
	"verbosity": 2,
	"settle":    "0s",
	"port":      "",
	"baud":      115200,
	"dryrun":    false,
	"critical":  "",
	"usbuart":   "",
	"pullup":    "",
	"invalid":   "",
	"pwm":       "",
	"pulse":     -1,
	"heartbeat": "",
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"dry-run": "dryrun",
}

// loadConfig layers the explicitly set flags over the environment over
// the config file over the defaults.
func loadConfig(cmd *cobra.Command) *config.Config {
	flags := map[string]interface{}{}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		key := f.Name
		if k, ok := flagKeys[key]; ok {
			key = k
		}
		if key == "config" {
			flags["config"] = map[string]interface{}{"file": f.Value.String()}
			return
		}
		if _, ok := defaultConfig[key]; ok {
			flags[key] = f.Value.String()
		}
	})
	def := dict.New(dict.WithMap(defaultConfig))
	cfg := config.New(
		dict.New(dict.WithMap(flags)),
		env.New(env.WithEnvPrefix("GPIOSAFE_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "gpiosafe.json", json.NewDecoder()))
	return cfg.GetConfig("", config.WithMust)
}

// resolveProfile returns the profile selected by the config, with any pin
// overrides applied, and the BCM chip it corresponds to, if any.
func resolveProfile(cfg *config.Config) (*gpiosafe.Profile, bcm.Chip, error) {
	var p *gpiosafe.Profile
	chip := bcm.Unknown
	name := cfg.MustGet("chip").String()
	if name == "auto" {
		c, err := bcm.Detect()
		if err != nil {
			return nil, bcm.Unknown, fmt.Errorf("unable to detect chip, use --chip: %w", err)
		}
		chip = c
		p, err = c.Profile()
		if err != nil {
			return nil, chip, err
		}
	} else {
		var err error
		p, err = gpiosafe.Lookup(name)
		if err != nil {
			return nil, chip, err
		}
		switch name {
		case "bcm2835":
			chip = bcm.BCM2835
		case "bcm2711":
			chip = bcm.BCM2711
		}
	}
	if err := applyOverrides(cfg, p); err != nil {
		return nil, chip, err
	}
	if err := p.Validate(); err != nil {
		return nil, chip, err
	}
	return p, chip, nil
}

func applyOverrides(cfg *config.Config, p *gpiosafe.Profile) error {
	lists := []struct {
		key  string
		pins *[]int
	}{
		{"critical", &p.Critical},
		{"usbuart", &p.UsbUart},
		{"pullup", &p.Pullup},
		{"invalid", &p.Invalid},
		{"pwm", &p.PWMPins},
	}
	for _, l := range lists {
		s := cfg.MustGet(l.key).String()
		switch s {
		case "":
			continue
		case "none":
			*l.pins = nil
			continue
		}
		pins, err := gpiosafe.ParsePinList(s)
		if err != nil {
			return fmt.Errorf("%s: %w", l.key, err)
		}
		*l.pins = pins
	}
	if n := cfg.MustGet("pulse").Int(); n >= 0 {
		p.PulseChannels = n
	}
	switch hb := cfg.MustGet("heartbeat").String(); hb {
	case "":
	case "none":
		p.Heartbeat = gpiosafe.NoPin
	default:
		pin, err := strconv.ParseUint(hb, 10, 16)
		if err != nil {
			return fmt.Errorf("can't parse heartbeat pin '%s'", hb)
		}
		p.Heartbeat = int(pin)
	}
	return nil
}

// runSettings are the settings used by the run command.
type runSettings struct {
	Delay     time.Duration
	Verbosity int
	Settle    time.Duration
	Port      string
	Baud      int
	DryRun    bool
}

func loadRunSettings(cfg *config.Config) runSettings {
	return runSettings{
		Delay:     cfg.MustGet("delay").Duration(),
		Verbosity: cfg.MustGet("verbosity").Int(),
		Settle:    cfg.MustGet("settle").Duration(),
		Port:      cfg.MustGet("port").String(),
		Baud:      cfg.MustGet("baud").Int(),
		DryRun:    cfg.MustGet("dryrun").Bool(),
	}
}
