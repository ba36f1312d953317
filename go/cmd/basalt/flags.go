// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/config"
	"github.com/Fantom-foundation/Basalt/go/validation"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

type hexFlagType struct {
	cli.StringFlag
}

func (f *hexFlagType) Fetch(context *cli.Context) ([]byte, error) {
	res, err := validation.ParseHex(context.String(f.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", f.Name, err)
	}
	return res, nil
}

var CodeFlag = &hexFlagType{
	cli.StringFlag{
		Name:     "code",
		Aliases:  []string{"c"},
		Usage:    "hex encoded byte code",
		Required: true,
	},
}

var InputFlag = &hexFlagType{
	cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "hex encoded call data",
	},
}

type gasFlagType struct {
	cli.Int64Flag
}

var GasFlag = &gasFlagType{
	cli.Int64Flag{
		Name:    "gas",
		Aliases: []string{"g"},
		Usage:   "gas limit of the call",
		Value:   1_000_000,
	},
}

func (f *gasFlagType) Fetch(context *cli.Context) basalt.Gas {
	return basalt.Gas(context.Int64(f.Name))
}

type valueFlagType struct {
	cli.StringFlag
}

var ValueFlag = &valueFlagType{
	cli.StringFlag{
		Name:  "value",
		Usage: "value transferred with the call, decimal or 0x prefixed hex",
		Value: "0",
	},
}

func (f *valueFlagType) Fetch(context *cli.Context) (basalt.Value, error) {
	res, err := validation.ParseValue(context.String(f.Name))
	if err != nil {
		return basalt.Value{}, fmt.Errorf("invalid --%s: %w", f.Name, err)
	}
	return res, nil
}

type addressFlagType struct {
	cli.StringFlag
}

func (f *addressFlagType) Fetch(context *cli.Context) (basalt.Address, error) {
	res, err := validation.ParseAddress(context.String(f.Name))
	if err != nil {
		return basalt.Address{}, fmt.Errorf("invalid --%s: %w", f.Name, err)
	}
	return res, nil
}

var CallerFlag = &addressFlagType{
	cli.StringFlag{
		Name:  "caller",
		Usage: "address of the caller, also used as the transaction origin",
		Value: "0x0000000000000000000000000000000000000001",
	},
}

var AddressFlag = &addressFlagType{
	cli.StringFlag{
		Name:  "address",
		Usage: "address of the account owning the code and its storage",
		Value: "0x00000000000000000000000000000000000000aa",
	},
}

var TraceFlag = &cli.BoolFlag{
	Name:  "trace",
	Usage: "record all executed steps and print a summary",
}

var TraceCsvFlag = &cli.StringFlag{
	Name:  "trace-csv",
	Usage: "write the recorded steps to the given CSV file",
}

var StatsFlag = &cli.BoolFlag{
	Name:  "stats",
	Usage: "print instruction statistics",
}

var BreakFlag = &cli.IntSliceFlag{
	Name:  "break",
	Usage: "pause before executing the instruction at the given positions",
}

var RunsFlag = &cli.IntFlag{
	Name:    "runs",
	Aliases: []string{"n"},
	Usage:   "number of runs per example",
	Value:   100,
}

var ArgumentFlag = &cli.IntFlag{
	Name:  "arg",
	Usage: "argument passed to the examples",
	Value: 10,
}

var InterpreterFlag = &cli.StringFlag{
	Name:  "interpreter",
	Usage: "name of the interpreter configuration to use",
	Value: "svm",
}

type configFlagType struct {
	cli.StringFlag
}

var ConfigFlag = &configFlagType{
	cli.StringFlag{
		Name:  "config",
		Usage: "path of a TOML configuration file",
	},
}

// Fetch loads the configuration file, if one is given, and applies the
// verbosity flag on top of it.
func (f *configFlagType) Fetch(context *cli.Context) (config.Config, error) {
	res := config.Default()
	if path := context.String(f.Name); path != "" {
		var err error
		if res, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if context.IsSet(VerbosityFlag.Name) {
		res.Log.Verbosity = context.String(VerbosityFlag.Name)
	}
	return res, nil
}

var VerbosityFlag = &cli.StringFlag{
	Name:  "verbosity",
	Usage: "log level: trace, debug, info, warn, error, or crit",
}

// setup loads the configuration and installs the logger selected by it.
func setup(context *cli.Context) (config.Config, error) {
	cfg, err := ConfigFlag.Fetch(context)
	if err != nil {
		return config.Config{}, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return config.Config{}, err
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(context.App.ErrWriter, level, false)))
	return cfg, nil
}
