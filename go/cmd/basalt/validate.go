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
	"github.com/Fantom-foundation/Basalt/go/interpreter/svm"
	"github.com/urfave/cli/v2"
)

var ValidateCmd = cli.Command{
	Action: doValidate,
	Name:   "validate",
	Usage:  "Check call parameters and byte code without executing them",
	Flags: []cli.Flag{
		CodeFlag,
		InputFlag,
		GasFlag,
		ConfigFlag,
		VerbosityFlag,
	},
}

func doValidate(context *cli.Context) error {
	cfg, err := setup(context)
	if err != nil {
		return err
	}
	code, err := CodeFlag.Fetch(context)
	if err != nil {
		return err
	}
	input, err := InputFlag.Fetch(context)
	if err != nil {
		return err
	}
	params := basalt.Parameters{
		Gas:   GasFlag.Fetch(context),
		Code:  code,
		Input: input,
	}
	if err := cfg.ValidationLimits().Check(params); err != nil {
		return err
	}
	analysis, err := svm.Analyze(code)
	if err != nil {
		return fmt.Errorf("invalid code: %w", err)
	}

	out := context.App.Writer
	fmt.Fprintf(out, "code size:         %d bytes\n", len(code))
	fmt.Fprintf(out, "input size:        %d bytes\n", len(input))
	fmt.Fprintf(out, "jump destinations: %v\n", analysis.JumpDests())
	fmt.Fprintln(out, "valid")
	return nil
}
