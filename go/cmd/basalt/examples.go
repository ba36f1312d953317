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
	"time"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/examples"
	"github.com/Fantom-foundation/Basalt/go/interpreter/svm"
	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"
)

var ExamplesCmd = cli.Command{
	Action:    doExamples,
	Name:      "examples",
	Usage:     "Run example contracts, check their results, and report execution rates",
	ArgsUsage: "[<example>...]",
	Flags: []cli.Flag{
		RunsFlag,
		ArgumentFlag,
		InterpreterFlag,
		VerbosityFlag,
	},
}

func doExamples(context *cli.Context) error {
	if _, err := setup(context); err != nil {
		return err
	}
	svm.RegisterExperimentalInterpreterConfigurations()
	interpreter, err := basalt.NewInterpreter(context.String(InterpreterFlag.Name))
	if err != nil {
		return fmt.Errorf("%w, available: %v", err, basalt.GetRegisteredInterpreterNames())
	}

	names := context.Args().Slice()
	if len(names) == 0 {
		names = examples.Names()
	}
	runs := max(context.Int(RunsFlag.Name), 1)
	arg := context.Int(ArgumentFlag.Name)

	out := context.App.Writer
	for _, name := range names {
		example, found := examples.Get(name)
		if !found {
			return fmt.Errorf("unknown example %q, available: %v", name, examples.Names())
		}
		want := example.RunReference(arg)
		var gas basalt.Gas
		start := time.Now()
		for i := 0; i < runs; i++ {
			got, err := example.RunOn(interpreter, arg)
			if err != nil {
				return err
			}
			if got.Result != want {
				return fmt.Errorf("example %s: wrong result, wanted %d, got %d", name, want, got.Result)
			}
			gas += got.UsedGas
		}
		seconds := max(time.Since(start).Seconds(), 1e-9)
		fmt.Fprintf(out, "%-16s gas %8d, ~%s runs/s, ~%s gas/s\n",
			name, gas/basalt.Gas(runs),
			unitconv.FormatPrefix(float64(runs)/seconds, unitconv.SI, 0),
			unitconv.FormatPrefix(float64(gas)/seconds, unitconv.SI, 0),
		)
	}
	return nil
}
