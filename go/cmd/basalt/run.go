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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/debug"
	"github.com/Fantom-foundation/Basalt/go/interpreter/svm"
	"github.com/Fantom-foundation/Basalt/go/state"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

var RunCmd = cli.Command{
	Action: doRun,
	Name:   "run",
	Usage:  "Execute byte code in a fresh in-memory state",
	Flags: []cli.Flag{
		CodeFlag,
		InputFlag,
		GasFlag,
		ValueFlag,
		CallerFlag,
		AddressFlag,
		TraceFlag,
		TraceCsvFlag,
		StatsFlag,
		BreakFlag,
		ConfigFlag,
		VerbosityFlag,
	},
}

func doRun(context *cli.Context) error {
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
	value, err := ValueFlag.Fetch(context)
	if err != nil {
		return err
	}
	caller, err := CallerFlag.Fetch(context)
	if err != nil {
		return err
	}
	address, err := AddressFlag.Fetch(context)
	if err != nil {
		return err
	}
	gas := GasFlag.Fetch(context)

	world := state.NewInMemory(nil)
	world.SetCode(address, code)
	world.SetBalance(address, value)
	params := world.CallParameters(address, gas)
	params.Sender = caller
	params.Origin = caller
	params.Input = input
	params.Value = value
	params.ChainID = basalt.Word(uint256.NewInt(1).Bytes32())
	params.BlockNumber = 1
	params.GasLimit = basalt.Gas(cfg.Limits.MaxGas)

	if err := cfg.ValidationLimits().Check(params); err != nil {
		return err
	}

	interpreterConfig := cfg.InterpreterConfig()
	breakpoints := context.IntSlice(BreakFlag.Name)
	csvPath := context.String(TraceCsvFlag.Name)
	var debugger *debug.Debugger
	if context.Bool(TraceFlag.Name) || csvPath != "" || len(breakpoints) > 0 {
		debugger = debug.NewDebugger(breakpoints...)
		interpreterConfig.Tracer = debugger
	}
	var stats *svm.Statistics
	if context.Bool(StatsFlag.Name) {
		stats = svm.NewStatistics()
		interpreterConfig.Statistics = stats
	}
	interpreter, err := svm.NewInterpreter(interpreterConfig)
	if err != nil {
		return err
	}

	out := context.App.Writer
	call := atomicCall{world: world, interpreter: interpreter}
	log.Debug("running code", "size", len(code), "gas", gas, "address", address)
	var result basalt.Result
	if len(breakpoints) > 0 {
		ctx, stop := signal.NotifyContext(context.Context, os.Interrupt)
		defer stop()
		result, err = debugger.Run(ctx, call, params, newPrompt(context.App.Reader, out))
		if err != nil && ctx.Err() == nil {
			return err
		}
		if err != nil {
			fmt.Fprintf(out, "interrupted, ran to completion without breakpoints\n")
		}
	} else if result, err = call.Run(params); err != nil {
		return err
	}

	printResult(out, result)
	printStorage(out, world.Accounts()[address].Storage)
	if debugger != nil && context.Bool(TraceFlag.Name) {
		fmt.Fprintf(out, "\n%v", debugger.Summary())
	}
	if csvPath != "" {
		if err := writeTrace(csvPath, debugger); err != nil {
			return err
		}
	}
	if stats != nil {
		fmt.Fprintf(out, "\n%s", stats.Summary())
	}
	return nil
}

// atomicCall runs calls in a state, reverting all updates of calls that did
// not end successfully.
type atomicCall struct {
	world       *state.InMemory
	interpreter basalt.Interpreter
}

func (c atomicCall) Run(params basalt.Parameters) (basalt.Result, error) {
	return c.world.RunAtomic(c.interpreter, params)
}

func printResult(out io.Writer, result basalt.Result) {
	fmt.Fprintf(out, "status:   %v\n", result.Status)
	fmt.Fprintf(out, "gas used: %d\n", result.GasUsed)
	fmt.Fprintf(out, "gas left: %d\n", result.GasLeft)
	fmt.Fprintf(out, "output:   %s\n", hexutil.Encode(result.Output))
	if result.Err != nil {
		fmt.Fprintf(out, "error:    %v\n", result.Err)
	}
}

func printStorage(out io.Writer, storage state.Storage) {
	keys := maps.Keys(storage)
	slices.SortFunc(keys, func(a, b basalt.Key) int {
		return bytes.Compare(a[:], b[:])
	})
	for _, key := range keys {
		fmt.Fprintf(out, "storage:  %v = %v\n", key, storage[key])
	}
}

func writeTrace(path string, trace *debug.Debugger) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	if err := trace.WriteCSV(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write trace: %w", err)
	}
	return file.Close()
}

// newPrompt creates a handler for paused executions reading commands line by
// line from the given input. The end of the input detaches the debugger.
func newPrompt(in io.Reader, out io.Writer) func(debug.Stop) debug.Command {
	scanner := bufio.NewScanner(in)
	return func(stop debug.Stop) debug.Command {
		fmt.Fprintf(out, "paused at %d (%v) after %d steps, stack: %s\n",
			stop.Pc, stop.Op, stop.Executed, formatStack(stop.Stack))
		for {
			fmt.Fprint(out, "[c]ontinue, [s]tep, [d]etach > ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return debug.Detach
			}
			switch strings.TrimSpace(scanner.Text()) {
			case "", "c", "continue":
				return debug.Continue
			case "s", "step":
				return debug.StepOnce
			case "d", "detach":
				return debug.Detach
			}
			fmt.Fprintln(out, "unknown command")
		}
	}
}

func formatStack(stack []uint256.Int) string {
	if len(stack) == 0 {
		return "[]"
	}
	elements := make([]string, 0, len(stack))
	for i := range stack {
		elements = append(elements, stack[i].Hex())
	}
	return "[" + strings.Join(elements, " ") + "]"
}
