// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package debug

import (
	"context"
	"slices"
	"testing"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	"github.com/Fantom-foundation/Basalt/go/interpreter/svm"
	"github.com/Fantom-foundation/Basalt/go/state"
)

// countdown decrements a counter starting at 3 until it reaches zero. The
// loop head is a JUMPDEST at position 2.
var countdown = []byte{
	byte(vm.PUSH1), 3,
	byte(vm.JUMPDEST),
	byte(vm.PUSH1), 1,
	byte(vm.SWAP1),
	byte(vm.SUB),
	byte(vm.DUP1),
	byte(vm.PUSH1), 2,
	byte(vm.JUMPI),
	byte(vm.STOP),
}

func newDebugSession(t *testing.T, breakpoints ...int) (*Debugger, basalt.Interpreter, basalt.Parameters) {
	t.Helper()
	debugger := NewDebugger(breakpoints...)
	interpreter, err := svm.NewInterpreter(svm.Config{Tracer: debugger})
	if err != nil {
		t.Fatalf("failed to create interpreter: %v", err)
	}
	params := basalt.Parameters{
		Context: state.NewInMemory(nil),
		Gas:     1000,
		Code:    countdown,
	}
	return debugger, interpreter, params
}

func checkSuccess(t *testing.T, result basalt.Result) {
	t.Helper()
	if !result.Success {
		t.Fatalf("execution failed: %v", result.Err)
	}
	if want, got := basalt.Gas(81), result.GasUsed; want != got {
		t.Errorf("unexpected gas usage, wanted %d, got %d", want, got)
	}
}

func TestDebugger_PausesAtBreakpoints(t *testing.T) {
	debugger, interpreter, params := newDebugSession(t, 2)

	var stops []Stop
	result, err := debugger.Run(context.Background(), interpreter, params, func(stop Stop) Command {
		stops = append(stops, stop)
		return Continue
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkSuccess(t, result)

	if want, got := 3, len(stops); want != got {
		t.Fatalf("unexpected number of stops, wanted %d, got %d", want, got)
	}
	for i, want := range []int{1, 8, 15} {
		if stops[i].Pc != 2 || stops[i].Op != vm.JUMPDEST {
			t.Errorf("unexpected stop position %d/%v", stops[i].Pc, stops[i].Op)
		}
		if got := stops[i].Executed; want != got {
			t.Errorf("unexpected number of executed steps, wanted %d, got %d", want, got)
		}
	}
	for i, want := range []uint64{3, 2, 1} {
		stack := stops[i].Stack
		if len(stack) != 1 || stack[0].Uint64() != want {
			t.Errorf("unexpected stack at stop %d: %v", i, stack)
		}
	}
	if want, got := 23, len(debugger.Steps()); want != got {
		t.Errorf("unexpected number of recorded steps, wanted %d, got %d", want, got)
	}
}

func TestDebugger_StepOnceAndDetach(t *testing.T) {
	debugger, interpreter, params := newDebugSession(t, 2)

	commands := []Command{StepOnce, Continue, Detach}
	var stops []Stop
	result, err := debugger.Run(context.Background(), interpreter, params, func(stop Stop) Command {
		stops = append(stops, stop)
		if len(stops) > len(commands) {
			t.Fatalf("unexpected stop after detaching: %v", stop)
		}
		return commands[len(stops)-1]
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkSuccess(t, result)

	want := []struct {
		pc       int
		executed int
	}{{2, 1}, {3, 2}, {2, 8}}
	if len(stops) != len(want) {
		t.Fatalf("unexpected stops: %v", stops)
	}
	for i, w := range want {
		if stops[i].Pc != w.pc || stops[i].Executed != w.executed {
			t.Errorf("unexpected stop %d, wanted pc %d after %d steps, got pc %d after %d steps",
				i, w.pc, w.executed, stops[i].Pc, stops[i].Executed)
		}
	}
}

func TestDebugger_CanceledContextDetaches(t *testing.T) {
	debugger, interpreter, params := newDebugSession(t, 0, 2, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := debugger.Run(ctx, interpreter, params, func(stop Stop) Command {
		t.Fatalf("unexpected stop: %v", stop)
		return Continue
	})
	if err != context.Canceled {
		t.Errorf("unexpected error, wanted %v, got %v", context.Canceled, err)
	}
	checkSuccess(t, result)
}

func TestDebugger_CancelWhilePaused(t *testing.T) {
	debugger, interpreter, params := newDebugSession(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stops := 0
	result, err := debugger.Run(ctx, interpreter, params, func(stop Stop) Command {
		stops++
		cancel()
		return Continue
	})
	if err != context.Canceled {
		t.Errorf("unexpected error, wanted %v, got %v", context.Canceled, err)
	}
	if stops != 1 {
		t.Errorf("unexpected number of stops: %d", stops)
	}
	checkSuccess(t, result)
}

func TestDebugger_ManageBreakpoints(t *testing.T) {
	debugger := NewDebugger(5, 1)
	debugger.AddBreakpoint(3)
	debugger.RemoveBreakpoint(5)
	debugger.RemoveBreakpoint(7)
	if want, got := []int{1, 3}, debugger.Breakpoints(); !slices.Equal(want, got) {
		t.Errorf("unexpected breakpoints, wanted %v, got %v", want, got)
	}
}

func TestDebugger_WithoutBreakpointsDoesNotPause(t *testing.T) {
	debugger := NewDebugger()
	for pc := 0; pc < 10; pc++ {
		debugger.BeforeStep(pc, vm.ADD)
	}
}

func TestCommand_String(t *testing.T) {
	tests := map[Command]string{
		Continue:    "continue",
		StepOnce:    "step",
		Detach:      "detach",
		Command(17): "Command(17)",
	}
	for cmd, want := range tests {
		if got := cmd.String(); want != got {
			t.Errorf("unexpected print, wanted %q, got %q", want, got)
		}
	}
}
