// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package debug provides tools for inspecting the execution of a call: a
// recording trace with an aggregated summary, and a debugger pausing the
// execution at breakpoints.
package debug

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

// Command tells a paused debugger how to proceed.
type Command int

const (
	Continue Command = iota // < run until the next breakpoint
	StepOnce                // < execute a single instruction and pause again
	Detach                  // < run to the end ignoring all breakpoints
)

func (c Command) String() string {
	switch c {
	case Continue:
		return "continue"
	case StepOnce:
		return "step"
	case Detach:
		return "detach"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// Stop describes a paused execution. The instruction at Pc has not been
// executed yet.
type Stop struct {
	Pc       int
	Op       vm.OpCode
	Executed int           // number of steps executed before the pause
	Stack    []uint256.Int // stack before the paused instruction, bottom first
}

// Debugger is a tracer recording all executed steps and pausing the
// execution before instructions at registered breakpoints. Paused executions
// are handed to the host through Run; a debugger configured with breakpoints
// must not be used outside of Run.
//
// A debugger serves a single session: once detached, it never pauses again.
type Debugger struct {
	Trace

	mutex       sync.Mutex
	breakpoints map[int]struct{}
	stepping    bool
	isDetached  bool

	stops    chan Stop
	resume   chan bool // true to pause at the next instruction
	detached chan struct{}
}

// NewDebugger creates a debugger pausing at the given positions.
func NewDebugger(breakpoints ...int) *Debugger {
	d := &Debugger{
		breakpoints: map[int]struct{}{},
		stops:       make(chan Stop),
		resume:      make(chan bool),
		detached:    make(chan struct{}),
	}
	for _, pc := range breakpoints {
		d.breakpoints[pc] = struct{}{}
	}
	return d
}

func (d *Debugger) AddBreakpoint(pc int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.breakpoints[pc] = struct{}{}
}

func (d *Debugger) RemoveBreakpoint(pc int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	delete(d.breakpoints, pc)
}

// Breakpoints returns the registered breakpoints in ascending order.
func (d *Debugger) Breakpoints() []int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	res := maps.Keys(d.breakpoints)
	slices.Sort(res)
	return res
}

// BeforeStep blocks while the execution is paused at the given position.
func (d *Debugger) BeforeStep(pc int, op vm.OpCode) {
	d.mutex.Lock()
	_, hit := d.breakpoints[pc]
	pause := (hit || d.stepping) && !d.isDetached
	d.mutex.Unlock()
	if !pause {
		return
	}

	stop := Stop{Pc: pc, Op: op}
	if steps := d.Steps(); len(steps) > 0 {
		last := steps[len(steps)-1]
		stop.Executed = len(steps)
		stop.Stack = last.Stack
	}
	select {
	case d.stops <- stop:
	case <-d.detached:
		return
	}
	select {
	case stepping := <-d.resume:
		d.mutex.Lock()
		d.stepping = stepping
		d.mutex.Unlock()
	case <-d.detached:
	}
}

func (d *Debugger) detach() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.isDetached {
		return
	}
	d.isDetached = true
	d.stepping = false
	close(d.detached)
}

// Run executes a call on the given interpreter, which has to be configured
// to report to this debugger, and invokes onStop in the calling goroutine
// whenever the execution pauses. If the context is canceled the debugger
// detaches, the call runs to its end, and its result is returned together
// with the context's error.
func (d *Debugger) Run(
	ctx context.Context,
	interpreter basalt.Interpreter,
	params basalt.Parameters,
	onStop func(Stop) Command,
) (basalt.Result, error) {
	type outcome struct {
		result basalt.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := interpreter.Run(params)
		done <- outcome{result, err}
	}()

	for {
		if err := ctx.Err(); err != nil {
			log.Debug("debug session interrupted", "err", err)
			d.detach()
			res := <-done
			if res.err != nil {
				return res.result, res.err
			}
			return res.result, err
		}
		select {
		case stop := <-d.stops:
			switch cmd := onStop(stop); cmd {
			case StepOnce:
				d.resume <- true
			case Detach:
				d.detach()
			default:
				d.resume <- false
			}
		case res := <-done:
			return res.result, res.err
		case <-ctx.Done():
		}
	}
}
