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
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

// Trace is a tracer recording every step of the observed calls. Recorded
// steps are deep copies, so they remain valid after OnStep returns.
type Trace struct {
	mutex sync.Mutex
	steps []basalt.Step
}

func NewTrace() *Trace {
	return &Trace{}
}

func (t *Trace) OnStep(step basalt.Step) {
	step.Stack = slices.Clone(step.Stack)
	if step.Memory != nil {
		memory := *step.Memory
		memory.Data = slices.Clone(memory.Data)
		step.Memory = &memory
	}
	if step.Storage != nil {
		storage := *step.Storage
		step.Storage = &storage
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.steps = append(t.steps, step)
}

// Steps returns the steps recorded so far.
func (t *Trace) Steps() []basalt.Step {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return slices.Clone(t.steps)
}

func (t *Trace) numSteps() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.steps)
}

// Reset drops all recorded steps.
func (t *Trace) Reset() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.steps = nil
}

// Summary aggregates the recorded steps.
func (t *Trace) Summary() Summary {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	res := Summary{
		Steps:           len(t.steps),
		OpcodeFrequency: map[vm.OpCode]int{},
		GasByOpcode:     map[vm.OpCode]basalt.Gas{},
	}
	keys := map[basalt.Key]struct{}{}
	for _, step := range t.steps {
		res.GasUsed += step.GasCost
		res.OpcodeFrequency[step.Op]++
		res.GasByOpcode[step.Op] += step.GasCost
		res.PeakMemory = max(res.PeakMemory, step.MemorySize)
		if step.Memory != nil {
			res.MemoryWrites++
		}
		if step.Storage != nil {
			keys[step.Storage.Key] = struct{}{}
			if step.Storage.Previous != step.Storage.Current {
				res.StorageWrites++
			}
		}
		if step.Err != nil {
			res.FailedSteps++
		}
	}
	res.StorageKeys = len(keys)

	ops := maps.Keys(res.OpcodeFrequency)
	slices.Sort(ops)
	for _, op := range ops {
		if count := res.OpcodeFrequency[op]; count > res.MostFrequentCount {
			res.MostFrequent, res.MostFrequentCount = op, count
		}
	}
	return res
}

// WriteCSV writes one line per recorded step, preceded by a header line.
func (t *Trace) WriteCSV(out io.Writer) error {
	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"pc", "op", "gas_cost", "gas_left", "stack_size", "memory_size", "top", "error"}); err != nil {
		return err
	}
	for _, step := range t.Steps() {
		topText := ""
		if value := top(step); value != nil {
			topText = value.Hex()
		}
		errText := ""
		if step.Err != nil {
			errText = step.Err.Error()
		}
		record := []string{
			strconv.Itoa(step.Pc),
			step.Op.String(),
			strconv.FormatInt(int64(step.GasCost), 10),
			strconv.FormatInt(int64(step.GasLeft), 10),
			strconv.Itoa(len(step.Stack)),
			strconv.FormatUint(step.MemorySize, 10),
			topText,
			errText,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Summary is an aggregated view of a recorded trace.
type Summary struct {
	Steps             int
	GasUsed           basalt.Gas // sum of the gas charged by all steps
	FailedSteps       int
	PeakMemory        uint64
	MemoryWrites      int
	StorageWrites     int // writes changing the stored value
	StorageKeys       int // distinct slots written
	OpcodeFrequency   map[vm.OpCode]int
	GasByOpcode       map[vm.OpCode]basalt.Gas
	MostFrequent      vm.OpCode // lowest op code among equally frequent ones
	MostFrequentCount int
}

func (s Summary) String() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "steps:          %d\n", s.Steps)
	fmt.Fprintf(&builder, "gas used:       %d\n", s.GasUsed)
	fmt.Fprintf(&builder, "failed steps:   %d\n", s.FailedSteps)
	fmt.Fprintf(&builder, "peak memory:    %d bytes\n", s.PeakMemory)
	fmt.Fprintf(&builder, "memory writes:  %d\n", s.MemoryWrites)
	fmt.Fprintf(&builder, "storage writes: %d (%d slots)\n", s.StorageWrites, s.StorageKeys)
	fmt.Fprintf(&builder, "unique opcodes: %d\n", len(s.OpcodeFrequency))
	if s.MostFrequentCount > 0 {
		fmt.Fprintf(&builder, "most frequent:  %v (%d times)\n", s.MostFrequent, s.MostFrequentCount)
	}

	ops := maps.Keys(s.GasByOpcode)
	slices.SortFunc(ops, func(a, b vm.OpCode) int {
		if res := cmp.Compare(s.GasByOpcode[b], s.GasByOpcode[a]); res != 0 {
			return res
		}
		return cmp.Compare(a, b)
	})
	if len(ops) > 0 {
		builder.WriteString("gas by opcode:\n")
	}
	for _, op := range ops {
		fmt.Fprintf(&builder, "  %-14v %d (%d times)\n", op, s.GasByOpcode[op], s.OpcodeFrequency[op])
	}
	return builder.String()
}

// top returns the top of the stack of a step, or nil if it is empty.
func top(step basalt.Step) *uint256.Int {
	if len(step.Stack) == 0 {
		return nil
	}
	return &step.Stack[len(step.Stack)-1]
}
