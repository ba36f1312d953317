// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package basalt

import (
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	"github.com/holiman/uint256"
)

//go:generate mockgen -source tracer.go -destination tracer_mock.go -package basalt

// Tracer observes the execution of a call. OnStep is invoked synchronously
// after every executed instruction, including the one that caused a fault.
// Tracers must not retain the slices referenced by the step beyond the call.
type Tracer interface {
	OnStep(Step)
}

// Breaker is an optional extension of a Tracer. BeforeStep is invoked before
// the instruction at the given position is executed and may block to pause
// the execution, e.g. at a breakpoint.
type Breaker interface {
	BeforeStep(pc int, op vm.OpCode)
}

// Step describes the effects of a single executed instruction.
type Step struct {
	Pc         int
	Op         vm.OpCode
	GasCost    Gas // static and dynamic gas charged by this step
	GasLeft    Gas
	Stack      []uint256.Int // stack after the step, bottom element first
	MemorySize uint64        // memory size in bytes after the step
	Memory     *MemoryChange
	Storage    *StorageChange
	Err        error
}

// MemoryChange describes a memory write of a single step.
type MemoryChange struct {
	Offset uint64
	Data   []byte
	Size   uint64 // memory size after the step
}

// StorageChange describes a storage write of a single step.
type StorageChange struct {
	Key      Key
	Previous Word
	Current  Word
}
