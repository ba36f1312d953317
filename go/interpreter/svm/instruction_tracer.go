// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package svm

import (
	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
)

// tracingRunner is a runner reporting every executed step to a tracer. If
// the tracer is also a breaker, it is consulted before every step.
type tracingRunner struct {
	tracer  basalt.Tracer
	breaker basalt.Breaker // nil if the tracer does not implement it
	stats   *Statistics    // nil if no statistics are collected
}

func (r tracingRunner) run(c *context) status {
	var collector *statsCollector
	if r.stats != nil {
		collector = newStatsCollector()
		defer r.stats.insert(collector.stats)
	}

	status := statusRunning
	for status == statusRunning {
		if c.pc >= len(c.code) {
			return statusStopped
		}
		pc, op := c.pc, vm.OpCode(c.code[c.pc])
		if r.breaker != nil {
			r.breaker.BeforeStep(pc, op)
		}

		gasBefore := c.gas
		memory, hasMemory := pendingMemoryWrite(c, op)
		storage := pendingStorageWrite(c, op)

		status = step(c)

		record := basalt.Step{
			Pc:         pc,
			Op:         op,
			GasCost:    gasBefore - c.gas,
			GasLeft:    c.gas,
			Stack:      c.stack.snapshot(),
			MemorySize: c.memory.length(),
		}
		if status == statusFailed {
			record.Err = c.fault
		} else {
			if hasMemory && memory.size > 0 {
				record.Memory = &basalt.MemoryChange{
					Offset: memory.offset,
					Data:   c.memory.snapshot(memory.offset, memory.size),
					Size:   c.memory.length(),
				}
			}
			record.Storage = storage
		}
		if collector != nil {
			collector.nextOp(op, record.GasCost)
		}
		r.tracer.OnStep(record)
	}
	return status
}

type memoryRange struct {
	offset, size uint64
}

// pendingMemoryWrite determines the memory range written by the given
// instruction if it were executed in the current state.
func pendingMemoryWrite(c *context, op vm.OpCode) (memoryRange, bool) {
	var (
		offset, size uint64
		err          error
	)
	switch op {
	case vm.MSTORE:
		if c.stack.len() < 2 {
			return memoryRange{}, false
		}
		offset, size, err = checkMemoryRange(c.stack.peekN(0), wordSize)
	case vm.MSTORE8:
		if c.stack.len() < 2 {
			return memoryRange{}, false
		}
		offset, size, err = checkMemoryRange(c.stack.peekN(0), byteSize)
	case vm.CALLDATACOPY, vm.CODECOPY:
		if c.stack.len() < 3 {
			return memoryRange{}, false
		}
		offset, size, err = checkMemoryRange(c.stack.peekN(0), c.stack.peekN(2))
	default:
		return memoryRange{}, false
	}
	if err != nil {
		return memoryRange{}, false
	}
	return memoryRange{offset: offset, size: size}, true
}

// pendingStorageWrite determines the storage update performed by the given
// instruction if it were executed in the current state.
func pendingStorageWrite(c *context, op vm.OpCode) *basalt.StorageChange {
	if op != vm.SSTORE || c.stack.len() < 2 {
		return nil
	}
	key := basalt.Key(c.stack.peekN(0).Bytes32())
	return &basalt.StorageChange{
		Key:      key,
		Previous: c.context.GetStorage(c.params.Recipient, key),
		Current:  basalt.Word(c.stack.peekN(1).Bytes32()),
	}
}
