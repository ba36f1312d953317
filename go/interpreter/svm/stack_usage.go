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

import "github.com/Fantom-foundation/Basalt/go/basalt/vm"

// stackUsage describes the number of elements an instruction removes from
// the stack and the number of elements it adds afterwards.
type stackUsage struct {
	pops   int
	pushes int
}

// stackLimits is the precomputed range of stack sizes an instruction can be
// executed with.
type stackLimits struct {
	min int // the minimum stack size required by an instruction
	max int // the maximum stack size allowed before running an instruction
}

var staticStackLimits = func() (res [256]stackLimits) {
	for i := range res {
		usage := computeStackUsage(vm.OpCode(i))
		res[i] = stackLimits{
			min: usage.pops,
			max: maxStackSize - max(usage.pushes-usage.pops, 0),
		}
	}
	return
}()

// checkStackLimits checks that the given stack size satisfies the needs of
// the instruction before any element is removed or added.
func checkStackLimits(stackLen int, op vm.OpCode) error {
	limits := staticStackLimits[op]
	if stackLen < limits.min {
		return errStackUnderflow
	}
	if stackLen > limits.max {
		return errStackOverflow
	}
	return nil
}

func computeStackUsage(op vm.OpCode) stackUsage {
	switch {
	case op.IsPush():
		return stackUsage{pops: 0, pushes: 1}
	case op.IsDup():
		n := int(op-vm.DUP1) + 1
		return stackUsage{pops: n, pushes: n + 1}
	case op.IsSwap():
		n := int(op-vm.SWAP1) + 1
		return stackUsage{pops: n + 1, pushes: n + 1}
	}

	switch op {
	case vm.STOP, vm.JUMPDEST:
		return stackUsage{pops: 0, pushes: 0}
	case vm.ADD, vm.SUB, vm.MUL, vm.DIV, vm.SDIV, vm.MOD, vm.SMOD, vm.EXP,
		vm.SIGNEXTEND, vm.SHA3, vm.LT, vm.GT, vm.SLT, vm.SGT, vm.EQ, vm.AND,
		vm.XOR, vm.OR, vm.BYTE, vm.SHL, vm.SHR, vm.SAR:
		return stackUsage{pops: 2, pushes: 1}
	case vm.ADDMOD, vm.MULMOD:
		return stackUsage{pops: 3, pushes: 1}
	case vm.ISZERO, vm.NOT, vm.BALANCE, vm.CALLDATALOAD, vm.BLOCKHASH,
		vm.MLOAD, vm.SLOAD:
		return stackUsage{pops: 1, pushes: 1}
	case vm.MSIZE, vm.ADDRESS, vm.ORIGIN, vm.CALLER, vm.CALLVALUE,
		vm.CALLDATASIZE, vm.CODESIZE, vm.GASPRICE, vm.COINBASE, vm.TIMESTAMP,
		vm.NUMBER, vm.DIFFICULTY, vm.GASLIMIT, vm.PC, vm.GAS, vm.SELFBALANCE,
		vm.CHAINID:
		return stackUsage{pops: 0, pushes: 1}
	case vm.POP, vm.JUMP:
		return stackUsage{pops: 1, pushes: 0}
	case vm.MSTORE, vm.MSTORE8, vm.SSTORE, vm.JUMPI, vm.RETURN, vm.REVERT:
		return stackUsage{pops: 2, pushes: 0}
	case vm.CALLDATACOPY, vm.CODECOPY:
		return stackUsage{pops: 3, pushes: 0}
	}
	return stackUsage{}
}
