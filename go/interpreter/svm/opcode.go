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

// supportedOpCodes marks the instructions this interpreter executes. Any
// other byte, including named instructions outside of the supported subset,
// fails with an invalid opcode error.
var supportedOpCodes = func() (res [256]bool) {
	for i := range res {
		op := vm.OpCode(i)
		res[i] = op.IsPush() || op.IsDup() || op.IsSwap()
	}
	for _, op := range []vm.OpCode{
		vm.STOP, vm.ADD, vm.MUL, vm.SUB, vm.DIV, vm.SDIV, vm.MOD, vm.SMOD,
		vm.ADDMOD, vm.MULMOD, vm.EXP, vm.SIGNEXTEND,
		vm.LT, vm.GT, vm.SLT, vm.SGT, vm.EQ, vm.ISZERO, vm.AND, vm.OR, vm.XOR,
		vm.NOT, vm.BYTE, vm.SHL, vm.SHR, vm.SAR,
		vm.SHA3,
		vm.ADDRESS, vm.BALANCE, vm.ORIGIN, vm.CALLER, vm.CALLVALUE,
		vm.CALLDATALOAD, vm.CALLDATASIZE, vm.CALLDATACOPY, vm.CODESIZE,
		vm.CODECOPY, vm.GASPRICE,
		vm.BLOCKHASH, vm.COINBASE, vm.TIMESTAMP, vm.NUMBER, vm.DIFFICULTY,
		vm.GASLIMIT, vm.CHAINID, vm.SELFBALANCE,
		vm.POP, vm.MLOAD, vm.MSTORE, vm.MSTORE8, vm.SLOAD, vm.SSTORE,
		vm.JUMP, vm.JUMPI, vm.PC, vm.MSIZE, vm.GAS, vm.JUMPDEST,
		vm.RETURN, vm.REVERT,
	} {
		res[op] = true
	}
	return
}()

func isSupported(op vm.OpCode) bool {
	return supportedOpCodes[op]
}
