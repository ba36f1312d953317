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

const (
	// UnknownGasPrice is reported for instructions without a static price.
	UnknownGasPrice basalt.Gas = 0

	sha3WordGas  basalt.Gas = 6
	copyWordGas  basalt.Gas = 3
	expByteGas   basalt.Gas = 50
	memoryWord   basalt.Gas = 3
	quadCoeffDiv basalt.Gas = 512
)

var staticGasPrices = func() (res [256]basalt.Gas) {
	for i := range res {
		res[i] = getStaticGasPriceInternal(vm.OpCode(i))
	}
	return
}()

// StaticGasPrice returns the fixed part of the cost of an instruction.
func StaticGasPrice(op vm.OpCode) basalt.Gas {
	return staticGasPrices[op]
}

func getStaticGasPriceInternal(op vm.OpCode) basalt.Gas {
	if op.IsPush() || op.IsDup() || op.IsSwap() {
		return 3
	}
	switch op {
	case vm.STOP, vm.RETURN, vm.REVERT:
		return 0
	case vm.JUMPDEST:
		return 1
	case vm.ADDRESS, vm.ORIGIN, vm.CALLER, vm.CALLVALUE, vm.CALLDATASIZE,
		vm.CODESIZE, vm.GASPRICE, vm.COINBASE, vm.TIMESTAMP, vm.NUMBER,
		vm.DIFFICULTY, vm.GASLIMIT, vm.CHAINID, vm.POP, vm.PC, vm.MSIZE,
		vm.GAS:
		return 2
	case vm.ADD, vm.SUB, vm.LT, vm.GT, vm.SLT, vm.SGT, vm.EQ, vm.ISZERO,
		vm.AND, vm.OR, vm.XOR, vm.NOT, vm.BYTE, vm.SHL, vm.SHR, vm.SAR,
		vm.CALLDATALOAD, vm.CALLDATACOPY, vm.CODECOPY, vm.MLOAD, vm.MSTORE,
		vm.MSTORE8:
		return 3
	case vm.MUL, vm.DIV, vm.SDIV, vm.MOD, vm.SMOD, vm.SIGNEXTEND,
		vm.SELFBALANCE:
		return 5
	case vm.ADDMOD, vm.MULMOD, vm.JUMP:
		return 8
	case vm.EXP, vm.JUMPI:
		return 10
	case vm.BLOCKHASH:
		return 20
	case vm.SHA3:
		return 30
	case vm.BALANCE, vm.SLOAD, vm.SSTORE:
		return 100
	}
	return UnknownGasPrice
}
