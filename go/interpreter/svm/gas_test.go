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
	"testing"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
)

func TestGas_StaticPrices(t *testing.T) {
	tests := map[vm.OpCode]basalt.Gas{
		vm.STOP:         0,
		vm.ADD:          3,
		vm.SUB:          3,
		vm.MUL:          5,
		vm.DIV:          5,
		vm.MOD:          5,
		vm.ADDMOD:       8,
		vm.EXP:          10,
		vm.SHA3:         30,
		vm.ADDRESS:      2,
		vm.BALANCE:      100,
		vm.CALLDATALOAD: 3,
		vm.BLOCKHASH:    20,
		vm.SELFBALANCE:  5,
		vm.POP:          2,
		vm.MLOAD:        3,
		vm.MSTORE:       3,
		vm.MSTORE8:      3,
		vm.SLOAD:        100,
		vm.SSTORE:       100,
		vm.JUMP:         8,
		vm.JUMPI:        10,
		vm.PC:           2,
		vm.MSIZE:        2,
		vm.GAS:          2,
		vm.JUMPDEST:     1,
		vm.PUSH1:        3,
		vm.PUSH32:       3,
		vm.DUP1:         3,
		vm.SWAP16:       3,
		vm.RETURN:       0,
		vm.REVERT:       0,
	}

	for op, want := range tests {
		if got := StaticGasPrice(op); want != got {
			t.Errorf("unexpected static price of %v, wanted %d, got %d", op, want, got)
		}
	}
}

func TestGas_UnsupportedInstructionsHaveNoPrice(t *testing.T) {
	for i := 0; i < 256; i++ {
		op := vm.OpCode(i)
		if isSupported(op) {
			continue
		}
		if got := StaticGasPrice(op); got != UnknownGasPrice {
			t.Errorf("unsupported instruction %v has price %d", op, got)
		}
	}
}
