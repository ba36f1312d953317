// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import (
	"github.com/ethereum/go-ethereum/core/vm"
)

// GetIncrementExample provides a contract returning its argument plus one.
func GetIncrementExample() Example {
	code := []byte{
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),
		byte(vm.PUSH1), 1,
		byte(vm.ADD),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}
	return exampleSpec{
		Name:      "increment",
		code:      code,
		reference: func(x int) int { return x + 1 },
	}.build()
}

// GetFibExample provides a contract computing the x-th Fibonacci number
// iteratively. Results are truncated to 32 bits.
func GetFibExample() Example {
	const loopHead, loopEnd = 7, 25
	code := []byte{
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD), // n
		byte(vm.PUSH1), 1, // b
		byte(vm.PUSH1), 0, // a

		byte(vm.JUMPDEST), // loopHead
		byte(vm.DUP3),
		byte(vm.ISZERO),
		byte(vm.PUSH1), loopEnd,
		byte(vm.JUMPI),

		// a, b = b, a+b
		byte(vm.DUP2),
		byte(vm.ADD),
		byte(vm.SWAP1),

		// n = n-1
		byte(vm.SWAP2),
		byte(vm.PUSH1), 1,
		byte(vm.SWAP1),
		byte(vm.SUB),
		byte(vm.SWAP2),
		byte(vm.PUSH1), loopHead,
		byte(vm.JUMP),

		byte(vm.JUMPDEST), // loopEnd
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}
	return exampleSpec{
		Name:      "fib",
		code:      code,
		reference: fib,
	}.build()
}

func fib(x int) int {
	var a, b uint32 = 0, 1
	for i := 0; i < x; i++ {
		a, b = b, a+b
	}
	return int(a)
}
