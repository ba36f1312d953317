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
	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/ethereum/go-ethereum/core/vm"
)

// GetSha3Example provides a contract hashing a 32 byte word x times, starting
// from zero, and returning the last byte of the final hash.
func GetSha3Example() Example {
	const loopHead, loopEnd = 3, 24
	code := []byte{
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),

		byte(vm.JUMPDEST), // loopHead
		byte(vm.DUP1),
		byte(vm.ISZERO),
		byte(vm.PUSH1), loopEnd,
		byte(vm.JUMPI),

		// memory[0] = keccak(memory[0:32])
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.KECCAK256),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),

		byte(vm.PUSH1), 1,
		byte(vm.SWAP1),
		byte(vm.SUB),
		byte(vm.PUSH1), loopHead,
		byte(vm.JUMP),

		byte(vm.JUMPDEST), // loopEnd
		byte(vm.PUSH1), 0,
		byte(vm.MLOAD),
		byte(vm.PUSH1), 0xff,
		byte(vm.AND),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),

		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	return exampleSpec{
		Name:      "sha3",
		code:      code,
		reference: sha3Ref,
	}.build()
}

func sha3Ref(x int) int {
	var hash basalt.Hash
	for i := 0; i < x; i++ {
		hash = basalt.Keccak256(hash[:])
	}
	return int(hash[31])
}
