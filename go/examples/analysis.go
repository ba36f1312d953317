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

// maxCodeLength is the largest code size accepted by default.
const maxCodeLength = 0x6000

// GenerateAnalysisCode produces code of maximum length consisting mostly of
// repetitions of the given filler. The filler is never executed, the code
// jumps over it and returns its argument. Such codes stress the bytecode
// validator.
func GenerateAnalysisCode(filler []byte) []byte {
	prefix := []byte{
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH2), 0, 0, // the position of the final JUMPDEST
		byte(vm.JUMP),
	}
	suffix := []byte{
		byte(vm.JUMPDEST),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	repetitions := (maxCodeLength - len(prefix) - len(suffix)) / len(filler)
	code := make([]byte, 0, maxCodeLength)
	code = append(code, prefix...)
	for i := 0; i < repetitions; i++ {
		code = append(code, filler...)
	}
	target := len(code)
	code[7] = byte(target >> 8)
	code[8] = byte(target)
	return append(code, suffix...)
}

func GetJumpdestAnalysisExample() Example {
	return analysisExample("jumpdest", []byte{byte(vm.JUMPDEST)})
}

func GetStopAnalysisExample() Example {
	return analysisExample("stop", []byte{byte(vm.STOP)})
}

func GetPush1AnalysisExample() Example {
	return analysisExample("push1", []byte{byte(vm.PUSH1), 0})
}

func GetPush32AnalysisExample() Example {
	return analysisExample("push32", append([]byte{byte(vm.PUSH32)}, make([]byte, 32)...))
}

func analysisExample(name string, filler []byte) Example {
	return exampleSpec{
		Name:      name,
		code:      GenerateAnalysisCode(filler),
		reference: identity,
	}.build()
}
