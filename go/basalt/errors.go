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

// ConstError is an error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

// Faults terminating a call with StatusFailed. They are reported through
// Result.Err and are never returned as errors by Interpreter.Run.
const (
	ErrStackOverflow       = ConstError("stack overflow")
	ErrStackUnderflow      = ConstError("stack underflow")
	ErrOutOfGas            = ConstError("out of gas")
	ErrInvalidOpcode       = ConstError("invalid opcode")
	ErrInvalidJump         = ConstError("invalid jump destination")
	ErrInvalidBytecode     = ConstError("invalid bytecode")
	ErrMemoryLimitExceeded = ConstError("memory limit exceeded")
)
