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

import "fmt"

// Interpreter is a component capable of executing EVM byte-code within the
// scope of a single call. Nested calls and contract creation are not part of
// its capabilities.
// To obtain an Interpreter instance, client code should use NewInterpreter()
// provided by the registry file in this package.
type Interpreter interface {
	// Run executes the code provided by the parameters in the specified context
	// and returns the processing result. Execution faults like running out of
	// gas or stack violations are reported through the result, never through
	// the error. The error is not nil if the parameters could not be processed
	// at all, for instance because no run context was provided. In such a case
	// the result is undefined.
	// Interpreters are required to be thread-safe. Thus, multiple runs may be
	// conducted in parallel.
	Run(Parameters) (Result, error)
}

// Parameters summarizes the list of input parameters required for executing
// code. They are immutable for the duration of a call.
type Parameters struct {
	BlockParameters
	TransactionParameters
	Context   RunContext
	Gas       Gas
	Recipient Address // the callee, owning the storage accessed by the code
	Sender    Address // the caller
	Input     Data
	Value     Value
	CodeHash  *Hash // optional, enables caching of code analysis results
	Code      Code
}

// BlockParameters contains information about the current block.
type BlockParameters struct {
	ChainID     Word
	BlockNumber int64
	Timestamp   int64
	Coinbase    Address
	GasLimit    Gas
	PrevRandao  Hash // reported by the DIFFICULTY instruction
	BaseFee     Value
}

// TransactionParameters contains information about current transaction.
type TransactionParameters struct {
	Origin   Address
	GasPrice Value
}

// Status is the terminal state of a call.
type Status byte

const (
	StatusHalted   Status = iota // < STOP, RETURN, or end of code reached
	StatusReverted               // < REVERT executed
	StatusFailed                 // < execution aborted by a fault
)

func (s Status) String() string {
	switch s {
	case StatusHalted:
		return "halted"
	case StatusReverted:
		return "reverted"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// Result summarizes the result of a EVM code computation.
type Result struct {
	Status  Status
	Success bool // true only for StatusHalted
	Output  Data // RETURN data or REVERT reason
	GasUsed Gas
	GasLeft Gas
	Err     error // the fault if Status is StatusFailed, nil otherwise
}
