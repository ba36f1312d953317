// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package examples provides a catalog of contracts computing (int)->int
// functions, each paired with a reference implementation. They are used for
// cross-checking and benchmarking interpreters.
package examples

import (
	"fmt"
	"math"
	"slices"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/state"
	"golang.org/x/exp/maps"
)

// Example is an executable description of a contract and an entry point with
// a (int)->int signature.
type Example struct {
	exampleSpec
	codeHash basalt.Hash
}

type exampleSpec struct {
	Name      string
	code      []byte
	function  uint32        // selector of the called function, unused by hand-written code
	reference func(int) int // computes the same function as the code
}

func (s exampleSpec) build() Example {
	return Example{
		exampleSpec: s,
		codeHash:    basalt.Keccak256(s.code),
	}
}

// Code returns a copy of the code of this example.
func (e *Example) Code() basalt.Code {
	return slices.Clone(e.code)
}

// Input returns the call data for running this example with the given
// argument.
func (e *Example) Input(argument int) basalt.Data {
	return encodeArgument(e.function, argument)
}

type Result struct {
	Result  int
	UsedGas basalt.Gas
}

// RunOn runs this example on the given interpreter using the given argument.
// Executions not ending in a successful halt are reported as errors.
func (e *Example) RunOn(interpreter basalt.Interpreter, argument int) (Result, error) {
	const initialGas = math.MaxInt64
	params := basalt.Parameters{
		Context:  state.NewInMemory(nil),
		Code:     e.code,
		CodeHash: &e.codeHash,
		Input:    e.Input(argument),
		Gas:      initialGas,
	}

	res, err := interpreter.Run(params)
	if err != nil {
		return Result{}, err
	}
	if !res.Success {
		if res.Err != nil {
			return Result{}, fmt.Errorf("%s example %v: %w", e.Name, res.Status, res.Err)
		}
		return Result{}, fmt.Errorf("%s example %v", e.Name, res.Status)
	}

	result, err := decodeOutput(res.Output)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Result:  result,
		UsedGas: res.GasUsed,
	}, nil
}

// RunReference runs the reference function of this example to produce the
// expected result.
func (e *Example) RunReference(argument int) int {
	return e.reference(argument)
}

var catalog = map[string]func() Example{
	"arithmetic":      GetArithmeticExample,
	"fib":             GetFibExample,
	"gas_burner":      GetGasBurnerExample,
	"increment":       GetIncrementExample,
	"jumpdest":        GetJumpdestAnalysisExample,
	"push1":           GetPush1AnalysisExample,
	"push32":          GetPush32AnalysisExample,
	"sha3":            GetSha3Example,
	"static_overhead": GetStaticOverheadExample,
	"stop":            GetStopAnalysisExample,
}

// Names lists the names of all examples in alphabetical order.
func Names() []string {
	res := maps.Keys(catalog)
	slices.Sort(res)
	return res
}

// Get looks up an example by its name.
func Get(name string) (Example, bool) {
	get, found := catalog[name]
	if !found {
		return Example{}, false
	}
	return get(), true
}

// GetAll returns all examples ordered by name.
func GetAll() []Example {
	names := Names()
	res := make([]Example, 0, len(names))
	for _, name := range names {
		res = append(res, catalog[name]())
	}
	return res
}

// encodeArgument produces ABI encoded call data: a 4 byte selector followed
// by the argument padded to 32 bytes.
func encodeArgument(function uint32, arg int) []byte {
	data := make([]byte, 4+32)

	data[0] = byte(function >> 24)
	data[1] = byte(function >> 16)
	data[2] = byte(function >> 8)
	data[3] = byte(function)

	data[4+28] = byte(arg >> 24)
	data[5+28] = byte(arg >> 16)
	data[6+28] = byte(arg >> 8)
	data[7+28] = byte(arg)

	return data
}

func decodeOutput(output []byte) (int, error) {
	if len(output) != 32 {
		return 0, fmt.Errorf("unexpected length of output; wanted 32, got %d", len(output))
	}
	return (int(output[28]) << 24) | (int(output[29]) << 16) | (int(output[30]) << 8) | int(output[31]), nil
}
