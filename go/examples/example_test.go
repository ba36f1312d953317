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
	"fmt"
	"slices"
	"testing"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/interpreter/svm"
	"github.com/Fantom-foundation/Basalt/go/validation"
	"github.com/ethereum/go-ethereum/core/vm/runtime"
)

func newInterpreter(t testing.TB) basalt.Interpreter {
	t.Helper()
	interpreter, err := svm.NewInterpreter(svm.Config{WithShaCache: true})
	if err != nil {
		t.Fatalf("failed to create interpreter: %v", err)
	}
	return interpreter
}

func TestExamples_ComputeCorrectResult(t *testing.T) {
	interpreter := newInterpreter(t)
	for _, example := range GetAll() {
		for i := 0; i < 10; i++ {
			t.Run(fmt.Sprintf("%s-%d", example.Name, i), func(t *testing.T) {
				want := example.RunReference(i)
				got, err := example.RunOn(interpreter, i)
				if err != nil {
					t.Fatalf("error processing contract: %v", err)
				}
				if want != got.Result {
					t.Fatalf("incorrect result, wanted %d, got %d", want, got.Result)
				}
				if got.UsedGas <= 0 {
					t.Errorf("no gas consumed")
				}
			})
		}
	}
}

func TestExamples_MatchGethResults(t *testing.T) {
	for _, example := range GetAll() {
		for _, i := range []int{0, 1, 7, 20} {
			t.Run(fmt.Sprintf("%s-%d", example.Name, i), func(t *testing.T) {
				output, _, err := runtime.Execute(example.Code(), example.Input(i), nil)
				if err != nil {
					t.Fatalf("geth failed to run example: %v", err)
				}
				want, err := decodeOutput(output)
				if err != nil {
					t.Fatalf("unexpected geth output: %v", err)
				}
				if got := example.RunReference(i); want != got {
					t.Errorf("reference disagrees with geth, wanted %d, got %d", want, got)
				}
			})
		}
	}
}

func TestExamples_PassDefaultValidation(t *testing.T) {
	limits := validation.Default()
	for _, example := range GetAll() {
		params := basalt.Parameters{
			Gas:   limits.MaxGas,
			Code:  example.Code(),
			Input: example.Input(0),
		}
		if err := limits.Check(params); err != nil {
			t.Errorf("example %s rejected: %v", example.Name, err)
		}
		if _, err := svm.Analyze(params.Code); err != nil {
			t.Errorf("code of example %s is invalid: %v", example.Name, err)
		}
	}
}

func TestExamples_GasBurnerConsumesRequestedGas(t *testing.T) {
	interpreter := newInterpreter(t)
	example := GetGasBurnerExample()
	// Both amounts exceed the fixed cost spent before the first gas check.
	small, err := example.RunOn(interpreter, 10_000)
	if err != nil {
		t.Fatalf("failed to run example: %v", err)
	}
	large, err := example.RunOn(interpreter, 20_000)
	if err != nil {
		t.Fatalf("failed to run example: %v", err)
	}
	if diff := large.UsedGas - small.UsedGas; diff < 10_000 {
		t.Errorf("burning more gas consumed only %d additional gas", diff)
	}
}

func TestCatalog_NamesAreSortedAndResolvable(t *testing.T) {
	names := Names()
	if !slices.IsSorted(names) {
		t.Errorf("names are not sorted: %v", names)
	}
	all := GetAll()
	if want, got := len(names), len(all); want != got {
		t.Fatalf("unexpected number of examples, wanted %d, got %d", want, got)
	}
	for i, name := range names {
		example, found := Get(name)
		if !found {
			t.Fatalf("example %s not found", name)
		}
		if example.Name != name || all[i].Name != name {
			t.Errorf("inconsistent example names: %s, %s, %s", name, example.Name, all[i].Name)
		}
	}
	if _, found := Get("unknown"); found {
		t.Errorf("unknown example should not be found")
	}
}

func TestExample_CodeIsACopy(t *testing.T) {
	example := GetIncrementExample()
	code := example.Code()
	code[0] = 0xff
	if example.Code()[0] == 0xff {
		t.Errorf("modifying the returned code changed the example")
	}
}

func TestExample_FailingExecutionIsReported(t *testing.T) {
	example := exampleSpec{
		Name: "broken",
		code: []byte{0x01}, // ADD on an empty stack
	}.build()
	if _, err := example.RunOn(newInterpreter(t), 1); err == nil {
		t.Errorf("expected failure to be reported")
	}
}

func TestDecodeOutput_RejectsWrongLength(t *testing.T) {
	if _, err := decodeOutput(make([]byte, 31)); err == nil {
		t.Errorf("expected error for short output")
	}
}

func BenchmarkExamples(b *testing.B) {
	interpreter := newInterpreter(b)
	for _, example := range GetAll() {
		want := example.RunReference(10)
		b.Run(example.Name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				got, err := example.RunOn(interpreter, 10)
				if err != nil {
					b.Fatalf("running the %s example failed: %v", example.Name, err)
				}
				if want != got.Result {
					b.Fatalf("unexpected result, wanted %d, got %d", want, got.Result)
				}
			}
		})
	}
}
