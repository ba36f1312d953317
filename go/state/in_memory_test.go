// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	"github.com/Fantom-foundation/Basalt/go/interpreter/svm"
	"go.uber.org/mock/gomock"
)

var (
	addr1 = basalt.Address{19: 1}
	addr2 = basalt.Address{19: 2}
	key1  = basalt.Key{31: 1}
	key2  = basalt.Key{31: 2}
	word1 = basalt.Word{31: 1}
	word2 = basalt.Word{31: 2}
)

func TestInMemory_ImplementsRunContext(t *testing.T) {
	var _ basalt.RunContext = &InMemory{}
}

func TestInMemory_UnwrittenValuesAreZero(t *testing.T) {
	s := NewInMemory(nil)
	if want, got := (basalt.Word{}), s.GetStorage(addr1, key1); want != got {
		t.Errorf("unexpected storage value, wanted %v, got %v", want, got)
	}
	if want, got := (basalt.Value{}), s.GetBalance(addr1); want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
	if want, got := (basalt.Hash{}), s.GetBlockHash(12); want != got {
		t.Errorf("unexpected block hash, wanted %v, got %v", want, got)
	}
	if s.AccountExists(addr1) {
		t.Errorf("account should not exist")
	}
}

func TestInMemory_IsSeededWithCopyOfAccounts(t *testing.T) {
	accounts := Accounts{
		addr1: {Balance: basalt.NewValue(5), Nonce: 2, Code: basalt.Code{1, 2}, Storage: Storage{key1: word1}},
	}
	s := NewInMemory(accounts)
	accounts[addr1].Storage[key1] = word2

	if want, got := word1, s.GetStorage(addr1, key1); want != got {
		t.Errorf("unexpected storage value, wanted %v, got %v", want, got)
	}
	if want, got := basalt.NewValue(5), s.GetBalance(addr1); want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
	if want, got := uint64(2), s.GetNonce(addr1); want != got {
		t.Errorf("unexpected nonce, wanted %d, got %d", want, got)
	}
	if want, got := basalt.Keccak256([]byte{1, 2}), s.GetCodeHash(addr1); want != got {
		t.Errorf("unexpected code hash, wanted %v, got %v", want, got)
	}
	if !s.AccountExists(addr1) {
		t.Errorf("account should exist")
	}
}

func TestInMemory_ZeroStorageValuesAreDropped(t *testing.T) {
	s := NewInMemory(nil)
	s.SetStorage(addr1, key1, word1)
	s.SetStorage(addr1, key1, basalt.Word{})
	if s.AccountExists(addr1) {
		t.Errorf("account with cleared storage should not exist")
	}
	if want, got := 0, len(s.Accounts()); want != got {
		t.Errorf("unexpected number of accounts, wanted %d, got %d", want, got)
	}
}

func TestInMemory_RestoreSnapshotUndoesModifications(t *testing.T) {
	s := NewInMemory(Accounts{addr1: {Storage: Storage{key1: word1}}})
	before := s.Accounts()

	snapshot := s.CreateSnapshot()
	s.SetStorage(addr1, key1, word2)
	s.SetStorage(addr1, key2, word2)
	s.SetStorage(addr2, key1, word1)
	s.SetBalance(addr2, basalt.NewValue(10))
	s.SetNonce(addr2, 7)
	s.SetCode(addr2, basalt.Code{1})

	if err := s.RestoreSnapshot(snapshot); err != nil {
		t.Fatalf("failed to restore snapshot: %v", err)
	}
	if after := s.Accounts(); !before.Equal(after) {
		t.Errorf("state not restored, wanted %v, got %v", before, after)
	}
}

func TestInMemory_NestedSnapshots(t *testing.T) {
	s := NewInMemory(nil)
	s.SetStorage(addr1, key1, word1)
	outer := s.CreateSnapshot()
	s.SetStorage(addr1, key1, word2)
	inner := s.CreateSnapshot()
	s.SetStorage(addr1, key2, word2)

	if err := s.RestoreSnapshot(inner); err != nil {
		t.Fatalf("failed to restore inner snapshot: %v", err)
	}
	if want, got := word2, s.GetStorage(addr1, key1); want != got {
		t.Errorf("unexpected value after inner restore, wanted %v, got %v", want, got)
	}
	if want, got := (basalt.Word{}), s.GetStorage(addr1, key2); want != got {
		t.Errorf("unexpected value after inner restore, wanted %v, got %v", want, got)
	}

	if err := s.RestoreSnapshot(outer); err != nil {
		t.Fatalf("failed to restore outer snapshot: %v", err)
	}
	if want, got := word1, s.GetStorage(addr1, key1); want != got {
		t.Errorf("unexpected value after outer restore, wanted %v, got %v", want, got)
	}
	if err := s.RestoreSnapshot(inner); err == nil {
		t.Errorf("restoring an invalidated snapshot should fail")
	}
}

func TestInMemory_InvalidSnapshotsAreRejected(t *testing.T) {
	s := NewInMemory(nil)
	for _, snapshot := range []Snapshot{-1, 1} {
		if err := s.RestoreSnapshot(snapshot); err == nil {
			t.Errorf("snapshot %d should be rejected", snapshot)
		}
	}
}

func TestInMemory_ConcurrentAccessesAreSafe(t *testing.T) {
	s := NewInMemory(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			address := basalt.Address{19: byte(i)}
			for j := 0; j < 100; j++ {
				s.SetStorage(address, basalt.Key{31: byte(j)}, basalt.Word{31: byte(j + 1)})
				s.GetStorage(address, basalt.Key{31: byte(j)})
			}
		}(i)
	}
	wg.Wait()
	for i := 0; i < 8; i++ {
		if want, got := (basalt.Word{31: 100}), s.GetStorage(basalt.Address{19: byte(i)}, basalt.Key{31: 99}); want != got {
			t.Errorf("unexpected value, wanted %v, got %v", want, got)
		}
	}
}

func TestInMemory_RunAtomicKeepsUpdatesOfSuccessfulCalls(t *testing.T) {
	// stores 1 in slot 1 and stops
	code := []byte{byte(vm.PUSH1), 1, byte(vm.PUSH1), 1, byte(vm.SSTORE), byte(vm.STOP)}
	s := NewInMemory(Accounts{addr1: {Code: code}})

	interpreter, err := svm.NewInterpreter(svm.Config{})
	if err != nil {
		t.Fatalf("failed to create interpreter: %v", err)
	}
	result, err := s.RunAtomic(interpreter, s.CallParameters(addr1, 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("execution failed: %v", result.Err)
	}
	if want, got := word1, s.GetStorage(addr1, key1); want != got {
		t.Errorf("unexpected storage value, wanted %v, got %v", want, got)
	}
}

func TestInMemory_RunAtomicRollsBackFailedAndRevertedCalls(t *testing.T) {
	tests := map[string][]byte{
		"failed": {
			byte(vm.PUSH1), 1, byte(vm.PUSH1), 1, byte(vm.SSTORE), byte(vm.POP),
		},
		"reverted": {
			byte(vm.PUSH1), 1, byte(vm.PUSH1), 1, byte(vm.SSTORE),
			byte(vm.PUSH1), 0, byte(vm.PUSH1), 0, byte(vm.REVERT),
		},
	}

	for name, code := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewInMemory(Accounts{addr1: {Code: code}})
			interpreter, err := svm.NewInterpreter(svm.Config{})
			if err != nil {
				t.Fatalf("failed to create interpreter: %v", err)
			}
			result, err := s.RunAtomic(interpreter, s.CallParameters(addr1, 1000))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Success {
				t.Fatalf("execution should not succeed")
			}
			if want, got := (basalt.Word{}), s.GetStorage(addr1, key1); want != got {
				t.Errorf("storage not rolled back, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestInMemory_RunAtomicRollsBackOnInterpreterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewInMemory(nil)
	injected := errors.New("injected")

	interpreter := &writingInterpreter{state: s, err: injected}
	_, err := s.RunAtomic(interpreter, basalt.Parameters{})
	if !errors.Is(err, injected) {
		t.Errorf("unexpected error, wanted %v, got %v", injected, err)
	}
	if want, got := (basalt.Word{}), s.GetStorage(addr1, key1); want != got {
		t.Errorf("storage not rolled back, wanted %v, got %v", want, got)
	}

	// the run context of the parameters is preserved if set
	runContext := basalt.NewMockRunContext(ctrl)
	interpreter = &writingInterpreter{state: s}
	if _, err := s.RunAtomic(interpreter, basalt.Parameters{Context: runContext}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interpreter.seen != runContext {
		t.Errorf("run context of parameters was replaced")
	}
}

type writingInterpreter struct {
	state *InMemory
	err   error
	seen  basalt.RunContext
}

func (i *writingInterpreter) Run(params basalt.Parameters) (basalt.Result, error) {
	i.seen = params.Context
	i.state.SetStorage(addr1, key1, word1)
	return basalt.Result{Status: basalt.StatusHalted, Success: true}, i.err
}

func TestInMemory_CallParametersReferenceAccountCode(t *testing.T) {
	code := basalt.Code{byte(vm.STOP)}
	s := NewInMemory(Accounts{addr1: {Code: code}})

	params := s.CallParameters(addr1, 100)
	if params.Context != s {
		t.Errorf("unexpected run context")
	}
	if want, got := basalt.Keccak256(code), *params.CodeHash; want != got {
		t.Errorf("unexpected code hash, wanted %v, got %v", want, got)
	}
	if params.Recipient != addr1 || params.Gas != 100 {
		t.Errorf("unexpected parameters %+v", params)
	}

	if params := s.CallParameters(addr2, 100); params.CodeHash != nil || len(params.Code) != 0 {
		t.Errorf("unexpected code for account without code: %+v", params)
	}
}
