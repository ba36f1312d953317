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
	"bytes"
	"fmt"
	"sync"

	"github.com/Fantom-foundation/Basalt/go/basalt"
)

// Snapshot identifies a point in the modification history of an InMemory
// state that can be restored.
type Snapshot int

// InMemory is a thread-safe world state held in memory. It implements
// basalt.RunContext and records an undo entry for every modification, so
// that any snapshot taken before can be restored.
type InMemory struct {
	mutex       sync.RWMutex
	accounts    map[basalt.Address]*Account
	blockHashes map[int64]basalt.Hash
	journal     []func()
}

// NewInMemory creates a state holding a copy of the given accounts.
func NewInMemory(accounts Accounts) *InMemory {
	res := &InMemory{
		accounts:    map[basalt.Address]*Account{},
		blockHashes: map[int64]basalt.Hash{},
	}
	for address, account := range accounts {
		clone := account.Clone()
		res.accounts[address] = &clone
	}
	return res
}

func (s *InMemory) GetStorage(address basalt.Address, key basalt.Key) basalt.Word {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if account, found := s.accounts[address]; found {
		return account.Storage[key]
	}
	return basalt.Word{}
}

func (s *InMemory) SetStorage(address basalt.Address, key basalt.Key, value basalt.Word) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	account := s.getOrCreate(address)
	previous, existed := account.Storage[key]
	if previous == value {
		return
	}
	if account.Storage == nil {
		account.Storage = Storage{}
	}
	if value == (basalt.Word{}) {
		delete(account.Storage, key)
	} else {
		account.Storage[key] = value
	}
	s.journal = append(s.journal, func() {
		if existed {
			account.Storage[key] = previous
		} else {
			delete(account.Storage, key)
		}
	})
}

func (s *InMemory) GetBalance(address basalt.Address) basalt.Value {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if account, found := s.accounts[address]; found {
		return account.Balance
	}
	return basalt.Value{}
}

func (s *InMemory) SetBalance(address basalt.Address, value basalt.Value) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	account := s.getOrCreate(address)
	previous := account.Balance
	account.Balance = value
	s.journal = append(s.journal, func() {
		account.Balance = previous
	})
}

func (s *InMemory) GetNonce(address basalt.Address) uint64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if account, found := s.accounts[address]; found {
		return account.Nonce
	}
	return 0
}

func (s *InMemory) SetNonce(address basalt.Address, nonce uint64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	account := s.getOrCreate(address)
	previous := account.Nonce
	account.Nonce = nonce
	s.journal = append(s.journal, func() {
		account.Nonce = previous
	})
}

func (s *InMemory) GetCode(address basalt.Address) basalt.Code {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if account, found := s.accounts[address]; found {
		return account.Code
	}
	return nil
}

// GetCodeHash returns the hash of the code of the given account, or the zero
// hash if the account does not exist.
func (s *InMemory) GetCodeHash(address basalt.Address) basalt.Hash {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if account, found := s.accounts[address]; found && !account.IsEmpty() {
		return account.CodeHash()
	}
	return basalt.Hash{}
}

func (s *InMemory) SetCode(address basalt.Address, code basalt.Code) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	account := s.getOrCreate(address)
	previous := account.Code
	account.Code = bytes.Clone(code)
	s.journal = append(s.journal, func() {
		account.Code = previous
	})
}

// AccountExists reports whether the given account holds any non-default
// value.
func (s *InMemory) AccountExists(address basalt.Address) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	account, found := s.accounts[address]
	return found && !account.IsEmpty()
}

func (s *InMemory) GetBlockHash(number int64) basalt.Hash {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.blockHashes[number]
}

// SetBlockHash registers the hash of a past block. Block hashes are part of
// the chain history and not subject to snapshots.
func (s *InMemory) SetBlockHash(number int64, hash basalt.Hash) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.blockHashes[number] = hash
}

// CreateSnapshot marks the current state to be restorable by RestoreSnapshot.
func (s *InMemory) CreateSnapshot() Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return Snapshot(len(s.journal))
}

// RestoreSnapshot undoes all modifications performed after the given
// snapshot was created. Snapshots taken after the restored one become
// invalid.
func (s *InMemory) RestoreSnapshot(snapshot Snapshot) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if snapshot < 0 || int(snapshot) > len(s.journal) {
		return fmt.Errorf("invalid snapshot %d, journal length %d", snapshot, len(s.journal))
	}
	for i := len(s.journal) - 1; i >= int(snapshot); i-- {
		s.journal[i]()
		s.journal[i] = nil
	}
	s.journal = s.journal[:snapshot]
	return nil
}

// Accounts returns a copy of all non-empty accounts.
func (s *InMemory) Accounts() Accounts {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	res := Accounts{}
	for address, account := range s.accounts {
		if !account.IsEmpty() {
			res[address] = account.Clone()
		}
	}
	return res
}

// getOrCreate must be called while holding the write lock.
func (s *InMemory) getOrCreate(address basalt.Address) *Account {
	account, found := s.accounts[address]
	if !found {
		account = &Account{}
		s.accounts[address] = account
	}
	return account
}
