// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package state provides an in-memory world state usable as the run context
// of interpreter runs. Besides accounts and storage it tracks the hashes of
// recent blocks and supports snapshots to undo modifications.
package state

import (
	"bytes"
	"fmt"
	"maps"

	"github.com/Fantom-foundation/Basalt/go/basalt"
)

// Accounts is a plain map based model of a world state. It is used to seed an
// InMemory state and to inspect its content.
type Accounts map[basalt.Address]Account

func (s Accounts) Equal(other Accounts) bool {
	return equalMapsIgnoringZero(s, other, func(a, b Account) bool {
		return a.Equal(&b)
	})
}

func (s Accounts) Clone() Accounts {
	if s == nil {
		return nil
	}
	res := make(Accounts, len(s))
	for k, v := range s {
		res[k] = v.Clone()
	}
	return res
}

// Account represents an account in the world state. The default account is
// an empty account, that is treated as non-existing.
type Account struct {
	Balance basalt.Value
	Nonce   uint64
	Code    basalt.Code
	Storage Storage
}

func (a *Account) Equal(other *Account) bool {
	return a.Balance == other.Balance &&
		a.Nonce == other.Nonce &&
		bytes.Equal(a.Code, other.Code) &&
		a.Storage.Equal(other.Storage)
}

func (a *Account) Clone() Account {
	return Account{
		Balance: a.Balance,
		Nonce:   a.Nonce,
		Code:    bytes.Clone(a.Code),
		Storage: a.Storage.Clone(),
	}
}

// IsEmpty reports whether the account has no balance, nonce, code, or
// storage.
func (a *Account) IsEmpty() bool {
	return a.Equal(&Account{})
}

// CodeHash returns the Keccak-256 hash of the account's code.
func (a *Account) CodeHash() basalt.Hash {
	return basalt.Keccak256(a.Code)
}

func (a Account) String() string {
	return fmt.Sprintf("Account{balance: %v, nonce: %d, code: %d bytes, slots: %d}",
		a.Balance, a.Nonce, len(a.Code), a.Storage.size())
}

// Storage represents the storage of an account. Zero-valued entries are
// ignored.
type Storage map[basalt.Key]basalt.Word

func (s Storage) Equal(other Storage) bool {
	return equalMapsIgnoringZero(s, other, func(a, b basalt.Word) bool {
		return a == b
	})
}

func (s Storage) Clone() Storage {
	return maps.Clone(s)
}

func (s Storage) size() int {
	count := 0
	for _, v := range s {
		if v != (basalt.Word{}) {
			count++
		}
	}
	return count
}

// equalMapsIgnoringZero compares two maps, ignoring zero-valued entries.
func equalMapsIgnoringZero[K comparable, V any](a, b map[K]V, equal func(V, V) bool) bool {
	for k, v := range a {
		if !equal(v, b[k]) {
			return false
		}
	}
	for k, v := range b {
		if !equal(v, a[k]) {
			return false
		}
	}
	return true
}
