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

//go:generate mockgen -source world_state.go -destination world_state_mock.go -package basalt

// WorldState is the account and storage collaborator of the interpreter.
// Slots never written read as zero. Implementations shared between
// concurrent runs are responsible for their own consistency.
type WorldState interface {
	GetStorage(Address, Key) Word
	SetStorage(Address, Key, Word)
	GetBalance(Address) Value
}

// RunContext provides access to all chain state needed by the instructions
// supported by the interpreter.
type RunContext interface {
	WorldState

	// GetBlockHash returns the hash of the block with the given number.
	GetBlockHash(number int64) Hash
}
