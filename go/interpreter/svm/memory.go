// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package svm

import (
	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/holiman/uint256"
)

const (
	// Maximum memory size allowed. Offsets and sizes reaching beyond this
	// bound fail with a memory limit error instead of running out of gas.
	maxMemoryExpansionSize = 0x1FFFFFFFE0
)

// Memory is the byte addressable scratch space of a single call. It only
// grows, always in multiples of 32 byte words, and keeps track of the total
// cost charged for its current size.
type Memory struct {
	store             []byte
	currentMemoryCost basalt.Gas
}

func NewMemory() *Memory {
	return &Memory{}
}

// memoryCost is the total price of a memory of the given number of words.
func memoryCost(words uint64) basalt.Gas {
	// static assert
	const (
		// Costs are computed using unsigned arithmetic, make sure the
		// largest permitted size does not overflow int64.
		maxInWords uint64 = (uint64(maxMemoryExpansionSize) + 31) / 32
		_                 = int64(maxInWords*maxInWords/512 + 3*maxInWords)
	)
	return basalt.Gas(words*words/uint64(quadCoeffDiv) + uint64(memoryWord)*words)
}

// checkMemoryRange converts a range given by stack operands into native
// integers. Ranges of zero size are always valid, regardless of the offset.
func checkMemoryRange(offset, size *uint256.Int) (uint64, uint64, error) {
	if size.IsZero() {
		return 0, 0, nil
	}
	if !offset.IsUint64() || !size.IsUint64() {
		return 0, 0, errMemoryLimitExceeded
	}
	start, length := offset.Uint64(), size.Uint64()
	if start > maxMemoryExpansionSize || length > maxMemoryExpansionSize ||
		start+length > maxMemoryExpansionSize {
		return 0, 0, errMemoryLimitExceeded
	}
	return start, length, nil
}

// expansionCosts computes the fee for growing the memory such that the given
// range is covered. The memory itself is not modified.
func (m *Memory) expansionCosts(offset, size uint64) (basalt.Gas, error) {
	if size == 0 {
		return 0, nil
	}
	needed := offset + size
	if needed < offset || needed > maxMemoryExpansionSize {
		return 0, errMemoryLimitExceeded
	}
	if m.length() >= needed {
		return 0, nil
	}
	return memoryCost(basalt.SizeInWords(needed)) - m.currentMemoryCost, nil
}

// expandWithoutCharging grows the memory to cover the given range. Callers
// have to make sure the range is valid and paid for, see expansionCosts.
func (m *Memory) expandWithoutCharging(offset, size uint64) {
	if size == 0 {
		return
	}
	words := basalt.SizeInWords(offset + size)
	needed := words * 32
	if current := m.length(); current < needed {
		m.currentMemoryCost = memoryCost(words)
		m.store = append(m.store, make([]byte, needed-current)...)
	}
}

func (m *Memory) length() uint64 {
	return uint64(len(m.store))
}

// getSlice obtains a slice of size bytes from the memory at the given offset.
// The returned slice is backed by the memory's internal data and is only
// valid until the next expansion. The range must have been expanded before.
func (m *Memory) getSlice(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

func (m *Memory) readWord(offset uint64, target *uint256.Int) {
	target.SetBytes32(m.store[offset : offset+32])
}

func (m *Memory) setWord(offset uint64, value *uint256.Int) {
	value.WriteToSlice(m.store[offset : offset+32])
}

func (m *Memory) setByte(offset uint64, value byte) {
	m.store[offset] = value
}

// set copies value into the memory at the given offset, zero padding the
// remainder of the range if value is shorter than size.
func (m *Memory) set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	dest := m.store[offset : offset+size]
	n := copy(dest, value)
	clear(dest[n:])
}

// snapshot returns a copy of the given range, used for tracing.
func (m *Memory) snapshot(offset, size uint64) []byte {
	res := make([]byte, size)
	copy(res, m.getSlice(offset, size))
	return res
}
