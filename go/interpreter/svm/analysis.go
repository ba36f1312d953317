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
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Analysis is the result of the pre-execution scan of a bytecode. It records
// the positions of all JUMPDEST instructions that are not part of the
// immediate data of a PUSH instruction.
type Analysis struct {
	codeSize  int
	jumpDests bitmap
}

// Analyze scans the given code once and returns its jump destinations. Code
// ending in a PUSH instruction whose immediate data is cut short is rejected
// with an invalid bytecode error.
func Analyze(code basalt.Code) (*Analysis, error) {
	res := &Analysis{
		codeSize:  len(code),
		jumpDests: newBitmap(len(code)),
	}
	for i := 0; i < len(code); i++ {
		op := vm.OpCode(code[i])
		if op == vm.JUMPDEST {
			res.jumpDests.set(i)
			continue
		}
		if n := op.PushSize(); n > 0 {
			if i+n >= len(code) {
				return nil, errInvalidBytecode
			}
			i += n
		}
	}
	return res, nil
}

// IsJumpDest reports whether pos is a valid target for JUMP and JUMPI.
func (a *Analysis) IsJumpDest(pos uint64) bool {
	if pos >= uint64(a.codeSize) {
		return false
	}
	return a.jumpDests.get(int(pos))
}

// JumpDests lists all valid jump destinations in ascending order.
func (a *Analysis) JumpDests() []int {
	res := []int{}
	for i := 0; i < a.codeSize; i++ {
		if a.jumpDests.get(i) {
			res = append(res, i)
		}
	}
	return res
}

type bitmap []uint64

func newBitmap(size int) bitmap {
	return make(bitmap, (size+63)/64)
}

func (b bitmap) set(i int) {
	b[i/64] |= 1 << (i % 64)
}

func (b bitmap) get(i int) bool {
	return b[i/64]&(1<<(i%64)) != 0
}

// maxCachedCodeLength is the maximum length of a code in bytes whose analysis
// is retained in the cache. Longer codes are analyzed on every run.
const maxCachedCodeLength = 1<<14 + 1<<13 // = 24_576 bytes

// defaultAnalysisCacheSize is the number of analyses kept if no explicit
// cache size is configured.
const defaultAnalysisCacheSize = 4096

// analyzer produces code analyses, re-using the results for codes seen
// before if a cache is enabled.
type analyzer struct {
	cache *lru.Cache[basalt.Hash, *Analysis]
}

// newAnalyzer creates an analyzer retaining up to cacheSize results. A size
// of 0 selects the default size, negative sizes disable the cache.
func newAnalyzer(cacheSize int) (*analyzer, error) {
	if cacheSize == 0 {
		cacheSize = defaultAnalysisCacheSize
	}
	if cacheSize < 0 {
		return &analyzer{}, nil
	}
	cache, err := lru.New[basalt.Hash, *Analysis](cacheSize)
	if err != nil {
		return nil, err
	}
	return &analyzer{cache: cache}, nil
}

// analyze returns the analysis of the given code. If the provided code hash
// is not nil, it is assumed to be a valid hash of the code and is used to
// cache the result. Rejected codes are never cached.
func (a *analyzer) analyze(code basalt.Code, codeHash *basalt.Hash) (*Analysis, error) {
	if a.cache == nil || codeHash == nil {
		return Analyze(code)
	}

	if res, exists := a.cache.Get(*codeHash); exists {
		return res, nil
	}

	res, err := Analyze(code)
	if err != nil {
		return nil, err
	}
	if len(code) <= maxCachedCodeLength {
		a.cache.Add(*codeHash, res)
	}
	return res, nil
}
