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
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
)

func TestAnalyze_FindsJumpDestinations(t *testing.T) {
	tests := map[string]struct {
		code []byte
		want []int
	}{
		"empty":         {nil, []int{}},
		"single":        {[]byte{byte(vm.JUMPDEST)}, []int{0}},
		"no jumpdest":   {[]byte{byte(vm.ADD), byte(vm.STOP)}, []int{}},
		"in push data":  {[]byte{byte(vm.PUSH1), byte(vm.JUMPDEST), byte(vm.JUMPDEST)}, []int{2}},
		"after push32":  {append(append([]byte{byte(vm.PUSH32)}, bytes.Repeat([]byte{byte(vm.JUMPDEST)}, 32)...), byte(vm.JUMPDEST)), []int{33}},
		"multiple":      {[]byte{byte(vm.JUMPDEST), byte(vm.PUSH2), 0, 0, byte(vm.JUMPDEST), byte(vm.STOP)}, []int{0, 4}},
		"beyond 64":     {append(bytes.Repeat([]byte{byte(vm.STOP)}, 70), byte(vm.JUMPDEST)), []int{70}},
		"push complete": {[]byte{byte(vm.PUSH2), 1, 2, byte(vm.JUMPDEST)}, []int{3}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			analysis, err := Analyze(test.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want, got := test.want, analysis.JumpDests(); !slices.Equal(want, got) {
				t.Errorf("unexpected jump destinations, wanted %v, got %v", want, got)
			}
			for i := 0; i < len(test.code)+2; i++ {
				want := slices.Contains(test.want, i)
				if got := analysis.IsJumpDest(uint64(i)); want != got {
					t.Errorf("unexpected classification of position %d, wanted %t, got %t", i, want, got)
				}
			}
		})
	}
}

func TestAnalyze_RejectsTruncatedPush(t *testing.T) {
	for n := 1; n <= 32; n++ {
		code := append([]byte{byte(vm.PUSH1) + byte(n-1)}, make([]byte, n-1)...)
		if _, err := Analyze(code); !errors.Is(err, errInvalidBytecode) {
			t.Errorf("PUSH%d with %d immediate bytes not rejected: %v", n, n-1, err)
		}
		code = append(code, 0)
		if _, err := Analyze(code); err != nil {
			t.Errorf("PUSH%d with complete data rejected: %v", n, err)
		}
	}
}

func TestAnalyzer_CachesResultsByCodeHash(t *testing.T) {
	analyzer, err := newAnalyzer(0)
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	code := []byte{byte(vm.JUMPDEST)}
	hash := basalt.Keccak256(code)

	first, err := analyzer.analyze(code, &hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := analyzer.analyze(code, &hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("analysis was not reused")
	}

	third, err := analyzer.analyze(code, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == third {
		t.Errorf("analysis without code hash should not be cached")
	}
}

func TestAnalyzer_DoesNotCacheRejectedCode(t *testing.T) {
	analyzer, err := newAnalyzer(16)
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	code := []byte{byte(vm.PUSH1)}
	hash := basalt.Keccak256(code)
	if _, err := analyzer.analyze(code, &hash); !errors.Is(err, errInvalidBytecode) {
		t.Fatalf("unexpected error, wanted %v, got %v", errInvalidBytecode, err)
	}
	if analyzer.cache.Contains(hash) {
		t.Errorf("rejected code was cached")
	}
}

func TestAnalyzer_NegativeCacheSizeDisablesCache(t *testing.T) {
	analyzer, err := newAnalyzer(-1)
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	if analyzer.cache != nil {
		t.Errorf("cache should be disabled")
	}
	code := []byte{byte(vm.JUMPDEST)}
	hash := basalt.Keccak256(code)
	if _, err := analyzer.analyze(code, &hash); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAnalyzer_LongCodesAreNotCached(t *testing.T) {
	analyzer, err := newAnalyzer(16)
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	code := make([]byte, maxCachedCodeLength+1)
	hash := basalt.Keccak256(code)
	if _, err := analyzer.analyze(code, &hash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analyzer.cache.Contains(hash) {
		t.Errorf("long code was cached")
	}
}
