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
	"strings"
	"sync"
	"testing"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	"go.uber.org/mock/gomock"
)

func TestStatisticsRunner_RunWithStatistics(t *testing.T) {
	stats := NewStatistics()
	code := []byte{byte(vm.PUSH1), 2, byte(vm.PUSH1), 3, byte(vm.ADD), byte(vm.STOP)}
	ctxt := newTestContext(t, code, 100)

	if want, got := statusStopped, (statisticRunner{stats: stats}).run(ctxt); want != got {
		t.Fatalf("unexpected status, wanted %v, got %v", want, got)
	}

	if want, got := uint64(4), stats.Steps(); want != got {
		t.Errorf("unexpected number of steps, wanted %d, got %d", want, got)
	}
	if want, got := uint64(2), stats.Count(vm.PUSH1); want != got {
		t.Errorf("unexpected PUSH1 count, wanted %d, got %d", want, got)
	}
	if want, got := uint64(1), stats.PairCount(vm.PUSH1, vm.PUSH1); want != got {
		t.Errorf("unexpected PUSH1-PUSH1 count, wanted %d, got %d", want, got)
	}
	if want, got := uint64(1), stats.PairCount(vm.PUSH1, vm.ADD); want != got {
		t.Errorf("unexpected PUSH1-ADD count, wanted %d, got %d", want, got)
	}
	if want, got := basalt.Gas(6), stats.Gas(vm.PUSH1); want != got {
		t.Errorf("unexpected PUSH1 gas, wanted %d, got %d", want, got)
	}
}

func TestStatisticsRunner_CollectsAcrossConcurrentRuns(t *testing.T) {
	stats := NewStatistics()
	interpreter, err := NewInterpreter(Config{Statistics: stats})
	if err != nil {
		t.Fatalf("failed to create interpreter: %v", err)
	}

	code := []byte{byte(vm.PUSH1), 2, byte(vm.POP)}
	const runs = 10
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctrl := gomock.NewController(t)
			_, err := interpreter.Run(basalt.Parameters{
				Context: basalt.NewMockRunContext(ctrl),
				Gas:     100,
				Code:    code,
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if want, got := uint64(2*runs), stats.Steps(); want != got {
		t.Errorf("unexpected number of steps, wanted %d, got %d", want, got)
	}
	if want, got := uint64(runs), stats.PairCount(vm.PUSH1, vm.POP); want != got {
		t.Errorf("unexpected pair count, wanted %d, got %d", want, got)
	}
	if want, got := uint64(0), stats.PairCount(vm.POP, vm.PUSH1); want != got {
		t.Errorf("pairs must not span runs, got %d", got)
	}
}

func TestStatistics_SummaryPrintsExpectedOutput(t *testing.T) {
	stats := NewStatistics()
	code := []byte{byte(vm.PUSH1), 2, byte(vm.PUSH1), 3, byte(vm.ADD), byte(vm.STOP)}
	(statisticRunner{stats: stats}).run(newTestContext(t, code, 100))

	summary := stats.Summary()
	for _, want := range []string{
		"Steps: 4",
		"PUSH1                         : 2 (50.00%)",
		"PUSH1                         PUSH1                         : 1 (25.00%)",
		"PUSH1                         : 6",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary does not contain %q:\n%s", want, summary)
		}
	}

	stats.Reset()
	if want, got := uint64(0), stats.Steps(); want != got {
		t.Errorf("statistics not reset, got %d steps", got)
	}
	if !strings.Contains(stats.Summary(), "Steps: 0") {
		t.Errorf("unexpected summary of empty statistics")
	}
}

func TestStatistics_ZeroValueIsUsable(t *testing.T) {
	var stats Statistics
	if want, got := uint64(0), stats.Steps(); want != got {
		t.Errorf("unexpected steps, wanted %d, got %d", want, got)
	}
	stats.insert(newStatistics())
	if got := stats.Count(vm.ADD); got != 0 {
		t.Errorf("unexpected count %d", got)
	}
}
