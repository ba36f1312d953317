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
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/basalt/vm"
	"golang.org/x/exp/maps"
)

// statisticRunner is a runner that collects statistics about the instruction
// sequence of the executed code.
type statisticRunner struct {
	stats *Statistics
}

func (s statisticRunner) run(c *context) status {
	collector := newStatsCollector()
	defer s.stats.insert(collector.stats)

	status := statusRunning
	for status == statusRunning {
		if c.pc >= len(c.code) {
			return statusStopped
		}
		op := vm.OpCode(c.code[c.pc])
		gasBefore := c.gas
		status = step(c)
		collector.nextOp(op, gasBefore-c.gas)
	}
	return status
}

// Statistics aggregates the instruction statistics of any number of runs.
// It counts the number of times each instruction and each pair of
// consecutive instructions is executed, as well as the gas charged per
// instruction. Statistics are thread-safe.
type Statistics struct {
	mutex sync.Mutex
	stats *statistics
}

func NewStatistics() *Statistics {
	return &Statistics{stats: newStatistics()}
}

func (s *Statistics) insert(src *statistics) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	s.stats.insert(src)
}

// Steps returns the total number of instructions recorded.
func (s *Statistics) Steps() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		return 0
	}
	return s.stats.count
}

// Count returns the number of times the given instruction was executed.
func (s *Statistics) Count(op vm.OpCode) uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		return 0
	}
	return s.stats.singleCount[uint64(op)]
}

// PairCount returns the number of times second was executed directly
// after first.
func (s *Statistics) PairCount(first, second vm.OpCode) uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		return 0
	}
	return s.stats.pairCount[uint64(first)<<16|uint64(second)]
}

// Gas returns the total gas charged by the given instruction.
func (s *Statistics) Gas(op vm.OpCode) basalt.Gas {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		return 0
	}
	return s.stats.gas[op]
}

// Summary returns a summary of the collected statistics in a human-readable
// format.
func (s *Statistics) Summary() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	return s.stats.print()
}

// Reset clears the collected statistics.
func (s *Statistics) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stats = newStatistics()
}

// statistics contains the instruction sequence statistics of a code execution.
type statistics struct {
	count       uint64
	singleCount map[uint64]uint64
	pairCount   map[uint64]uint64
	gas         map[vm.OpCode]basalt.Gas
}

func newStatistics() *statistics {
	return &statistics{
		singleCount: map[uint64]uint64{},
		pairCount:   map[uint64]uint64{},
		gas:         map[vm.OpCode]basalt.Gas{},
	}
}

// insert adds the instruction counts of the given statistics to this instance.
func (s *statistics) insert(src *statistics) {
	s.count += src.count
	for k, v := range src.singleCount {
		s.singleCount[k] += v
	}
	for k, v := range src.pairCount {
		s.pairCount[k] += v
	}
	for k, v := range src.gas {
		s.gas[k] += v
	}
}

// print returns a human-readable summary of the collected statistics.
func (s *statistics) print() string {

	type entry struct {
		value uint64
		count uint64
	}

	getTopN := func(data map[uint64]uint64, n int) []entry {
		list := make([]entry, 0, len(data))
		for _, k := range maps.Keys(data) {
			list = append(list, entry{k, data[k]})
		}
		slices.SortFunc(list, func(a, b entry) int {
			if a.count != b.count {
				return cmp.Compare(b.count, a.count)
			}
			return cmp.Compare(a.value, b.value)
		})
		if len(list) < n {
			return list
		}
		return list[0:n]
	}

	percent := func(count uint64) float32 {
		if s.count == 0 {
			return 0
		}
		return float32(count*100) / float32(s.count)
	}

	builder := strings.Builder{}
	write := func(format string, args ...interface{}) {
		builder.WriteString(fmt.Sprintf(format, args...))
	}

	write("\n----- Statistics ------\n")
	write("\nSteps: %d\n", s.count)
	write("\nSingles:\n")
	for _, e := range getTopN(s.singleCount, 5) {
		write("\t%-30v: %d (%.2f%%)\n", vm.OpCode(e.value), e.count, percent(e.count))
	}
	write("\nPairs:\n")
	for _, e := range getTopN(s.pairCount, 5) {
		write("\t%-30v%-30v: %d (%.2f%%)\n", vm.OpCode(e.value>>16), vm.OpCode(e.value&0xFF), e.count, percent(e.count))
	}
	write("\nGas:\n")
	ops := maps.Keys(s.gas)
	slices.SortFunc(ops, func(a, b vm.OpCode) int {
		if s.gas[a] != s.gas[b] {
			return cmp.Compare(s.gas[b], s.gas[a])
		}
		return cmp.Compare(a, b)
	})
	for _, op := range ops[:min(len(ops), 5)] {
		write("\t%-30v: %d\n", op, s.gas[op])
	}
	write("\n")

	return builder.String()
}

// statsCollector is a helper struct that keeps track of the recent history of
// instructions executed by a single run to collect instruction statistics.
type statsCollector struct {
	stats *statistics
	last  uint64
}

func newStatsCollector() *statsCollector {
	return &statsCollector{stats: newStatistics()}
}

func (s *statsCollector) nextOp(op vm.OpCode, gas basalt.Gas) {
	cur := uint64(op)
	s.stats.count++
	s.stats.singleCount[cur]++
	s.stats.gas[op] += gas
	if s.stats.count > 1 {
		s.stats.pairCount[s.last<<16|cur]++
	}
	s.last = cur
}
