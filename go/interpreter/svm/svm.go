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
	"fmt"
	"os"

	"github.com/Fantom-foundation/Basalt/go/basalt"
)

// Registers the stack machine interpreter as a possible interpreter
// implementation.
func init() {
	mustRegister("svm", func() Config {
		return Config{WithShaCache: true}
	})
}

// RegisterExperimentalInterpreterConfigurations registers additional
// configurations of the interpreter used for testing and diagnostics. They
// are not meant to be used for production purposes.
func RegisterExperimentalInterpreterConfigurations() {
	configs := map[string]func() Config{
		"svm-no-cache": func() Config {
			return Config{AnalysisCacheSize: -1}
		},
		"svm-logging": func() Config {
			return Config{WithShaCache: true, Tracer: NewLogger(os.Stderr)}
		},
		"svm-stats": func() Config {
			return Config{WithShaCache: true, Statistics: NewStatistics()}
		},
	}
	for name, config := range configs {
		if basalt.GetInterpreterFactory(name) == nil {
			mustRegister(name, config)
		}
	}
}

func mustRegister(name string, defaults func() Config) {
	err := basalt.RegisterInterpreterFactory(name, func(config any) (basalt.Interpreter, error) {
		if config == nil {
			return NewInterpreter(defaults())
		}
		if c, ok := config.(Config); ok {
			return NewInterpreter(c)
		}
		return nil, fmt.Errorf("invalid configuration for %s: %T", name, config)
	})
	if err != nil {
		panic(err)
	}
}

// Config contains the configuration options of the interpreter.
type Config struct {
	// AnalysisCacheSize is the number of bytecode analyses retained for
	// codes executed with a code hash. If set to 0, a default size is used.
	// If negative, no cache is used.
	AnalysisCacheSize int
	// WithShaCache enables caching of SHA3 results of 32 and 64 byte inputs.
	WithShaCache bool
	// Tracer, if not nil, is informed about every executed step. If it also
	// implements basalt.Breaker, it is consulted before each step.
	Tracer basalt.Tracer
	// Statistics, if not nil, collects instruction statistics of all runs.
	Statistics *Statistics
}

// config is the per-run configuration derived from a Config.
type config struct {
	runner   runner
	shaCache *sha3HashCache
}

type svm struct {
	config   Config
	analyzer *analyzer
	shaCache *sha3HashCache
}

// NewInterpreter creates an interpreter instance with the given
// configuration. Instances are thread-safe.
func NewInterpreter(config Config) (*svm, error) {
	analyzer, err := newAnalyzer(config.AnalysisCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create code analyzer: %w", err)
	}
	res := &svm{config: config, analyzer: analyzer}
	if config.WithShaCache {
		res.shaCache = newSha3HashCache(1<<12, 1<<14)
	}
	return res, nil
}

func (v *svm) Run(params basalt.Parameters) (basalt.Result, error) {
	if params.Context == nil {
		return basalt.Result{}, fmt.Errorf("invalid parameters: no run context")
	}

	analysis, err := v.analyzer.analyze(params.Code, params.CodeHash)
	if err != nil {
		// Malformed code is rejected before any gas is consumed.
		return basalt.Result{
			Status:  basalt.StatusFailed,
			GasLeft: params.Gas,
			Err:     err,
		}, nil
	}

	return run(config{
		runner:   v.newRunner(),
		shaCache: v.shaCache,
	}, params, analysis), nil
}

func (v *svm) newRunner() runner {
	if v.config.Tracer != nil {
		breaker, _ := v.config.Tracer.(basalt.Breaker)
		return tracingRunner{
			tracer:  v.config.Tracer,
			breaker: breaker,
			stats:   v.config.Statistics,
		}
	}
	if v.config.Statistics != nil {
		return statisticRunner{stats: v.config.Statistics}
	}
	return vanillaRunner{}
}

// DumpProfile prints the collected instruction statistics, if enabled.
func (v *svm) DumpProfile() {
	if v.config.Statistics != nil {
		fmt.Print(v.config.Statistics.Summary())
	}
}

// ResetProfile clears the collected instruction statistics, if enabled.
func (v *svm) ResetProfile() {
	if v.config.Statistics != nil {
		v.config.Statistics.Reset()
	}
}
