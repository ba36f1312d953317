// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package config loads the settings of the basalt tool from TOML files.
//
// A configuration file may contain any subset of the following sections;
// omitted entries keep their default values:
//
//	[limits]
//	min_gas = 1
//	max_gas = 30000000
//	max_code_size = 24576
//	max_input_size = 1048576
//
//	[interpreter]
//	analysis_cache_size = 4096
//	sha_cache = true
//
//	[log]
//	verbosity = "info"
package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Fantom-foundation/Basalt/go/basalt"
	"github.com/Fantom-foundation/Basalt/go/interpreter/svm"
	"github.com/Fantom-foundation/Basalt/go/validation"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Limits      Limits      `toml:"limits"`
	Interpreter Interpreter `toml:"interpreter"`
	Log         Log         `toml:"log"`
}

type Limits struct {
	MinGas       int64 `toml:"min_gas"`
	MaxGas       int64 `toml:"max_gas"`
	MaxCodeSize  int   `toml:"max_code_size"`
	MaxInputSize int   `toml:"max_input_size"`
}

type Interpreter struct {
	// AnalysisCacheSize is the number of code analyses kept in memory. Zero
	// selects the default size, -1 disables the cache.
	AnalysisCacheSize int  `toml:"analysis_cache_size"`
	ShaCache          bool `toml:"sha_cache"`
}

type Log struct {
	Verbosity string `toml:"verbosity"` // trace, debug, info, warn, error, or crit
}

// Default returns the built-in configuration.
func Default() Config {
	limits := validation.Default()
	return Config{
		Limits: Limits{
			MinGas:       int64(limits.MinGas),
			MaxGas:       int64(limits.MaxGas),
			MaxCodeSize:  limits.MaxCodeSize,
			MaxInputSize: limits.MaxInputSize,
		},
		Interpreter: Interpreter{
			AnalysisCacheSize: 4096,
			ShaCache:          true,
		},
		Log: Log{Verbosity: "info"},
	}
}

// Load reads the configuration file at the given path. Entries missing in
// the file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	res, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return res, nil
}

// Parse decodes a TOML configuration. Unknown keys are rejected.
func Parse(in io.Reader) (Config, error) {
	res := Default()
	decoder := toml.NewDecoder(in)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&res); err != nil {
		return Config{}, err
	}
	if err := res.Check(); err != nil {
		return Config{}, err
	}
	return res, nil
}

// Check tests the consistency of the configuration.
func (c Config) Check() error {
	if c.Limits.MinGas > c.Limits.MaxGas {
		return fmt.Errorf("min_gas %d exceeds max_gas %d", c.Limits.MinGas, c.Limits.MaxGas)
	}
	if c.Limits.MaxCodeSize < 0 || c.Limits.MaxInputSize < 0 {
		return fmt.Errorf("size limits must not be negative")
	}
	if c.Interpreter.AnalysisCacheSize < -1 {
		return fmt.Errorf("invalid analysis_cache_size %d", c.Interpreter.AnalysisCacheSize)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// ValidationLimits returns the limits to be checked before running a call.
func (c Config) ValidationLimits() validation.Limits {
	return validation.Limits{
		MinGas:       basalt.Gas(c.Limits.MinGas),
		MaxGas:       basalt.Gas(c.Limits.MaxGas),
		MaxCodeSize:  c.Limits.MaxCodeSize,
		MaxInputSize: c.Limits.MaxInputSize,
	}
}

// InterpreterConfig returns the interpreter settings of this configuration.
// Tracers and statistics are not part of the file and are added by callers.
func (c Config) InterpreterConfig() svm.Config {
	return svm.Config{
		AnalysisCacheSize: c.Interpreter.AnalysisCacheSize,
		WithShaCache:      c.Interpreter.ShaCache,
	}
}

// LogLevel parses the configured verbosity.
func (c Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.Log.Verbosity)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	case "crit":
		return log.LevelCrit, nil
	}
	return 0, fmt.Errorf("invalid verbosity %q", c.Log.Verbosity)
}
